package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"erp/internal/config"
	"erp/internal/domain/diff"
	"erp/internal/handler"
	"erp/internal/infra/db"
	infraRepo "erp/internal/infra/repository"
	"erp/internal/logger"
	"erp/internal/scheduler"
	"erp/internal/server"
	"erp/internal/usecase"
	"erp/internal/usecase/oplog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "erp",
		Short:        "ERP operation log service",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrateFirst, _ := cmd.Flags().GetBool("migrate")
			return runServe(cmd.Context(), migrateFirst)
		},
	}
	serveCmd.Flags().Bool("migrate", false, "Apply migrations before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run migrations manually.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			log := logger.New(cfg.IsProd())
			defer log.Sync()

			if err := db.Migrate(cfg.DSN(), dir, log); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			return nil
		},
	}
	migrateCmd.Flags().String("dir", "", "Directory containing the migration files")

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

func runServe(parent context.Context, migrateFirst bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.IsProd())
	defer log.Sync()

	if migrateFirst {
		if err := db.Migrate(cfg.DSN(), cfg.MigrationsDir, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	gormDB, sqlDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//操作ログ
	writer := oplog.NewWriter(infraRepo.NewOperationLogGormRepository(gormDB), log)
	coalescer := oplog.NewCoalescer(cfg.Coalescer, writer, log)
	logs := oplog.NewService(diff.NewRegistry(), writer, coalescer, log)
	engine := oplog.NewQueryEngine(infraRepo.NewOperationLogQuery(sqlDB), log)

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go coalescer.Run(runCtx)

	sweeper := scheduler.NewSweeper(coalescer, cfg.SweepEvery, log)
	sweeper.Start()

	//Usecase生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	srv := server.New(cfg, log, server.Handlers{
		OperationLogs: handler.NewOperationLogHandler(engine),
		AdminOrders:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(tx, logs)),
		LockedDates:   handler.NewLockedDateHandler(usecase.NewLockedDateUsecase(tx, logs)),
		AdminAccounts: handler.NewAdminAccountHandler(usecase.NewAdminAccountUsecase(tx, logs, hasher, verifier)),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", zap.Error(err))
	}
	sweeper.Stop(shutdownCtx)
	cancelRun()
	select {
	case <-coalescer.Done():
	case <-shutdownCtx.Done():
		log.Warn("coalescer loop did not stop before shutdown timeout")
	}

	// 受け付け済みの注文ログを書き切る
	n := coalescer.Close(shutdownCtx)
	log.Info("flushed pending order logs", zap.Int("count", n))
	return nil
}
