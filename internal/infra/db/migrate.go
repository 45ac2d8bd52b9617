package db

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate は dir 以下の SQL を dsn のDBに適用する。変更なしはエラーにしない。
func Migrate(dsn string, dir string, log *zap.Logger) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}

	m, err := migrate.New("file://"+absPath, dsn)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()
	m.Log = NewMigrateLogger(log, false)

	log.Info("running database migration", zap.String("dir", absPath))
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migration: no change needed")
			return nil
		}
		log.Error("database migration failed", zap.Error(err))
		return err
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

// golang-migrate の Logger を zap に流す
type MigrateLogger struct {
	logger  *zap.Logger
	verbose bool
}

func NewMigrateLogger(logger *zap.Logger, verbose bool) *MigrateLogger {
	return &MigrateLogger{logger: logger, verbose: verbose}
}

func (l *MigrateLogger) Printf(format string, v ...any) {
	l.logger.Sugar().Infof("migrate: "+format, v...)
}

func (l *MigrateLogger) Verbose() bool {
	return l.verbose
}
