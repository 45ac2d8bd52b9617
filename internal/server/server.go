package server

import (
	"context"
	"errors"
	"net/http"

	"erp/internal/config"
	"erp/internal/handler"
	"erp/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	e   *echo.Echo
	cfg config.Config
	log *zap.Logger
}

func New(cfg config.Config, log *zap.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewCustomValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, cfg, h)
	return &Server{e: e, cfg: cfg, log: log}
}

// テスト用
func (s *Server) Echo() *echo.Echo { return s.e }

// Start は Shutdown されるまで戻らない
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr()))
	if err := s.e.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
