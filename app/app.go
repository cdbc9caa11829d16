package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/server"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx       *fx.App
	config   *config.Config
	logger   *logging.Service
	services *ServiceContainer
	db       *gorm.DB
	server   *server.Server
	invites  *invite.Service
}

func (a *App) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.fx.Start(ctx)
}

func (a *App) StartTest() error {
	return a.fx.Start(context.Background())
}

// Run starts the application and blocks until SIGINT, SIGTERM or an fx shutdown.
func (a *App) Run() {
	if err := a.Start(); err != nil {
		if a.logger == nil {
			log.Fatalf("Failed to start application: %v", err)
		}
		a.logger.Error("failed to start application", zap.Error(err))
		_ = a.logger.Sync()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))
	case sig := <-a.fx.Wait():
		a.logger.Info("application requested shutdown", zap.Int("exit_code", sig.ExitCode))
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully", zap.Error(err))
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

func (a *App) StopTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop test application", zap.Error(err))
		} else {
			log.Printf("Failed to stop test application: %v", err)
		}
	}
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		a.logger.Warn("server not initialized through dependency injection")
		return nil
	}
	return a.server.Echo()
}

func (a *App) HTTPServer() *server.Server {
	return a.server
}

func (a *App) Database() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

// Invites is nil unless the builder was given WithInvites.
func (a *App) Invites() *invite.Service {
	return a.invites
}

func (a *App) RegisterRoutes(fn func(*echo.Echo)) {
	if server := a.Server(); server != nil {
		fn(server)
	}
}
