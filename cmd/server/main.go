package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/benbeisheim/variantchess-backend/internal/config"
	"github.com/benbeisheim/variantchess-backend/internal/controller"
	"github.com/benbeisheim/variantchess-backend/internal/service"
	"github.com/benbeisheim/variantchess-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}
	logger, err := cfg.Logger()
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenBadger(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	// Initialize services
	rooms := service.NewRoomManager(st, logger.Named("rooms"))
	restored, err := rooms.Restore(ctx)
	if err != nil {
		return err
	}
	logger.Info("rooms restored", zap.Int("count", restored), zap.String("data_dir", cfg.DataDir))
	roomService := service.NewRoomService(rooms, logger.Named("service"))

	go rooms.RunMatchmaking(ctx, cfg.MatchInterval)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})
	controller.Routes(app, roomService, cfg.AllowedOrigins, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return app.ShutdownWithTimeout(5 * time.Second)
}
