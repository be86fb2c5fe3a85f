package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/database"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/realtime"
	"github.com/nikhil/teamchat/internal/routes"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/service/auth"
	"github.com/nikhil/teamchat/internal/service/channels"
	"github.com/nikhil/teamchat/internal/service/messages"
	"github.com/nikhil/teamchat/internal/service/team"
	"github.com/nikhil/teamchat/internal/service/users"
	"github.com/nikhil/teamchat/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Env, cfg.Log.Level, "teamchat")
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database); err != nil {
			return err
		}
		log.Info("Migrations applied", "driver", cfg.Database.Driver)
	}

	db, err := database.Open(ctx, cfg.Database, log.Named("database"))
	if err != nil {
		return err
	}
	defer db.Close()

	s := store.New(db, log.Named("store"))
	engine := access.NewEngine(s, log.Named("access"))
	hub := realtime.NewHub(log.Named("realtime"))

	authService := auth.NewAuthService(s, cfg.Auth, log.Named("auth"))
	channelService := channels.NewChannelService(s, engine, log.Named("channels"))

	router := routes.RegisterAllRoutes(&routes.Deps{
		Auth:     authService,
		Teams:    team.NewTeamService(s, engine, log.Named("team")),
		Channels: channelService,
		Messages: messages.NewMessageService(s, engine, hub, log.Named("messages")),
		Profiles: users.NewProfileService(s, log.Named("users")),
		Health:   s,
		Realtime: &realtime.Endpoint{
			Hub:         hub,
			Auth:        authService,
			Channels:    channelService,
			SendBuffer:  cfg.Realtime.SendBuffer,
			AuthTimeout: cfg.Realtime.AuthTimeout,
			Log:         log.Named("websocket"),
		},
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("Server is running", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// hijacked websocket connections are not tracked by Shutdown; the hub closes them
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
