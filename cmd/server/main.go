package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gsarma/mailqueue/internal/api"
	"github.com/gsarma/mailqueue/internal/config"
	"github.com/gsarma/mailqueue/internal/logger"
	"github.com/gsarma/mailqueue/internal/queue"
	"github.com/gsarma/mailqueue/internal/server"
)

var (
	envFile string
	port    int
)

var rootCmd = &cobra.Command{
	Use:           "mailqueue",
	Short:         "HTTP gateway that appends email jobs to a Redis queue.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() { //nolint:gochecknoinits // Cobra flag registration
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file; process environment wins")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("application failed to run", "error", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stdout)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	redisOpts, err := cfg.RedisOptions()
	if err != nil {
		return err
	}
	store := queue.New(redisOpts, log)

	h := api.NewHandler(store, log, cfg.EnqueueTimeout)
	router := api.NewRouter(h, api.CORSConfig{Origins: cfg.CORSOrigins}, log)

	// Repeated signals only re-cancel ctx; the store is closed once.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(":"+strconv.Itoa(cfg.Port), router, store, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
