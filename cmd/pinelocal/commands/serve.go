package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pinelocal"
	"github.com/hupe1980/pinelocal/internal/config"
	"github.com/hupe1980/pinelocal/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		port         int
		rateLimitRPS float64
		maxQueries   int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

PINECONE_API_KEY must be set; every /indexes request has to present it as a
bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("rate-limit") {
				cfg.RateLimitRPS = rateLimitRPS
			}
			if cmd.Flags().Changed("max-concurrent-queries") {
				cfg.MaxConcurrentQueries = maxQueries
			}
			if err := cfg.Validate(true); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cmd, cfg)
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default 3000)")
	serveCmd.Flags().Float64Var(&rateLimitRPS, "rate-limit", 0, "max API requests per second, 0 disables")
	serveCmd.Flags().IntVar(&maxQueries, "max-concurrent-queries", 0, "max queries scored at once, 0 is unbounded")
	return serveCmd
}

func serve(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	logger := cfg.Logger(cmd.ErrOrStderr())
	metrics := server.NewPrometheusCollector(nil)

	opts := append(cfg.Options(logger), pinelocal.WithMetricsCollector(metrics))
	db, err := pinelocal.Open(cfg.DataDir, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(db, server.Options{
		APIKey:         cfg.APIKey,
		Logger:         logger,
		Metrics:        metrics,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	logger.InfoContext(ctx, "pinelocal starting",
		"data_dir", cfg.DataDir,
		"port", cfg.Port,
		"codec", cfg.Codec,
	)
	return srv.ListenAndServe(ctx, cfg.Addr(), cfg.ShutdownTimeout())
}
