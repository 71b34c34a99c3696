package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-risk/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis pipeline over HTTP",
		Long: `Start the HTTP server.

Endpoints:
  GET  /health            liveness and catalog size
  GET  /api/v1/catalog    signature catalog
  POST /api/v1/analyze    multipart upload (field "file"); ?format=pdf returns a report
  POST /api/v1/report     JSON {"variants": [...]} to PDF`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	p, err := buildPipeline(cfg, logger, true)
	if err != nil {
		return err
	}

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(cfg.Server, server.Deps{
		Orchestrator:    p.orchestrator,
		Classifier:      p.classifier,
		Assembler:       p.assembler,
		Catalog:         p.catalog,
		ExternalEnabled: p.external,
	}, logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
