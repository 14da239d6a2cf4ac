package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/janisto/demo-backend/internal/config"
	applog "github.com/janisto/demo-backend/internal/platform/logging"
	"github.com/janisto/demo-backend/internal/server"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "demo-backend",
		Short:         "Demo backend HTTP service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newOpenAPICmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "config load failed", err)
		return err
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	applog.SetProjectID(cfg.ProjectID)
	applog.LogDebug(context.Background(), "config loaded",
		zap.Int("port", cfg.Port),
		zap.String("docsPath", cfg.DocsPath),
		zap.Strings("allowedOrigins", cfg.AllowedOrigins),
		zap.Duration("shutdownTimeout", cfg.ShutdownTimeout),
		zap.Bool("projectIdSet", cfg.ProjectID != ""),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applog.LogInfo(ctx, "starting server",
		zap.String("version", Version),
		zap.Stringer("logLevel", applog.Level()),
		zap.Bool("testing", cfg.Testing),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)
	if err := server.New(cfg, Version).Run(ctx); err != nil {
		applog.LogError(ctx, "server failed", err, zap.String("addr", cfg.Addr()))
		return err
	}
	return nil
}

func newOpenAPICmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openAPIDocument(asYAML)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of JSON")
	return cmd
}

func openAPIDocument(asYAML bool) ([]byte, error) {
	cfg := config.Default()
	cfg.MetricsEnabled = false
	doc := server.New(cfg, Version).API().OpenAPI()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}
	if !asYAML {
		return b, nil
	}
	y, err := yaml.JSONToYAML(b)
	if err != nil {
		return nil, fmt.Errorf("convert openapi to yaml: %w", err)
	}
	return y, nil
}
