// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/portfolio-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat proxy and catalog API",
	Long: `Serve listens for the two chat endpoints the site calls
(/research-assistant and /paper-chat, also under /functions/v1/) and the
read-only catalog API under /api/. It stops gracefully on SIGINT or SIGTERM.

A missing gateway API key does not stop startup; chat requests answer 500
until one is configured.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		viper.Set("server.addr", addr)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Gateway.APIKey == "" {
		logger.Warn("gateway api key is not configured; chat requests will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.proxy, a.library, a.cfg.Server, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")

	rootCmd.AddCommand(serveCmd)
}
