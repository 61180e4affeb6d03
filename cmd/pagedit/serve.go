package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/pagedit/internal/config"
	"github.com/standardbeagle/pagedit/internal/debug"
	"github.com/standardbeagle/pagedit/internal/proxy"
	"github.com/standardbeagle/pagedit/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve <page.html>",
	Short: "Serve a local HTML file with the editor injected",
	Long: `Serve a local HTML file with the editor injected.

Files next to the page (stylesheets, images) are served as they are.
Saves are written to the project's store and images replaced in the page
go to the configured upload backend.

Example:
  pagedit serve site/index.html --port 8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, proxy.Config{File: args[0]})
	},
}

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Reverse-proxy a running site with the editor injected",
	Long: `Reverse-proxy a running site and inject the editor into its HTML pages.

Example:
  pagedit proxy --target http://localhost:3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			return fmt.Errorf("--target is required")
		}
		return runServer(cmd, proxy.Config{Target: target})
	},
}

func init() {
	for _, c := range []*cobra.Command{serveCmd, proxyCmd} {
		c.Flags().Int("port", 0, "listen port (defaults to the configured port)")
		c.Flags().String("host", "", "listen host (defaults to the configured host)")
		c.Flags().Bool("allow-all-origins", false, "accept requests from any origin")
		rootCmd.AddCommand(c)
	}
	proxyCmd.Flags().String("target", "", "URL of the site to proxy")
}

func runServer(cmd *cobra.Command, pc proxy.Config) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pc.Host = cfg.Server.Host
	pc.Port = cfg.Server.Port
	pc.AllowAll = cfg.Server.AllowAllOrigins
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		pc.Host = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		pc.Port = v
	}
	if v, _ := cmd.Flags().GetBool("allow-all-origins"); v {
		pc.AllowAll = true
	}

	uploader, err := cfg.NewUploader(ctx, root, proxy.UploadsPath, config.LoadSecrets(projectDir))
	if err != nil {
		return fmt.Errorf("failed to set up uploads: %w", err)
	}
	pages := store.New(config.Resolve(root, cfg.Store.Dir))

	pc.UploadDir = cfg.UploadDir(root)
	pc.Deps = proxy.Deps{
		Uploader: uploader,
		Sink:     pages,
		Overlay:  cfg.OverlayConfig(),
	}

	srv, err := proxy.NewServer(pc)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "pagedit listening on %s\n", srv.URL())
	if pc.Target != "" {
		fmt.Fprintf(os.Stderr, "proxying %s\n", pc.Target)
	}
	fmt.Fprintf(os.Stderr, "saves go to %s\n", pages.Dir())

	<-ctx.Done()
	debug.Info("cli", "shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}
