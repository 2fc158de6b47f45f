// EffectLab - interactive walkthrough of six common React useEffect mistakes,
// served as plain HTML by a Go model of the hook runtime.
// Author: vesaa | License: MIT | https://github.com/vesaa/effectlab
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vesaa/effectlab/internal/config"
	"github.com/vesaa/effectlab/internal/logging"
	"github.com/vesaa/effectlab/internal/mistakes"
	"github.com/vesaa/effectlab/internal/quote"
	"github.com/vesaa/effectlab/internal/server"
)

const asciiLogo = `
 ███████╗███████╗███████╗███████╗ ██████╗████████╗██╗      █████╗ ██████╗
 ██╔════╝██╔════╝██╔════╝██╔════╝██╔════╝╚══██╔══╝██║     ██╔══██╗██╔══██╗
 █████╗  █████╗  █████╗  █████╗  ██║        ██║   ██║     ███████║██████╔╝
 ██╔══╝  ██╔══╝  ██╔══╝  ██╔══╝  ██║        ██║   ██║     ██╔══██║██╔══██╗
 ███████╗██║     ██║     ███████╗╚██████╗   ██║   ███████╗██║  ██║██████╔╝
 ╚══════╝╚═╝     ╚═╝     ╚══════╝ ╚═════╝   ╚═╝   ╚══════╝╚═╝  ╚═╝╚═════╝
`

const version = "v0.1.0"

func printBanner(mode string) {
	fmt.Print(asciiLogo)
	fmt.Printf("  ► EffectLab %s  |  Author: vesaa  |  Mode: %s\n\n", version, mode)
}

func main() {
	root := &cobra.Command{
		Use:   "effectlab",
		Short: "EffectLab: six common useEffect mistakes, live",
		Long: `EffectLab serves an interactive tutorial on six common React useEffect
mistakes. Every demo runs on a server-side model of the hook runtime, so the
wrong variants really leak timers, loop and warn.`,
		SilenceUsage: true,
	}

	// ── serve subcommand ──────────────────────────────────────────────────────
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tutorial web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner("SERVE")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// CLI flags override config values.
			if host, _ := cmd.Flags().GetString("host"); host != "" {
				cfg.ServerHost = host
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			gin.SetMode(gin.ReleaseMode)
			srv, err := server.New(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					log.Warn("close failed", zap.Error(err))
				}
			}()

			fmt.Printf("  ✓ Tutorial   → http://%s\n", cfg.Addr())
			fmt.Printf("  ✓ Metrics    → http://%s/metrics\n", cfg.Addr())
			fmt.Printf("  ✓ Quotes     ← %s\n\n", cfg.QuoteURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = srv.Run(ctx)
			fmt.Println("\n  → Shutting down gracefully…")
			return err
		},
	}
	serveCmd.Flags().String("host", "", "Listen host (overrides server_host)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides port)")

	// ── demo subcommand ───────────────────────────────────────────────────────
	demoCmd := &cobra.Command{
		Use:   "demo <1-6>",
		Short: "Play a scripted walkthrough of one mistake in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("mistake id %q: %w", args[0], err)
			}
			m, ok := mistakes.ByID(n)
			if !ok {
				return fmt.Errorf("mistake id %d out of range 1-%d", n, len(mistakes.All()))
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			env := mistakes.Env{Tick: cfg.TickInterval(), Delay: cfg.TimeoutDelay()}
			if live, _ := cmd.Flags().GetBool("live"); live {
				env.Quotes = quote.NewClient(cfg.QuoteURL, cfg.QuoteTimeout())
			}
			return mistakes.Walkthrough(cmd.Context(), m, env, cmd.OutOrStdout())
		},
	}
	demoCmd.Flags().Bool("live", false, "Fetch demo data from quote_url instead of a canned string")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print EffectLab version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("EffectLab %s  |  Author: vesaa\n", version)
		},
	}

	root.AddCommand(serveCmd, demoCmd, versionCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
