package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/atlas/internal/metrics"
	"github.com/ziadkadry99/atlas/internal/server"
)

var (
	servePort   int
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve the live graph of a repository over WebSocket",
	Long: `Starts an HTTP server. Every WebSocket connection on /ws starts a fresh
analysis of the repository and streams nodes, edges and layout positions as
they are computed. Mode messages from the client switch the layout weighting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("static") {
			cfg.StaticDir = serveStatic
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := setupLogger(cfg)

		root, err := repoRoot(args)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:      cfg.Port,
			StaticDir: cfg.StaticDir,
			AllowAll:  cfg.AllowAllOrigins,
			Session:   sessionOptions(cfg, root),
		}, metrics.NewRegistry(), logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "atlas %s analyzing %s\n", Version, root)
		fmt.Fprintf(os.Stderr, "  Open: http://localhost:%d\n", cfg.Port)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 3000, "HTTP port (overrides config)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "frontend directory served at / (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
