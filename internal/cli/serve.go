package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"sessiondeck/internal/server"
	"sessiondeck/internal/system"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8787", "address to bind (host:port)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		deps, err := loadDeps()
		if err != nil {
			return err
		}
		for _, w := range deps.Warnings {
			system.Logger.Warn(w)
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &server.Server{
			Addr:     addr,
			Config:   deps.Config,
			Registry: deps.Registry,
			Scanner:  deps.Scanner,
			Presets:  deps.Presets,
			Launcher: deps.Launcher,
		}

		// Handle Ctrl+C
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}
