package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"streetview-download/internal/cache"
	"streetview-download/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP panorama API",
	Long: `Start an HTTP server that exposes panorama downloads, view rendering
and URL parsing as a REST API.

Examples:
  # Start server on default port 8080
  streetview-download serve

  # Start server on custom port
  streetview-download serve --port 3000

  # Start server with custom bind address
  streetview-download serve --bind 0.0.0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")

	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf("%s:%d", bind, port)

	settings := loadUserSettings()
	var tileCache *cache.TileCache
	if settings.CacheMaxTiles >= 0 {
		c, err := cache.NewTileCache(settings.CacheMaxTiles)
		if err != nil {
			return err
		}
		tileCache = c
	}

	cfg := server.Config{
		Client:  newClient(),
		Batches: settings.Batches,
		Version: Version,
	}
	if tileCache != nil {
		cfg.Cache = tileCache
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     srv.Router(),
		ReadTimeout: 15 * time.Second,
		// Outlasts the per-request timeout so large downloads can finish
		// writing.
		WriteTimeout: 150 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	t := newTracker()
	t.Track("app_started", map[string]interface{}{
		"version": Version,
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	})
	defer t.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting streetview-download server on %s\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/health\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Panorama endpoint: http://%s/api/v1/panorama/{id}\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	if tileCache != nil {
		tileCache.LogStats()
	}
	return nil
}
