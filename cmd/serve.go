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

	"github.com/gin-gonic/gin"
	"github.com/kerstholt/taskplug/runtime"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project's tasks over HTTP",
	Long: `Serve starts a daemon exposing the project's tasks:

  GET  /tasks      list registered tasks
  POST /tasks/run  run tasks, body {"tasks": [...], "properties": {...}}

Every request builds a fresh project, so runs never share task state.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to settings.daemon_addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	addr := s.cfg.Settings.DaemonAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	runtime.NewHTTPHandler(s.app, s.cfg.Project, runtime.NewExecutor(s.logger), g)

	server := &http.Server{
		Addr:              addr,
		Handler:           g,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Daemon listening", "addr", addr, "project", s.cfg.Project.Name)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("daemon stopped: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down daemon")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Settings.DaemonTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("daemon shutdown failed: %w", err)
	}
	return nil
}
