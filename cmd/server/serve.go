package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/chartflow/backend/internal/api"
	"github.com/chartflow/backend/internal/errors"
	"github.com/chartflow/backend/internal/logger"
	"github.com/chartflow/backend/internal/upload"
	"github.com/chartflow/backend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(cfg.Advanced.LogLevel, cfg.Advanced.LogFormat == "json"); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	log := logger.ComponentLogger("server")

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := upload.NewManager(ctx, a.pipeline)
	go jobs.RunCleanup(ctx, cfg.CleanupInterval(), cfg.JobRetention())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		EnableCORS:       cfg.Server.EnableCORS,
		AllowOrigins:     cfg.Server.AllowOrigins,
		BodyLimit:        cfg.Server.BodyLimit,
		RequestLogging:   cfg.Advanced.EnableRequestLogging,
		ShowErrorDetails: cfg.Advanced.Debug,
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:         a.store,
		Pipeline:      a.pipeline,
		Jobs:          jobs,
		StaticDir:     cfg.Storage.StaticDirectory,
		OCRExecutable: a.ocr.Executable(),
		Version:       Version,
	}))

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warnw("failed to register frontend routes", logger.FieldError, err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cmd, cfgPath, cfg.GetServerAddr(), cfg.Storage.StaticDirectory, a.ocr.Executable())

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", logger.FieldAddress, s.Addr)
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server stopped")
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	jobs.Wait()
	return nil
}

func printBanner(cmd *cobra.Command, cfgPath, addr, staticDir, ocrExe string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║           chartflow server                                ║\n")
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Version:    %-45s║\n", Version)
	fmt.Fprintf(w, "║  Build Time: %-45s║\n", BuildTime)
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Config:    %-46s║\n", cfgPath)
	fmt.Fprintf(w, "║  Listen:    http://%-38s║\n", addr)
	fmt.Fprintf(w, "║  Static:    %-46s║\n", staticDir)
	fmt.Fprintf(w, "║  OCR:       %-46s║\n", ocrExe)
	fmt.Fprintf(w, "╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(w, "\n")
}
