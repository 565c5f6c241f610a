package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aashish23092/ocr-green-finance/client"
	"github.com/Aashish23092/ocr-green-finance/config"
	"github.com/Aashish23092/ocr-green-finance/handler"
	"github.com/Aashish23092/ocr-green-finance/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ex, me, err := loadEngines(cfg, logger)
	if err != nil {
		return err
	}

	collab := service.Collaborators{
		PDF:       service.NewPDFProcessor(),
		Tesseract: client.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguage, logger.Named("tesseract")),
		QR:        client.NewQRClient(),
	}
	if cfg.PaddleAPIURL != "" {
		collab.Paddle = client.NewPaddleClient(cfg.PaddleAPIURL, logger.Named("paddle"))
	} else {
		logger.Warn("PADDLEOCR_API_URL not set, using Tesseract only")
	}

	documentService := service.NewDocumentService(ex, me, collab, logger.Named("service"))
	documentHandler := handler.NewDocumentHandler(documentService, cfg.MaxFileSize, logger.Named("handler"))

	if cfg.LogLevel > zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler.NewRouter(documentHandler, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting OCR Green Finance service", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
