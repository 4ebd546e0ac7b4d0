package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Brownie44l1/nail-disease-api/internal/config"
	"github.com/Brownie44l1/nail-disease-api/internal/handlers"
	"github.com/Brownie44l1/nail-disease-api/internal/logging"
	"github.com/Brownie44l1/nail-disease-api/internal/metrics"
	"github.com/Brownie44l1/nail-disease-api/internal/model"
	"github.com/Brownie44l1/nail-disease-api/internal/predict"
	"github.com/Brownie44l1/nail-disease-api/internal/storage"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	logFile, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	defer logFile.Close()

	if envErr != nil {
		log.Debug(".env file not found, using system environment variables")
	}

	metrics.Register()

	store, err := storage.NewUploadStore(cfg.UploadDir, cfg.UniqueUploadNames)
	if err != nil {
		log.Fatalf("Failed to prepare uploads: %v", err)
	}

	labels, err := model.LoadLabels(cfg.LabelsPath)
	if err != nil {
		log.Fatalf("Failed to load class labels: %v", err)
	}

	candidates := cfg.ModelPaths
	if len(candidates) == 0 {
		candidates = model.DefaultCandidates(cfg.BaseDir)
	}

	classifier, modelPath := model.Load(candidates, func(path string) (model.Classifier, error) {
		return model.NewONNXClassifier(path, cfg.OnnxRuntimeLib)
	})
	if closer, ok := classifier.(interface{ Close() }); ok {
		defer closer.Close()
	}
	if classifier != nil {
		metrics.ModelLoaded.Set(1)
	} else {
		log.Warn("Continuing without a model; /predict will return errors")
	}

	service, err := predict.NewService(classifier, labels, store, cfg.CacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize prediction service: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(handlers.NewHandler(service, cfg.BaseDir, cfg.MaxUploadMB<<20))
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithFields(log.Fields{
		"addr":    cfg.Addr(),
		"model":   modelPath,
		"classes": len(labels),
		"uploads": cfg.UploadDir,
	}).Info("Server starting")
	log.Info("Endpoints:")
	log.Info("  GET  /                - Home page")
	log.Info("  POST /predict         - Predict from image upload (field \"file\")")
	log.Info("  GET  /metrics         - Prometheus metrics")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
