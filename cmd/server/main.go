package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutricoach/coach-app/internal/api"
	"nutricoach/coach-app/internal/config"
	"nutricoach/coach-app/internal/generation"
	"nutricoach/coach-app/internal/repository/mongo"
	"nutricoach/coach-app/internal/service"
	"nutricoach/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.Info("Starting coach app server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureDayPlanIndexes(ctx, appDB.Collection("day_plans"))
		mongo.EnsureCategoryIndexes(ctx, appDB.Collection("categories"))
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Object Store ---
	reportStore, err := storage.NewS3Store(cfg.S3, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object store")
	}

	// --- Initialize Repositories ---
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	dayPlanRepo := mongo.NewMongoDayPlanRepository(appDB)
	categoryRepo := mongo.NewMongoCategoryRepository(appDB)
	userRepo := mongo.NewMongoUserRepository(appDB)

	// --- Initialize Generation Client and Services ---
	generator := generation.NewOpenAIGenerator(generation.Config{
		BaseURL: cfg.Generation.BaseURL,
		APIKey:  cfg.Generation.APIKey,
		Model:   cfg.Generation.Model,
		Timeout: cfg.Generation.Timeout,
	})
	assembler := service.NewPlanAssembler(dayPlanRepo)
	analyzer := service.NewProgressAnalyzer(generator)
	sessionService := service.NewSessionService(sessionRepo, dayPlanRepo, categoryRepo, userRepo, generator, assembler, analyzer, log)
	reportService := service.NewReportService(sessionRepo, dayPlanRepo, reportStore, storage.DefaultPresignedURLExpiry)
	categoryService := service.NewCategoryService(categoryRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, sessionService, reportService, categoryService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen and serve error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("Server exiting.")
}
