package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/scribelab/paperforge/internal/api"
	"github.com/scribelab/paperforge/internal/db"
	"github.com/scribelab/paperforge/internal/humanizer"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/openalex"
	"github.com/scribelab/paperforge/internal/services"
	"github.com/scribelab/paperforge/internal/token"
	"github.com/scribelab/paperforge/internal/util"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load("app.env"); err != nil {
		// Allow running without .env for containerized environments
		if !os.IsNotExist(err) {
			applogger.New().Fatal("Error loading .env file", err)
		}
	}

	logger := applogger.New()

	config, err := util.LoadConfig(".")
	if err != nil {
		logger.Fatal("Cannot load config:", err)
	}

	if config.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	connPool, err := db.ConnectDB(config.DatabaseURL)
	if err != nil {
		logger.Fatal("Cannot connect to database:", err)
	}
	defer connPool.Close()

	store := db.NewStore(connPool)

	tokenMaker, err := token.NewPasetoMaker(config.TokenSecretKey)
	if err != nil {
		logger.Fatal("Cannot create token maker:", err)
	}

	// Upstream clients
	rewriter := humanizer.NewClient(config.HumanizerAPIKey, config.HumanizerBaseURL, logger)
	searchClient := openalex.NewClient(config.OpenAlexBaseURL, config.OpenAlexMailto, logger)
	collector := openalex.NewCollector(searchClient, openalex.DefaultTargetPaperCount, logger)

	// Services
	aiSvc := services.NewAIService(config.OpenAIAPIKey, config.OpenAIBaseURL, config.OpenAIModel, rewriter, logger)
	authSvc := services.NewAuthService(store, tokenMaker, config, logger)
	paperSvc := services.NewPaperService(store, aiSvc, collector, searchClient, services.CompletionPolicy(config.CompletionPolicy), config.DownloadDir, logger)

	server := api.NewServer(config, store, authSvc, paperSvc, tokenMaker, logger)

	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Server starting on port " + config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
