package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/config"
	"github.com/yeremiapane/scan-order/database"
	"github.com/yeremiapane/scan-order/kds"
	"github.com/yeremiapane/scan-order/router"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger()

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := kds.NewHub()
	store := services.NewConversationStore(cfg.Chat.HistoryTurns)
	llm, err := services.NewGeminiClient(ctx, cfg.Chat.APIKey, cfg.Chat.Model)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create LLM client: %v", err)
	}
	chat := services.NewChatService(db, llm, store, services.ChatOptions{
		MaxOutputTokens: cfg.Chat.MaxOutputTokens,
		Timeout:         cfg.Chat.Timeout,
	})

	r := router.SetupRouter(router.Options{
		DB:                     db,
		JWT:                    utils.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL),
		Hub:                    hub,
		Chat:                   chat,
		AllowedOrigins:         cfg.AllowedOrigins,
		AdminAPIKey:            cfg.AdminAPIKey,
		RateLimitRPS:           cfg.RateLimitRPS,
		RateLimitBurst:         cfg.RateLimitBurst,
		AuthRateLimitPerMinute: cfg.AuthRateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Graceful shutdown failed: %v", err)
	}
	hub.Close()
	store.Close()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	utils.InfoLogger.Info("Server stopped")
}
