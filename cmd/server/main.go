package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/EuricoCruz/token_gate/internal/adapter/http/middleware"
	redisAdapter "github.com/EuricoCruz/token_gate/internal/adapter/storage/redis"
	"github.com/EuricoCruz/token_gate/internal/infrastructure/config"
	"github.com/EuricoCruz/token_gate/internal/infrastructure/logger"
	infraRedis "github.com/EuricoCruz/token_gate/internal/infrastructure/redis"
	"github.com/EuricoCruz/token_gate/internal/usecase/admit_request"
	"github.com/go-chi/chi/v5"
)

func main() {
	// 1. Setup logger
	logger := logger.New()
	logger.Info("Starting Token Gate")

	// 2. Carrega configuração
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("Configuration loaded",
		"port", cfg.ServerPort,
		"redis", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		"max_tokens", cfg.MaxTokens,
		"refill_rate_per_hour", cfg.RefillRatePerHour,
		"occ_max_retries", cfg.OCCMaxRetries,
		"fail_open", cfg.FailOpen,
	)

	// 3. Conecta Redis
	redisClient, err := infraRedis.NewClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// 4. Monta camadas (Dependency Injection)

	// Storage layer: decisão atômica via WATCH/MULTI/EXEC
	storage := redisAdapter.NewRedisStorage(redisClient, cfg.Policy(), cfg.OCCMaxRetries, logger)

	// Use case layer
	admitUC := admit_request.NewUseCase(storage)

	// Middleware layer: identidade vem do header Bearer por padrão
	admissionMW := middleware.NewAdmissionMiddleware(admitUC, nil, cfg.FailOpen, logger)

	// 5. Setup HTTP Router
	r := chi.NewRouter()

	// Rota aberta: health check nunca consome token
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Grupo com admissão: todas as rotas de negócio passam pelo gate
	r.Group(func(r chi.Router) {
		r.Use(admissionMW.Handle)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Hello! Your request was admitted."))
		})
	})

	// 6. HTTP Server
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.ServerPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 7. Start server em goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Token Gate stopped")
}
