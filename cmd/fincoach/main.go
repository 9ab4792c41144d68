package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fincoach/internal/advice"
	appamqp "fincoach/internal/amqp"
	"fincoach/internal/backend"
	"fincoach/internal/config"
	apphttp "fincoach/internal/http"
	"fincoach/internal/llm"
	applog "fincoach/internal/log"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Providers are constructed unconditionally; the router skips the
	// unconfigured ones. Warn at startup so a blank deployment is
	// visible in the logs before the first chat turn.
	hf := llm.NewHuggingFace(cfg.HuggingFaceToken, cfg.HuggingFaceModel, cfg.HuggingFaceBaseURL, cfg.HTTPTimeout)
	groq := llm.NewGroq(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, cfg.HTTPTimeout)
	watsonx := llm.NewWatsonx(cfg.WatsonxAPIKey, cfg.WatsonxProjectID, cfg.WatsonxModel, cfg.WatsonxURL, cfg.IAMTokenURL, cfg.HTTPTimeout)

	llmLogger := logger.WithComponent(applog.ComponentLLM)
	if !cfg.HuggingFaceConfigured() {
		llmLogger.Warn("Hugging Face token not configured, primary provider disabled")
	}
	if !cfg.GroqConfigured() {
		llmLogger.Warn("Groq API key not configured, fallback provider disabled")
	}
	if !cfg.WatsonxConfigured() {
		llmLogger.Warn("watsonx credentials not configured, fallback provider and tone adjustment disabled")
	}

	router := llm.NewRouter(hf, groq, watsonx)
	toner := llm.NewToneAdjuster(watsonx)
	expenses := backend.NewClient(cfg.BackendAPIURL, cfg.HTTPTimeout)

	// Event publishing is best effort: a missing broker downgrades the
	// service, it never stops it.
	var events advice.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, advice events disabled", "error", err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP advice events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	advisor := advice.NewService(expenses, router, toner, events, cfg.AdviceMode)
	srv := apphttp.NewServer(":"+cfg.Port, advisor, expenses)

	// Write timeout has to cover a full provider fallback chain.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.HTTPTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fincoach server",
		"port", cfg.Port,
		"backend_api", cfg.BackendAPIURL,
		"advice_mode", cfg.AdviceMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
