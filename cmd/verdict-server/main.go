// Command verdict-server exposes the conversation evaluation pipeline as
// an HTTP service: POST an evaluation request, get back per-turn and
// conversation-level scores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-verdict/infrastructure/encoder"
	"github.com/ahrav/go-verdict/infrastructure/llm"
	"github.com/ahrav/go-verdict/infrastructure/middleware"
	"github.com/ahrav/go-verdict/internal/evaluation"
)

const shutdownGrace = 15 * time.Second

func main() {
	var (
		listenAddr  = flag.String("listen", envOr("VERDICT_LISTEN", ":8080"), "HTTP listen address")
		configPath  = flag.String("config", os.Getenv("VERDICT_CONFIG"), "path to YAML pipeline config (optional)")
		provider    = flag.String("provider", envOr("VERDICT_PROVIDER", "ollama"), "judge provider: ollama, openai, anthropic, google")
		model       = flag.String("model", envOr("VERDICT_MODEL", llm.OllamaDefaultModel), "judge model name")
		llmBaseURL  = flag.String("llm-base-url", os.Getenv("VERDICT_LLM_BASE_URL"), "judge provider base URL override")
		encoderURL  = flag.String("encoder-url", envOr("VERDICT_ENCODER_URL", "http://localhost:8090"), "encoder sidecar base URL")
		judgeRPS    = flag.Float64("judge-rps", 5, "sustained judge requests per second")
		judgeBurst  = flag.Int("judge-burst", 10, "judge request burst allowance")
		judgeRetry  = flag.Int("judge-retries", 2, "retries for transient judge failures")
		logLevelStr = flag.String("log-level", envOr("VERDICT_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := newLogger(*logLevelStr)
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	metrics := middleware.NewPrometheusMetrics()

	llmClient, err := llm.NewClient(*provider, llm.ClientConfig{
		APIKey:  os.Getenv("VERDICT_LLM_API_KEY"),
		Model:   *model,
		BaseURL: *llmBaseURL,
		Middleware: []llm.Middleware{
			llm.RateLimitMiddleware(rate.Limit(*judgeRPS), *judgeBurst),
			llm.RetryMiddleware(*judgeRetry, 500*time.Millisecond, 10*time.Second),
			llm.MetricsMiddleware(metrics),
		},
	})
	if err != nil {
		logger.Error("failed to create judge client", "provider", *provider, "error", err)
		os.Exit(1)
	}

	encoderClient, err := encoder.NewClient(*encoderURL, encoder.DefaultTimeout)
	if err != nil {
		logger.Error("failed to create encoder client", "url", *encoderURL, "error", err)
		os.Exit(1)
	}

	engine, err := evaluation.NewEngine(
		llmClient,
		encoderClient,
		evaluation.NewKeywordSeverityClassifier(),
		metrics,
		cfg,
		logger,
	)
	if err != nil {
		logger.Error("failed to build evaluation engine", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           newRouter(engine, encoderClient, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("verdict server listening",
			"addr", *listenAddr, "provider", *provider, "model", *model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// loadConfig reads the pipeline config from path, or returns defaults when
// no path is given.
func loadConfig(path string) (evaluation.Config, error) {
	if path == "" {
		return evaluation.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return evaluation.Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return evaluation.ParseConfig(data)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
