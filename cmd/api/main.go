// Package main implements the chocolate shop chatbot API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/chocoworld/chocochat/engine/domain"
	"github.com/chocoworld/chocochat/engine/ingest"
	"github.com/chocoworld/chocochat/engine/rag"
	"github.com/chocoworld/chocochat/engine/semantic"
	"github.com/chocoworld/chocochat/pkg/metrics"
	"github.com/chocoworld/chocochat/pkg/mid"
	"github.com/chocoworld/chocochat/pkg/natsutil"
	"github.com/chocoworld/chocochat/pkg/openai"
	"github.com/chocoworld/chocochat/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	MetricsPort  int
	IndexDir     string
	SkipChecksum bool
	NATSURL      string
	Backend      string // "flat" or "qdrant"
	QdrantURL    string
	Collection   string
	CORSOrigin   string
	RatePerSec   float64
	RateBurst    int

	OpenAIKey  string
	OpenAIBase string
	EmbedModel string
	ChatModel  string
}

func loadConfig() Config {
	metricsPort, _ := strconv.Atoi(envOr("METRICS_PORT", "9090"))
	ratePerSec, _ := strconv.ParseFloat(envOr("RATE_LIMIT_PER_SEC", "10"), 64)
	rateBurst, _ := strconv.Atoi(envOr("RATE_LIMIT_BURST", "20"))
	return Config{
		Port:         envOr("PORT", "8000"),
		MetricsPort:  metricsPort,
		IndexDir:     envOr("INDEX_DIR", semantic.DefaultSnapshotDir),
		SkipChecksum: envOr("INDEX_SKIP_CHECKSUM", "") == "true",
		NATSURL:      os.Getenv("NATS_URL"),
		Backend:      envOr("VECTOR_BACKEND", "flat"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "chocochat"),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		RatePerSec:   ratePerSec,
		RateBurst:    rateBurst,
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBase:   os.Getenv("OPENAI_BASE_URL"),
		EmbedModel:   os.Getenv("OPENAI_EMBED_MODEL"),
		ChatModel:    envOr("OPENAI_CHAT_MODEL", "gpt-4o"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if cfg.OpenAIKey == "" {
		logger.Error("OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	indexSize := reg.Gauge("chocochat_index_units", "Units in the loaded vector index")

	// --- Model clients ---
	embedder, err := openai.NewEmbedClient(openai.Config{
		BaseURL: cfg.OpenAIBase,
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.EmbedModel,
	})
	if err != nil {
		return fmt.Errorf("embed client: %w", err)
	}
	chat, err := openai.NewChatClient(openai.Config{
		BaseURL: cfg.OpenAIBase,
		APIKey:  cfg.OpenAIKey,
		Model:   cfg.ChatModel,
	})
	if err != nil {
		return fmt.Errorf("chat client: %w", err)
	}

	// --- Vector backend ---
	var searcher semantic.Searcher
	holder := &indexHolder{}
	switch cfg.Backend {
	case "qdrant":
		store, err := semantic.NewQdrant(cfg.QdrantURL, cfg.Collection)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer store.Close()
		searcher = store
		logger.Info("using qdrant backend", "url", cfg.QdrantURL, "collection", cfg.Collection)
	default:
		// The server starts even when no snapshot exists yet; /ask answers
		// with the structured not-loaded response until a rebuild lands.
		if err := holder.reload(cfg.IndexDir, !cfg.SkipChecksum); err != nil {
			logger.Warn("index snapshot not loaded", "dir", cfg.IndexDir, "err", err)
		} else {
			n, _ := holder.Count(ctx)
			indexSize.Set(int64(n))
			logger.Info("index snapshot loaded", "dir", cfg.IndexDir, "units", n)
		}
		searcher = holder
	}

	// --- Answering service ---
	breaker := resilience.NewBreaker(resilience.DefaultBreakerOpts)
	svc := rag.NewService(searcher, embedder, chat, breaker, rag.DefaultOptions, logger)

	// --- NATS index reload ---
	if cfg.NATSURL != "" && cfg.Backend != "qdrant" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()

		sub, err := natsutil.Subscribe(nc, ingest.RebuiltSubject, func(_ context.Context, ev ingest.RebuiltEvent) {
			if err := holder.reload(cfg.IndexDir, !cfg.SkipChecksum); err != nil {
				logger.Error("index reload failed", "err", err)
				return
			}
			indexSize.Set(int64(ev.Count))
			logger.Info("index reloaded", "units", ev.Count, "dimension", ev.Dimension)
		})
		if err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		defer sub.Unsubscribe()
		logger.Info("listening for index rebuilds", "subject", ingest.RebuiltSubject)
	}

	// --- HTTP server ---
	limiter := resilience.NewLimiter(cfg.RatePerSec, cfg.RateBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", handleRoot)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /ask", handleAsk(svc, limiter, logger, reg))

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("chocochat-api"),
	)

	reg.ServeAsync(cfg.MetricsPort)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "초콜릿 챗봇 서버가 실행 중입니다."})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AskRequest is the JSON body for POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the JSON response for POST /ask.
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// asker is the part of the rag service the handler needs.
type asker interface {
	Ask(ctx context.Context, question string) (rag.Answer, error)
}

func handleAsk(svc asker, limiter *resilience.Limiter, logger *slog.Logger, reg *metrics.Registry) http.HandlerFunc {
	latency := reg.Histogram("chocochat_ask_seconds", "Latency of /ask requests", nil)
	upstreamErrs := reg.Counter("chocochat_upstream_errors_total", "Failed upstream model calls")
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
			return
		}

		start := time.Now()
		ans, err := svc.Ask(r.Context(), req.Query)
		latency.Since(start)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotReady):
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "데이터베이스가 로드되지 않았습니다."})
			case errors.Is(err, domain.ErrCorpusEmpty):
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "인덱스가 비어 있습니다."})
			case errors.Is(err, domain.ErrUpstream):
				upstreamErrs.Inc()
				logger.Error("upstream model failed", "err", err)
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream model unavailable"})
			default:
				logger.Error("ask failed", "err", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
			return
		}

		reg.Counter(metrics.WithLabels("chocochat_questions_total", "strategy", ans.Strategy.String()),
			"Questions answered by strategy").Inc()
		writeJSON(w, http.StatusOK, AskResponse{Question: req.Query, Answer: ans.Text})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
