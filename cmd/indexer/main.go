// Command indexer rebuilds the vector index: catalog rows are loaded from
// MySQL, normalized into text units, padded with generated FAQs, embedded,
// and written to the configured vector backend. A finished rebuild is
// announced over NATS so running API servers reload the snapshot.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/chocoworld/chocochat/engine/catalog"
	"github.com/chocoworld/chocochat/engine/ingest"
	"github.com/chocoworld/chocochat/engine/semantic"
	"github.com/chocoworld/chocochat/pkg/metrics"
	"github.com/chocoworld/chocochat/pkg/natsutil"
	"github.com/chocoworld/chocochat/pkg/openai"
)

var met = metrics.New()

var (
	mUnitsTotal  = func(kind string) *metrics.Counter { return met.Counter(metrics.WithLabels("chocochat_index_units_total", "kind", kind), "Units indexed by kind") }
	mRebuildDur  = met.Histogram("chocochat_index_rebuild_seconds", "Full rebuild duration", nil)
	mRebuildFail = met.Counter("chocochat_index_rebuild_failures_total", "Failed rebuilds")
)

// Embedding width of text-embedding-3-small; only the Qdrant backend needs
// it up front.
const defaultVectorDims = 1536

func main() {
	var (
		dir         = flag.String("dir", semantic.DefaultSnapshotDir, "snapshot output directory")
		backend     = flag.String("backend", "flat", "vector backend: flat or qdrant")
		qdrantAddr  = flag.String("qdrant", "localhost:6334", "Qdrant gRPC address")
		collection  = flag.String("collection", "chocochat", "Qdrant collection name")
		dims        = flag.Int("dims", defaultVectorDims, "embedding dimension (qdrant backend)")
		faqCount    = flag.Int("faq-count", ingest.DefaultFAQCount, "number of FAQ units to generate")
		faqJSON     = flag.String("faq-json", "faqs.json", "FAQ export path, empty to skip")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "FAQ generation seed")
		metricsPort = flag.Int("metrics-port", 9091, "metrics port")
		timeout     = flag.Duration("timeout", 30*time.Minute, "overall rebuild deadline")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, *dir, *backend, *qdrantAddr, *collection, *dims, *faqCount, *faqJSON, *seed, logger); err != nil {
		mRebuildFail.Inc()
		logger.Error("rebuild failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, dir, backend, qdrantAddr, collection string, dims, faqCount int, faqJSON string, seed int64, logger *slog.Logger) error {
	start := time.Now()
	defer mRebuildDur.Since(start)

	// --- Catalog ---
	port, _ := strconv.Atoi(envOr("DB_PORT", "3306"))
	dsn := catalog.DSNConfig{
		User:     envOr("DB_USER", "chocoworld"),
		Password: envOr("DB_PASS", "chocoworld"),
		Host:     envOr("DB_HOST", "localhost"),
		Port:     port,
		Database: envOr("DB_NAME", "chocoworld"),
	}
	source, err := catalog.Open(dsn.DSN())
	if err != nil {
		return err
	}
	defer source.Close()

	products, err := source.Products(ctx)
	if err != nil {
		return err
	}
	brands, err := source.Brands(ctx)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "products", len(products), "brands", len(brands))

	// --- FAQs ---
	faqs := ingest.GenerateFAQs(rand.New(rand.NewSource(seed)), faqCount)
	if faqJSON != "" {
		if err := ingest.WriteFAQJSON(faqJSON, faqs); err != nil {
			return err
		}
		logger.Info("faqs exported", "path", faqJSON, "count", len(faqs))
	}

	corpus := ingest.BuildCorpus(products, brands, faqs)
	mUnitsTotal("product").Add(int64(len(products)))
	mUnitsTotal("brand").Add(int64(len(brands)))
	mUnitsTotal("faq").Add(int64(len(faqs)))

	// --- Embedder ---
	embedder, err := openai.NewEmbedClient(openai.Config{
		BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:      os.Getenv("OPENAI_EMBED_MODEL"),
		MaxRetries: 3,
	})
	if err != nil {
		return err
	}

	// --- Vector backend ---
	var store semantic.VectorStore
	var flat *semantic.FlatIndex
	switch backend {
	case "qdrant":
		qd, err := semantic.NewQdrant(qdrantAddr, collection)
		if err != nil {
			return err
		}
		defer qd.Close()
		// A rebuild replaces the collection wholesale.
		_ = qd.DeleteCollection(ctx)
		if err := qd.EnsureCollection(ctx, dims); err != nil {
			return err
		}
		store = qd
		logger.Info("rebuilding qdrant collection", "addr", qdrantAddr, "collection", collection)
	default:
		flat = semantic.NewFlatIndex()
		store = flat
	}

	// --- Embed and store ---
	pipeline := ingest.NewPipeline(embedder, store, logger)
	count, err := pipeline(ctx, corpus).Unwrap()
	if err != nil {
		return err
	}
	logger.Info("corpus indexed", "units", count)

	dimension := dims
	if flat != nil {
		dimension = flat.Dimension()
		if err := flat.SaveSnapshot(dir); err != nil {
			return err
		}
		logger.Info("snapshot written", "dir", dir, "units", count, "dimension", dimension)
	}

	// --- Announce rebuild ---
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		if err := publishRebuilt(ctx, natsURL, count, dimension); err != nil {
			// The rebuild itself succeeded; servers pick it up on restart.
			logger.Warn("rebuild announce failed", "err", err)
		} else {
			logger.Info("rebuild announced", "subject", ingest.RebuiltSubject)
		}
	}

	logger.Info("rebuild complete", "duration", time.Since(start))
	return nil
}

func publishRebuilt(ctx context.Context, url string, count, dimension int) error {
	nc, err := nats.Connect(url)
	if err != nil {
		return err
	}
	defer nc.Close()
	return natsutil.Publish(ctx, nc, ingest.RebuiltSubject, ingest.RebuiltEvent{
		Count:     count,
		Dimension: dimension,
		At:        time.Now().UTC(),
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
