// Command indexer builds a searchable snapshot of the documentation corpus.
//
// The corpus comes from PostgreSQL by default, or from a JSON export via
// -corpus. The snapshot is written atomically to the configured path and an
// index.complete event is published so running search services reload it.
// With -interval the indexer stays up and rebuilds periodically.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/corpus"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/searcher"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/stopword"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/store"
	"github.com/AlirezaFarnia/PsyNeuLink/internal/tokenizer"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/config"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/kafka"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/logger"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/metrics"
	"github.com/AlirezaFarnia/PsyNeuLink/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flag.String("corpus", "", "JSON corpus file; overrides the PostgreSQL source")
	interval := flag.Duration("interval", 0, "rebuild interval; 0 builds once and exits")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("indexer")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()

	b := &builder{
		cfg:        cfg,
		corpusPath: *corpusPath,
		producer:   producer,
		metrics:    m,
	}

	if *interval <= 0 {
		if err := b.run(ctx); err != nil {
			log.Error("build failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Metrics.Enabled {
		ms := metrics.NewServer(m, cfg.Metrics.Port)
		go func() {
			if err := ms.Start(ctx); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	log.Info("periodic indexing started", "interval", *interval)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	if err := b.run(ctx); err != nil {
		log.Error("build failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			log.Info("indexer stopping")
			return
		case <-ticker.C:
			if err := b.run(ctx); err != nil {
				log.Error("build failed", "error", err)
			}
		}
	}
}

type builder struct {
	cfg        *config.Config
	corpusPath string
	producer   *kafka.Producer
	metrics    *metrics.Metrics
}

func (b *builder) run(ctx context.Context) error {
	log := logger.WithComponent("indexer")
	started := time.Now()

	docs, objects, stamp, err := b.loadCorpus(ctx)
	if err != nil {
		b.metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("loading corpus: %w", err)
	}
	log.Info("corpus loaded", "docs", len(docs), "objects", len(objects))

	snap, err := index.Build(docs, objects, index.BuildConfig{
		Tokenizer: tokenizer.Config{PreserveCompound: b.cfg.Index.PreserveCompound},
		Stopwords: stopword.Default().Extend(b.cfg.Index.ExtraStopwords...),
		Stamp:     stamp,
	})
	if err != nil {
		b.metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("building index: %w", err)
	}

	if err := store.Save(b.cfg.Index.SnapshotPath, snap); err != nil {
		b.metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("writing snapshot: %w", err)
	}

	ev := searcher.ReloadEvent{
		BuildID:   uuid.NewString(),
		Path:      b.cfg.Index.SnapshotPath,
		Stamp:     snap.Stamp(),
		DocCount:  snap.DocCount(),
		TermCount: snap.TermCount(),
	}
	if err := b.producer.Publish(ctx, kafka.Event{Key: ev.BuildID, Value: ev}); err != nil {
		// snapshot is on disk; searchers pick it up on restart even if the
		// announcement is lost
		log.Warn("failed to publish index.complete", "build_id", ev.BuildID, "error", err)
	}

	elapsed := time.Since(started)
	b.metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
	b.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	b.metrics.ObserveSnapshot(snap.DocCount(), snap.ObjectCount(), snap.TermCount())
	log.Info("snapshot built",
		"build_id", ev.BuildID,
		"stamp", snap.Stamp(),
		"docs", snap.DocCount(),
		"objects", snap.ObjectCount(),
		"terms", snap.TermCount(),
		"path", b.cfg.Index.SnapshotPath,
		"duration", elapsed,
	)
	return nil
}

func (b *builder) loadCorpus(ctx context.Context) ([]index.Document, []index.Object, string, error) {
	if b.corpusPath != "" {
		file, err := corpus.ReadFile(b.corpusPath)
		if err != nil {
			return nil, nil, "", err
		}
		return file.Documents, file.Objects, file.Stamp, nil
	}

	db, err := postgres.Connect(ctx, b.cfg.Postgres)
	if err != nil {
		return nil, nil, "", err
	}
	defer db.Close()

	src := corpus.NewStore(db)
	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	objects, err := src.Objects(ctx)
	if err != nil {
		return nil, nil, "", err
	}
	return docs, objects, "", nil
}
