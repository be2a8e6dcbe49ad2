package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	pubsubclient "cloud.google.com/go/pubsub"
	gcsclient "cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citydesk/newspipe/internal/archive/gcs"
	memarchive "github.com/citydesk/newspipe/internal/archive/memory"
	"github.com/citydesk/newspipe/internal/classify"
	"github.com/citydesk/newspipe/internal/clock/system"
	"github.com/citydesk/newspipe/internal/config"
	"github.com/citydesk/newspipe/internal/extract"
	"github.com/citydesk/newspipe/internal/fetch"
	"github.com/citydesk/newspipe/internal/gazetteer"
	"github.com/citydesk/newspipe/internal/id/uuid"
	"github.com/citydesk/newspipe/internal/ops"
	"github.com/citydesk/newspipe/internal/pipeline"
	gpub "github.com/citydesk/newspipe/internal/publisher/pubsub"
	memqueue "github.com/citydesk/newspipe/internal/queue/memory"
	memstore "github.com/citydesk/newspipe/internal/storage/memory"
	"github.com/citydesk/newspipe/internal/storage/postgres"
	"github.com/citydesk/newspipe/internal/telemetry"
	"github.com/citydesk/newspipe/internal/telemetry/sinks"
	"github.com/citydesk/newspipe/internal/worker"
)

var seedsFile string

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Runs the extraction pipeline over a batch of candidate links",
		Long: `Consumes candidate links, filters obvious non-articles by URL shape,
fetches the survivors under the configured request cadence, extracts article
fields through the tiered strategy engine, flags wire-service content, and
resolves entity mentions against the gazetteer snapshot. Processing stops
when the run capacity (run.extract_limit * run.extract_batches) is reached
or the queue drains.`,

		RunE: runExtractCommand,
	}
	cmd.Flags().StringVar(&seedsFile, "seeds", "", "file of candidate URLs, one per line")
	_ = cmd.MarkFlagRequired("seeds")
	return cmd
}

func runExtractCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	appInstance, err := resolveApp(ctx)
	if err != nil {
		return err
	}
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	links, err := loadSeeds(seedsFile)
	if err != nil {
		return err
	}
	queue := memqueue.NewQueue(len(links))
	for _, link := range links {
		if err := queue.Enqueue(ctx, link); err != nil {
			return fmt.Errorf("enqueue seed: %w", err)
		}
	}
	queue.Close()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := telemetry.NewHub(telemetry.Config{Logger: logger}, sinks.NewLogSink(logger), promSink)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := hub.Close(closeCtx); cerr != nil {
			logger.Warn("telemetry hub close failed", zap.Error(cerr))
		}
	}()

	opsServer := ops.New(cfg.Ops.Port, prometheus.DefaultGatherer, logger)
	opsServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := opsServer.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("ops server shutdown failed", zap.Error(serr))
		}
	}()

	fetcher, err := buildFetcher(cfg, logger)
	if err != nil {
		return err
	}
	engine, closeEngine, err := buildExtractor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	urlClass, wireClass, err := buildClassifiers(cfg)
	if err != nil {
		return err
	}

	var (
		snapshots *gazetteer.SnapshotCache
		resolver  *gazetteer.Resolver
	)
	if cfg.Gazetteer.SnapshotPath != "" {
		snapshots = gazetteer.NewSnapshotCache(cfg.Gazetteer.SnapshotPath)
		resolver = gazetteer.NewResolver(gazetteer.ResolverConfig{
			FuzzyThreshold:  cfg.Gazetteer.FuzzyThreshold,
			MaxFuzzyEntries: cfg.Gazetteer.MaxFuzzyEntries,
		})
	} else {
		logger.Warn("no gazetteer snapshot configured; entity resolution disabled")
	}

	articles, closeArticles, err := buildArticleSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeArticles()

	archiveStore, closeArchive, err := buildArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	publisher, topic, closePublisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	runner := worker.New(
		worker.Config{
			ExtractLimit:       cfg.Run.ExtractLimit,
			ExtractBatches:     cfg.Run.ExtractBatches,
			BatchSleep:         cfg.Run.BatchSleep,
			Concurrency:        cfg.Run.Concurrency,
			ResolveTimeout:     cfg.Gazetteer.ResolveTimeout,
			ArchivePrefix:      cfg.Archive.Prefix,
			ArchiveContentType: cfg.Archive.ContentType,
			Topic:              topic,
		},
		queue,
		fetcher,
		engine,
		urlClass,
		wireClass,
		resolver,
		snapshots,
		articles,
		archiveStore,
		publisher,
		hub,
		system.New(),
		uuid.New(),
		logger,
	)

	logger.Info("extraction run starting",
		zap.Int("seeds", len(links)),
		zap.Int("capacity", cfg.Run.Capacity()),
		zap.Int("concurrency", cfg.Run.Concurrency),
	)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run pipeline: %w", err)
	}
	logger.Info("extraction run finished",
		zap.Int64("processed", runner.Processed()),
		zap.Int64("batch_sleeps", runner.BatchSleeps()),
	)
	return nil
}

func buildFetcher(cfg config.Config, logger *zap.Logger) (*fetch.Fetcher, error) {
	proxies, err := fetch.NewProxyManager(fetch.ProxyConfig{
		ProviderID: cfg.Proxy.ProviderID,
		BaseURL:    cfg.Proxy.BaseURL,
		Username:   cfg.Proxy.Username,
		Password:   cfg.Proxy.Password,
		Scheme:     cfg.Proxy.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("init proxy manager: %w", err)
	}

	transport, err := fetch.NewCollyTransport(fetch.TransportConfig{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
	}, proxies)
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}

	return fetch.New(
		fetch.Config{
			Timeout:         cfg.Fetch.Timeout,
			BlockRetryLimit: cfg.Fetch.BlockRetryLimit,
		},
		transport,
		fetch.NewPacer(cfg.Fetch.InterRequestMin, cfg.Fetch.InterRequestMax),
		fetch.NewBackoffClock(cfg.Fetch.BackoffMin, cfg.Fetch.BackoffMax),
		fetch.NewBlockDetector(cfg.Fetch.BlockSignatures),
		fetch.NewExponentialRetryPolicy(cfg.Fetch.MaxRetries, cfg.Fetch.RetryBaseDelay, cfg.Fetch.RetryMaxDelay),
		logger,
	), nil
}

func buildExtractor(cfg config.Config, logger *zap.Logger) (*extract.Engine, func(), error) {
	primary := []extract.Strategy{
		extract.NewMetadataStrategy(),
		extract.NewMarkupStrategy(),
	}

	var (
		lastResort extract.Strategy
		closeFn    = func() {}
	)
	if cfg.Extract.RenderEnabled {
		rendered, err := extract.NewRenderedStrategy(extract.RenderedConfig{
			UserAgent:         cfg.Fetch.UserAgent,
			MaxParallel:       cfg.Extract.RenderParallel,
			NavigationTimeout: cfg.Extract.RenderTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init rendered strategy: %w", err)
		}
		lastResort = rendered
		closeFn = rendered.Close
	}

	engine := extract.NewEngine(extract.EngineConfig{
		StrategyTimeout: cfg.Extract.StrategyTimeout,
	}, primary, lastResort, logger)
	return engine, closeFn, nil
}

func buildClassifiers(cfg config.Config) (*classify.URLClassifier, *classify.WireClassifier, error) {
	urlClass := classify.NewURLClassifier()
	if cfg.Classify.URLPatternsPath != "" {
		loaded, err := classify.NewURLClassifierFromFile(cfg.Classify.URLPatternsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load url patterns: %w", err)
		}
		urlClass = loaded
	}

	wireClass := classify.NewWireClassifier()
	if cfg.Classify.WireSignaturesPath != "" {
		loaded, err := classify.NewWireClassifierFromFile(cfg.Classify.WireSignaturesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load wire signatures: %w", err)
		}
		wireClass = loaded
	}
	return urlClass, wireClass, nil
}

func buildArticleSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (pipeline.ArticleSink, func(), error) {
	if cfg.DB.DSN == "" {
		logger.Warn("no database configured; storing articles in memory")
		return memstore.NewArticleStore(), func() {}, nil
	}
	store, err := postgres.NewArticleStore(ctx, postgres.ArticleStoreConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init article store: %w", err)
	}
	return store, store.Close, nil
}

func buildArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (pipeline.Archive, func(), error) {
	if cfg.Archive.GCSBucket == "" {
		logger.Warn("no archive bucket configured; archiving raw pages in memory")
		return memarchive.NewBlobStore(), func() {}, nil
	}
	client, err := gcsclient.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage client: %w", err)
	}
	store, err := gcs.New(client, gcs.Config{Bucket: cfg.Archive.GCSBucket})
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("init blob store: %w", err)
	}
	return store, func() { _ = client.Close() }, nil
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (pipeline.Publisher, string, func(), error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		logger.Warn("no pub/sub topic configured; completion events disabled")
		return nil, "", func() {}, nil
	}
	client, err := pubsubclient.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, "", nil, fmt.Errorf("init pubsub client: %w", err)
	}
	return gpub.New(client), cfg.PubSub.TopicName, func() { _ = client.Close() }, nil
}

// loadSeeds reads one candidate URL per line; blank lines and #-comments are
// skipped.
func loadSeeds(path string) ([]pipeline.CandidateLink, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds file: %w", err)
	}
	defer f.Close()

	ids := uuid.New()
	now := time.Now().UTC()
	var links []pipeline.CandidateLink
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, err := ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("seed id: %w", err)
		}
		links = append(links, pipeline.CandidateLink{
			ID:           id,
			URL:          line,
			Status:       pipeline.LinkStatusPending,
			DiscoveredAt: now,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seeds file: %w", err)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("seeds file %s contains no urls", path)
	}
	return links, nil
}
