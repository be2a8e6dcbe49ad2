// Package worker implements the per-candidate pipeline execution loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/citydesk/newspipe/internal/classify"
	"github.com/citydesk/newspipe/internal/gazetteer"
	"github.com/citydesk/newspipe/internal/pipeline"
	"github.com/citydesk/newspipe/internal/telemetry"
)

// Config controls Runner behavior. Run capacity is ExtractLimit *
// ExtractBatches; the runner never computes its own batch sizes.
type Config struct {
	ExtractLimit       int
	ExtractBatches     int
	BatchSleep         time.Duration
	Concurrency        int
	ResolveTimeout     time.Duration
	ArchivePrefix      string
	ArchiveContentType string
	Topic              string
}

// Runner consumes candidate links and executes the full pipeline for each:
// classify, fetch, extract, classify-wire, resolve. Stage order is strict
// and sequential per URL; no ordering holds across URLs.
type Runner struct {
	cfg       Config
	queue     pipeline.CandidateQueue
	fetcher   pipeline.Fetcher
	extractor pipeline.Extractor
	urlClass  *classify.URLClassifier
	wireClass *classify.WireClassifier
	resolver  *gazetteer.Resolver
	snapshots *gazetteer.SnapshotCache
	articles  pipeline.ArticleSink
	archive   pipeline.Archive
	publisher pipeline.Publisher
	emitter   telemetry.Emitter
	clock     pipeline.Clock
	ids       pipeline.IDGenerator
	logger    *zap.Logger

	sleep       func(ctx context.Context, d time.Duration) error
	batchSleeps atomic.Int64
	processed   atomic.Int64
}

// New constructs a Runner.
func New(
	cfg Config,
	queue pipeline.CandidateQueue,
	fetcher pipeline.Fetcher,
	extractor pipeline.Extractor,
	urlClass *classify.URLClassifier,
	wireClass *classify.WireClassifier,
	resolver *gazetteer.Resolver,
	snapshots *gazetteer.SnapshotCache,
	articles pipeline.ArticleSink,
	archive pipeline.Archive,
	publisher pipeline.Publisher,
	emitter telemetry.Emitter,
	clock pipeline.Clock,
	ids pipeline.IDGenerator,
	logger *zap.Logger,
) *Runner {
	if cfg.ExtractLimit <= 0 {
		cfg.ExtractLimit = 50
	}
	if cfg.ExtractBatches <= 0 {
		cfg.ExtractBatches = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 2 * time.Second
	}
	if cfg.ArchiveContentType == "" {
		cfg.ArchiveContentType = "text/html; charset=utf-8"
	}
	if emitter == nil {
		emitter = telemetry.NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		queue:     queue,
		fetcher:   fetcher,
		extractor: extractor,
		urlClass:  urlClass,
		wireClass: wireClass,
		resolver:  resolver,
		snapshots: snapshots,
		articles:  articles,
		archive:   archive,
		publisher: publisher,
		emitter:   emitter,
		clock:     clock,
		ids:       ids,
		logger:    logger,
		sleep:     contextSleep,
	}
}

// Run executes up to ExtractBatches batches of ExtractLimit candidates, with
// a batch sleep after each batch. It returns nil when the queue drains or
// capacity is reached; cancellation aborts sleeps and in-flight dequeues
// promptly (at-most-once semantics for the URL in progress).
func (r *Runner) Run(ctx context.Context) error {
	defer r.teardown()
	for batch := 0; batch < r.cfg.ExtractBatches; batch++ {
		n, err := r.runBatch(ctx)
		if err != nil {
			return err
		}
		r.batchSleeps.Add(1)
		if err := r.sleep(ctx, r.cfg.BatchSleep); err != nil {
			return err
		}
		if n < r.cfg.ExtractLimit {
			// Queue drained before capacity; nothing left for later batches.
			return nil
		}
	}
	return nil
}

// Processed returns the number of candidates handled so far.
func (r *Runner) Processed() int64 { return r.processed.Load() }

// BatchSleeps returns how many batch-sleep intervals have elapsed.
func (r *Runner) BatchSleeps() int64 { return r.batchSleeps.Load() }

func (r *Runner) teardown() {
	if r.snapshots != nil {
		r.snapshots.Teardown()
	}
}

// runBatch dequeues up to ExtractLimit candidates and processes them on the
// bounded worker pool. Returns the number dequeued.
func (r *Runner) runBatch(ctx context.Context) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	dequeued := 0
	for ; dequeued < r.cfg.ExtractLimit; dequeued++ {
		link, err := r.queue.Dequeue(gctx)
		if err != nil {
			if gctx.Err() != nil {
				_ = g.Wait()
				return dequeued, fmt.Errorf("batch canceled: %w", gctx.Err())
			}
			// Queue closed or drained.
			break
		}
		g.Go(func() error {
			outcome := r.process(gctx, link)
			r.processed.Add(1)
			r.logger.Debug("candidate processed",
				zap.String("candidate_id", link.ID),
				zap.String("outcome", string(outcome.Kind)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dequeued, fmt.Errorf("batch wait: %w", err)
	}
	if ctx.Err() != nil {
		return dequeued, fmt.Errorf("batch canceled: %w", ctx.Err())
	}
	return dequeued, nil
}

// process runs the full stage cascade for one candidate. Every terminal
// path produces a typed outcome plus telemetry; nothing is thrown upward.
func (r *Runner) process(ctx context.Context, link pipeline.CandidateLink) pipeline.Outcome {
	// Stage 1: URL classification, before any network cost.
	start := r.clock.Now()
	if !r.urlClass.IsLikelyArticle(link.URL) {
		r.updateStatus(ctx, link, pipeline.LinkStatusFiltered)
		r.emit(link, telemetry.StageClassify, telemetry.OutcomeFiltered, r.since(start), "non-article url pattern")
		r.emit(link, telemetry.StageDone, telemetry.OutcomeFiltered, r.since(start), "")
		return pipeline.Outcome{Kind: pipeline.OutcomeFiltered}
	}
	r.updateStatus(ctx, link, pipeline.LinkStatusArticle)
	r.emit(link, telemetry.StageClassify, telemetry.OutcomeOK, r.since(start), "")

	// Stage 2: fetch.
	start = r.clock.Now()
	fetched, err := r.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return r.fail(ctx, link, telemetry.StageFetch, r.since(start), err)
	}
	r.emit(link, telemetry.StageFetch, telemetry.OutcomeOK, r.since(start), fmt.Sprintf("status=%d", fetched.StatusCode))
	r.archiveRaw(ctx, link, fetched)

	// Stage 3: extraction.
	start = r.clock.Now()
	extracted, err := r.extractor.Extract(ctx, fetched)
	if err != nil {
		return r.fail(ctx, link, telemetry.StageExtract, r.since(start), err)
	}
	completeness := extracted.Completeness()
	r.emit(link, telemetry.StageExtract, telemetry.OutcomeOK, r.since(start),
		fmt.Sprintf("completeness=%.2f methods=%s", completeness, strings.Join(extracted.MethodsUsed, ",")))

	// Stage 4: wire classification corrects the article status.
	start = r.clock.Now()
	status := pipeline.ArticleStatusExtracted
	finalURL := fetched.FinalURL
	if finalURL == "" {
		finalURL = link.URL
	}
	decision := r.wireClass.Classify(finalURL, extracted.Content)
	if decision.IsWire {
		status = pipeline.ArticleStatusWire
	}
	r.emit(link, telemetry.StageWire, telemetry.OutcomeOK, r.since(start), string(decision.Reason))

	article, err := r.buildArticle(link, extracted, status)
	if err != nil {
		return r.fail(ctx, link, telemetry.StageExtract, 0, err)
	}
	if err := r.articles.StoreArticle(ctx, article); err != nil {
		return r.fail(ctx, link, telemetry.StageExtract, 0, fmt.Errorf("store article: %w", err))
	}

	// Stage 5: entity resolution. Absence of matches is a normal result.
	start = r.clock.Now()
	entities := r.resolveEntities(ctx, link, extracted)
	r.updateStatus(ctx, link, pipeline.LinkStatusExtracted)
	r.publishCompletion(ctx, article, completeness, entities)
	r.emit(link, telemetry.StageDone, telemetry.OutcomeOK, r.clock.Now().Sub(start), string(status))

	return pipeline.Outcome{
		Kind:         pipeline.OutcomeExtracted,
		Completeness: completeness,
		Status:       status,
	}
}

func (r *Runner) buildArticle(link pipeline.CandidateLink, extracted pipeline.ExtractionResult, status pipeline.ArticleStatus) (pipeline.Article, error) {
	id, err := r.ids.NewID()
	if err != nil {
		return pipeline.Article{}, fmt.Errorf("article id: %w", err)
	}
	return pipeline.Article{
		ID:              id,
		CandidateLinkID: link.ID,
		Title:           extracted.Title,
		Author:          extracted.Author,
		Content:         extracted.Content,
		PublishDate:     extracted.PublishDate,
		Status:          status,
		ExtractedAt:     r.clock.Now(),
	}, nil
}

func (r *Runner) resolveEntities(ctx context.Context, link pipeline.CandidateLink, extracted pipeline.ExtractionResult) []pipeline.ResolvedEntity {
	if r.resolver == nil || r.snapshots == nil {
		return nil
	}
	idx, err := r.snapshots.Get()
	if err != nil {
		r.emit(link, telemetry.StageResolve, telemetry.OutcomeError, 0, err.Error())
		return nil
	}

	mentions := gazetteer.ExtractMentions(extracted.Title + " " + extracted.Content)
	var resolved []pipeline.ResolvedEntity
	for _, mention := range mentions {
		resolveCtx, cancel := context.WithTimeout(ctx, r.cfg.ResolveTimeout)
		match := r.resolver.Resolve(resolveCtx, mention, idx)
		cancel()
		if match == nil {
			continue
		}
		resolved = append(resolved, pipeline.ResolvedEntity{
			Mention:    mention,
			Canonical:  match.Entry.Name,
			EntityType: match.Entry.EntityType,
			Score:      match.Score,
			Kind:       string(match.Kind),
		})
	}
	outcome := telemetry.OutcomeOK
	if len(resolved) == 0 {
		outcome = telemetry.OutcomeNoMatch
	}
	r.emit(link, telemetry.StageResolve, outcome, 0, fmt.Sprintf("mentions=%d linked=%d", len(mentions), len(resolved)))
	return resolved
}

func (r *Runner) archiveRaw(ctx context.Context, link pipeline.CandidateLink, fetched pipeline.FetchResult) {
	if r.archive == nil {
		return
	}
	prefix := strings.Trim(r.cfg.ArchivePrefix, "/")
	path := fmt.Sprintf("%s.html", link.ID)
	if prefix != "" {
		path = fmt.Sprintf("%s/%s", prefix, path)
	}
	if _, err := r.archive.PutObject(ctx, path, r.cfg.ArchiveContentType, fetched.Body); err != nil {
		// Archive failures degrade replayability, not correctness.
		r.logger.Warn("archive raw document failed",
			zap.String("candidate_id", link.ID),
			zap.Error(err),
		)
	}
}

func (r *Runner) publishCompletion(ctx context.Context, article pipeline.Article, completeness float64, entities []pipeline.ResolvedEntity) {
	if r.publisher == nil || r.cfg.Topic == "" {
		return
	}
	event := pipeline.CompletionEvent{
		ArticleID:       article.ID,
		CandidateLinkID: article.CandidateLinkID,
		Status:          article.Status,
		Completeness:    completeness,
		Entities:        entities,
		ExtractedAt:     article.ExtractedAt,
	}
	if _, err := r.publisher.Publish(ctx, r.cfg.Topic, event); err != nil {
		r.logger.Warn("publish completion failed",
			zap.String("article_id", article.ID),
			zap.Error(err),
		)
	}
}

// fail maps a stage error onto the failed outcome, telemetry, and candidate
// status. It is the single terminal-failure path.
func (r *Runner) fail(ctx context.Context, link pipeline.CandidateLink, stage telemetry.Stage, dur time.Duration, err error) pipeline.Outcome {
	outcome := telemetry.OutcomeError
	kind := "error"
	var fe *pipeline.FetchError
	var ee *pipeline.ExtractionError
	switch {
	case errors.As(err, &fe):
		kind = string(fe.Kind)
		if fe.Kind == pipeline.FetchErrBlocked {
			outcome = telemetry.OutcomeBlocked
		}
	case errors.As(err, &ee):
		kind = string(ee.Kind)
	}
	r.updateStatus(ctx, link, pipeline.LinkStatusFailed)
	r.emit(link, stage, outcome, dur, err.Error())
	r.emit(link, telemetry.StageDone, telemetry.OutcomeError, dur, kind)
	return pipeline.Outcome{Kind: pipeline.OutcomeFailed, FailureKind: kind}
}

func (r *Runner) updateStatus(ctx context.Context, link pipeline.CandidateLink, status pipeline.LinkStatus) {
	if err := r.queue.UpdateStatus(ctx, link.ID, status); err != nil {
		r.logger.Warn("candidate status update failed",
			zap.String("candidate_id", link.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (r *Runner) emit(link pipeline.CandidateLink, stage telemetry.Stage, outcome telemetry.Outcome, dur time.Duration, detail string) {
	r.emitter.Emit(telemetry.Event{
		CandidateID: link.ID,
		TS:          r.clock.Now(),
		Stage:       stage,
		URL:         link.URL,
		Outcome:     outcome,
		Dur:         dur,
		Detail:      detail,
	})
}

func (r *Runner) since(start time.Time) time.Duration {
	return r.clock.Now().Sub(start)
}

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("batch sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
