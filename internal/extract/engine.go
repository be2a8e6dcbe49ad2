package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// EngineConfig controls the extraction driver.
type EngineConfig struct {
	// StrategyTimeout bounds each individual strategy attempt; a timeout in
	// one strategy must not block progress to the next.
	StrategyTimeout time.Duration
}

// Engine runs the strategies in fixed priority order and merges their output
// at field granularity. The final strategy is invoked only when the earlier
// ones together leave at least one field empty.
type Engine struct {
	cfg        EngineConfig
	primary    []Strategy
	lastResort Strategy
	logger     *zap.Logger
}

// NewEngine builds the driver. lastResort may be nil when rendering is
// disabled.
func NewEngine(cfg EngineConfig, primary []Strategy, lastResort Strategy, logger *zap.Logger) *Engine {
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:        cfg,
		primary:    primary,
		lastResort: lastResort,
		logger:     logger,
	}
}

// Extract implements pipeline.Extractor. A strategy that errors or times out
// is treated as having produced nothing; only a fully empty result after all
// strategies is an error.
func (e *Engine) Extract(ctx context.Context, fetched pipeline.FetchResult) (pipeline.ExtractionResult, error) {
	doc := Document{URL: fetched.FinalURL, Body: fetched.Body}
	result := pipeline.ExtractionResult{
		FieldProvenance: make(map[string]string),
	}

	for _, strategy := range e.primary {
		e.runStrategy(ctx, strategy, doc, &result)
		if !e.hasGaps(result) {
			break
		}
	}
	if e.hasGaps(result) && e.lastResort != nil {
		e.runStrategy(ctx, e.lastResort, doc, &result)
	}

	if result.Completeness() == 0 {
		return pipeline.ExtractionResult{}, &pipeline.ExtractionError{
			Kind: pipeline.ExtractErrNoContent,
			URL:  fetched.FinalURL,
		}
	}
	return result, nil
}

// runStrategy attempts one strategy under its own timeout and merges any
// produced fields. Already-filled fields are never overwritten.
func (e *Engine) runStrategy(ctx context.Context, strategy Strategy, doc Document, result *pipeline.ExtractionResult) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.StrategyTimeout)
	defer cancel()

	result.MethodsUsed = append(result.MethodsUsed, strategy.Name())

	fields, err := strategy.Attempt(attemptCtx, doc)
	if err != nil {
		e.logger.Debug("extraction strategy produced nothing",
			zap.String("strategy", strategy.Name()),
			zap.String("url", doc.URL),
			zap.Error(err),
		)
		return
	}
	e.merge(strategy.Name(), fields, result)
}

// merge applies the field-level policy: the first strategy in priority order
// that produces a non-empty value for a field wins; later strategies only
// fill gaps.
func (e *Engine) merge(strategyName string, fields PartialFields, result *pipeline.ExtractionResult) {
	if result.Title == "" && fields.Title != "" {
		result.Title = fields.Title
		result.FieldProvenance["title"] = strategyName
	}
	if result.Author == "" && fields.Author != "" {
		result.Author = fields.Author
		result.FieldProvenance["author"] = strategyName
	}
	if result.Content == "" && fields.Content != "" {
		result.Content = fields.Content
		result.FieldProvenance["content"] = strategyName
	}
	if result.PublishDate.IsZero() && !fields.PublishDate.IsZero() {
		result.PublishDate = fields.PublishDate
		result.FieldProvenance["publish_date"] = strategyName
	}
}

func (e *Engine) hasGaps(result pipeline.ExtractionResult) bool {
	return result.Title == "" || result.Author == "" || result.Content == "" || result.PublishDate.IsZero()
}
