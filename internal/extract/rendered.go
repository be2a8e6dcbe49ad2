package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// RenderedConfig controls the last-resort rendered-DOM strategy.
type RenderedConfig struct {
	UserAgent         string
	MaxParallel       int
	NavigationTimeout time.Duration
}

// RenderedStrategy executes the page's scripts in headless Chrome and re-runs
// the cheaper strategies over the rendered DOM. It is by far the most
// expensive strategy, so the engine only invokes it when strategies 1-2
// together leave at least one field empty.
type RenderedStrategy struct {
	cfg         RenderedConfig
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	metadata    *MetadataStrategy
	markup      *MarkupStrategy
}

// NewRenderedStrategy creates the chromedp-backed strategy.
func NewRenderedStrategy(cfg RenderedConfig) (*RenderedStrategy, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 25 * time.Second
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &RenderedStrategy{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		metadata:    NewMetadataStrategy(),
		markup:      NewMarkupStrategy(),
	}, nil
}

// Close cancels the allocator context.
func (s *RenderedStrategy) Close() {
	s.allocCancel()
}

// Name implements Strategy.
func (s *RenderedStrategy) Name() string { return "rendered" }

// Attempt implements Strategy.
func (s *RenderedStrategy) Attempt(ctx context.Context, doc Document) (PartialFields, error) {
	if err := s.acquire(ctx); err != nil {
		return PartialFields{}, err
	}
	defer s.release()

	html, err := s.render(ctx, doc.URL)
	if err != nil {
		return PartialFields{}, err
	}

	rendered := Document{URL: doc.URL, Body: []byte(html)}
	fields, err := s.metadata.Attempt(ctx, rendered)
	if err != nil {
		fields = PartialFields{}
	}
	scraped, err := s.markup.Attempt(ctx, rendered)
	if err != nil {
		return fields, nil
	}
	if fields.Title == "" {
		fields.Title = scraped.Title
	}
	if fields.Author == "" {
		fields.Author = scraped.Author
	}
	if fields.Content == "" {
		fields.Content = scraped.Content
	}
	if fields.PublishDate.IsZero() {
		fields.PublishDate = scraped.PublishDate
	}
	return fields, nil
}

func (s *RenderedStrategy) render(ctx context.Context, url string) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(s.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, s.cfg.NavigationTimeout)
	defer cancel()

	// Abort the navigation promptly if the caller's context ends first.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if s.cfg.UserAgent != "" {
		actions = append(
			[]chromedp.Action{emulation.SetUserAgentOverride(s.cfg.UserAgent)},
			actions...,
		)
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, nil
}

func (s *RenderedStrategy) acquire(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	select {
	case s.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("render slot wait canceled: %w", ctx.Err())
	}
}

func (s *RenderedStrategy) release() {
	if s.limiter == nil {
		return
	}
	select {
	case <-s.limiter:
	default:
	}
}
