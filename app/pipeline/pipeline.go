package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-relay/app/dedup"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/metrics"
	"github.com/lysyi3m/rss-relay/app/notify"
	"github.com/lysyi3m/rss-relay/app/rejects"
)

// Pipeline runs fetch, dedup, keyword filter and dispatch over every configured source.
type Pipeline struct {
	fetcher    Fetcher
	dispatcher Dispatcher
	alerter    notify.Alerter
	store      dedup.Store
	rejectLog  rejects.Log

	cfgMu  sync.RWMutex
	config runConfig

	mu  sync.Mutex
	now func() time.Time
}

// runConfig is the part of the configuration that can be swapped between runs.
type runConfig struct {
	feedConfig  *feed.Config
	matcher     *feed.Matcher
	sources     []feed.Source
	recipients  []string
	concurrency int
}

func newRunConfig(feedConfig *feed.Config) runConfig {
	return runConfig{
		feedConfig:  feedConfig,
		matcher:     feed.NewMatcher(feedConfig.Keywords),
		sources:     feedConfig.Feeds,
		recipients:  feedConfig.Channels,
		concurrency: max(feedConfig.Settings.FetchConcurrency, 1),
	}
}

func New(fetcher Fetcher, dispatcher Dispatcher, alerter notify.Alerter, store dedup.Store, rejectLog rejects.Log, feedConfig *feed.Config) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		alerter:    alerter,
		store:      store,
		rejectLog:  rejectLog,
		config:     newRunConfig(feedConfig),
		now:        time.Now,
	}
}

// Reload replaces feeds, keywords and recipients. A run in progress keeps the configuration it started with.
func (p *Pipeline) Reload(feedConfig *feed.Config) {
	config := newRunConfig(feedConfig)

	p.cfgMu.Lock()
	p.config = config
	p.cfgMu.Unlock()
}

// Config returns the configuration the next run will use.
func (p *Pipeline) Config() *feed.Config {
	p.cfgMu.RLock()
	defer p.cfgMu.RUnlock()
	return p.config.feedConfig
}

func (p *Pipeline) snapshot() runConfig {
	p.cfgMu.RLock()
	defer p.cfgMu.RUnlock()
	return p.config
}

// Run executes one pass. Runs never overlap. A non-nil error is only returned when ctx
// was cancelled, in which case the partial report is still returned and the store persisted.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	config := p.snapshot()

	report := &Report{
		RunID:     uuid.New(),
		StartedAt: p.now(),
		Rejected:  make(map[rejects.Reason]int),
	}
	logger := slog.With("run_id", report.RunID)
	logger.Info("Run started", "sources", len(config.sources))

	set, persistable := p.loadStore(ctx, report, logger)

	results := p.fetchAll(ctx, config)
	for _, result := range results {
		report.Candidates += len(result.items)
	}

	processed := 0
	for i := range results {
		result := &results[i]

		if ctx.Err() == nil && len(result.items) == 0 {
			p.alertEmptySource(ctx, result, logger)
		}

		for _, item := range result.items {
			if ctx.Err() != nil {
				break
			}
			p.evaluate(ctx, config, set, item, result, report, logger)
			processed++
		}

		report.Sources = append(report.Sources, result.report)
	}
	report.Unprocessed = report.Candidates - processed

	// Persist even after cancellation so accepted items are not re-sent
	if persistable {
		if err := p.store.Persist(context.WithoutCancel(ctx), set); err != nil {
			logger.Error("Failed to persist dedup store", "error", err)
			metrics.RecordPersistError()
			report.Warnings = append(report.Warnings, fmt.Sprintf("failed to persist dedup store: %v", err))
		}
	} else {
		report.Warnings = append(report.Warnings, "dedup store was not persisted because it failed to load")
	}

	report.FinishedAt = p.now()
	metrics.RecordRun(report.Duration().Seconds())

	logger.Info("Run completed",
		"candidates", report.Candidates,
		"accepted", report.Accepted,
		"rejected", report.TotalRejected(),
		"unprocessed", report.Unprocessed,
		"warnings", len(report.Warnings),
		"duration", report.Duration())

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}

	return report, nil
}

func (p *Pipeline) loadStore(ctx context.Context, report *Report, logger *slog.Logger) (*dedup.Set, bool) {
	set, err := p.store.Load(ctx)
	if err == nil && set != nil {
		links, titles := set.Len()
		logger.Debug("Dedup store loaded", "links", links, "titles", titles)
		return set, true
	}

	if err == nil {
		return dedup.NewSet(), true
	}

	// Persisting a fresh set here would overwrite state that is merely unreadable
	logger.Warn("Failed to load dedup store, continuing with an empty set", "error", err)
	metrics.RecordPersistError()
	report.Warnings = append(report.Warnings, fmt.Sprintf("failed to load dedup store: %v", err))

	return dedup.NewSet(), false
}

// fetchAll fetches every source concurrently and returns results in source order.
func (p *Pipeline) fetchAll(ctx context.Context, config runConfig) []fetchResult {
	results := make([]fetchResult, len(config.sources))

	var g errgroup.Group
	g.SetLimit(config.concurrency)

	for i, source := range config.sources {
		g.Go(func() error {
			results[i] = p.fetchSource(ctx, source)
			return nil
		})
	}
	g.Wait()

	return results
}

func (p *Pipeline) fetchSource(ctx context.Context, source feed.Source) fetchResult {
	result := fetchResult{report: SourceReport{Name: source.Name, URL: source.URL}}

	items, err := p.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		slog.Warn("Failed to fetch feed", "feed", source.Name, "url", source.URL, "error", err)
		result.err = err
	}

	if len(items) == 0 && source.Fallback != "" {
		slog.Info("Trying fallback feed", "feed", source.Name, "url", source.Fallback)
		result.report.URL = source.Fallback
		result.report.UsedFallback = true

		items, err = p.fetcher.Fetch(ctx, source.Fallback)
		if err != nil {
			slog.Warn("Failed to fetch fallback feed", "feed", source.Name, "url", source.Fallback, "error", err)
			result.err = err
		} else {
			result.err = nil
		}
	}

	result.items = items
	result.report.Items = len(items)
	if result.err != nil {
		result.report.Error = result.err.Error()
	}

	slog.Debug("Feed fetched", "feed", source.Name, "url", result.report.URL, "items", len(items))

	return result
}

func (p *Pipeline) alertEmptySource(ctx context.Context, result *fetchResult, logger *slog.Logger) {
	text := fmt.Sprintf("Empty RSS feed: %s (%s)", result.report.Name, result.report.URL)
	if result.err != nil {
		text = fmt.Sprintf("RSS feed %s (%s) failed: %v", result.report.Name, result.report.URL, result.err)
	}

	logger.Warn("Feed source yielded no items", "feed", result.report.Name, "url", result.report.URL)

	if p.alerter != nil {
		p.alerter.Alert(ctx, text)
	}
}

func (p *Pipeline) evaluate(ctx context.Context, config runConfig, set *dedup.Set, item feed.Item, result *fetchResult, report *Report, logger *slog.Logger) {
	source := result.report.Name
	key := dedup.Normalize(item)

	if set.IsDuplicate(key) {
		logger.Debug("Item rejected", "feed", source, "link", item.Link, "reason", rejects.ReasonDuplicate)
		p.reject(ctx, item, source, rejects.ReasonDuplicate, result, report, logger)
		return
	}

	keyword, ok := config.matcher.MatchItem(item)
	if !ok {
		logger.Debug("Item rejected", "feed", source, "link", item.Link, "reason", rejects.ReasonNoKeywordMatch)
		p.reject(ctx, item, source, rejects.ReasonNoKeywordMatch, result, report, logger)
		return
	}

	dispatch := p.dispatcher.Dispatch(ctx, item, config.recipients)
	if !dispatch.Success {
		logger.Warn("Item rejected", "feed", source, "link", item.Link, "reason", rejects.ReasonDeliveryFailed, "failures", len(dispatch.Failures))
		p.reject(ctx, item, source, rejects.ReasonDeliveryFailed, result, report, logger)
		return
	}

	set.Record(key)
	report.Accepted++
	result.report.Accepted++
	metrics.RecordItem(source, "accepted")

	logger.Info("Item accepted", "feed", source, "link", item.Link, "keyword", keyword, "recipients", len(dispatch.Delivered))
}

func (p *Pipeline) reject(ctx context.Context, item feed.Item, source string, reason rejects.Reason, result *fetchResult, report *Report, logger *slog.Logger) {
	report.Rejected[reason]++
	result.report.Rejected++
	metrics.RecordItem(source, string(reason))

	record := rejects.Record{
		Title:  item.Title,
		Link:   item.Link,
		Source: source,
		Reason: reason,
		Time:   p.now().UTC(),
	}

	if err := p.rejectLog.Append(context.WithoutCancel(ctx), record); err != nil {
		logger.Error("Failed to append reject record", "link", item.Link, "reason", reason, "error", err)
		metrics.RecordPersistError()
		report.Warnings = append(report.Warnings, fmt.Sprintf("failed to record reject for %s: %v", item.Link, err))
	}
}
