package feed

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"declaw-backend/internal/domain"
)

// DefaultMaxRetained caps the aggregated news list.
const DefaultMaxRetained = 120

// SourceResult is the tagged outcome of one source fetch. The public
// contract only exposes the successful union, but per-source outcomes are
// kept for logging and tests.
type SourceResult struct {
	Source string
	Items  []domain.FeedItem
	Err    error
}

// Aggregator fans out to every configured source, tolerates partial
// failure and maintains the dedup/sort/cap invariants of the combined
// list.
type Aggregator struct {
	fetcher     *Fetcher
	parser      *Parser
	sources     []domain.SourceConfig
	maxRetained int
	logger      *log.Logger
	onSource    func(source string, err error)
}

// AggregatorOptions contains configuration for creating an Aggregator.
type AggregatorOptions struct {
	Fetcher     *Fetcher
	Parser      *Parser
	Sources     []domain.SourceConfig
	MaxRetained int // Default: DefaultMaxRetained
	Logger      *log.Logger

	// OnSourceResult, if non-nil, is called once per source per pass,
	// after its fetch completes. Used for instrumentation.
	OnSourceResult func(source string, err error)
}

// NewAggregator creates a feed aggregator.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	parser := opts.Parser
	if parser == nil {
		parser = NewParser()
	}
	maxRetained := opts.MaxRetained
	if maxRetained == 0 {
		maxRetained = DefaultMaxRetained
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		fetcher:     fetcher,
		parser:      parser,
		sources:     opts.Sources,
		maxRetained: maxRetained,
		logger:      logger,
		onSource:    opts.OnSourceResult,
	}
}

// Aggregate fetches every configured source concurrently and returns the
// combined item list, deduplicated by URL, sorted newest-first and capped
// at the retained maximum. A failing source contributes zero items and
// never fails the pass.
func (a *Aggregator) Aggregate(ctx context.Context) []domain.FeedItem {
	results := a.collect(ctx)

	var combined []domain.FeedItem
	for _, res := range results {
		if a.onSource != nil {
			a.onSource(res.Source, res.Err)
		}
		if res.Err != nil {
			a.logger.Printf("source %s failed: %v", res.Source, res.Err)
			continue
		}
		combined = append(combined, res.Items...)
	}

	return MergeIncoming(nil, combined, a.maxRetained)
}

// collect runs the per-source fetch+parse fan-out. Result order matches
// source order so cross-pass tie ordering stays deterministic.
func (a *Aggregator) collect(ctx context.Context) []SourceResult {
	results := make([]SourceResult, len(a.sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per source.
	_ = g.Wait()

	return results
}

func (a *Aggregator) fetchOne(ctx context.Context, src domain.SourceConfig) SourceResult {
	raw, err := a.fetcher.Fetch(ctx, src.Endpoint)
	if err != nil {
		return SourceResult{Source: src.Label, Err: err}
	}
	return SourceResult{
		Source: src.Label,
		Items:  a.parser.Parse(raw, src.Label, src.MaxItems),
	}
}

// MergeIncoming merges freshly fetched items into the retained list. Items
// are keyed by URL with the incoming copy winning, then re-sorted
// newest-first and truncated to maxRetained. An empty incoming slice
// leaves the existing list unchanged apart from truncation, which is what
// lets a transient empty fetch keep the visible list intact.
func MergeIncoming(existing, incoming []domain.FeedItem, maxRetained int) []domain.FeedItem {
	merged := make([]domain.FeedItem, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing))

	for _, item := range existing {
		index[item.URL] = len(merged)
		merged = append(merged, item)
	}
	for _, item := range incoming {
		if at, seen := index[item.URL]; seen {
			merged[at] = item
			continue
		}
		index[item.URL] = len(merged)
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SortKey() > merged[j].SortKey()
	})

	if maxRetained > 0 && len(merged) > maxRetained {
		merged = merged[:maxRetained]
	}
	return merged
}
