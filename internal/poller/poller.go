// Package poller owns the periodically refreshed state served to
// clients: the retained news list, the latest X posts and the market
// snapshot staleness signal. A single goroutine writes, readers take
// copies under a read lock.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/feed"
)

// Default refresh cadence.
const (
	DefaultNewsInterval   = 30 * time.Second
	DefaultSocialInterval = 2 * time.Minute
	DefaultStaleAfter     = 90 * time.Second
)

// NewsSource produces the merged news list for one refresh cycle.
type NewsSource interface {
	Aggregate(ctx context.Context) []domain.FeedItem
}

// SocialSource produces the X post list for one refresh cycle.
type SocialSource interface {
	Aggregate(ctx context.Context) []domain.XPost
}

// Poller refreshes feeds on a fixed cadence and retains the last good
// result across failed cycles.
type Poller struct {
	news   NewsSource
	social SocialSource

	newsInterval   time.Duration
	socialInterval time.Duration
	staleAfter     time.Duration
	maxRetained    int
	logger         *log.Logger
	now            func() time.Time

	mu          sync.RWMutex
	items       []domain.FeedItem
	posts       []domain.XPost
	newsCycle   uint64
	socialCycle uint64
	lastNews    time.Time
	lastSocial  time.Time
}

// Options contains configuration for creating a Poller.
type Options struct {
	News           NewsSource
	Social         SocialSource
	NewsInterval   time.Duration // Default: DefaultNewsInterval
	SocialInterval time.Duration // Default: DefaultSocialInterval
	StaleAfter     time.Duration // Default: DefaultStaleAfter
	MaxRetained    int           // Default: feed.DefaultMaxRetained
	Logger         *log.Logger
}

// New creates a poller. Run must be called for state to refresh.
func New(opts Options) *Poller {
	newsInterval := opts.NewsInterval
	if newsInterval == 0 {
		newsInterval = DefaultNewsInterval
	}
	socialInterval := opts.SocialInterval
	if socialInterval == 0 {
		socialInterval = DefaultSocialInterval
	}
	staleAfter := opts.StaleAfter
	if staleAfter == 0 {
		staleAfter = DefaultStaleAfter
	}
	maxRetained := opts.MaxRetained
	if maxRetained == 0 {
		maxRetained = feed.DefaultMaxRetained
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		news:           opts.News,
		social:         opts.Social,
		newsInterval:   newsInterval,
		socialInterval: socialInterval,
		staleAfter:     staleAfter,
		maxRetained:    maxRetained,
		logger:         logger,
		now:            time.Now,
	}
}

// Run refreshes both feeds immediately, then on their intervals until
// ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.RefreshNews(ctx)
	p.RefreshSocial(ctx)

	newsTicker := time.NewTicker(p.newsInterval)
	defer newsTicker.Stop()
	socialTicker := time.NewTicker(p.socialInterval)
	defer socialTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-newsTicker.C:
			p.RefreshNews(ctx)
		case <-socialTicker.C:
			p.RefreshSocial(ctx)
		}
	}
}

// RefreshNews runs one news cycle and merges the result into the
// retained list. A cycle that started before a newer one finished is
// discarded so a slow response cannot overwrite fresher state.
func (p *Poller) RefreshNews(ctx context.Context) {
	if p.news == nil {
		return
	}

	p.mu.Lock()
	p.newsCycle++
	cycle := p.newsCycle
	p.mu.Unlock()

	incoming := p.news.Aggregate(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cycle != p.newsCycle {
		p.logger.Printf("news cycle %d superseded, dropping %d items", cycle, len(incoming))
		return
	}
	// An empty cycle keeps the last good list and does not count as a
	// refresh, so staleness keeps accruing while sources fail.
	if len(incoming) == 0 {
		return
	}
	p.items = feed.MergeIncoming(p.items, incoming, p.maxRetained)
	p.lastNews = p.now()
}

// RefreshSocial runs one X feed cycle.
func (p *Poller) RefreshSocial(ctx context.Context) {
	if p.social == nil {
		return
	}

	p.mu.Lock()
	p.socialCycle++
	cycle := p.socialCycle
	p.mu.Unlock()

	posts := p.social.Aggregate(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cycle != p.socialCycle {
		return
	}
	if len(posts) == 0 {
		return
	}
	p.posts = posts
	p.lastSocial = p.now()
}

// News returns a copy of the retained news list.
func (p *Poller) News() []domain.FeedItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.FeedItem, len(p.items))
	copy(out, p.items)
	return out
}

// Posts returns a copy of the latest X posts.
func (p *Poller) Posts() []domain.XPost {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.XPost, len(p.posts))
	copy(out, p.posts)
	return out
}

// Status reports the recency of both feeds.
type Status struct {
	NewsItems     int       `json:"news_items"`
	NewsUpdatedAt time.Time `json:"news_updated_at"`
	NewsStale     bool      `json:"news_stale"`
	Posts         int       `json:"posts"`
	PostsUpdated  time.Time `json:"posts_updated_at"`
}

// Status returns feed recency. A news feed that has not refreshed
// within StaleAfter is reported stale.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	now := p.now()
	return Status{
		NewsItems:     len(p.items),
		NewsUpdatedAt: p.lastNews,
		NewsStale:     p.lastNews.IsZero() || now.Sub(p.lastNews) > p.staleAfter,
		Posts:         len(p.posts),
		PostsUpdated:  p.lastSocial,
	}
}
