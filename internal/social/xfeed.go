// Package social aggregates X posts through nitter search feeds.
// Instances are tried in order until enough posts are collected, so a
// dead instance only costs one timeout per query.
package social

import (
	"context"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/feed"
	"declaw-backend/internal/format"
)

// Default configuration values.
const (
	DefaultMaxPosts     = 20
	defaultPerFetchCap  = 15
	DefaultFetchTimeout = 5 * time.Second
	maxPostRunes        = 280
)

// DefaultInstances are the nitter mirrors tried in order.
var DefaultInstances = []string{
	"https://nitter.poast.org",
	"https://nitter.privacydev.net",
}

// DefaultQueries are the search terms fanned out per instance.
var DefaultQueries = []string{"solana", "pump.fun", "memecoin", "solana meme"}

// Aggregator collects posts from nitter search RSS feeds.
type Aggregator struct {
	fetcher   *feed.Fetcher
	fp        *gofeed.Parser
	instances []string
	queries   []string
	maxPosts  int
	logger    *log.Logger
	now       func() time.Time
}

// AggregatorOptions contains configuration for creating an Aggregator.
type AggregatorOptions struct {
	Fetcher   *feed.Fetcher
	Instances []string // Default: DefaultInstances
	Queries   []string // Default: DefaultQueries
	MaxPosts  int      // Default: DefaultMaxPosts
	Logger    *log.Logger
}

// NewAggregator creates a social feed aggregator.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = feed.NewFetcher(feed.WithFetchTimeout(DefaultFetchTimeout))
	}
	instances := opts.Instances
	if len(instances) == 0 {
		instances = DefaultInstances
	}
	queries := opts.Queries
	if len(queries) == 0 {
		queries = DefaultQueries
	}
	maxPosts := opts.MaxPosts
	if maxPosts == 0 {
		maxPosts = DefaultMaxPosts
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		fetcher:   fetcher,
		fp:        gofeed.NewParser(),
		instances: instances,
		queries:   queries,
		maxPosts:  maxPosts,
		logger:    logger,
		now:       time.Now,
	}
}

// Aggregate walks instances and queries until the post cap is reached,
// deduplicates by URL and returns posts sorted newest-first. Every
// failure is tolerated; the worst outcome is an empty slice.
func (a *Aggregator) Aggregate(ctx context.Context) []domain.XPost {
	var posts []postWithKey
	seen := make(map[string]bool)

	for _, base := range a.instances {
		if len(posts) >= a.maxPosts {
			break
		}
		for _, q := range a.queries {
			if len(posts) >= a.maxPosts {
				break
			}
			endpoint := base + "/search/rss?f=tweets&q=" + url.QueryEscape(q)
			raw, err := a.fetcher.Fetch(ctx, endpoint)
			if err != nil {
				a.logger.Printf("nitter fetch %s %q failed: %v", base, q, err)
				continue
			}
			for _, p := range a.parse(raw, base) {
				if len(posts) >= a.maxPosts {
					break
				}
				if seen[p.post.URL] {
					continue
				}
				seen[p.post.URL] = true
				posts = append(posts, p)
			}
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].sortKey > posts[j].sortKey
	})

	out := make([]domain.XPost, len(posts))
	for i, p := range posts {
		out[i] = p.post
	}
	return out
}

// postWithKey carries the sortable timestamp alongside the public post,
// which only exposes the display time.
type postWithKey struct {
	post    domain.XPost
	sortKey string
}

func (a *Aggregator) parse(raw []byte, baseURL string) []postWithKey {
	parsed, err := a.fp.ParseString(string(raw))
	if err != nil || parsed == nil {
		return nil
	}

	var posts []postWithKey
	for _, entry := range parsed.Items {
		if len(posts) >= defaultPerFetchCap {
			break
		}
		post, sortKey, ok := a.normalize(entry, baseURL)
		if !ok {
			continue
		}
		posts = append(posts, postWithKey{post: post, sortKey: sortKey})
	}
	return posts
}

func (a *Aggregator) normalize(entry *gofeed.Item, baseURL string) (domain.XPost, string, bool) {
	if entry == nil {
		return domain.XPost{}, "", false
	}

	text := feed.CleanText(stripLeadingHandle(entry.Title))
	if text == "" {
		return domain.XPost{}, "", false
	}
	text = truncateRunes(text, maxPostRunes)

	link := strings.TrimSpace(entry.Link)
	if link == "" {
		return domain.XPost{}, "", false
	}
	// Nitter emits relative links on some instances.
	if !strings.HasPrefix(link, "http") {
		link = baseURL + ensureLeadingSlash(link)
	}

	published := a.now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	}

	return domain.XPost{
		ID:          link,
		Text:        text,
		Author:      normalizeAuthor(authorOf(entry)),
		URL:         link,
		PublishedAt: format.ClockTime(published),
	}, published.UTC().Format(time.RFC3339), true
}

// authorOf pulls the dc:creator field nitter uses for the posting handle.
func authorOf(entry *gofeed.Item) string {
	if entry.DublinCoreExt != nil && len(entry.DublinCoreExt.Creator) > 0 {
		return strings.TrimSpace(entry.DublinCoreExt.Creator[0])
	}
	if entry.Author != nil && entry.Author.Name != "" {
		return strings.TrimSpace(entry.Author.Name)
	}
	return "X"
}

func normalizeAuthor(author string) string {
	if author == "" {
		author = "X"
	}
	if strings.HasPrefix(author, "@") {
		return author
	}
	return "@" + author
}

// stripLeadingHandle drops the "@name:" prefix nitter prepends to search
// result titles.
func stripLeadingHandle(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "@") {
		return trimmed
	}
	if at := strings.Index(trimmed, ":"); at > 0 {
		return strings.TrimSpace(trimmed[at+1:])
	}
	return trimmed
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func ensureLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
