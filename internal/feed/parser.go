package feed

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/format"
)

// Parser extracts normalized FeedItems from raw RSS/Atom documents.
// Malformed entries (empty title, missing or non-http link) are dropped
// silently; a missing or unparseable publish date falls back to the
// parse time instead of failing the entry.
type Parser struct {
	fp  *gofeed.Parser
	now func() time.Time
}

// NewParser creates a feed parser.
func NewParser() *Parser {
	return &Parser{
		fp:  gofeed.NewParser(),
		now: time.Now,
	}
}

// Parse extracts up to maxItems entries from a raw feed document,
// preserving feed order. Entries that fail validation are skipped
// without consuming a slot.
func (p *Parser) Parse(raw []byte, sourceLabel string, maxItems int) []domain.FeedItem {
	parsed, err := p.fp.ParseString(string(raw))
	if err != nil || parsed == nil {
		return nil
	}

	items := make([]domain.FeedItem, 0, maxItems)
	for _, entry := range parsed.Items {
		if len(items) >= maxItems {
			break
		}
		item, ok := p.normalize(entry, sourceLabel)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

// normalize converts one gofeed entry into a FeedItem, reporting whether
// the entry survived validation.
func (p *Parser) normalize(entry *gofeed.Item, sourceLabel string) (domain.FeedItem, bool) {
	if entry == nil {
		return domain.FeedItem{}, false
	}

	link := strings.TrimSpace(entry.Link)
	if link == "" && len(entry.Links) > 0 {
		link = strings.TrimSpace(entry.Links[0])
	}
	if !strings.HasPrefix(link, "http") {
		return domain.FeedItem{}, false
	}

	title := CleanText(entry.Title)
	if title == "" {
		return domain.FeedItem{}, false
	}

	published := p.now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	return domain.FeedItem{
		ID:             link,
		Title:          title,
		Source:         sourceLabel,
		PublishedAt:    format.ClockTime(published),
		PublishedAtIso: published.UTC().Format(time.RFC3339),
		URL:            link,
	}, true
}

// stripPolicy removes every tag, leaving text content only. Policies are
// safe for concurrent use.
var stripPolicy = bluemonday.StrictPolicy()

// CleanText strips markup and decodes HTML entities from feed text.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
