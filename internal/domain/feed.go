package domain

// SourceConfig describes one configured RSS/Atom feed endpoint.
type SourceConfig struct {
	// Endpoint is the feed URL (http or https).
	Endpoint string `yaml:"url" json:"url"`
	// Label is the short source name shown next to each item.
	Label string `yaml:"source" json:"source"`
	// MaxItems caps how many items this source may contribute per pass.
	MaxItems int `yaml:"max" json:"max"`
}

// FeedItem is one normalized news entry.
// URL doubles as the dedup key: re-fetching the same entry must yield the
// same URL so the aggregator can overwrite the stale copy.
type FeedItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Source         string `json:"source"`
	PublishedAt    string `json:"publishedAt"`              // locale clock time, presentation only
	PublishedAtIso string `json:"publishedAtIso,omitempty"` // ISO-8601, sortable
	URL            string `json:"url"`
}

// SortKey returns the value feed ordering is based on. ISO-8601 strings
// compare lexicographically in chronological order, so string comparison
// on the key is sufficient.
func (i FeedItem) SortKey() string {
	if i.PublishedAtIso != "" {
		return i.PublishedAtIso
	}
	return i.PublishedAt
}
