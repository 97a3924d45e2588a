package domain

// XPost is one normalized social post pulled from a nitter search feed.
type XPost struct {
	ID          string `json:"id"`
	Text        string `json:"text"`   // entity-decoded, tag-stripped, max 280 runes
	Author      string `json:"author"` // always @-prefixed
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"` // locale clock time, presentation only
}
