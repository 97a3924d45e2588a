package feed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"declaw-backend/internal/domain"
)

func rssDoc(entries string) string {
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>` + entries + `</channel></rss>`
}

func rssItem(title, link, pubDate string) string {
	s := "<item><title>" + title + "</title>"
	if link != "" {
		s += "<link>" + link + "</link>"
	}
	if pubDate != "" {
		s += "<pubDate>" + pubDate + "</pubDate>"
	}
	return s + "</item>"
}

func TestAggregator_PartialFailure(t *testing.T) {
	sourceA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rssDoc(
			rssItem("older story", "https://a.example/1", "Mon, 10 Jun 2024 10:00:00 GMT")+
				rssItem("newer story", "https://a.example/2", "Mon, 10 Jun 2024 12:00:00 GMT")+
				rssItem("malformed story", "", "Mon, 10 Jun 2024 11:00:00 GMT"),
		))
	}))
	defer sourceA.Close()

	// Source B hangs past the fetch timeout.
	sourceB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer sourceB.Close()

	agg := NewAggregator(AggregatorOptions{
		Fetcher: NewFetcher(WithFetchTimeout(100 * time.Millisecond)),
		Sources: []domain.SourceConfig{
			{Endpoint: sourceA.URL, Label: "A", MaxItems: 5},
			{Endpoint: sourceB.URL, Label: "B", MaxItems: 5},
		},
		Logger: log.New(io.Discard, "", 0),
	})

	items := agg.Aggregate(context.Background())

	if len(items) != 2 {
		t.Fatalf("expected 2 items from the healthy source, got %d", len(items))
	}
	if items[0].URL != "https://a.example/2" || items[1].URL != "https://a.example/1" {
		t.Errorf("items not sorted newest-first: %v, %v", items[0].URL, items[1].URL)
	}
}

func TestAggregator_PerSourceCap(t *testing.T) {
	var entries string
	for i := 0; i < 10; i++ {
		entries += rssItem(fmt.Sprintf("story %d", i), fmt.Sprintf("https://a.example/%d", i), "Mon, 10 Jun 2024 10:00:00 GMT")
	}
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, rssDoc(entries))
	}))
	defer source.Close()

	agg := NewAggregator(AggregatorOptions{
		Sources: []domain.SourceConfig{{Endpoint: source.URL, Label: "A", MaxItems: 3}},
		Logger:  log.New(io.Discard, "", 0),
	})

	if items := agg.Aggregate(context.Background()); len(items) != 3 {
		t.Errorf("expected per-source cap of 3, got %d", len(items))
	}
}

func item(url, iso string) domain.FeedItem {
	return domain.FeedItem{ID: url, URL: url, Title: "t", Source: "s", PublishedAtIso: iso}
}

func TestMergeIncoming_EmptyIncomingKeepsExisting(t *testing.T) {
	existing := []domain.FeedItem{
		item("https://e/1", "2024-06-10T12:00:00Z"),
		item("https://e/2", "2024-06-10T11:00:00Z"),
	}

	got := MergeIncoming(existing, nil, 10)

	if len(got) != 2 {
		t.Fatalf("expected existing list preserved, got %d items", len(got))
	}
	for i := range existing {
		if got[i] != existing[i] {
			t.Errorf("item %d changed: got %+v want %+v", i, got[i], existing[i])
		}
	}
}

func TestMergeIncoming_FreshWinsOnDuplicateURL(t *testing.T) {
	existing := []domain.FeedItem{item("https://e/1", "2024-06-10T12:00:00Z")}
	fresh := existing[0]
	fresh.Title = "updated headline"
	fresh.PublishedAtIso = "2024-06-10T12:30:00Z"

	got := MergeIncoming(existing, []domain.FeedItem{fresh}, 10)

	if len(got) != 1 {
		t.Fatalf("duplicate url should merge to one item, got %d", len(got))
	}
	if got[0].Title != "updated headline" {
		t.Errorf("incoming copy should win, got title %q", got[0].Title)
	}
}

func TestMergeIncoming_SortAndCap(t *testing.T) {
	existing := []domain.FeedItem{
		item("https://e/1", "2024-06-10T10:00:00Z"),
		item("https://e/2", "2024-06-10T14:00:00Z"),
	}
	incoming := []domain.FeedItem{
		item("https://e/3", "2024-06-10T12:00:00Z"),
		item("https://e/4", "2024-06-10T16:00:00Z"),
	}

	got := MergeIncoming(existing, incoming, 3)

	if len(got) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].SortKey() < got[i].SortKey() {
			t.Errorf("list not sorted descending at %d: %q < %q", i, got[i-1].SortKey(), got[i].SortKey())
		}
	}
	if got[0].URL != "https://e/4" {
		t.Errorf("newest item should lead, got %q", got[0].URL)
	}
	for _, it := range got {
		if it.URL == "https://e/1" {
			t.Error("oldest item should have been truncated")
		}
	}
}

func TestMergeIncoming_FallbackSortKey(t *testing.T) {
	// Items without an ISO timestamp sort by the display time.
	a := domain.FeedItem{URL: "https://e/1", PublishedAt: "01:00 PM"}
	b := domain.FeedItem{URL: "https://e/2", PublishedAt: "02:00 PM"}

	got := MergeIncoming(nil, []domain.FeedItem{a, b}, 10)
	if got[0].URL != "https://e/2" {
		t.Errorf("expected fallback key ordering, got %q first", got[0].URL)
	}
}
