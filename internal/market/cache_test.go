package market

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCachedClient_ServesFromCacheWithinTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "["+pairJSON("mintX", "wsol", "0.001", f(100), f(1000), nil)+"]")
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(
		WithBaseURL(srv.URL),
		WithLogger(log.New(io.Discard, "", 0)),
	), time.Minute)

	cached.FetchSnapshots(context.Background(), []string{"mintX"})
	cached.FetchSnapshots(context.Background(), []string{"mintX"})

	if calls != 1 {
		t.Errorf("expected a single upstream call within TTL, got %d", calls)
	}
}

func TestCachedClient_RefreshesAfterTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "["+pairJSON("mintX", "wsol", "0.001", f(100), f(1000), nil)+"]")
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(
		WithBaseURL(srv.URL),
		WithLogger(log.New(io.Discard, "", 0)),
	), time.Minute)

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }

	cached.FetchSnapshots(context.Background(), []string{"mintX"})
	now = now.Add(2 * time.Minute)
	cached.FetchSnapshots(context.Background(), []string{"mintX"})

	if calls != 2 {
		t.Errorf("expected refresh after TTL expiry, got %d calls", calls)
	}
}

func TestCachedClient_KeyIsOrderInsensitive(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "["+
			pairJSON("mintA", "wsol", "0.001", f(100), f(1000), nil)+","+
			pairJSON("mintB", "wsol", "0.002", f(100), f(2000), nil)+
			"]")
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(
		WithBaseURL(srv.URL),
		WithLogger(log.New(io.Discard, "", 0)),
	), time.Minute)

	cached.FetchSnapshots(context.Background(), []string{"mintA", "mintB"})
	cached.FetchSnapshots(context.Background(), []string{"mintB", "mintA", "mintA"})

	if calls != 1 {
		t.Errorf("same address set in different order should share a cache entry, got %d calls", calls)
	}
}

func TestCachedClient_EmptyResultNotCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(
		WithBaseURL(srv.URL),
		WithLogger(log.New(io.Discard, "", 0)),
	), time.Minute)

	cached.FetchSnapshots(context.Background(), []string{"mintX"})
	cached.FetchSnapshots(context.Background(), []string{"mintX"})

	if calls != 2 {
		t.Errorf("empty result should not be cached, got %d calls", calls)
	}
}
