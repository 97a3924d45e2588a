// Package main is a one-shot diagnostic: run a single aggregation pass
// over the configured feeds, optionally fetch market snapshots for a
// set of mints, and print the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/feed"
	"declaw-backend/internal/market"
	"declaw-backend/internal/social"
)

func main() {
	sourcesPath := flag.String("sources", "", "Path to feed sources YAML (defaults to built-in list)")
	mints := flag.String("mints", "", "Comma-separated mint addresses to fetch market snapshots for")
	withSocial := flag.Bool("social", false, "Also fetch the X feed")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[fetch] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sources := feed.DefaultSources()
	maxRetained := feed.DefaultMaxRetained
	if *sourcesPath != "" {
		file, err := feed.LoadSources(*sourcesPath)
		if err != nil {
			logger.Fatalf("load sources %s: %v", *sourcesPath, err)
		}
		sources = file.Sources
		maxRetained = file.MaxRetained
	}

	aggregator := feed.NewAggregator(feed.AggregatorOptions{
		Sources:     sources,
		MaxRetained: maxRetained,
		Logger:      logger,
	})

	out := struct {
		Items     []domain.FeedItem                     `json:"items"`
		Posts     []domain.XPost                        `json:"posts,omitempty"`
		Snapshots map[string]domain.TokenMarketSnapshot `json:"snapshots,omitempty"`
	}{
		Items: aggregator.Aggregate(ctx),
	}
	logger.Printf("aggregated %d items from %d sources", len(out.Items), len(sources))

	if *withSocial {
		out.Posts = social.NewAggregator(social.AggregatorOptions{Logger: logger}).Aggregate(ctx)
		logger.Printf("fetched %d posts", len(out.Posts))
	}

	if *mints != "" {
		var addrs []string
		for _, m := range strings.Split(*mints, ",") {
			if m = strings.TrimSpace(m); m != "" {
				addrs = append(addrs, m)
			}
		}
		client := market.NewClient(market.WithLogger(logger))
		out.Snapshots = client.FetchSnapshots(ctx, addrs)
		logger.Printf("fetched %d snapshots for %d mints", len(out.Snapshots), len(addrs))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalf("encode output: %v", err)
	}
}
