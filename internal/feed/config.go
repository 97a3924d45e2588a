package feed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"declaw-backend/internal/domain"
)

// SourcesFile is the YAML layout of a feed-source configuration file.
type SourcesFile struct {
	MaxRetained int                   `yaml:"max_retained"`
	Sources     []domain.SourceConfig `yaml:"sources"`
}

// LoadSources reads a YAML source-list file. Entries with a missing label
// or a non-http endpoint are rejected rather than skipped: a broken config
// file should fail loudly at startup, not degrade silently at runtime.
func LoadSources(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var cfg SourcesFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for i, src := range cfg.Sources {
		if !strings.HasPrefix(src.Endpoint, "http") {
			return nil, fmt.Errorf("source %d (%s): endpoint must be http(s): %q", i, src.Label, src.Endpoint)
		}
		if src.Label == "" {
			return nil, fmt.Errorf("source %d: missing label", i)
		}
		if src.MaxItems <= 0 {
			cfg.Sources[i].MaxItems = 2
		}
	}

	if cfg.MaxRetained <= 0 {
		cfg.MaxRetained = DefaultMaxRetained
	}
	return &cfg, nil
}

// DefaultSources returns the built-in source table used when no config
// file is given: US mainstream, world, tech and crypto/finance feeds,
// capped at 1-3 items each for variety.
func DefaultSources() []domain.SourceConfig {
	return []domain.SourceConfig{
		// US mainstream
		{Endpoint: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml", Label: "NYT", MaxItems: 3},
		{Endpoint: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml", Label: "NYT World", MaxItems: 2},
		{Endpoint: "https://rss.nytimes.com/services/xml/rss/nyt/Business.xml", Label: "NYT Business", MaxItems: 2},
		{Endpoint: "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml", Label: "NYT Tech", MaxItems: 2},
		{Endpoint: "http://rss.cnn.com/rss/cnn_topstories.rss", Label: "CNN", MaxItems: 3},
		{Endpoint: "http://rss.cnn.com/rss/cnn_world.rss", Label: "CNN World", MaxItems: 2},
		{Endpoint: "http://rss.cnn.com/rss/money_news_international.rss", Label: "CNN Money", MaxItems: 2},
		{Endpoint: "https://feeds.npr.org/1001/rss.xml", Label: "NPR", MaxItems: 3},
		{Endpoint: "https://feeds.npr.org/1006/rss.xml", Label: "NPR Business", MaxItems: 2},
		{Endpoint: "https://moxie.foxnews.com/google-publisher/latest.xml", Label: "Fox News", MaxItems: 3},
		{Endpoint: "https://www.cbsnews.com/latest/rss/main", Label: "CBS News", MaxItems: 3},
		{Endpoint: "https://abcnews.go.com/abcnews/topstories", Label: "ABC News", MaxItems: 2},
		{Endpoint: "https://feeds.bloomberg.com/markets/news.rss", Label: "Bloomberg", MaxItems: 3},
		{Endpoint: "https://www.cnbc.com/id/100003114/device/rss/rss.html", Label: "CNBC", MaxItems: 3},
		{Endpoint: "https://apnews.com/apf-topnews", Label: "AP News", MaxItems: 3},
		{Endpoint: "https://thehill.com/feed/", Label: "The Hill", MaxItems: 2},
		{Endpoint: "https://api.axios.com/feed/", Label: "Axios", MaxItems: 2},
		{Endpoint: "https://www.vox.com/rss/index.xml", Label: "Vox", MaxItems: 2},
		{Endpoint: "https://www.washingtonpost.com/rss/world", Label: "Washington Post", MaxItems: 2},
		// World
		{Endpoint: "https://feeds.bbci.co.uk/news/rss.xml", Label: "BBC News", MaxItems: 3},
		{Endpoint: "https://feeds.bbci.co.uk/news/world/rss.xml", Label: "BBC World", MaxItems: 2},
		{Endpoint: "https://feeds.bbci.co.uk/news/business/rss.xml", Label: "BBC Business", MaxItems: 2},
		{Endpoint: "https://feeds.bbci.co.uk/news/technology/rss.xml", Label: "BBC Tech", MaxItems: 2},
		{Endpoint: "https://www.theguardian.com/world/rss", Label: "Guardian World", MaxItems: 2},
		{Endpoint: "https://www.theguardian.com/uk/business/rss", Label: "Guardian Business", MaxItems: 2},
		{Endpoint: "https://www.aljazeera.com/xml/rss/all.xml", Label: "Al Jazeera", MaxItems: 3},
		{Endpoint: "https://www.france24.com/en/rss", Label: "France 24", MaxItems: 2},
		{Endpoint: "https://www.euronews.com/rss", Label: "Euronews", MaxItems: 2},
		{Endpoint: "https://www.scmp.com/rss/91/feed", Label: "SCMP", MaxItems: 2},
		{Endpoint: "https://www.japantimes.co.jp/feed/", Label: "Japan Times", MaxItems: 2},
		// Tech
		{Endpoint: "https://techcrunch.com/feed/", Label: "TechCrunch", MaxItems: 3},
		{Endpoint: "https://www.theverge.com/rss/index.xml", Label: "The Verge", MaxItems: 3},
		{Endpoint: "https://www.wired.com/feed/rss", Label: "Wired", MaxItems: 2},
		{Endpoint: "https://arstechnica.com/feed/", Label: "Ars Technica", MaxItems: 2},
		{Endpoint: "https://www.engadget.com/rss.xml", Label: "Engadget", MaxItems: 2},
		{Endpoint: "https://venturebeat.com/feed/", Label: "VentureBeat", MaxItems: 2},
		{Endpoint: "https://thenextweb.com/feed/", Label: "TNW", MaxItems: 2},
		// Crypto / finance
		{Endpoint: "https://cointelegraph.com/rss", Label: "CoinTelegraph", MaxItems: 3},
		{Endpoint: "https://decrypt.co/feed", Label: "Decrypt", MaxItems: 3},
		{Endpoint: "https://www.coindesk.com/arc/outboundfeeds/rss/", Label: "CoinDesk", MaxItems: 3},
		{Endpoint: "https://cryptonews.com/news/feed/", Label: "CryptoNews", MaxItems: 2},
		{Endpoint: "https://www.theblock.co/rss.xml", Label: "The Block", MaxItems: 2},
		{Endpoint: "https://bitcoinist.com/feed/", Label: "Bitcoinist", MaxItems: 2},
		{Endpoint: "https://news.bitcoin.com/feed/", Label: "Bitcoin.com", MaxItems: 2},
		{Endpoint: "https://cryptoslate.com/feed/", Label: "CryptoSlate", MaxItems: 2},
		{Endpoint: "https://beincrypto.com/feed/", Label: "BeInCrypto", MaxItems: 2},
		{Endpoint: "https://u.today/rss", Label: "U.Today", MaxItems: 2},
		{Endpoint: "https://ambcrypto.com/feed/", Label: "AMBCrypto", MaxItems: 2},
		{Endpoint: "https://cryptopotato.com/feed/", Label: "CryptoPotato", MaxItems: 2},
		{Endpoint: "https://blockworks.co/feed", Label: "Blockworks", MaxItems: 2},
		{Endpoint: "https://crypto.news/feed/", Label: "Crypto.news", MaxItems: 2},
		{Endpoint: "https://watcher.guru/feed/", Label: "Watcher Guru", MaxItems: 2},
		{Endpoint: "https://www.investing.com/rss/news.rss", Label: "Investing.com", MaxItems: 2},
		{Endpoint: "https://www.marketwatch.com/rss/topstories", Label: "MarketWatch", MaxItems: 2},
		{Endpoint: "https://fortune.com/feed/", Label: "Fortune", MaxItems: 2},
		{Endpoint: "https://www.forbes.com/real-time/feed2/", Label: "Forbes", MaxItems: 2},
	}
}
