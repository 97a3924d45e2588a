// Package server exposes the HTTP API: news and X feeds, the merged
// token list, the trade transaction proxy and a websocket update stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"declaw-backend/internal/domain"
	"declaw-backend/internal/launch"
	"declaw-backend/internal/observability"
	"declaw-backend/internal/poller"
	"declaw-backend/internal/storage"
	"declaw-backend/internal/tokens"
)

const maxRequestBytes = 64 << 10

// SnapshotSource produces market snapshots keyed by mint address.
type SnapshotSource interface {
	FetchSnapshots(ctx context.Context, mints []string) map[string]domain.TokenMarketSnapshot
}

// Server holds the request handlers and their collaborators.
type Server struct {
	poller    *poller.Poller
	market    SnapshotSource
	store     storage.DeployedTokenStore
	history   storage.SnapshotHistoryStore // optional
	trade     *launch.Client
	hub       *Hub
	metrics   *observability.Metrics
	logger    *log.Logger
	fallback  []domain.DeployedToken
	threshold float64
	started   time.Time
	now       func() time.Time
}

// Options contains configuration for creating a Server.
type Options struct {
	Poller    *poller.Poller
	Market    SnapshotSource
	Store     storage.DeployedTokenStore
	History   storage.SnapshotHistoryStore // optional, nil disables history
	Trade     *launch.Client
	Hub       *Hub
	Metrics   *observability.Metrics
	Logger    *log.Logger
	Fallback  []domain.DeployedToken // Default: tokens.FallbackEntries()
	Threshold float64                // Default: tokens.DefaultGraduationThreshold
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = tokens.FallbackEntries()
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = tokens.DefaultGraduationThreshold
	}
	return &Server{
		poller:    opts.Poller,
		market:    opts.Market,
		store:     opts.Store,
		history:   opts.History,
		trade:     opts.Trade,
		hub:       opts.Hub,
		metrics:   opts.Metrics,
		logger:    logger,
		fallback:  fallback,
		threshold: threshold,
		started:   time.Now(),
		now:       time.Now,
	}
}

// Routes builds the HTTP handler with CORS applied to the API surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	metricsHandler := observability.Handler()
	if s.metrics != nil {
		metricsHandler = s.metrics.Handler()
	}
	mux.Handle("/metrics", metricsHandler)

	mux.HandleFunc("/api/news", s.handleNews)
	mux.HandleFunc("/api/xfeed", s.handleXFeed)
	mux.HandleFunc("/api/tokens", s.handleTokens)
	mux.HandleFunc("/api/trade", s.handleTrade)

	if s.hub != nil {
		mux.HandleFunc("/ws", s.hub.ServeWS)
	}

	return corsMiddleware(mux)
}

// corsMiddleware allows browser clients from any origin and
// short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Uptime string        `json:"uptime"`
		Feeds  poller.Status `json:"feeds"`
	}{
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Feeds:  s.poller.Status(),
	}
	writeJSON(w, http.StatusOK, status)
}

// handleNews serves the retained news list. Responses must not be
// cached: the list changes every polling cycle.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Items []domain.FeedItem `json:"items"`
	}{Items: s.poller.News()})
}

func (s *Server) handleXFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Posts []domain.XPost `json:"posts"`
	}{Posts: s.poller.Posts()})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTokens(w, r)
	case http.MethodPost:
		s.recordToken(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// listTokens merges stored launches with fallback entries and the
// snapshot map. A market data failure degrades the display fields, it
// never fails the request.
func (s *Server) listTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var local []domain.DeployedToken
	if s.store != nil {
		stored, err := s.store.GetAll(ctx)
		if err != nil {
			s.logger.Printf("list deployed tokens: %v", err)
			if s.metrics != nil {
				s.metrics.StoreErrors.WithLabelValues("get_all").Inc()
			}
		} else {
			local = make([]domain.DeployedToken, len(stored))
			for i, t := range stored {
				local[i] = *t
			}
		}
	}

	// Fallback entries carry placeholder mints; only addresses that
	// decode as real mints go upstream.
	mints := make([]string, 0, len(local)+len(s.fallback))
	for _, t := range local {
		if domain.ValidMintAddress(t.MintAddress) {
			mints = append(mints, t.MintAddress)
		}
	}
	for _, t := range s.fallback {
		if domain.ValidMintAddress(t.MintAddress) {
			mints = append(mints, t.MintAddress)
		}
	}

	var snapshots map[string]domain.TokenMarketSnapshot
	if s.market != nil {
		snapshots = s.market.FetchSnapshots(ctx, mints)
		s.appendHistory(snapshots)
	}

	rows := tokens.BuildRows(local, s.fallback, snapshots, s.threshold)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, struct {
		Tokens []domain.DisplayedTokenRow `json:"tokens"`
	}{Tokens: rows})
}

// appendHistory records the snapshot batch, best effort.
func (s *Server) appendHistory(snapshots map[string]domain.TokenMarketSnapshot) {
	if s.history == nil || len(snapshots) == 0 {
		return
	}
	batch := make([]domain.TokenMarketSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		batch = append(batch, snap)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.InsertBulk(ctx, s.now().UnixMilli(), batch); err != nil {
		s.logger.Printf("append snapshot history: %v", err)
	}
}

// tokenRequest is the POST /api/tokens payload.
type tokenRequest struct {
	Name                 string   `json:"name"`
	Ticker               string   `json:"ticker"`
	Description          *string  `json:"description"`
	LogoURL              *string  `json:"logoUrl"`
	MintAddress          string   `json:"mintAddress"`
	PumpURL              string   `json:"pumpUrl"`
	CreatorWallet        string   `json:"creatorWallet"`
	DevBuyAmountSol      *float64 `json:"devBuyAmountSol"`
	TransactionSignature *string  `json:"transactionSignature"`
	AgentID              *string  `json:"agentId"`
}

func (s *Server) recordToken(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "token store not configured", http.StatusServiceUnavailable)
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	tok := &domain.DeployedToken{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Ticker:               req.Ticker,
		Description:          req.Description,
		LogoURL:              req.LogoURL,
		MintAddress:          req.MintAddress,
		PumpURL:              req.PumpURL,
		CreatorWallet:        req.CreatorWallet,
		DevBuyAmountSol:      req.DevBuyAmountSol,
		TransactionSignature: req.TransactionSignature,
		AgentID:              req.AgentID,
		CreatedAt:            s.now().UnixMilli(),
	}
	if tok.PumpURL == "" && tok.MintAddress != "" {
		tok.PumpURL = "https://pump.fun/coin/" + tok.MintAddress
	}

	err := s.store.Insert(r.Context(), tok)
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		http.Error(w, "invalid token record", http.StatusBadRequest)
		return
	case errors.Is(err, storage.ErrDuplicateKey):
		http.Error(w, "mint already recorded", http.StatusConflict)
		return
	case err != nil:
		s.logger.Printf("record deployed token: %v", err)
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues("insert").Inc()
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.TokensRecorded.Inc()
	}
	if s.hub != nil {
		s.hub.Broadcast(Update{Type: "token_deployed", Payload: tok})
	}

	writeJSON(w, http.StatusCreated, struct {
		ID string `json:"id"`
	}{ID: tok.ID})
}

// handleTrade forwards the request body to the trade API and returns
// the base64 transaction.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.trade == nil {
		http.Error(w, "trade proxy not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "read request", http.StatusBadRequest)
		return
	}

	encoded, err := s.trade.BuildTransaction(r.Context(), body)
	if err != nil {
		s.logger.Printf("build transaction: %v", err)
		writeTradeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Transaction string `json:"transaction"`
	}{Transaction: encoded})
}

// writeTradeError relays an upstream trade API failure with its original
// status code so clients can tell bad trade parameters from a gateway
// failure. Transport errors answer 502.
func writeTradeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	message := "trade api unreachable"
	var upstream *launch.UpstreamError
	if errors.As(err, &upstream) {
		status = upstream.Status
		message = upstream.Body
		if message == "" {
			message = http.StatusText(status)
		}
	}
	writeJSON(w, status, struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{Error: message, Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
