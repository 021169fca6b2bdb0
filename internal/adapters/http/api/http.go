// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/rankboard/internal/domain/types"
	"github.com/shopspring/decimal"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// UpdateScore applies delta to customerID's current score and returns
	// the resulting score.
	UpdateScore(ctx context.Context, customerID int64, delta decimal.Decimal) (decimal.Decimal, error)

	// GetByRank returns the customers occupying [start, end] by rank.
	GetByRank(ctx context.Context, start, end int) ([]types.CustomerRanking, error)

	// GetWithNeighbors returns customerID's own ranking plus neighbors.
	GetWithNeighbors(ctx context.Context, customerID int64, high, low int) ([]types.CustomerRanking, error)

	// GetMetrics returns a snapshot of the service's operational metrics.
	GetMetrics(ctx context.Context) types.ServiceMetrics
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.CustomerRanking

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider, deps),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /monitoring/health", MetricsMiddleware(s.healthHandler.HandleHealth, "monitoring_health"))
	mux.HandleFunc("GET /monitoring/metrics", MetricsMiddleware(s.statsHandler.HandleStats, "monitoring_metrics"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandlePrometheus)
	mux.HandleFunc("POST /customer/{customerId}/score/{score}", MetricsMiddleware(s.scoreHandler.HandlePostScore, "customer_score"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /leaderboard/{customerId}", MetricsMiddleware(s.rankHandler.HandleGetNeighbors, "leaderboard_neighbors"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates a repository-layer not-found condition to HTTP 404.
func isNotFound(err error) bool {
	return errIsNotFound(err)
}
