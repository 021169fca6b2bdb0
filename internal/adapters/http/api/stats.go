// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/rankboard/internal/domain/types"
)

// StatsProvider defines the interface for getting service-level metrics.
type StatsProvider interface {
	GetMetrics(ctx context.Context) types.ServiceMetrics
}

// monitoringMetrics mirrors the JSON shape GET /monitoring/metrics returns.
type monitoringMetrics struct {
	TotalCustomers       int       `json:"totalCustomers"`
	LeaderboardCustomers int       `json:"leaderboardCustomers"`
	TopScore             string    `json:"topScore"`
	Timestamp            time.Time `json:"timestamp"`
}

// StatsHandler handles the JSON monitoring summary.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler. deps is accepted alongside
// provider so the handler can be constructed directly from the service
// facade without a separate adapter type.
func NewStatsHandler(provider StatsProvider, deps Dependencies) *StatsHandler {
	if provider == nil {
		provider = deps
	}
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /monitoring/metrics requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	m := h.provider.GetMetrics(r.Context())
	writeJSON(w, http.StatusOK, monitoringMetrics{
		TotalCustomers:       m.TotalCustomers,
		LeaderboardCustomers: m.LeaderboardCustomers,
		TopScore:             m.TopScore.String(),
		Timestamp:            time.Now(),
	})
}
