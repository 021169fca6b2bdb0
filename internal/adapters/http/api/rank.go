// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/rankboard/internal/domain/types"
)

// RankDependencies defines the interface for neighbor-window reads.
type RankDependencies interface {
	GetWithNeighbors(ctx context.Context, customerID int64, high, low int) ([]types.CustomerRanking, error)
}

// RankHandler handles neighbor-window requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetNeighbors handles GET /leaderboard/{customerId}?high=&low= requests.
func (h *RankHandler) HandleGetNeighbors(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.PathValue("customerId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	high, low := 0, 0
	if v := r.URL.Query().Get("high"); v != "" {
		high, err = strconv.Atoi(v)
		if err != nil || high < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("low"); v != "" {
		low, err = strconv.Atoi(v)
		if err != nil || low < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	entries, err := h.deps.GetWithNeighbors(r.Context(), customerID, high, low)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
