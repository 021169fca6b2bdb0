package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	app "github.com/okian/rankboard/internal/app"
	"github.com/okian/rankboard/internal/domain/model"
	"github.com/okian/rankboard/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// seedRecord mirrors one (customerId, score) pair in a seed file.
type seedRecord struct {
	CustomerID int64           `json:"customerId"`
	Score      decimal.Decimal `json:"score"`
}

// loadSeedFile reads a JSON array of seed records from path and hands them
// to the service's bulk-load entry point, tagging the batch with a
// correlation id for log tracing.
func loadSeedFile(ctx context.Context, svc *app.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	batchID := uuid.NewString()
	logger.Get().Info(ctx, "loading seed batch",
		logger.String("batchId", batchID),
		logger.String("path", path),
		logger.Int("entries", len(records)),
	)

	entries := make([]model.SeedEntry, len(records))
	for i, r := range records {
		entries[i] = model.SeedEntry{CustomerID: r.CustomerID, Score: r.Score}
	}

	return svc.InitializeFromSeed(ctx, entries)
}
