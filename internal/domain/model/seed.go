// Package model contains domain models passed between layers.
package model

import "github.com/shopspring/decimal"

// SeedEntry is one row of a bulk-load dataset: the absolute score a customer
// should end up with once the leaderboard is cleared and repopulated. A
// worker applies it with the store's SetScore, under the same write lock as
// an ordinary update, so the resulting state is indistinguishable from a
// sequence of updates.
type SeedEntry struct {
	CustomerID int64
	Score      decimal.Decimal
}
