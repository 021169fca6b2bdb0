// Package types contains the value types shared across the leaderboard
// service: the HTTP layer, the service facade, and the repository all speak
// these shapes rather than passing raw primitives around.
package types

import "github.com/shopspring/decimal"

// CustomerRanking is a read-only projection of a customer's position in the
// ranked index at the moment of the query. Rank is 1-based; rank 1 is the
// highest-scoring customer.
type CustomerRanking struct {
	CustomerID int64           `json:"customerId"`
	Score      decimal.Decimal `json:"score"`
	Rank       int             `json:"rank"`
}

// ServiceMetrics is a snapshot of the whole leaderboard's shape.
type ServiceMetrics struct {
	TotalCustomers       int             `json:"total_customers"`
	LeaderboardCustomers int             `json:"leaderboard_customers"`
	TopScore             decimal.Decimal `json:"top_score"`
}
