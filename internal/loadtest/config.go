package loadtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds configuration for a leaderboard load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumCustomers int           // Number of distinct customers to drive updates for
	Window       int           // Size of the leaderboard window to fetch
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Output file for generated score updates
	LogFile      string        // Log file for test output
	Verbose      bool          // Enable verbose logging
}

// ScoreUpdate is a single score delta to submit for a customer.
type ScoreUpdate struct {
	CustomerID int64           `json:"customer_id"`
	Delta      decimal.Decimal `json:"delta"`
}

// Entry mirrors a single ranked leaderboard row as returned by the service.
type Entry struct {
	CustomerID int64           `json:"customerId"`
	Score      decimal.Decimal `json:"score"`
	Rank       int             `json:"rank"`
}

// Stats holds load test statistics.
type Stats struct {
	UpdatesGenerated   int
	UpdatesSubmitted   int
	UpdatesSuccessful  int
	UpdatesFailed      int
	RankingsRetrieved  int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
