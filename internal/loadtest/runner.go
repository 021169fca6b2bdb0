package loadtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/rankboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes a complete leaderboard load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting rankboard load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("customers", config.NumCustomers),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("window", config.Window),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	updates, err := generateUpdates(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("update generation failed: %w", err)
	}

	if err := submitUpdates(ctx, config, updates, stats); err != nil {
		return fmt.Errorf("update submission failed: %w", err)
	}

	logger.Get().Info(ctx, "waiting for the writer to settle")
	time.Sleep(ProcessingDelay)

	rankings, err := retrieveRankings(ctx, config, updates, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}

	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	if err := verifyResults(ctx, config, rankings, leaderboard, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if err := saveUpdatesToFile(ctx, config, updates); err != nil {
		logger.Get().Warn(ctx, "failed to save updates to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "load test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/monitoring/health"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveUpdatesToFile saves the generated score updates to a JSON file.
func saveUpdatesToFile(ctx context.Context, config *Config, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("no updates to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_updates_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := marshalJSON(updates)
	if err != nil {
		return fmt.Errorf("failed to marshal updates: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "updates saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final load test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, updatesPerSecond float64

	if stats.UpdatesSubmitted > 0 {
		successRate = float64(stats.UpdatesSuccessful) / float64(stats.UpdatesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		updatesPerSecond = float64(stats.UpdatesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("updatesGenerated", stats.UpdatesGenerated),
		logger.Int("updatesSubmitted", stats.UpdatesSubmitted),
		logger.Int("updatesSuccessful", stats.UpdatesSuccessful),
		logger.Int("updatesFailed", stats.UpdatesFailed),
		logger.Int("rankingsRetrieved", stats.RankingsRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("updatesPerSecond", updatesPerSecond))
}
