package loadtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/rankboard/pkg/logger"
)

// retrieveRankings retrieves each customer's own rank concurrently.
func retrieveRankings(ctx context.Context, config *Config, updates []ScoreUpdate, stats *Stats) ([]Entry, error) {
	logger.Get().Info(ctx, "retrieving rankings", logger.Int("customers", len(updates)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	customerIDs := make([]int64, len(updates))
	for i, update := range updates {
		customerIDs[i] = update.CustomerID
	}

	rankings := make([]Entry, len(customerIDs))
	found := make([]bool, len(customerIDs))

	var (
		retrieved int64
		failed    int64
	)

	idxChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range idxChan {
				select {
				case <-ctx.Done():
					return
				default:
					entry, err := retrieveSingleRanking(ctx, client, config.BaseURL, customerIDs[index])
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "failed to get rank", logger.Int64("customerId", customerIDs[index]), logger.Error(err))
						}
						continue
					}
					rankings[index] = entry
					found[index] = true
					atomic.AddInt64(&retrieved, 1)
				}
			}
		}()
	}

	go func() {
		defer close(idxChan)
		for i := range customerIDs {
			select {
			case <-ctx.Done():
				return
			case idxChan <- i:
			}
		}
	}()

	wg.Wait()

	validRankings := make([]Entry, 0, len(rankings))
	for i, entry := range rankings {
		if found[i] {
			validRankings = append(validRankings, entry)
		}
	}

	stats.RankingsRetrieved = len(validRankings)
	logger.Get().Info(ctx, "ranking retrieval completed",
		logger.Int("retrieved", len(validRankings)),
		logger.Int("failed", int(atomic.LoadInt64(&failed))))

	return validRankings, nil
}

// retrieveSingleRanking retrieves the rank of a single customer via the
// neighbor-window endpoint with high=0, low=0, which returns only the
// customer's own entry.
func retrieveSingleRanking(ctx context.Context, client *HTTPClient, baseURL string, customerID int64) (Entry, error) {
	url := fmt.Sprintf("%s/leaderboard/%d?high=0&low=0", baseURL, customerID)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return Entry{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return Entry{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read response: %w", err)
	}

	var entries []Entry
	if err := unmarshalJSON(body, &entries); err != nil {
		return Entry{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("empty neighbor window for customer %d", customerID)
	}

	return entries[0], nil
}

// getLeaderboard retrieves the top Window leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Entry, error) {
	logger.Get().Info(ctx, "fetching leaderboard window", logger.Int("window", config.Window))

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?start=1&end=%d", config.BaseURL, config.Window)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		body, _ := readResponseBody(resp)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var leaderboard []Entry
	if err := unmarshalJSON(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard)
	logger.Get().Info(ctx, "leaderboard window retrieved", logger.Int("entries", len(leaderboard)))

	return leaderboard, nil
}
