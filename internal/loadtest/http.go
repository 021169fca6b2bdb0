package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rankboard/pkg/logger"
)

// HTTPClient wraps http.Client with a fixed timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with the given timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request against url.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// Post performs a POST request against url with no body, matching the
// path-parameter style of the leaderboard score endpoint.
func (c *HTTPClient) Post(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitUpdates submits score updates concurrently using a worker pool.
func submitUpdates(ctx context.Context, config *Config, updates []ScoreUpdate, stats *Stats) error {
	logger.Get().Info(ctx, "submitting score updates", logger.Int("count", len(updates)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)

	var (
		successful int64
		failed     int64
		submitted  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	updateChan := make(chan ScoreUpdate, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range updateChan {
				select {
				case <-ctx.Done():
					return
				default:
					ok := submitSingleUpdate(ctx, client, config.BaseURL, update)
					atomic.AddInt64(&submitted, 1)
					if ok {
						atomic.AddInt64(&successful, 1)
					} else {
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose && time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						logger.Get().Info(ctx, "submission progress",
							logger.Int("submitted", int(atomic.LoadInt64(&submitted))),
							logger.Int("total", len(updates)),
							logger.Int("successful", int(atomic.LoadInt64(&successful))),
							logger.Int("failed", int(atomic.LoadInt64(&failed))))
					}
				}
			}
		}()
	}

	go func() {
		defer close(updateChan)
		for _, update := range updates {
			select {
			case <-ctx.Done():
				return
			case updateChan <- update:
			}
		}
	}()

	wg.Wait()

	stats.UpdatesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.UpdatesSuccessful = int(atomic.LoadInt64(&successful))
	stats.UpdatesFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "update submission completed",
		logger.Int("successful", stats.UpdatesSuccessful),
		logger.Int("failed", stats.UpdatesFailed))

	return nil
}

// submitSingleUpdate submits a single score update and reports success.
func submitSingleUpdate(ctx context.Context, client *HTTPClient, baseURL string, update ScoreUpdate) bool {
	url := fmt.Sprintf("%s/customer/%d/score/%s", baseURL, update.CustomerID, update.Delta.String())

	resp, err := client.Post(ctx, url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	_, _ = readResponseBody(resp)

	return resp.StatusCode == StatusOK
}
