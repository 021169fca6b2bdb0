package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/okian/rankboard/pkg/logger"
	"github.com/shopspring/decimal"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	deltaTierDivisor   = 8
)

// Constants for delta generation ranges. Deltas stay well under the
// service's maxAbsDelta of 1000 so none are rejected as out of range.
const (
	avgDeltaMin     = 10.0
	avgDeltaRange   = 40.0
	highDeltaMin    = 100.0
	highDeltaRange  = 100.0
	lowDeltaMin     = 1.0
	lowDeltaRange   = 9.0
	burstDeltaMin   = 500.0
	burstDeltaRange = 400.0
	negDeltaMin     = -50.0
	negDeltaRange   = 40.0
	flatDeltaMin    = 0.1
	flatDeltaRange  = 0.9
	midDeltaMin     = 20.0
	midDeltaRange   = 30.0
	wideDeltaMin    = -100.0
	wideDeltaRange  = 200.0
)

// Tiers used to pick a delta distribution for each generated update.
const (
	tierAverage  = 0
	tierHigh     = 1
	tierLow      = 2
	tierBurst    = 3
	tierNegative = 4
	tierFlat     = 5
	tierMid      = 6
	tierWide     = 7
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateUpdates creates score updates for NumCustomers distinct customer
// ids, spreading the work across a worker pool.
func generateUpdates(ctx context.Context, config *Config, stats *Stats) ([]ScoreUpdate, error) {
	logger.Get().Info(ctx, "generating score updates", logger.Int("numCustomers", config.NumCustomers))

	updates := make([]ScoreUpdate, config.NumCustomers)

	type genResult struct {
		index  int
		update ScoreUpdate
		err    error
	}

	resultChan := make(chan genResult, config.NumCustomers)

	workerCount := minInt(config.Workers, config.NumCustomers)
	if workerCount == 0 {
		workerCount = 1
	}
	perWorker := config.NumCustomers / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumCustomers
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- genResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- genResult{index: i, update: generateSingleUpdate(i)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumCustomers; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during update generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate update %d: %w", result.index, result.err)
			}
			updates[result.index] = result.update
		}
	}

	stats.UpdatesGenerated = len(updates)
	logger.Get().Info(ctx, "generated score updates successfully", logger.Int("count", len(updates)))

	return updates, nil
}

// generateSingleUpdate creates a single score update for the given customer
// index, using index+1 as the customer id so that ids stay dense, start at 1
// and are collision-free across a run.
func generateSingleUpdate(index int) ScoreUpdate {
	delta := generateVariedDelta()
	return ScoreUpdate{
		CustomerID: int64(index + 1),
		Delta:      decimal.NewFromFloat(delta).Round(2),
	}
}

// generateVariedDelta picks a delta magnitude from one of several tiers so
// that submitted load mimics a realistic mix of small nudges, occasional
// bursts and the occasional penalty.
func generateVariedDelta() float64 {
	tier, _ := rand.Int(rand.Reader, big.NewInt(deltaTierDivisor))
	switch tier.Int64() {
	case tierAverage:
		return avgDeltaMin + getRandomFloat()*avgDeltaRange
	case tierHigh:
		return highDeltaMin + getRandomFloat()*highDeltaRange
	case tierLow:
		return lowDeltaMin + getRandomFloat()*lowDeltaRange
	case tierBurst:
		return burstDeltaMin + getRandomFloat()*burstDeltaRange
	case tierNegative:
		return negDeltaMin + getRandomFloat()*negDeltaRange
	case tierFlat:
		return flatDeltaMin + getRandomFloat()*flatDeltaRange
	case tierMid:
		return midDeltaMin + getRandomFloat()*midDeltaRange
	case tierWide:
		return wideDeltaMin + getRandomFloat()*wideDeltaRange
	default:
		return wideDeltaMin + getRandomFloat()*wideDeltaRange
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
