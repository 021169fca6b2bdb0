package loadtest

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/rankboard/pkg/logger"
	"github.com/shopspring/decimal"
)

// verifyResults checks the consistency of per-customer rankings against the
// leaderboard window and logs a summary of top performers.
func verifyResults(ctx context.Context, config *Config, rankings, leaderboard []Entry, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	sortedRankings := make([]Entry, len(rankings))
	copy(sortedRankings, rankings)
	sort.Slice(sortedRankings, func(i, j int) bool {
		return sortedRankings[i].Score.GreaterThan(sortedRankings[j].Score)
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRankings, leaderboard); err != nil {
			logger.Get().Warn(ctx, "leaderboard consistency warning", logger.Error(err))
		} else {
			logger.Get().Info(ctx, "leaderboard consistency verified")
		}
	}

	displayTopPerformers(ctx, sortedRankings, leaderboard, config.Verbose)

	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks that the leaderboard window matches
// the top ranked customers and is sorted by score descending.
func verifyLeaderboardConsistency(sortedRankings, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	topRanking := sortedRankings[0]
	topLeaderboard := leaderboard[0]

	if topRanking.CustomerID != topLeaderboard.CustomerID {
		return fmt.Errorf("top leaderboard entry (%d) does not match top ranked customer (%d)",
			topLeaderboard.CustomerID, topRanking.CustomerID)
	}

	if !topRanking.Score.Equal(topLeaderboard.Score) {
		return fmt.Errorf("top leaderboard score (%s) does not match top ranked score (%s)",
			topLeaderboard.Score.String(), topRanking.Score.String())
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Score.GreaterThan(leaderboard[i-1].Score) {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d", i, i-1)
		}
	}

	return nil
}

// displayTopPerformers logs the top performers from rankings and leaderboard.
func displayTopPerformers(ctx context.Context, sortedRankings, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRankings) < topN {
		topN = len(sortedRankings)
	}

	for i := 0; i < topN; i++ {
		entry := sortedRankings[i]
		logger.Get().Info(ctx, "top performer",
			logger.Int("position", i+1),
			logger.Int64("customerId", entry.CustomerID),
			logger.String("score", entry.Score.String()))
	}

	if verbose && len(sortedRankings) > 0 {
		avgScore := calculateAverageScore(sortedRankings)
		maxScore := sortedRankings[0].Score
		minScore := sortedRankings[len(sortedRankings)-1].Score

		logger.Get().Info(ctx, "score statistics",
			logger.String("average", avgScore.String()),
			logger.String("maximum", maxScore.String()),
			logger.String("minimum", minScore.String()))
	}
}

// calculateAverageScore calculates the average score across rankings.
func calculateAverageScore(rankings []Entry) decimal.Decimal {
	if len(rankings) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, entry := range rankings {
		sum = sum.Add(entry.Score)
	}

	return sum.Div(decimal.NewFromInt(int64(len(rankings))))
}
