package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

func TestStoreUpdateScore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a fresh store", t, func() {
		s := NewStore()

		convey.Convey("When a new customer receives a positive delta", func() {
			score, err := s.UpdateScore(ctx, 1, decimal.NewFromInt(10))

			convey.Convey("Then it enters the registry and the index at score 10", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(score.Equal(decimal.NewFromInt(10)), convey.ShouldBeTrue)
				rank, ok := s.RankOf(ctx, 1)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(rank, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a customer's score is driven to exactly zero", func() {
			_, _ = s.UpdateScore(ctx, 1, decimal.NewFromInt(10))
			_, err := s.UpdateScore(ctx, 1, decimal.NewFromInt(-10))

			convey.Convey("Then it is removed from the ranked index but remains in the registry", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := s.RankOf(ctx, 1)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(s.Count(ctx), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a customer's score is driven negative", func() {
			_, _ = s.UpdateScore(ctx, 1, decimal.NewFromInt(5))
			score, _ := s.UpdateScore(ctx, 1, decimal.NewFromInt(-20))

			convey.Convey("Then the registry holds the negative value but the index excludes it", func() {
				convey.So(score.Sign(), convey.ShouldEqual, -1)
				_, ok := s.RankOf(ctx, 1)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When several customers are ranked", func() {
			_, _ = s.UpdateScore(ctx, 1, decimal.NewFromInt(10))
			_, _ = s.UpdateScore(ctx, 2, decimal.NewFromInt(30))
			_, _ = s.UpdateScore(ctx, 3, decimal.NewFromInt(20))

			convey.Convey("Then GetByRank returns them score-descending with correct rank numbers", func() {
				entries, err := s.GetByRank(ctx, 1, 3)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 3)
				convey.So(entries[0].CustomerID, convey.ShouldEqual, int64(2))
				convey.So(entries[0].Rank, convey.ShouldEqual, 1)
				convey.So(entries[2].CustomerID, convey.ShouldEqual, int64(1))
			})

			convey.Convey("Then Metrics reports registry/index sizes and the top score", func() {
				m := s.Metrics(ctx)
				convey.So(m.TotalCustomers, convey.ShouldEqual, 3)
				convey.So(m.LeaderboardCustomers, convey.ShouldEqual, 3)
				convey.So(m.TopScore.Equal(decimal.NewFromInt(30)), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When GetByRank receives an invalid range", func() {
			_, err := s.GetByRank(ctx, 5, 1)

			convey.Convey("Then it returns ErrInvalidArgument", func() {
				convey.So(err, convey.ShouldEqual, ErrInvalidArgument)
			})
		})

		convey.Convey("When Reset is called after writes", func() {
			_, _ = s.UpdateScore(ctx, 1, decimal.NewFromInt(10))
			s.Reset(ctx)

			convey.Convey("Then the store behaves as freshly constructed", func() {
				convey.So(s.Count(ctx), convey.ShouldEqual, 0)
				m := s.Metrics(ctx)
				convey.So(m.LeaderboardCustomers, convey.ShouldEqual, 0)
			})
		})
	})
}
