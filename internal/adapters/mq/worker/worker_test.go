package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/rankboard/internal/adapters/mq/queue"
	worker "github.com/okian/rankboard/internal/adapters/mq/worker"
	model "github.com/okian/rankboard/internal/domain/model"
	logging "github.com/okian/rankboard/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	eventChan chan queue.Event
}

func newMockQueue() *mockQueue {
	return &mockQueue{eventChan: make(chan queue.Event, 10)}
}

func (mq *mockQueue) Dequeue(_ context.Context) <-chan queue.Event {
	return mq.eventChan
}

func (mq *mockQueue) Close() error {
	close(mq.eventChan)
	return nil
}

func (mq *mockQueue) addEvent(e queue.Event) {
	mq.eventChan <- e
}

type mockUpdater struct {
	mu      sync.RWMutex
	applied map[int64]decimal.Decimal
	errors  map[int64]error
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{
		applied: make(map[int64]decimal.Decimal),
		errors:  make(map[int64]error),
	}
}

func (m *mockUpdater) SetScore(_ context.Context, customerID int64, score decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, exists := m.errors[customerID]; exists {
		return err
	}
	m.applied[customerID] = score
	return nil
}

func (m *mockUpdater) setError(customerID int64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[customerID] = err
}

func (m *mockUpdater) getApplied(customerID int64) (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	score, ok := m.applied[customerID]
	return score, ok
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		updater := newMockUpdater()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewInMemoryWorker(q, updater)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, updater)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing a seed entry", func() {
				entry := model.SeedEntry{CustomerID: 1, Score: decimal.NewFromInt(85)}
				q.addEvent(entry)
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should apply the score through the updater", func() {
					score, applied := updater.getApplied(1)
					convey.So(applied, convey.ShouldBeTrue)
					convey.So(score.Equal(decimal.NewFromInt(85)), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And when updating fails", func() {
				updater.setError(2, errors.New("update error"))
				entry := model.SeedEntry{CustomerID: 2, Score: decimal.NewFromInt(50)}
				q.addEvent(entry)
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should not record an applied score", func() {
					_, applied := updater.getApplied(2)
					convey.So(applied, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker pool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		updater := newMockUpdater()

		convey.Convey("When creating a pool with custom count", func() {
			pool := worker.NewPool(3, q, updater)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When starting a pool and feeding it seed entries", func() {
			pool := worker.NewPool(2, q, updater)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(20 * time.Millisecond)

			entries := []model.SeedEntry{
				{CustomerID: 1, Score: decimal.NewFromInt(10)},
				{CustomerID: 2, Score: decimal.NewFromInt(20)},
				{CustomerID: 3, Score: decimal.NewFromInt(30)},
			}
			for _, e := range entries {
				q.addEvent(e)
			}

			time.Sleep(100 * time.Millisecond)

			convey.Convey("Then every entry should be applied", func() {
				for _, e := range entries {
					score, applied := updater.getApplied(e.CustomerID)
					convey.So(applied, convey.ShouldBeTrue)
					convey.So(score.Equal(e.Score), convey.ShouldBeTrue)
				}
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})
	})
}
