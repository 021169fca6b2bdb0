// Package service provides the core business service that implements the
// dependencies required by the HTTP API: the concurrency coordinator's
// public facade.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/rankboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/rankboard/internal/adapters/mq/worker"
	repository "github.com/okian/rankboard/internal/adapters/repository"
	"github.com/okian/rankboard/internal/domain/dedupe"
	"github.com/okian/rankboard/internal/domain/model"
	"github.com/okian/rankboard/internal/domain/types"
	"github.com/okian/rankboard/pkg/logger"
	"github.com/okian/rankboard/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Service implements the API dependencies for the leaderboard system: the
// facade described for updateScore, getByRank, getWithNeighbors, getMetrics
// and bulk seeding.
type Service struct {
	mu sync.RWMutex

	leaderboard repository.Store
	deduper     dedupe.Deduper
	seedQueue   eventqueue.Queue
	workerPool  *workerpool.Pool

	workerCount   int
	queueSize     int
	dedupeSize    int
	topCacheSize  int
	neighborLimit int

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of bulk-seed worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the bulk-seed ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the seed-batch deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTopCacheSize sets how many top-ranked entries the store keeps warm.
func WithTopCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.topCacheSize = size
		}
	}
}

// WithNeighborLimit caps the max/min window getWithNeighbors will accept.
func WithNeighborLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.neighborLimit = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100000,
		dedupeSize:    50000,
		topCacheSize:  10,
		neighborLimit: 1000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	s.leaderboard = repository.NewStore(repository.WithTopCacheSize(s.topCacheSize))
	s.logger.Info(ctx, "using skip-list leaderboard store")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.seedQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.seedQueue, s.leaderboard)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.seedQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// UpdateScore applies delta to customerID's current score and returns the
// resulting score.
func (s *Service) UpdateScore(ctx context.Context, customerID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	start := time.Now()
	score, err := s.leaderboard.UpdateScore(ctx, customerID, delta)
	metrics.RecordScoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLeaderboardError()
		return decimal.Zero, err
	}
	metrics.RecordLeaderboardUpdate()
	metrics.RecordScoreUpdateProcessed()
	return score, nil
}

// GetByRank returns the customers occupying [start, end] by rank.
func (s *Service) GetByRank(ctx context.Context, start, end int) ([]types.CustomerRanking, error) {
	return s.leaderboard.GetByRank(ctx, start, end)
}

// GetWithNeighbors returns customerID's own ranking plus up to high entries
// above it and low entries below it, all ordered by rank ascending.
func (s *Service) GetWithNeighbors(ctx context.Context, customerID int64, high, low int) ([]types.CustomerRanking, error) {
	if high < 0 || low < 0 {
		return nil, repository.ErrInvalidArgument
	}
	if high > s.neighborLimit {
		high = s.neighborLimit
	}
	if low > s.neighborLimit {
		low = s.neighborLimit
	}

	rank, ok := s.leaderboard.RankOf(ctx, customerID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	start := rank - high
	if start < 1 {
		start = 1
	}
	end := rank + low

	return s.leaderboard.GetByRank(ctx, start, end)
}

// GetMetrics returns a snapshot of the service's operational metrics.
func (s *Service) GetMetrics(ctx context.Context) types.ServiceMetrics {
	m := s.leaderboard.Metrics(ctx)
	metrics.UpdateTotalCustomers(m.TotalCustomers)
	return m
}

// SeenAndRecord checks whether id was already seen within the current seed
// batch (InitializeFromSeed starts a fresh set) and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSeedDuplicateSkipped()
	}
	return seen
}

// Unrecord removes id from the seen set, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// InitializeFromSeed clears the leaderboard and the seed deduplication set,
// then enqueues entries on the bulk-seed queue; the worker pool applies each
// one to the store with SetScore, under the same write lock that ordinary
// updates take.
func (s *Service) InitializeFromSeed(ctx context.Context, entries []model.SeedEntry) error {
	s.leaderboard.Reset(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	for _, e := range entries {
		key := fmt.Sprintf("%d", e.CustomerID)
		if s.SeenAndRecord(ctx, key) {
			continue
		}
		if !s.seedQueue.Enqueue(ctx, e) {
			s.Unrecord(ctx, key)
			return fmt.Errorf("seed queue full enqueuing customer %d", e.CustomerID)
		}
	}

	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.seedQueue.Len(ctx)
		totalCustomers := s.leaderboard.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalCustomers"] = totalCustomers

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalCustomers(totalCustomers)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries tracked by the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
