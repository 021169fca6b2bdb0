// Package repository holds the ranked index and score registry that back
// the leaderboard, plus their combined concurrency discipline.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/rankboard/internal/domain/types"
	"github.com/okian/rankboard/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Store is the concurrency coordinator's contract: it owns both the score
// registry and the ranked index and guarantees that every operation below
// observes (and, for UpdateScore, produces) a consistent combined state.
type Store interface {
	// UpdateScore applies delta to customerID's current score, creating the
	// customer at score 0 first if unseen, and returns the resulting score.
	UpdateScore(ctx context.Context, customerID int64, delta decimal.Decimal) (decimal.Decimal, error)

	// SetScore sets customerID's score to an absolute value, bypassing the
	// registry read that UpdateScore performs. Used only by bulk seeding,
	// where the registry is known to be empty for every incoming id.
	SetScore(ctx context.Context, customerID int64, score decimal.Decimal) error

	// RankOf returns the 1-based rank of customerID if it is currently in
	// the index (score > 0).
	RankOf(ctx context.Context, customerID int64) (rank int, ok bool)

	// GetByRank returns index entries occupying [start, min(end, N)].
	GetByRank(ctx context.Context, start, end int) ([]types.CustomerRanking, error)

	// Metrics returns a snapshot of registry/index sizes and the top score.
	Metrics(ctx context.Context) types.ServiceMetrics

	// Reset clears the registry and index. Used to begin a bulk seed load.
	Reset(ctx context.Context)

	// Count returns the number of customers in the registry.
	Count(ctx context.Context) int
}

// leaderboardStore is the single guarded home for both the score registry
// and the ranked index. One sync.RWMutex gates both structures together so
// that no reader can ever observe the registry's new score alongside the
// index's stale entry (or vice versa) — the atomicity §5 requires.
type leaderboardStore struct {
	mu       sync.RWMutex
	registry map[int64]decimal.Decimal
	index    *skipList

	// topCache mirrors the top cacheSize index entries. It is refreshed
	// synchronously inside the write critical section on every mutation
	// that could change it, so a reader taking the store's own RLock never
	// observes a stale cache; version exists for observability and tests,
	// not because staleness can occur under this locking discipline.
	topCache  []types.CustomerRanking
	cacheSize int
	version   uint64
}

// Option configures a leaderboardStore.
type Option func(*leaderboardStore)

// WithTopCacheSize sets how many top entries are kept warm in the cache
// described in §4.4. The default is 10.
func WithTopCacheSize(n int) Option {
	return func(s *leaderboardStore) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

const defaultTopCacheSize = 10

// NewStore constructs the registry+index combination behind one lock.
func NewStore(opts ...Option) Store {
	s := &leaderboardStore{
		registry:  make(map[int64]decimal.Decimal),
		index:     newSkipList(),
		cacheSize: defaultTopCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *leaderboardStore) UpdateScore(_ context.Context, customerID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.registry[customerID]
	next := old.Add(delta)
	s.registry[customerID] = next

	if old.IsPositive() {
		s.index.remove(customerID, old)
	}
	if next.IsPositive() {
		s.index.insert(customerID, next)
	}
	s.refreshTopCacheLocked()

	return next, nil
}

func (s *leaderboardStore) SetScore(_ context.Context, customerID int64, score decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry[customerID] = score
	if score.IsPositive() {
		s.index.insert(customerID, score)
	}
	s.refreshTopCacheLocked()
	return nil
}

func (s *leaderboardStore) RankOf(_ context.Context, customerID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.registry[customerID]
	if !ok || !score.IsPositive() {
		return 0, false
	}
	return s.index.rankOf(customerID, score)
}

func (s *leaderboardStore) GetByRank(_ context.Context, start, end int) ([]types.CustomerRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if start < 1 || end < start {
		return nil, ErrInvalidArgument
	}

	if start == 1 && end <= len(s.topCache) {
		out := make([]types.CustomerRanking, end)
		copy(out, s.topCache[:end])
		return out, nil
	}

	nodes := s.index.rangeByRank(start, end)
	out := make([]types.CustomerRanking, len(nodes))
	for i, n := range nodes {
		out[i] = types.CustomerRanking{CustomerID: n.customerID, Score: n.score, Rank: start + i}
	}
	return out, nil
}

func (s *leaderboardStore) Metrics(_ context.Context) types.ServiceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top := decimal.Zero
	if len(s.topCache) > 0 {
		top = s.topCache[0].Score
	}
	return types.ServiceMetrics{
		TotalCustomers:       len(s.registry),
		LeaderboardCustomers: s.index.count(),
		TopScore:             top,
	}
}

func (s *leaderboardStore) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[int64]decimal.Decimal)
	s.index = newSkipList()
	s.topCache = nil
	s.version++
}

func (s *leaderboardStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

// refreshTopCacheLocked recomputes the cached top entries. Callers must
// already hold s.mu for writing.
func (s *leaderboardStore) refreshTopCacheLocked() {
	start := time.Now()

	s.version++
	n := s.cacheSize
	if n > s.index.count() {
		n = s.index.count()
	}
	if n == 0 {
		s.topCache = nil
		metrics.RecordTopCacheRefresh(float64(time.Since(start).Milliseconds()))
		return
	}
	nodes := s.index.rangeByRank(1, n)
	cache := make([]types.CustomerRanking, len(nodes))
	for i, node := range nodes {
		cache[i] = types.CustomerRanking{CustomerID: node.customerID, Score: node.score, Rank: i + 1}
	}
	s.topCache = cache

	metrics.RecordTopCacheRefresh(float64(time.Since(start).Milliseconds()))
}
