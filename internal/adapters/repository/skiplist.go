// Package repository holds the ranked index and score registry that back
// the leaderboard, plus their combined concurrency discipline.
package repository

import (
	"math/rand"

	"github.com/shopspring/decimal"
)

// maxLevel and p bound the skip list's probabilistic height exactly as
// described for the order-statistic realization of the ranked index: a
// geometric level distribution with p=0.5, capped at 32 levels.
const (
	maxLevel = 32
	p        = 0.5
)

// skipListLevel is one forward pointer at one level of a node, together
// with the span: the number of bottom-level nodes it skips over. Summing
// spans along a descending-level search path yields a node's rank.
type skipListLevel struct {
	forward *slNode
	span    int
}

// slNode is one (customerID, score) pair held by the skip list.
type slNode struct {
	customerID int64
	score      decimal.Decimal
	level      []skipListLevel
}

// skipList is an order-statistic skip list over the composite order
// (score desc, customerID asc). It is not safe for concurrent use on its
// own; callers (leaderboardStore) hold a lock around every operation.
type skipList struct {
	header *slNode
	length int
	level  int
	rng    *rand.Rand
}

func newSkipList() *skipList {
	return &skipList{
		header: &slNode{level: make([]skipListLevel, maxLevel)},
		level:  1,
		rng:    rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // ranking order, not a security-sensitive draw
	}
}

// before reports whether (aScore, aID) sorts strictly before (bScore, bID)
// in the composite order: higher score first, then lower id.
func before(aScore decimal.Decimal, aID int64, bScore decimal.Decimal, bID int64) bool {
	switch c := aScore.Cmp(bScore); {
	case c > 0:
		return true
	case c < 0:
		return false
	default:
		return aID < bID
	}
}

func (sl *skipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && sl.rng.Float64() < p {
		lvl++
	}
	return lvl
}

// search walks the skip list toward (score, id), filling update with the
// last node visited at each level and rank with the number of nodes
// strictly before (score, id) reachable through that level. It returns the
// node matching (score, id) exactly, if present.
func (sl *skipList) search(score decimal.Decimal, id int64) (update [maxLevel]*slNode, rank [maxLevel]int, found *slNode) {
	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		if i == sl.level-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for x.level[i].forward != nil && before(x.level[i].forward.score, x.level[i].forward.customerID, score, id) {
			rank[i] += x.level[i].span
			x = x.level[i].forward
		}
		update[i] = x
	}
	next := x.level[0].forward
	if next != nil && next.customerID == id && next.score.Equal(score) {
		found = next
	}
	return update, rank, found
}

// insert adds (id, score) to the skip list. It returns inserted=false
// without modifying anything if an element with the same composite key is
// already present, and the 1-based rank the element occupies either way.
func (sl *skipList) insert(id int64, score decimal.Decimal) (inserted bool, rank int) {
	update, rnk, found := sl.search(score, id)
	if found != nil {
		return false, rnk[0] + 1
	}

	lvl := sl.randomLevel()
	if lvl > sl.level {
		for i := sl.level; i < lvl; i++ {
			rnk[i] = 0
			update[i] = sl.header
			update[i].level[i].span = sl.length
		}
		sl.level = lvl
	}

	x := &slNode{customerID: id, score: score, level: make([]skipListLevel, lvl)}
	for i := 0; i < lvl; i++ {
		x.level[i].forward = update[i].level[i].forward
		update[i].level[i].forward = x
		x.level[i].span = update[i].level[i].span - (rnk[0] - rnk[i])
		update[i].level[i].span = rnk[0] - rnk[i] + 1
	}
	for i := lvl; i < sl.level; i++ {
		update[i].level[i].span++
	}

	sl.length++
	return true, rnk[0] + 1
}

// remove deletes (id, score) from the skip list if present.
func (sl *skipList) remove(id int64, score decimal.Decimal) (removed bool, rank int) {
	update, rnk, found := sl.search(score, id)
	if found == nil {
		return false, 0
	}

	for i := 0; i < sl.level; i++ {
		if update[i].level[i].forward == found {
			update[i].level[i].span += found.level[i].span - 1
			update[i].level[i].forward = found.level[i].forward
		} else {
			update[i].level[i].span--
		}
	}
	for sl.level > 1 && sl.header.level[sl.level-1].forward == nil {
		sl.level--
	}
	sl.length--
	return true, rnk[0] + 1
}

// rankOf returns the 1-based rank of (id, score) if present.
func (sl *skipList) rankOf(id int64, score decimal.Decimal) (rank int, ok bool) {
	_, rnk, found := sl.search(score, id)
	if found == nil {
		return 0, false
	}
	return rnk[0] + 1, true
}

// byRank locates the node occupying the given 1-based rank in O(log N).
func (sl *skipList) byRank(rank int) (*slNode, bool) {
	if rank < 1 || rank > sl.length {
		return nil, false
	}
	traversed := 0
	x := sl.header
	for i := sl.level - 1; i >= 0; i-- {
		for x.level[i].forward != nil && traversed+x.level[i].span <= rank {
			traversed += x.level[i].span
			x = x.level[i].forward
		}
		if traversed == rank {
			return x, true
		}
	}
	return nil, false
}

// rangeByRank returns the nodes occupying [start, min(end, N)], clamped and
// possibly empty, in O(log N + k) where k is the number of nodes returned.
func (sl *skipList) rangeByRank(start, end int) []*slNode {
	if end > sl.length {
		end = sl.length
	}
	if start < 1 || start > end {
		return nil
	}
	first, ok := sl.byRank(start)
	if !ok {
		return nil
	}
	out := make([]*slNode, 0, end-start+1)
	for x := first; x != nil && len(out) < end-start+1; x = x.level[0].forward {
		out = append(out, x)
	}
	return out
}

func (sl *skipList) count() int { return sl.length }
