package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersAdded     atomic.Uint64
	ordersCancelled atomic.Uint64
	ordersModified  atomic.Uint64

	// Matching
	matchesComputed  atomic.Uint64
	quantityMatched  atomic.Int64 // cumulative qty reported by sizing queries
	quantityExecuted atomic.Int64 // cumulative qty committed by execute calls
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderAdded records a successfully inserted order.
func (m *Metrics) RecordOrderAdded() {
	m.ordersAdded.Add(1)
}

// RecordOrdersCancelled records n cancelled orders.
func (m *Metrics) RecordOrdersCancelled(n int64) {
	m.ordersCancelled.Add(uint64(n))
}

// RecordOrderModified records a quantity modification.
func (m *Metrics) RecordOrderModified() {
	m.ordersModified.Add(1)
}

// RecordMatchComputed records one matching pass and the quantity it
// reported.
func (m *Metrics) RecordMatchComputed(qty int64) {
	m.matchesComputed.Add(1)
	m.quantityMatched.Add(qty)
}

// RecordQuantityExecuted records quantity committed back into the book.
func (m *Metrics) RecordQuantityExecuted(qty int64) {
	m.quantityExecuted.Add(qty)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersAdded      uint64
	OrdersCancelled  uint64
	OrdersModified   uint64
	MatchesComputed  uint64
	QuantityMatched  int64
	QuantityExecuted int64
	Timestamp        time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersAdded:      m.ordersAdded.Load(),
		OrdersCancelled:  m.ordersCancelled.Load(),
		OrdersModified:   m.ordersModified.Load(),
		MatchesComputed:  m.matchesComputed.Load(),
		QuantityMatched:  m.quantityMatched.Load(),
		QuantityExecuted: m.quantityExecuted.Load(),
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersAdded.Store(0)
	m.ordersCancelled.Store(0)
	m.ordersModified.Store(0)
	m.matchesComputed.Store(0)
	m.quantityMatched.Store(0)
	m.quantityExecuted.Store(0)
}
