package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"matchbook/internal/domain"
	"matchbook/internal/infra"
)

// Book is the matching core behind a single mutual-exclusion boundary.
// Every public method acquires the mutex exactly once and runs to
// completion on the caller's goroutine; the store primitives underneath
// never lock, so composite operations stay deadlock-free and externally
// atomic.
type Book struct {
	mu      sync.Mutex
	store   *store
	log     *slog.Logger
	metrics *infra.Metrics
}

var _ domain.OrderBook = (*Book)(nil)

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the structured logger used for mutation logging.
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) { b.log = l }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m *infra.Metrics) Option {
	return func(b *Book) { b.metrics = m }
}

// NewBook creates an empty order book.
func NewBook(opts ...Option) *Book {
	b := &Book{
		store:   newStore(),
		log:     slog.Default(),
		metrics: infra.GlobalMetrics,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func invalidQuantity(qty int64) error {
	return fmt.Errorf("%w: quantity %d is negative", domain.ErrInvalidOrder, qty)
}

// AddOrder validates and inserts a new resting order. It fails with
// domain.ErrDuplicateOrderID when the id is already active and leaves
// every index untouched on any failure.
func (b *Book) AddOrder(o domain.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.add(o); err != nil {
		return err
	}
	b.metrics.RecordOrderAdded()
	b.log.Debug("order added",
		slog.String("order_id", o.OrderID),
		slog.String("security_id", o.SecurityID),
		slog.String("side", string(o.Side)),
		slog.Int64("quantity", o.Quantity))
	return nil
}

// CancelOrder removes an order. Unknown ids are a silent no-op.
func (b *Book) CancelOrder(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.store.remove(orderID); ok {
		b.metrics.RecordOrdersCancelled(1)
		b.log.Debug("order cancelled", slog.String("order_id", orderID))
	}
}

// CancelOrdersByUser removes every order the user owns.
func (b *Book) CancelOrdersByUser(user string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := idsFor(b.store.byUser[user])
	for _, id := range ids {
		b.store.remove(id)
	}
	if len(ids) > 0 {
		b.metrics.RecordOrdersCancelled(int64(len(ids)))
		b.log.Debug("orders cancelled for user",
			slog.String("user", user), slog.Int("count", len(ids)))
	}
}

// CancelOrdersForSecurity removes every order on the security.
func (b *Book) CancelOrdersForSecurity(securityID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := idsFor(b.store.bySecurity[securityID])
	for _, id := range ids {
		b.store.remove(id)
	}
	if len(ids) > 0 {
		b.metrics.RecordOrdersCancelled(int64(len(ids)))
		b.log.Debug("orders cancelled for security",
			slog.String("security_id", securityID), slog.Int("count", len(ids)))
	}
}

// CancelOrdersBelowQuantity removes every order on the security whose
// quantity is strictly less than minQty. Reports whether anything was
// cancelled.
func (b *Book) CancelOrdersBelowQuantity(securityID string, minQty int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	var cancelled int64
	for _, id := range idsFor(b.store.bySecurity[securityID]) {
		if o, ok := b.store.get(id); ok && o.Quantity < minQty {
			b.store.remove(id)
			cancelled++
		}
	}
	if cancelled > 0 {
		b.metrics.RecordOrdersCancelled(cancelled)
		b.log.Debug("orders cancelled below quantity",
			slog.String("security_id", securityID),
			slog.Int64("min_quantity", minQty),
			slog.Int64("count", cancelled))
	}
	return cancelled > 0
}

// ModifyOrder replaces an order's quantity, keeping its identity and
// position in the id-keyed indices. Fails with domain.ErrUnknownOrderID
// when the order does not exist.
func (b *Book) ModifyOrder(orderID string, newQty int64) error {
	if newQty < 0 {
		return invalidQuantity(newQty)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.setQuantity(orderID, newQty); err != nil {
		return err
	}
	b.metrics.RecordOrderModified()
	b.log.Debug("order modified",
		slog.String("order_id", orderID), slog.Int64("quantity", newQty))
	return nil
}

// GetOrder returns a copy of the order, if active.
func (b *Book) GetOrder(orderID string) (domain.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.get(orderID)
}

// GetAllOrders returns copies of every active order, sorted by id.
func (b *Book) GetAllOrders() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.all()
}

// GetOrdersByUser returns copies of the user's orders, sorted by id.
func (b *Book) GetOrdersByUser(user string) []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.userOrders(user)
}

// GetOrdersBySecurity returns copies of the security's orders, sorted
// by id.
func (b *Book) GetOrdersBySecurity(securityID string) []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.securityOrders(securityID)
}

// MatchingSizeForSecurity reports the quantity that could execute right
// now under quantity priority. The book is not mutated; an unknown
// security yields zero.
func (b *Book) MatchingSizeForSecurity(securityID string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	total, _ := matchByQuantity(b.store.securityOrders(securityID))
	b.metrics.RecordMatchComputed(total)
	return total
}

// MatchingSizeWithPricePriority reports the executable quantity under
// price-then-size priority, with the same dry-run semantics.
func (b *Book) MatchingSizeWithPricePriority(securityID string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	total, _ := matchByPrice(b.store.securityOrders(securityID))
	b.metrics.RecordMatchComputed(total)
	return total
}

// ExecuteMatchesForSecurity runs quantity-priority matching and commits
// the fills: fully executed orders leave the book and partial fills
// keep their remainder. Snapshot, match, and commit all happen under
// one lock acquisition so no interleaved mutation can split them.
func (b *Book) ExecuteMatchesForSecurity(securityID string) (int64, []domain.Fill) {
	b.mu.Lock()
	defer b.mu.Unlock()

	total, fills := matchByQuantity(b.store.securityOrders(securityID))
	for _, f := range fills {
		b.store.reduceQuantity(f.BuyOrderID, f.Quantity)
		b.store.reduceQuantity(f.SellOrderID, f.Quantity)
	}
	b.metrics.RecordMatchComputed(total)
	if total > 0 {
		b.metrics.RecordQuantityExecuted(total)
		b.log.Debug("matches executed",
			slog.String("security_id", securityID),
			slog.Int64("quantity", total),
			slog.Int("fills", len(fills)))
	}
	return total, fills
}
