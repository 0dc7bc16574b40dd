package engine

import (
	"sort"

	"matchbook/internal/domain"
)

// store holds the three order indices. It is deliberately lock-free:
// the Book facade owns the mutex and acquires it exactly once per public
// operation, so composite operations (cancel-by-user, cancel-by-security)
// can reuse these primitives without re-entering a lock.
//
// Invariants, maintained by every mutator:
//  1. orders is the single source of truth; each order appears exactly once.
//  2. bySecurity[sec] holds exactly the ids of active orders on sec;
//     empty buckets are deleted, never left behind.
//  3. byUser[user] likewise, pruned when empty.
type store struct {
	orders     map[string]domain.Order
	bySecurity map[string]map[string]struct{}
	byUser     map[string]map[string]struct{}
}

func newStore() *store {
	return &store{
		orders:     make(map[string]domain.Order),
		bySecurity: make(map[string]map[string]struct{}),
		byUser:     make(map[string]map[string]struct{}),
	}
}

// add inserts an order into all three indices. Nothing is mutated when
// the order id is already present.
func (s *store) add(o domain.Order) error {
	if _, exists := s.orders[o.OrderID]; exists {
		return domain.ErrDuplicateOrderID
	}
	s.orders[o.OrderID] = o

	sec, ok := s.bySecurity[o.SecurityID]
	if !ok {
		sec = make(map[string]struct{})
		s.bySecurity[o.SecurityID] = sec
	}
	sec[o.OrderID] = struct{}{}

	usr, ok := s.byUser[o.User]
	if !ok {
		usr = make(map[string]struct{})
		s.byUser[o.User] = usr
	}
	usr[o.OrderID] = struct{}{}
	return nil
}

// remove deletes an order from all three indices, pruning buckets that
// become empty. Unknown ids are a no-op.
func (s *store) remove(orderID string) (domain.Order, bool) {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, false
	}
	delete(s.orders, orderID)

	if sec, ok := s.bySecurity[o.SecurityID]; ok {
		delete(sec, orderID)
		if len(sec) == 0 {
			delete(s.bySecurity, o.SecurityID)
		}
	}
	if usr, ok := s.byUser[o.User]; ok {
		delete(usr, orderID)
		if len(usr) == 0 {
			delete(s.byUser, o.User)
		}
	}
	return o, true
}

// setQuantity replaces an order's quantity. The secondary indices key on
// order id only, so no remove-reinsert dance is needed; there is no
// persistently sorted structure whose ordering could go stale.
func (s *store) setQuantity(orderID string, qty int64) error {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrUnknownOrderID
	}
	o.Quantity = qty
	s.orders[orderID] = o
	return nil
}

// reduceQuantity consumes qty from an order, removing it once fully
// filled. Used when committing match results.
func (s *store) reduceQuantity(orderID string, qty int64) {
	o, ok := s.orders[orderID]
	if !ok {
		return
	}
	if o.Quantity <= qty {
		s.remove(orderID)
		return
	}
	o.Quantity -= qty
	s.orders[orderID] = o
}

func (s *store) get(orderID string) (domain.Order, bool) {
	o, ok := s.orders[orderID]
	return o, ok
}

// all returns copies of every active order, sorted by order id for
// deterministic output.
func (s *store) all() []domain.Order {
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sortByOrderID(out)
	return out
}

func (s *store) securityOrders(securityID string) []domain.Order {
	return s.collect(s.bySecurity[securityID])
}

func (s *store) userOrders(user string) []domain.Order {
	return s.collect(s.byUser[user])
}

func (s *store) collect(ids map[string]struct{}) []domain.Order {
	if len(ids) == 0 {
		return nil
	}
	out := make([]domain.Order, 0, len(ids))
	for id := range ids {
		if o, ok := s.orders[id]; ok {
			out = append(out, o)
		}
	}
	sortByOrderID(out)
	return out
}

// idsFor snapshots a bucket's order ids so callers can mutate the store
// while iterating.
func idsFor(bucket map[string]struct{}) []string {
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	return ids
}

func sortByOrderID(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderID < orders[j].OrderID
	})
}
