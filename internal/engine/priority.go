package engine

import "matchbook/internal/domain"

// The four total orderings used during matching. Order ids break every
// tie so the sequences are deterministic.

// buyQuantityPriority ranks bigger buy orders first.
func buyQuantityPriority(a, b domain.Order) bool {
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	return a.OrderID < b.OrderID
}

// sellQuantityPriority ranks smaller sell orders first. The asymmetry
// with the buy side (largest buy against smallest sell) is venue policy.
func sellQuantityPriority(a, b domain.Order) bool {
	if a.Quantity != b.Quantity {
		return a.Quantity < b.Quantity
	}
	return a.OrderID < b.OrderID
}

// buyPricePriority ranks by best (highest) price, then size, then id.
func buyPricePriority(a, b domain.Order) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	return a.OrderID < b.OrderID
}

// sellPricePriority ranks by best (lowest) price, then size, then id.
func sellPricePriority(a, b domain.Order) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	if a.Quantity != b.Quantity {
		return a.Quantity < b.Quantity
	}
	return a.OrderID < b.OrderID
}

// orderHeap is a priority queue of orders over an arbitrary ordering.
// Manipulate through container/heap (Init, Push, Pop).
type orderHeap struct {
	orders []domain.Order
	less   func(a, b domain.Order) bool
}

func (h *orderHeap) Len() int           { return len(h.orders) }
func (h *orderHeap) Less(i, j int) bool { return h.less(h.orders[i], h.orders[j]) }
func (h *orderHeap) Swap(i, j int)      { h.orders[i], h.orders[j] = h.orders[j], h.orders[i] }

func (h *orderHeap) Push(x interface{}) {
	h.orders = append(h.orders, x.(domain.Order))
}

func (h *orderHeap) Pop() interface{} {
	old := h.orders
	n := len(old)
	x := old[n-1]
	h.orders = old[0 : n-1]
	return x
}
