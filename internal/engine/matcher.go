package engine

import (
	"container/heap"
	"sort"

	"matchbook/internal/domain"
)

// sideCursor walks one side's priority-ordered orders. The current head
// lives outside the underlying sequence so a partial-fill remainder can
// replace it without reinserting a reduced order under an identity that
// is already present.
type sideCursor struct {
	cur  domain.Order
	ok   bool
	next func() (domain.Order, bool)
}

func (c *sideCursor) advance() {
	c.cur, c.ok = c.next()
}

// consume reduces the head by qty, advancing when it is fully filled.
func (c *sideCursor) consume(qty int64) {
	if c.cur.Quantity <= qty {
		c.advance()
		return
	}
	c.cur.Quantity -= qty
}

func sliceCursor(orders []domain.Order) *sideCursor {
	i := 0
	c := &sideCursor{next: func() (domain.Order, bool) {
		if i >= len(orders) {
			return domain.Order{}, false
		}
		o := orders[i]
		i++
		return o, true
	}}
	c.advance()
	return c
}

func heapCursor(h *orderHeap) *sideCursor {
	heap.Init(h)
	c := &sideCursor{next: func() (domain.Order, bool) {
		if h.Len() == 0 {
			return domain.Order{}, false
		}
		return heap.Pop(h).(domain.Order), true
	}}
	c.advance()
	return c
}

// matchHeads runs the greedy loop shared by every matcher: pair the two
// heads, skip same-company pairs by discarding the sell head, otherwise
// execute min(buy, sell) and carry the unconsumed remainder forward.
// Terminates when either side runs out.
func matchHeads(buys, sells *sideCursor) (int64, []domain.Fill) {
	var (
		total int64
		fills []domain.Fill
	)
	for buys.ok && sells.ok {
		if buys.cur.Company == sells.cur.Company {
			// Self-trade: this sell may never execute against the
			// current buy, so it leaves the pass entirely.
			sells.advance()
			continue
		}
		qty := min(buys.cur.Quantity, sells.cur.Quantity)
		if qty > 0 {
			total += qty
			fills = append(fills, domain.Fill{
				BuyOrderID:  buys.cur.OrderID,
				SellOrderID: sells.cur.OrderID,
				Quantity:    qty,
			})
		}
		buys.consume(qty)
		sells.consume(qty)
	}
	return total, fills
}

// partition splits a security snapshot into buy and sell slices.
func partition(orders []domain.Order) (buys, sells []domain.Order) {
	for _, o := range orders {
		switch o.Side {
		case domain.SideBuy:
			buys = append(buys, o)
		case domain.SideSell:
			sells = append(sells, o)
		}
	}
	return buys, sells
}

// matchByQuantity reports the executable quantity under quantity
// priority: largest buys against smallest sells.
func matchByQuantity(orders []domain.Order) (int64, []domain.Fill) {
	buys, sells := partition(orders)
	sort.Slice(buys, func(i, j int) bool { return buyQuantityPriority(buys[i], buys[j]) })
	sort.Slice(sells, func(i, j int) bool { return sellQuantityPriority(sells[i], sells[j]) })
	return matchHeads(sliceCursor(buys), sliceCursor(sells))
}

// matchByPrice reports the executable quantity under price-then-size
// priority, driven from per-side order heaps.
func matchByPrice(orders []domain.Order) (int64, []domain.Fill) {
	buys, sells := partition(orders)
	bh := &orderHeap{orders: buys, less: buyPricePriority}
	sh := &orderHeap{orders: sells, less: sellPricePriority}
	return matchHeads(heapCursor(bh), heapCursor(sh))
}
