package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/domain"
	"matchbook/internal/infra"
)

func newTestBook() *Book {
	return NewBook(WithMetrics(&infra.Metrics{}))
}

func TestBookAddAndGet(t *testing.T) {
	b := newTestBook()
	o := order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)
	require.NoError(t, b.AddOrder(o))

	got, ok := b.GetOrder("ID1")
	require.True(t, ok)
	assert.Equal(t, o, got)

	gold := b.GetOrdersBySecurity("GOLD")
	require.Len(t, gold, 1)
	assert.True(t, o.SameIdentity(gold[0]))
}

func TestBookAddDuplicate(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))

	err := b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5))
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderID)
	assert.Len(t, b.GetAllOrders(), 1)
}

func TestBookAddInvalid(t *testing.T) {
	b := newTestBook()
	err := b.AddOrder(order("", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5))
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Empty(t, b.GetAllOrders())
}

func TestBookCancelOrder(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))

	before := len(b.GetAllOrders())
	b.CancelOrder("ID1")

	_, ok := b.GetOrder("ID1")
	assert.False(t, ok)
	assert.Len(t, b.GetAllOrders(), before-1)

	// Unknown cancel is a silent no-op.
	b.CancelOrder("ID99")
	assert.Len(t, b.GetAllOrders(), before-1)
}

func TestBookCancelOrdersByUser(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "WTI", domain.SideBuy, 10, "alice", "firmA", 550)))
	require.NoError(t, b.AddOrder(order("ID3", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))

	b.CancelOrdersByUser("alice")

	assert.Empty(t, b.GetOrdersByUser("alice"))
	for _, o := range b.GetAllOrders() {
		assert.NotEqual(t, "alice", o.User)
	}
	assert.Len(t, b.GetAllOrders(), 1)

	b.CancelOrdersByUser("carol") // unknown user, no-op
	assert.Len(t, b.GetAllOrders(), 1)
}

func TestBookCancelOrdersForSecurity(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID3", "WTI", domain.SideBuy, 10, "alice", "firmA", 550)))

	b.CancelOrdersForSecurity("GOLD")

	assert.Empty(t, b.GetOrdersBySecurity("GOLD"))
	assert.Len(t, b.GetAllOrders(), 1)

	b.CancelOrdersForSecurity("SILVER") // unknown security, no-op
	assert.Len(t, b.GetAllOrders(), 1)
}

func TestBookCancelOrdersBelowQuantity(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "WTI", domain.SideBuy, 10, "alice", "firmA", 550)))
	require.NoError(t, b.AddOrder(order("ID2", "WTI", domain.SideBuy, 30, "alice", "firmA", 548)))
	require.NoError(t, b.AddOrder(order("ID3", "WTI", domain.SideSell, 20, "bob", "firmB", 549)))

	// Strictly below: the order with quantity exactly 20 survives.
	cancelled := b.CancelOrdersBelowQuantity("WTI", 20)
	assert.True(t, cancelled)

	_, ok := b.GetOrder("ID1")
	assert.False(t, ok, "quantity 10 < 20 must be cancelled")
	_, ok = b.GetOrder("ID2")
	assert.True(t, ok)
	_, ok = b.GetOrder("ID3")
	assert.True(t, ok, "quantity 20 is not strictly below 20")

	assert.False(t, b.CancelOrdersBelowQuantity("WTI", 5), "nothing below 5")
	assert.False(t, b.CancelOrdersBelowQuantity("SILVER", 100), "unknown security")
}

func TestBookModifyOrder(t *testing.T) {
	b := newTestBook()
	o := order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)
	require.NoError(t, b.AddOrder(o))

	require.NoError(t, b.ModifyOrder("ID1", 40))

	got, ok := b.GetOrder("ID1")
	require.True(t, ok)
	assert.Equal(t, int64(40), got.Quantity)
	assert.True(t, o.SameIdentity(got), "identity fields unchanged by modify")

	assert.ErrorIs(t, b.ModifyOrder("ID99", 10), domain.ErrUnknownOrderID)
	assert.ErrorIs(t, b.ModifyOrder("ID1", -5), domain.ErrInvalidOrder)
}

func TestBookModifyReordersQuantityPriority(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("B1", "GOLD", domain.SideBuy, 100, "u1", "firmA", 1850)))
	require.NoError(t, b.AddOrder(order("B2", "GOLD", domain.SideBuy, 60, "u2", "firmB", 1850)))
	require.NoError(t, b.AddOrder(order("S1", "GOLD", domain.SideSell, 70, "u3", "firmC", 1850)))

	// B1 is the largest buy, so it matches first: 70 executes.
	assert.Equal(t, int64(70), b.MatchingSizeForSecurity("GOLD"))

	// Shrinking B1 promotes B2 to the head of the buy ordering.
	require.NoError(t, b.ModifyOrder("B1", 10))
	_, fills := b.ExecuteMatchesForSecurity("GOLD")
	require.NotEmpty(t, fills)
	assert.Equal(t, "B2", fills[0].BuyOrderID)
}

func TestBookMatchingSizeDryRun(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))

	assert.Equal(t, int64(50), b.MatchingSizeForSecurity("GOLD"))

	// Dry run: quantities are untouched and the result is repeatable.
	got, _ := b.GetOrder("ID1")
	assert.Equal(t, int64(100), got.Quantity)
	assert.Equal(t, int64(50), b.MatchingSizeForSecurity("GOLD"))
	assert.Equal(t, int64(50), b.MatchingSizeWithPricePriority("GOLD"))
}

func TestBookMatchingSizeUnknownSecurity(t *testing.T) {
	b := newTestBook()
	assert.Equal(t, int64(0), b.MatchingSizeForSecurity("SILVER"))
	assert.Equal(t, int64(0), b.MatchingSizeWithPricePriority("SILVER"))
}

func TestBookExecuteMatchesCommits(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))

	executed, fills := b.ExecuteMatchesForSecurity("GOLD")
	assert.Equal(t, int64(50), executed)
	require.Len(t, fills, 1)

	// The sell was fully filled and leaves the book; the buy keeps its
	// remainder.
	_, ok := b.GetOrder("ID2")
	assert.False(t, ok)
	got, ok := b.GetOrder("ID1")
	require.True(t, ok)
	assert.Equal(t, int64(50), got.Quantity)

	// Nothing left to cross.
	executed, fills = b.ExecuteMatchesForSecurity("GOLD")
	assert.Equal(t, int64(0), executed)
	assert.Empty(t, fills)
}

func TestBookEndToEndGoldScenario(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))

	assert.Equal(t, int64(50), b.MatchingSizeForSecurity("GOLD"))

	b.CancelOrder("ID1")
	for _, o := range b.GetOrdersBySecurity("GOLD") {
		assert.NotEqual(t, "ID1", o.OrderID)
	}
}

func TestBookAccessorsReturnCopies(t *testing.T) {
	b := newTestBook()
	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))

	all := b.GetAllOrders()
	all[0].Quantity = 1

	got, _ := b.GetOrder("ID1")
	assert.Equal(t, int64(100), got.Quantity)
}

func TestBookMetricsRecording(t *testing.T) {
	m := &infra.Metrics{}
	b := NewBook(WithMetrics(m))

	require.NoError(t, b.AddOrder(order("ID1", "GOLD", domain.SideBuy, 100, "alice", "firmA", 1850.5)))
	require.NoError(t, b.AddOrder(order("ID2", "GOLD", domain.SideSell, 50, "bob", "firmB", 1850.5)))
	b.MatchingSizeForSecurity("GOLD")
	b.CancelOrder("ID2")

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.OrdersAdded)
	assert.Equal(t, uint64(1), snap.OrdersCancelled)
	assert.Equal(t, uint64(1), snap.MatchesComputed)
	assert.Equal(t, int64(50), snap.QuantityMatched)
}

// TestBookConcurrentAccess drives mutators and matchers from many
// goroutines; run with -race.
func TestBookConcurrentAccess(t *testing.T) {
	b := newTestBook()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("G%d-%d", g, i)
				side := domain.SideBuy
				if i%2 == 1 {
					side = domain.SideSell
				}
				_ = b.AddOrder(order(id, "GOLD", side, int64(i+1), fmt.Sprintf("user%d", g), fmt.Sprintf("firm%d", g), 1850))
				b.MatchingSizeForSecurity("GOLD")
				b.MatchingSizeWithPricePriority("GOLD")
				if i%10 == 0 {
					b.CancelOrder(id)
				}
				if i%25 == 0 {
					_ = b.ModifyOrder(id, int64(i))
				}
			}
		}(g)
	}
	wg.Wait()

	// The book must still satisfy its cross-index invariants.
	checkInvariants(t, b.store)
}
