package domain

// OrderBook is the synchronous call surface of the matching core.
// All accessors return value copies; callers never observe internal
// storage. One concrete implementation lives in internal/engine.
type OrderBook interface {
	// Mutators. Add and modify are strict; cancels are idempotent
	// no-ops on unknown targets.
	AddOrder(o Order) error
	CancelOrder(orderID string)
	CancelOrdersByUser(user string)
	CancelOrdersForSecurity(securityID string)
	// CancelOrdersBelowQuantity cancels every order on the security
	// whose quantity is strictly less than minQty and reports whether
	// anything was cancelled.
	CancelOrdersBelowQuantity(securityID string, minQty int64) bool
	ModifyOrder(orderID string, newQty int64) error

	// Accessors.
	GetOrder(orderID string) (Order, bool)
	GetAllOrders() []Order
	GetOrdersByUser(user string) []Order
	GetOrdersBySecurity(securityID string) []Order

	// Matchers. Both are dry runs: they report how much quantity could
	// execute right now without touching the book. Unknown securities
	// yield zero.
	MatchingSizeForSecurity(securityID string) int64
	MatchingSizeWithPricePriority(securityID string) int64

	// ExecuteMatchesForSecurity runs quantity-priority matching and
	// commits the result: filled orders are removed, partial fills keep
	// their remainder. The individual fills are returned.
	ExecuteMatchesForSecurity(securityID string) (int64, []Fill)
}
