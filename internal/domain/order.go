package domain

import "github.com/shopspring/decimal"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order represents one resting limit order.
// Quantity is the only mutable field; everything else is fixed at entry.
type Order struct {
	OrderID    string          `json:"order_id"`
	SecurityID string          `json:"security_id"`
	Side       Side            `json:"side"`
	Quantity   int64           `json:"quantity"`
	User       string          `json:"user"`
	Company    string          `json:"company"` // keyed for self-trade prevention
	Price      decimal.Decimal `json:"price"`   // zero in size-only matching mode
}

// SameIdentity reports whether two orders are the same logical order.
// Quantity and price are deliberately excluded: a partial fill or a
// quantity modification does not create a new order.
func (o Order) SameIdentity(other Order) bool {
	return o.OrderID == other.OrderID &&
		o.SecurityID == other.SecurityID &&
		o.User == other.User &&
		o.Side == other.Side
}

// Validate checks the fields required for an order to enter the book.
// Company must be set because self-trade prevention is keyed on it.
func (o Order) Validate() error {
	switch {
	case o.OrderID == "":
		return invalidOrder("order id is empty")
	case o.SecurityID == "":
		return invalidOrder("security id is empty")
	case o.User == "":
		return invalidOrder("user is empty")
	case o.Company == "":
		return invalidOrder("company is empty")
	case o.Side != SideBuy && o.Side != SideSell:
		return invalidOrder("side must be BUY or SELL")
	case o.Quantity < 0:
		return invalidOrder("quantity is negative")
	}
	return nil
}

// Fill records one execution between a buy and a sell order.
type Fill struct {
	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`
	Quantity    int64  `json:"quantity"`
}
