package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"matchbook/internal/app"
	"matchbook/internal/domain"
	"matchbook/internal/infra"
)

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	book := bootstrap.Book

	// Seed the book with the configured sample orders.
	for _, d := range bootstrap.Config.Demo.Orders {
		o := domain.Order{
			OrderID:    d.OrderID,
			SecurityID: d.SecurityID,
			Side:       domain.Side(d.Side),
			Quantity:   d.Quantity,
			User:       d.User,
			Company:    d.Company,
			Price:      d.Price,
		}
		if err := book.AddOrder(o); err != nil {
			slog.Error("failed to add demo order",
				slog.String("order_id", d.OrderID), slog.Any("error", err))
		}
	}

	fmt.Println("All orders entered:")
	printOrders(book.GetAllOrders())

	fmt.Println("Orders on GOLD:")
	printOrders(book.GetOrdersBySecurity("GOLD"))

	fmt.Printf("Matching size for GOLD (quantity priority): %d\n", book.MatchingSizeForSecurity("GOLD"))
	fmt.Printf("Matching size for GOLD (price priority):    %d\n\n", book.MatchingSizeWithPricePriority("GOLD"))

	fmt.Println("Alice cancels ID1...")
	book.CancelOrder("ID1")
	fmt.Println("Orders on GOLD after cancel:")
	printOrders(book.GetOrdersBySecurity("GOLD"))

	fmt.Println("Orders owned by alice:")
	printOrders(book.GetOrdersByUser("alice"))

	executed, fills := book.ExecuteMatchesForSecurity("GOLD")
	fmt.Printf("Executed %d on GOLD across %d fill(s)\n", executed, len(fills))
	for _, f := range fills {
		fmt.Printf("  buy %s x sell %s: %d\n", f.BuyOrderID, f.SellOrderID, f.Quantity)
	}
	fmt.Println()

	fmt.Println("Remaining orders:")
	printOrders(book.GetAllOrders())

	snap := infra.GlobalMetrics.Snapshot()
	slog.Info("session summary",
		slog.Uint64("orders_added", snap.OrdersAdded),
		slog.Uint64("orders_cancelled", snap.OrdersCancelled),
		slog.Uint64("matches_computed", snap.MatchesComputed),
		slog.Int64("quantity_executed", snap.QuantityExecuted))
}

func printOrders(orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tSECURITY\tSIDE\tQTY\tPRICE\tUSER\tCOMPANY")
	for _, o := range orders {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.OrderID, o.SecurityID, o.Side, o.Quantity, o.Price.String(), o.User, o.Company)
	}
	w.Flush()
	fmt.Println()
}
