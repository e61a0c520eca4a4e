package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/farmstore/internal/checkout"
)

// consoleNotifier prints notices the way a shell would toast them.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Notify(_ context.Context, notice checkout.Notice) {
	line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(notice.Kind)), notice.Message)
	if notice.OrderID > 0 {
		line += fmt.Sprintf(" (order #%d)", notice.OrderID)
	}
	fmt.Fprintln(n.out, line)
}

// consoleNavigator tells the user which command shows the next screen.
type consoleNavigator struct {
	out  io.Writer
	name string
}

func (n consoleNavigator) ToPaymentResult(_ context.Context, orderID int64) {
	fmt.Fprintf(n.out, "after paying, run: %s result -order-id %d\n", n.name, orderID)
}

func (n consoleNavigator) ToOrders(_ context.Context) {
	fmt.Fprintln(n.out, "order list updated")
}
