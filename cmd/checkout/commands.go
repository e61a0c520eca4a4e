package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmstore/internal/addresses"
	"github.com/angelmondragon/farmstore/internal/cart"
	"github.com/angelmondragon/farmstore/internal/checkout"
	"github.com/angelmondragon/farmstore/internal/handoff"
	"github.com/angelmondragon/farmstore/internal/media"
	"github.com/angelmondragon/farmstore/internal/paymentresult"
	"github.com/angelmondragon/farmstore/internal/selection"
	"github.com/angelmondragon/farmstore/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

const programName = "farmstore"

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "cart", usage: "cart show|add|inc|dec|set|remove|clear|reconcile", run: runCart},
	{name: "options", usage: "options  list addresses and payment methods", run: runOptions},
	{name: "checkout", usage: "checkout -payment-method-id ID (-address-id ID | -manual-address TEXT) [-name NAME]", run: runCheckout},
	{name: "result", usage: "result -order-id ID [-detail]", run: runResult},
	{name: "upload", usage: "upload -file PATH", run: runUpload},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s <command> [flags]\n\n", programName)
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func runCart(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	action, rest := args[0], args[1:]

	fs := flag.NewFlagSet("cart "+action, flag.ContinueOnError)
	fs.SetOutput(a.out)
	productID := fs.Int64("product-id", 0, "product to add")
	itemID := fs.String("item", "", "cart item id")
	quantity := fs.Int("quantity", 1, "quantity")
	if err := fs.Parse(rest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flags")
	}

	var (
		current cart.Cart
		err     error
	)
	switch action {
	case "show":
		current, err = a.cart.Get(ctx, a.owner)
	case "add":
		current, err = a.cart.AddProduct(ctx, a.owner, *productID, *quantity)
	case "inc", "dec", "set", "remove":
		id, parseErr := parseItemID(*itemID)
		if parseErr != nil {
			return parseErr
		}
		switch action {
		case "inc":
			current, err = a.cart.Increment(ctx, a.owner, id)
		case "dec":
			current, err = a.cart.Decrement(ctx, a.owner, id)
		case "set":
			current, err = a.cart.SetQuantity(ctx, a.owner, id, *quantity)
		default:
			current, err = a.cart.Remove(ctx, a.owner, id)
		}
	case "clear":
		if err := a.cart.Clear(ctx, a.owner); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "cart cleared")
		return nil
	case "reconcile":
		var adjustments []cart.Adjustment
		current, adjustments, err = a.cart.RefreshStock(ctx, a.owner)
		if err == nil {
			printAdjustments(a.out, adjustments)
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown cart action %q", action))
	}
	if err != nil {
		return err
	}
	printCart(a.out, current)
	return nil
}

func parseItemID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "-item is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "-item must be a cart item id")
	}
	return id, nil
}

func printCart(w io.Writer, c cart.Cart) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tSTOCK\tUNIT\tSUBTOTAL")
	for _, item := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			item.ID, item.ProductName, item.Quantity, item.ProductStock,
			item.UnitPrice.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d items, subtotal %s\n", c.ItemCount(), c.Subtotal().StringFixed(2))
}

func printAdjustments(w io.Writer, adjustments []cart.Adjustment) {
	if len(adjustments) == 0 {
		fmt.Fprintln(w, "stock unchanged")
		return
	}
	for _, adj := range adjustments {
		if adj.Removed {
			fmt.Fprintf(w, "%s is sold out and was removed\n", adj.ProductName)
			continue
		}
		fmt.Fprintf(w, "%s reduced from %d to %d\n", adj.ProductName, adj.From, adj.To)
	}
}

func runOptions(ctx context.Context, a *app, _ []string) error {
	opts, err := a.selections.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "addresses:")
	for _, addr := range opts.Addresses {
		marker := " "
		if addr.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(a.out, " %s %s  %s\n", marker, addr.ID, addresses.Format(addr))
	}
	fmt.Fprintln(a.out, "payment methods:")
	for _, m := range opts.PaymentMethods {
		fmt.Fprintf(a.out, "   %s  %s (%s)\n", m.ID, m.Name, m.Type)
	}
	return nil
}

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var form selection.Form
	fs.StringVar(&form.AddressID, "address-id", "", "stored shipping address id")
	fs.StringVar(&form.ManualAddress, "manual-address", "", "shipping address typed by hand")
	fs.StringVar(&form.PaymentMethodID, "payment-method-id", "", "payment method id")
	name := fs.String("name", "", "customer name sent with the payment link")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flags")
	}

	opener, err := handoff.New(a.cfg.Handoff.Mode, a.logg)
	if err != nil {
		return err
	}

	svc, err := checkout.NewService(checkout.ServiceParams{
		Orders:     a.backend,
		Cart:       a.cart,
		Selections: a.selections,
		Opener:     opener,
		Navigator:  consoleNavigator{out: a.out, name: programName},
		Notifier:   consoleNotifier{out: a.out},
		Source:     a.cfg.API.Source,
		Metrics:    a.metrics,
		Logger:     a.logg,
	})
	if err != nil {
		return err
	}

	outcome, err := svc.Submit(ctx, checkout.SubmitInput{
		Owner:        a.owner,
		Form:         form,
		CustomerName: *name,
	})
	return reportOutcome(a.out, outcome, err)
}

// reportOutcome prints the order line and payment link. A failed handoff
// still leaves a REDIRECTING order, so its link is printed before the
// error is passed on.
func reportOutcome(out io.Writer, outcome checkout.Outcome, err error) error {
	if err != nil && outcome.State != enums.CheckoutStateRedirecting {
		// Already shown through the notifier.
		return errReported{err: err}
	}
	fmt.Fprintf(out, "order #%d %s (%s)\n", outcome.OrderID, outcome.State, outcome.Branch)
	if outcome.PaymentURL != "" {
		fmt.Fprintf(out, "payment page: %s\n", outcome.PaymentURL)
	}
	if err != nil {
		return errReported{err: err}
	}
	return nil
}

func runResult(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("result", flag.ContinueOnError)
	fs.SetOutput(a.out)
	orderID := fs.Int64("order-id", 0, "order to check")
	detail := fs.Bool("detail", false, "print the full order on success")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flags")
	}

	view, err := a.results.Resolve(ctx, paymentresult.Params{OrderID: *orderID})
	if view.Kind != "" {
		printView(a.out, view)
	}
	if err != nil {
		return err
	}

	if *detail && view.Kind == enums.ResultViewSuccess {
		full, err := a.results.Detail(ctx, *orderID)
		if err != nil {
			return err
		}
		for _, line := range full.Items {
			fmt.Fprintf(a.out, "  %dx %s @ %s\n", line.Quantity, line.ProductName, line.UnitPrice.StringFixed(2))
		}
		fmt.Fprintf(a.out, "  ship to: %s\n", full.ShippingAddress)
	}
	return nil
}

func printView(w io.Writer, v paymentresult.View) {
	fmt.Fprintf(w, "%s: order #%d\n", v.Title, v.OrderID)
	if v.Amount != nil {
		fmt.Fprintf(w, "amount: %s\n", v.Amount.StringFixed(2))
	}
	if v.Message != "" {
		fmt.Fprintln(w, v.Message)
	}
	if v.CanRetry {
		fmt.Fprintf(w, "run `%s result -order-id %d` to try again\n", programName, v.OrderID)
	}
}

func runUpload(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(a.out)
	path := fs.String("file", "", "image to upload")
	if err := fs.Parse(args); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid flags")
	}
	if *path == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "-file is required")
	}

	uploader, err := media.NewUploader(a.cfg.Media, media.WithLogger(a.logg))
	if err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cannot open file")
	}
	defer f.Close()

	lastPct := int64(-1)
	uploaded, err := uploader.Upload(ctx, media.UploadInput{
		Filename: *path,
		Body:     f,
		Progress: func(sent, total int64) {
			if total <= 0 {
				return
			}
			pct := sent * 100 / total
			if pct/10 != lastPct/10 {
				lastPct = pct
				fmt.Fprintf(a.out, "uploading %d%%\n", pct)
			}
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "uploaded %s (%d bytes)\n", uploaded.URL, uploaded.Bytes)
	return nil
}

// errReported marks errors the notifier already printed.
type errReported struct {
	err error
}

func (e errReported) Error() string { return e.err.Error() }

func (e errReported) Unwrap() error { return e.err }
