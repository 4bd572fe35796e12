package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
	"strawbeary/internal/storefront"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the API rejected or failed the request
	ExitCommandError = 2 // bad flags, unreadable state, unknown dish
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, ExitFailure when it has none.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for --format json.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

type cartView struct {
	SessionID string            `json:"sessionId"`
	Items     []domain.CartLine `json:"items"`
	Count     int               `json:"count"`
	Total     decimal.Decimal   `json:"total"`
}

func newCartView(sessionID string, c storefront.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []domain.CartLine{}
	}
	return cartView{SessionID: sessionID, Items: items, Count: c.Count(), Total: c.Total()}
}

func (f *OutputFormatter) json(data interface{}) error {
	return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
}

func (f *OutputFormatter) Cart(v cartView) error {
	if f.Format == "json" {
		return f.json(v)
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(f.Writer, "Cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	for _, item := range v.Items {
		fmt.Fprintf(tw, "%d x\t%s\t@ %s\t= %s\n", item.Quantity, item.DishName, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "Items: %d  Total: %s\n", v.Count, v.Total.StringFixed(2))
	return nil
}

func (f *OutputFormatter) Menu(items []domain.MenuItem) error {
	if f.Format == "json" {
		return f.json(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(f.Writer, "Menu is empty")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Name, item.Price.StringFixed(2), item.Category)
	}
	return tw.Flush()
}

func (f *OutputFormatter) Order(o domain.Order) error {
	if f.Format == "json" {
		return f.json(o)
	}
	fmt.Fprintf(f.Writer, "Order %s placed (%s), total %s\n", o.ID, o.Status, o.Total.StringFixed(2))
	return nil
}

// AlreadyPlaced reports a checkout the server had committed on an earlier attempt.
func (f *OutputFormatter) AlreadyPlaced() error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "already_placed"})
	}
	fmt.Fprintln(f.Writer, "Order was already placed; cart cleared")
	return nil
}

func (f *OutputFormatter) Orders(orders []domain.Order) error {
	if f.Format == "json" {
		if orders == nil {
			orders = []domain.Order{}
		}
		return f.json(orders)
	}
	if len(orders) == 0 {
		fmt.Fprintln(f.Writer, "No orders yet")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d items\n", o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.Status, o.Total.StringFixed(2), domain.CountItems(o.Items))
	}
	return tw.Flush()
}
