package notify

// Console implements ports.Notifier: a compact one-liner by default, full
// tables (fills, performance, final positions) with -table.

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/botsim/internal/application/engine"
	"github.com/alejandrodnm/botsim/internal/application/perf"
	"github.com/alejandrodnm/botsim/internal/domain"
)

// Console writes run reports to a writer.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole creates a notifier that writes to stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter creates a notifier for tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify prints the report in the configured mode.
func (c *Console) Notify(_ context.Context, result domain.RunResult) error {
	if c.table {
		c.printFull(result)
	} else {
		c.printCompact(result)
	}
	return nil
}

// printCompact prints the essentials in one line.
func (c *Console) printCompact(r domain.RunResult) {
	fmt.Fprintf(c.out, "[%s] %s %v ticks:%d fills:%d equity:$%.2f → $%.2f (%+.2f%%)\n",
		time.Now().Format("15:04:05"), r.Strategy, r.Symbols, r.Ticks, len(r.Fills),
		r.InitialCash, r.FinalEquity, r.TotalReturn()*100)
}

// printFull prints the fill log, the performance report, and final order
// states.
func (c *Console) printFull(r domain.RunResult) {
	fmt.Fprintf(c.out, "\n=== %s — %v — %s → %s ===\n",
		r.Strategy, r.Symbols,
		r.StartedAt.Format("2006-01-02 15:04"), r.FinishedAt.Format("2006-01-02 15:04"))

	c.printFills(r)
	c.printPerf(r)
	c.printOrders(r)
}

func (c *Console) printFills(r domain.RunResult) {
	if len(r.Fills) == 0 {
		fmt.Fprintln(c.out, "\n  No fills.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Order", "Symbol", "Side", "Qty", "Price", "Fee", "Time")

	for i, f := range r.Fills {
		table.Append(
			fmt.Sprintf("%d", i+1),
			engine.TruncateStr(f.OrderID, 16),
			f.Symbol,
			string(f.Side),
			fmt.Sprintf("%.2f", f.Quantity),
			fmt.Sprintf("%.4f", f.Price),
			fmt.Sprintf("%.4f", f.Fee),
			f.Timestamp.Format("01-02 15:04:05"),
		)
	}
	table.Render()
}

func (c *Console) printPerf(r domain.RunResult) {
	report, err := perf.Compute(r, 0)
	if err != nil {
		fmt.Fprintf(c.out, "\n  No performance report: %v\n", err)
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Return", "MaxDD", "Sharpe", "WinRate", "RoundTrips", "Realized", "Fees")
	table.Append(
		fmt.Sprintf("%+.2f%%", report.TotalReturn*100),
		fmt.Sprintf("%.2f%%", report.MaxDrawdown*100),
		fmt.Sprintf("%.3f", report.Sharpe),
		fmt.Sprintf("%.0f%%", report.WinRate*100),
		fmt.Sprintf("%d", report.RoundTrips),
		fmt.Sprintf("$%.2f", report.RealizedPnL),
		fmt.Sprintf("$%.2f", report.FeesPaid),
	)
	table.Render()
}

func (c *Console) printOrders(r domain.RunResult) {
	if len(r.Orders) == 0 {
		return
	}

	counts := make(map[domain.OrderStatus]int)
	for _, o := range r.Orders {
		counts[o.Status]++
	}

	statuses := make([]string, 0, len(counts))
	for st := range counts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)

	fmt.Fprintf(c.out, "  orders: %d (", len(r.Orders))
	for i, st := range statuses {
		if i > 0 {
			fmt.Fprint(c.out, ", ")
		}
		fmt.Fprintf(c.out, "%s:%d", st, counts[domain.OrderStatus(st)])
	}
	fmt.Fprintln(c.out, ")")
}
