package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"ashare-trader/internal/models"
)

// Terminal prints trading events to a writer, one line per event,
// colored when the writer supports it.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	buyColor   *color.Color
	sellColor  *color.Color
	faultColor *color.Color
	dimColor   *color.Color
}

// NewTerminal creates a terminal notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:        out,
		buyColor:   color.New(color.FgGreen),
		sellColor:  color.New(color.FgRed),
		faultColor: color.New(color.FgRed, color.Bold),
		dimColor:   color.New(color.Faint),
	}
}

func (t *Terminal) TradeExecuted(model string, trade *models.TradeRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.buyColor
	if trade.Side == models.OrderSideSell {
		c = t.sellColor
	}
	line := fmt.Sprintf("%s [%s] %s %s %d @ ¥%.2f",
		time.Now().Format("15:04:05"), model, trade.Side, trade.Symbol, trade.Quantity, trade.Price)
	if trade.Side == models.OrderSideSell {
		line += fmt.Sprintf("  pnl ¥%.2f", trade.RealizedPnL)
	}
	fmt.Fprintln(t.out, c.Sprint(line))
}

func (t *Terminal) CycleSkipped(model, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.dimColor.Sprintf("%s [%s] cycle skipped: %s",
		time.Now().Format("15:04:05"), model, reason))
}

func (t *Terminal) CycleFaulted(model string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.faultColor.Sprintf("%s [%s] cycle faulted: %v",
		time.Now().Format("15:04:05"), model, err))
}

func (t *Terminal) ValuationRecorded(model string, v models.Valuation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.dimColor.Sprintf("%s [%s] total ¥%.2f  cash ¥%.2f  unrealized ¥%.2f",
		time.Now().Format("15:04:05"), model, v.TotalValue, v.Cash, v.UnrealizedPnL))
}
