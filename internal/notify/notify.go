// Package notify announces trading events to the operator. The long
// running `run` command wires the terminal notifier; headless use gets
// the no-op.
package notify

import (
	"ashare-trader/internal/models"
)

// Notifier receives trading events as they happen. Implementations must
// be safe for concurrent use; engines run their cycles in parallel.
type Notifier interface {
	TradeExecuted(model string, trade *models.TradeRecord)
	CycleSkipped(model, reason string)
	CycleFaulted(model string, err error)
	ValuationRecorded(model string, v models.Valuation)
}

// Nop discards every event.
type Nop struct{}

func (Nop) TradeExecuted(string, *models.TradeRecord)  {}
func (Nop) CycleSkipped(string, string)                {}
func (Nop) CycleFaulted(string, error)                 {}
func (Nop) ValuationRecorded(string, models.Valuation) {}
