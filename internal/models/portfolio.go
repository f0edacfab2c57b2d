package models

import "time"

// Position represents a held lot of one symbol. A position with zero
// quantity never exists; closing deletes the row.
type Position struct {
	ModelID      int64
	Symbol       string
	Quantity     int
	AvgCost      float64
	HeldSince    time.Time
	CurrentPrice float64 // filled in at valuation time, NaN when unquoted
	PnL          float64 // unrealized, at CurrentPrice
}

// Valuation is a per-cycle snapshot of an account's worth.
type Valuation struct {
	ModelID        int64
	TotalValue     float64
	Cash           float64
	PositionsValue float64 // at entry cost, not market value
	RealizedPnL    float64
	UnrealizedPnL  float64
	Timestamp      time.Time
}

// Portfolio is the full account view the engine trades against:
// positions plus the reconciled cash and value figures.
type Portfolio struct {
	ModelID        int64
	InitialCapital float64
	Cash           float64
	Positions      []Position
	PositionsValue float64
	TotalValue     float64
	RealizedPnL    float64
	UnrealizedPnL  float64
}

// Position returns the held position for a symbol, or nil.
func (p *Portfolio) Position(symbol string) *Position {
	for i := range p.Positions {
		if p.Positions[i].Symbol == symbol {
			return &p.Positions[i]
		}
	}
	return nil
}

// TotalReturnPct returns the account's return versus initial capital.
func (p *Portfolio) TotalReturnPct() float64 {
	if p.InitialCapital <= 0 {
		return 0
	}
	return (p.TotalValue - p.InitialCapital) / p.InitialCapital * 100
}
