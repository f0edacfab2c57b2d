package models

import "time"

// Order is an ephemeral instruction produced by one cycle. Buy
// quantities are positive multiples of the lot size; a sell quantity may
// be a sub-lot remainder only when it liquidates the whole holding.
type Order struct {
	Symbol     string
	Side       OrderSide
	Quantity   int
	Price      float64
	TakeProfit float64 // advisory target, per signal class
	StopLoss   float64 // advisory stop, per signal class
	Signal     Signal
	Rationale  string
}

// Notional returns the order's cash value before fees.
func (o Order) Notional() float64 {
	return o.Price * float64(o.Quantity)
}

// TradeRecord is an executed trade as persisted by the ledger.
// Append-only; never mutated after creation.
type TradeRecord struct {
	ID          int64
	ModelID     int64
	Symbol      string
	Side        OrderSide
	Quantity    int
	Price       float64
	Commission  float64
	Levy        float64 // transfer stamp duty, sells only
	RealizedPnL float64 // net of fees, sells only
	Signal      Signal
	Timestamp   time.Time
}

// TotalFees returns commission plus levy.
func (t TradeRecord) TotalFees() float64 {
	return t.Commission + t.Levy
}
