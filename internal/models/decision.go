package models

// Decision is one symbol's entry in a decision source's output. The
// rule engine and the LLM fallback both produce this shape.
type Decision struct {
	Symbol       string  `json:"-"`
	Action       string  `json:"signal"` // buy, sell, hold
	Quantity     int     `json:"quantity"`
	ProfitTarget float64 `json:"profit_target"`
	StopLoss     float64 `json:"stop_loss"`
	Confidence   float64 `json:"confidence"` // [0,1]
	Rationale    string  `json:"justification"`
	Signal       Signal  `json:"-"` // set by the rule source, hold otherwise
}

// DecisionActionBuy and friends are the wire values of Decision.Action.
const (
	DecisionActionBuy  = "buy"
	DecisionActionSell = "sell"
	DecisionActionHold = "hold"
)
