package trading

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ashare-trader/internal/ai"
	"ashare-trader/internal/config"
	"ashare-trader/internal/errors"
	"ashare-trader/internal/models"
	"ashare-trader/internal/store"
)

// CycleState names the orchestrator's position in one cycle.
type CycleState string

const (
	StateIdle        CycleState = "IDLE"
	StateFetching    CycleState = "FETCHING_SNAPSHOTS"
	StateClassifying CycleState = "CLASSIFYING"
	StateSizing      CycleState = "SIZING"
	StateExecuting   CycleState = "EXECUTING"
	StateRecording   CycleState = "RECORDING"
	StateFaulted     CycleState = "FAULTED"
)

// SnapshotService supplies per-cycle snapshots; satisfied by
// market.Service and by test fakes.
type SnapshotService interface {
	Snapshots(ctx context.Context, symbols []string) (map[string]models.Snapshot, error)
}

// SymbolResult is the outcome for one symbol in one cycle. A failure
// here never aborts the rest of the cycle.
type SymbolResult struct {
	Symbol  string
	Action  string
	Trade   *models.TradeRecord
	Message string
	Err     error
}

// CycleResult summarizes one full pass over the universe.
type CycleResult struct {
	ModelID   int64
	StartedAt time.Time
	Duration  time.Duration
	Skipped   bool
	Reason    string
	Results   []SymbolResult
	Valuation *models.Valuation
}

// Trades returns the executed trades of the cycle.
func (r *CycleResult) Trades() []*models.TradeRecord {
	var out []*models.TradeRecord
	for _, res := range r.Results {
		if res.Trade != nil {
			out = append(out, res.Trade)
		}
	}
	return out
}

// Engine runs the trading cycle for one model: fetch, decide, execute,
// record. An engine serializes against itself; concurrent RunCycle
// calls for the same model queue rather than interleave.
type Engine struct {
	modelID   int64
	modelName string
	cfg       *config.Config
	source    ai.DecisionSource
	snapshots SnapshotService
	ledger    store.Ledger
	sizer     *Sizer
	fees      *FeeCalculator
	lock      *SessionLock
	guard     *LimitGuard
	logger    zerolog.Logger

	mu sync.Mutex // serializes cycles

	stateMu sync.Mutex
	state   CycleState
}

// NewEngine wires an engine for one model.
func NewEngine(modelID int64, modelName string, cfg *config.Config, source ai.DecisionSource,
	snapshots SnapshotService, ledger store.Ledger, logger zerolog.Logger) *Engine {
	return &Engine{
		modelID:   modelID,
		modelName: modelName,
		cfg:       cfg,
		source:    source,
		snapshots: snapshots,
		ledger:    ledger,
		sizer:     NewSizer(cfg.Fees.LotSize, cfg.Risk.PositionLimitPct),
		fees:      NewFeeCalculator(cfg.Fees),
		lock:      NewSessionLock(),
		guard:     NewLimitGuard(cfg),
		logger:    logger.With().Int64("model_id", modelID).Str("model", modelName).Logger(),
		state:     StateIdle,
	}
}

// ModelID returns the engine's model id.
func (e *Engine) ModelID() int64 { return e.modelID }

// ModelName returns the engine's persona name.
func (e *Engine) ModelName() string { return e.modelName }

// State returns the current cycle state. Readable while a cycle is
// running; it does not wait for the cycle mutex.
func (e *Engine) State() CycleState {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

func (e *Engine) setState(s CycleState) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

// RunCycle executes one full pass over the symbol universe. A cycle
// that cannot fetch any snapshots is skipped without error; a ledger
// fault ends the cycle with a CycleError. Trades already committed
// stay committed whatever happens later in the cycle.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	result := &CycleResult{ModelID: e.modelID, StartedAt: started}

	e.setState(StateFetching)
	defer e.setState(StateIdle)

	snaps, err := e.snapshots.Snapshots(ctx, e.cfg.Trading.Symbols)
	if err != nil {
		e.logger.Warn().Err(err).Msg("Snapshot fetch failed, skipping cycle")
		result.Skipped = true
		result.Reason = fmt.Sprintf("snapshot fetch failed: %v", err)
		result.Duration = time.Since(started)
		return result, nil
	}

	prices := make(map[string]float64, len(snaps))
	for sym, snap := range snaps {
		if snap.Price > 0 && !math.IsNaN(snap.Price) {
			prices[sym] = snap.Price
		}
	}
	if len(prices) == 0 {
		result.Skipped = true
		result.Reason = "no usable quotes"
		result.Duration = time.Since(started)
		return result, nil
	}

	portfolio, err := e.ledger.Portfolio(ctx, e.modelID, prices)
	if err != nil {
		e.setState(StateFaulted)
		return nil, errors.NewCycleError(e.modelID, string(StateFetching), err)
	}

	e.setState(StateClassifying)
	view := ai.View{
		Symbols:   e.cfg.Trading.Symbols,
		Snapshots: snaps,
		Portfolio: portfolio,
		Timestamp: started,
	}
	decisions, err := e.source.Decide(ctx, view)
	if err != nil {
		e.setState(StateFaulted)
		return nil, errors.NewCycleError(e.modelID, string(StateClassifying), err)
	}

	e.setState(StateExecuting)
	cash := portfolio.Cash
	for _, symbol := range e.cfg.Trading.Symbols {
		// Shutdown abandons the cycle between symbols; committed
		// trades stand.
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(started)
			return result, errors.NewCycleError(e.modelID, string(StateExecuting), err)
		}

		decision, ok := decisions[symbol]
		if !ok || decision.Action == models.DecisionActionHold {
			result.Results = append(result.Results, SymbolResult{Symbol: symbol, Action: models.DecisionActionHold})
			continue
		}

		res := e.executeDecision(ctx, symbol, decision, snaps[symbol], portfolio, &cash)
		if res.Err != nil {
			e.logger.Debug().Str("symbol", symbol).Err(res.Err).Msg("Order not executed")
		}
		result.Results = append(result.Results, res)
	}

	e.setState(StateRecording)
	updated, err := e.ledger.Portfolio(ctx, e.modelID, prices)
	if err != nil {
		e.setState(StateFaulted)
		return result, errors.NewCycleError(e.modelID, string(StateRecording), err)
	}
	valuation := models.Valuation{
		ModelID:        e.modelID,
		TotalValue:     updated.TotalValue,
		Cash:           updated.Cash,
		PositionsValue: updated.PositionsValue,
		RealizedPnL:    updated.RealizedPnL,
		UnrealizedPnL:  updated.UnrealizedPnL,
		Timestamp:      time.Now(),
	}
	if err := e.ledger.RecordValuation(ctx, valuation); err != nil {
		e.setState(StateFaulted)
		return result, errors.NewCycleError(e.modelID, string(StateRecording), err)
	}
	result.Valuation = &valuation
	result.Duration = time.Since(started)

	e.logger.Info().
		Int("orders", len(result.Trades())).
		Float64("total_value", valuation.TotalValue).
		Dur("duration", result.Duration).
		Msg("Cycle complete")
	return result, nil
}

// executeDecision applies the settlement guards and executes one buy
// or sell. cash tracks remaining spendable funds across the pass.
func (e *Engine) executeDecision(ctx context.Context, symbol string, decision models.Decision,
	snap models.Snapshot, portfolio *models.Portfolio, cash *float64) SymbolResult {

	if snap.Price <= 0 || math.IsNaN(snap.Price) {
		return SymbolResult{Symbol: symbol, Action: decision.Action,
			Err: errors.NewOrderError(symbol, decision.Action, "no usable quote", errors.ErrInvalidPrice)}
	}

	switch decision.Action {
	case models.DecisionActionBuy:
		return e.executeBuy(ctx, symbol, decision, snap, portfolio, cash)
	case models.DecisionActionSell:
		return e.executeSell(ctx, symbol, decision, snap, portfolio, cash)
	default:
		return SymbolResult{Symbol: symbol, Action: models.DecisionActionHold}
	}
}

func (e *Engine) executeBuy(ctx context.Context, symbol string, decision models.Decision,
	snap models.Snapshot, portfolio *models.Portfolio, cash *float64) SymbolResult {

	res := SymbolResult{Symbol: symbol, Action: models.DecisionActionBuy}

	if err := e.guard.Check(symbol, snap.ChangePct); err != nil {
		res.Err = err
		return res
	}

	// Decisions arrive pre-sized but are re-clamped here; the engine
	// owns the hard rules, not the decision source.
	qty := decision.Quantity / e.cfg.Fees.LotSize * e.cfg.Fees.LotSize
	if qty < e.cfg.Fees.LotSize {
		res.Err = errors.NewOrderError(symbol, "BUY", "quantity below one lot", errors.ErrInvalidQuantity)
		return res
	}

	order := models.Order{
		Symbol:     symbol,
		Side:       models.OrderSideBuy,
		Quantity:   qty,
		Price:      snap.Price,
		TakeProfit: decision.ProfitTarget,
		StopLoss:   decision.StopLoss,
		Signal:     decision.Signal,
		Rationale:  decision.Rationale,
	}

	commission := e.fees.Commission(order.Notional())
	totalCost := order.Notional() + commission
	if totalCost > *cash {
		res.Err = errors.NewOrderError(symbol, "BUY",
			fmt.Sprintf("need %.2f, have %.2f", totalCost, *cash), errors.ErrInsufficientFunds)
		return res
	}

	newQty := order.Quantity
	newAvg := order.Price
	if pos := portfolio.Position(symbol); pos != nil {
		// Average up into the existing lot.
		newQty = pos.Quantity + order.Quantity
		newAvg = (float64(pos.Quantity)*pos.AvgCost + order.Notional()) / float64(newQty)
	}

	if err := e.ledger.UpsertPosition(ctx, e.modelID, symbol, newQty, newAvg); err != nil {
		res.Err = err
		return res
	}

	trade := &models.TradeRecord{
		ModelID:    e.modelID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Quantity:   order.Quantity,
		Price:      order.Price,
		Commission: commission,
		Signal:     order.Signal,
		Timestamp:  time.Now(),
	}
	if err := e.ledger.RecordTrade(ctx, trade); err != nil {
		res.Err = err
		return res
	}

	e.lock.MarkBought(symbol)
	*cash -= totalCost
	res.Trade = trade
	res.Message = fmt.Sprintf("bought %d @ ¥%.2f (fee ¥%.2f)", order.Quantity, order.Price, commission)

	e.logger.Info().
		Str("symbol", symbol).
		Int("quantity", order.Quantity).
		Float64("price", order.Price).
		Float64("commission", commission).
		Float64("take_profit", order.TakeProfit).
		Float64("stop_loss", order.StopLoss).
		Str("signal", string(order.Signal)).
		Msg("Buy executed")
	return res
}

func (e *Engine) executeSell(ctx context.Context, symbol string, decision models.Decision,
	snap models.Snapshot, portfolio *models.Portfolio, cash *float64) SymbolResult {

	res := SymbolResult{Symbol: symbol, Action: models.DecisionActionSell}

	pos := portfolio.Position(symbol)
	if pos == nil {
		res.Err = errors.NewOrderError(symbol, "SELL", "nothing held", errors.ErrNoPosition)
		return res
	}

	// T+1: today's buys are untouchable, whatever the signal says.
	// The held-since date catches buys made before a process restart.
	if !e.lock.Sellable(symbol, pos.HeldSince) {
		res.Action = models.DecisionActionHold
		res.Message = "settlement locked, held"
		res.Err = errors.NewOrderError(symbol, "SELL", "bought this session", errors.ErrSettlementLocked)
		return res
	}

	if err := e.guard.Check(symbol, snap.ChangePct); err != nil {
		res.Err = err
		return res
	}

	qty, err := e.sizer.SizeSell(decision.Quantity, pos.Quantity)
	if err != nil {
		res.Err = errors.NewOrderError(symbol, "SELL", "sizing failed", err)
		return res
	}

	order := models.Order{
		Symbol:    symbol,
		Side:      models.OrderSideSell,
		Quantity:  qty,
		Price:     snap.Price,
		Signal:    decision.Signal,
		Rationale: decision.Rationale,
	}

	commission, levy, netProceeds := e.fees.SellProceeds(order.Price, order.Quantity)
	netPnL := order.Notional() - float64(order.Quantity)*pos.AvgCost - commission - levy

	if qty >= pos.Quantity {
		if err := e.ledger.ClosePosition(ctx, e.modelID, symbol); err != nil {
			res.Err = err
			return res
		}
	} else {
		if err := e.ledger.UpsertPosition(ctx, e.modelID, symbol, pos.Quantity-qty, pos.AvgCost); err != nil {
			res.Err = err
			return res
		}
	}

	trade := &models.TradeRecord{
		ModelID:     e.modelID,
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Price:       order.Price,
		Commission:  commission,
		Levy:        levy,
		RealizedPnL: netPnL,
		Signal:      order.Signal,
		Timestamp:   time.Now(),
	}
	if err := e.ledger.RecordTrade(ctx, trade); err != nil {
		res.Err = err
		return res
	}

	*cash += netProceeds
	res.Trade = trade
	res.Message = fmt.Sprintf("sold %d @ ¥%.2f (fees ¥%.2f, pnl ¥%.2f)", qty, snap.Price, commission+levy, netPnL)

	e.logger.Info().
		Str("symbol", symbol).
		Int("quantity", qty).
		Float64("price", snap.Price).
		Float64("fees", commission+levy).
		Float64("net_pnl", netPnL).
		Str("signal", string(decision.Signal)).
		Msg("Sell executed")
	return res
}
