// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoPosition          = errors.New("no position held")
	ErrSettlementLocked    = errors.New("settlement locked: bought this session")
	ErrPriceLimitReached   = errors.New("daily price limit reached")
	ErrSupplierUnavailable = errors.New("quote supplier unavailable")
	ErrDecisionUnparseable = errors.New("decision response unparseable")
	ErrModelNotFound       = errors.New("trading model not found")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
	ErrCycleSkipped        = errors.New("cycle skipped: no market data")
	ErrTimeout             = errors.New("operation timed out")
)

// OrderError represents a rejected or failed order.
type OrderError struct {
	Symbol string
	Side   string
	Reason string
	Err    error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order error %s %s: %s: %v", e.Side, e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("order error %s %s: %s", e.Side, e.Symbol, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError.
func NewOrderError(symbol, side, reason string, err error) *OrderError {
	return &OrderError{
		Symbol: symbol,
		Side:   side,
		Reason: reason,
		Err:    err,
	}
}

// DataError represents a market-data failure for one symbol.
type DataError struct {
	Source  string
	Symbol  string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Source, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Source, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(source, symbol, message string, err error) *DataError {
	return &DataError{
		Source:  source,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// AgentError represents an error from the LLM decision source.
type AgentError struct {
	Provider  string
	Operation string
	Err       error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent error [%s] %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(provider, operation string, err error) *AgentError {
	return &AgentError{
		Provider:  provider,
		Operation: operation,
		Err:       err,
	}
}

// CycleError represents a cycle-level fault, as opposed to a per-symbol
// failure, which is recorded in the symbol's result and does not abort
// the cycle.
type CycleError struct {
	ModelID int64
	State   string
	Err     error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle fault [model %d] during %s: %v", e.ModelID, e.State, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// NewCycleError creates a new CycleError.
func NewCycleError(modelID int64, state string, err error) *CycleError {
	return &CycleError{
		ModelID: modelID,
		State:   state,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
