// Package store persists models, positions, trades and account
// valuations in a local sqlite ledger.
package store

import (
	"context"
	"time"

	"ashare-trader/internal/models"
)

// ModelInfo is one trading persona row.
type ModelInfo struct {
	ID             int64
	Name           string
	InitialCapital float64
	CreatedAt      time.Time
}

// Conversation is one recorded decision exchange with the LLM.
type Conversation struct {
	ID        int64
	ModelID   int64
	Prompt    string
	Response  string
	Timestamp time.Time
}

// Ledger is the persistence contract the engine trades against.
// Every call is transactional on its own; no transaction spans
// multiple calls.
type Ledger interface {
	// EnsureModel returns the id of the named model, creating the row
	// with the given capital when absent.
	EnsureModel(ctx context.Context, name string, initialCapital float64) (int64, error)
	Model(ctx context.Context, id int64) (*ModelInfo, error)
	Models(ctx context.Context) ([]ModelInfo, error)

	// UpsertPosition sets the absolute quantity and average cost for a
	// symbol. Closing is explicit via ClosePosition, never qty 0.
	UpsertPosition(ctx context.Context, modelID int64, symbol string, quantity int, avgCost float64) error
	ClosePosition(ctx context.Context, modelID int64, symbol string) error
	Positions(ctx context.Context, modelID int64) ([]models.Position, error)

	RecordTrade(ctx context.Context, trade *models.TradeRecord) error
	Trades(ctx context.Context, modelID int64, limit int) ([]models.TradeRecord, error)

	RecordConversation(ctx context.Context, modelID int64, prompt, response string) error
	Conversations(ctx context.Context, modelID int64, limit int) ([]Conversation, error)

	RecordValuation(ctx context.Context, v models.Valuation) error
	Valuations(ctx context.Context, modelID int64, limit int) ([]models.Valuation, error)

	// Portfolio reconstructs the account view from the ledger rows,
	// marking positions to the supplied prices when present.
	Portfolio(ctx context.Context, modelID int64, currentPrices map[string]float64) (*models.Portfolio, error)

	Close() error
}
