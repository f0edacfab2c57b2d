package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ashare-trader/internal/errors"
	"ashare-trader/internal/models"
)

// SQLiteLedger implements Ledger over a local sqlite database.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (and migrates) the ledger at dbPath.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	// sqlite serializes writers; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)

	l := &SQLiteLedger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating ledger: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS engines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		initial_capital REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		avg_cost REAL NOT NULL,
		held_since TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (model_id) REFERENCES engines(id),
		UNIQUE(model_id, symbol)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		commission REAL NOT NULL DEFAULT 0,
		levy REAL NOT NULL DEFAULT 0,
		pnl REAL NOT NULL DEFAULT 0,
		signal TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (model_id) REFERENCES engines(id)
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_id INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (model_id) REFERENCES engines(id)
	);

	CREATE TABLE IF NOT EXISTS account_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_id INTEGER NOT NULL,
		total_value REAL NOT NULL,
		cash REAL NOT NULL,
		positions_value REAL NOT NULL,
		realized_pnl REAL NOT NULL DEFAULT 0,
		unrealized_pnl REAL NOT NULL DEFAULT 0,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (model_id) REFERENCES engines(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_model ON trades(model_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_values_model ON account_values(model_id, timestamp);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func (l *SQLiteLedger) EnsureModel(ctx context.Context, name string, initialCapital float64) (int64, error) {
	var id int64
	err := l.db.QueryRowContext(ctx, `SELECT id FROM engines WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errors.Wrap(err, "querying model")
	}

	res, err := l.db.ExecContext(ctx,
		`INSERT INTO engines (name, initial_capital) VALUES (?, ?)`, name, initialCapital)
	if err != nil {
		return 0, errors.Wrap(err, "creating model")
	}
	return res.LastInsertId()
}

func (l *SQLiteLedger) Model(ctx context.Context, id int64) (*ModelInfo, error) {
	var m ModelInfo
	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, initial_capital, created_at FROM engines WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.InitialCapital, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrModelNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying model")
	}
	return &m, nil
}

func (l *SQLiteLedger) Models(ctx context.Context) ([]ModelInfo, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, initial_capital, created_at FROM engines ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing models")
	}
	defer rows.Close()

	var out []ModelInfo
	for rows.Next() {
		var m ModelInfo
		if err := rows.Scan(&m.ID, &m.Name, &m.InitialCapital, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning model")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) UpsertPosition(ctx context.Context, modelID int64, symbol string, quantity int, avgCost float64) error {
	if quantity <= 0 {
		return errors.ErrInvalidQuantity
	}
	// A growing quantity is an acquisition and restamps held_since,
	// which re-arms the T+1 lock; a partial sell leaves it alone.
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO positions (model_id, symbol, quantity, avg_cost, held_since, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(model_id, symbol) DO UPDATE SET
			held_since = CASE WHEN excluded.quantity > positions.quantity
				THEN CURRENT_TIMESTAMP ELSE positions.held_since END,
			quantity = excluded.quantity,
			avg_cost = excluded.avg_cost,
			updated_at = CURRENT_TIMESTAMP`,
		modelID, symbol, quantity, avgCost)
	if err != nil {
		return errors.Wrap(err, "upserting position")
	}
	return nil
}

func (l *SQLiteLedger) ClosePosition(ctx context.Context, modelID int64, symbol string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM positions WHERE model_id = ? AND symbol = ?`, modelID, symbol)
	if err != nil {
		return errors.Wrap(err, "closing position")
	}
	return nil
}

func (l *SQLiteLedger) Positions(ctx context.Context, modelID int64) ([]models.Position, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT model_id, symbol, quantity, avg_cost, held_since
		FROM positions WHERE model_id = ? AND quantity > 0 ORDER BY symbol`, modelID)
	if err != nil {
		return nil, errors.Wrap(err, "listing positions")
	}
	defer rows.Close()

	var out []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ModelID, &p.Symbol, &p.Quantity, &p.AvgCost, &p.HeldSince); err != nil {
			return nil, errors.Wrap(err, "scanning position")
		}
		p.CurrentPrice = math.NaN()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	if trade.Timestamp.IsZero() {
		trade.Timestamp = time.Now()
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO trades (model_id, symbol, side, quantity, price, commission, levy, pnl, signal, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ModelID, trade.Symbol, string(trade.Side), trade.Quantity, trade.Price,
		trade.Commission, trade.Levy, trade.RealizedPnL, string(trade.Signal), trade.Timestamp)
	if err != nil {
		return errors.Wrap(err, "recording trade")
	}
	trade.ID, _ = res.LastInsertId()
	return nil
}

func (l *SQLiteLedger) Trades(ctx context.Context, modelID int64, limit int) ([]models.TradeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, model_id, symbol, side, quantity, price, commission, levy, pnl, signal, timestamp
		FROM trades WHERE model_id = ? ORDER BY timestamp DESC LIMIT ?`, modelID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing trades")
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var side, signal string
		if err := rows.Scan(&t.ID, &t.ModelID, &t.Symbol, &side, &t.Quantity, &t.Price,
			&t.Commission, &t.Levy, &t.RealizedPnL, &signal, &t.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scanning trade")
		}
		t.Side = models.OrderSide(side)
		t.Signal = models.Signal(signal)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) RecordConversation(ctx context.Context, modelID int64, prompt, response string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO conversations (model_id, prompt, response) VALUES (?, ?, ?)`,
		modelID, prompt, response)
	if err != nil {
		return errors.Wrap(err, "recording conversation")
	}
	return nil
}

func (l *SQLiteLedger) Conversations(ctx context.Context, modelID int64, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, model_id, prompt, response, timestamp
		FROM conversations WHERE model_id = ? ORDER BY timestamp DESC LIMIT ?`, modelID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing conversations")
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.ModelID, &c.Prompt, &c.Response, &c.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scanning conversation")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) RecordValuation(ctx context.Context, v models.Valuation) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO account_values (model_id, total_value, cash, positions_value, realized_pnl, unrealized_pnl, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ModelID, v.TotalValue, v.Cash, v.PositionsValue, v.RealizedPnL, v.UnrealizedPnL, v.Timestamp)
	if err != nil {
		return errors.Wrap(err, "recording valuation")
	}
	return nil
}

func (l *SQLiteLedger) Valuations(ctx context.Context, modelID int64, limit int) ([]models.Valuation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT model_id, total_value, cash, positions_value, realized_pnl, unrealized_pnl, timestamp
		FROM account_values WHERE model_id = ? ORDER BY timestamp DESC LIMIT ?`, modelID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing valuations")
	}
	defer rows.Close()

	var out []models.Valuation
	for rows.Next() {
		var v models.Valuation
		if err := rows.Scan(&v.ModelID, &v.TotalValue, &v.Cash, &v.PositionsValue,
			&v.RealizedPnL, &v.UnrealizedPnL, &v.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scanning valuation")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Portfolio reconstructs the account from first principles so that a
// crash between writes can never leave a drifting cash figure:
//
//	cash  = initial + realized pnl - buy fees - capital committed to open positions
//	value = initial + realized pnl - buy fees + unrealized pnl
//
// Positions are valued at entry cost; unrealized pnl comes from the
// supplied prices, with unquoted symbols contributing zero.
func (l *SQLiteLedger) Portfolio(ctx context.Context, modelID int64, currentPrices map[string]float64) (*models.Portfolio, error) {
	info, err := l.Model(ctx, modelID)
	if err != nil {
		return nil, err
	}

	positions, err := l.Positions(ctx, modelID)
	if err != nil {
		return nil, err
	}

	var realized, buyFees float64
	err = l.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(pnl), 0),
		       COALESCE(SUM(CASE WHEN side = 'BUY' THEN commission + levy ELSE 0 END), 0)
		FROM trades WHERE model_id = ?`, modelID).Scan(&realized, &buyFees)
	if err != nil {
		return nil, errors.Wrap(err, "summing realized pnl")
	}

	var committed, unrealized float64
	for i := range positions {
		p := &positions[i]
		committed += float64(p.Quantity) * p.AvgCost
		if price, ok := currentPrices[p.Symbol]; ok && price > 0 {
			p.CurrentPrice = price
			p.PnL = (price - p.AvgCost) * float64(p.Quantity)
			unrealized += p.PnL
		}
	}

	return &models.Portfolio{
		ModelID:        modelID,
		InitialCapital: info.InitialCapital,
		Cash:           info.InitialCapital + realized - buyFees - committed,
		Positions:      positions,
		PositionsValue: committed,
		TotalValue:     info.InitialCapital + realized - buyFees + unrealized,
		RealizedPnL:    realized,
		UnrealizedPnL:  unrealized,
	}, nil
}
