package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists bets in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bets (
		id TEXT PRIMARY KEY,
		game_id TEXT NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		bet_type TEXT NOT NULL,
		line REAL NOT NULL,
		projected_total REAL NOT NULL DEFAULT 0,
		edge REAL NOT NULL DEFAULT 0,
		odds REAL NOT NULL,
		amount REAL NOT NULL,
		payout REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		placed_at TEXT NOT NULL,
		settled_at TEXT,
		actual_total INTEGER,
		net_profit REAL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_bets_game ON bets(game_id);
	CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

const selectBets = `
	SELECT id, game_id, home_team, away_team, bet_type, line, projected_total, edge,
		odds, amount, payout, status, placed_at, settled_at, actual_total, net_profit, notes
	FROM bets`

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, bet PlacedBet) error {
	var settledAt sql.NullString
	if bet.SettledAt != nil {
		settledAt = sql.NullString{String: bet.SettledAt.UTC().Format(timeLayout), Valid: true}
	}
	var actual sql.NullInt64
	if bet.ActualTotal != nil {
		actual = sql.NullInt64{Int64: int64(*bet.ActualTotal), Valid: true}
	}
	var profit sql.NullFloat64
	if bet.NetProfit != nil {
		profit = sql.NullFloat64{Float64: *bet.NetProfit, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bets (id, game_id, home_team, away_team, bet_type, line, projected_total, edge,
			odds, amount, payout, status, placed_at, settled_at, actual_total, net_profit, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bet.ID, bet.GameID, bet.HomeTeam, bet.AwayTeam, string(bet.BetType), bet.Line, bet.ProjectedTotal, bet.Edge,
		bet.Odds, bet.Amount, bet.Payout, string(bet.Status), bet.PlacedAt.UTC().Format(timeLayout),
		settledAt, actual, profit, bet.Notes)
	if err != nil {
		return fmt.Errorf("saving bet %s: %w", bet.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (PlacedBet, bool, error) {
	row := s.db.QueryRowContext(ctx, selectBets+` WHERE id = ?`, id)
	bet, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PlacedBet{}, false, nil
	}
	if err != nil {
		return PlacedBet{}, false, fmt.Errorf("scanning bet: %w", err)
	}
	return bet, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]PlacedBet, error) {
	rows, err := s.db.QueryContext(ctx, selectBets+` ORDER BY placed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying bets: %w", err)
	}
	defer rows.Close()

	bets := make([]PlacedBet, 0)
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bet row: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(row scanner) (PlacedBet, error) {
	var (
		bet       PlacedBet
		betType   string
		status    string
		placedAt  string
		settledAt sql.NullString
		actual    sql.NullInt64
		profit    sql.NullFloat64
	)
	if err := row.Scan(&bet.ID, &bet.GameID, &bet.HomeTeam, &bet.AwayTeam, &betType, &bet.Line,
		&bet.ProjectedTotal, &bet.Edge, &bet.Odds, &bet.Amount, &bet.Payout, &status, &placedAt,
		&settledAt, &actual, &profit, &bet.Notes); err != nil {
		return PlacedBet{}, err
	}

	bet.BetType = BetType(betType)
	bet.Status = Status(status)
	t, err := time.Parse(timeLayout, placedAt)
	if err != nil {
		return PlacedBet{}, fmt.Errorf("parsing placed_at: %w", err)
	}
	bet.PlacedAt = t
	if settledAt.Valid {
		st, err := time.Parse(timeLayout, settledAt.String)
		if err != nil {
			return PlacedBet{}, fmt.Errorf("parsing settled_at: %w", err)
		}
		bet.SettledAt = &st
	}
	if actual.Valid {
		v := int(actual.Int64)
		bet.ActualTotal = &v
	}
	if profit.Valid {
		v := profit.Float64
		bet.NetProfit = &v
	}
	return bet, nil
}
