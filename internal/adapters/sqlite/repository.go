package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Journal implements ports.SignalJournal using SQLite.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewJournal creates a new SQLite signal journal.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// Scan workers write concurrently; one connection serializes them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite signal journal ready", map[string]interface{}{"path": dbPath})

	return j, nil
}

func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signals (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_id TEXT NOT NULL UNIQUE,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		profile TEXT NOT NULL,
		decision TEXT NOT NULL,
		tier TEXT NOT NULL DEFAULT '',
		total_score REAL NOT NULL,
		max_score REAL NOT NULL,
		entry REAL NOT NULL,
		stop_loss REAL NOT NULL DEFAULT 0,
		targets TEXT NOT NULL DEFAULT '[]',
		breakdown TEXT NOT NULL DEFAULT '{}',
		wait_reason TEXT NOT NULL DEFAULT '',
		suppressed INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_symbol_created_at ON signals (symbol, created_at);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		j.logger.Info(context.Background(), "Closing SQLite database connection")
		return j.db.Close()
	}
	return nil
}

// Record stores sig together with its dedup outcome. Recording the same
// signal ID twice is an error.
func (j *Journal) Record(ctx context.Context, sig *domain.Signal, suppressed bool) error {
	if sig == nil || sig.ID == "" {
		return fmt.Errorf("record signal: %w: signal with ID is required", ports.ErrInvalidRequest)
	}
	targets, err := json.Marshal(nonNilTargets(sig.Targets))
	if err != nil {
		return fmt.Errorf("failed to encode targets for signal %s: %w", sig.ID, err)
	}
	breakdown, err := json.Marshal(sig.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown for signal %s: %w", sig.ID, err)
	}

	const query = `
	INSERT INTO signals (signal_id, symbol, timeframe, profile, decision, tier, total_score, max_score,
	                     entry, stop_loss, targets, breakdown, wait_reason, suppressed, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = j.db.ExecContext(ctx, query,
		sig.ID, sig.Symbol, sig.Timeframe, sig.Profile, string(sig.Decision), string(sig.Tier),
		sig.TotalScore, sig.MaxScore, sig.Entry, sig.StopLoss, string(targets), string(breakdown),
		string(sig.WaitReason), suppressed, sig.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert signal %s for symbol %s: %w: %w", sig.ID, sig.Symbol, ports.ErrQueryFailed, err)
	}
	j.logger.Debug(ctx, "Signal recorded", map[string]interface{}{"signalID": sig.ID, "symbol": sig.Symbol, "suppressed": suppressed})
	return nil
}

// Recent returns up to limit entries for symbol, newest first.
func (j *Journal) Recent(ctx context.Context, symbol string, limit int) ([]ports.JournalEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("recent signals: %w: limit must be positive, got %d", ports.ErrInvalidRequest, limit)
	}
	const query = `
	SELECT signal_id, symbol, timeframe, profile, decision, tier, total_score, max_score,
	       entry, stop_loss, targets, suppressed, created_at
	FROM signals
	WHERE symbol = ?
	ORDER BY created_at DESC, seq DESC
	LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	entries := make([]ports.JournalEntry, 0)
	for rows.Next() {
		var (
			e        ports.JournalEntry
			decision string
			tier     string
			targets  string
		)
		if err := rows.Scan(&e.ID, &e.Symbol, &e.Timeframe, &e.Profile, &decision, &tier,
			&e.TotalScore, &e.MaxScore, &e.Entry, &e.StopLoss, &targets, &e.Suppressed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w: %w", ports.ErrQueryFailed, err)
		}
		if err := json.Unmarshal([]byte(targets), &e.Targets); err != nil {
			return nil, fmt.Errorf("failed to decode targets for signal %s: %w", e.ID, err)
		}
		e.Decision = domain.Decision(decision)
		e.Tier = domain.Tier(tier)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return entries, nil
}

// DeleteBefore removes entries created before cutoff and returns how many were removed.
func (j *Journal) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := j.db.ExecContext(ctx, `DELETE FROM signals WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete signals before %s: %w: %w", cutoff.Format(time.RFC3339), ports.ErrQueryFailed, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for signal cleanup: %w", err)
	}
	if n > 0 {
		j.logger.Info(ctx, "Old signals removed from journal", map[string]interface{}{"count": n, "cutoff": cutoff})
	}
	return n, nil
}

func nonNilTargets(t []float64) []float64 {
	if t == nil {
		return []float64{}
	}
	return t
}
