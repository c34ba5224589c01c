package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cryptoSignalEngine/internal/domain"
	"cryptoSignalEngine/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.CandleRepository using SQLite. It is the local
// candle cache behind the fetch tool and the replay runner; live candle data
// stays with the host framework.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/candles.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency between fetcher and runner
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; limiting the pool avoids
	// SQLITE_BUSY churn in the Go driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "Candle cache ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS candles (
		symbol     TEXT    NOT NULL,
		interval   TEXT    NOT NULL,
		open_time  INTEGER NOT NULL, -- unix milliseconds
		close_time INTEGER NOT NULL,
		open       REAL    NOT NULL,
		high       REAL    NOT NULL,
		low        REAL    NOT NULL,
		close      REAL    NOT NULL,
		volume     REAL    NOT NULL,
		is_final   INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (symbol, interval, open_time)
	);
	CREATE INDEX IF NOT EXISTS idx_candles_lookup ON candles (symbol, interval, open_time);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: creating candles table: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// StoreCandles saves a batch of candles inside one transaction, skipping
// rows already cached for the same symbol/interval/open time. Returns the
// number of rows actually inserted.
func (r *Repository) StoreCandles(ctx context.Context, candles []*domain.Candle) (int64, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %w", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO candles
		(symbol, interval, open_time, close_time, open, high, low, close, volume, is_final)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare insert: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	var inserted int64
	for _, c := range candles {
		res, err := stmt.ExecContext(ctx,
			c.Symbol, c.Interval, c.OpenTime.UnixMilli(), c.CloseTime.UnixMilli(),
			c.Open, c.High, c.Low, c.Close, c.Volume, boolToInt(c.IsFinal))
		if err != nil {
			return 0, fmt.Errorf("%w: insert candle at %s: %w", ports.ErrQueryFailed, c.OpenTime, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%w: rows affected: %w", ports.ErrQueryFailed, err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Stored candles", map[string]interface{}{"batch": len(candles), "inserted": inserted})
	return inserted, nil
}

// FindRange retrieves candles for a symbol/interval between start and end,
// ordered by open time ascending.
func (r *Repository) FindRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Candle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, interval, open_time, close_time, open, high, low, close, volume, is_final
		FROM candles
		WHERE symbol = ? AND interval = ? AND open_time >= ? AND open_time <= ?
		ORDER BY open_time ASC`,
		symbol, interval, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%w: query range: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()
	return scanCandles(rows)
}

// FindLatest retrieves the most recent candles for a symbol/interval up to a
// limit, ordered by open time ascending.
func (r *Repository) FindLatest(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, interval, open_time, close_time, open, high, low, close, volume, is_final
		FROM candles
		WHERE symbol = ? AND interval = ?
		ORDER BY open_time DESC
		LIMIT ?`,
		symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query latest: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	candles, err := scanCandles(rows)
	if err != nil {
		return nil, err
	}
	// reverse into ascending order
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// CountBySymbol counts the cached candles for a symbol/interval.
func (r *Repository) CountBySymbol(ctx context.Context, symbol, interval string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candles WHERE symbol = ? AND interval = ?`,
		symbol, interval).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count candles: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

func scanCandles(rows *sql.Rows) ([]*domain.Candle, error) {
	var candles []*domain.Candle
	for rows.Next() {
		var (
			c               domain.Candle
			openMs, closeMs int64
			isFinal         int
		)
		if err := rows.Scan(&c.Symbol, &c.Interval, &openMs, &closeMs,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &isFinal); err != nil {
			return nil, fmt.Errorf("%w: scan candle: %w", ports.ErrQueryFailed, err)
		}
		c.OpenTime = time.UnixMilli(openMs)
		c.CloseTime = time.UnixMilli(closeMs)
		c.IsFinal = isFinal != 0
		candles = append(candles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate candles: %w", ports.ErrQueryFailed, err)
	}
	return candles, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
