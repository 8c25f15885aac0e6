package game

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists round history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL mode so reads of the history do not block recording.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	logger.Info("game history database opened",
		zap.String("op", "game.NewSQLiteRecorder"),
		zap.String("path", dbPath),
	)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game_rounds (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			session_id    TEXT NOT NULL,
			round         INTEGER NOT NULL,
			industry      TEXT NOT NULL,
			guess_debt    REAL,
			guess_beta    REAL,
			guess_wacc    REAL,
			actual_debt   REAL,
			actual_beta   REAL,
			actual_wacc   REAL,
			distance      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_session ON game_rounds(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ts ON game_rounds(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRound inserts one completed guess.
func (r *SQLiteRecorder) RecordRound(round *Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO game_rounds
		(timestamp, session_id, round, industry,
		 guess_debt, guess_beta, guess_wacc,
		 actual_debt, actual_beta, actual_wacc, distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), round.SessionID, round.Round, round.Industry,
		round.Guess.DebtPct, round.Guess.Beta, round.Guess.WACC,
		round.Actual.DebtPct, round.Actual.Beta, round.Actual.WACC,
		round.Distance,
	)
	if err != nil {
		return fmt.Errorf("failed to record round: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
