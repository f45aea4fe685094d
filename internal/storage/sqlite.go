// Package storage provides SQLite-based persistence for scores, stage
// progress, unlocked music and the replay index.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is a single finished run.
type ScoreEntry struct {
	ID         int64
	StageID    string
	Difficulty string
	Player     string
	Points     uint64
	Cleared    bool
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := expandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// expandHome expands a leading ~ to the home directory.
func expandHome(p string) (string, error) {
	if p == "" || p[0] != '~' {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stage_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			points INTEGER NOT NULL,
			cleared INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(stage_id, difficulty, points DESC);

		CREATE TABLE IF NOT EXISTS stage_progress (
			stage_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			unlocked INTEGER NOT NULL DEFAULT 0,
			num_played INTEGER NOT NULL DEFAULT 0,
			num_cleared INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (stage_id, difficulty)
		);

		CREATE TABLE IF NOT EXISTS unlocked_tracks (
			name TEXT PRIMARY KEY,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS replays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			player TEXT NOT NULL DEFAULT '',
			stage_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			seed INTEGER NOT NULL,
			points INTEGER NOT NULL,
			cleared INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_stage ON replays(stage_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a finished run and returns the inserted ID.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (stage_id, difficulty, player, points, cleared) VALUES (?, ?, ?, ?, ?)",
		e.StageID, e.Difficulty, e.Player, int64(e.Points), e.Cleared,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for a stage on one difficulty.
// An empty difficulty matches all of them.
func (s *Store) TopScores(stageID, difficulty string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, stage_id, difficulty, player, points, cleared, created_at
		 FROM scores
		 WHERE stage_id = ? AND (? = '' OR difficulty = ?)
		 ORDER BY points DESC, id ASC
		 LIMIT ?`,
		stageID, difficulty, difficulty, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var points int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.StageID, &e.Difficulty, &e.Player, &points, &e.Cleared, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Points = uint64(points)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the stage on a difficulty.
// Returns 0 if no scores exist.
func (s *Store) HighScore(stageID, difficulty string) (uint64, error) {
	var points sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(points) FROM scores WHERE stage_id = ? AND difficulty = ?",
		stageID, difficulty,
	).Scan(&points)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !points.Valid {
		return 0, nil
	}

	return uint64(points.Int64), nil
}

// ClearScores deletes all scores for the given stage.
func (s *Store) ClearScores(stageID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE stage_id = ?", stageID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// StageStats contains aggregated score statistics for a stage.
type StageStats struct {
	StageID    string
	Runs       int
	Clears     int
	HighScore  uint64
	AvgScore   float64
	LastPlayed time.Time
}

// AllStageStats retrieves statistics for every stage that has scores.
func (s *Store) AllStageStats() (map[string]*StageStats, error) {
	rows, err := s.db.Query(
		`SELECT stage_id, COUNT(*), SUM(cleared), MAX(points), AVG(points), MAX(created_at)
		 FROM scores
		 GROUP BY stage_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stage stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*StageStats)
	for rows.Next() {
		var st StageStats
		var high int64
		var lastPlayed any
		if err := rows.Scan(&st.StageID, &st.Runs, &st.Clears, &high, &st.AvgScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.HighScore = uint64(high)
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.StageID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles the driver returning either time.Time or a string.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
