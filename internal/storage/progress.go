package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-danmaku/internal/stage"
)

var _ stage.Progress = (*Store)(nil)

// StageProgress is the per-difficulty play record of a stage.
type StageProgress struct {
	StageID    string
	Difficulty string
	Unlocked   bool
	NumPlayed  int
	NumCleared int
	UpdatedAt  time.Time
}

// RecordStagePlayed unlocks the stage and counts one attempt.
func (s *Store) RecordStagePlayed(stageID, difficulty string) error {
	_, err := s.db.Exec(
		`INSERT INTO stage_progress (stage_id, difficulty, unlocked, num_played)
		 VALUES (?, ?, 1, 1)
		 ON CONFLICT (stage_id, difficulty) DO UPDATE SET
		   unlocked = 1,
		   num_played = num_played + 1,
		   updated_at = CURRENT_TIMESTAMP`,
		stageID, difficulty,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record stage played: %w", err)
	}
	return nil
}

// RecordStageCleared counts one clear.
func (s *Store) RecordStageCleared(stageID, difficulty string) error {
	_, err := s.db.Exec(
		`INSERT INTO stage_progress (stage_id, difficulty, unlocked, num_cleared)
		 VALUES (?, ?, 1, 1)
		 ON CONFLICT (stage_id, difficulty) DO UPDATE SET
		   num_cleared = num_cleared + 1,
		   updated_at = CURRENT_TIMESTAMP`,
		stageID, difficulty,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record stage cleared: %w", err)
	}
	return nil
}

// Progress returns the record for a stage; a stage never played yields a
// zero record.
func (s *Store) Progress(stageID, difficulty string) (StageProgress, error) {
	p := StageProgress{StageID: stageID, Difficulty: difficulty}
	var updatedAt any
	err := s.db.QueryRow(
		`SELECT unlocked, num_played, num_cleared, updated_at
		 FROM stage_progress
		 WHERE stage_id = ? AND difficulty = ?`,
		stageID, difficulty,
	).Scan(&p.Unlocked, &p.NumPlayed, &p.NumCleared, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// AllProgress lists every progress record ordered by stage and difficulty.
func (s *Store) AllProgress() ([]StageProgress, error) {
	rows, err := s.db.Query(
		`SELECT stage_id, difficulty, unlocked, num_played, num_cleared, updated_at
		 FROM stage_progress
		 ORDER BY stage_id, difficulty`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query progress: %w", err)
	}
	defer rows.Close()

	var out []StageProgress
	for rows.Next() {
		var p StageProgress
		var updatedAt any
		if err := rows.Scan(&p.StageID, &p.Difficulty, &p.Unlocked, &p.NumPlayed, &p.NumCleared, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		p.UpdatedAt = parseTime(updatedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// UnlockTrack marks a music track as heard. Unlocking twice is a no-op.
func (s *Store) UnlockTrack(name string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO unlocked_tracks (name) VALUES (?)", name)
	if err != nil {
		return fmt.Errorf("storage: cannot unlock track: %w", err)
	}
	return nil
}

// UnlockedTracks lists unlocked track names in unlock order.
func (s *Store) UnlockedTracks() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM unlocked_tracks ORDER BY unlocked_at, name")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query tracks: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ReplayEntry indexes a saved replay file.
type ReplayEntry struct {
	ID         int64
	Path       string
	Player     string
	StageID    string
	Difficulty string
	Seed       uint64
	Points     uint64
	Cleared    bool
	CreatedAt  time.Time
}

// SaveReplay adds a replay file to the index. Saving the same path again
// replaces its entry.
func (s *Store) SaveReplay(e ReplayEntry) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO replays (path, player, stage_id, difficulty, seed, points, cleared)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET
		   player = excluded.player,
		   stage_id = excluded.stage_id,
		   difficulty = excluded.difficulty,
		   seed = excluded.seed,
		   points = excluded.points,
		   cleared = excluded.cleared`,
		e.Path, e.Player, e.StageID, e.Difficulty, int64(e.Seed), int64(e.Points), e.Cleared,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save replay: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// Replays lists indexed replays, newest first. An empty stageID lists all.
func (s *Store) Replays(stageID string, limit int) ([]ReplayEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, path, player, stage_id, difficulty, seed, points, cleared, created_at
		 FROM replays
		 WHERE ? = '' OR stage_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		stageID, stageID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var out []ReplayEntry
	for rows.Next() {
		var e ReplayEntry
		var seed, points int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Path, &e.Player, &e.StageID, &e.Difficulty, &seed, &points, &e.Cleared, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Seed = uint64(seed)
		e.Points = uint64(points)
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}
