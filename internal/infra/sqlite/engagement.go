package sqlite

import (
	"database/sql"
	"time"

	"github.com/veloce-app/veloce/internal/domain"
)

// ─── Engagement Key-Value ───────────────────────────────────────────────────

// SetEngagement stores an engagement key-value pair.
func (d *DB) SetEngagement(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO engagement (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// GetEngagement retrieves an engagement value by key.
// Returns "" if key not found.
func (d *DB) GetEngagement(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM engagement WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement as unlocked.
// Returns false if already unlocked (idempotent).
func (d *DB) UnlockAchievement(id string, at time.Time) (bool, error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
		id, at.Unix(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// IsAchievementUnlocked checks whether an achievement has been unlocked.
func (d *DB) IsAchievementUnlocked(id string) (bool, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUnlockedAchievements returns all unlocked achievements, newest first.
func (d *DB) ListUnlockedAchievements() ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT id, unlocked_at FROM achievements ORDER BY unlocked_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.UnlockedAchievement
	for rows.Next() {
		var a domain.UnlockedAchievement
		var unlockedAt int64
		if err := rows.Scan(&a.ID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(unlockedAt, 0)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// UnlockedAchievementCount returns the total number of unlocked achievements.
func (d *DB) UnlockedAchievementCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements`).Scan(&count)
	return count, err
}

// ─── Personal Bests ─────────────────────────────────────────────────────────

// PersonalBest returns the recorded maximum for a kind (0 if none yet).
func (d *DB) PersonalBest(kind string) (int, error) {
	var value int
	err := d.db.QueryRow(`SELECT value FROM personal_bests WHERE kind = ?`, kind).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return value, err
}

// PersonalBestInfo returns the recorded maximum for a kind together
// with when it was achieved. Zero values if no record exists yet.
func (d *DB) PersonalBestInfo(kind string) (int, time.Time, error) {
	var value int
	var unix int64
	err := d.db.QueryRow(`SELECT value, achieved_at FROM personal_bests WHERE kind = ?`, kind).Scan(&value, &unix)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return value, time.Unix(unix, 0), nil
}

// RecordPersonalBest stores value as the new maximum for kind if it beats
// the previous one. Returns the beaten record, or nil if value did not beat it.
func (d *DB) RecordPersonalBest(kind string, value int, at time.Time) (*domain.PersonalBest, error) {
	prev, err := d.PersonalBest(kind)
	if err != nil {
		return nil, err
	}
	if value <= prev {
		return nil, nil
	}
	_, err = d.db.Exec(
		`INSERT INTO personal_bests (kind, value, achieved_at) VALUES (?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET value=excluded.value, achieved_at=excluded.achieved_at`,
		kind, value, at.Unix(),
	)
	if err != nil {
		return nil, err
	}
	return &domain.PersonalBest{Kind: kind, NewValue: value, PreviousValue: prev}, nil
}
