package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ranktrack/internal/common"
)

var scheduleMigrations = []string{
	`CREATE TABLE IF NOT EXISTS report_preference (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		account_id INTEGER NOT NULL,
		queue TEXT NOT NULL,
		schedule TEXT NOT NULL,
		channel_id TEXT NOT NULL DEFAULT '',
		enabled INTEGER NOT NULL DEFAULT 1 CHECK (enabled IN (0, 1)),
		created_at TEXT NOT NULL,
		UNIQUE (guild_id, user_id, account_id, queue)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_report_preference_schedule ON report_preference (schedule, enabled)`,
}

// Store persists report preferences. UpsertWithinCapacity runs its
// check and its write in a single transaction
type Store interface {
	UpsertWithinCapacity(ctx context.Context, preference Preference, capacity int) (bool, error)
	Disable(ctx context.Context, key Key) (bool, error)
	ListEnabled(ctx context.Context, schedule string) ([]Preference, error)
	ListForUser(ctx context.Context, guildId string, userId string) ([]Preference, error)
}

type DatabaseSchedule struct {
	*common.Database
	now func() time.Time
}

func NewDatabaseSchedule(database *common.Database) (*DatabaseSchedule, error) {
	if err := database.Migrate(scheduleMigrations); err != nil {
		return nil, fmt.Errorf("schedule tables: %w", err)
	}
	return &DatabaseSchedule{Database: database, now: time.Now}, nil
}

func (db *DatabaseSchedule) UpsertWithinCapacity(ctx context.Context, preference Preference, capacity int) (bool, error) {

	accepted := false
	err := db.WithTx(ctx, func(tx *sql.Tx) error {

		// Same schedule and already enabled: nothing changes
		var schedule string
		var enabled bool
		err := tx.QueryRowContext(ctx, `SELECT schedule, enabled FROM report_preference
			WHERE guild_id = ? AND user_id = ? AND account_id = ? AND queue = ?`,
			preference.GuildId, preference.UserId, preference.AccountId, preference.Queue).Scan(&schedule, &enabled)
		switch {
		case err == nil && enabled && schedule == preference.Schedule:
			accepted = true
			return nil
		case err != nil && err != sql.ErrNoRows:
			return fmt.Errorf("read preference: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_preference
			WHERE guild_id = ? AND schedule = ? AND enabled = 1`,
			preference.GuildId, preference.Schedule).Scan(&count); err != nil {
			return fmt.Errorf("count preferences: %w", err)
		}
		if count >= capacity {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO report_preference (guild_id, user_id, account_id, queue, schedule, channel_id, enabled, created_at)
			VALUES (?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT (guild_id, user_id, account_id, queue) DO UPDATE SET
				schedule = excluded.schedule,
				channel_id = excluded.channel_id,
				enabled = 1`,
			preference.GuildId, preference.UserId, preference.AccountId, preference.Queue, preference.Schedule,
			preference.ChannelId, db.now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("upsert preference: %w", err)
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return accepted, nil
}

func (db *DatabaseSchedule) Disable(ctx context.Context, key Key) (bool, error) {
	result, err := db.DB().ExecContext(ctx, `UPDATE report_preference SET enabled = 0
		WHERE guild_id = ? AND user_id = ? AND account_id = ? AND queue = ?`,
		key.GuildId, key.UserId, key.AccountId, key.Queue)
	if err != nil {
		return false, fmt.Errorf("disable preference: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("disable preference: %w", err)
	}
	return affected > 0, nil
}

// ListEnabled returns the enabled preferences of the schedule, or of
// every schedule when it is empty
func (db *DatabaseSchedule) ListEnabled(ctx context.Context, schedule string) ([]Preference, error) {
	query := `SELECT id, guild_id, user_id, account_id, queue, schedule, channel_id, enabled FROM report_preference WHERE enabled = 1`
	args := []interface{}{}
	if schedule != "" {
		query += ` AND schedule = ?`
		args = append(args, schedule)
	}
	query += ` ORDER BY schedule, id`
	return db.query(ctx, query, args...)
}

func (db *DatabaseSchedule) ListForUser(ctx context.Context, guildId string, userId string) ([]Preference, error) {
	return db.query(ctx, `SELECT id, guild_id, user_id, account_id, queue, schedule, channel_id, enabled FROM report_preference
		WHERE guild_id = ? AND user_id = ? ORDER BY schedule, id`, guildId, userId)
}

func (db *DatabaseSchedule) query(ctx context.Context, query string, args ...interface{}) ([]Preference, error) {
	rows, err := db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	preferences := []Preference{}
	for rows.Next() {
		var preference Preference
		if err := rows.Scan(&preference.Id, &preference.GuildId, &preference.UserId, &preference.AccountId,
			&preference.Queue, &preference.Schedule, &preference.ChannelId, &preference.Enabled); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		preferences = append(preferences, preference)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return preferences, nil
}
