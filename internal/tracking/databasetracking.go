package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ranktrack/internal/common"
)

// Rocket League snapshots cover every playlist at once
const QueueAllPlaylists = "ALL"

// Fixed width so that text ordering is chronological ordering
const capturedAtLayout = "2006-01-02T15:04:05.000000000Z"

var trackingMigrations = []string{
	tieredTable("lol_rank_snapshot"),
	tieredIndex("lol_rank_snapshot"),
	tieredTable("valorant_rank_snapshot"),
	tieredIndex("valorant_rank_snapshot"),
	`CREATE TABLE IF NOT EXISTS apex_rank_snapshot (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		queue TEXT NOT NULL,
		rank_name TEXT NOT NULL DEFAULT '',
		rank_division INTEGER,
		rank_score INTEGER,
		ladder_position INTEGER,
		season TEXT NOT NULL DEFAULT '',
		capture_day TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		UNIQUE (account_id, queue, captured_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_apex_rank_snapshot_day ON apex_rank_snapshot (account_id, queue, capture_day, captured_at)`,
	`CREATE TABLE IF NOT EXISTS rocket_league_rank_snapshot (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		playlist TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT '',
		division TEXT NOT NULL DEFAULT '',
		mmr INTEGER,
		streak TEXT NOT NULL DEFAULT '',
		capture_day TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		UNIQUE (account_id, playlist, captured_at)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rocket_league_rank_snapshot_day ON rocket_league_rank_snapshot (account_id, capture_day, captured_at)`,
}

func tieredTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		queue TEXT NOT NULL,
		tier TEXT NOT NULL,
		division TEXT NOT NULL DEFAULT '',
		points INTEGER,
		wins INTEGER,
		losses INTEGER,
		capture_day TEXT NOT NULL,
		captured_at TEXT NOT NULL,
		UNIQUE (account_id, queue, captured_at)
	)`, table)
}

func tieredIndex(table string) string {
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_day ON %s (account_id, queue, capture_day, captured_at)`, table, table)
}

// DatabaseTracking owns the snapshot tables of every game
type DatabaseTracking struct {
	*common.Database
}

func NewDatabaseTracking(database *common.Database) (*DatabaseTracking, error) {
	if err := database.Migrate(trackingMigrations); err != nil {
		return nil, fmt.Errorf("tracking tables: %w", err)
	}
	return &DatabaseTracking{Database: database}, nil
}

func (db *DatabaseTracking) LeagueStore() Store[TieredRank] {
	return &tieredStore{db: db.DB(), table: "lol_rank_snapshot"}
}

func (db *DatabaseTracking) ValorantStore() Store[TieredRank] {
	return &tieredStore{db: db.DB(), table: "valorant_rank_snapshot"}
}

func (db *DatabaseTracking) ApexStore() Store[LadderRank] {
	return &ladderStore{db: db.DB()}
}

func (db *DatabaseTracking) RocketLeagueStore() Store[PlaylistRanks] {
	return &playlistStore{database: db.Database}
}

func formatCapturedAt(t time.Time) string {
	return t.UTC().Format(capturedAtLayout)
}

func parseCapturedAt(value string) (time.Time, error) {
	t, err := time.Parse(capturedAtLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed capture time %q: %w", value, err)
	}
	return t, nil
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func fromNullInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	return intPtr(int(value.Int64))
}

func insertError(err error) error {
	if common.IsUniqueViolation(err) {
		return ErrDuplicateSnapshot
	}
	return fmt.Errorf("insert snapshot: %w", err)
}

type tieredStore struct {
	db    *sql.DB
	table string
}

func (store *tieredStore) Earliest(ctx context.Context, accountId int64, queue string, day string) (Snapshot[TieredRank], bool, error) {

	query := fmt.Sprintf(`SELECT id, tier, division, points, wins, losses, captured_at FROM %s
		WHERE account_id = ? AND queue = ? AND capture_day = ?
		ORDER BY captured_at ASC, id ASC LIMIT 1`, store.table)

	var snapshot Snapshot[TieredRank]
	var points, wins, losses sql.NullInt64
	var capturedAt string
	err := store.db.QueryRowContext(ctx, query, accountId, queue, day).Scan(
		&snapshot.Id, &snapshot.Rank.Tier, &snapshot.Rank.Division, &points, &wins, &losses, &capturedAt)
	if err == sql.ErrNoRows {
		return Snapshot[TieredRank]{}, false, nil
	}
	if err != nil {
		return Snapshot[TieredRank]{}, false, fmt.Errorf("read %s: %w", store.table, err)
	}
	if snapshot.CapturedAt, err = parseCapturedAt(capturedAt); err != nil {
		return Snapshot[TieredRank]{}, false, err
	}
	snapshot.AccountId = accountId
	snapshot.Queue = queue
	snapshot.Rank.Points = fromNullInt(points)
	snapshot.Rank.Wins = fromNullInt(wins)
	snapshot.Rank.Losses = fromNullInt(losses)
	return snapshot, true, nil
}

func (store *tieredStore) Insert(ctx context.Context, day string, snapshot Snapshot[TieredRank]) (int64, error) {

	query := fmt.Sprintf(`INSERT INTO %s (account_id, queue, tier, division, points, wins, losses, capture_day, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, store.table)

	rank := snapshot.Rank
	result, err := store.db.ExecContext(ctx, query, snapshot.AccountId, snapshot.Queue, rank.Tier, rank.Division,
		nullInt(rank.Points), nullInt(rank.Wins), nullInt(rank.Losses), day, formatCapturedAt(snapshot.CapturedAt))
	if err != nil {
		return 0, insertError(err)
	}
	return result.LastInsertId()
}

type ladderStore struct {
	db *sql.DB
}

func (store *ladderStore) Earliest(ctx context.Context, accountId int64, queue string, day string) (Snapshot[LadderRank], bool, error) {

	const query = `SELECT id, rank_name, rank_division, rank_score, ladder_position, season, captured_at FROM apex_rank_snapshot
		WHERE account_id = ? AND queue = ? AND capture_day = ?
		ORDER BY captured_at ASC, id ASC LIMIT 1`

	var snapshot Snapshot[LadderRank]
	var division, score, position sql.NullInt64
	var capturedAt string
	err := store.db.QueryRowContext(ctx, query, accountId, queue, day).Scan(
		&snapshot.Id, &snapshot.Rank.Name, &division, &score, &position, &snapshot.Rank.Season, &capturedAt)
	if err == sql.ErrNoRows {
		return Snapshot[LadderRank]{}, false, nil
	}
	if err != nil {
		return Snapshot[LadderRank]{}, false, fmt.Errorf("read apex_rank_snapshot: %w", err)
	}
	if snapshot.CapturedAt, err = parseCapturedAt(capturedAt); err != nil {
		return Snapshot[LadderRank]{}, false, err
	}
	snapshot.AccountId = accountId
	snapshot.Queue = queue
	snapshot.Rank.Division = fromNullInt(division)
	snapshot.Rank.Score = fromNullInt(score)
	snapshot.Rank.Position = fromNullInt(position)
	return snapshot, true, nil
}

func (store *ladderStore) Insert(ctx context.Context, day string, snapshot Snapshot[LadderRank]) (int64, error) {

	const query = `INSERT INTO apex_rank_snapshot (account_id, queue, rank_name, rank_division, rank_score, ladder_position, season, capture_day, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	rank := snapshot.Rank
	result, err := store.db.ExecContext(ctx, query, snapshot.AccountId, snapshot.Queue, rank.Name, nullInt(rank.Division),
		nullInt(rank.Score), nullInt(rank.Position), rank.Season, day, formatCapturedAt(snapshot.CapturedAt))
	if err != nil {
		return 0, insertError(err)
	}
	return result.LastInsertId()
}

// playlistStore keeps one row per playlist. The rows written together
// share their capture time, which is what groups them into a snapshot
type playlistStore struct {
	database *common.Database
}

func (store *playlistStore) Earliest(ctx context.Context, accountId int64, _ string, day string) (Snapshot[PlaylistRanks], bool, error) {

	const query = `SELECT id, playlist, rank, division, mmr, streak, captured_at FROM rocket_league_rank_snapshot
		WHERE account_id = ? AND captured_at = (
			SELECT MIN(captured_at) FROM rocket_league_rank_snapshot WHERE account_id = ? AND capture_day = ?
		)
		ORDER BY id ASC`

	rows, err := store.database.DB().QueryContext(ctx, query, accountId, accountId, day)
	if err != nil {
		return Snapshot[PlaylistRanks]{}, false, fmt.Errorf("read rocket_league_rank_snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := Snapshot[PlaylistRanks]{AccountId: accountId, Queue: QueueAllPlaylists}
	for rows.Next() {
		var id int64
		var rank PlaylistRank
		var mmr sql.NullInt64
		var capturedAt string
		if err := rows.Scan(&id, &rank.Playlist, &rank.Rank, &rank.Division, &mmr, &rank.Streak, &capturedAt); err != nil {
			return Snapshot[PlaylistRanks]{}, false, fmt.Errorf("scan rocket_league_rank_snapshot: %w", err)
		}
		if snapshot.Id == 0 {
			snapshot.Id = id
			if snapshot.CapturedAt, err = parseCapturedAt(capturedAt); err != nil {
				return Snapshot[PlaylistRanks]{}, false, err
			}
		}
		rank.Mmr = fromNullInt(mmr)
		snapshot.Rank = append(snapshot.Rank, rank)
	}
	if err := rows.Err(); err != nil {
		return Snapshot[PlaylistRanks]{}, false, fmt.Errorf("read rocket_league_rank_snapshot: %w", err)
	}
	if len(snapshot.Rank) == 0 {
		return Snapshot[PlaylistRanks]{}, false, nil
	}
	return snapshot, true, nil
}

func (store *playlistStore) Insert(ctx context.Context, day string, snapshot Snapshot[PlaylistRanks]) (int64, error) {

	const query = `INSERT INTO rocket_league_rank_snapshot (account_id, playlist, rank, division, mmr, streak, capture_day, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if len(snapshot.Rank) == 0 {
		return 0, fmt.Errorf("insert snapshot: no playlists")
	}

	capturedAt := formatCapturedAt(snapshot.CapturedAt)
	var firstId int64
	err := store.database.WithTx(ctx, func(tx *sql.Tx) error {
		for i, rank := range snapshot.Rank {
			result, err := tx.ExecContext(ctx, query, snapshot.AccountId, rank.Playlist, rank.Rank, rank.Division,
				nullInt(rank.Mmr), rank.Streak, day, capturedAt)
			if err != nil {
				return insertError(err)
			}
			if i == 0 {
				if firstId, err = result.LastInsertId(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return firstId, nil
}
