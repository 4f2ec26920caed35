package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ranktrack/internal/common"
	"ranktrack/internal/tracking"
)

var ErrAccountNotFound = errors.New("account not found")

var botMigrations = []string{
	`CREATE TABLE IF NOT EXISTS account (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game TEXT NOT NULL,
		external_id TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		tag_line TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		UNIQUE (game, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS guild_member_account (
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		account_id INTEGER NOT NULL REFERENCES account (id) ON DELETE CASCADE,
		is_primary INTEGER NOT NULL DEFAULT 0 CHECK (is_primary IN (0, 1)),
		linked_at TEXT NOT NULL,
		PRIMARY KEY (guild_id, user_id, account_id)
	)`,
}

// Binding is an account linked to a member of a guild
type Binding struct {
	GuildId string
	UserId  string
	Account tracking.Account
	Primary bool
}

type DatabaseBot struct {
	*common.Database
	now func() time.Time
}

func NewDatabaseBot(database *common.Database) (*DatabaseBot, error) {
	if err := database.Migrate(botMigrations); err != nil {
		return nil, fmt.Errorf("bot tables: %w", err)
	}
	return &DatabaseBot{Database: database, now: time.Now}, nil
}

// UpsertAccount stores the account, refreshing its display fields when the
// game and external id are already known, and returns it with its id
func (db *DatabaseBot) UpsertAccount(ctx context.Context, account tracking.Account) (tracking.Account, error) {

	_, err := db.DB().ExecContext(ctx, `INSERT INTO account (game, external_id, display_name, tag_line, region)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (game, external_id) DO UPDATE SET
			display_name = excluded.display_name,
			tag_line = excluded.tag_line,
			region = excluded.region`,
		string(account.Game), account.ExternalId, account.DisplayName, account.TagLine, account.Region)
	if err != nil {
		return tracking.Account{}, fmt.Errorf("upsert account: %w", err)
	}

	err = db.DB().QueryRowContext(ctx, `SELECT id FROM account WHERE game = ? AND external_id = ?`,
		string(account.Game), account.ExternalId).Scan(&account.Id)
	if err != nil {
		return tracking.Account{}, fmt.Errorf("read account id: %w", err)
	}
	return account, nil
}

func (db *DatabaseBot) Account(ctx context.Context, id int64) (tracking.Account, error) {

	var account tracking.Account
	var game string
	err := db.DB().QueryRowContext(ctx, `SELECT id, game, external_id, display_name, tag_line, region FROM account WHERE id = ?`, id).
		Scan(&account.Id, &game, &account.ExternalId, &account.DisplayName, &account.TagLine, &account.Region)
	if err == sql.ErrNoRows {
		return tracking.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return tracking.Account{}, fmt.Errorf("read account %d: %w", id, err)
	}
	account.Game = tracking.Game(game)
	return account, nil
}

// LinkAccount binds the account to the member. It becomes the primary
// account of its game when forcePrimary is set or when the member has no
// primary for that game yet. Returns whether it ended up primary
func (db *DatabaseBot) LinkAccount(ctx context.Context, guildId string, userId string, account tracking.Account, forcePrimary bool) (bool, error) {

	primary := false
	err := db.WithTx(ctx, func(tx *sql.Tx) error {

		var hasPrimary bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM guild_member_account gma JOIN account a ON a.id = gma.account_id
			WHERE gma.guild_id = ? AND gma.user_id = ? AND a.game = ? AND gma.is_primary = 1 AND gma.account_id != ?
		)`, guildId, userId, string(account.Game), account.Id).Scan(&hasPrimary)
		if err != nil {
			return fmt.Errorf("check primary: %w", err)
		}

		var alreadyPrimary bool
		err = tx.QueryRowContext(ctx, `SELECT is_primary FROM guild_member_account WHERE guild_id = ? AND user_id = ? AND account_id = ?`,
			guildId, userId, account.Id).Scan(&alreadyPrimary)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("read link: %w", err)
		}

		primary = forcePrimary || alreadyPrimary || !hasPrimary
		if primary {
			if _, err := tx.ExecContext(ctx, `UPDATE guild_member_account SET is_primary = 0
				WHERE guild_id = ? AND user_id = ? AND account_id IN (SELECT id FROM account WHERE game = ?)`,
				guildId, userId, string(account.Game)); err != nil {
				return fmt.Errorf("demote primary: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO guild_member_account (guild_id, user_id, account_id, is_primary, linked_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (guild_id, user_id, account_id) DO UPDATE SET is_primary = excluded.is_primary`,
			guildId, userId, account.Id, primary, db.now().UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("link account: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return primary, nil
}

// PrimaryAccount returns the primary account of the member for the game,
// falling back to the earliest linked one when none is primary
func (db *DatabaseBot) PrimaryAccount(ctx context.Context, guildId string, userId string, game tracking.Game) (tracking.Account, error) {

	var account tracking.Account
	err := db.DB().QueryRowContext(ctx, `SELECT a.id, a.external_id, a.display_name, a.tag_line, a.region
		FROM guild_member_account gma JOIN account a ON a.id = gma.account_id
		WHERE gma.guild_id = ? AND gma.user_id = ? AND a.game = ?
		ORDER BY gma.is_primary DESC, gma.linked_at ASC, a.id ASC
		LIMIT 1`, guildId, userId, string(game)).
		Scan(&account.Id, &account.ExternalId, &account.DisplayName, &account.TagLine, &account.Region)
	if err == sql.ErrNoRows {
		return tracking.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return tracking.Account{}, fmt.Errorf("read primary account: %w", err)
	}
	account.Game = game
	return account, nil
}

func (db *DatabaseBot) Bindings(ctx context.Context, guildId string, userId string) ([]Binding, error) {

	rows, err := db.DB().QueryContext(ctx, `SELECT a.id, a.game, a.external_id, a.display_name, a.tag_line, a.region, gma.is_primary
		FROM guild_member_account gma JOIN account a ON a.id = gma.account_id
		WHERE gma.guild_id = ? AND gma.user_id = ?
		ORDER BY a.game, gma.is_primary DESC, gma.linked_at ASC`, guildId, userId)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	bindings := []Binding{}
	for rows.Next() {
		binding := Binding{GuildId: guildId, UserId: userId}
		var game string
		if err := rows.Scan(&binding.Account.Id, &game, &binding.Account.ExternalId, &binding.Account.DisplayName,
			&binding.Account.TagLine, &binding.Account.Region, &binding.Primary); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		binding.Account.Game = tracking.Game(game)
		bindings = append(bindings, binding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	return bindings, nil
}
