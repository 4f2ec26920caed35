package schedule

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Gate admits report preferences into a schedule slot while the slot
// has room for them
type Gate struct {
	mu    sync.Mutex
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// UpsertPreference enables the preference on its schedule. It is a no-op
// returning true when that is already the case, and returns false
// without touching anything when the guild already has capacity
// enabled preferences on that schedule
func (gate *Gate) UpsertPreference(ctx context.Context, preference Preference, capacity int) (bool, error) {

	gate.mu.Lock()
	defer gate.mu.Unlock()

	accepted, err := gate.store.UpsertWithinCapacity(ctx, preference, capacity)
	if err != nil {
		return false, err
	}

	logger := log.With().Str("guild", preference.GuildId).Str("user", preference.UserId).Str("slot", preference.Schedule).Logger()
	if accepted {
		logger.Info().Int64("account", preference.AccountId).Str("queue", preference.Queue).Msg("Report preference enabled")
	} else {
		logger.Info().Int("capacity", capacity).Msg("Schedule slot is full")
	}
	return accepted, nil
}

// DisablePreference reports whether the preference existed
func (gate *Gate) DisablePreference(ctx context.Context, key Key) (bool, error) {

	gate.mu.Lock()
	defer gate.mu.Unlock()

	found, err := gate.store.Disable(ctx, key)
	if err != nil {
		return false, err
	}
	if found {
		log.Info().Str("guild", key.GuildId).Str("user", key.UserId).Int64("account", key.AccountId).Str("queue", key.Queue).Msg("Report preference disabled")
	}
	return found, nil
}

func (gate *Gate) ListEnabledPreferences(ctx context.Context, schedule string) ([]Preference, error) {
	return gate.store.ListEnabled(ctx, schedule)
}

func (gate *Gate) ListUserPreferences(ctx context.Context, guildId string, userId string) ([]Preference, error) {
	return gate.store.ListForUser(ctx, guildId, userId)
}
