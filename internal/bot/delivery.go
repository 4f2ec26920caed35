package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ranktrack/internal/schedule"
)

var errNoSession = errors.New("discord session not open")

// Deliver sends the daily report a preference asks for, to its channel or
// as a direct message
func (bot *Bot) Deliver(ctx context.Context, preference schedule.Preference, at time.Time) error {

	session := bot.currentSession()
	if session == nil {
		return errNoSession
	}

	account, err := bot.database.Account(ctx, preference.AccountId)
	if errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("preference %d: %w", preference.Id, schedule.ErrNoAccount)
	}
	if err != nil {
		return fmt.Errorf("could not read account %d: %w", preference.AccountId, err)
	}

	reporter, err := bot.registry.Get(account.Game)
	if err != nil {
		return fmt.Errorf("%w: %w", schedule.ErrUnsupported, err)
	}

	channelId := preference.ChannelId
	if channelId == "" {
		channel, err := session.UserChannelCreate(preference.UserId)
		if err != nil {
			return fmt.Errorf("could not open direct message with user %s: %w", preference.UserId, err)
		}
		channelId = channel.ID
	}

	result := reporter.DailyReport(ctx, account, preference.Queue, at)
	if err := sendResponses(session, channelId, ReportMessage(result)); err != nil {
		return fmt.Errorf("could not send report to channel %s: %w", channelId, err)
	}
	log.Debug().Int64("preference", preference.Id).Str("outcome", result.Outcome()).Msg("Report delivered")
	return nil
}
