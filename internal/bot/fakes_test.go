package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"ranktrack/internal/tracking"
)

type sentMessage struct {
	channelId string
	content   string
	embed     *discordgo.MessageEmbed
}

type fakeSession struct {
	mu       sync.Mutex
	sent     []sentMessage
	channels []*discordgo.Channel
	sendErr  error
}

func (session *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.sendErr != nil {
		return nil, session.sendErr
	}
	session.sent = append(session.sent, sentMessage{channelId: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (session *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.sendErr != nil {
		return nil, session.sendErr
	}
	session.sent = append(session.sent, sentMessage{channelId: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (session *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (session *fakeSession) GuildChannels(_ string, _ ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	return session.channels, nil
}

func (session *fakeSession) messages() []sentMessage {
	session.mu.Lock()
	defer session.mu.Unlock()
	return append([]sentMessage(nil), session.sent...)
}

func (session *fakeSession) last() sentMessage {
	messages := session.messages()
	if len(messages) == 0 {
		return sentMessage{}
	}
	return messages[len(messages)-1]
}

// fakeReporter reports GOLD II at 40 LP in the morning and 55 LP now
type fakeReporter struct {
	game         tracking.Game
	defaultQueue string
	accounts     map[string]tracking.Account

	mu      sync.Mutex
	reports []string
}

func newFakeReporter() *fakeReporter {
	return &fakeReporter{
		game: tracking.GameLeague,
		accounts: map[string]tracking.Account{
			"Main#EUW":  {ExternalId: "puuid-main", DisplayName: "Main", TagLine: "EUW", Region: "euw1"},
			"Smurf#EUW": {ExternalId: "puuid-smurf", DisplayName: "Smurf", TagLine: "EUW", Region: "euw1"},
		},
	}
}

func (reporter *fakeReporter) Game() tracking.Game {
	return reporter.game
}

func (reporter *fakeReporter) DefaultQueue() string {
	if reporter.defaultQueue != "" {
		return reporter.defaultQueue
	}
	return "RANKED_SOLO_5x5"
}

func (reporter *fakeReporter) ResolveAccount(_ context.Context, input string) (tracking.Account, error) {
	account, ok := reporter.accounts[input]
	if !ok {
		return tracking.Account{}, errors.New("not found")
	}
	account.Game = reporter.game
	return account, nil
}

func (reporter *fakeReporter) DailyReport(_ context.Context, account tracking.Account, queue string, today time.Time) tracking.Result {
	reporter.mu.Lock()
	reporter.reports = append(reporter.reports, fmt.Sprintf("%d|%s", account.Id, queue))
	reporter.mu.Unlock()

	before, after := 40, 55
	return tracking.TieredReport{
		Game:     reporter.game,
		Account:  account,
		Queue:    queue,
		Day:      tracking.Day(today),
		Baseline: &tracking.Snapshot[tracking.TieredRank]{AccountId: account.Id, Queue: queue, Rank: tracking.TieredRank{Tier: "GOLD", Division: "II", Points: &before}},
		Current:  &tracking.TieredRank{Tier: "GOLD", Division: "II", Points: &after},
		Diff:     tracking.TieredDiff{PointsDiff: 15, PointsKnown: true},
	}
}

func (reporter *fakeReporter) calls() []string {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	return append([]string(nil), reporter.reports...)
}
