package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ranktrack/internal/schedule"
	"ranktrack/internal/tracking"
)

// Runner is anything the bot keeps running next to its session
type Runner interface {
	Run(ctx context.Context) error
}

type Bot struct {
	token          string
	database       *DatabaseBot
	registry       *tracking.Registry
	gate           *schedule.Gate
	capacity       int
	commandTimeout time.Duration
	now            func() time.Time

	mu      sync.RWMutex
	session Session
}

func NewBot(token string, database *DatabaseBot, registry *tracking.Registry, gate *schedule.Gate, capacity int, commandTimeout time.Duration) *Bot {
	if capacity <= 0 {
		capacity = schedule.DefaultCapacity
	}
	if commandTimeout <= 0 {
		commandTimeout = 30 * time.Second
	}
	return &Bot{
		token:          token,
		database:       database,
		registry:       registry,
		gate:           gate,
		capacity:       capacity,
		commandTimeout: commandTimeout,
		now:            time.Now,
	}
}

// Run opens the discord session and keeps it, and the runners, alive until
// the context is done
func (bot *Bot) Run(ctx context.Context, runners ...Runner) error {
	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	// Event handler
	discord.AddHandler(bot.Receive)

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()
	bot.setSession(discord)
	defer bot.setSession(nil)
	log.Info().Msg("Discord session open")

	var wg sync.WaitGroup
	for _, runner := range runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Runner stopped")
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	log.Info().Msg("Closing discord session")
	return nil
}

func (bot *Bot) setSession(session Session) {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	bot.session = session
}

func (bot *Bot) currentSession() Session {
	bot.mu.RLock()
	defer bot.mu.RUnlock()
	return bot.session
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if discord.State != nil && discord.State.User != nil && message.Author != nil && message.Author.ID == discord.State.User.ID {
		log.Debug().Msg("Rejecting my own message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), bot.commandTimeout)
	defer cancel()
	bot.handle(ctx, discord, message.Message)
}

func (bot *Bot) handle(ctx context.Context, session Session, message *discordgo.Message) {

	if message.Author == nil || message.Author.Bot {
		return
	}

	// Parse the input provided and call the appropriate function
	parseResult := Parse(message.Content)
	if parseResult.parseid == PARSEID_NO_BOT_PREFIX {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Debug().Msg("Ignoring private message")
		sendResponses(session, message.ChannelID, PrivateMessagesIgnored())
		return
	}

	logger := log.With().Str("guild", message.GuildID).Str("user", message.Author.ID).Logger()
	logger.Debug().Msg(fmt.Sprintf("Received message: %s", message.Content))

	switch parseResult.parseid {
	case PARSEID_OK:
		var responses []Response
		switch parseResult.command {
		case COMMAND_LINK, COMMAND_PRIMARY:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of link arguments %T", arguments))
			case LinkArguments:
				responses = bot.link(ctx, message.GuildID, message.Author.ID, arguments, parseResult.command == COMMAND_PRIMARY)
			}
		case COMMAND_ACCOUNTS:
			responses = bot.accounts(ctx, message.GuildID, message.Author.ID)
		case COMMAND_REPORT:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of report arguments %T", arguments))
			case ReportArguments:
				responses = bot.report(ctx, message.GuildID, message.Author.ID, arguments)
			}
		case COMMAND_SCHEDULE:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of schedule arguments %T", arguments))
			case ScheduleArguments:
				responses = bot.schedule(ctx, session, message.GuildID, message.Author.ID, arguments)
			}
		case COMMAND_UNSCHEDULE:
			switch arguments := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of unschedule arguments %T", arguments))
			case ReportArguments:
				responses = bot.unschedule(ctx, message.GuildID, message.Author.ID, arguments)
			}
		case COMMAND_SCHEDULES:
			responses = bot.schedules(ctx, message.GuildID, message.Author.ID)
		case COMMAND_HELP:
			responses = HelpMessage()
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
		sendResponses(session, message.ChannelID, responses)
	default:
		// The command is invalid input, so it contains an error message
		logger.Debug().Str("reason", parseResult.errorMessage).Msg("Wrong input")
		sendResponses(session, message.ChannelID, InputNotValid(parseResult.errorMessage))
	}
}

func (bot *Bot) link(ctx context.Context, guildId string, userId string, arguments LinkArguments, forcePrimary bool) []Response {

	reporter, err := bot.registry.Get(arguments.Game)
	if err != nil {
		log.Warn().Err(err).Msg("Link for a game without tracker")
		return GameNotAvailable(arguments.Game)
	}

	account, err := reporter.ResolveAccount(ctx, arguments.Input)
	if err != nil {
		log.Info().Err(err).Str("game", string(arguments.Game)).Str("input", arguments.Input).Msg("Could not resolve account")
		return NoResponseProvider(arguments.Game, arguments.Input)
	}

	account, err = bot.database.UpsertAccount(ctx, account)
	if err != nil {
		log.Error().Err(err).Msg("Could not store account")
		return InternalError()
	}
	primary, err := bot.database.LinkAccount(ctx, guildId, userId, account, forcePrimary)
	if err != nil {
		log.Error().Err(err).Msg("Could not link account")
		return InternalError()
	}

	log.Info().Str("game", string(account.Game)).Int64("account", account.Id).Str("guild", guildId).Str("user", userId).Bool("primary", primary).Msg("Account linked")
	return AccountLinked(account, primary)
}

func (bot *Bot) accounts(ctx context.Context, guildId string, userId string) []Response {

	bindings, err := bot.database.Bindings(ctx, guildId, userId)
	if err != nil {
		log.Error().Err(err).Msg("Could not list accounts")
		return InternalError()
	}
	return AccountsMessage(bindings)
}

// primary finds the tracker and the account a command refers to. When it
// fails, the responses explain why
func (bot *Bot) primary(ctx context.Context, guildId string, userId string, game tracking.Game) (tracking.DailyReporter, tracking.Account, []Response) {

	reporter, err := bot.registry.Get(game)
	if err != nil {
		log.Warn().Err(err).Msg("Command for a game without tracker")
		return nil, tracking.Account{}, GameNotAvailable(game)
	}
	account, err := bot.database.PrimaryAccount(ctx, guildId, userId, game)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, tracking.Account{}, NoAccountLinked(game)
	}
	if err != nil {
		log.Error().Err(err).Msg("Could not read primary account")
		return nil, tracking.Account{}, InternalError()
	}
	return reporter, account, nil
}

// Games tracked across all their playlists have no queue to choose
func queueOrDefault(reporter tracking.DailyReporter, queue string) string {
	if queue == "" || reporter.DefaultQueue() == tracking.QueueAllPlaylists {
		return reporter.DefaultQueue()
	}
	return strings.ToUpper(queue)
}

func (bot *Bot) report(ctx context.Context, guildId string, userId string, arguments ReportArguments) []Response {

	reporter, account, responses := bot.primary(ctx, guildId, userId, arguments.Game)
	if responses != nil {
		return responses
	}
	result := reporter.DailyReport(ctx, account, queueOrDefault(reporter, arguments.Queue), bot.now())
	return ReportMessage(result)
}

func (bot *Bot) schedule(ctx context.Context, session Session, guildId string, userId string, arguments ScheduleArguments) []Response {

	reporter, account, responses := bot.primary(ctx, guildId, userId, arguments.Game)
	if responses != nil {
		return responses
	}

	var channelId, channelName string
	if arguments.Channel != "" {
		var err error
		channelId, channelName, err = bot.resolveChannel(session, guildId, arguments.Channel)
		if err != nil {
			log.Info().Err(err).Msg("Channel not found")
			return ChannelDoesNotExist(arguments.Channel)
		}
	}

	preference := schedule.Preference{
		GuildId:   guildId,
		UserId:    userId,
		AccountId: account.Id,
		Queue:     queueOrDefault(reporter, arguments.Queue),
		Schedule:  arguments.Schedule,
		ChannelId: channelId,
		Enabled:   true,
	}
	ok, err := bot.gate.UpsertPreference(ctx, preference, bot.capacity)
	if err != nil {
		log.Error().Err(err).Msg("Could not store preference")
		return InternalError()
	}
	if !ok {
		return ScheduleFull(preference.Schedule)
	}
	return ScheduleSaved(account, preference, channelName)
}

func (bot *Bot) unschedule(ctx context.Context, guildId string, userId string, arguments ReportArguments) []Response {

	reporter, account, responses := bot.primary(ctx, guildId, userId, arguments.Game)
	if responses != nil {
		return responses
	}
	queue := queueOrDefault(reporter, arguments.Queue)
	found, err := bot.gate.DisablePreference(ctx, schedule.Key{GuildId: guildId, UserId: userId, AccountId: account.Id, Queue: queue})
	if err != nil {
		log.Error().Err(err).Msg("Could not disable preference")
		return InternalError()
	}
	if !found {
		return NotScheduled(account, queue)
	}
	return Unscheduled(account, queue)
}

func (bot *Bot) schedules(ctx context.Context, guildId string, userId string) []Response {

	preferences, err := bot.gate.ListUserPreferences(ctx, guildId, userId)
	if err != nil {
		log.Error().Err(err).Msg("Could not list preferences")
		return InternalError()
	}
	accounts := make(map[int64]tracking.Account)
	for _, preference := range preferences {
		if _, ok := accounts[preference.AccountId]; ok {
			continue
		}
		account, err := bot.database.Account(ctx, preference.AccountId)
		if err != nil {
			log.Warn().Err(err).Int64("account", preference.AccountId).Msg("Preference without account")
			continue
		}
		accounts[preference.AccountId] = account
	}
	return PreferencesMessage(preferences, accounts)
}

// resolveChannel accepts a mention (<#id>) or a name (#name)
func (bot *Bot) resolveChannel(session Session, guildId string, channel string) (string, string, error) {

	if strings.HasPrefix(channel, "<#") && strings.HasSuffix(channel, ">") {
		channelId := channel[2 : len(channel)-1]
		channelName, err := bot.getChannelName(session, guildId, channelId)
		return channelId, channelName, err
	}
	channelName := strings.TrimPrefix(channel, "#")
	channelId, err := bot.getChannelId(session, guildId, channelName)
	return channelId, channelName, err
}

func (bot *Bot) getChannelName(session Session, guildid string, channelid string) (string, error) {

	channels, err := session.GuildChannels(guildid)
	if err != nil {
		return "", fmt.Errorf("could not extract list of channels of guild id %s: %w", guildid, err)
	}
	for _, ch := range channels {
		if ch.ID == channelid {
			return ch.Name, nil
		}
	}
	return "", fmt.Errorf("no channel name found for channel id %s", channelid)
}

func (bot *Bot) getChannelId(session Session, guildid string, channelName string) (string, error) {

	channels, err := session.GuildChannels(guildid)
	if err != nil {
		return "", fmt.Errorf("could not extract list of channels of guild id %s: %w", guildid, err)
	}
	for _, ch := range channels {
		if ch.Name == channelName {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("no channel id found for channel name %s", channelName)
}
