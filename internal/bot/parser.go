package bot

import (
	"fmt"
	"strings"

	"github.com/gookit/validate"
	"github.com/rs/zerolog/log"

	"ranktrack/internal/schedule"
	"ranktrack/internal/tracking"
)

const prefix string = "ranktrack"

const (
	COMMAND_LINK       = iota
	COMMAND_PRIMARY    = iota
	COMMAND_ACCOUNTS   = iota
	COMMAND_REPORT     = iota
	COMMAND_SCHEDULE   = iota
	COMMAND_UNSCHEDULE = iota
	COMMAND_SCHEDULES  = iota
	COMMAND_HELP       = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_NO_INPUT               = iota
	PARSEID_GAME_NOT_RECOGNISED    = iota
	PARSEID_NOT_A_SCHEDULE         = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires more arguments",
	PARSEID_GAME_NOT_RECOGNISED:    "Game `%s` not recognised. Use one of lol, valorant, apex, rocket",
	PARSEID_NOT_A_SCHEDULE:         "Time `%s` is not valid, use HH:MM in UTC, for example 09:30",
}

type LinkArguments struct {
	Game  tracking.Game
	Input string
}

type ReportArguments struct {
	Game  tracking.Game
	Queue string
}

type ScheduleArguments struct {
	Game     tracking.Game
	Schedule string `validate:"required|clock"`
	Queue    string
	Channel  string
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func init() {
	validate.AddValidator("clock", func(val interface{}) bool {
		text, ok := val.(string)
		return ok && schedule.ValidSchedule(text)
	})
}

func Parse(message string) ParseResult {

	noInput := func(command int, commandString string) ParseResult {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(message[len(prefix):])
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]

	// Match the command

	switch commandString {
	case "link", "primary":
		// ranktrack link <game> <account>
		command := COMMAND_LINK
		if commandString == "primary" {
			command = COMMAND_PRIMARY
		}
		if len(words) < 2 {
			return noInput(command, commandString)
		}
		game, result, ok := parseGame(command, words[0])
		if !ok {
			return result
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: LinkArguments{Game: game, Input: strings.Join(words[1:], " ")}}
	case "accounts":
		// ranktrack accounts
		return ParseResult{command: COMMAND_ACCOUNTS, parseid: PARSEID_OK}
	case "report", "unschedule":
		// ranktrack report <game> [queue]
		command := COMMAND_REPORT
		if commandString == "unschedule" {
			command = COMMAND_UNSCHEDULE
		}
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		game, result, ok := parseGame(command, words[0])
		if !ok {
			return result
		}
		arguments := ReportArguments{Game: game}
		if len(words) > 1 {
			arguments.Queue = words[1]
		}
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: arguments}
	case "schedule":
		// ranktrack schedule <game> <HH:MM> [queue] [#channel]
		command := COMMAND_SCHEDULE
		if len(words) < 2 {
			return noInput(command, commandString)
		}
		return parseSchedule(command, words)
	case "schedules":
		// ranktrack schedules
		return ParseResult{command: COMMAND_SCHEDULES, parseid: PARSEID_OK}
	case "help":
		// ranktrack help
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
}

func parseGame(command int, word string) (tracking.Game, ParseResult, bool) {
	game, ok := tracking.ParseGame(word)
	if !ok {
		parseid := PARSEID_GAME_NOT_RECOGNISED
		return "", ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], word)}, false
	}
	return game, ParseResult{}, true
}

func parseSchedule(command int, words []string) ParseResult {

	game, result, ok := parseGame(command, words[0])
	if !ok {
		return result
	}
	arguments := ScheduleArguments{Game: game, Schedule: words[1]}
	for _, word := range words[2:] {
		// Channels are either mentions (<#id>) or names prefixed with #
		if strings.HasPrefix(word, "<#") || strings.HasPrefix(word, "#") {
			arguments.Channel = word
		} else if arguments.Queue == "" {
			arguments.Queue = word
		}
	}

	if v := validate.Struct(&arguments); !v.Validate() {
		parseid := PARSEID_NOT_A_SCHEDULE
		log.Debug().Msg(fmt.Sprintf("Schedule arguments not valid: %s", v.Errors.One()))
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], arguments.Schedule)}
	}
	return ParseResult{command: command, parseid: PARSEID_OK, arguments: arguments}
}
