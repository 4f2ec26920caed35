package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ranktrack/internal/schedule"
	"ranktrack/internal/tracking"
)

// Use "teal" color for the bot
const color int = 0x008080

const notAvailable = "Not available"

var gameNames = map[tracking.Game]string{
	tracking.GameLeague:       "League of Legends",
	tracking.GameValorant:     "Valorant",
	tracking.GameApex:         "Apex Legends",
	tracking.GameRocketLeague: "Rocket League",
}

// Units of the points of tiered games
var pointUnits = map[tracking.Game]string{
	tracking.GameLeague:   "LP",
	tracking.GameValorant: "RR",
}

func GameName(game tracking.Game) string {
	if name, ok := gameNames[game]; ok {
		return name
	}
	return string(game)
}

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func PrivateMessagesIgnored() []Response {
	return []Response{ResponseString{"For the time being, I am ignoring private messages"}}
}

func HelpMessage() []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	commands := []struct{ name, value string }{
		{"`ranktrack link <game> <account>`", "Link a game account to you in this server. Riot accounts are `name#tag`, Apex accounts `name [platform]`, Rocket League accounts the Epic id"},
		{"`ranktrack primary <game> <account>`", "Link an account and make it the one used for that game"},
		{"`ranktrack accounts`", "Print the accounts linked to you in this server"},
		{"`ranktrack report <game> [queue]`", "Print how the rank of your account changed since the first reading of today"},
		{"`ranktrack schedule <game> <HH:MM> [queue] [#channel]`", "Receive the daily report every day at the given UTC time, in a channel or as a direct message"},
		{"`ranktrack unschedule <game> [queue]`", "Stop receiving a daily report"},
		{"`ranktrack schedules`", "Print your daily reports in this server"},
		{"`ranktrack help`", "Print the usage of the different commands"},
	}
	for _, command := range commands {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: command.name, Value: command.value, Inline: false})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Games: lol, valorant, apex, rocket"}
	return []Response{ResponseEmbed{embed}}
}

func NoResponseProvider(game tracking.Game, input string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Could not find `%s` in %s", input, GameName(game))}}
}

func AccountLinked(account tracking.Account, primary bool) []Response {
	content := fmt.Sprintf("Account `%s` has been linked for %s", account, GameName(account.Game))
	if primary {
		content += " and is now your primary account"
	}
	return []Response{ResponseString{content}}
}

func NoAccountLinked(game tracking.Game) []Response {
	return []Response{ResponseString{fmt.Sprintf("You have no %s account linked in this server, use `ranktrack link`", GameName(game))}}
}

func GameNotAvailable(game tracking.Game) []Response {
	return []Response{ResponseString{fmt.Sprintf("%s is not available in this bot", GameName(game))}}
}

func InternalError() []Response {
	return []Response{ResponseString{"Something went wrong, try again later"}}
}

func AccountsMessage(bindings []Binding) []Response {

	embed := discordgo.MessageEmbed{Title: "Linked accounts", Color: color}
	if len(bindings) == 0 {
		embed.Description = "None"
		return []Response{ResponseEmbed{embed}}
	}
	lines := map[tracking.Game][]string{}
	for _, binding := range bindings {
		line := binding.Account.String()
		if binding.Primary {
			line += " (primary)"
		}
		lines[binding.Account.Game] = append(lines[binding.Account.Game], line)
	}
	for _, game := range tracking.Games {
		if len(lines[game]) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   GameName(game),
			Value:  strings.Join(lines[game], "\n"),
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{embed}}
}

func ScheduleSaved(account tracking.Account, preference schedule.Preference, channelName string) []Response {
	target := "as a direct message"
	if channelName != "" {
		target = fmt.Sprintf("in `%s`", channelName)
	}
	return []Response{ResponseString{fmt.Sprintf("The daily report of `%s` (%s) will be sent at %s UTC %s", account, preference.Queue, preference.Schedule, target)}}
}

func ScheduleFull(slot string) []Response {
	return []Response{ResponseString{fmt.Sprintf("There is no room left at %s UTC in this server, pick another time", slot)}}
}

func Unscheduled(account tracking.Account, queue string) []Response {
	return []Response{ResponseString{fmt.Sprintf("The daily report of `%s` (%s) has been stopped", account, queue)}}
}

func NotScheduled(account tracking.Account, queue string) []Response {
	return []Response{ResponseString{fmt.Sprintf("There was no daily report for `%s` (%s)", account, queue)}}
}

func ChannelDoesNotExist(channelName string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Channel `%s` does not exist in this server", channelName)}}
}

// PreferencesMessage lists preferences next to the accounts they refer to
func PreferencesMessage(preferences []schedule.Preference, accounts map[int64]tracking.Account) []Response {

	embed := discordgo.MessageEmbed{Title: "Daily reports", Color: color}
	if len(preferences) == 0 {
		embed.Description = "None"
		return []Response{ResponseEmbed{embed}}
	}
	for _, preference := range preferences {
		account := accounts[preference.AccountId]
		status := "enabled"
		if !preference.Enabled {
			status = "disabled"
		}
		target := "direct message"
		if preference.ChannelId != "" {
			target = fmt.Sprintf("<#%s>", preference.ChannelId)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s (%s)", account, GameName(account.Game)),
			Value:  fmt.Sprintf("%s at %s UTC, %s, %s", preference.Queue, preference.Schedule, target, status),
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{embed}}
}

// ReportMessage renders any daily report
func ReportMessage(result tracking.Result) []Response {

	var embed discordgo.MessageEmbed
	switch report := result.(type) {
	case tracking.TieredReport:
		embed = reportEmbed(report.Game, report.Account, report.Queue, report.Day)
		addTieredFields(&embed, report)
	case tracking.LadderReport:
		embed = reportEmbed(report.Game, report.Account, report.Queue, report.Day)
		addLadderFields(&embed, report)
	case tracking.PlaylistReport:
		embed = reportEmbed(report.Game, report.Account, report.Queue, report.Day)
		addPlaylistFields(&embed, report)
	default:
		panic(fmt.Sprintf("unexpected type of report %T", result))
	}
	return []Response{ResponseEmbed{embed}}
}

func reportEmbed(game tracking.Game, account tracking.Account, queue string, day string) discordgo.MessageEmbed {
	return discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Daily report of `%s`", account),
		Description: fmt.Sprintf("%s, %s, %s", GameName(game), queue, day),
		Color:       color,
	}
}

func field(name string, value string) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: false}
}

func signed(value int) string {
	return fmt.Sprintf("%+d", value)
}

func TieredRankValue(rank tracking.TieredRank, unit string) string {
	value := strings.TrimSpace(rank.Tier + " " + rank.Division)
	if rank.Points != nil {
		value += fmt.Sprintf(" %d %s", *rank.Points, unit)
	}
	if rank.Wins != nil && rank.Losses != nil {
		value += fmt.Sprintf(" (%dW/%dL)", *rank.Wins, *rank.Losses)
	}
	return value
}

func addTieredFields(embed *discordgo.MessageEmbed, report tracking.TieredReport) {

	unit := pointUnits[report.Game]
	baseline, current := notAvailable, notAvailable
	if report.Baseline != nil {
		baseline = TieredRankValue(report.Baseline.Rank, unit)
	}
	if report.Current != nil {
		current = TieredRankValue(*report.Current, unit)
	}
	embed.Fields = append(embed.Fields, field("Start of the day", baseline), field("Now", current))
	if report.Baseline == nil || report.Current == nil {
		return
	}

	change := "Points unknown"
	if report.Diff.PointsKnown {
		change = fmt.Sprintf("%s %s", signed(report.Diff.PointsDiff), unit)
	}
	if report.Diff.RankChange != "" {
		change += fmt.Sprintf("\n%s (%s)", report.Diff.RankChange, report.Diff.Movement)
	} else if report.Diff.Movement != tracking.MovementNone {
		change += fmt.Sprintf("\nDivision %s", report.Diff.Movement)
	}
	embed.Fields = append(embed.Fields, field("Change", change))
}

func LadderRankValue(rank tracking.LadderRank) string {
	value := rank.Name
	if rank.Division != nil && *rank.Division != 0 {
		value += fmt.Sprintf(" %d", *rank.Division)
	}
	if rank.Score != nil {
		value += fmt.Sprintf(" %d RP", *rank.Score)
	}
	if rank.Position != nil {
		value += fmt.Sprintf(" (#%d)", *rank.Position)
	}
	return strings.TrimSpace(value)
}

func addLadderFields(embed *discordgo.MessageEmbed, report tracking.LadderReport) {

	baseline, current := notAvailable, notAvailable
	if report.Baseline != nil {
		baseline = LadderRankValue(report.Baseline.Rank)
	}
	if report.Current != nil {
		current = LadderRankValue(*report.Current)
	}
	embed.Fields = append(embed.Fields, field("Start of the day", baseline), field("Now", current))
	if report.Baseline == nil || report.Current == nil {
		return
	}

	change := "Score unknown"
	if report.Diff.ScoreKnown {
		change = fmt.Sprintf("%s RP", signed(report.Diff.ScoreDiff))
	}
	if report.Diff.PositionDiff != nil {
		change += fmt.Sprintf("\nLadder position %s", signed(*report.Diff.PositionDiff))
	}
	if report.Diff.RankChange != "" {
		change += "\n" + report.Diff.RankChange
	}
	embed.Fields = append(embed.Fields, field("Change", change))
}

func PlaylistRankValue(rank tracking.PlaylistRank) string {
	value := strings.TrimSpace(rank.Rank + " " + rank.Division)
	if rank.Mmr != nil {
		value += fmt.Sprintf(" %d MMR", *rank.Mmr)
	}
	return strings.TrimSpace(value)
}

func addPlaylistFields(embed *discordgo.MessageEmbed, report tracking.PlaylistReport) {

	if report.Current == nil {
		baseline := notAvailable
		if report.Baseline != nil {
			playlists := make([]string, 0, len(report.Baseline.Rank))
			for _, rank := range report.Baseline.Rank {
				playlists = append(playlists, fmt.Sprintf("%s: %s", rank.Playlist, PlaylistRankValue(rank)))
			}
			baseline = strings.Join(playlists, "\n")
		}
		embed.Fields = append(embed.Fields, field("Start of the day", baseline), field("Now", notAvailable))
		return
	}

	diffs := make(map[string]tracking.PlaylistDiff, len(report.Diff))
	for _, diff := range report.Diff {
		diffs[diff.Playlist] = diff
	}
	for _, rank := range *report.Current {
		value := PlaylistRankValue(rank)
		diff, ok := diffs[rank.Playlist]
		switch {
		case !ok:
		case diff.BaselineMissing:
			value += "\nFirst reading of the day"
		default:
			if diff.MmrDiff != nil {
				value += fmt.Sprintf("\n%s MMR", signed(*diff.MmrDiff))
			}
			if diff.RankChange != "" {
				value += "\n" + diff.RankChange
			}
		}
		embed.Fields = append(embed.Fields, field(rank.Playlist, value))
	}
}

// ReportText renders a daily report as plain text, for terminals
func ReportText(result tracking.Result) string {
	var builder strings.Builder
	for _, response := range ReportMessage(result) {
		embed, ok := response.(ResponseEmbed)
		if !ok {
			continue
		}
		builder.WriteString(strings.ReplaceAll(embed.Title, "`", ""))
		builder.WriteString("\n")
		builder.WriteString(embed.Description)
		builder.WriteString("\n")
		for _, field := range embed.Fields {
			builder.WriteString(fmt.Sprintf("\n%s:\n", field.Name))
			for _, line := range strings.Split(field.Value, "\n") {
				builder.WriteString("  " + line + "\n")
			}
		}
	}
	return builder.String()
}
