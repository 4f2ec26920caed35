package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Session is the part of a discord session the bot talks through
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
}

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

type Response interface {
	Send(channelid string, session Session) error
}

func (response ResponseString) Send(channelid string, session Session) error {
	if _, err := session.ChannelMessageSend(channelid, response.string); err != nil {
		log.Error().Err(err).Str("channel", channelid).Msg("Could not send message")
		return err
	}
	return nil
}

func (response ResponseEmbed) Send(channelid string, session Session) error {
	if _, err := session.ChannelMessageSendEmbed(channelid, &response.MessageEmbed); err != nil {
		log.Error().Err(err).Str("channel", channelid).Msg("Could not send embed")
		return err
	}
	return nil
}

// sendResponses stops at the first failure
func sendResponses(session Session, channelId string, responses []Response) error {
	for _, response := range responses {
		if err := response.Send(channelId, session); err != nil {
			return err
		}
	}
	return nil
}
