// Package discord provides the subset of the gateway client used by the bot
package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Session is implemented by *discordgo.Session wrapped with Wrap, and by fakes in tests
type Session interface {
	// Open creates a websocket connection to Discord
	Open() error
	// Close closes the websocket connection to Discord
	Close() error
	// AddHandler registers event handler, returned function removes it
	AddHandler(handler interface{}) func()

	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	UserChannelPermissions(userID, channelID string, options ...discordgo.RequestOption) (int64, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(
		channelID, messageID, emojiID, userID string,
		options ...discordgo.RequestOption,
	) error
	RequestGuildMembers(guildID, query string, limit int, nonce string, presences bool) error

	// Me returns bot user, nil before ready
	Me() *discordgo.User
	// CachedGuild returns guild from state cache
	CachedGuild(guildID string) (*discordgo.Guild, error)
	// CachedChannel returns channel from state cache
	CachedChannel(channelID string) (*discordgo.Channel, error)
	// CachedMessage looks message up in state message cache of the guild channels
	CachedMessage(guildID, channelID, messageID string) (*discordgo.Message, error)
}

type session struct {
	*discordgo.Session
}

// Wrap adapts discordgo session to Session interface
func Wrap(s *discordgo.Session) Session {
	return &session{Session: s}
}

func (s *session) Me() *discordgo.User {
	if s.State == nil {
		return nil
	}

	return s.State.User
}

func (s *session) CachedGuild(guildID string) (*discordgo.Guild, error) {
	return s.State.Guild(guildID)
}

func (s *session) CachedChannel(channelID string) (*discordgo.Channel, error) {
	return s.State.Channel(channelID)
}

func (s *session) CachedMessage(guildID, channelID, messageID string) (*discordgo.Message, error) {
	if msg, err := s.State.Message(channelID, messageID); err == nil {
		return msg, nil
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, discordgo.ErrStateNotFound
	}

	for _, c := range guild.Channels {
		if c.ID == channelID {
			continue
		}

		if msg, err := s.State.Message(c.ID, messageID); err == nil {
			return msg, nil
		}
	}

	for _, c := range guild.Threads {
		if msg, err := s.State.Message(c.ID, messageID); err == nil {
			return msg, nil
		}
	}

	return nil, discordgo.ErrStateNotFound
}
