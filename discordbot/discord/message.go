package discord

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrInvalidReference is returned when argument does not look like a message reference
	ErrInvalidReference = errors.New("invalid message reference")
)

var (
	snowflakeRegexp = regexp.MustCompile(`^\d{15,21}$`)
	pairRegexp      = regexp.MustCompile(`^(\d{15,21})-(\d{15,21})$`)
	urlRegexp       = regexp.MustCompile(
		`^<?https?://(?:(?:ptb|canary|www)\.)?discord(?:app)?\.com/channels/(\d{15,21}|@me)/(\d{15,21})/(\d{15,21})/?>?$`,
	)
)

// MessageRef identifies a message, ChannelID and GuildID may be empty
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// ParseMessageRef parses "{channel}-{message}", bare "{message}" or message URL forms
func ParseMessageRef(raw string) (MessageRef, error) {
	raw = strings.TrimSpace(raw)

	if m := pairRegexp.FindStringSubmatch(raw); m != nil {
		return MessageRef{ChannelID: m[1], MessageID: m[2]}, nil
	}

	if snowflakeRegexp.MatchString(raw) {
		return MessageRef{MessageID: raw}, nil
	}

	if m := urlRegexp.FindStringSubmatch(raw); m != nil {
		guildID := m[1]
		if guildID == "@me" {
			guildID = ""
		}

		return MessageRef{GuildID: guildID, ChannelID: m[2], MessageID: m[3]}, nil
	}

	return MessageRef{}, ErrInvalidReference
}

// JumpURL returns link to the message
func JumpURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}

	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}

// MessageJumpURL returns link to the message
func MessageJumpURL(msg *discordgo.Message) string {
	return JumpURL(msg.GuildID, msg.ChannelID, msg.ID)
}

// MessageIDFromURL extracts message id from a message link
func MessageIDFromURL(raw string) (string, bool) {
	m := urlRegexp.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	return m[3], true
}

// ParseID converts snowflake string into integer
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// IsForbidden reports whether REST error means the recipient does not accept messages
func IsForbidden(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}

	if rest.Message != nil && rest.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return true
	}

	return rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether REST error means the entity is gone
func IsNotFound(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return false
	}

	return rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// Mention returns user mention string
func Mention(userID string) string {
	return "<@" + userID + ">"
}

// DisplayName returns member nick or user name
func DisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}

	if user == nil {
		return ""
	}

	if user.GlobalName != "" {
		return user.GlobalName
	}

	return user.Username
}
