package bookmark

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/router"
)

// resolve finds target message from argument, falling back to reply reference.
// Returned flag is true when argument was consumed as message reference.
func (mod *module) resolve(ctx *router.Context, arg string) (*discordgo.Message, bool, error) {
	if arg != "" {
		ref, err := discord.ParseMessageRef(arg)
		if err == nil {
			msg, err := mod.lookup(ctx, ref)
			if err == nil {
				return msg, true, nil
			}

			mod.config.Log.WithError(err).WithField("arg", arg).Debug("Message lookup failed")
		}
	}

	if ctx.Message.ReferencedMessage != nil {
		msg := *ctx.Message.ReferencedMessage

		// nested referenced_message payload carries no guild_id
		if msg.GuildID == "" && ctx.Message.MessageReference != nil {
			msg.GuildID = ctx.Message.MessageReference.GuildID
		}

		if msg.GuildID == "" {
			msg.GuildID = ctx.Message.GuildID
		}

		return &msg, false, nil
	}

	if ref := ctx.Message.MessageReference; ref != nil && ref.MessageID != "" {
		channelID := ref.ChannelID
		if channelID == "" {
			channelID = ctx.Message.ChannelID
		}

		msg, err := mod.lookup(ctx, discord.MessageRef{
			GuildID:   ref.GuildID,
			ChannelID: channelID,
			MessageID: ref.MessageID,
		})
		if err == nil {
			return msg, false, nil
		}

		mod.config.Log.WithError(err).WithField("msg", ref.MessageID).Debug("Reply lookup failed")
	}

	return nil, false, ErrNoTargetMessage
}

func (mod *module) lookup(ctx *router.Context, ref discord.MessageRef) (*discordgo.Message, error) {
	if ref.ChannelID == "" {
		return ctx.Session.CachedMessage(ctx.Message.GuildID, ctx.Message.ChannelID, ref.MessageID)
	}

	msg, err := ctx.Session.ChannelMessage(ref.ChannelID, ref.MessageID)
	if err != nil {
		return nil, err
	}

	if msg.GuildID == "" {
		msg.GuildID = ref.GuildID
	}

	if msg.GuildID == "" {
		if ch, err := ctx.Session.CachedChannel(msg.ChannelID); err == nil {
			msg.GuildID = ch.GuildID
		}
	}

	return msg, nil
}

// bookmarkedID extracts original message id from bookmark DM embed link
func bookmarkedID(msg *discordgo.Message) (string, bool) {
	for _, embed := range msg.Embeds {
		for _, field := range embed.Fields {
			start := strings.Index(field.Value, "](")
			end := strings.LastIndex(field.Value, ")")

			if start < 0 || end <= start+2 {
				continue
			}

			if id, ok := discord.MessageIDFromURL(field.Value[start+2 : end]); ok {
				return id, true
			}
		}
	}

	return "", false
}
