package bookmark

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/router"
)

// collection is a single bookmark invocation waiting for reactions on its prompt
type collection struct {
	target    *discordgo.Message
	title     string
	channelID string
	prompt    *discordgo.Message
	claimed   map[string]struct{}
	emoji     string
	botID     string
	timeout   time.Duration
}

func (c *collection) accept(reaction *discordgo.MessageReaction) bool {
	if reaction.MessageID != c.prompt.ID {
		return false
	}

	if _, ok := c.claimed[reaction.UserID]; ok {
		return false
	}

	return reaction.Emoji.Name == c.emoji && reaction.UserID != c.botID
}

func (mod *module) bookmark(ctx *router.Context) error {
	target, consumed, err := mod.resolve(ctx, ctx.Args.Get(1))
	if err != nil {
		return err
	}

	title := ctx.Args.Join(1)
	if consumed {
		title = ctx.Args.Join(2)
	}

	if title == "" {
		title = defaultTitle
	}

	author := ctx.Message.Author

	perms, err := ctx.Session.UserChannelPermissions(author.ID, target.ChannelID)
	if err != nil {
		return err
	}

	if perms&discordgo.PermissionViewChannel == 0 {
		mod.config.Log.Infof("%s tried to bookmark a message in %s but has no permissions", author.ID, target.ChannelID)

		_, err = ctx.Session.ChannelMessageSendEmbed(
			ctx.Message.ChannelID,
			mod.errorEmbed(discord.Mention(author.ID)+" You don't have permission to view this channel."),
		)
		if err != nil {
			return err
		}

		return bot.ErrNoReply
	}

	err = mod.action(ctx.Ctx, ctx.Message.ChannelID, author.ID, target, title)
	if err != nil {
		mod.config.Log.WithError(err).WithField("member", author.ID).Error("Sending bookmark")
	}

	prompt, err := ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, mod.promptEmbed(ctx.Message))
	if err != nil {
		return err
	}

	c := &collection{
		target:    target,
		title:     title,
		channelID: ctx.Message.ChannelID,
		prompt:    prompt,
		claimed:   map[string]struct{}{author.ID: {}},
		emoji:     mod.config.Config.Bookmark.Emoji,
		timeout:   mod.config.Config.Bookmark.Timeout,
	}

	if me := mod.config.Discord.Me(); me != nil {
		c.botID = me.ID
	}

	events := make(chan *discordgo.MessageReaction)
	done := make(chan struct{})

	remove := mod.config.Discord.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.MessageReaction == nil || r.MessageID != prompt.ID {
			return
		}

		select {
		case events <- r.MessageReaction:
		case <-done:
		}
	})

	err = ctx.Session.MessageReactionAdd(prompt.ChannelID, prompt.ID, c.emoji)
	if err != nil {
		mod.config.Log.WithError(err).Error("Adding prompt reaction")
	}

	mod.config.Go(func(ctx context.Context) error {
		defer func() {
			remove()
			close(done)
			mod.deletePrompt(c)
		}()

		return mod.collect(ctx, c, events)
	})

	return nil
}

// collect accepts reactions until none arrives within timeout
func (mod *module) collect(ctx context.Context, c *collection, events <-chan *discordgo.MessageReaction) error {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			mod.config.Log.WithField("prompt", c.prompt.ID).Debug("Timed out waiting for a reaction")

			return nil
		case reaction := <-events:
			if !c.accept(reaction) {
				continue
			}

			err := mod.action(ctx, c.channelID, reaction.UserID, c.target, c.title)
			if err != nil {
				mod.config.Log.WithError(err).WithField("member", reaction.UserID).Error("Sending bookmark")
			}

			err = mod.config.Discord.MessageReactionRemove(
				c.prompt.ChannelID,
				c.prompt.ID,
				reaction.Emoji.APIName(),
				reaction.UserID,
			)
			if err != nil {
				mod.config.Log.WithError(err).WithField("member", reaction.UserID).Error("Removing reaction")
			}

			c.claimed[reaction.UserID] = struct{}{}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}

			timer.Reset(c.timeout)
		}
	}
}

func (mod *module) deletePrompt(c *collection) {
	err := mod.config.Discord.ChannelMessageDelete(c.prompt.ChannelID, c.prompt.ID)
	if err != nil && !discord.IsNotFound(err) {
		mod.config.Log.WithError(err).WithField("prompt", c.prompt.ID).Error("Deleting bookmark prompt")
	}
}

// action sends bookmark to member, reporting closed DMs and duplicates in channel
func (mod *module) action(ctx context.Context, channelID, memberID string, target *discordgo.Message, title string) error {
	err := mod.send(ctx, memberID, target, title)

	var desc string

	switch {
	case err == nil:
		mod.config.Log.Infof("%s bookmarked %s with title '%s'", memberID, discord.MessageJumpURL(target), title)

		return nil
	case discord.IsForbidden(err):
		desc = discord.Mention(memberID) + ", please enable your DMs to receive the bookmark."
	case errors.Is(err, ErrAlreadyBookmarked):
		desc = discord.Mention(memberID) + ", you have already bookmarked this message!"
	default:
		return err
	}

	_, err = mod.config.Discord.ChannelMessageSendEmbed(channelID, mod.errorEmbed(desc))

	return err
}

// send delivers bookmark DM and records target message id in member list
func (mod *module) send(ctx context.Context, memberID string, target *discordgo.Message, title string) error {
	targetID, err := discord.ParseID(target.ID)
	if err != nil {
		return err
	}

	has, err := mod.config.Repository.HasBookmark(memberID, targetID)
	if err != nil {
		return err
	}

	if has {
		return ErrAlreadyBookmarked
	}

	channel, err := mod.config.Discord.UserChannelCreate(memberID)
	if err != nil {
		return err
	}

	_, err = mod.config.Discord.ChannelMessageSendEmbed(channel.ID, mod.bookmarkEmbed(target, title))
	if err != nil {
		return err
	}

	added, err := mod.config.Repository.BookmarkAdd(memberID, targetID)
	if err != nil {
		return err
	}

	if !added {
		mod.config.Log.WithField("member", memberID).WithField("msg", target.ID).Warn("Bookmark was added concurrently")

		return nil
	}

	err = mod.getJournal().Record(ctx, &Entry{
		MemberID:  memberID,
		MessageID: target.ID,
		ChannelID: target.ChannelID,
		GuildID:   target.GuildID,
		Title:     title,
	})
	if err != nil {
		mod.config.Log.WithError(err).Error("Recording bookmark")
	}

	return nil
}
