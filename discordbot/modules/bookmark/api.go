// Package bookmark provides bot module relaying message links to member direct messages
package bookmark

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/router"
)

const (
	defaultTitle = "Bookmark"

	messageNotFound = "You must either provide a valid message to bookmark, or reply to one." +
		"\n\nThe lookup strategy for a message is as follows (in order):" +
		"\n1. Lookup by '{channel ID}-{message ID}' (retrieved by shift-clicking on 'Copy ID')" +
		"\n2. Lookup by message ID (the message **must** have been sent after the bot last started)" +
		"\n3. Lookup by message URL"
)

var (
	// ErrNoTargetMessage is returned when neither argument nor reply reference a message
	ErrNoTargetMessage = router.NewUserInputError(messageNotFound)
	// ErrWrongChannel is returned when deleting message outside of invoking DM channel
	ErrWrongChannel = router.NewUserInputError(":x: You can only delete messages in your own DMs!")
	// ErrAlreadyBookmarked is returned when member already has bookmark for the message
	ErrAlreadyBookmarked = router.NewUserInputError("message is already bookmarked")
	// ErrGuildOnly is returned when bookmarking from direct messages
	ErrGuildOnly = router.NewCheckError("this command cannot be used in private messages")
	// ErrPrivateOnly is returned when deleting bookmark outside of direct messages
	ErrPrivateOnly = router.NewCheckError("this command can only be used in private messages")
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config  *bot.Configuration
	journal Journal
	m       sync.Mutex
}

func (mod *module) Name() string {
	return "bookmark"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	journal, err := OpenJournal(config.Config.Private.LogDB)
	if err != nil {
		return err
	}

	mod.journal = journal

	group := config.Router.Group("bookmarks").SetDescription("personal bookmarks in direct messages")

	group.OnAlias(
		"bookmark",
		"send yourself a link to the message, `bookmark delete` removes one in DMs",
		[]string{"bm", "pin"},
		true,
		mod.commandBookmark,
	).SetCooldown(router.NewCooldown(1, config.Config.Bookmark.Cooldown))

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	prefix, err := config.Repository.ConfigGet(guild.ID, "bookmarks", "prefix")
	if err != nil {
		config.Log.WithError(err).Error("Getting bookmarks prefix", guild.ID)

		return
	}

	if prefix != "" {
		config.SetPrefix(guild.ID, "bookmarks", prefix)
	}
}

func (mod *module) Shutdown(config *bot.Configuration) {
	mod.m.Lock()
	defer mod.m.Unlock()

	if mod.journal == nil {
		return
	}

	err := mod.journal.Close()
	if err != nil {
		config.Log.WithError(err).Error("Closing bookmark journal")
	}

	mod.journal = nopJournal{}
}

func (mod *module) getJournal() Journal {
	mod.m.Lock()
	defer mod.m.Unlock()

	if mod.journal == nil {
		return nopJournal{}
	}

	return mod.journal
}

func (mod *module) commandBookmark(ctx *router.Context) error {
	switch ctx.Args.Get(1) {
	case "delete", "del":
		return mod.commandDelete(ctx)
	}

	if ctx.IsPrivate() {
		return ErrGuildOnly
	}

	return mod.bookmark(ctx)
}
