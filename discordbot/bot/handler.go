package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/router"
)

// guild returns server entry, caller must hold bot.m write lock
func (bot *Bot) guild(guildID string) *server {
	s, ok := bot.servers[guildID]
	if !ok {
		s = &server{
			prefixes: map[string]string{
				"": bot.Config.Private.Prefix,
			},
		}

		bot.servers[guildID] = s
	}

	return s
}

func (bot *Bot) prefixes(guildID string) map[string]string {
	bot.m.Lock()
	defer bot.m.Unlock()

	s := bot.guild(guildID)

	prefixes := make(map[string]string, len(s.prefixes))
	for k, v := range s.prefixes {
		prefixes[k] = v
	}

	return prefixes
}

func (bot *Bot) selfID() string {
	if me := bot.Discord.Me(); me != nil {
		return me.ID
	}

	return ""
}

func (bot *Bot) dispatch(msg *discordgo.Message) {
	err := bot.Router.Dispatch(bot.ctx, bot.Discord, bot.prefixes(msg.GuildID), bot.selfID(), msg)
	if err != nil && err != router.ErrNotMatched {
		bot.Log.WithError(err).Debug("Dispatching message", msg.ID)
	}
}

func (bot *Bot) handlerMessageCreate(_ *discordgo.Session, messageCreate *discordgo.MessageCreate) {
	bot.dispatch(messageCreate.Message)
}

func (bot *Bot) handlerMessageUpdate(_ *discordgo.Session, messageUpdate *discordgo.MessageUpdate) {
	if messageUpdate.Message == nil || messageUpdate.Author == nil {
		return
	}

	msg, err := bot.Discord.ChannelMessage(messageUpdate.ChannelID, messageUpdate.ID)
	if err != nil {
		bot.Log.WithError(err).Error("Getting message", messageUpdate.ID)
		return
	}

	for _, r := range msg.Reactions {
		if r.Me {
			return
		}
	}

	if messageUpdate.Message.EditedTimestamp == nil {
		t := time.Now()
		messageUpdate.Message.EditedTimestamp = &t
	}

	bot.dispatch(messageUpdate.Message)
}

func (bot *Bot) handlerConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	bot.ready.Close()
}

func (bot *Bot) handlerGuildCreate(_ *discordgo.Session, guildCreate *discordgo.GuildCreate) {
	bot.configure(guildCreate.Guild)

	for _, m := range bot.Modules {
		m.Configure(&bot.Configuration, guildCreate.Guild)
	}

	err := bot.Discord.RequestGuildMembers(guildCreate.ID, "", 0, "", false)
	if err != nil {
		bot.Log.WithError(err).Error("requesting members", guildCreate.ID)
	}

	bot.guildAvailable(guildCreate.Guild)
}

func (bot *Bot) handlerGuildDelete(_ *discordgo.Session, guildDelete *discordgo.GuildDelete) {
	if guildDelete.Guild == nil || guildDelete.ID != bot.Config.Private.GuildID {
		return
	}

	if guildDelete.Unavailable {
		bot.ready.Close()
	}
}

// guildAvailable opens readiness gate once home guild state cache is populated
func (bot *Bot) guildAvailable(guild *discordgo.Guild) {
	if guild.ID != bot.Config.Private.GuildID || guild.Unavailable {
		return
	}

	cached, err := bot.Discord.CachedGuild(guild.ID)
	if err != nil || len(cached.Roles) == 0 || len(cached.Members) == 0 || len(cached.Channels) == 0 {
		bot.Log.Warn("Guild available event was dispatched but the cache appears to still be empty!")
		return
	}

	bot.ready.Open()
}
