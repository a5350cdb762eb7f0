// Package cleanup provides bot module for automated removal of bot replies
package cleanup

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/router"
)

// New provides module instance
func New() bot.Module {
	return &module{
		cleanupDelay: make(map[string]time.Duration),
	}
}

type module struct {
	cleanupDelay map[string]time.Duration
	config       *bot.Configuration
	m            sync.RWMutex
}

func (mod *module) Name() string {
	return "cleanup"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.AppendMiddleware(mod.middlewareCleanup)

	config.Go(mod.start)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	s, err := config.Repository.ConfigGet(guild.ID, "cleanup", "delay")
	if err != nil {
		config.Log.WithError(err).Error("Getting cleanup delay")
		return
	}

	mod.m.Lock()
	defer mod.m.Unlock()

	if s == "" {
		delete(mod.cleanupDelay, guild.ID)
		return
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		config.Log.WithError(err).WithField("guild", guild.ID).Error("Parsing delay value")
		return
	}

	mod.cleanupDelay[guild.ID] = v
}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func (mod *module) delay(guildID string) time.Duration {
	mod.m.RLock()
	defer mod.m.RUnlock()

	return mod.cleanupDelay[guildID]
}

func (mod *module) middlewareCleanup(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		origerr := handler(ctx)

		delay := mod.delay(ctx.Message.GuildID)
		if delay <= 0 {
			return origerr
		}

		for _, r := range ctx.Replies() {
			_, _, err := mod.config.Repository.TaskEnqueue(&Task{
				GuildID:   r.Response.GuildID,
				ChannelID: r.Response.ChannelID,
				MessageID: r.Response.ID,
			}, delay, 0)
			if err != nil {
				mod.config.Log.WithError(err).WithField("response", r.Response.ID).Error("Enqueueing response cleanup")
			}
		}

		return origerr
	}
}
