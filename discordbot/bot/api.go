// Package bot provides main bot implementation
package bot

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/model"
	"github.com/eientei/seasonalbot/discordbot/router"

	"github.com/bwmarrin/discordgo"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
)

// ErrNoReply special error value to avoid auto-reply
var ErrNoReply = errors.New("noreply")

// Options provide configuration options for bot
type Options struct {
	Discord discord.Session
	Client  *redis.Client
	HTTP    *http.Client
	Config  *config.Root
	Log     *logrus.Logger
	Modules []Module
}

// Configuration store configuration for bot
type Configuration struct {
	Discord    discord.Session
	Client     *redis.Client
	HTTP       *http.Client
	Config     *config.Root
	Log        *logrus.Logger
	Router     *router.Router
	Repository *model.Repository
	bot        *Bot
	Modules    []Module
}

// SetPrefix sets guild prefix for module
func (conf *Configuration) SetPrefix(guildID, mod, prefix string) {
	conf.bot.m.Lock()
	defer conf.bot.m.Unlock()

	conf.bot.guild(guildID).prefixes[mod] = prefix
}

// Ready returns readiness gate of the home guild
func (conf *Configuration) Ready() *Gate {
	return conf.bot.ready
}

// Go runs fn in background, bot waits for it on shutdown and cancels its context
func (conf *Configuration) Go(fn func(ctx context.Context) error) {
	conf.bot.workers.Go(func() error {
		err := fn(conf.bot.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			conf.Log.WithError(err).Error("Background worker failed")
		}

		return nil
	})
}

func containsString(s string, ss ...string) bool {
	for _, ri := range ss {
		if ri == s {
			return true
		}
	}

	return false
}

// HasPermission returns true if message author is guild owner, has channel permissions or matching role
func (conf *Configuration) HasPermission(
	msg *discordgo.Message,
	permissions int64,
	roleIDs, roleNames []string,
) bool {
	if msg.Author == nil || msg.GuildID == "" {
		return false
	}

	guild, _ := conf.Discord.CachedGuild(msg.GuildID)
	if guild != nil && guild.OwnerID == msg.Author.ID {
		return true
	}

	if permissions != 0 {
		perms, err := conf.Discord.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
		if err != nil {
			conf.Log.WithError(err).Error("Loading permissions", msg.ChannelID, msg.Author.ID)
		}

		if perms&permissions != 0 {
			return true
		}
	}

	if msg.Member == nil {
		return false
	}

	admrole, _ := conf.Repository.ConfigGet(msg.GuildID, "auth", "admin.role")

	for _, r := range msg.Member.Roles {
		if permissions&discordgo.PermissionAdministrator != 0 && r == admrole {
			return true
		}

		if containsString(r, roleIDs...) {
			return true
		}

		if guild == nil || len(roleNames) == 0 {
			continue
		}

		for _, role := range guild.Roles {
			if role.ID == r && containsString(role.Name, roleNames...) {
				return true
			}
		}
	}

	return false
}

// Reload provides config reloading interface to modules
func (conf *Configuration) Reload() {
	conf.bot.Reload()
}

func (bot *Bot) configure(guild *discordgo.Guild) {
	prefix, err := bot.Repository.ConfigGet(guild.ID, "global", "prefix")
	if err != nil {
		bot.Log.WithError(err).Error("Getting server prefix", guild.ID)
		return
	}

	if prefix == "" {
		for _, srv := range bot.Config.Servers {
			if srv.GuildID == guild.ID {
				prefix = srv.Prefix
			}
		}
	}

	if prefix == "" {
		prefix = bot.Config.Private.Prefix
	}

	bot.m.Lock()
	bot.guild(guild.ID).prefixes[""] = prefix
	bot.m.Unlock()

	err = bot.Repository.ConfigSet(guild.ID, "global", "prefix", prefix)
	if err != nil {
		bot.Log.WithError(err).Error("Saving server prefix", guild.ID)
	}
}

// Reload performs reload of all configuration values in configured modules
func (bot *Bot) Reload() {
	bot.m.RLock()

	ids := make([]string, 0, len(bot.servers))
	for k := range bot.servers {
		if k != "" {
			ids = append(ids, k)
		}
	}

	bot.m.RUnlock()

	for _, k := range ids {
		guild, err := bot.Discord.CachedGuild(k)
		if err != nil {
			bot.Log.WithError(err).Error("Getting guild", k)
			continue
		}

		bot.configure(guild)

		for _, m := range bot.Modules {
			m.Configure(&bot.Configuration, guild)
		}
	}
}

// Module interface incapsulates methods for distinct functionality
type Module interface {
	Name() string
	Initialize(bot *Configuration) error
	Configure(bot *Configuration, server *discordgo.Guild)
	Shutdown(bot *Configuration)
}

// NewBot provides new instance of bot
func NewBot(options Options) (*Bot, error) {
	if options.Log == nil {
		options.Log = logrus.New()
	}

	if options.Config == nil {
		options.Config = &config.Root{}
		options.Config.Defaults()
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		Configuration: Configuration{
			Discord:    options.Discord,
			Client:     options.Client,
			HTTP:       options.HTTP,
			Config:     options.Config,
			Log:        options.Log,
			Router:     router.NewRouter(),
			Repository: model.NewRepository(options.Client, options.Config.Private.Redis.Namespace),
			Modules:    options.Modules,
		},
		m:       &sync.RWMutex{},
		servers: make(map[string]*server),
		ready:   NewGate(),
		ctx:     ctx,
		cancel:  cancel,
	}

	bot.Configuration.bot = bot

	bot.Router.AppendMiddleware(bot.middlewareCommandError)

	for _, m := range bot.Modules {
		err := m.Initialize(&bot.Configuration)
		if err != nil {
			cancel()

			return nil, err
		}

		bot.Log.Infof("Module loaded: %s", m.Name())
	}

	bot.handlers = append(bot.handlers,
		bot.Discord.AddHandler(bot.handlerConnect),
		bot.Discord.AddHandler(bot.handlerGuildCreate),
		bot.Discord.AddHandler(bot.handlerGuildDelete),
		bot.Discord.AddHandler(bot.handlerMessageCreate),
		bot.Discord.AddHandler(bot.handlerMessageUpdate),
	)

	return bot, nil
}
