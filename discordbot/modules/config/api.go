// Package config provides bot module for managing per-server configuration
package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/modules/auth"
	"github.com/eientei/seasonalbot/discordbot/router"
	redis "github.com/go-redis/redis/v7"
)

var (
	// ErrInvalidArgumentNumber is retuned when invalid number of arguments is supplied
	ErrInvalidArgumentNumber = router.NewUserInputError("invalid argument number")
	// ErrGuildOnly is returned when configuration is edited from direct messages
	ErrGuildOnly = router.NewCheckError("configuration can only be edited in a server")
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

type entry struct {
	key   string
	value string
}

func (mod *module) Name() string {
	return "config"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	group := config.Router.Group("config").SetDescription("internal configuration")
	group.Set(auth.RouteConfigKey, &auth.RouteConfig{
		Permissions: discordgo.PermissionAdministrator,
	})

	group.On("config.get", "gets config value", mod.configGet)
	group.On("config.set", "sets config value", mod.configSet)
	group.On("config.del", "deletes config value", mod.configDel)
	group.On("config.list", "lists config values", mod.configList)
	group.On("config.tasks", "lists task stats", mod.configTasks)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func guildKey(ctx *router.Context, minArgs int) (string, error) {
	if ctx.IsPrivate() {
		return "", ErrGuildOnly
	}

	if len(ctx.Args) < minArgs {
		return "", ErrInvalidArgumentNumber
	}

	return ctx.Message.GuildID + "." + ctx.Args.Get(1), nil
}

func renderTable(entries []entry) string {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	width := 0

	for _, e := range entries {
		if len(e.key) > width {
			width = len(e.key)
		}
	}

	buf := &strings.Builder{}

	buf.WriteString("```\n")

	for _, e := range entries {
		_, _ = buf.WriteString(strings.Repeat(" ", width-len(e.key)))
		_, _ = buf.WriteString(e.key)
		_, _ = buf.WriteString(": ")
		_, _ = buf.WriteString(e.value)
		_, _ = buf.WriteString("\n")
	}

	buf.WriteString("```")

	return buf.String()
}

func (mod *module) configGet(ctx *router.Context) error {
	key, err := guildKey(ctx, 2)
	if err != nil {
		return err
	}

	value, err := mod.config.Client.Get(key).Result()
	if err == redis.Nil {
		err = nil
	}

	if err != nil {
		return err
	}

	return ctx.ReplyEmbed("```\n" + value + "```")
}

func (mod *module) configSet(ctx *router.Context) error {
	key, err := guildKey(ctx, 3)
	if err != nil {
		return err
	}

	err = mod.config.Client.Set(key, ctx.Args.Join(2), 0).Err()
	if err != nil {
		return err
	}

	mod.config.Reload()

	return nil
}

func (mod *module) configDel(ctx *router.Context) error {
	key, err := guildKey(ctx, 2)
	if err != nil {
		return err
	}

	err = mod.config.Client.Del(key).Err()
	if err != nil {
		return err
	}

	mod.config.Reload()

	return nil
}

func (mod *module) configList(ctx *router.Context) error {
	if ctx.IsPrivate() {
		return ErrGuildOnly
	}

	prefix := ctx.Message.GuildID + "."
	pattern := prefix + "*"

	if mask := ctx.Args.Get(1); mask != "" {
		pattern += mask + "*"
	}

	keys, err := mod.config.Client.Keys(pattern).Result()
	if err != nil {
		return err
	}

	entries := make([]entry, 0, len(keys))

	for _, k := range keys {
		v, err := mod.config.Client.Get(k).Result()
		if err == redis.Nil {
			continue
		}

		if err != nil {
			return err
		}

		entries = append(entries, entry{key: strings.TrimPrefix(k, prefix), value: v})
	}

	return ctx.ReplyEmbed(renderTable(entries))
}

func (mod *module) configTasks(ctx *router.Context) error {
	keys, err := mod.config.Client.Keys(mod.config.Repository.Namespace + ".task.*").Result()
	if err != nil {
		return err
	}

	entries := make([]entry, 0, len(keys))

	for _, k := range keys {
		v, err := mod.config.Client.XLen(k).Result()
		if err != nil && err != redis.Nil {
			return err
		}

		entries = append(entries, entry{key: k, value: strconv.FormatInt(v, 10)})
	}

	return ctx.ReplyEmbed(renderTable(entries))
}
