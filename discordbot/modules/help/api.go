// Package help provides bot module for command help message
package help

import (
	"strings"

	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
}

func (mod *module) Name() string {
	return "help"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	group := config.Router.Group("help").SetDescription("help & status")

	group.On("help", "prints help, `help <command>` describes single command", mod.commandHelp)

	return nil
}

func (mod *module) Configure(config *bot.Configuration, guild *discordgo.Guild) {
	prefix, err := config.Repository.ConfigGet(guild.ID, "help", "prefix")
	if err != nil {
		config.Log.WithError(err).Error("Getting help prefix", guild.ID)

		return
	}

	if prefix != "" {
		config.SetPrefix(guild.ID, "help", prefix)
	}
}

func (mod *module) Shutdown(config *bot.Configuration) {

}

func renderName(r *router.Route) string {
	if len(r.Alias) == 0 || !r.AliasHelp {
		return r.Name
	}

	return r.Name + " | " + strings.Join(r.Alias, " | ")
}

func renderRoute(buf *strings.Builder, r *router.Route, width int) {
	name := renderName(r)

	if width > len(name) {
		_, _ = buf.WriteString(strings.Repeat(" ", width-len(name)))
	}

	_, _ = buf.WriteString(name)
	_, _ = buf.WriteString(": ")
	_, _ = buf.WriteString(r.Description)
	_, _ = buf.WriteString("\n")
}

func findRoute(routes map[string]*router.Route, name string) *router.Route {
	if r, ok := routes[name]; ok {
		return r
	}

	for _, r := range routes {
		for _, a := range r.Alias {
			if a == name {
				return r
			}
		}
	}

	return nil
}

func (mod *module) commandHelp(ctx *router.Context) error {
	routes := ctx.Route.Router.Routes

	if name := ctx.Args.Get(1); name != "" {
		r := findRoute(routes, name)
		if r == nil {
			return router.NewUserInputError("no such command: " + name)
		}

		buf := &strings.Builder{}

		buf.WriteString("```autohotkey\n")
		renderRoute(buf, r, 0)
		buf.WriteString("```")

		return ctx.ReplyEmbed(buf.String())
	}

	width := 0

	for _, v := range routes {
		if l := len(renderName(v)); l > width {
			width = l
		}
	}

	buf := &strings.Builder{}

	buf.WriteString("```autohotkey\n")

	for _, g := range ctx.Route.Router.Groups {
		_, _ = buf.WriteString("\n==" + strings.ToUpper(g.Name) + "==")

		if len(g.Description) > 0 {
			_, _ = buf.WriteString(" ")
			_, _ = buf.WriteString(g.Description)
		}

		_, _ = buf.WriteString("\n")

		for _, v := range g.Routes {
			renderRoute(buf, v, width)
		}
	}

	buf.WriteString("```")

	return ctx.ReplyEmbed(buf.String())
}
