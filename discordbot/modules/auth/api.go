// Package auth provides bot module middleware for authentication on bot commands
package auth

import (
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/router"

	"github.com/bwmarrin/discordgo"
)

// RouteConfigKey is used in route/group data configuration
const RouteConfigKey = "auth"

var (
	// ErrNotAuthorized is returned when user is not authorized to execute this command
	ErrNotAuthorized = router.NewCheckError("you are not allowed to use this command")
)

// RouteConfig holds authentication requirements for given route or route group
type RouteConfig struct {
	RoleIDs     []string
	RoleNames   []string
	Permissions int64
}

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Name() string {
	return "auth"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	config.Router.AppendMiddleware(mod.middlewareAuth)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

func routeConfig(route *router.Route) *RouteConfig {
	switch v := route.Get(RouteConfigKey).(type) {
	case *RouteConfig:
		return v
	case RouteConfig:
		return &v
	default:
		return nil
	}
}

func (mod *module) middlewareAuth(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		auth := routeConfig(ctx.Route)
		if auth == nil {
			return handler(ctx)
		}

		if mod.config.HasPermission(ctx.Message, auth.Permissions, auth.RoleIDs, auth.RoleNames) {
			return handler(ctx)
		}

		return ErrNotAuthorized
	}
}
