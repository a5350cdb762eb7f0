package bot

import (
	"errors"

	"github.com/eientei/seasonalbot/discordbot/router"
)

func (bot *Bot) middlewareCommandError(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		err := handler(ctx)
		if err != nil {
			bot.OnCommandError(ctx, err)
		}

		return err
	}
}

// OnCommandError resets command cooldown on malformed input, other errors go to the default handler
func (bot *Bot) OnCommandError(ctx *router.Context, err error) {
	if router.IsUserInputError(err) {
		ctx.ResetCooldown()

		bot.Log.WithError(err).WithField("route", ctx.Route.Name).Debug("Command rejected user input")

		return
	}

	bot.defaultCommandError(ctx, err)
}

func (bot *Bot) defaultCommandError(ctx *router.Context, err error) {
	if errors.Is(err, ErrNoReply) {
		return
	}

	var cooldown *router.CooldownError
	if errors.As(err, &cooldown) {
		bot.Log.WithError(err).WithField("route", ctx.Route.Name).Debug("Command on cooldown")

		return
	}

	bot.Log.WithError(err).
		WithField("route", ctx.Route.Name).
		WithField("channel", ctx.Message.ChannelID).
		WithField("msg", ctx.Message.ID).
		Error("executing command returned error")
}
