// Package reply provides bot module for automated emoji and error replies depending on result of execution
package reply

import (
	"errors"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/router"
)

const (
	emojiOkButton  = "\xf0\x9f\x86\x97"
	emojiX         = "\xe2\x9d\x8c"
	emojiHourglass = "\xe2\x8c\x9b"

	internalError = "Something went wrong while running this command."
)

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config *bot.Configuration
}

func (mod *module) Name() string {
	return "reply"
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config

	config.Router.AppendMiddleware(mod.middlewareReply)

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(*bot.Configuration) {

}

// describe returns text shown to the user, internal errors are not disclosed
func describe(err error) string {
	if router.IsPublic(err) {
		return err.Error()
	}

	var cooldown *router.CooldownError
	if errors.As(err, &cooldown) {
		return cooldown.Error()
	}

	return internalError
}

func (mod *module) middlewareReply(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		origerr := handler(ctx)
		if errors.Is(origerr, bot.ErrNoReply) {
			return nil
		}

		if origerr == nil {
			err := ctx.React(emojiOkButton)
			if err != nil {
				mod.config.Log.WithError(err).Error("Replying with ok status")
			}

			return nil
		}

		var cooldown *router.CooldownError
		if errors.As(origerr, &cooldown) {
			err := ctx.React(emojiHourglass)
			if err != nil {
				mod.config.Log.WithError(err).Error("Replying with cooldown status")
			}

			return origerr
		}

		err := ctx.React(emojiX)
		if err != nil {
			mod.config.Log.WithError(err).Error("Replying with error status")

			return origerr
		}

		err = ctx.ReplyEmbedCustom(&discordgo.MessageEmbed{
			Description: describe(origerr),
			Color:       config.Colour(mod.config.Config.Colours.SoftRed),
		})
		if err != nil {
			mod.config.Log.WithError(err).Error("Replying with error status")
		}

		return origerr
	}
}
