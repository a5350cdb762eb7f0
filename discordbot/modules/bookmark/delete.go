package bookmark

import (
	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/router"
)

func (mod *module) commandDelete(ctx *router.Context) error {
	if !ctx.IsPrivate() {
		return ErrPrivateOnly
	}

	msg, _, err := mod.resolve(ctx, ctx.Args.Get(2))
	if err != nil {
		return err
	}

	if msg.ChannelID != ctx.Message.ChannelID {
		return ErrWrongChannel
	}

	err = ctx.Session.ChannelMessageDelete(msg.ChannelID, msg.ID)
	if err != nil && !discord.IsNotFound(err) {
		return err
	}

	ids := []string{msg.ID}

	if targetID, ok := bookmarkedID(msg); ok {
		ids = append(ids, targetID)
	}

	parsed := make([]int64, 0, len(ids))

	for _, id := range ids {
		v, err := discord.ParseID(id)
		if err != nil {
			continue
		}

		parsed = append(parsed, v)
	}

	memberID := ctx.Message.Author.ID

	removed, err := mod.config.Repository.BookmarkRemove(memberID, parsed...)
	if err != nil {
		return err
	}

	if !removed {
		return nil
	}

	err = mod.getJournal().Forget(ctx.Ctx, memberID, ids...)
	if err != nil {
		mod.config.Log.WithError(err).Error("Forgetting bookmark")
	}

	return nil
}
