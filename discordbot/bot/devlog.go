package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SendLog waits until home guild is available and posts embed to the devlog channel.
// Failure to resolve the channel is logged and the notice is dropped.
func (conf *Configuration) SendLog(ctx context.Context, title, details string) error {
	err := conf.Ready().Wait(ctx)
	if err != nil {
		return err
	}

	channelID := conf.Config.Private.Devlog

	devlog, err := conf.Discord.CachedChannel(channelID)
	if err != nil {
		conf.Log.Infof("Fetching devlog channel as it wasn't found in the cache (ID: %s)", channelID)

		devlog, err = conf.Discord.Channel(channelID)
		if err != nil {
			conf.Log.WithError(err).Error("Fetch failed")

			return nil
		}
	}

	embed := &discordgo.MessageEmbed{
		Description: details,
		Author: &discordgo.MessageEmbedAuthor{
			Name: title,
		},
	}

	if me := conf.Discord.Me(); me != nil {
		embed.Author.IconURL = me.AvatarURL("")
	}

	_, err = conf.Discord.ChannelMessageSendEmbed(devlog.ID, embed)

	return err
}
