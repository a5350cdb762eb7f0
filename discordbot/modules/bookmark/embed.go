package bookmark

import (
	"math/rand"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/discord"
)

var errorReplies = []string{
	"Please don't do that.",
	"You have to stop.",
	"Do you mind?",
	"In the future, don't do that.",
	"That was a mistake.",
	"You blew it.",
	"You're bad at computers.",
	"Are you trying to kill me?",
	"Noooooo!!",
	"I can't believe you've done this",
}

func (mod *module) bookmarkEmbed(target *discordgo.Message, title string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: target.Content,
		Color:       config.Colour(mod.config.Config.Colours.SoftGreen),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Wanna give it a visit?",
				Value: "[Visit original message](" + discord.MessageJumpURL(target) + ")",
			},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: mod.config.Config.Bookmark.Icon,
		},
	}

	if target.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    discord.DisplayName(target.Member, target.Author),
			IconURL: target.Author.AvatarURL(""),
		}
	}

	return embed
}

func (mod *module) errorEmbed(desc string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       errorReplies[rand.Intn(len(errorReplies))],
		Description: desc,
		Color:       config.Colour(mod.config.Config.Colours.SoftRed),
	}
}

func (mod *module) promptEmbed(invoking *discordgo.Message) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: "React with " + mod.config.Config.Bookmark.Emoji +
			" to be sent your very own bookmark to [this message](" + discord.MessageJumpURL(invoking) + ").",
		Color: config.Colour(mod.config.Config.Colours.SoftGreen),
	}
}
