package help

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/discord/discordtest"
	"github.com/eientei/seasonalbot/discordbot/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelp(t *testing.T) {
	r := router.NewRouter()
	require.NoError(t, New().Initialize(&bot.Configuration{Router: r}))

	noop := func(*router.Context) error {
		return nil
	}

	r.Group("bookmarks").SetDescription("personal bookmarks").
		OnAlias("bookmark", "send yourself a link", []string{"bm", "pin"}, true, noop)
	r.Group("bookmarks").OnAlias("hidden", "aliases not shown", []string{"h"}, false, noop)

	session := discordtest.New("bot")

	run := func(content string) error {
		msg := session.AddMessage(&discordgo.Message{
			ChannelID: "10",
			Content:   "." + content,
			Author:    &discordgo.User{ID: "user"},
		})

		return r.Dispatch(context.Background(), session, map[string]string{"": "."}, "bot", msg)
	}

	require.NoError(t, run("help"))

	sent := session.SentTo("10")
	require.Len(t, sent, 1)

	desc := sent[0].Embeds[0].Description
	assert.Contains(t, desc, "==BOOKMARKS== personal bookmarks")
	assert.Contains(t, desc, "bookmark | bm | pin: send yourself a link")
	assert.Contains(t, desc, "hidden: aliases not shown")
	assert.NotContains(t, desc, "hidden | h")
	assert.Contains(t, desc, "==HELP==")

	require.NoError(t, run("help bm"))

	sent = session.SentTo("10")
	require.Len(t, sent, 2)
	assert.Equal(t, "```autohotkey\nbookmark | bm | pin: send yourself a link\n```", sent[1].Embeds[0].Description)

	err := run("help nothing")
	assert.True(t, router.IsUserInputError(err))
}
