package reply

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/discord/discordtest"
	"github.com/eientei/seasonalbot/discordbot/router"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *router.Router {
	t.Helper()

	root := &config.Root{}
	root.Defaults()

	log := logrus.New()
	log.SetOutput(io.Discard)

	r := router.NewRouter()

	require.NoError(t, New().Initialize(&bot.Configuration{
		Config: root,
		Log:    log,
		Router: r,
	}))

	r.On("test", "ok", "ok", func(*router.Context) error {
		return nil
	})
	r.On("test", "silent", "silent", func(*router.Context) error {
		return bot.ErrNoReply
	})
	r.On("test", "input", "input", func(*router.Context) error {
		return router.NewUserInputError("bad input")
	})
	r.On("test", "check", "check", func(*router.Context) error {
		return router.NewCheckError("guild only")
	})
	r.On("test", "fail", "fail", func(*router.Context) error {
		return errors.New("connection refused")
	})
	r.On("test", "slow", "slow", func(*router.Context) error {
		return nil
	}).SetCooldown(router.NewCooldown(1, time.Hour))

	return r
}

func dispatch(r *router.Router, session *discordtest.Session, content string) (*discordgo.Message, error) {
	msg := session.AddMessage(&discordgo.Message{
		ChannelID: "10",
		GuildID:   "1",
		Content:   "." + content,
		Author:    &discordgo.User{ID: "user"},
	})

	return msg, r.Dispatch(context.Background(), session, map[string]string{"": "."}, "bot", msg)
}

func TestReplyOk(t *testing.T) {
	r := newTestRouter(t)
	session := discordtest.New("bot")

	msg, err := dispatch(r, session, "ok")
	require.NoError(t, err)

	assert.Equal(t, []discordtest.Reaction{{
		ChannelID: "10",
		MessageID: msg.ID,
		Emoji:     emojiOkButton,
		UserID:    "bot",
	}}, session.Added())
	assert.Empty(t, session.Sent)
}

func TestReplyNoReply(t *testing.T) {
	r := newTestRouter(t)
	session := discordtest.New("bot")

	_, err := dispatch(r, session, "silent")
	require.NoError(t, err)

	assert.Empty(t, session.Added())
	assert.Empty(t, session.Sent)
}

func TestReplyErrors(t *testing.T) {
	tests := []struct {
		command string
		desc    string
	}{
		{command: "input", desc: "bad input"},
		{command: "check", desc: "guild only"},
		{command: "fail", desc: internalError},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			r := newTestRouter(t)
			session := discordtest.New("bot")

			msg, err := dispatch(r, session, tt.command)
			require.Error(t, err)

			added := session.Added()
			require.Len(t, added, 1)
			assert.Equal(t, emojiX, added[0].Emoji)
			assert.Equal(t, msg.ID, added[0].MessageID)

			sent := session.SentTo("10")
			require.Len(t, sent, 1)
			assert.Equal(t, tt.desc, sent[0].Embeds[0].Description)
			assert.Equal(t, 0xcd6d6d, sent[0].Embeds[0].Color)
		})
	}
}

func TestReplyCooldown(t *testing.T) {
	r := newTestRouter(t)
	session := discordtest.New("bot")

	_, err := dispatch(r, session, "slow")
	require.NoError(t, err)

	_, err = dispatch(r, session, "slow")

	var cooldown *router.CooldownError
	require.ErrorAs(t, err, &cooldown)

	added := session.Added()
	require.Len(t, added, 2)
	assert.Equal(t, emojiHourglass, added[1].Emoji)
	assert.Empty(t, session.Sent)
}
