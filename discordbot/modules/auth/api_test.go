package auth

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	"github.com/eientei/seasonalbot/discordbot/discord/discordtest"
	"github.com/eientei/seasonalbot/discordbot/router"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(t *testing.T, session *discordtest.Session) *bot.Bot {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	b, err := bot.NewBot(bot.Options{
		Discord: session,
		Client:  client,
		Log:     log,
		Modules: []bot.Module{New()},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = b.Shutdown()
	})

	ok := func(*router.Context) error {
		return nil
	}

	b.Router.Group("admin").Set(RouteConfigKey, &RouteConfig{
		Permissions: discordgo.PermissionAdministrator,
	}).On("admin", "admin only", ok)

	b.Router.On("roles", "role", "role only", ok).Set(RouteConfigKey, RouteConfig{
		RoleIDs:   []string{"r1"},
		RoleNames: []string{"moderator"},
	})

	b.Router.On("open", "open", "anyone", ok)

	return b
}

func dispatch(b *bot.Bot, session *discordtest.Session, guildID, content string, member *discordgo.Member) error {
	msg := &discordgo.Message{
		ID:        "1",
		ChannelID: "10",
		GuildID:   guildID,
		Content:   "." + content,
		Author:    &discordgo.User{ID: "user"},
		Member:    member,
	}

	return b.Router.Dispatch(context.Background(), session, map[string]string{"": "."}, "bot", msg)
}

func TestAuth(t *testing.T) {
	session := discordtest.New("bot")
	session.Guilds["1"] = &discordgo.Guild{
		ID:      "1",
		OwnerID: "owner",
		Roles:   []*discordgo.Role{{ID: "r2", Name: "moderator"}},
	}

	b := newTestBot(t, session)

	require.NoError(t, dispatch(b, session, "1", "open", nil))
	assert.ErrorIs(t, dispatch(b, session, "1", "admin", nil), ErrNotAuthorized)
	assert.ErrorIs(t, dispatch(b, session, "", "admin", nil), ErrNotAuthorized)
	assert.ErrorIs(t, dispatch(b, session, "1", "role", &discordgo.Member{Roles: []string{"r3"}}), ErrNotAuthorized)

	assert.NoError(t, dispatch(b, session, "1", "role", &discordgo.Member{Roles: []string{"r1"}}))
	assert.NoError(t, dispatch(b, session, "1", "role", &discordgo.Member{Roles: []string{"r2"}}))

	session.SetPermissions("user", "10", discordgo.PermissionAdministrator)
	assert.NoError(t, dispatch(b, session, "1", "admin", nil))

	assert.True(t, router.IsPublic(ErrNotAuthorized))
}

func TestAuthGuildOwner(t *testing.T) {
	session := discordtest.New("bot")
	session.Guilds["1"] = &discordgo.Guild{ID: "1", OwnerID: "user"}

	b := newTestBot(t, session)

	assert.NoError(t, dispatch(b, session, "1", "admin", nil))
}
