package bot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/discord/discordtest"
	"github.com/eientei/seasonalbot/discordbot/router"
	redis "github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	homeGuild = "100"
	devlogID  = "200"
)

type order struct {
	m     sync.Mutex
	steps []string
}

func (o *order) add(step string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.steps = append(o.steps, step)
}

func (o *order) get() []string {
	o.m.Lock()
	defer o.m.Unlock()

	return append([]string(nil), o.steps...)
}

type orderedSession struct {
	*discordtest.Session
	order *order
}

func (s *orderedSession) Close() error {
	s.order.add("discord")

	return s.Session.Close()
}

type idleTransport struct {
	order *order
}

func (t *idleTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("no network")
}

func (t *idleTransport) CloseIdleConnections() {
	t.order.add("http")
}

type testModule struct {
	name       string
	configured []string
	shutdown   int
	order      *order
	init       func(conf *Configuration) error
}

func (mod *testModule) Name() string {
	return mod.name
}

func (mod *testModule) Initialize(conf *Configuration) error {
	if mod.init != nil {
		return mod.init(conf)
	}

	return nil
}

func (mod *testModule) Configure(_ *Configuration, guild *discordgo.Guild) {
	mod.configured = append(mod.configured, guild.ID)
}

func (mod *testModule) Shutdown(*Configuration) {
	mod.shutdown++

	if mod.order != nil {
		mod.order.add("module")
	}
}

func newTestBot(t *testing.T, session *discordtest.Session, modules ...Module) (*Bot, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	root := &config.Root{
		Private: config.Private{
			Token:   "token",
			GuildID: homeGuild,
			Devlog:  devlogID,
		},
	}
	root.Defaults()

	log := logrus.New()
	log.SetOutput(io.Discard)

	b, err := NewBot(Options{
		Discord: session,
		Client:  client,
		Config:  root,
		Log:     log,
		Modules: modules,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		b.cancel()
		_ = client.Close()
	})

	return b, client
}

func homeGuildCreate(populated bool) *discordgo.GuildCreate {
	g := &discordgo.Guild{ID: homeGuild}

	if populated {
		g.Roles = []*discordgo.Role{{ID: "r"}}
		g.Members = []*discordgo.Member{{User: &discordgo.User{ID: "u"}}}
		g.Channels = []*discordgo.Channel{{ID: devlogID}}
	}

	return &discordgo.GuildCreate{Guild: g}
}

func TestReadinessTransitions(t *testing.T) {
	session := discordtest.New("bot")
	mod := &testModule{name: "test"}
	b, _ := newTestBot(t, session, mod)

	session.Emit(&discordgo.Connect{})
	assert.False(t, b.Ready().IsOpen())

	session.Emit(homeGuildCreate(false))
	assert.False(t, b.Ready().IsOpen())

	session.Emit(&discordgo.GuildCreate{Guild: &discordgo.Guild{
		ID:       "other",
		Roles:    []*discordgo.Role{{ID: "r"}},
		Members:  []*discordgo.Member{{User: &discordgo.User{ID: "u"}}},
		Channels: []*discordgo.Channel{{ID: "c"}},
	}})
	assert.False(t, b.Ready().IsOpen())

	session.Emit(homeGuildCreate(true))
	assert.True(t, b.Ready().IsOpen())
	assert.Equal(t, []string{homeGuild, "other", homeGuild}, mod.configured)

	session.Emit(&discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "other", Unavailable: true}})
	assert.True(t, b.Ready().IsOpen())

	session.Emit(&discordgo.GuildDelete{Guild: &discordgo.Guild{ID: homeGuild, Unavailable: true}})
	assert.False(t, b.Ready().IsOpen())

	session.Emit(homeGuildCreate(true))
	assert.True(t, b.Ready().IsOpen())

	session.Emit(&discordgo.Connect{})
	assert.False(t, b.Ready().IsOpen())
}

func TestReadinessUsesStateCache(t *testing.T) {
	session := discordtest.New("bot")
	b, _ := newTestBot(t, session)

	session.Emit(homeGuildCreate(true))
	assert.True(t, b.Ready().IsOpen())

	session.Emit(&discordgo.Connect{})
	assert.False(t, b.Ready().IsOpen())

	session.Emit(homeGuildCreate(false))
	assert.True(t, b.Ready().IsOpen())

	session.Guilds[homeGuild].Members = nil

	session.Emit(&discordgo.Connect{})
	session.Emit(homeGuildCreate(false))
	assert.False(t, b.Ready().IsOpen())
}

func TestSendLogWaitsForReadiness(t *testing.T) {
	session := discordtest.New("bot")
	session.AddChannel(&discordgo.Channel{ID: devlogID, GuildID: homeGuild})

	b, _ := newTestBot(t, session)

	done := make(chan error, 1)

	go func() {
		done <- b.SendLog(context.Background(), "SeasonalBot", "Connected!")
	}()

	select {
	case <-done:
		t.Fatal("notice sent before guild was available")
	case <-time.After(20 * time.Millisecond):
	}

	session.Emit(homeGuildCreate(true))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("notice was not sent")
	}

	sent := session.SentTo(devlogID)
	require.Len(t, sent, 1)
	assert.Equal(t, "Connected!", sent[0].Embeds[0].Description)
	assert.Equal(t, "SeasonalBot", sent[0].Embeds[0].Author.Name)
}

func TestSendLogFetchesUncachedChannel(t *testing.T) {
	session := discordtest.New("bot")
	session.AddChannel(&discordgo.Channel{ID: devlogID, GuildID: homeGuild})
	session.Uncached[devlogID] = true

	b, _ := newTestBot(t, session)
	b.Ready().Open()

	require.NoError(t, b.SendLog(context.Background(), "title", "details"))
	assert.Len(t, session.SentTo(devlogID), 1)
}

func TestSendLogFetchFailureSwallowed(t *testing.T) {
	session := discordtest.New("bot")
	session.ChannelErr = discordtest.RESTError(http.StatusForbidden)

	b, _ := newTestBot(t, session)
	b.Ready().Open()

	require.NoError(t, b.SendLog(context.Background(), "title", "details"))
	assert.Empty(t, session.Sent)
}

func TestSendLogCancelled(t *testing.T) {
	session := discordtest.New("bot")
	b, _ := newTestBot(t, session)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.SendLog(ctx, "title", "details"), context.Canceled)
}

func TestCloseAttemptsEveryResource(t *testing.T) {
	o := &order{}
	fake := discordtest.New("bot")
	fake.CloseErr = errors.New("gateway close failed")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	b, err := NewBot(Options{
		Discord: &orderedSession{Session: fake, order: o},
		Client:  client,
		HTTP:    &http.Client{Transport: &idleTransport{order: o}},
		Log:     log,
	})
	require.NoError(t, err)

	err = b.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway close failed")

	assert.Equal(t, []string{"discord", "http"}, o.get())
	assert.Error(t, client.Ping().Err())
}

func TestCommandErrorResetsCooldown(t *testing.T) {
	session := discordtest.New("bot")

	fail := true
	calls := 0

	mod := &testModule{
		name: "test",
		init: func(conf *Configuration) error {
			conf.Router.Group("test").On("try", "try", func(ctx *router.Context) error {
				calls++

				if fail {
					return router.NewUserInputError("bad input")
				}

				return errors.New("internal")
			}).SetCooldown(router.NewCooldown(1, time.Hour))

			return nil
		},
	}

	b, _ := newTestBot(t, session, mod)

	msg := func() *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "1",
			ChannelID: "10",
			GuildID:   homeGuild,
			Content:   b.Config.Private.Prefix + "try",
			Author:    &discordgo.User{ID: "user"},
		}}
	}

	session.Emit(msg())
	session.Emit(msg())
	assert.Equal(t, 2, calls)

	fail = false

	session.Emit(msg())
	session.Emit(msg())
	assert.Equal(t, 3, calls)
}

func TestRunShutsDown(t *testing.T) {
	session := discordtest.New("bot")
	mod := &testModule{name: "test"}
	b, client := newTestBot(t, session, mod)

	assert.Equal(t, 5, session.HandlerCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, b.Run(ctx))

	assert.Equal(t, 1, session.Opened)
	assert.Equal(t, 1, session.Closed)
	assert.Equal(t, 1, mod.shutdown)
	assert.Equal(t, 0, session.HandlerCount())
	assert.Error(t, client.Ping().Err())
}

func TestShutdownWaitsForWorkers(t *testing.T) {
	session := discordtest.New("bot")
	steps := &order{}

	mod := &testModule{name: "test", order: steps, init: func(conf *Configuration) error {
		conf.Go(func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			steps.add("worker")

			return nil
		})

		return nil
	}}

	b, _ := newTestBot(t, session, mod)

	require.NoError(t, b.Shutdown())
	assert.Equal(t, []string{"worker", "module"}, steps.get())
}

func TestRunOpenFailure(t *testing.T) {
	session := discordtest.New("bot")
	session.OpenErr = errors.New("no gateway")

	b, _ := newTestBot(t, session)

	err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gateway")
}

func TestNewBotInitializeError(t *testing.T) {
	session := discordtest.New("bot")

	_, err := NewBot(Options{
		Discord: session,
		Client:  redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}),
		Modules: []Module{&testModule{name: "broken", init: func(*Configuration) error {
			return errors.New("broken")
		}}},
	})
	require.Error(t, err)
}

func TestPrefixFromServerConfig(t *testing.T) {
	session := discordtest.New("bot")
	b, _ := newTestBot(t, session)

	b.Config.Servers = []config.Server{{GuildID: "300", Prefix: "?"}}

	session.Emit(&discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "300"}})

	assert.Equal(t, "?", b.prefixes("300")[""])
	assert.Equal(t, b.Config.Private.Prefix, b.prefixes("")[""])

	prefix, err := b.Repository.ConfigGet("300", "global", "prefix")
	require.NoError(t, err)
	assert.Equal(t, "?", prefix)
}
