package main

import (
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/seasonalbot/discordbot/bot"
	yamlConfig "github.com/eientei/seasonalbot/discordbot/config"
	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/modules/auth"
	"github.com/eientei/seasonalbot/discordbot/modules/bookmark"
	"github.com/eientei/seasonalbot/discordbot/modules/cleanup"
	"github.com/eientei/seasonalbot/discordbot/modules/config"
	"github.com/eientei/seasonalbot/discordbot/modules/help"
	"github.com/eientei/seasonalbot/discordbot/modules/reply"
	redis "github.com/go-redis/redis/v7"
	flags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentMessageContent

var opts struct {
	Config string `short:"c" long:"config" default:"config.yml" description:"Configuration file"`
}

func readConfig(log *logrus.Logger, configPath string) *yamlConfig.Root {
	configFile, err := os.Open(configPath)
	if err != nil {
		log.Fatal(err)
	}

	c, err := yamlConfig.Read(configFile)
	if err != nil {
		log.Fatal(err)
	}

	err = configFile.Close()
	if err != nil {
		log.Fatal(err)
	}

	return c
}

func main() {
	log := logrus.New()

	_, err := flags.Parse(&opts)
	if err != nil {
		if t, ok := err.(*flags.Error); ok && t.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	configRoot := readConfig(log, opts.Config)

	err = configRoot.Validate()
	if err != nil {
		log.Fatal(err)
	}

	level, err := logrus.ParseLevel(configRoot.Private.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	log.SetLevel(level)

	dg, err := discordgo.New("Bot " + configRoot.Private.Token)
	if err != nil {
		log.Fatal(err)
	}

	dg.Identify.Intents = intents
	dg.State.MaxMessageCount = configRoot.Private.StateMessages

	client := redis.NewClient(&redis.Options{
		Addr:     configRoot.Private.Redis.Address,
		Password: configRoot.Private.Redis.Password,
		DB:       configRoot.Private.Redis.DB,
	})

	b, err := bot.NewBot(bot.Options{
		Discord: discord.Wrap(dg),
		Client:  client,
		HTTP:    dg.Client,
		Config:  configRoot,
		Log:     log,
		Modules: []bot.Module{
			cleanup.New(),
			reply.New(),
			auth.New(),
			help.New(),
			config.New(),
			bookmark.New(),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	err = b.Serve()
	if err != nil {
		log.Fatal(err)
	}
}
