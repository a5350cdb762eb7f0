package bot

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Bot is a main implementation of bot
type Bot struct {
	Configuration
	m        *sync.RWMutex
	servers  map[string]*server
	ready    *Gate
	ctx      context.Context
	cancel   context.CancelFunc
	workers  errgroup.Group
	handlers []func()
}

// Serve starts bot serving loop and blocks until exit
func (bot *Bot) Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	return bot.Run(ctx)
}

// Run opens gateway session and blocks until ctx is done, then shuts bot down
func (bot *Bot) Run(ctx context.Context) error {
	err := bot.Discord.Open()
	if err != nil {
		bot.cancel()

		return multierr.Append(err, bot.Close())
	}

	bot.Log.Info("Running")

	bot.Go(func(ctx context.Context) error {
		return bot.SendLog(ctx, bot.Config.Private.Name, "Connected!")
	})

	select {
	case <-ctx.Done():
	case <-bot.ctx.Done():
	}

	return bot.Shutdown()
}

// Shutdown waits for background workers, stops modules, then closes all connections
func (bot *Bot) Shutdown() error {
	bot.cancel()

	_ = bot.workers.Wait()

	for _, m := range bot.Modules {
		m.Shutdown(&bot.Configuration)
	}

	for _, remove := range bot.handlers {
		remove()
	}

	bot.handlers = nil

	return bot.Close()
}

// Close closes gateway session, http client and redis client, every step is attempted
func (bot *Bot) Close() (err error) {
	if bot.Discord != nil {
		err = multierr.Append(err, bot.Discord.Close())
	}

	if bot.HTTP != nil {
		bot.HTTP.CloseIdleConnections()
	}

	if bot.Client != nil {
		err = multierr.Append(err, bot.Client.Close())
	}

	return err
}
