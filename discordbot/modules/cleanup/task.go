package cleanup

import (
	"context"
	"time"

	"github.com/eientei/seasonalbot/discordbot/discord"
	"github.com/eientei/seasonalbot/discordbot/model"
)

const dequeueBlock = time.Second

// Task provides message removal delayed task
type Task struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// Scope returns task scope
func (Task) Scope() string {
	return "cleanup"
}

// Name returns task name
func (Task) Name() string {
	return "message"
}

func (mod *module) ackTask(task model.Task, id string, err error) {
	if err != nil && !discord.IsNotFound(err) {
		mod.config.Log.WithError(err).WithField("task", id).Error("Removing reply")

		return
	}

	err = mod.config.Repository.TaskAck(task, id)
	if err != nil {
		mod.config.Log.WithError(err).Error("Acking task", id)
	}
}

// start removes queued replies until ctx is done
func (mod *module) start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		task := &Task{}

		id, err := mod.config.Repository.TaskDequeue(task, dequeueBlock)
		if err != nil {
			mod.config.Log.WithError(err).Error("Dequeuing")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(dequeueBlock):
			}

			continue
		}

		if id == "" {
			continue
		}

		err = mod.config.Discord.ChannelMessageDelete(task.ChannelID, task.MessageID)
		mod.ackTask(task, id, err)
	}
}
