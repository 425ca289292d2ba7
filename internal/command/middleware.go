package command

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-imouto/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

// SlashDefinition forwards to the wrapped command so wrapping keeps the
// SlashProvider behavior visible to the registrar.
func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly drops events that arrive outside a guild. Message commands
// that want to answer DMs in character should not use it.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID == "" {
					return nil
				}
				if v, ok := ctx.(*MessageContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger records slash command executions to storage history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID != "" && v.Event.Member != nil {
					err := v.Storage.AppendCommandToHistory(v.Event.GuildID, storage.CommandHistoryRecord{
						ChannelID: v.Event.ChannelID,
						UserID:    v.Event.Member.User.ID,
						Username:  v.Event.Member.User.Username,
						Command:   cmd.Name(),
						Datetime:  time.Now(),
					})
					if err != nil {
						log.Println("[WARN] Failed to log command:", err)
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}
