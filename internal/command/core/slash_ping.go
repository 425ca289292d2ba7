package core

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-imouto/internal/command"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check bot latency" }
func (c *PingCommand) Group() string       { return "core" }
func (c *PingCommand) Category() string    { return "🛠️ Maintenance" }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *PingCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	latency := sctx.Session.HeartbeatLatency().Milliseconds()

	return command.RespondEmbedEphemeral(sctx.Session, sctx.Event, &discordgo.MessageEmbed{
		Title:       "Pong!",
		Description: fmt.Sprintf("Latency: %dms", latency),
	})
}

func init() {
	command.RegisterCommand(
		command.ApplyMiddlewares(
			&PingCommand{},
			command.WithGuildOnly(),
			command.WithCommandLogger(),
		),
	)
}
