package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-imouto/internal/engine"
	"github.com/keshon/server-imouto/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider - commands that register a slash definition with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Contexts - what the runtime hands you when executing a command.

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Storage *storage.Storage
	Engine  *engine.Engine
}
