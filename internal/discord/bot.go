package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-imouto/internal/command"
	"github.com/keshon/server-imouto/internal/config"
	"github.com/keshon/server-imouto/internal/engine"
	"github.com/keshon/server-imouto/internal/storage"
)

// Bot is the Discord front of the affinity engine.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	engine  *engine.Engine
}

// StartBot opens the session and blocks until ctx is canceled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, eng *engine.Engine) error {
	b := &Bot{
		cfg:     cfg,
		storage: store,
		engine:  eng,
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents requests message content and member access; the kick
// gate needs members, the engine needs message text.
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsAll
}

// onMessageCreate dispatches every non-self message to the message commands.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}

	for _, cmd := range command.AllCommands() {
		ctx := &command.MessageContext{
			Session: s,
			Event:   m,
			Storage: b.storage,
			Engine:  b.engine,
		}
		if err := cmd.Run(ctx); err != nil {
			// The failing command already answered in character; just log.
			log.Println("[ERR] Error running command:", err)
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
		}
	}

	log.Printf("[INFO] ✅ Discord bot %v is running. ツンデレ妹、起動！", botInfo.Username)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd, ok := command.GetCommand(cmdName)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	ctx := &command.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running slash command:", err)
		_ = command.RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Error running command: %v", err),
		})
	}
}

// registerCommands registers the slash definitions for one guild.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	for _, cmd := range command.AllCommands() {
		slash, ok := cmd.(command.SlashProvider)
		if !ok {
			continue
		}
		def := slash.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			log.Printf("[ERR] Can't create command %s: %v", def.Name, err)
		}
	}
	return nil
}
