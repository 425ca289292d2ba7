package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-imouto/internal/command"
	"github.com/keshon/server-imouto/internal/command/affection"
	"github.com/keshon/server-imouto/internal/engine"
)

// ChatCommand feeds every plain guild message through the affinity engine.
type ChatCommand struct{}

func (c *ChatCommand) Name() string        { return "chat message" }
func (c *ChatCommand) Description() string { return "Talk to the sister" }
func (c *ChatCommand) Group() string       { return "chat" }
func (c *ChatCommand) Category() string    { return "💢 Imouto" }

func (c *ChatCommand) Run(ctx interface{}) error {
	mctx, ok := ctx.(*command.MessageContext)
	if !ok {
		return nil
	}

	msg := strings.TrimSpace(mctx.Event.Content)

	// The literal query command is handled by its own command; stay out.
	if affection.IsQuery(msg) {
		return nil
	}

	display := mctx.Event.Author.DisplayName()
	userID := mctx.Event.Author.ID
	channelID := mctx.Event.ChannelID

	// No kicking anyone out of a DM; she only plays along on a server.
	if mctx.Event.GuildID == "" {
		_, err := mctx.Session.ChannelMessageSend(channelID,
			fmt.Sprintf("%s、二人きりで話すとか…な、何考えてんのよ！サーバーで話しなさいよね！", display))
		return err
	}

	if msg == "" {
		_, err := mctx.Session.ChannelMessageSend(channelID,
			fmt.Sprintf("%s、何か言いなさいよ。黙ってるなら消えて。", display))
		return err
	}

	transport := &channelTransport{
		session:   mctx.Session,
		guildID:   mctx.Event.GuildID,
		channelID: channelID,
	}

	return mctx.Engine.HandleMessage(context.Background(), userID, display, msg, transport)
}

// channelTransport adapts a Discord channel and guild to engine.Transport.
type channelTransport struct {
	session   *discordgo.Session
	guildID   string
	channelID string
}

func (t *channelTransport) Send(text string) error {
	for _, chunk := range splitMessage(text, 2000) {
		if _, err := t.session.ChannelMessageSend(t.channelID, chunk); err != nil {
			return err
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil
}

func (t *channelTransport) RemoveUser(userID, reason string) error {
	err := t.session.GuildMemberDeleteWithReason(t.guildID, userID, reason)
	if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusForbidden {
		return engine.ErrForbidden
	}
	return err
}

// splitMessage chops long replies at newlines under the Discord limit.
// Without a newline it falls back to a rune boundary: the limit counts
// bytes and Japanese text must not be cut mid-rune.
func splitMessage(msg string, limit int) []string {
	var result []string
	for len(msg) > limit {
		cut := strings.LastIndex(msg[:limit], "\n")
		if cut == -1 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(msg[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		result = append(result, strings.TrimSpace(msg[:cut]))
		msg = strings.TrimSpace(msg[cut:])
	}
	if msg != "" {
		result = append(result, msg)
	}
	return result
}

func init() {
	command.RegisterCommand(&ChatCommand{})
}
