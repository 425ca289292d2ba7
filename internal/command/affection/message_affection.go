package affection

import (
	"fmt"
	"log"
	"strings"

	"github.com/keshon/server-imouto/internal/command"
)

// AffectionCommand answers the literal affection query without touching the
// model: the reply is the stored score, formatted in character.
type AffectionCommand struct{}

func (c *AffectionCommand) Name() string        { return "affection query" }
func (c *AffectionCommand) Description() string { return "Ask the sister how much she likes you" }
func (c *AffectionCommand) Group() string       { return "chat" }
func (c *AffectionCommand) Category() string    { return "💢 Imouto" }

// IsQuery reports whether content is the exact affection query: "!suki" in
// any casing, or the exact Japanese spelling.
func IsQuery(content string) bool {
	c := strings.TrimSpace(content)
	return strings.EqualFold(c, "!suki") || c == "！好き"
}

// Reply formats the in-character answer for the current score.
func Reply(score int) string {
	return fmt.Sprintf("な、何よ急に… ///// …今のあんたへの好感度は %d よ。べ、別にだから何だってわけじゃないんだからね！", score)
}

func (c *AffectionCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*command.MessageContext)
	if !ok {
		return nil
	}
	if !IsQuery(context.Event.Content) {
		return nil
	}

	userID := context.Event.Author.ID
	score := context.Engine.Affection(userID)
	log.Printf("[CHAT] Affection query from %s: %d", userID, score)

	_, err := context.Session.ChannelMessageSend(context.Event.ChannelID, Reply(score))
	return err
}

func init() {
	command.RegisterCommand(&AffectionCommand{})
}
