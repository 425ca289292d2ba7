// Package engine runs the per-message pipeline: load the user's affection
// score, derive the persona directive, generate the in-character reply,
// judge the exchange, apply the clamped delta and fire the kick gate when
// the score bottoms out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/keshon/server-imouto/internal/affinity"
	"github.com/keshon/server-imouto/internal/ai"
	"github.com/keshon/server-imouto/internal/persona"
	"github.com/keshon/server-imouto/internal/storage"
	"github.com/keshon/server-imouto/pkg/ailimit"
)

// ErrForbidden marks a removal the transport refused for lack of privilege.
// The gate converts it into an in-character message instead of failing.
var ErrForbidden = errors.New("transport: removal forbidden")

// Transport is the slice of the chat platform the engine talks back through.
type Transport interface {
	Send(text string) error
	RemoveUser(userID, reason string) error
}

const (
	// Fixed in-character lines for the gate and the failure path.
	FarewellText   = "もう…あんたの顔なんて見たくない！さっさとどっか行ってよ！"
	CannotKickText = "（…本当は追い出したいのに、なぜかできない…！ちっ…！）"
	FallbackText   = "（うぅ…なんか今日は頭が重たいかも…ごめん、兄貴…）"

	kickReason = "妹の好感度が0になったため"
)

type Engine struct {
	store   *storage.Storage
	chat    ai.Provider
	judge   ai.Provider
	limiter *ailimit.AdaptiveLimiter
}

// New wires the pipeline. chat and judge should be separate provider
// instances: the judgment call must not share state with the persona voice.
func New(store *storage.Storage, chat, judge ai.Provider) *Engine {
	return &Engine{
		store:   store,
		chat:    chat,
		judge:   judge,
		limiter: ailimit.Default(),
	}
}

// Affection exposes the current score for the literal query command.
func (e *Engine) Affection(userID string) int {
	return e.store.Affection(userID)
}

// HandleMessage processes one incoming message end to end. Any error is
// scoped to this message: by the time it returns, the user has been
// answered one way or another, and no failure leaves a half-applied score.
func (e *Engine) HandleMessage(ctx context.Context, userID, displayName, content string, t Transport) error {
	score := e.store.Affection(userID)
	log.Printf("[CHAT] %s (%s) affection=%d: %s", displayName, userID, score, content)

	directive := persona.SystemPrompt(score)

	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("limiter wait: %w", err)
	}
	reply, err := e.chat.Generate(ctx, []ai.Message{
		{Role: "system", Content: directive},
		{Role: "user", Content: content},
	})
	if err != nil {
		e.limiter.Failure()
		// The user still gets an answer; the score stays untouched.
		if sendErr := t.Send(FallbackText); sendErr != nil {
			log.Printf("[ERR] Failed to send fallback reply: %v", sendErr)
		}
		return fmt.Errorf("generate reply: %w", err)
	}
	e.limiter.Success()

	if err := t.Send(reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	log.Printf("[CHAT] reply to %s (%s): %s", displayName, userID, reply)

	delta := e.judgeExchange(ctx, content, reply)

	newScore := affinity.Apply(score, delta)
	e.store.SetAffection(userID, newScore)
	if err := e.store.Save(); err != nil {
		// The in-memory score stands for the rest of the session.
		log.Printf("[ERR] Failed to persist affection for %s: %v", userID, err)
	}
	log.Printf("[CHAT] affection %s: %d -> %d (delta %d)", userID, score, newScore, delta)

	if newScore > affinity.Min {
		return nil
	}
	e.fireGate(userID, displayName, t)
	return nil
}

// judgeExchange runs the second, independent model call and parses its
// verdict. Every failure mode degrades to a neutral delta.
func (e *Engine) judgeExchange(ctx context.Context, userMsg, reply string) int {
	if err := e.limiter.Wait(ctx); err != nil {
		log.Printf("[WARN] Judge skipped (%v), delta 0", err)
		return 0
	}
	raw, err := e.judge.Generate(ctx, []ai.Message{
		{Role: "user", Content: affinity.JudgePrompt(userMsg, reply)},
	})
	if err != nil {
		e.limiter.Failure()
		log.Printf("[WARN] Judge call failed, delta 0: %v", err)
		return 0
	}
	e.limiter.Success()
	return affinity.ParseDelta(raw)
}

// fireGate sends the farewell and attempts the kick. It re-fires on every
// message while the score sits at zero; there is no "already kicked" flag.
func (e *Engine) fireGate(userID, displayName string, t Transport) {
	if err := t.Send(FarewellText); err != nil {
		log.Printf("[ERR] Failed to send farewell to %s: %v", userID, err)
	}

	err := t.RemoveUser(userID, kickReason)
	switch {
	case err == nil:
		log.Printf("[INFO] Kicked user %s (%s)", displayName, userID)
	case errors.Is(err, ErrForbidden):
		log.Printf("[WARN] No permission to kick %s (%s)", displayName, userID)
		if sendErr := t.Send(CannotKickText); sendErr != nil {
			log.Printf("[ERR] Failed to send kick-denied reply: %v", sendErr)
		}
	default:
		log.Printf("[ERR] Failed to kick %s (%s): %v", displayName, userID, err)
	}
}
