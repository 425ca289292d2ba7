package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-imouto/internal/ai"
	"github.com/keshon/server-imouto/internal/storage"
)

type scriptedProvider struct {
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type recordingTransport struct {
	sent      []string
	removed   []string
	removeErr error
}

func (t *recordingTransport) Send(text string) error {
	t.sent = append(t.sent, text)
	return nil
}

func (t *recordingTransport) RemoveUser(userID, reason string) error {
	t.removed = append(t.removed, userID)
	return t.removeErr
}

func newTestEngine(t *testing.T, chat, judge ai.Provider) (*Engine, *storage.Storage) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "affection.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, chat, judge), store
}

func TestHandleMessageAppliesJudgedDelta(t *testing.T) {
	chat := &scriptedProvider{reply: "ふん、別に。"}
	judge := &scriptedProvider{reply: "5"}
	eng, store := newTestEngine(t, chat, judge)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "おはよう", transport)
	require.NoError(t, err)

	assert.Equal(t, 55, store.Affection("u1"))
	assert.Equal(t, []string{"ふん、別に。"}, transport.sent)
	assert.Empty(t, transport.removed)
	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, 1, judge.calls)
}

func TestTerminalGateFires(t *testing.T) {
	chat := &scriptedProvider{reply: "うざい。"}
	judge := &scriptedProvider{reply: "-5"}
	eng, store := newTestEngine(t, chat, judge)
	store.SetAffection("u1", 3)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "ごめん…", transport)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Affection("u1"))
	assert.Equal(t, []string{"うざい。", FarewellText}, transport.sent)
	assert.Equal(t, []string{"u1"}, transport.removed)
}

// The gate has no hysteresis: a user parked at zero triggers the farewell
// and removal attempt on every message. Documented behavior, not a bug.
func TestGateRefiresAtZero(t *testing.T) {
	chat := &scriptedProvider{reply: "消えろ。"}
	judge := &scriptedProvider{reply: "0"}
	eng, store := newTestEngine(t, chat, judge)
	store.SetAffection("u1", 0)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "まだいるけど", transport)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Affection("u1"))
	assert.Equal(t, []string{"消えろ。", FarewellText}, transport.sent)
	assert.Equal(t, []string{"u1"}, transport.removed)
}

func TestForbiddenRemovalAcknowledgedInCharacter(t *testing.T) {
	chat := &scriptedProvider{reply: "もう知らない。"}
	judge := &scriptedProvider{reply: "-10"}
	eng, store := newTestEngine(t, chat, judge)
	store.SetAffection("u1", 1)
	transport := &recordingTransport{removeErr: ErrForbidden}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "は？", transport)
	require.NoError(t, err, "a denied removal must not surface as an error")

	assert.Equal(t, []string{"もう知らない。", FarewellText, CannotKickText}, transport.sent)
	assert.Equal(t, []string{"u1"}, transport.removed)
}

func TestGenerationFailureLeavesStateUntouched(t *testing.T) {
	chat := &scriptedProvider{err: errors.New("quota exceeded")}
	judge := &scriptedProvider{reply: "5"}
	eng, store := newTestEngine(t, chat, judge)
	store.SetAffection("other", 70)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "おはよう", transport)
	require.Error(t, err)

	assert.Equal(t, []string{FallbackText}, transport.sent, "failure must still answer the user")
	assert.NotContains(t, store.AllAffection(), "u1", "no record for the failed exchange")
	assert.Equal(t, 70, store.Affection("other"), "other users untouched")
	assert.Equal(t, 0, judge.calls, "judgment must not run without a reply")
	assert.Empty(t, transport.removed)
}

func TestJudgeFailureDegradesToNeutral(t *testing.T) {
	chat := &scriptedProvider{reply: "ふん。"}
	judge := &scriptedProvider{err: errors.New("timeout")}
	eng, store := newTestEngine(t, chat, judge)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "おはよう", transport)
	require.NoError(t, err, "a failed judgment must not abort the exchange")

	assert.Equal(t, 50, store.Affection("u1"))
	assert.Contains(t, store.AllAffection(), "u1", "neutral delta still persists the record")
}

// The query command reads the score through the engine, so the read surface
// stays exercised alongside the pipeline.
func TestAffectionReadsStoredScore(t *testing.T) {
	eng, store := newTestEngine(t, &scriptedProvider{}, &scriptedProvider{})

	assert.Equal(t, 50, eng.Affection("never-seen"))

	store.SetAffection("u1", 83)
	assert.Equal(t, 83, eng.Affection("u1"))
}

func TestJudgeGarbageParsesToNeutral(t *testing.T) {
	chat := &scriptedProvider{reply: "ふん。"}
	judge := &scriptedProvider{reply: "うーん、判定できないかも"}
	eng, store := newTestEngine(t, chat, judge)
	transport := &recordingTransport{}

	err := eng.HandleMessage(context.Background(), "u1", "Onii-chan", "おはよう", transport)
	require.NoError(t, err)

	assert.Equal(t, 50, store.Affection("u1"))
}
