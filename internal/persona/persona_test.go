package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandsCoverScoreRange(t *testing.T) {
	for s := 0; s <= 100; s++ {
		matches := 0
		for _, b := range bands {
			if s >= b.Min && s <= b.Max {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "score %d must fall into exactly one band", s)
	}
}

func TestBandBoundaries(t *testing.T) {
	cases := map[int]string{
		0:   "嫌悪",
		20:  "嫌悪",
		21:  "不機嫌",
		50:  "不機嫌",
		51:  "平常運転ツンデレ",
		80:  "平常運転ツンデレ",
		81:  "デレ期",
		100: "デレ期",
	}
	for score, want := range cases {
		assert.Equal(t, want, BandFor(score).Name, "score %d", score)
	}
}

func TestBandForClampsDefensively(t *testing.T) {
	assert.Equal(t, BandFor(0), BandFor(-5))
	assert.Equal(t, BandFor(100), BandFor(150))
}

func TestSystemPromptDeterministic(t *testing.T) {
	assert.Equal(t, SystemPrompt(64), SystemPrompt(64))
	assert.Equal(t, SystemPrompt(-5), SystemPrompt(0))
}

func TestSystemPromptCarriesBandProfile(t *testing.T) {
	for _, b := range bands {
		prompt := SystemPrompt(b.Min)
		assert.Contains(t, prompt, b.Name)
		require.NotEmpty(t, b.Examples)
		assert.Contains(t, prompt, b.Examples[0])
	}

	// Different bands produce different directives.
	assert.NotEqual(t, SystemPrompt(10), SystemPrompt(90))
}
