// Package affinity holds the score arithmetic and the exchange judgment
// parsing. Everything here is pure; persistence and model calls live
// elsewhere.
package affinity

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Min     = 0
	Max     = 100
	Default = 50

	DeltaMin = -10
	DeltaMax = 10
)

// Clamp forces a score into [Min, Max].
func Clamp(score int) int {
	if score < Min {
		return Min
	}
	if score > Max {
		return Max
	}
	return score
}

// Apply adds a judged delta to a score, clamped.
func Apply(score, delta int) int {
	return Clamp(score + delta)
}

// ClampDelta forces a delta into [DeltaMin, DeltaMax].
func ClampDelta(delta int) int {
	if delta < DeltaMin {
		return DeltaMin
	}
	if delta > DeltaMax {
		return DeltaMax
	}
	return delta
}

// JudgePrompt builds the evaluation-only prompt for the second model call.
// The judge sees the exchange, not the persona directive.
func JudgePrompt(userMsg, reply string) string {
	return fmt.Sprintf(`ユーザーの発言と、それに対するあなたのAI（妹）としての返答を分析し、兄への好感度がどれくらい変動したかを-10から10の範囲の整数で評価してください。
- 兄が妹を喜ばせたらプラスの値。
- 兄が妹を不快にさせたらマイナスの値。
- 普通の会話なら0。

【ユーザーの発言】: %s
【あなたの返答】: %s

評価（-10から10の整数のみを回答）:`, userMsg, reply)
}

// ParseDelta extracts a signed delta from raw model output. The model is
// told to answer with a single integer but routinely wraps it in prose, so
// the rule is tolerant: collect every digit, take a leading "-" anywhere in
// the text as the sign, clamp into [DeltaMin, DeltaMax]. Anything
// unparseable (no digits, integer overflow) degrades to 0 — a bad verdict
// must never abort the exchange.
func ParseDelta(raw string) int {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	if strings.Contains(raw, "-") {
		n = -n
	}
	return ClampDelta(n)
}
