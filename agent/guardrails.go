package agent

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/wellnesskit/wellness-agents/llm"
)

// Guardrails provides minimal input filtering applied before every LLM call:
// a length cap on the user's message and a deny-substring screen.
type Guardrails struct {
	// Deny if any of these substrings appear in the user input
	DenySubstrings []string
	// Max input length; longer input is truncated, not rejected
	MaxInputChars int
}

// ErrBlocked is returned when input matches a deny substring
var ErrBlocked = errors.New("request blocked by guardrails")

// Check enforces the guardrails on the last user message of req, mutating
// it in place when truncation applies.
func (g *Guardrails) Check(req *llm.ChatRequest) error {
	if req == nil || len(req.Messages) == 0 {
		return nil
	}
	last := &req.Messages[len(req.Messages)-1]
	if last.Role != "user" {
		return nil
	}
	if g.MaxInputChars > 0 && len(last.Content) > g.MaxInputChars {
		// Walk back so truncation never splits a multi-byte character
		cut := g.MaxInputChars
		for cut > 0 && !utf8.RuneStart(last.Content[cut]) {
			cut--
		}
		last.Content = last.Content[:cut]
	}
	lower := strings.ToLower(last.Content)
	for _, s := range g.DenySubstrings {
		if s == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s)) {
			return ErrBlocked
		}
	}
	return nil
}
