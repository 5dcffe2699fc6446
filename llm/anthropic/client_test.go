package anthropic

import (
	"testing"

	"github.com/wellnesskit/wellness-agents/llm"
)

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{APIKey: "sk-ant-test"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.Model() != llm.ModelClaude35Haiku {
		t.Errorf("Model() = %q", c.Model())
	}
	if c.Provider() != llm.ProviderAnthropic {
		t.Errorf("Provider() = %q", c.Provider())
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"missing api key", Config{}},
		{"unknown model", Config{APIKey: "k", Model: "claude-99"}},
		{"wrong provider model", Config{APIKey: "k", Model: llm.ModelGPT4oMini}},
		{"temperature too high", Config{APIKey: "k", Temperature: 1.5}},
		{"negative max tokens", Config{APIKey: "k", MaxTokens: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewClientAcceptsKnownModels(t *testing.T) {
	for _, m := range []string{llm.ModelClaude35Sonnet, llm.ModelClaude35Haiku, llm.ModelClaudeHaiku} {
		if _, err := NewClient(Config{APIKey: "k", Model: m}); err != nil {
			t.Errorf("NewClient(%s) error = %v", m, err)
		}
	}
}
