package llm

import (
	"context"
	"fmt"
	"testing"
)

func TestStaticPolicyRoutesByModel(t *testing.T) {
	def := &mockClient{model: "default"}
	special := &mockClient{model: "special"}

	p := StaticPolicy{
		Default: def,
		ByModel: map[string]Client{"special": special},
	}

	c, model, err := p.Select(&ChatRequest{Model: "special"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if c != special || model != "special" {
		t.Errorf("Select() routed to %v with model %q", c, model)
	}

	c, _, err = p.Select(&ChatRequest{})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if c != Client(def) {
		t.Error("empty model should route to default")
	}
}

func TestStaticPolicyNoDefault(t *testing.T) {
	p := StaticPolicy{}
	if _, _, err := p.Select(&ChatRequest{}); err == nil {
		t.Error("expected error with no default client")
	}
}

func TestRouterClientDelegates(t *testing.T) {
	inner := &mockClient{steps: []mockStep{{resp: &Response{Content: "routed"}}}}
	r := NewRouterClient(StaticPolicy{Default: inner})

	resp, err := r.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "routed" {
		t.Errorf("Content = %q", resp.Content)
	}
}

// Mirrors the dual-provider composition: model overrides route to the
// provider that serves the model, everything else goes through the fallback
// chain.
func TestRouterClientRoutesModelsAcrossProviders(t *testing.T) {
	oai := &mockClient{provider: ProviderOpenAI, steps: []mockStep{{resp: &Response{Content: "from openai"}}}}
	ant := &mockClient{provider: ProviderAnthropic, steps: []mockStep{{resp: &Response{Content: "from anthropic"}}}}

	byModel := make(map[string]Client)
	for name, m := range AvailableModels {
		if m.Provider == ProviderOpenAI {
			byModel[name] = oai
		} else {
			byModel[name] = ant
		}
	}
	r := NewRouterClient(StaticPolicy{
		Default: NewFallbackClient(oai, ant),
		ByModel: byModel,
	})

	resp, err := r.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Model:    ModelClaude35Haiku,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "from anthropic" {
		t.Errorf("Content = %q, want the anthropic client", resp.Content)
	}
	if ant.lastReq.Model != ModelClaude35Haiku {
		t.Errorf("Model = %q, override should be preserved", ant.lastReq.Model)
	}

	resp, err = r.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "from openai" {
		t.Errorf("Content = %q, default should reach the primary", resp.Content)
	}
}

func TestFallbackClientUsesPrimaryOnSuccess(t *testing.T) {
	primary := &mockClient{steps: []mockStep{{resp: &Response{Content: "primary"}}}}
	secondary := &mockClient{steps: []mockStep{{resp: &Response{Content: "secondary"}}}}
	f := NewFallbackClient(primary, secondary)

	resp, err := f.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "primary" {
		t.Errorf("Content = %q, want primary", resp.Content)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times", secondary.calls)
	}
}

func TestFallbackClientFallsBackOnRetryableError(t *testing.T) {
	primary := &mockClient{steps: []mockStep{
		{err: NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow down")},
	}}
	secondary := &mockClient{steps: []mockStep{{resp: &Response{Content: "secondary"}}}}
	f := NewFallbackClient(primary, secondary)

	resp, err := f.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
		Model:    ModelGPT4oMini,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "secondary" {
		t.Errorf("Content = %q, want secondary", resp.Content)
	}
	if secondary.lastReq.Model != "" {
		t.Errorf("model override %q should be cleared for the secondary provider", secondary.lastReq.Model)
	}
}

func TestFallbackClientFallsBackOnWrappedError(t *testing.T) {
	// Retriers wrap the final error, so fallback detection must unwrap.
	wrapped := fmt.Errorf("operation failed after 4 attempts: %w",
		NewLLMError(ProviderOpenAI, ErrorTypeServerError, "boom"))
	primary := &mockClient{steps: []mockStep{{err: wrapped}}}
	secondary := &mockClient{steps: []mockStep{{resp: &Response{Content: "secondary"}}}}
	f := NewFallbackClient(primary, secondary)

	resp, err := f.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "secondary" {
		t.Errorf("Content = %q, want secondary", resp.Content)
	}
}

func TestFallbackClientDoesNotFallBackOnTerminalError(t *testing.T) {
	primary := &mockClient{steps: []mockStep{
		{err: NewLLMError(ProviderOpenAI, ErrorTypeAuthentication, "bad key")},
	}}
	secondary := &mockClient{}
	f := NewFallbackClient(primary, secondary)

	_, err := f.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if secondary.calls != 0 {
		t.Error("secondary should not be consulted on authentication errors")
	}
}

func TestFallbackClientPropagatesWhenNoSecondary(t *testing.T) {
	primary := &mockClient{steps: []mockStep{
		{err: NewLLMError(ProviderOpenAI, ErrorTypeRateLimit, "slow down")},
	}}
	f := NewFallbackClient(primary, nil)

	_, err := f.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if !IsRateLimitError(err) {
		t.Errorf("error = %v, want the primary's rate limit error", err)
	}
}
