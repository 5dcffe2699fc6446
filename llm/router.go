package llm

import (
	"context"
	"errors"
)

// RoutePolicy decides which client/model to use for a given request
type RoutePolicy interface {
	// Select returns the target client to use and (optionally) model override
	Select(req *ChatRequest) (Client, string, error)
}

// StaticPolicy routes by req.Model if present, otherwise uses default
type StaticPolicy struct {
	Default Client
	// Optional explicit model->client map
	ByModel map[string]Client
}

func (p StaticPolicy) Select(req *ChatRequest) (Client, string, error) {
	if req != nil && req.Model != "" {
		if c, ok := p.ByModel[req.Model]; ok && c != nil {
			return c, req.Model, nil
		}
		if p.Default != nil {
			return p.Default, req.Model, nil
		}
		return nil, "", errors.New("no default client configured")
	}
	if p.Default == nil {
		return nil, "", errors.New("no default client configured")
	}
	return p.Default, "", nil
}

// RouterClient implements Client and delegates to inner clients via RoutePolicy
type RouterClient struct {
	policy RoutePolicy
}

func NewRouterClient(policy RoutePolicy) *RouterClient { return &RouterClient{policy: policy} }

func (r *RouterClient) Chat(ctx context.Context, req *ChatRequest) (*Response, error) {
	c, modelOverride, err := r.policy.Select(req)
	if err != nil {
		return nil, err
	}
	if modelOverride != "" {
		req = cloneChatRequest(req)
		req.Model = modelOverride
	}
	return c.Chat(ctx, req)
}

func (r *RouterClient) Completion(ctx context.Context, prompt string) (*Response, error) {
	c, _, err := r.policy.Select(&ChatRequest{})
	if err != nil {
		return nil, err
	}
	return c.Completion(ctx, prompt)
}

func (r *RouterClient) Model() string      { return "router" }
func (r *RouterClient) Provider() Provider { return Provider("router") }
func (r *RouterClient) Validate() error {
	if r.policy == nil {
		return errors.New("nil route policy")
	}
	return nil
}

// FallbackClient tries the primary client and falls back to the secondary
// when the primary fails with a retryable provider error. Used to keep the
// assistant answering when one hosted provider is rate limited or down.
type FallbackClient struct {
	Primary   Client
	Secondary Client
}

func NewFallbackClient(primary, secondary Client) *FallbackClient {
	return &FallbackClient{Primary: primary, Secondary: secondary}
}

func (f *FallbackClient) Chat(ctx context.Context, req *ChatRequest) (*Response, error) {
	resp, err := f.Primary.Chat(ctx, req)
	if err == nil {
		return resp, nil
	}
	if f.Secondary == nil || !fallbackWorthy(err) {
		return nil, err
	}
	// Model names are provider-specific; clear any override so the
	// secondary uses its own configured model.
	req = cloneChatRequest(req)
	req.Model = ""
	return f.Secondary.Chat(ctx, req)
}

func (f *FallbackClient) Completion(ctx context.Context, prompt string) (*Response, error) {
	return f.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: prompt}}})
}

func (f *FallbackClient) Model() string { return f.Primary.Model() }

func (f *FallbackClient) Provider() Provider { return f.Primary.Provider() }

func (f *FallbackClient) Validate() error {
	if f.Primary == nil {
		return errors.New("nil primary client")
	}
	if err := f.Primary.Validate(); err != nil {
		return err
	}
	if f.Secondary != nil {
		return f.Secondary.Validate()
	}
	return nil
}

// fallbackWorthy reports whether the error justifies trying another provider.
// Retryable errors (rate limits, server errors, timeouts) have already been
// retried against the primary by its own retrier.
func fallbackWorthy(err error) bool {
	if IsRetryableError(err) {
		return true
	}
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return isRetryableError(llmErr.Type)
	}
	return false
}

func cloneChatRequest(req *ChatRequest) *ChatRequest {
	if req == nil {
		return &ChatRequest{}
	}
	cp := *req
	// Shallow copy is fine for our usage
	return &cp
}

var (
	_ Client = (*RouterClient)(nil)
	_ Client = (*FallbackClient)(nil)
)
