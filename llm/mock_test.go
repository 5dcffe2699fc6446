package llm

import "context"

type mockStep struct {
	resp *Response
	err  error
}

// mockClient is a scripted Client for tests. Steps are consumed in call
// order; the last step repeats once exhausted.
type mockClient struct {
	steps    []mockStep
	calls    int
	lastReq  *ChatRequest
	model    string
	provider Provider
}

func (m *mockClient) Chat(ctx context.Context, req *ChatRequest) (*Response, error) {
	m.lastReq = req
	i := m.calls
	m.calls++
	if len(m.steps) == 0 {
		return &Response{Content: "ok", Model: m.Model(), Provider: m.Provider()}, nil
	}
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	step := m.steps[i]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

func (m *mockClient) Completion(ctx context.Context, prompt string) (*Response, error) {
	return m.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: prompt}}})
}

func (m *mockClient) Model() string {
	if m.model == "" {
		return "mock-model"
	}
	return m.model
}

func (m *mockClient) Provider() Provider {
	if m.provider == "" {
		return Provider("mock")
	}
	return m.provider
}

func (m *mockClient) Validate() error { return nil }

var _ Client = (*mockClient)(nil)
