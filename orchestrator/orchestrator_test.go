package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wellnesskit/wellness-agents/agent"
	"github.com/wellnesskit/wellness-agents/llm"
	"github.com/wellnesskit/wellness-agents/memory"
	"github.com/wellnesskit/wellness-agents/memory/inmemory"
	"github.com/wellnesskit/wellness-agents/profile"
)

type mockLLM struct {
	resp    *llm.Response
	err     error
	lastReq *llm.ChatRequest
}

func (m *mockLLM) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockLLM) Completion(ctx context.Context, prompt string) (*llm.Response, error) {
	return m.Chat(ctx, &llm.ChatRequest{Messages: []llm.Message{{Role: "user", Content: prompt}}})
}

func (m *mockLLM) Model() string          { return "mock-model" }
func (m *mockLLM) Provider() llm.Provider { return llm.Provider("mock") }
func (m *mockLLM) Validate() error        { return nil }

type mockAgent struct {
	name        string
	confidence  float64
	err         error
	calls       int
	lastContext string
}

func (m *mockAgent) Name() string { return m.name }

func (m *mockAgent) Consult(ctx context.Context, query, convContext string) (*agent.Reply, error) {
	m.calls++
	m.lastContext = convContext
	if m.err != nil {
		return nil, m.err
	}
	return &agent.Reply{
		AgentName:       m.name,
		Content:         "Advice from " + m.name,
		Confidence:      m.confidence,
		Recommendations: []string{m.name + " recommendation"},
		Usage:           &llm.Usage{TotalTokens: 100},
	}, nil
}

type testHarness struct {
	orch   *Orchestrator
	agents map[Intent]*mockAgent
	store  memory.ConversationStore
}

func newTestOrchestrator(t *testing.T, mutate func(*Config)) *testHarness {
	t.Helper()

	agents := map[Intent]*mockAgent{
		IntentSymptom:   {name: agent.NameSymptom, confidence: 0.85},
		IntentLifestyle: {name: agent.NameLifestyle, confidence: 0.75},
		IntentDiet:      {name: agent.NameDiet, confidence: 0.80},
		IntentFitness:   {name: agent.NameFitness, confidence: 0.81},
	}

	store := inmemory.NewStore()
	cfg := Config{
		Agents: map[Intent]agent.Agent{
			IntentSymptom:   agents[IntentSymptom],
			IntentLifestyle: agents[IntentLifestyle],
			IntentDiet:      agents[IntentDiet],
			IntentFitness:   agents[IntentFitness],
		},
		Memory: store,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	orch, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testHarness{orch: orch, agents: agents, store: store}
}

func TestNewRequiresAllSpecialists(t *testing.T) {
	_, err := New(Config{
		Agents: map[Intent]agent.Agent{
			IntentSymptom: &mockAgent{name: "only one"},
		},
		Memory: inmemory.NewStore(),
	})
	if err == nil {
		t.Error("expected error for missing agents")
	}
}

func TestNewRequiresMemory(t *testing.T) {
	_, err := New(Config{
		Agents: map[Intent]agent.Agent{
			IntentSymptom:   &mockAgent{},
			IntentLifestyle: &mockAgent{},
			IntentDiet:      &mockAgent{},
			IntentFitness:   &mockAgent{},
		},
	})
	if err == nil {
		t.Error("expected error for missing conversation store")
	}
}

func TestProcessValidation(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	if _, err := h.orch.Process(context.Background(), Query{Query: "hi"}); err == nil {
		t.Error("missing user_id should fail")
	}
	if _, err := h.orch.Process(context.Background(), Query{UserID: "u1"}); err == nil {
		t.Error("missing query should fail")
	}
}

func TestProcessRoutesToSingleSpecialist(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "suggest a workout for the gym",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Intent != IntentFitness {
		t.Errorf("Intent = %v", result.Intent)
	}
	if result.AgentCount != 1 {
		t.Errorf("AgentCount = %d", result.AgentCount)
	}
	if h.agents[IntentFitness].calls != 1 {
		t.Error("fitness agent should be consulted")
	}
	if h.agents[IntentDiet].calls != 0 {
		t.Error("other specialists should not be consulted")
	}
	if result.RequestID == "" {
		t.Error("request id should be set")
	}
	if result.Disclaimer == "" {
		t.Error("disclaimer should be set")
	}
	if result.RequiresEmergency {
		t.Error("non-emergency query flagged")
	}
}

func TestProcessGeneralFansOut(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "how do I improve my overall wellbeing",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if result.Intent != IntentGeneral {
		t.Errorf("Intent = %v", result.Intent)
	}
	if result.AgentCount != 4 {
		t.Errorf("AgentCount = %d, want all four specialists", result.AgentCount)
	}
	for intent, a := range h.agents {
		if a.calls != 1 {
			t.Errorf("%v agent calls = %d", intent, a.calls)
		}
	}
	if len(result.PrimaryRecommendations) != 4 {
		t.Errorf("PrimaryRecommendations = %v", result.PrimaryRecommendations)
	}
}

func TestProcessEmergencyShortCircuits(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "I have severe chest pain right now",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !result.RequiresEmergency {
		t.Error("RequiresEmergency should be set")
	}
	if result.Intent != IntentEmergency {
		t.Errorf("Intent = %v", result.Intent)
	}
	if result.Warning != EmergencyWarning {
		t.Errorf("Warning = %q", result.Warning)
	}
	if !strings.Contains(result.SynthesizedGuidance, "911") {
		t.Error("guidance should direct to emergency services")
	}
	for intent, a := range h.agents {
		if a.calls != 0 {
			t.Errorf("%v agent consulted during emergency", intent)
		}
	}

	// Emergency exchanges are not recorded as conversation history
	stats, err := h.orch.MemoryStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("MemoryStats() error = %v", err)
	}
	if stats.MessageCount != 0 {
		t.Errorf("MessageCount = %d", stats.MessageCount)
	}
}

func TestProcessIntentOverride(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "suggest a workout", // keywords say fitness
		Intent: "diet",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Intent != IntentDiet {
		t.Errorf("Intent = %v, want the override", result.Intent)
	}
	if h.agents[IntentDiet].calls != 1 || h.agents[IntentFitness].calls != 0 {
		t.Error("override should route to the diet agent")
	}
}

func TestProcessInvalidOverrideFallsBackToClassifier(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "suggest a workout",
		Intent: "horoscope",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Intent != IntentFitness {
		t.Errorf("Intent = %v", result.Intent)
	}
}

func TestProcessDropsFailedAgents(t *testing.T) {
	h := newTestOrchestrator(t, nil)
	h.agents[IntentDiet].err = errors.New("provider down")

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "how do I improve my overall wellbeing",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.AgentCount != 3 {
		t.Errorf("AgentCount = %d, want 3 after one failure", result.AgentCount)
	}
	for _, r := range result.AgentResponses {
		if r.AgentName == agent.NameDiet {
			t.Error("failed agent's reply should be dropped")
		}
	}
}

func TestProcessRecordsConversation(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	if _, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "I have a headache",
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	stats, err := h.orch.MemoryStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("MemoryStats() error = %v", err)
	}
	if stats.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want user + assistant", stats.MessageCount)
	}
	if stats.LastMessage == nil || stats.LastMessage.Role != "assistant" {
		t.Errorf("LastMessage = %+v", stats.LastMessage)
	}
}

func TestProcessFeedsPriorContextToAgents(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	ctx := context.Background()
	if _, err := h.orch.Process(ctx, Query{UserID: "u1", Query: "I have a headache"}); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	if _, err := h.orch.Process(ctx, Query{UserID: "u1", Query: "the headache pain is back"}); err != nil {
		t.Fatalf("second Process() error = %v", err)
	}

	got := h.agents[IntentSymptom].lastContext
	if !strings.Contains(got, "I have a headache") {
		t.Errorf("second consultation missing prior context: %q", got)
	}
	// The question being asked must not appear in its own context
	if strings.Contains(got, "the headache pain is back") {
		t.Error("current query leaked into prior context")
	}
}

func TestProcessUsesCallerProfile(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	_, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "I have a headache",
		Profile: &profile.UserProfile{
			UserID: "u1",
			Age:    42,
			HealthConditions: []string{"migraine"},
		},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := h.agents[IntentSymptom].lastContext
	if !strings.Contains(got, "age 42") || !strings.Contains(got, "migraine") {
		t.Errorf("profile summary missing from context: %q", got)
	}
}

func TestProcessLoadsStoredProfile(t *testing.T) {
	stored := &stubProfileStore{profiles: map[string]*profile.UserProfile{
		"u1": {UserID: "u1", Age: 30, Gender: "female"},
	}}
	h := newTestOrchestrator(t, func(cfg *Config) {
		cfg.Profiles = stored
	})

	if _, err := h.orch.Process(context.Background(), Query{
		UserID: "u1",
		Query:  "I have a headache",
	}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := h.agents[IntentSymptom].lastContext
	if !strings.Contains(got, "age 30") {
		t.Errorf("stored profile missing from context: %q", got)
	}
}

func TestProcessAbsentProfileIsNotAnError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	h := newTestOrchestrator(t, func(cfg *Config) {
		cfg.Profiles = &stubProfileStore{profiles: map[string]*profile.UserProfile{}}
		cfg.Logger = zap.New(core)
	})

	result, err := h.orch.Process(context.Background(), Query{
		UserID: "unknown",
		Query:  "I have a headache",
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.AgentCount != 1 {
		t.Errorf("AgentCount = %d", result.AgentCount)
	}

	// A missing profile is expected, even when the store wraps the sentinel
	for _, entry := range logs.All() {
		if entry.Message == "failed to load profile" {
			t.Error("absent profile should not be logged as a failure")
		}
	}
}

func TestClearMemory(t *testing.T) {
	h := newTestOrchestrator(t, nil)

	ctx := context.Background()
	if _, err := h.orch.Process(ctx, Query{UserID: "u1", Query: "I have a headache"}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if err := h.orch.ClearMemory(ctx, "u1"); err != nil {
		t.Fatalf("ClearMemory() error = %v", err)
	}

	stats, err := h.orch.MemoryStats(ctx, "u1")
	if err != nil {
		t.Fatalf("MemoryStats() error = %v", err)
	}
	if stats.MessageCount != 0 {
		t.Errorf("MessageCount = %d after clear", stats.MessageCount)
	}
}

type stubProfileStore struct {
	profiles map[string]*profile.UserProfile
}

func (s *stubProfileStore) Put(ctx context.Context, p *profile.UserProfile) error {
	s.profiles[p.UserID] = p
	return nil
}

func (s *stubProfileStore) Get(ctx context.Context, userID string) (*profile.UserProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		// Wrapped like a real store would
		return nil, fmt.Errorf("lookup %s: %w", userID, profile.ErrNotFound)
	}
	return p, nil
}

func (s *stubProfileStore) Delete(ctx context.Context, userID string) error {
	delete(s.profiles, userID)
	return nil
}
