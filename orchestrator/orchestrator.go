// Package orchestrator coordinates the wellness pipeline: safety screening,
// intent classification, routing to specialist agents, conversation memory,
// and synthesis of the final response.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wellnesskit/wellness-agents/agent"
	"github.com/wellnesskit/wellness-agents/memory"
	obs "github.com/wellnesskit/wellness-agents/observability"
	"github.com/wellnesskit/wellness-agents/profile"
)

// Query is one user question to the assistant
type Query struct {
	UserID string
	Query  string
	// Intent overrides classification when set to a valid label
	Intent string
	// Profile optionally carries caller-supplied context; when nil and a
	// profile store is configured, the stored profile is used.
	Profile *profile.UserProfile
}

// Result is the synthesized outcome of processing a query
type Result struct {
	RequestID              string        `json:"request_id"`
	UserID                 string        `json:"user_id"`
	Query                  string        `json:"query"`
	Intent                 Intent        `json:"intent"`
	AgentResponses         []agent.Reply `json:"agent_responses"`
	SynthesizedGuidance    string        `json:"synthesized_guidance"`
	PrimaryRecommendations []string      `json:"primary_recommendations"`
	AgentCount             int           `json:"agent_count"`
	Disclaimer             string        `json:"disclaimer"`
	Warning                string        `json:"warning,omitempty"`
	RequiresEmergency      bool          `json:"requires_emergency"`
}

// Config holds orchestrator dependencies
type Config struct {
	Agents     map[Intent]agent.Agent // must cover symptom/lifestyle/diet/fitness
	Classifier *Classifier
	Safety     *SafetyScreen
	Synth      *Synthesizer
	Memory     memory.ConversationStore
	Profiles   profile.Store // optional
	Logger     *zap.Logger
	Metrics    obs.Metrics
	// AgentTimeout bounds the whole fan-out
	AgentTimeout time.Duration
}

// Orchestrator routes queries through the wellness pipeline
type Orchestrator struct {
	agents     map[Intent]agent.Agent
	classifier *Classifier
	safety     *SafetyScreen
	synth      *Synthesizer
	memory     memory.ConversationStore
	profiles   profile.Store
	logger     *zap.Logger
	metrics    obs.Metrics
	timeout    time.Duration
}

// New creates an orchestrator
func New(cfg Config) (*Orchestrator, error) {
	for _, intent := range []Intent{IntentSymptom, IntentLifestyle, IntentDiet, IntentFitness} {
		if cfg.Agents[intent] == nil {
			return nil, fmt.Errorf("missing agent for intent %q", intent)
		}
	}
	if cfg.Memory == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier()
	}
	if cfg.Safety == nil {
		cfg.Safety = &SafetyScreen{}
	}
	if cfg.Synth == nil {
		cfg.Synth = NewSynthesizer()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &obs.NoOpMetrics{}
	}
	if cfg.AgentTimeout == 0 {
		cfg.AgentTimeout = 60 * time.Second
	}
	return &Orchestrator{
		agents:     cfg.Agents,
		classifier: cfg.Classifier,
		safety:     cfg.Safety,
		synth:      cfg.Synth,
		memory:     cfg.Memory,
		profiles:   cfg.Profiles,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		timeout:    cfg.AgentTimeout,
	}, nil
}

// AgentsAvailable returns the number of registered specialist agents
func (o *Orchestrator) AgentsAvailable() int {
	return len(o.agents)
}

// Process runs the complete workflow for a query
func (o *Orchestrator) Process(ctx context.Context, q Query) (*Result, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	requestID := uuid.NewString()
	start := time.Now()
	log := o.logger.With(zap.String("request_id", requestID), zap.String("user_id", q.UserID))
	log.Info("processing wellness query", zap.Int("query_len", len(q.Query)))

	// Emergency language bypasses the agents entirely
	if ok, matched := o.safety.Screen(q.Query); !ok {
		log.Warn("emergency language detected", zap.String("matched", matched))
		o.metrics.IncrementRequests(map[string]string{"intent": string(IntentEmergency)})
		o.metrics.RecordError("emergency", nil)
		return &Result{
			RequestID:           requestID,
			UserID:              q.UserID,
			Query:               q.Query,
			Intent:              IntentEmergency,
			AgentResponses:      []agent.Reply{},
			SynthesizedGuidance: EmergencyGuidance,
			Disclaimer:          Disclaimer,
			Warning:             EmergencyWarning,
			RequiresEmergency:   true,
		}, nil
	}

	intent := Intent(q.Intent)
	if !ValidIntent(q.Intent) {
		intent = o.classifier.Classify(ctx, q.Query)
	}
	log.Info("intent resolved", zap.String("intent", string(intent)))

	convContext := o.buildContext(ctx, q, log)

	replies := o.consult(ctx, intent, q.Query, convContext, log)

	guidance, recommendations := o.synth.Synthesize(intent, q.Query, replies)

	// Record the exchange after consulting so the current question is not
	// fed back to the agents as prior context.
	if err := o.memory.AppendMessage(ctx, q.UserID, "user", q.Query); err != nil {
		log.Warn("failed to store user message", zap.Error(err))
	}
	if err := o.memory.AppendMessage(ctx, q.UserID, "assistant", guidance); err != nil {
		log.Warn("failed to store assistant message", zap.Error(err))
	}

	o.metrics.IncrementRequests(map[string]string{"intent": string(intent)})
	o.metrics.RecordLatency(time.Since(start), map[string]string{"intent": string(intent)})
	for _, r := range replies {
		if r.Usage != nil {
			o.metrics.IncrementTokensUsed(r.Usage.TotalTokens, map[string]string{"agent": r.AgentName})
		}
	}

	return &Result{
		RequestID:              requestID,
		UserID:                 q.UserID,
		Query:                  q.Query,
		Intent:                 intent,
		AgentResponses:         replies,
		SynthesizedGuidance:    guidance,
		PrimaryRecommendations: recommendations,
		AgentCount:             len(replies),
		Disclaimer:             Disclaimer,
	}, nil
}

// MemoryStats returns conversation memory statistics for a user
func (o *Orchestrator) MemoryStats(ctx context.Context, userID string) (memory.Stats, error) {
	return memory.GetStats(ctx, o.memory, userID)
}

// ClearMemory removes a user's conversation history
func (o *Orchestrator) ClearMemory(ctx context.Context, userID string) error {
	return o.memory.ClearUser(ctx, userID)
}

// buildContext assembles the prior-conversation context plus an optional
// profile summary.
func (o *Orchestrator) buildContext(ctx context.Context, q Query, log *zap.Logger) string {
	var convContext string
	if msgs, err := o.memory.GetMessages(ctx, q.UserID); err != nil {
		log.Warn("failed to load conversation memory", zap.Error(err))
	} else {
		convContext = memory.FormatContext(msgs, memory.DefaultContextSize)
	}

	prof := q.Profile
	if prof == nil && o.profiles != nil {
		p, err := o.profiles.Get(ctx, q.UserID)
		switch {
		case err == nil:
			prof = p
		case !errors.Is(err, profile.ErrNotFound):
			log.Warn("failed to load profile", zap.Error(err))
		}
	}
	if summary := prof.Summary(); summary != "" {
		if convContext != "" {
			convContext = summary + "\n" + convContext
		} else {
			convContext = summary
		}
	}
	return convContext
}

// consult runs the agents for an intent. A specific intent consults one
// agent; general fans out to all four concurrently. Individual agent errors
// drop that reply rather than failing the query.
func (o *Orchestrator) consult(ctx context.Context, intent Intent, query, convContext string, log *zap.Logger) []agent.Reply {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	targets := o.targetsFor(intent)

	replies := make([]agent.Reply, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, a := range targets {
		wg.Add(1)
		go func(i int, a agent.Agent) {
			defer wg.Done()
			r, err := a.Consult(ctx, query, convContext)
			if err != nil {
				errs[i] = err
				return
			}
			replies[i] = *r
		}(i, a)
	}
	wg.Wait()

	out := make([]agent.Reply, 0, len(targets))
	for i := range targets {
		if errs[i] != nil {
			log.Warn("agent consultation failed", zap.String("agent", targets[i].Name()), zap.Error(errs[i]))
			o.metrics.RecordError("agent_failure", map[string]string{"agent": targets[i].Name()})
			continue
		}
		out = append(out, replies[i])
	}
	return out
}

func (o *Orchestrator) targetsFor(intent Intent) []agent.Agent {
	if a, ok := o.agents[intent]; ok && intent != IntentGeneral {
		return []agent.Agent{a}
	}
	// General queries get every specialist's perspective
	targets := make([]agent.Agent, 0, 4)
	for _, i := range []Intent{IntentSymptom, IntentLifestyle, IntentDiet, IntentFitness} {
		targets = append(targets, o.agents[i])
	}
	return targets
}
