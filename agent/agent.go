// Package agent implements the wellness specialist agents. An agent is a
// named system prompt plus model configuration bound to an llm.Client.
// Consulting an agent sends the user's query with prior conversation context
// and returns guidance with extracted recommendations.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wellnesskit/wellness-agents/llm"
)

// Reply is the result of consulting one agent
type Reply struct {
	AgentName       string     `json:"agent_name"`
	Content         string     `json:"content"`
	Confidence      float64    `json:"confidence"`
	Recommendations []string   `json:"recommendations"`
	Usage           *llm.Usage `json:"usage,omitempty"`
}

// Agent is the interface the orchestrator routes queries to
type Agent interface {
	// Name returns the agent's display name
	Name() string

	// Consult runs the agent against a query with optional prior context
	Consult(ctx context.Context, query, convContext string) (*Reply, error)
}

// Config holds configuration for creating a Specialist
type Config struct {
	Name         string
	SystemPrompt string
	Confidence   float64 // base confidence attached to replies
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	Model        llm.Client
	Guard        *Guardrails
}

// Specialist is the default Agent implementation: one prompt role against
// the configured model.
type Specialist struct {
	config Config
}

// NewSpecialist creates a specialist agent
func NewSpecialist(config Config) (*Specialist, error) {
	if config.Model == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if config.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if config.Confidence == 0 {
		config.Confidence = 0.8
	}
	if config.Temperature == 0 {
		config.Temperature = 0.5
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 800
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Specialist{config: config}, nil
}

// Name implements Agent
func (s *Specialist) Name() string { return s.config.Name }

// Consult implements Agent
func (s *Specialist) Consult(ctx context.Context, query, convContext string) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	messages := []llm.Message{}
	if convContext != "" {
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: "Previous context:\n" + convContext,
		})
	}
	messages = append(messages, llm.Message{Role: "user", Content: query})

	req := &llm.ChatRequest{
		Messages:     messages,
		SystemPrompt: s.config.SystemPrompt,
		Temperature:  &s.config.Temperature,
		MaxTokens:    &s.config.MaxTokens,
	}

	if s.config.Guard != nil {
		if err := s.config.Guard.Check(req); err != nil {
			return nil, fmt.Errorf("%s: %w", s.config.Name, err)
		}
	}

	resp, err := s.config.Model.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: LLM call failed: %w", s.config.Name, err)
	}

	return &Reply{
		AgentName:       s.config.Name,
		Content:         resp.Content,
		Confidence:      s.config.Confidence,
		Recommendations: ExtractRecommendations(resp.Content, 5),
		Usage:           resp.Usage,
	}, nil
}

// ExtractRecommendations pulls bullet lines out of agent guidance, capped at
// limit entries. Bullets may use "•", "-", or "*".
func ExtractRecommendations(content string, limit int) []string {
	if limit <= 0 {
		limit = 5
	}
	var recs []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			rec := strings.TrimLeft(line, "•-* ")
			if rec != "" {
				recs = append(recs, rec)
			}
		}
		if len(recs) >= limit {
			break
		}
	}
	return recs
}

var _ Agent = (*Specialist)(nil)
