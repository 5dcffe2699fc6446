package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Structured represents a type that can be parsed from a model's JSON output
type Structured interface {
	// Validate validates the structured output
	Validate() error
	// JSONSchema returns the JSON schema for this type
	JSONSchema() map[string]interface{}
}

// IntentClassification is the structured output requested from the intent
// classifier model: a wellness intent label with a confidence score.
type IntentClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

func (ic IntentClassification) Validate() error {
	if ic.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if ic.Confidence < 0 || ic.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", ic.Confidence)
	}
	return nil
}

func (ic IntentClassification) JSONSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"label": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"symptom", "lifestyle", "diet", "fitness", "general"},
				"description": "The wellness intent of the user's query",
			},
			"confidence": map[string]interface{}{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Confidence score between 0 and 1",
			},
			"reasoning": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the classification",
			},
		},
		"required": []string{"label", "confidence"},
	}
}

// ChatStructured sends a chat request that instructs the model to reply with
// a JSON object matching out's schema, then parses and validates the reply.
// The out parameter must be a non-nil pointer.
func ChatStructured[T Structured](ctx context.Context, c Client, req *ChatRequest, out *T) (*Response, error) {
	req = cloneChatRequest(req)

	schemaBytes, err := json.MarshalIndent((*out).JSONSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	instruction := "You must respond ONLY with a JSON object matching the specified schema. Do not include any other text outside the JSON."
	if req.SystemPrompt != "" {
		req.SystemPrompt += "\n\n" + instruction
	} else {
		req.SystemPrompt = instruction
	}

	msgs := make([]Message, len(req.Messages))
	copy(msgs, req.Messages)
	if len(msgs) > 0 && msgs[len(msgs)-1].Role == "user" {
		msgs[len(msgs)-1].Content += fmt.Sprintf("\n\nRespond with valid JSON matching this schema:\n```json\n%s\n```", schemaBytes)
	}
	req.Messages = msgs
	req.ResponseFormat = &ResponseFormat{Type: "json_object"}

	resp, err := c.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := ParseStructured(resp.Content, out); err != nil {
		return resp, err
	}
	return resp, nil
}

// ParseStructured parses JSON into a structured type and validates it.
// Markdown code fences around the JSON are tolerated since some models wrap
// output despite instructions.
func ParseStructured[T Structured](raw string, out *T) error {
	raw = stripCodeFence(raw)

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return NewLLMErrorWithCause("", ErrorTypeJSONParsingError, "invalid JSON in model output", err)
	}
	if err := (*out).Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
