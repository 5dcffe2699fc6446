package orchestrator

import (
	"context"
	"strings"

	"github.com/wellnesskit/wellness-agents/llm"
)

// Intent is the label assigned to a user query to select which agents are
// consulted.
type Intent string

const (
	IntentSymptom   Intent = "symptom"
	IntentLifestyle Intent = "lifestyle"
	IntentDiet      Intent = "diet"
	IntentFitness   Intent = "fitness"
	IntentGeneral   Intent = "general"
	// IntentEmergency is produced by the safety screen, never by the
	// classifier.
	IntentEmergency Intent = "emergency"
)

// Intents returns the classifiable intent labels in routing precedence order
func Intents() []Intent {
	return []Intent{IntentSymptom, IntentLifestyle, IntentDiet, IntentFitness, IntentGeneral}
}

// ValidIntent reports whether label is a classifiable intent
func ValidIntent(label string) bool {
	for _, i := range Intents() {
		if string(i) == label {
			return true
		}
	}
	return false
}

var intentKeywords = map[Intent][]string{
	IntentSymptom: {
		"symptom", "ache", "pain", "tired", "fatigue", "sick",
		"illness", "feel", "hurt", "sore", "dizzy", "nausea",
		"cough", "fever", "headache",
	},
	IntentLifestyle: {
		"sleep", "stress", "anxiety", "routine", "habit", "relax",
		"tired", "fatigue", "meditation", "work-life", "balance",
		"energy", "mood", "mental",
	},
	IntentDiet: {
		"food", "eat", "diet", "nutrition", "meal", "cook",
		"recipe", "calorie", "protein", "healthy", "weight",
		"appetite", "digest", "stomach",
	},
	IntentFitness: {
		"exercise", "workout", "gym", "run", "walk", "strength",
		"cardio", "fit", "activity", "sport", "train", "muscle",
		"flexibility", "endurance",
	},
}

const classifierPrompt = `You are an intent classifier for a wellness assistant. Classify the user's query into exactly one of: symptom, lifestyle, diet, fitness, general. Use "general" when the query spans several areas or fits none.`

// Classifier assigns an Intent to a query. The keyword scorer always works;
// when a model client is configured it is asked first and the scorer serves
// as the fallback on any error or invalid label.
type Classifier struct {
	model llm.Client // optional
}

// NewClassifier creates a keyword-only classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// NewLLMClassifier creates a classifier that consults the model first
func NewLLMClassifier(model llm.Client) *Classifier {
	return &Classifier{model: model}
}

// Classify returns the intent for a query
func (c *Classifier) Classify(ctx context.Context, query string) Intent {
	if c.model != nil {
		if intent, ok := c.classifyLLM(ctx, query); ok {
			return intent
		}
	}
	return classifyKeywords(query)
}

func (c *Classifier) classifyLLM(ctx context.Context, query string) (Intent, bool) {
	var out llm.IntentClassification
	temp := 0.0
	maxTokens := 200
	req := &llm.ChatRequest{
		Messages:     []llm.Message{{Role: "user", Content: query}},
		SystemPrompt: classifierPrompt,
		Temperature:  &temp,
		MaxTokens:    &maxTokens,
	}
	if _, err := llm.ChatStructured(ctx, c.model, req, &out); err != nil {
		return IntentGeneral, false
	}
	if !ValidIntent(out.Label) {
		return IntentGeneral, false
	}
	return Intent(out.Label), true
}

// classifyKeywords scores each intent by keyword hit count; highest wins,
// zero hits means general. Ties resolve in routing precedence order.
func classifyKeywords(query string) Intent {
	queryLower := strings.ToLower(query)

	best := IntentGeneral
	bestScore := 0
	for _, intent := range Intents() {
		score := 0
		for _, keyword := range intentKeywords[intent] {
			if strings.Contains(queryLower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	return best
}
