package orchestrator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wellnesskit/wellness-agents/agent"
)

// Disclaimer accompanies every non-emergency response
const Disclaimer = "This is educational wellness guidance, not medical advice. Consult healthcare professionals for medical concerns."

// Synthesizer combines agent replies into unified guidance text with a
// deduplicated recommendation list.
type Synthesizer struct {
	// MinConfidence filters low-confidence replies; replies below it are
	// only used when no reply passes.
	MinConfidence float64
	// MaxRecommendations caps the unified list
	MaxRecommendations int
}

// NewSynthesizer creates a synthesizer with the default thresholds
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		MinConfidence:      0.65,
		MaxRecommendations: 7,
	}
}

// Synthesize renders the final guidance for an intent from agent replies.
// Returns the guidance text and the unified recommendations.
func (s *Synthesizer) Synthesize(intent Intent, query string, replies []agent.Reply) (string, []string) {
	valid := make([]agent.Reply, 0, len(replies))
	for _, r := range replies {
		if r.Confidence >= s.MinConfidence {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		valid = replies
	}

	if len(valid) == 0 {
		return fallbackGuidance(intent), nil
	}

	var guidance string
	switch intent {
	case IntentSymptom:
		guidance = s.synthesizeSymptom(valid, query)
	case IntentLifestyle:
		guidance = s.synthesizeLifestyle(valid, query)
	case IntentDiet:
		guidance = s.synthesizeDiet(valid, query)
	case IntentFitness:
		guidance = s.synthesizeFitness(valid, query)
	default:
		guidance = s.synthesizeGeneral(valid, query)
	}

	return guidance, s.unifyRecommendations(valid)
}

func (s *Synthesizer) synthesizeSymptom(replies []agent.Reply, query string) string {
	primary := replies[0]

	var b strings.Builder
	fmt.Fprintf(&b, "## Symptom Assessment\n\n**Your concern:** %s\n\n**Initial Assessment:**\n%s\n\n**Key Recommendations:**\n", query, excerpt(primary.Content, 300))
	for i, rec := range capped(primary.Recommendations, 4) {
		fmt.Fprintf(&b, "\n%d. %s", i+1, rec)
	}
	b.WriteString("\n\n**Important Note:**\nThis is general wellness perspective. If symptoms persist, worsen, or are severe, please consult a healthcare provider.\n")
	return b.String()
}

func (s *Synthesizer) synthesizeLifestyle(replies []agent.Reply, query string) string {
	primary := replies[0]

	var b strings.Builder
	fmt.Fprintf(&b, "## Lifestyle & Wellness Guidance\n\n**Your question:** %s\n\n**Recommended Approach:**\n%s\n\n**Action Items:**\n", query, excerpt(primary.Content, 250))
	for _, rec := range capped(primary.Recommendations, 5) {
		fmt.Fprintf(&b, "\n• %s", rec)
	}
	b.WriteString("\n\n**Implementation Strategy:**\nStart with 1-2 recommendations that resonate most with you. Build momentum gradually.\n")
	return b.String()
}

func (s *Synthesizer) synthesizeDiet(replies []agent.Reply, query string) string {
	primary := replies[0]

	var b strings.Builder
	fmt.Fprintf(&b, "## Nutrition & Diet Guidance\n\n**Your question:** %s\n\n**Nutritional Perspective:**\n%s\n\n**Food Suggestions:**\n", query, excerpt(primary.Content, 250))
	for _, rec := range capped(primary.Recommendations, 5) {
		fmt.Fprintf(&b, "\n• %s", rec)
	}
	b.WriteString("\n\n**Dietary Note:**\nFor specific medical dietary needs, consult a registered dietitian.\n")
	return b.String()
}

func (s *Synthesizer) synthesizeFitness(replies []agent.Reply, query string) string {
	primary := replies[0]

	var b strings.Builder
	fmt.Fprintf(&b, "## Fitness & Exercise Guidance\n\n**Your question:** %s\n\n**Exercise Recommendation:**\n%s\n\n**Suggested Activities:**\n", query, excerpt(primary.Content, 250))
	for _, rec := range capped(primary.Recommendations, 5) {
		fmt.Fprintf(&b, "\n• %s", rec)
	}
	b.WriteString("\n\n**Safety Note:**\nStart gradually and listen to your body. Stop if you experience pain. Consult healthcare provider before starting new programs.\n")
	return b.String()
}

func (s *Synthesizer) synthesizeGeneral(replies []agent.Reply, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Comprehensive Wellness Perspective\n\n**Your question:** %s\n\n**Multi-Dimensional Assessment:**", query)
	for _, r := range capReplies(replies, 4) {
		if r.Confidence > 0.7 {
			fmt.Fprintf(&b, "\n\n**%s:**\n%s", r.AgentName, excerpt(r.Content, 200))
		}
	}
	b.WriteString("\n\n**Integrated Recommendations:**\n")
	// The inline list is tighter than the response-level recommendation cap
	for i, rec := range capped(s.unifyRecommendations(replies), 6) {
		fmt.Fprintf(&b, "\n%d. %s", i+1, rec)
	}
	return b.String()
}

// unifyRecommendations deduplicates case-insensitively, preserving first
// appearance order across replies.
func (s *Synthesizer) unifyRecommendations(replies []agent.Reply) []string {
	limit := s.MaxRecommendations
	if limit <= 0 {
		limit = 7
	}
	var all []string
	seen := make(map[string]bool)
	for _, r := range replies {
		for _, rec := range r.Recommendations {
			key := cutAtRuneBoundary(strings.ToLower(rec), 50)
			if !seen[key] {
				all = append(all, rec)
				seen[key] = true
			}
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

func fallbackGuidance(intent Intent) string {
	switch intent {
	case IntentSymptom:
		return "Unable to assess symptoms at this time. Please consult a healthcare provider."
	case IntentLifestyle:
		return "Unable to provide lifestyle guidance. Consider consulting a wellness coach."
	case IntentDiet:
		return "Unable to provide nutrition guidance. Consult a registered dietitian."
	case IntentFitness:
		return "Unable to provide fitness guidance. Consult a fitness professional."
	default:
		return "Unable to process your query. Please rephrase and try again."
	}
}

func excerpt(content string, max int) string {
	content = strings.TrimSpace(content)
	if len(content) <= max {
		return content
	}
	return cutAtRuneBoundary(content, max) + "..."
}

// cutAtRuneBoundary truncates s to at most max bytes without splitting a
// multi-byte character.
func cutAtRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func capped(recs []string, n int) []string {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func capReplies(replies []agent.Reply, n int) []agent.Reply {
	if len(replies) > n {
		return replies[:n]
	}
	return replies
}
