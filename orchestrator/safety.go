package orchestrator

import "strings"

// EmergencyGuidance is returned instead of agent output when the safety
// screen trips.
const EmergencyGuidance = "CRITICAL: This may be a medical emergency. Please seek emergency medical help immediately (call 911 or your local emergency number). If you are having thoughts of self-harm, contact a crisis line such as 988 (US) right away."

// EmergencyWarning is attached to emergency responses
const EmergencyWarning = "EMERGENCY REQUIRED"

var criticalPhrases = []string{
	"chest pain",
	"difficulty breathing",
	"can't breathe",
	"cannot breathe",
	"severe bleeding",
	"loss of consciousness",
	"seizure",
	"suicidal",
	"suicide",
	"self-harm",
	"harm myself",
	"hurt myself",
	"kill myself",
	"overdose",
}

// SafetyScreen detects emergency language that must bypass the agents
// entirely.
type SafetyScreen struct {
	// Extra phrases beyond the built-in list
	ExtraPhrases []string
}

// Screen returns ok=false with the matched phrase when query contains
// emergency language.
func (s *SafetyScreen) Screen(query string) (ok bool, matched string) {
	lower := strings.ToLower(query)
	for _, phrase := range criticalPhrases {
		if strings.Contains(lower, phrase) {
			return false, phrase
		}
	}
	if s != nil {
		for _, phrase := range s.ExtraPhrases {
			if phrase == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(phrase)) {
				return false, phrase
			}
		}
	}
	return true, ""
}
