package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no profile exists for a user
var ErrNotFound = errors.New("profile not found")

// UserProfile carries optional per-user context that agents can take into
// account when tailoring guidance.
type UserProfile struct {
	UserID           string            `json:"user_id"`
	Age              int               `json:"age,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	HealthConditions []string          `json:"health_conditions,omitempty"`
	Preferences      map[string]string `json:"preferences,omitempty"`
}

// Validate performs shape validation
func (p *UserProfile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("age must be between 0 and 150, got %d", p.Age)
	}
	return nil
}

// Summary renders the profile as a short context line for agent prompts.
// Returns "" when the profile carries nothing useful.
func (p *UserProfile) Summary() string {
	if p == nil {
		return ""
	}
	var parts []string
	if p.Age > 0 {
		parts = append(parts, fmt.Sprintf("age %d", p.Age))
	}
	if p.Gender != "" {
		parts = append(parts, p.Gender)
	}
	if len(p.HealthConditions) > 0 {
		parts = append(parts, "known conditions: "+strings.Join(p.HealthConditions, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "User profile: " + strings.Join(parts, "; ")
}

// Store persists user profiles
type Store interface {
	// Put creates or replaces a profile
	Put(ctx context.Context, p *UserProfile) error

	// Get retrieves a profile, returning ErrNotFound when absent
	Get(ctx context.Context, userID string) (*UserProfile, error)

	// Delete removes a profile
	Delete(ctx context.Context, userID string) error
}
