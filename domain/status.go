package domain

import "time"

// Mood tags a member can report in a check-in.
var Moods = []string{"happy", "excited", "sad", "angry", "nervous", "peaceful"}

// Feelings are body-feeling tags a member can report in a check-in.
var Feelings = []string{"energized", "sore", "tired", "sick", "relaxed", "tense"}

// StatusEntry is a mood/health check-in shared with a group.
type StatusEntry struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Moods     []string  `json:"moods"`
	Feelings  []string  `json:"feelings"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the tag lists against the closed sets. Both lists may be empty.
func (s *StatusEntry) Validate() error {
	if s == nil {
		return ErrInvalidPayload
	}
	if s.GroupID == "" {
		return Invalid("group id is required")
	}
	for _, m := range s.Moods {
		if !contains(Moods, m) {
			return Invalid("unknown mood %q", m)
		}
	}
	for _, f := range s.Feelings {
		if !contains(Feelings, f) {
			return Invalid("unknown body feeling %q", f)
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
