package topicgraph

import "fmt"

// Status is a topic's position in its lifecycle.
type Status string

const (
	StatusLocked    Status = "LOCKED"    // One or more prerequisites not yet completed
	StatusAvailable Status = "AVAILABLE" // All prerequisites completed; no content yet
	StatusGenerated Status = "GENERATED" // Lesson content generated
	StatusCompleted Status = "COMPLETED" // Marked done by the learner
)

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusLocked, StatusAvailable, StatusGenerated, StatusCompleted}
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown topic status: %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

func (s Status) rank() int {
	switch s {
	case StatusLocked:
		return 0
	case StatusAvailable:
		return 1
	case StatusGenerated:
		return 2
	case StatusCompleted:
		return 3
	default:
		return -1
	}
}

// CanTransition reports whether moving from s to next is a forward step.
// COMPLETED is terminal; skipping states (e.g. AVAILABLE -> COMPLETED) is allowed.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() > s.rank()
}

// HasContent reports whether a topic in this status may own generated content.
func (s Status) HasContent() bool {
	return s == StatusGenerated || s == StatusCompleted
}

// InitialStatus returns the status a freshly created topic gets given the
// number of prerequisites pointing at it.
func InitialStatus(inDegree int) Status {
	if inDegree == 0 {
		return StatusAvailable
	}
	return StatusLocked
}

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "🔓"
	case StatusGenerated:
		return "📖"
	case StatusCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusGenerated:
		return "Ready"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}
