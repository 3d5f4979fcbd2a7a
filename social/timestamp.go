// Package social defines the entity model shared by all actor kinds:
// posts, chats, users, the lightweight registry references, and the
// business-error taxonomy commands report through.
package social

import (
	"time"
)

// timestampLayout is fixed-width down to nanoseconds so that
// string-lexicographic ordering of timestamps equals chronological
// ordering. Registries and update cursors rely on this.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp is a wall-clock instant rendered as a fixed-width UTC string.
// Comparison is plain string comparison.
type Timestamp string

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return At(time.Now())
}

// At converts a time.Time to a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(timestampLayout))
}

// After reports whether t is strictly later than other.
func (t Timestamp) After(other Timestamp) bool {
	return t > other
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == ""
}

// Time parses the timestamp back into a time.Time.
func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(timestampLayout, string(t))
}
