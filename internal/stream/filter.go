package stream

import (
	"strings"
)

// LevelAll disables level filtering
const LevelAll = "ALL"

// Criteria is the user-specified filter: a level selector and a
// free-text query. Derived view state only; never persisted.
type Criteria struct {
	Level string
	Query string
}

// Matches reports whether a single message passes the criteria.
// Filtering is conjunctive: level AND text must both match.
func (c Criteria) Matches(msg Message) bool {
	if c.Level != "" && c.Level != LevelAll && c.Level != msg.Level {
		return false
	}
	if c.Query == "" {
		return true
	}
	query := strings.ToLower(c.Query)
	return strings.Contains(strings.ToLower(msg.Text), query) ||
		strings.Contains(strings.ToLower(msg.Logger), query)
}

// Visible derives the currently-visible subset of msgs. Pure: msgs is
// never mutated and the same inputs always yield the same output.
func Visible(msgs []Message, c Criteria) []Message {
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if c.Matches(msg) {
			out = append(out, msg)
		}
	}
	return out
}
