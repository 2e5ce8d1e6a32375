package domain

import "strings"

// DefaultRetrievalK is the number of questions returned when a request
// does not ask for a specific count.
const DefaultRetrievalK = 5

// QuestionFilter is an exact-match constraint over stored question metadata.
// Nil fields are unconstrained.
type QuestionFilter struct {
	// Subject matches Question.Subject after lower-casing.
	Subject *string

	// Year matches Question.Year exactly.
	Year *int
}

// IsEmpty returns true if no constraint is set.
func (f QuestionFilter) IsEmpty() bool {
	return f.Subject == nil && f.Year == nil
}

// Normalised returns a copy with the subject trimmed and lower-cased.
// A blank subject is treated as unset.
func (f QuestionFilter) Normalised() QuestionFilter {
	out := QuestionFilter{Year: f.Year}
	if f.Subject != nil {
		s := strings.ToLower(strings.TrimSpace(*f.Subject))
		if s != "" {
			out.Subject = &s
		}
	}
	return out
}

// Matches reports whether q satisfies every constraint of the filter.
func (f QuestionFilter) Matches(q Question) bool {
	n := f.Normalised()
	if n.Subject != nil && strings.ToLower(q.Subject) != *n.Subject {
		return false
	}
	if n.Year != nil && (q.Year == nil || *q.Year != *n.Year) {
		return false
	}
	return true
}

// RetrieveRequest is the single retrieval query surface.
type RetrieveRequest struct {
	// Query is the free-text query. Empty means metadata-only retrieval.
	Query string

	// K is the maximum number of results. Zero or negative uses DefaultRetrievalK.
	K int

	// Filter constrains results to matching subject and year.
	Filter QuestionFilter
}

// RetrievalResult is a single retrieved question.
type RetrievalResult struct {
	// Question is the stored question record.
	Question Question `json:"question"`

	// Distance is the Euclidean distance to the query embedding.
	// Zero when the result was not ranked.
	Distance float32 `json:"distance"`

	// Ranked is true when results are ordered by similarity rather than
	// by the store's native order.
	Ranked bool `json:"ranked"`
}
