package chat

import "strings"

// RelevanceClassifier decides whether a user message refers to the specific
// tracked cat, by plain substring containment of the configured marker.
type RelevanceClassifier struct {
	marker string
}

func NewRelevanceClassifier(marker string) *RelevanceClassifier {
	return &RelevanceClassifier{marker: marker}
}

// Classify reports whether text mentions the tracked subject.
// An empty marker or empty text never matches.
func (c *RelevanceClassifier) Classify(text string) bool {
	if c.marker == "" || text == "" {
		return false
	}
	return strings.Contains(text, c.marker)
}
