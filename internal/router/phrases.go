// ABOUTME: Keyword fast path that recognizes patient-history queries without an oracle call
// ABOUTME: Case-insensitive substring match over a fixed phrase set
package router

import "strings"

// DefaultJourneyKeywords are the phrases that mark a query as a journey request
var DefaultJourneyKeywords = []string{
	"history",
	"journey",
	"timeline",
	"past",
	"appointment",
	"treatment",
	"medication",
	"visit",
	"result",
	"record",
	"medical history",
	"health journey",
}

// PhraseMatcher is the zero-cost journey classifier
type PhraseMatcher struct {
	keywords []string
}

// NewPhraseMatcher builds a matcher over keywords, or DefaultJourneyKeywords when none are given
func NewPhraseMatcher(keywords ...string) *PhraseMatcher {
	if len(keywords) == 0 {
		keywords = DefaultJourneyKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &PhraseMatcher{keywords: lowered}
}

// ClassifyFast reports whether text contains any journey keyword
func (m *PhraseMatcher) ClassifyFast(text string) bool {
	_, ok := m.Match(text)
	return ok
}

// Match returns the first keyword found in text
func (m *PhraseMatcher) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range m.keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}
