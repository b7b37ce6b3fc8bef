// ABOUTME: Patient identifier extraction from free text
// ABOUTME: Ordered regex rules, then a reverse word scan, then caller and default fallbacks
package router

import (
	"regexp"
	"strings"
)

// DefaultPatientID is used when neither the text nor the caller names a patient
const DefaultPatientID = "pat1"

// DefaultStopWords are never taken as a partial identifier
var DefaultStopWords = []string{
	"the", "and", "for", "my", "show", "get", "is", "are", "was", "been", "have", "has",
	"do", "does", "did", "will", "can", "could", "should", "would", "may", "might", "must",
	"of", "in", "on", "at", "to", "by", "or", "as", "with", "from", "about",
	"history", "medical", "patient", "journey", "timeline", "past", "appointment",
	"treatment", "medication", "visit", "result", "record",
	"me", "you", "he", "she", "we", "it",
}

// Identifier rule names, most to least specific
const (
	RulePatientKeyword = "patient_keyword"
	RulePreposition    = "for_preposition"
	RuleLabeled        = "id_label"
	RuleStandalone     = "standalone_token"
	RuleWordBounded    = "word_bounded_token"
	RulePartialMention = "partial_mention"
	RuleCallerFallback = "caller_fallback"
	RuleDefault        = "default"
)

type identifierRule struct {
	name string
	re   *regexp.Regexp
}

var identifierRules = []identifierRule{
	{RulePatientKeyword, regexp.MustCompile(`(?i)patient\s+(?:id:?\s*)?([a-z]{0,3}\d+)`)},
	{RulePreposition, regexp.MustCompile(`(?i)for\s+(?:patient\s+)?([a-z]{0,3}\d+)`)},
	{RuleLabeled, regexp.MustCompile(`(?i)id:\s*([a-z]{0,3}\d+)`)},
	{RuleStandalone, regexp.MustCompile(`(?i)([a-z]{0,3}\d+)(?:\s|$)`)},
	{RuleWordBounded, regexp.MustCompile(`(?i)\b([a-z]{0,3}\d+)\b`)},
}

var (
	identifierShape = regexp.MustCompile(`^[a-z]{0,3}\d+$`)
	partialShape    = regexp.MustCompile(`^[a-z]{1,3}\d*$`)
)

// ExtractorConfig carries the defaults the extractor falls back on
type ExtractorConfig struct {
	StopWords []string
	DefaultID string
}

// IdentifierExtractor finds a patient identifier in a query
type IdentifierExtractor struct {
	stopWords map[string]bool
	defaultID string
}

// NewIdentifierExtractor builds an extractor; zero-value config fields use the package defaults
func NewIdentifierExtractor(cfg ExtractorConfig) *IdentifierExtractor {
	words := cfg.StopWords
	if words == nil {
		words = DefaultStopWords
	}
	stop := make(map[string]bool, len(words))
	for _, w := range words {
		stop[strings.ToLower(w)] = true
	}

	defaultID := cfg.DefaultID
	if defaultID == "" {
		defaultID = DefaultPatientID
	}
	return &IdentifierExtractor{stopWords: stop, defaultID: defaultID}
}

// Extract returns the identifier for text, falling back to fallbackUserID and then the default
func (e *IdentifierExtractor) Extract(text, fallbackUserID string) string {
	id, _ := e.ExtractWithRule(text, fallbackUserID)
	return id
}

// ExtractWithRule is Extract plus the name of the rule that produced the identifier
func (e *IdentifierExtractor) ExtractWithRule(text, fallbackUserID string) (string, string) {
	trimmed := strings.TrimSpace(text)

	for _, rule := range identifierRules {
		m := rule.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		candidate := strings.ToLower(m[1])
		if identifierShape.MatchString(candidate) {
			return candidate, rule.name
		}
	}

	if mention, ok := e.partialMention(trimmed); ok {
		return mention, RulePartialMention
	}

	if fallbackUserID != "" {
		return fallbackUserID, RuleCallerFallback
	}
	return e.defaultID, RuleDefault
}

// partialMention scans words from the end for a short identifier-like token such as "pat" or "p3"
func (e *IdentifierExtractor) partialMention(text string) (string, bool) {
	words := strings.Fields(text)
	for i := len(words) - 1; i >= 0; i-- {
		w := strings.Trim(strings.ToLower(words[i]), ".,!?;:")
		if len(w) > 3 || !partialShape.MatchString(w) {
			continue
		}
		if e.stopWords[w] {
			continue
		}
		return w, true
	}
	return "", false
}
