// Package triage implements the keyword-matching safety gate that
// preempts model analysis for apparently critical symptoms. It is a
// conservative, high-recall filter, not a medical determination.
package triage

import (
	"strings"

	"medichain/internal/logging"
)

// criticalPhrases is the fixed list of phrases that short-circuit the
// intake pipeline. Matching is case-insensitive substring search, so
// "I have severe chest pain" triggers on "chest pain".
var criticalPhrases = []string{
	"chest pain",
	"loss of consciousness",
	"severe bleeding",
	"seizure",
	"paralysis",
	"slurred speech",
	"vision loss",
	"severe pain",
	"breathing difficulty",
	"difficulty breathing",
	"shortness of breath",
	"sudden numbness",
	"suicidal",
}

// Classify reports whether the symptom text contains any critical
// phrase. Pure and deterministic; no side effects beyond debug logs.
func Classify(symptomText string) bool {
	_, ok := Match(symptomText)
	return ok
}

// Match returns the first critical phrase found in the text, if any.
func Match(symptomText string) (string, bool) {
	lower := strings.ToLower(symptomText)
	for _, phrase := range criticalPhrases {
		if strings.Contains(lower, phrase) {
			logging.Triage("critical phrase matched: %q", phrase)
			return phrase, true
		}
	}
	return "", false
}

// Phrases returns a copy of the configured critical-symptom phrases.
func Phrases() []string {
	out := make([]string, len(criticalPhrases))
	copy(out, criticalPhrases)
	return out
}
