// Package planner turns a raw natural-language command into an
// executable plan. Planning is a short-circuit cascade over tiers of
// increasing cost: immediate hotfix patterns, direct system rules,
// contact-backed call/message patterns, enhanced multi-clause rules, a
// remote LLM, and an always-available fallback.
package planner

import (
	"regexp"
	"strings"
)

var (
	wakeWordRe  = regexp.MustCompile(`(?i)(hey|ok|hi|hello|please)\s+(jarvis|assistant|google|alexa|siri|cortana)\s*`)
	fillerRe    = regexp.MustCompile(`(?i)\b(can you|could you|would you|will you|i want to|i need to)\b`)
	contactOfRe = regexp.MustCompile(`(?i)\b(contact|person|number)\s+of\s+`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// typoFixes maps frequent voice-transcription mistakes to their
// intended word. Whole-word matches only.
var typoFixes = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bwattsapp\b`), "whatsapp"},
	{regexp.MustCompile(`(?i)\bwhatsup\b`), "whatsapp"},
	{regexp.MustCompile(`(?i)\binsta\b`), "instagram"},
	{regexp.MustCompile(`(?i)\byt\b`), "youtube"},
	{regexp.MustCompile(`(?i)\bfb\b`), "facebook"},
	{regexp.MustCompile(`(?i)\bmsg\b`), "message"},
	{regexp.MustCompile(`(?i)\bmsgs\b`), "messages"},
	{regexp.MustCompile(`(?i)\btxt\b`), "text"},
	{regexp.MustCompile(`(?i)\bplz\b`), "please"},
	{regexp.MustCompile(`(?i)\bu\b`), "you"},
	{regexp.MustCompile(`(?i)\bur\b`), "your"},
	{regexp.MustCompile(`(?i)\bpm\b`), "prime minister"},
}

// Normalize strips wake words and filler, fixes common transcription
// typos, collapses whitespace and lowercases. Pure and idempotent;
// never fails.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = wakeWordRe.ReplaceAllString(s, "")
	s = fillerRe.ReplaceAllString(s, "")
	s = contactOfRe.ReplaceAllString(s, "")
	for _, t := range typoFixes {
		s = t.re.ReplaceAllString(s, t.replacement)
	}
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
