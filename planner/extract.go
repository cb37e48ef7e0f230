package planner

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsRe = regexp.MustCompile(`\d+`)

// extractNumber returns the first contiguous digit run in text, or
// def if none is present.
func extractNumber(text string, def int) int {
	m := digitsRe.FindString(text)
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return def
	}
	return n
}

var contactNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)call\s+(.+)`),
	regexp.MustCompile(`(?i)dial\s+(.+)`),
	regexp.MustCompile(`(?i)phone\s+(.+)`),
}

var contactViaRe = regexp.MustCompile(`(?i)\s+(?:through|on|using)\s+.+`)

// extractContactName pulls the callee out of a call/dial/phone
// command, dropping a trailing "through/on/using X" qualifier.
func extractContactName(command string) string {
	for _, re := range contactNamePatterns {
		if m := re.FindStringSubmatch(command); m != nil {
			name := strings.TrimSpace(m[1])
			return strings.TrimSpace(contactViaRe.ReplaceAllString(name, ""))
		}
	}
	return ""
}

var searchQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)search\s+(?:on\s+)?(?:google\s+)?(.+)`),
	regexp.MustCompile(`(?i)google\s+(.+)`),
	regexp.MustCompile(`(?i)find\s+(?:me\s+)?(.+)`),
	regexp.MustCompile(`(?i)look\s+up\s+(.+)`),
	regexp.MustCompile(`(.+)`),
}

var searchStopWords = []string{"search", "find", "google", "for", "on", "me", "please"}

// extractSearchQuery strips the search verb and common stop words,
// leaving the bare query. Falls back to the whole text.
func extractSearchQuery(text string) string {
	for _, re := range searchQueryPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			query := strings.TrimSpace(m[1])
			for _, w := range searchStopWords {
				re := regexp.MustCompile(`(?i)\b` + w + `\b`)
				query = re.ReplaceAllString(query, "")
			}
			return strings.TrimSpace(spaceRe.ReplaceAllString(query, " "))
		}
	}
	return text
}

var messagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)message\s+(?:saying\s+)?(.+)`),
	regexp.MustCompile(`(?i)text\s+(?:saying\s+)?(.+)`),
	regexp.MustCompile(`(?i)say\s+(.+)`),
	regexp.MustCompile(`(?i)send\s+(?:a\s+)?(?:message|text)\s+(?:saying\s+)?(.+)`),
	regexp.MustCompile(`(?i)whatsapp\s+(?:saying\s+)?(.+)`),
}

var toSomeoneRe = regexp.MustCompile(`(?i)\bto\s+\w+\b`)

func extractMessage(text string) string {
	for _, re := range messagePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			msg := strings.TrimSpace(m[1])
			return strings.TrimSpace(toSomeoneRe.ReplaceAllString(msg, ""))
		}
	}
	return ""
}

var mediaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)play\s+(.+)`),
	regexp.MustCompile(`(?i)listen\s+to\s+(.+)`),
	regexp.MustCompile(`(?i)watch\s+(.+)`),
}

var mediaNoiseRe = regexp.MustCompile(`(?i)\b(on|in|the|a|an)\b`)

func extractMediaQuery(text string) string {
	for _, re := range mediaPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			media := strings.TrimSpace(m[1])
			media = mediaNoiseRe.ReplaceAllString(media, "")
			return strings.TrimSpace(spaceRe.ReplaceAllString(media, " "))
		}
	}
	return ""
}

var whatsappContactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)to\s+(\w+)(?:\s+in\s+whatsapp|\s+on\s+whatsapp)`),
	regexp.MustCompile(`(?i)whatsapp\s+(\w+)\s+`),
	regexp.MustCompile(`(?i)message\s+(\w+)\s+(?:on\s+)?whatsapp`),
}

func extractWhatsAppContact(command string) string {
	for _, re := range whatsappContactPatterns {
		if m := re.FindStringSubmatch(command); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var whatsappMessagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)saying\s+(.+)`),
	regexp.MustCompile(`(?i)whatsapp\s+\w+\s+(.+)`),
	regexp.MustCompile(`(?i):\s+(.+)`),
}

func extractWhatsAppMessage(command string) string {
	for _, re := range whatsappMessagePatterns {
		if m := re.FindStringSubmatch(command); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var messagingApps = []string{"whatsapp", "messenger", "telegram", "signal", "messages", "sms", "instagram", "facebook"}

func isMessagingApp(appName string) bool {
	lower := strings.ToLower(appName)
	for _, a := range messagingApps {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}
