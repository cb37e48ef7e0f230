package planner

import (
	"regexp"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/types"
)

var (
	waMessageRe     = regexp.MustCompile(`(?i)^whatsapp\s+(\w+)\s+(.+)$`)
	waSendToRe      = regexp.MustCompile(`(?i)^send\s+(?:a\s+)?message\s+to\s+(\w+)\s+(?:in\s+)?whatsapp(?:\s+saying\s+)?(.+)$`)
	waMessageOnRe   = regexp.MustCompile(`(?i)^message\s+(\w+)\s+(?:on\s+)?whatsapp(?:\s*:\s*)?(.+)$`)
	openAndRe       = regexp.MustCompile(`(?i)^open\s+(\w+)\s+and\s+(.+)$`)
	searchInRe      = regexp.MustCompile(`(?i)^(?:search|find)\s+(?:for\s+)?(.+?)\s+in\s+(\w+)$`)
	appContactMsgRe = regexp.MustCompile(`(?i)^(\w+)\s+(\w+)\s+(.+)$`)
	screenshotAndRe = regexp.MustCompile(`(?i)^take\s+screenshot\s+and\s+(.+)$`)
	playOnRe        = regexp.MustCompile(`(?i)^play\s+(.+?)\s+on\s+(\w+)$`)
	shareOnRe       = regexp.MustCompile(`(?i)share\s+on\s+(\w+)`)
	simpleSearchRe  = regexp.MustCompile(`(?i)^(?:search|find|google)\s+(?:for\s+)?(.+)$`)

	searchVerbRe  = regexp.MustCompile(`(?i)search`)
	messageVerbRe = regexp.MustCompile(`(?i)(?:message|text|whatsapp)`)
	callVerbRe    = regexp.MustCompile(`(?i)call`)
	playVerbRe    = regexp.MustCompile(`(?i)play`)
)

// MatchEnhanced covers multi-clause commands: messaging templates,
// "open X and Y", "search Q in X", "play M on X", screenshot-and-share,
// and the simple open/search/weather shapes.
func (r *Rules) MatchEnhanced(command string) types.Plan {
	cmd := strings.TrimSpace(command)

	if m := waMessageRe.FindStringSubmatch(cmd); m != nil {
		return whatsAppMessagePlan(m[1], strings.TrimSpace(m[2]))
	}
	if m := waSendToRe.FindStringSubmatch(cmd); m != nil {
		return whatsAppMessagePlan(m[1], strings.TrimSpace(m[2]))
	}
	if m := waMessageOnRe.FindStringSubmatch(cmd); m != nil {
		return whatsAppMessagePlan(m[1], strings.TrimSpace(m[2]))
	}

	if m := openAndRe.FindStringSubmatch(cmd); m != nil {
		return r.openAndPlan(m[1], strings.TrimSpace(m[2]))
	}
	if m := searchInRe.FindStringSubmatch(cmd); m != nil {
		return r.searchInPlan(strings.TrimSpace(m[1]), m[2])
	}
	if m := screenshotAndRe.FindStringSubmatch(cmd); m != nil {
		return r.screenshotAndPlan(strings.TrimSpace(m[1]))
	}
	if m := playOnRe.FindStringSubmatch(cmd); m != nil {
		return r.playOnPlan(strings.TrimSpace(m[1]), m[2])
	}
	if m := appContactMsgRe.FindStringSubmatch(cmd); m != nil {
		if plan := r.appContactMessagePlan(m[1], m[2], strings.TrimSpace(m[3])); plan != nil {
			return plan
		}
	}

	return r.simplePlan(cmd)
}

func whatsAppMessagePlan(contact, message string) types.Plan {
	return types.Plan{
		{Type: types.ActionOpenApp, PackageName: appdb.WhatsAppPackage, AppName: "WhatsApp", Delay: 3000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: "Search", Delay: 500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: contact, Delay: 1000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: contact, Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: message, Delay: 1500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionSend, Delay: 500},
	}
}

func (r *Rules) openAndPlan(appName, actionText string) types.Plan {
	pkg := r.apps.Resolve(appName)
	if pkg == "" {
		return nil
	}

	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: pkg, Delay: 2500},
		{Type: types.ActionWait, Delay: 1500},
	}

	switch {
	case searchVerbRe.MatchString(actionText):
		if query := extractSearchQuery(actionText); query != "" {
			plan = append(plan, searchActions(query, appName)...)
		}
	case messageVerbRe.MatchString(actionText):
		if message := extractMessage(actionText); message != "" {
			plan = append(plan, messagingActions(message)...)
		}
	case callVerbRe.MatchString(actionText):
		plan = append(plan, types.Action{Type: types.ActionClick, Target: "Call", Delay: 1000})
	case playVerbRe.MatchString(actionText):
		if media := extractMediaQuery(actionText); media != "" {
			plan = append(plan, mediaPlayActions(media, appName)...)
		}
	}
	return plan
}

func (r *Rules) searchInPlan(query, appName string) types.Plan {
	pkg := r.apps.Resolve(appName)
	if pkg == "" || query == "" {
		return nil
	}
	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: pkg, Delay: 2500},
		{Type: types.ActionWait, Delay: 1000},
	}
	return append(plan, searchActions(query, appName)...)
}

func (r *Rules) appContactMessagePlan(appName, contact, message string) types.Plan {
	pkg := r.apps.Resolve(appName)
	if pkg == "" || !isMessagingApp(appName) {
		return nil
	}
	return types.Plan{
		{Type: types.ActionOpenApp, PackageName: pkg, Delay: 3000},
		{Type: types.ActionWait, Delay: 1500},
		{Type: types.ActionClick, Target: "Search", Delay: 500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: contact, Delay: 1000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: contact, Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: message, Delay: 1000},
		{Type: types.ActionSend, Delay: 500},
	}
}

func (r *Rules) screenshotAndPlan(actionText string) types.Plan {
	plan := types.Plan{
		{Type: types.ActionScreenshot, Delay: 1000},
		{Type: types.ActionWait, Delay: 1500},
	}
	if m := shareOnRe.FindStringSubmatch(actionText); m != nil {
		if pkg := r.apps.Resolve(m[1]); pkg != "" {
			plan = append(plan,
				types.Action{Type: types.ActionOpenApp, PackageName: pkg, Delay: 3000},
				types.Action{Type: types.ActionWait, Delay: 1000},
				types.Action{Type: types.ActionClick, Target: "New Post", Delay: 1000},
			)
		}
	}
	return plan
}

func (r *Rules) playOnPlan(media, appName string) types.Plan {
	pkg := r.apps.Resolve(appName)
	if pkg == "" {
		return nil
	}
	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: pkg, Delay: 3000},
		{Type: types.ActionWait, Delay: 1500},
	}
	return append(plan, mediaPlayActions(media, appName)...)
}

func (r *Rules) simplePlan(cmd string) types.Plan {
	lower := strings.ToLower(cmd)

	switch {
	case strings.HasPrefix(lower, "open "):
		appName := strings.TrimSpace(cmd[5:])
		pkg := r.apps.Resolve(appName)
		if pkg == "" {
			return nil
		}
		return types.Plan{{Type: types.ActionOpenApp, PackageName: pkg, Delay: 2000}}

	case simpleSearchRe.MatchString(cmd):
		query := extractSearchQuery(cmd)
		plan := types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.GoogleSearchPackage, Delay: 2500},
			{Type: types.ActionWait, Delay: 1000},
		}
		return append(plan, searchActions(query, "google")...)

	case strings.Contains(lower, "weather"):
		plan := types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.GoogleSearchPackage, Delay: 2500},
			{Type: types.ActionWait, Delay: 1000},
		}
		return append(plan, searchActions("weather", "google")...)
	}
	return nil
}

// searchActions is the in-app search template. A few apps get an extra
// tap to start playback or open the first result.
func searchActions(query, appName string) types.Plan {
	base := types.Plan{
		{Type: types.ActionClick, Target: "Search", Delay: 500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: query, Delay: 1500},
	}
	switch strings.ToLower(appName) {
	case "youtube":
		return append(base,
			types.Action{Type: types.ActionSend, Delay: 1000},
			types.Action{Type: types.ActionWait, Delay: 2000},
			types.Action{Type: types.ActionClick, Target: "First video", Delay: 1000},
		)
	case "spotify":
		return append(base,
			types.Action{Type: types.ActionSend, Delay: 1000},
			types.Action{Type: types.ActionWait, Delay: 1500},
			types.Action{Type: types.ActionClick, Target: "Play", Delay: 1000},
		)
	default:
		return append(base, types.Action{Type: types.ActionSend, Delay: 500})
	}
}

func messagingActions(message string) types.Plan {
	return types.Plan{
		{Type: types.ActionClick, Target: "New chat", Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: message, Delay: 2000},
		{Type: types.ActionSend, Delay: 500},
	}
}

func mediaPlayActions(media, appName string) types.Plan {
	switch strings.ToLower(appName) {
	case "youtube":
		return types.Plan{
			{Type: types.ActionClick, Target: "Search", Delay: 500},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionTypeText, Text: media, Delay: 1500},
			{Type: types.ActionSend, Delay: 1000},
			{Type: types.ActionWait, Delay: 2000},
			{Type: types.ActionClick, Target: "First result", Delay: 1000},
		}
	case "spotify":
		return types.Plan{
			{Type: types.ActionClick, Target: "Search", Delay: 500},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionTypeText, Text: media, Delay: 1500},
			{Type: types.ActionSend, Delay: 1000},
			{Type: types.ActionWait, Delay: 1500},
			{Type: types.ActionClick, Target: media, Delay: 1000},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionClick, Target: "Play", Delay: 1000},
		}
	default:
		return nil
	}
}
