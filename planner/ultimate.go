package planner

import (
	"regexp"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/types"
)

var (
	ultSearchRe  = regexp.MustCompile(`(?i)(?:search|google|find)\s+(?:on\s+)?(?:google\s+)?(.+)`)
	ultRadioRe   = regexp.MustCompile(`(?i)(?:turn\s+)?(on|off|enable|disable)\s+(?:wi.?fi|wifi|bluetooth)`)
	ultCallRe    = regexp.MustCompile(`(?i)(?:call|dial|phone)\s+`)
	ultWaMsgRe   = regexp.MustCompile(`(?i)whatsapp.*message`)
	ultMsgRe     = regexp.MustCompile(`(?i)whatsapp|message|text`)
	ultAnyCallRe = regexp.MustCompile(`(?i)call|phone|dial`)
	ultVideoRe   = regexp.MustCompile(`(?i)youtube|video|watch`)
	ultMusicRe   = regexp.MustCompile(`(?i)music|song|spotify`)
	ultEmailRe   = regexp.MustCompile(`(?i)email|gmail`)
	ultMapsRe    = regexp.MustCompile(`(?i)map|location|where`)
	allDigitsRe  = regexp.MustCompile(`^\d+$`)
)

// Ultimate is the cascade's last tier. It always produces a plan: a
// single-word dictionary first, then broad keyword buckets, else a
// generic search for the raw command.
func (r *Rules) Ultimate(command string) types.Plan {
	cmd := strings.TrimSpace(command)
	words := strings.Fields(cmd)

	if len(words) == 1 {
		switch strings.ToLower(words[0]) {
		case "volume":
			return types.Plan{{Type: types.ActionVolumeUp, Count: 3, Delay: 200}}
		case "brightness":
			return types.Plan{{Type: types.ActionBrightnessUp, Count: 5, Delay: 200}}
		case "music", "play":
			return types.Plan{{Type: types.ActionPlayPause, Delay: 500}}
		case "next":
			return types.Plan{{Type: types.ActionNext, Delay: 500}}
		case "back":
			return types.Plan{{Type: types.ActionBack, Delay: 500}}
		case "home":
			return types.Plan{{Type: types.ActionHome, Delay: 500}}
		case "recents":
			return types.Plan{{Type: types.ActionRecents, Delay: 800}}
		case "call":
			return types.Plan{{Type: types.ActionOpenApp, PackageName: r.apps.DialerPackage(), Delay: 2000}}
		default:
			return r.defaultSearchPlan(cmd)
		}
	}

	switch {
	case ultSearchRe.MatchString(cmd):
		query := extractSearchQuery(cmd)
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.GoogleSearchPackage, Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: "Search", Delay: 500},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionTypeText, Text: query, Delay: 1500},
			{Type: types.ActionSend, Delay: 500},
		}

	case ultRadioRe.MatchString(cmd):
		lower := strings.ToLower(cmd)
		isWifi := strings.Contains(lower, "wifi") || strings.Contains(lower, "wi-fi")
		section, target := "Connected devices", "Bluetooth"
		if isWifi {
			section, target = "Network & internet", "Wi-Fi"
		}
		toggle := "Turn off"
		if strings.Contains(lower, "on") {
			toggle = "Turn on"
		}
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.SettingsPackage, Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: section, Delay: 1000},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionClick, Target: target, Delay: 1000},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionClick, Target: toggle, Delay: 1000},
		}

	case ultCallRe.MatchString(cmd):
		contact := extractContactName(cmd)
		plan := types.Plan{
			{Type: types.ActionOpenApp, PackageName: r.apps.DialerPackage(), Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
		}
		switch {
		case contact != "" && !allDigitsRe.MatchString(contact):
			plan = append(plan,
				types.Action{Type: types.ActionClick, Target: "Search", Delay: 500},
				types.Action{Type: types.ActionWait, Delay: 500},
				types.Action{Type: types.ActionTypeText, Text: contact, Delay: 1000},
				types.Action{Type: types.ActionWait, Delay: 1000},
			)
		case contact != "":
			plan = append(plan,
				types.Action{Type: types.ActionClick, Target: "Keypad", Delay: 500},
				types.Action{Type: types.ActionWait, Delay: 500},
				types.Action{Type: types.ActionTypeText, Text: contact, Delay: 1000},
			)
		}
		return plan

	case ultWaMsgRe.MatchString(cmd):
		contact := extractWhatsAppContact(cmd)
		message := extractWhatsAppMessage(cmd)
		if contact != "" && message != "" {
			return whatsAppMessagePlan(contact, message)
		}
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.WhatsAppPackage, Delay: 3000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: "Chats", Delay: 500},
		}

	case ultMsgRe.MatchString(cmd):
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.WhatsAppPackage, Delay: 3000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: "Chats", Delay: 500},
		}

	case ultAnyCallRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionOpenApp, PackageName: r.apps.DialerPackage(), Delay: 2500}}

	case ultVideoRe.MatchString(cmd):
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.YouTubePackage, Delay: 3000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: "Search", Delay: 500},
		}

	case ultMusicRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionOpenApp, PackageName: appdb.SpotifyPackage, Delay: 3000}}

	case ultEmailRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionOpenApp, PackageName: appdb.GmailPackage, Delay: 3000}}

	case ultMapsRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionOpenApp, PackageName: appdb.MapsPackage, Delay: 3000}}
	}

	return r.defaultSearchPlan(cmd)
}

// defaultSearchPlan types the raw command into the default search app.
func (r *Rules) defaultSearchPlan(command string) types.Plan {
	return types.Plan{
		{Type: types.ActionOpenApp, PackageName: appdb.GoogleSearchPackage, Delay: 2500},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: "Search", Delay: 500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: command, Delay: 1500},
		{Type: types.ActionSend, Delay: 500},
	}
}
