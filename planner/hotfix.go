package planner

import (
	"regexp"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

// Rules matches commands against the local pattern tables. It is the
// cheap, deterministic front of the cascade; every method returns nil
// when nothing matches so the caller falls through to the next tier.
type Rules struct {
	apps *appdb.Directory
	mem  *memory.Store
}

func NewRules(apps *appdb.Directory, mem *memory.Store) *Rules {
	return &Rules{apps: apps, mem: mem}
}

var (
	hotfixCallRe   = regexp.MustCompile(`(?i)^call\s+\w+$`)
	hotfixOpenRe   = regexp.MustCompile(`(?i)^open\s+\w+$`)
	hotfixSearchRe = regexp.MustCompile(`(?i)^(?:search|google)\s+.+`)
	hotfixRadioRe  = regexp.MustCompile(`(?i)^(?:turn\s+)?(on|off|enable|disable|open)\s+(?:wi.?fi|wifi|bluetooth)$`)
	hotfixVolUpRe  = regexp.MustCompile(`(?i)^volume\s+(up|increase)$`)
	hotfixVolDnRe  = regexp.MustCompile(`(?i)^volume\s+(down|decrease|lower)$`)
)

// MatchHotfix handles very narrow zero-ambiguity commands that must
// never reach the remote tier.
func (r *Rules) MatchHotfix(command string) types.Plan {
	cmd := strings.ToLower(strings.TrimSpace(command))

	switch {
	case hotfixCallRe.MatchString(cmd):
		contact := extractContactName(cmd)
		plan := types.Plan{
			{Type: types.ActionOpenApp, PackageName: r.apps.DialerPackage(), Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
		}
		if contact != "" {
			plan = append(plan,
				types.Action{Type: types.ActionClick, Target: "Search", Delay: 500},
				types.Action{Type: types.ActionWait, Delay: 500},
				types.Action{Type: types.ActionTypeText, Text: contact, Delay: 1000},
				types.Action{Type: types.ActionWait, Delay: 1000},
				types.Action{Type: types.ActionClick, Target: contact, Delay: 1000},
			)
		}
		return plan

	case hotfixOpenRe.MatchString(cmd):
		appName := strings.TrimSpace(strings.TrimPrefix(cmd, "open"))
		pkg := r.apps.Resolve(appName)
		if pkg == "" {
			return nil // defer to a smarter tier
		}
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: pkg, Delay: 2000},
		}

	case hotfixSearchRe.MatchString(cmd):
		query := extractSearchQuery(cmd)
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.GoogleSearchPackage, Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: "Search", Delay: 500},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionTypeText, Text: query, Delay: 1500},
			{Type: types.ActionSend, Delay: 500},
		}

	case hotfixRadioRe.MatchString(cmd):
		isWifi := strings.Contains(cmd, "wifi") || strings.Contains(cmd, "wi-fi")
		section, target := "Connected devices", "Bluetooth"
		if isWifi {
			section, target = "Network & internet", "Wi-Fi"
		}
		return types.Plan{
			{Type: types.ActionOpenApp, PackageName: appdb.SettingsPackage, Delay: 2000},
			{Type: types.ActionWait, Delay: 1000},
			{Type: types.ActionClick, Target: section, Delay: 1000},
			{Type: types.ActionWait, Delay: 500},
			{Type: types.ActionClick, Target: target, Delay: 1000},
			{Type: types.ActionWait, Delay: 500},
		}

	case cmd == "volume":
		return types.Plan{{Type: types.ActionVolumeUp, Count: 3, Delay: 200}}

	case hotfixVolUpRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeUp, Count: 3, Delay: 200}}

	case hotfixVolDnRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeDown, Count: 3, Delay: 200}}

	case cmd == "mute":
		return types.Plan{{Type: types.ActionVolumeDown, Count: 15, Delay: 100}}

	case cmd == "unmute":
		return types.Plan{{Type: types.ActionVolumeUp, Count: 5, Delay: 200}}
	}

	return nil
}
