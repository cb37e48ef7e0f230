package planner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/types"
)

// Settings navigation templates for the radio toggles. The final
// toggle row label differs per radio.
func settingsTogglePlan(section, target, toggle string) types.Plan {
	return types.Plan{
		{Type: types.ActionOpenApp, PackageName: appdb.SettingsPackage, AppName: "Settings", Delay: 2000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: section, Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionClick, Target: target, Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionClick, Target: toggle, Delay: 1000},
	}
}

var (
	wifiOnRe   = regexp.MustCompile(`(?i)^(turn\s+)?(on|enable)\s+(wi.?fi|wifi)$`)
	wifiOffRe  = regexp.MustCompile(`(?i)^(turn\s+)?(off|disable)\s+(wi.?fi|wifi)$`)
	btOnRe     = regexp.MustCompile(`(?i)^(turn\s+)?(on|enable)\s+bluetooth$`)
	btOffRe    = regexp.MustCompile(`(?i)^(turn\s+)?(off|disable)\s+bluetooth$`)
	homeRe     = regexp.MustCompile(`(?i)^(go\s+)?(home|house)$`)
	backRe     = regexp.MustCompile(`(?i)^(go\s+)?back$`)
	recentsRe  = regexp.MustCompile(`(?i)^show\s+(recent|open|running)\s+apps$`)
	closeAllRe = regexp.MustCompile(`(?i)^(close|hide)\s+(all\s+)?apps$`)

	volUpRe     = regexp.MustCompile(`(?i)^(increase|turn\s+up|raise)\s+(the\s+)?volume$`)
	volDownRe   = regexp.MustCompile(`(?i)^(decrease|turn\s+down|lower)\s+(the\s+)?volume$`)
	volMuteRe   = regexp.MustCompile(`(?i)^(mute|silent|silence)\s+(the\s+)?(volume|sound)$`)
	volUnmuteRe = regexp.MustCompile(`(?i)^(unmute|unsilence)\s+(the\s+)?(volume|sound)$`)

	brightUpRe   = regexp.MustCompile(`(?i)^(increase|turn\s+up)\s+(the\s+)?brightness$`)
	brightDownRe = regexp.MustCompile(`(?i)^(decrease|turn\s+down)\s+(the\s+)?brightness$`)
	brightMaxRe  = regexp.MustCompile(`(?i)^(max|maximum|full)\s+brightness$`)
	brightSetRe  = regexp.MustCompile(`(?i)^(set\s+)?brightness(\s+to)?(\s+\d+)?$`)

	playPauseRe = regexp.MustCompile(`(?i)^(play|pause|resume)\s+(the\s+)?(music|song|video|media)$`)
	nextRe      = regexp.MustCompile(`(?i)^(next|skip)\s+(the\s+)?(song|track|video)$`)
	previousRe  = regexp.MustCompile(`(?i)^(previous|go\s+back|last)\s+(song|track|video)$`)

	screenshotRe = regexp.MustCompile(`(?i)^(take|capture)\s+(a\s+)?(screenshot|screen\s+shot|snapshot)$`)
	waitRe       = regexp.MustCompile(`(?i)^wait\s+(\d+)\s*(seconds|secs|sec|s)?$`)
	repeatRe     = regexp.MustCompile(`(?i)\b(repeat|again)\b`)
)

// MatchDirect handles system-level commands that are entirely local:
// navigation, volume, brightness, media keys, screenshot, toggles,
// timed waits, and "repeat last".
func (r *Rules) MatchDirect(command string) types.Plan {
	cmd := strings.ToLower(strings.TrimSpace(command))

	switch {
	case wifiOnRe.MatchString(cmd):
		return settingsTogglePlan("Network & internet", "Wi-Fi", "Use Wi-Fi")
	case wifiOffRe.MatchString(cmd):
		return settingsTogglePlan("Network & internet", "Wi-Fi", "Use Wi-Fi")
	case btOnRe.MatchString(cmd):
		return settingsTogglePlan("Connected devices", "Bluetooth", "Use Bluetooth")
	case btOffRe.MatchString(cmd):
		return settingsTogglePlan("Connected devices", "Bluetooth", "Use Bluetooth")

	case homeRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionHome, Delay: 500}}
	case backRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionBack, Delay: 500}}
	case recentsRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionRecents, Delay: 800}}
	case closeAllRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionHome, Delay: 300}}

	case volUpRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeUp, Count: 3, Delay: 200}}
	case volDownRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeDown, Count: 3, Delay: 200}}
	case volMuteRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeDown, Count: 15, Delay: 100}}
	case volUnmuteRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionVolumeUp, Count: 5, Delay: 200}}

	case brightUpRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionBrightnessUp, Count: 5, Delay: 200}}
	case brightDownRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionBrightnessDown, Count: 5, Delay: 200}}
	case brightMaxRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionBrightnessUp, Count: 20, Delay: 150}}
	case brightSetRe.MatchString(cmd):
		level := extractNumber(cmd, 50)
		return types.Plan{{Type: types.ActionBrightness, Target: strconv.Itoa(level), Delay: 500}}

	case playPauseRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionPlayPause, Delay: 500}}
	case nextRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionNext, Delay: 500}}
	case previousRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionPrevious, Delay: 500}}

	case screenshotRe.MatchString(cmd):
		return types.Plan{{Type: types.ActionScreenshot, Delay: 1000}}

	case waitRe.MatchString(cmd):
		seconds := extractNumber(cmd, 1)
		return types.Plan{{Type: types.ActionWait, Delay: seconds * 1000}}

	case repeatRe.MatchString(cmd):
		if r.mem == nil {
			return nil
		}
		return r.mem.LastPlan() // nil when nothing has run yet
	}

	return nil
}
