// Package types defines the action vocabulary shared by the planner tiers and
// the executor. An Action is one atomic UI-automation instruction; a Plan is
// the ordered list produced for a single voice command.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionType tags an Action. The string values match the wire grammar the
// remote planner is prompted with, so remote JSON decodes without translation.
type ActionType string

const (
	ActionOpenApp        ActionType = "open_app"
	ActionClick          ActionType = "click"
	ActionTypeText       ActionType = "type"
	ActionSend           ActionType = "send"
	ActionBack           ActionType = "back"
	ActionHome           ActionType = "home"
	ActionRecents        ActionType = "recents"
	ActionWait           ActionType = "wait"
	ActionSwipe          ActionType = "swipe"
	ActionScroll         ActionType = "scroll"
	ActionSearch         ActionType = "search"
	ActionOpenURL        ActionType = "open_url"
	ActionCall           ActionType = "call"
	ActionMessage        ActionType = "message"
	ActionOpenContact    ActionType = "open_contact"
	ActionDial           ActionType = "dial"
	ActionScreenshot     ActionType = "screenshot"
	ActionVolumeUp       ActionType = "volume_up"
	ActionVolumeDown     ActionType = "volume_down"
	ActionMute           ActionType = "mute"
	ActionUnmute         ActionType = "unmute"
	ActionBrightness     ActionType = "brightness"
	ActionBrightnessUp   ActionType = "brightness_up"
	ActionBrightnessDown ActionType = "brightness_down"
	ActionPlayPause      ActionType = "play_pause"
	ActionNext           ActionType = "next"
	ActionPrevious       ActionType = "previous"
	ActionOpenDialer     ActionType = "open_dialer"
)

// DefaultDelay is applied to actions that don't carry an explicit delay.
const DefaultDelay = 1000

// Action is one executable step. Type is always set; the remaining fields are
// type-specific and default to zero values. JSON tags follow the remote
// planner's output schema.
type Action struct {
	Type        ActionType `json:"type"`
	Target      string     `json:"target,omitempty"`
	Text        string     `json:"text,omitempty"`
	PackageName string     `json:"packageName,omitempty"`
	AppName     string     `json:"appName,omitempty"`
	URL         string     `json:"url,omitempty"`
	X           int        `json:"x,omitempty"`
	Y           int        `json:"y,omitempty"`
	Delay       int        `json:"delay,omitempty"`
	Count       int        `json:"count,omitempty"`
	Direction   string     `json:"direction,omitempty"`
	ContactName string     `json:"contactName,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
}

// Plan is an ordered action sequence; insertion order is execution order.
type Plan []Action

// Clone returns a deep copy so "repeat last" never aliases cached state.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	copy(out, p)
	return out
}

// String renders a compact one-line summary for logs.
func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, a := range p {
		parts[i] = string(a.Type)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// IsMajor reports whether t needs a settling wait before the next action
// dispatches (app launches, searches, calls, messages, screenshots).
func (t ActionType) IsMajor() bool {
	switch t {
	case ActionOpenApp, ActionSearch, ActionCall, ActionMessage, ActionScreenshot:
		return true
	}
	return false
}

// rawAction is the permissive intermediate for untyped remote-planner JSON:
// every field optional, numbers tolerated as JSON numbers only (the response
// schema pins them), unknown fields ignored.
type rawAction struct {
	Type        string `json:"type"`
	Target      string `json:"target"`
	Text        string `json:"text"`
	PackageName string `json:"packageName"`
	AppName     string `json:"appName"`
	URL         string `json:"url"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Delay       int    `json:"delay"`
	Count       int    `json:"count"`
	Direction   string `json:"direction"`
	ContactName string `json:"contactName"`
	PhoneNumber string `json:"phoneNumber"`
}

// DecodePlan parses a JSON array of loosely-typed actions and projects it into
// a Plan, applying defaults. Actions with an empty type are dropped rather
// than surfaced as errors; shape errors are returned to the caller.
func DecodePlan(data []byte) (Plan, error) {
	var raw []rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	plan := make(Plan, 0, len(raw))
	for _, r := range raw {
		t := ActionType(strings.ToLower(strings.TrimSpace(r.Type)))
		if t == "" {
			continue
		}
		a := Action{
			Type:        t,
			Target:      strings.TrimSpace(r.Target),
			Text:        r.Text,
			PackageName: strings.TrimSpace(r.PackageName),
			AppName:     strings.TrimSpace(r.AppName),
			URL:         strings.TrimSpace(r.URL),
			X:           r.X,
			Y:           r.Y,
			Delay:       r.Delay,
			Count:       r.Count,
			Direction:   r.Direction,
			ContactName: strings.TrimSpace(r.ContactName),
			PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		}
		if a.Delay == 0 {
			a.Delay = DefaultDelay
		}
		if a.Count == 0 {
			a.Count = 1
		}
		plan = append(plan, a)
	}
	return plan, nil
}
