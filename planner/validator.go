package planner

import (
	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/types"
)

// minDelay is the anti-flicker floor applied to every action.
const minDelay = 100

// settleDelay is inserted after major actions to let the UI settle.
const settleDelay = 500

// Validate post-processes a plan before execution: resolves missing
// app packages, drops unexecutable actions, clamps delays and inserts
// settling waits after major actions.
func Validate(plan types.Plan, apps *appdb.Directory) types.Plan {
	out := make(types.Plan, 0, len(plan)*2)

	for i, action := range plan {
		switch action.Type {
		case types.ActionOpenApp:
			if action.PackageName == "" {
				name := action.AppName
				if name == "" {
					name = action.Target
				}
				if name == "" {
					continue
				}
				pkg := apps.Resolve(name)
				if pkg == "" {
					continue
				}
				action.PackageName = pkg
			}

		case types.ActionClick:
			if action.Target == "" && (action.X <= 0 || action.Y <= 0) {
				continue
			}

		case types.ActionTypeText:
			if action.Text == "" {
				continue
			}
		}

		if action.Delay < minDelay {
			action.Delay = settleDelay
		}
		out = append(out, action)

		if i < len(plan)-1 && action.Type.IsMajor() {
			out = append(out, types.Action{Type: types.ActionWait, Delay: settleDelay})
		}
	}

	return out
}
