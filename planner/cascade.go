package planner

import (
	"context"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

// Cascade is the planner's top-level control flow: tiers ordered by
// cost, first non-empty plan wins. Its contract is total: any input
// yields a non-empty plan and it never panics past its boundary.
type Cascade struct {
	rules    *Rules
	contacts *ContactResolver
	remote   *RemotePlanner
	apps     *appdb.Directory
	mem      *memory.Store
	log      *logger.Logger
}

func NewCascade(rules *Rules, contacts *ContactResolver, remote *RemotePlanner, apps *appdb.Directory, mem *memory.Store) *Cascade {
	return &Cascade{
		rules:    rules,
		contacts: contacts,
		remote:   remote,
		apps:     apps,
		mem:      mem,
		log:      logger.New("planner.cascade"),
	}
}

// Plan turns a raw command into an executable plan. Tier order:
// direct system rules, contact patterns, hotfix patterns, enhanced
// rules, the remote LLM, and the ultimate fallback. Contact patterns
// run before the hotfix tier so a resolvable "call X" dials directly
// instead of walking the dialer UI.
func (c *Cascade) Plan(ctx context.Context, raw string) (plan types.Plan) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("planning panicked for %q: %v", raw, r)
			plan = sorryPlan()
		}
		if len(plan) == 0 {
			plan = sorryPlan()
		}
		c.remember(raw, plan)
	}()

	cmd := Normalize(raw)
	if cmd == "" {
		return sorryPlan()
	}

	if plan = c.rules.MatchDirect(cmd); len(plan) > 0 {
		c.log.Debug("direct rules matched %q", cmd)
		return plan
	}

	if c.contacts != nil {
		if plan = c.contacts.Match(ctx, cmd); len(plan) > 0 {
			c.log.Debug("contact patterns matched %q", cmd)
			return plan
		}
	}

	if plan = c.rules.MatchHotfix(cmd); len(plan) > 0 {
		c.log.Debug("hotfix rules matched %q", cmd)
		return plan
	}

	if plan = c.rules.MatchEnhanced(cmd); len(plan) > 0 {
		c.log.Debug("enhanced rules matched %q", cmd)
		return Validate(plan, c.apps)
	}

	if c.remote != nil {
		remotePlan, err := c.remote.Plan(ctx, cmd)
		if err != nil {
			c.log.Warn("remote tier failed for %q: %v", cmd, err)
		} else if validated := Validate(remotePlan, c.apps); len(validated) > 0 {
			return validated
		}
	}

	c.log.Warn("all tiers exhausted, using ultimate fallback for %q", cmd)
	return c.rules.Ultimate(cmd)
}

// remember caches the plan for "repeat last" and appends the raw
// command to history. Best-effort.
func (c *Cascade) remember(raw string, plan types.Plan) {
	if c.mem == nil {
		return
	}
	if len(plan) > 0 && !isSorryPlan(plan) {
		c.mem.StoreLastPlan(plan)
	}
	if cmd := strings.TrimSpace(raw); cmd != "" {
		c.mem.AddToHistory(raw)
		c.mem.SetContext("last_command", cmd)
	}
}

const sorryText = "Sorry, I couldn't process that command"

func sorryPlan() types.Plan {
	return types.Plan{{Type: types.ActionWait, Delay: 1000, Text: sorryText}}
}

func isSorryPlan(plan types.Plan) bool {
	return len(plan) == 1 && plan[0].Type == types.ActionWait && plan[0].Text == sorryText
}
