package planner

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/voxa-project/voxa-agent/appdb"
	"github.com/voxa-project/voxa-agent/contacts"
	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

// ContactResolver turns "call X" / "message X Y" commands into plans
// using the contacts store. A resolved number becomes a direct dial; a
// miss or a store error degrades to searching the name inside the
// dialer or messenger UI. Store errors never propagate. Resolved
// contacts and message bodies are recorded in memory for recall.
type ContactResolver struct {
	store contacts.Store
	apps  *appdb.Directory
	mem   *memory.Store
	log   *logger.Logger
}

func NewContactResolver(store contacts.Store, apps *appdb.Directory, mem *memory.Store) *ContactResolver {
	return &ContactResolver{
		store: store,
		apps:  apps,
		mem:   mem,
		log:   logger.New("planner.contacts"),
	}
}

var (
	callCommandRe    = regexp.MustCompile(`(?i)^call\s+(.+?)(?:\s+(?:through|on|using)\s+(phone|mobile))?$`)
	messageCommandRe = regexp.MustCompile(`(?i)^(?:message|text|whatsapp|send)\s+(.+?)\s+(?:saying\s+)?(.+)$`)
)

// Match recognizes contact-shaped commands and resolves them. Returns
// nil when the command is not contact-shaped or the resolver has no
// store to consult.
func (cr *ContactResolver) Match(ctx context.Context, command string) types.Plan {
	if cr.store == nil {
		return nil
	}

	if m := callCommandRe.FindStringSubmatch(command); m != nil {
		return cr.ResolveCall(ctx, strings.TrimSpace(m[1]))
	}

	if m := messageCommandRe.FindStringSubmatch(command); m != nil {
		name := strings.TrimSpace(m[1])
		body := strings.TrimSpace(m[2])
		return cr.ResolveMessage(ctx, name, body)
	}

	return nil
}

// ResolveCall returns a direct-dial plan when the store yields a
// number, else the degraded dialer-search plan.
func (cr *ContactResolver) ResolveCall(ctx context.Context, name string) types.Plan {
	if cr.store != nil {
		c, err := cr.store.FindByName(ctx, name)
		if err == nil && c.Number != "" {
			cr.recordContact(c.Name)
			return types.Plan{
				{Type: types.ActionDial, PhoneNumber: c.Number, Delay: 2000},
			}
		}
		if err != nil && !errors.Is(err, contacts.ErrNotFound) {
			cr.log.Warn("contact lookup failed for %q: %v", name, err)
		}
		if err == nil && c.Name != "" {
			name = c.Name
		}
	}
	cr.recordContact(name)
	return cr.dialerSearchPlan(name)
}

// ResolveMessage builds the messenger search-select-type-send plan.
func (cr *ContactResolver) ResolveMessage(ctx context.Context, name, body string) types.Plan {
	if cr.store != nil {
		c, err := cr.store.FindByName(ctx, name)
		if err == nil && c.Name != "" {
			name = c.Name
		} else if err != nil && !errors.Is(err, contacts.ErrNotFound) {
			cr.log.Warn("contact lookup failed for %q: %v", name, err)
		}
	}
	cr.recordContact(name)
	if body != "" && cr.mem != nil {
		cr.mem.StoreLastMessage(body)
	}

	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: appdb.WhatsAppPackage, Delay: 3000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: "Search", Delay: 500},
		{Type: types.ActionWait, Delay: 500},
		{Type: types.ActionTypeText, Text: name, Delay: 1000},
		{Type: types.ActionWait, Delay: 1000},
		{Type: types.ActionClick, Target: name, Delay: 1000},
		{Type: types.ActionWait, Delay: 500},
	}
	if body != "" {
		plan = append(plan,
			types.Action{Type: types.ActionTypeText, Text: body, Delay: 1500},
			types.Action{Type: types.ActionSend, Delay: 500},
		)
	}
	return plan
}

func (cr *ContactResolver) recordContact(name string) {
	if cr.mem == nil || name == "" {
		return
	}
	cr.mem.StoreLastContact(name)
}

func (cr *ContactResolver) dialerSearchPlan(name string) types.Plan {
	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: cr.apps.DialerPackage(), Delay: 2000},
		{Type: types.ActionWait, Delay: 1000},
	}
	if name != "" {
		plan = append(plan,
			types.Action{Type: types.ActionClick, Target: "Search", Delay: 500},
			types.Action{Type: types.ActionWait, Delay: 500},
			types.Action{Type: types.ActionTypeText, Text: name, Delay: 1000},
			types.Action{Type: types.ActionWait, Delay: 1000},
			types.Action{Type: types.ActionClick, Target: name, Delay: 1000},
		)
	}
	return plan
}
