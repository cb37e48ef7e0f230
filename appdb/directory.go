// Package appdb resolves spoken app names to installed-application package
// identifiers. Resolution is deliberately recall-heavy: a cheap fuzzy hit here
// keeps most commands away from the slower planner tiers.
package appdb

import (
	"strings"
	"sync"
)

// Inventory is the live installed-apps collaborator. Both calls may be backed
// by a platform service and are treated as best-effort.
type Inventory interface {
	ListInstalledApps() map[string]string
	IsInstalled(packageName string) bool
}

// AppInfo maps one canonical app name to its package id and spoken aliases.
type AppInfo struct {
	PackageName string
	Aliases     []string
}

// Directory is the name→package lookup table plus a short-lived cache fed by
// the live inventory. Read-mostly; safe for concurrent use.
type Directory struct {
	mu        sync.RWMutex
	table     map[string]AppInfo
	cache     map[string]string
	inventory Inventory
}

// dialerPackages is the priority list of known dialer ids, probed in order.
var dialerPackages = []string{
	"com.android.dialer",
	"com.google.android.dialer",
	"com.samsung.android.dialer",
	"com.oneplus.dialer",
	"com.xiaomi.dialer",
	"com.miui.dialer",
	"com.android.phone",
	"com.android.incallui",
	"com.android.contacts",
	"com.google.android.contacts",
}

// DefaultDialer is used when no dialer from the priority list is installed.
const DefaultDialer = "com.android.dialer"

// Well-known package ids used by rule templates.
const (
	SettingsPackage     = "com.android.settings"
	GoogleSearchPackage = "com.google.android.googlequicksearchbox"
	WhatsAppPackage     = "com.whatsapp"
	YouTubePackage      = "com.google.android.youtube"
	SpotifyPackage      = "com.spotify.music"
	GmailPackage        = "com.google.android.gm"
	MapsPackage         = "com.google.android.apps.maps"
)

// New returns a Directory over the built-in alias table. inventory may be nil.
func New(inventory Inventory) *Directory {
	return &Directory{
		table:     defaultTable(),
		cache:     make(map[string]string),
		inventory: inventory,
	}
}

func defaultTable() map[string]AppInfo {
	return map[string]AppInfo{
		// communication
		"whatsapp":  {"com.whatsapp", []string{"whatsapp", "wa", "whats app"}},
		"telegram":  {"org.telegram.messenger", []string{"telegram", "tg"}},
		"signal":    {"org.thoughtcrime.securesms", []string{"signal"}},
		"messenger": {"com.facebook.orca", []string{"messenger", "fb messenger"}},
		"discord":   {"com.discord", []string{"discord"}},

		// google
		"google":  {"com.google.android.googlequicksearchbox", []string{"google", "assistant"}},
		"chrome":  {"com.android.chrome", []string{"chrome", "browser"}},
		"gmail":   {"com.google.android.gm", []string{"gmail", "email"}},
		"youtube": {"com.google.android.youtube", []string{"youtube", "yt", "video"}},
		"maps":    {"com.google.android.apps.maps", []string{"maps", "google maps"}},
		"photos":  {"com.google.android.apps.photos", []string{"photos", "gallery"}},
		"drive":   {"com.google.android.apps.docs", []string{"drive", "google drive"}},

		// social
		"instagram": {"com.instagram.android", []string{"instagram", "insta"}},
		"facebook":  {"com.facebook.katana", []string{"facebook", "fb"}},
		"twitter":   {"com.twitter.android", []string{"twitter", "x"}},
		"tiktok":    {"com.zhiliaoapp.musically", []string{"tiktok"}},
		"reddit":    {"com.reddit.frontpage", []string{"reddit"}},
		"linkedin":  {"com.linkedin.android", []string{"linkedin"}},

		// system
		"settings": {"com.android.settings", []string{"settings"}},
		"camera":   {"com.android.camera2", []string{"camera"}},
		"phone":    {"com.android.dialer", []string{"phone", "dialer", "call"}},
		"dialer":   {"com.google.android.dialer", []string{"phone", "dialer", "call"}},
		"contacts": {"com.android.contacts", []string{"contacts"}},
		"messages": {"com.google.android.apps.messaging", []string{"messages", "sms"}},

		// media
		"spotify": {"com.spotify.music", []string{"spotify", "music"}},
		"netflix": {"com.netflix.mediaclient", []string{"netflix"}},

		// shopping
		"amazon":   {"com.amazon.mShop.android.shopping", []string{"amazon"}},
		"flipkart": {"com.flipkart.android", []string{"flipkart"}},

		// finance
		"paytm":   {"net.one97.paytm", []string{"paytm"}},
		"phonepe": {"com.phonepe.app", []string{"phonepe"}},
		"gpay":    {"com.google.android.apps.nbu.paisa.user", []string{"gpay", "google pay"}},
	}
}

// Resolve translates a spoken name to a package id, or "" when nothing
// matched. An empty result means "defer to a smarter planner tier", not an
// error. Order: exact key, inventory cache, alias containment, bidirectional
// substring.
func (d *Directory) Resolve(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}

	d.mu.RLock()
	if info, ok := d.table[n]; ok {
		d.mu.RUnlock()
		return info.PackageName
	}
	if pkg, ok := d.cache[n]; ok {
		d.mu.RUnlock()
		return pkg
	}

	for _, info := range d.table {
		for _, alias := range info.Aliases {
			// One-letter aliases ("x") match only exactly, never by
			// containment.
			if len(alias) < 2 {
				if n == alias {
					d.mu.RUnlock()
					return info.PackageName
				}
				continue
			}
			if strings.Contains(n, alias) {
				d.mu.RUnlock()
				return info.PackageName
			}
		}
	}
	for key, info := range d.table {
		if strings.Contains(n, key) || strings.Contains(key, n) {
			d.mu.RUnlock()
			return info.PackageName
		}
	}
	d.mu.RUnlock()

	// Last resort: scan the live inventory by display name.
	return d.searchInventory(n)
}

func (d *Directory) searchInventory(name string) string {
	if d.inventory == nil {
		return ""
	}
	for display, pkg := range d.inventory.ListInstalledApps() {
		if strings.Contains(strings.ToLower(display), name) {
			d.mu.Lock()
			d.cache[name] = pkg
			d.mu.Unlock()
			return pkg
		}
	}
	return ""
}

// RefreshCache repopulates the name→package cache from the live inventory.
func (d *Directory) RefreshCache() {
	if d.inventory == nil {
		return
	}
	apps := d.inventory.ListInstalledApps()
	d.mu.Lock()
	defer d.mu.Unlock()
	for display, pkg := range apps {
		d.cache[strings.ToLower(display)] = pkg
	}
}

// DialerPackage probes the known dialer ids in priority order and returns the
// first installed one, or DefaultDialer when the inventory can't confirm any.
// Best-effort pre-filter only; execution may still fail at run time.
func (d *Directory) DialerPackage() string {
	if d.inventory == nil {
		return DefaultDialer
	}
	for _, pkg := range dialerPackages {
		if d.inventory.IsInstalled(pkg) {
			return pkg
		}
	}
	return DefaultDialer
}

// Register adds or overrides one table entry; used by config-driven overrides.
func (d *Directory) Register(name string, info AppInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table[strings.ToLower(strings.TrimSpace(name))] = info
}

// Entries returns a stable snapshot of the alias table for prompt building.
func (d *Directory) Entries() map[string]AppInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]AppInfo, len(d.table))
	for k, v := range d.table {
		out[k] = v
	}
	return out
}
