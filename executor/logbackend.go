package executor

import (
	"context"

	"github.com/voxa-project/voxa-agent/logger"
)

// LogBackend is a Backend that performs nothing and logs every gesture. It
// stands in when no device bridge is attached (development, dry runs).
type LogBackend struct {
	log *logger.Logger
}

// NewLogBackend returns a logging dry-run backend.
func NewLogBackend() *LogBackend {
	return &LogBackend{log: logger.New("backend")}
}

func (b *LogBackend) do(verb, detail string) error {
	if detail != "" {
		b.log.Info("%s %s", verb, detail)
	} else {
		b.log.Info("%s", verb)
	}
	return nil
}

func (b *LogBackend) OpenApp(_ context.Context, pkg string) error { return b.do("open_app", pkg) }
func (b *LogBackend) ClickText(_ context.Context, target string) error {
	return b.do("click", target)
}
func (b *LogBackend) ClickAt(_ context.Context, x, y int) error {
	b.log.Info("click at (%d,%d)", x, y)
	return nil
}
func (b *LogBackend) TypeText(_ context.Context, text string) error { return b.do("type", text) }
func (b *LogBackend) PressEnter(_ context.Context) error            { return b.do("enter", "") }
func (b *LogBackend) Home(_ context.Context) error                  { return b.do("home", "") }
func (b *LogBackend) Back(_ context.Context) error                  { return b.do("back", "") }
func (b *LogBackend) Recents(_ context.Context) error               { return b.do("recents", "") }
func (b *LogBackend) Scroll(_ context.Context, dir string) error    { return b.do("scroll", dir) }
func (b *LogBackend) Swipe(_ context.Context, dir string) error     { return b.do("swipe", dir) }
func (b *LogBackend) Search(_ context.Context, q string) error      { return b.do("search", q) }
func (b *LogBackend) OpenURL(_ context.Context, u string) error     { return b.do("open_url", u) }
func (b *LogBackend) Dial(_ context.Context, num string) error      { return b.do("dial", num) }
func (b *LogBackend) OpenDialer(_ context.Context) error            { return b.do("open_dialer", "") }
func (b *LogBackend) VolumeUp(_ context.Context) error              { return b.do("volume_up", "") }
func (b *LogBackend) VolumeDown(_ context.Context) error            { return b.do("volume_down", "") }
func (b *LogBackend) Mute(_ context.Context) error                  { return b.do("mute", "") }
func (b *LogBackend) Unmute(_ context.Context) error                { return b.do("unmute", "") }
func (b *LogBackend) SetBrightness(_ context.Context, level int) error {
	b.log.Info("brightness %d", level)
	return nil
}
func (b *LogBackend) BrightnessUp(_ context.Context) error   { return b.do("brightness_up", "") }
func (b *LogBackend) BrightnessDown(_ context.Context) error { return b.do("brightness_down", "") }
func (b *LogBackend) MediaKey(_ context.Context, key string) error {
	return b.do("media", key)
}
func (b *LogBackend) Screenshot(_ context.Context) error { return b.do("screenshot", "") }
