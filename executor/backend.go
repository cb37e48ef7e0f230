// Package executor runs validated plans against a device automation backend,
// one action at a time, with progress reporting and a hard safety ceiling on
// consecutive actions.
package executor

import "context"

// Backend is the device-side automation surface. Implementations talk to the
// platform accessibility layer; tests substitute fakes. Every method returns
// an error describing why the gesture could not be performed; the executor
// logs failures and moves on rather than aborting the plan.
type Backend interface {
	// OpenApp launches the app identified by package name.
	OpenApp(ctx context.Context, packageName string) error

	// ClickText taps the first on-screen element whose label matches target.
	ClickText(ctx context.Context, target string) error

	// ClickAt taps the absolute screen coordinate.
	ClickAt(ctx context.Context, x, y int) error

	// TypeText enters text into the focused field.
	TypeText(ctx context.Context, text string) error

	// PressEnter submits the focused field (IME action / Enter key).
	PressEnter(ctx context.Context) error

	// Home, Back and Recents issue the corresponding global navigation action.
	Home(ctx context.Context) error
	Back(ctx context.Context) error
	Recents(ctx context.Context) error

	// Scroll scrolls the foreground window; direction is "up", "down",
	// "left" or "right".
	Scroll(ctx context.Context, direction string) error

	// Swipe performs a swipe gesture in the given direction.
	Swipe(ctx context.Context, direction string) error

	// Search focuses the foreground app's search affordance and submits query.
	Search(ctx context.Context, query string) error

	// OpenURL opens the URL in the default browser.
	OpenURL(ctx context.Context, url string) error

	// Dial places a call to the number through the default dialer.
	Dial(ctx context.Context, phoneNumber string) error

	// OpenDialer brings up the dialer app.
	OpenDialer(ctx context.Context) error

	// VolumeUp, VolumeDown, Mute and Unmute adjust the media stream.
	VolumeUp(ctx context.Context) error
	VolumeDown(ctx context.Context) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error

	// SetBrightness sets screen brightness to a 0-100 level. BrightnessUp and
	// BrightnessDown step it.
	SetBrightness(ctx context.Context, level int) error
	BrightnessUp(ctx context.Context) error
	BrightnessDown(ctx context.Context) error

	// MediaKey sends a media transport key: "play_pause", "next", "previous".
	MediaKey(ctx context.Context, key string) error

	// Screenshot captures the screen.
	Screenshot(ctx context.Context) error
}
