package definitions

import "fmt"

type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
	Auto    Platform = "auto"
)

// ParsePlatform validates a platform selector coming from tool arguments
// or environment configuration.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case Android, IOS, Auto:
		return Platform(s), nil
	case "":
		return Auto, nil
	default:
		return "", Validationf("invalid platform: %q, must be 'android', 'ios' or 'auto'", s)
	}
}

type DeviceKind string

const (
	Physical  DeviceKind = "physical"
	Emulator  DeviceKind = "emulator"
	Simulator DeviceKind = "simulator"
)

// DeviceInfo describes one discovered device. Identity is the pair
// (Platform, ID); ids are assigned by the platform tools and are not
// guaranteed unique across platforms.
type DeviceInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Platform Platform   `json:"platform"`
	Kind     DeviceKind `json:"kind"`
	State    string     `json:"state"`
}

type ScreenSize struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(s) {
	case Portrait, Landscape:
		return Orientation(s), nil
	default:
		return "", Validationf("invalid orientation: %q, must be 'portrait' or 'landscape'", s)
	}
}

// ElementBounds is the on-screen rectangle of a UI element in pixels.
type ElementBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (b ElementBounds) String() string {
	return fmt.Sprintf("at (%d,%d) size %dx%d", b.X, b.Y, b.Width, b.Height)
}

// ScreenElement is one node of a UI hierarchy dump (Android only).
// Ephemeral, not retained between calls.
type ScreenElement struct {
	Class      string        `json:"class"`
	Text       string        `json:"text,omitempty"`
	Label      string        `json:"label"`
	ResourceID string        `json:"resource_id,omitempty"`
	Bounds     ElementBounds `json:"bounds"`
	Clickable  bool          `json:"clickable"`
	Focused    bool          `json:"focused"`
}

type InstalledApp struct {
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name"`
}
