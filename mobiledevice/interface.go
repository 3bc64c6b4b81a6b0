package mobiledevice

import (
	"context"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// Driver is the per-platform automation surface. Implementations wrap
// the platform's command line tooling and normalize its output into the
// shared definitions types. Every method takes the device id as
// returned by ListDevices; resolution of "auto" platform selectors
// happens in the Manager, not here.
//
// LongPress returns an optional note describing a degraded execution
// (for example a platform that cannot honor the press duration). An
// empty note means the gesture ran as requested.
type Driver interface {
	Platform() definitions.Platform

	ListDevices(ctx context.Context) ([]definitions.DeviceInfo, error)

	GetScreenSize(ctx context.Context, deviceID string) (definitions.ScreenSize, error)
	GetOrientation(ctx context.Context, deviceID string) (definitions.Orientation, error)
	SetOrientation(ctx context.Context, deviceID string, orientation definitions.Orientation) error

	ListApps(ctx context.Context, deviceID string) ([]definitions.InstalledApp, error)
	ListElements(ctx context.Context, deviceID, filter string) ([]definitions.ScreenElement, error)
	TakeScreenshot(ctx context.Context, deviceID string) ([]byte, error)

	Tap(ctx context.Context, deviceID string, x, y int) error
	DoubleTap(ctx context.Context, deviceID string, x, y int) error
	LongPress(ctx context.Context, deviceID string, x, y, durationMs int) (note string, err error)
	Swipe(ctx context.Context, deviceID string, startX, startY, endX, endY, durationMs int) error
	TypeText(ctx context.Context, deviceID, text string) error
	PressButton(ctx context.Context, deviceID, button string) error

	LaunchApp(ctx context.Context, deviceID, appID string) error
	TerminateApp(ctx context.Context, deviceID, appID string) error
	InstallApp(ctx context.Context, deviceID, appPath string) error
	UninstallApp(ctx context.Context, deviceID, appID string) error
	OpenURL(ctx context.Context, deviceID, url string) error
}
