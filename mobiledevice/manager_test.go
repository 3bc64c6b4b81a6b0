package mobiledevice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// fakeDriver satisfies Driver for routing tests. Only discovery is
// meaningful; every other operation reports which driver handled it.
type fakeDriver struct {
	platform definitions.Platform
	devices  []definitions.DeviceInfo
	listErr  error
}

func (f *fakeDriver) Platform() definitions.Platform { return f.platform }

func (f *fakeDriver) ListDevices(ctx context.Context) ([]definitions.DeviceInfo, error) {
	return f.devices, f.listErr
}

func (f *fakeDriver) GetScreenSize(ctx context.Context, deviceID string) (definitions.ScreenSize, error) {
	return definitions.ScreenSize{}, nil
}
func (f *fakeDriver) GetOrientation(ctx context.Context, deviceID string) (definitions.Orientation, error) {
	return definitions.Portrait, nil
}
func (f *fakeDriver) SetOrientation(ctx context.Context, deviceID string, o definitions.Orientation) error {
	return nil
}
func (f *fakeDriver) ListApps(ctx context.Context, deviceID string) ([]definitions.InstalledApp, error) {
	return nil, nil
}
func (f *fakeDriver) ListElements(ctx context.Context, deviceID, filter string) ([]definitions.ScreenElement, error) {
	return nil, nil
}
func (f *fakeDriver) TakeScreenshot(ctx context.Context, deviceID string) ([]byte, error) {
	return nil, nil
}
func (f *fakeDriver) Tap(ctx context.Context, deviceID string, x, y int) error       { return nil }
func (f *fakeDriver) DoubleTap(ctx context.Context, deviceID string, x, y int) error { return nil }
func (f *fakeDriver) LongPress(ctx context.Context, deviceID string, x, y, durationMs int) (string, error) {
	return "", nil
}
func (f *fakeDriver) Swipe(ctx context.Context, deviceID string, sx, sy, ex, ey, durationMs int) error {
	return nil
}
func (f *fakeDriver) TypeText(ctx context.Context, deviceID, text string) error      { return nil }
func (f *fakeDriver) PressButton(ctx context.Context, deviceID, button string) error { return nil }
func (f *fakeDriver) LaunchApp(ctx context.Context, deviceID, appID string) error    { return nil }
func (f *fakeDriver) TerminateApp(ctx context.Context, deviceID, appID string) error { return nil }
func (f *fakeDriver) InstallApp(ctx context.Context, deviceID, appPath string) error { return nil }
func (f *fakeDriver) UninstallApp(ctx context.Context, deviceID, appID string) error { return nil }
func (f *fakeDriver) OpenURL(ctx context.Context, deviceID, url string) error        { return nil }

func androidDevice(id string) definitions.DeviceInfo {
	return definitions.DeviceInfo{ID: id, Name: id, Platform: definitions.Android, Kind: definitions.Emulator, State: "connected"}
}

func iosDevice(id string) definitions.DeviceInfo {
	return definitions.DeviceInfo{ID: id, Name: id, Platform: definitions.IOS, Kind: definitions.Simulator, State: "booted"}
}

func TestListDevicesAuto(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android, devices: []definitions.DeviceInfo{androidDevice("emulator-5554")}},
		&fakeDriver{platform: definitions.IOS, devices: []definitions.DeviceInfo{iosDevice("AAAA-1111")}},
	)

	devices, warnings, err := m.ListDevices(context.Background(), definitions.Auto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("expected devices from both platforms, got %d", len(devices))
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestListDevicesAutoPartialFailure(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android, devices: []definitions.DeviceInfo{androidDevice("emulator-5554")}},
		&fakeDriver{platform: definitions.IOS, listErr: errors.New("xcrun: not found")},
	)

	devices, warnings, err := m.ListDevices(context.Background(), definitions.Auto)
	if err != nil {
		t.Fatalf("one broken toolchain must not fail auto discovery: %v", err)
	}
	if len(devices) != 1 {
		t.Errorf("expected android devices to survive, got %d", len(devices))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "ios discovery failed") {
		t.Errorf("expected an ios warning, got %v", warnings)
	}
}

func TestListDevicesExplicitFailure(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android, listErr: errors.New("adb: not found")},
		&fakeDriver{platform: definitions.IOS},
	)

	if _, _, err := m.ListDevices(context.Background(), definitions.Android); err == nil {
		t.Error("explicit platform discovery failure must be an error")
	}
}

func TestResolveExplicit(t *testing.T) {
	android := &fakeDriver{platform: definitions.Android}
	iosDrv := &fakeDriver{platform: definitions.IOS}
	m := NewManager(android, iosDrv)

	drv, err := m.Resolve(context.Background(), definitions.Android, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drv.Platform() != definitions.Android {
		t.Errorf("expected android driver, got %s", drv.Platform())
	}

	drv, err = m.Resolve(context.Background(), definitions.IOS, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drv.Platform() != definitions.IOS {
		t.Errorf("expected ios driver, got %s", drv.Platform())
	}
}

func TestResolveAuto(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android, devices: []definitions.DeviceInfo{androidDevice("emulator-5554")}},
		&fakeDriver{platform: definitions.IOS, devices: []definitions.DeviceInfo{iosDevice("AAAA-1111")}},
	)

	drv, err := m.Resolve(context.Background(), definitions.Auto, "AAAA-1111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drv.Platform() != definitions.IOS {
		t.Errorf("expected ios driver, got %s", drv.Platform())
	}
}

func TestResolveAutoUnknownDevice(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android},
		&fakeDriver{platform: definitions.IOS},
	)

	_, err := m.Resolve(context.Background(), definitions.Auto, "missing")
	var typed *definitions.Error
	if !errors.As(err, &typed) || typed.Kind != definitions.DeviceError {
		t.Fatalf("expected device error, got %v", err)
	}
}

func TestResolveAutoAmbiguous(t *testing.T) {
	m := NewManager(
		&fakeDriver{platform: definitions.Android, devices: []definitions.DeviceInfo{androidDevice("shared-id")}},
		&fakeDriver{platform: definitions.IOS, devices: []definitions.DeviceInfo{iosDevice("shared-id")}},
	)

	_, err := m.Resolve(context.Background(), definitions.Auto, "shared-id")
	if err == nil || !strings.Contains(err.Error(), "both platforms") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}
