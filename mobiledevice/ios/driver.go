package ios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/constants"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/codec"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/shell"
)

// DefaultTimeout bounds every single simctl invocation.
const DefaultTimeout = 30 * time.Second

// buttonNames maps logical button names to what "simctl io press"
// accepts. The simulator exposes only the hardware buttons.
var buttonNames = map[string]string{
	"home":        "home",
	"power":       "power",
	"volume_up":   "volumeUp",
	"volume_down": "volumeDown",
}

// screenSizes is the logical point size and scale per simulator model.
// simctl has no screen-size query, so the model name is matched against
// known device families instead.
var screenSizes = []struct {
	match string
	size  definitions.ScreenSize
}{
	{"iPhone 15 Pro Max", definitions.ScreenSize{Width: 430, Height: 932, Scale: 3.0}},
	{"iPhone 14 Pro Max", definitions.ScreenSize{Width: 430, Height: 932, Scale: 3.0}},
	{"iPhone 15", definitions.ScreenSize{Width: 390, Height: 844, Scale: 3.0}},
	{"iPhone 14", definitions.ScreenSize{Width: 390, Height: 844, Scale: 3.0}},
	{"iPhone 13", definitions.ScreenSize{Width: 390, Height: 844, Scale: 3.0}},
	{"iPhone SE", definitions.ScreenSize{Width: 375, Height: 667, Scale: 2.0}},
	{"iPad Pro (12.9", definitions.ScreenSize{Width: 1024, Height: 1366, Scale: 2.0}},
	{"iPad Pro (11", definitions.ScreenSize{Width: 834, Height: 1194, Scale: 2.0}},
	{"iPad Air", definitions.ScreenSize{Width: 834, Height: 1194, Scale: 2.0}},
	{"iPad", definitions.ScreenSize{Width: 810, Height: 1080, Scale: 2.0}},
}

var defaultScreenSize = definitions.ScreenSize{Width: 390, Height: 844, Scale: 3.0}

type Config struct {
	// XcrunPath is the xcrun executable, default "xcrun".
	XcrunPath string
	// Timeout bounds each simctl invocation, default DefaultTimeout.
	Timeout time.Duration
}

// Driver automates iOS simulators through simctl. Physical iOS devices
// are reported by discovery on other tools but are not controllable
// here; every operation gates on the target being a simulator.
type Driver struct {
	cfg    Config
	runner shell.Runner
}

func New(cfg Config, runner shell.Runner) *Driver {
	if cfg.XcrunPath == "" {
		cfg.XcrunPath = "xcrun"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if runner == nil {
		runner = shell.CommandRunner{}
	}
	return &Driver{cfg: cfg, runner: runner}
}

func (d *Driver) Platform() definitions.Platform {
	return definitions.IOS
}

func (d *Driver) simctl(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	out, err := d.runner.Run(ctx, d.cfg.XcrunPath, append([]string{"simctl"}, args...)...)
	if err != nil {
		return out, definitions.Subprocessf("%v", err)
	}
	return out, nil
}

func (d *Driver) ListDevices(ctx context.Context) ([]definitions.DeviceInfo, error) {
	out, err := d.simctl(ctx, "list", "devices", "available", "--json")
	if err != nil {
		return nil, err
	}
	return codec.ParseSimulatorList(out)
}

// resolveSimulator looks a device id up in the simulator list. Ids that
// are not known simulators are rejected so adb serials or physical
// device udids never reach simctl.
func (d *Driver) resolveSimulator(ctx context.Context, deviceID string) (definitions.DeviceInfo, error) {
	devices, err := d.ListDevices(ctx)
	if err != nil {
		return definitions.DeviceInfo{}, err
	}
	for _, dev := range devices {
		if dev.ID == deviceID {
			return dev, nil
		}
	}
	return definitions.DeviceInfo{}, definitions.Devicef("no iOS simulator with id %q", deviceID)
}

func (d *Driver) GetScreenSize(ctx context.Context, deviceID string) (definitions.ScreenSize, error) {
	dev, err := d.resolveSimulator(ctx, deviceID)
	if err != nil {
		return definitions.ScreenSize{}, err
	}
	return screenSizeForModel(dev.Name), nil
}

func screenSizeForModel(name string) definitions.ScreenSize {
	for _, entry := range screenSizes {
		if strings.Contains(name, entry.match) {
			return entry.size
		}
	}
	return defaultScreenSize
}

// GetOrientation always reports portrait. simctl can set the simulator
// orientation but has no way to read it back.
func (d *Driver) GetOrientation(ctx context.Context, deviceID string) (definitions.Orientation, error) {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return "", err
	}
	return definitions.Portrait, nil
}

func (d *Driver) SetOrientation(ctx context.Context, deviceID string, orientation definitions.Orientation) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "io", deviceID, "orientation", string(orientation))
	return err
}

func (d *Driver) ListApps(ctx context.Context, deviceID string) ([]definitions.InstalledApp, error) {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return nil, err
	}
	out, err := d.simctl(ctx, "listapps", deviceID)
	if err != nil {
		return nil, err
	}
	return codec.ParseSimulatorApps(out)
}

func (d *Driver) ListElements(ctx context.Context, deviceID, filter string) ([]definitions.ScreenElement, error) {
	return nil, definitions.Unsupportedf("listing screen elements is not supported on iOS simulators")
}

func (d *Driver) TakeScreenshot(ctx context.Context, deviceID string) ([]byte, error) {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return nil, err
	}
	png, err := d.simctl(ctx, "io", deviceID, "screenshot", "--type=png", "-")
	if err != nil {
		return nil, err
	}
	if err := codec.ValidatePNG(png); err != nil {
		return nil, err
	}
	return png, nil
}

func (d *Driver) Tap(ctx context.Context, deviceID string, x, y int) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "io", deviceID, "tap", itoa(x), itoa(y))
	return err
}

func (d *Driver) DoubleTap(ctx context.Context, deviceID string, x, y int) error {
	if err := d.Tap(ctx, deviceID, x, y); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)

	_, err := d.simctl(ctx, "io", deviceID, "tap", itoa(x), itoa(y))
	return err
}

// LongPress degrades to a plain tap. simctl's tap has no duration
// parameter, so the caller is told what actually happened instead of
// failing the gesture.
func (d *Driver) LongPress(ctx context.Context, deviceID string, x, y, durationMs int) (string, error) {
	if err := d.Tap(ctx, deviceID, x, y); err != nil {
		return "", err
	}
	return "the simulator does not honor press duration, performed a plain tap", nil
}

// Swipe ignores durationMs; simctl swipes at a fixed speed.
func (d *Driver) Swipe(ctx context.Context, deviceID string, startX, startY, endX, endY, durationMs int) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "io", deviceID, "swipe",
		itoa(startX), itoa(startY), itoa(endX), itoa(endY))
	return err
}

func (d *Driver) TypeText(ctx context.Context, deviceID, text string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "io", deviceID, "type", text)
	return err
}

func (d *Driver) PressButton(ctx context.Context, deviceID, button string) error {
	name, ok := buttonNames[strings.ToLower(button)]
	if !ok {
		return definitions.Unsupportedf("button %q is not supported on iOS simulators, supported buttons: home, power, volume_up, volume_down", button)
	}
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "io", deviceID, "press", name)
	return err
}

func (d *Driver) LaunchApp(ctx context.Context, deviceID, appID string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "launch", deviceID, bundleID(appID))
	return err
}

func (d *Driver) TerminateApp(ctx context.Context, deviceID, appID string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "terminate", deviceID, bundleID(appID))
	return err
}

func (d *Driver) InstallApp(ctx context.Context, deviceID, appPath string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "install", deviceID, appPath)
	return err
}

func (d *Driver) UninstallApp(ctx context.Context, deviceID, appID string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "uninstall", deviceID, bundleID(appID))
	return err
}

func (d *Driver) OpenURL(ctx context.Context, deviceID, url string) error {
	if _, err := d.resolveSimulator(ctx, deviceID); err != nil {
		return err
	}
	_, err := d.simctl(ctx, "openurl", deviceID, url)
	return err
}

func bundleID(appID string) string {
	if mapped, ok := constants.APP_PACKAGES_IOS[strings.ToLower(appID)]; ok {
		return mapped
	}
	return appID
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
