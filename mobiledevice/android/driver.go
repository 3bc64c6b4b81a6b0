package android

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/constants"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/codec"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/shell"
)

const (
	// DefaultTimeout bounds every single adb invocation.
	DefaultTimeout = 30 * time.Second

	// typeChunkSize caps the text passed to one "input text" call; very
	// long arguments make the shell on some devices choke.
	typeChunkSize = 300

	// deviceKitPackage is the on-device helper exposing a clipboard
	// broadcast receiver, used to type non-ASCII text.
	deviceKitPackage = "com.mobilenext.devicekit"
)

// buttonKeycodes maps logical button names to Android key events.
// "search" and "app_switch" have no universally mapped keycode and fall
// back to back/menu respectively.
var buttonKeycodes = map[string]string{
	"home":        "KEYCODE_HOME",
	"back":        "KEYCODE_BACK",
	"menu":        "KEYCODE_MENU",
	"power":       "KEYCODE_POWER",
	"volume_up":   "KEYCODE_VOLUME_UP",
	"volume_down": "KEYCODE_VOLUME_DOWN",
	"camera":      "KEYCODE_CAMERA",
	"enter":       "KEYCODE_ENTER",
	"dpad_center": "KEYCODE_DPAD_CENTER",
	"dpad_up":     "KEYCODE_DPAD_UP",
	"dpad_down":   "KEYCODE_DPAD_DOWN",
	"dpad_left":   "KEYCODE_DPAD_LEFT",
	"dpad_right":  "KEYCODE_DPAD_RIGHT",
	"search":      "KEYCODE_BACK",
	"app_switch":  "KEYCODE_MENU",
}

// textEscaper rewrites text for "input text": spaces become %s and
// shell metacharacters are backslash-escaped.
var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"`", "\\`",
	` `, `%s`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	`|`, `\|`,
	`&`, `\&`,
	`;`, `\;`,
	`(`, `\(`,
	`)`, `\)`,
	`<`, `\<`,
	`>`, `\>`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`$`, `\$`,
	`*`, `\*`,
	`?`, `\?`,
)

type Config struct {
	// ADBPath is the adb executable, default "adb".
	ADBPath string
	// ServerAddr is the adb server "host:port"; empty uses adb's default.
	ServerAddr string
	// Timeout bounds each adb invocation, default DefaultTimeout.
	Timeout time.Duration
	// StrictHierarchy fails element listing on a truncated UI dump
	// instead of returning the elements parsed so far.
	StrictHierarchy bool
}

// Driver automates Android devices and emulators through the Android
// debug bridge.
type Driver struct {
	cfg    Config
	runner shell.Runner
}

func New(cfg Config, runner shell.Runner) *Driver {
	if cfg.ADBPath == "" {
		cfg.ADBPath = "adb"
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
	return definitions.Android
}

// adb runs one adb invocation with the configured server address and
// timeout. deviceID may be empty for server-wide commands.
func (d *Driver) adb(ctx context.Context, deviceID string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	full := make([]string, 0, len(args)+6)
	if d.cfg.ServerAddr != "" {
		host, port, ok := strings.Cut(d.cfg.ServerAddr, ":")
		if ok {
			full = append(full, "-H", host, "-P", port)
		}
	}
	if deviceID != "" {
		full = append(full, "-s", deviceID)
	}
	full = append(full, args...)

	out, err := d.runner.Run(ctx, d.cfg.ADBPath, full...)
	if err != nil {
		return out, definitions.Subprocessf("%v", err)
	}
	return out, nil
}

func (d *Driver) shellOut(ctx context.Context, deviceID string, args ...string) (string, error) {
	out, err := d.adb(ctx, deviceID, append([]string{"shell"}, args...)...)
	return string(out), err
}

func (d *Driver) ListDevices(ctx context.Context) ([]definitions.DeviceInfo, error) {
	out, err := d.adb(ctx, "", "devices", "-l")
	if err != nil {
		return nil, err
	}
	return codec.ParseADBDevices(string(out)), nil
}

func (d *Driver) GetScreenSize(ctx context.Context, deviceID string) (definitions.ScreenSize, error) {
	out, err := d.shellOut(ctx, deviceID, "wm", "size")
	if err != nil {
		return definitions.ScreenSize{}, err
	}
	return codec.ParseDisplaySize(out)
}

func (d *Driver) GetOrientation(ctx context.Context, deviceID string) (definitions.Orientation, error) {
	out, err := d.shellOut(ctx, deviceID, "settings", "get", "system", "user_rotation")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "0" {
		return definitions.Portrait, nil
	}
	return definitions.Landscape, nil
}

func (d *Driver) SetOrientation(ctx context.Context, deviceID string, orientation definitions.Orientation) error {
	// Auto-rotate must be off before user_rotation takes effect.
	if _, err := d.shellOut(ctx, deviceID, "settings", "put", "system", "accelerometer_rotation", "0"); err != nil {
		return err
	}

	rotation := "0"
	if orientation == definitions.Landscape {
		rotation = "1"
	}
	_, err := d.shellOut(ctx, deviceID,
		"content", "insert",
		"--uri", "content://settings/system",
		"--bind", "name:s:user_rotation",
		"--bind", "value:i:"+rotation)
	return err
}

func (d *Driver) ListApps(ctx context.Context, deviceID string) ([]definitions.InstalledApp, error) {
	out, err := d.shellOut(ctx, deviceID,
		"cmd", "package", "query-activities",
		"-a", "android.intent.action.MAIN",
		"-c", "android.intent.category.LAUNCHER")
	if err != nil {
		return nil, err
	}

	apps := codec.ParseLauncherPackages(out)
	sort.Slice(apps, func(i, j int) bool { return apps[i].PackageName < apps[j].PackageName })
	return apps, nil
}

func (d *Driver) ListElements(ctx context.Context, deviceID, filter string) ([]definitions.ScreenElement, error) {
	dumpPath := fmt.Sprintf("/sdcard/ui_dump_%s.xml", uuid.NewString())

	if _, err := d.shellOut(ctx, deviceID, "uiautomator", "dump", dumpPath); err != nil {
		return nil, err
	}
	defer d.shellOut(ctx, deviceID, "rm", "-f", dumpPath)

	dump, err := d.adb(ctx, deviceID, "shell", "cat", dumpPath)
	if err != nil {
		return nil, err
	}

	return codec.ParseUIHierarchy(dump, filter, d.cfg.StrictHierarchy)
}

func (d *Driver) TakeScreenshot(ctx context.Context, deviceID string) ([]byte, error) {
	args := []string{"exec-out", "screencap", "-p"}

	// Foldables and cars expose several displays; plain screencap grabs
	// display 0 which may be off. Target the active one when there is
	// more than one.
	out, err := d.shellOut(ctx, deviceID, "dumpsys", "SurfaceFlinger", "--display-id")
	if err != nil {
		return nil, err
	}
	if codec.ParseDisplayCount(out) > 1 {
		if id, ok := d.activeDisplayID(ctx, deviceID); ok {
			args = append(args, "-d", id)
		}
	}

	// exec-out gives raw binary stdout, unlike shell which may mangle
	// line endings.
	png, err := d.adb(ctx, deviceID, args...)
	if err != nil {
		return nil, err
	}
	if err := codec.ValidatePNG(png); err != nil {
		return nil, err
	}
	return png, nil
}

// activeDisplayID asks the display service (Android 11+) for the
// powered-on display, falling back to the legacy dumpsys viewport
// listing. A miss on both means plain screencap.
func (d *Driver) activeDisplayID(ctx context.Context, deviceID string) (string, bool) {
	if out, err := d.shellOut(ctx, deviceID, "cmd", "display", "get-displays"); err == nil {
		if id, ok := codec.ParseActiveDisplayID(out); ok {
			return id, true
		}
	}
	if out, err := d.shellOut(ctx, deviceID, "dumpsys", "display"); err == nil {
		if id, ok := codec.ParseActiveDisplayIDLegacy(out); ok {
			return id, true
		}
	}
	return "", false
}

func (d *Driver) Tap(ctx context.Context, deviceID string, x, y int) error {
	_, err := d.shellOut(ctx, deviceID, "input", "tap", itoa(x), itoa(y))
	return err
}

func (d *Driver) DoubleTap(ctx context.Context, deviceID string, x, y int) error {
	if err := d.Tap(ctx, deviceID, x, y); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	return d.Tap(ctx, deviceID, x, y)
}

// LongPress is a zero-distance swipe; the swipe duration becomes the
// press duration.
func (d *Driver) LongPress(ctx context.Context, deviceID string, x, y, durationMs int) (string, error) {
	_, err := d.shellOut(ctx, deviceID, "input", "swipe",
		itoa(x), itoa(y), itoa(x), itoa(y), itoa(durationMs))
	return "", err
}

func (d *Driver) Swipe(ctx context.Context, deviceID string, startX, startY, endX, endY, durationMs int) error {
	_, err := d.shellOut(ctx, deviceID, "input", "swipe",
		itoa(startX), itoa(startY), itoa(endX), itoa(endY), itoa(durationMs))
	return err
}

func (d *Driver) TypeText(ctx context.Context, deviceID, text string) error {
	if text == "" {
		return nil
	}

	if !isASCII(text) {
		return d.typeViaClipboard(ctx, deviceID, text)
	}

	for _, chunk := range chunkString(text, typeChunkSize) {
		if _, err := d.shellOut(ctx, deviceID, "input", "text", textEscaper.Replace(chunk)); err != nil {
			return err
		}
	}
	return nil
}

// typeViaClipboard pushes non-ASCII text through the devicekit
// clipboard broadcast and pastes it, since "input text" only handles
// ASCII. Requires the devicekit helper app on the device.
func (d *Driver) typeViaClipboard(ctx context.Context, deviceID, text string) error {
	out, err := d.shellOut(ctx, deviceID, "pm", "list", "packages")
	if err != nil {
		return err
	}
	if !strings.Contains(out, deviceKitPackage) {
		return definitions.Unsupportedf("non-ASCII text is not supported without the %s app installed on the device", deviceKitPackage)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if _, err := d.shellOut(ctx, deviceID,
		"am", "broadcast",
		"-a", "devicekit.clipboard.set",
		"-e", "encoding", "base64",
		"-e", "text", encoded,
		"-n", deviceKitPackage+"/.ClipboardBroadcastReceiver"); err != nil {
		return err
	}

	if _, err := d.shellOut(ctx, deviceID, "input", "keyevent", "KEYCODE_PASTE"); err != nil {
		return err
	}

	_, err = d.shellOut(ctx, deviceID,
		"am", "broadcast",
		"-a", "devicekit.clipboard.clear",
		"-n", deviceKitPackage+"/.ClipboardBroadcastReceiver")
	return err
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func (d *Driver) PressButton(ctx context.Context, deviceID, button string) error {
	keycode, ok := buttonKeycodes[strings.ToLower(button)]
	if !ok {
		names := lo.Keys(buttonKeycodes)
		sort.Strings(names)
		return definitions.Validationf("unknown button %q, supported buttons: %s", button, strings.Join(names, ", "))
	}
	_, err := d.shellOut(ctx, deviceID, "input", "keyevent", keycode)
	return err
}

func (d *Driver) LaunchApp(ctx context.Context, deviceID, appID string) error {
	pkg := appID
	if mapped, ok := constants.APP_PACKAGES_ANDROID[strings.ToLower(appID)]; ok {
		pkg = mapped
	}

	out, err := d.shellOut(ctx, deviceID,
		"monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err == nil && !strings.Contains(out, "No activities found") {
		return nil
	}

	// Some packages expose no launcher category; resolve the default
	// activity and start it directly.
	out, err = d.shellOut(ctx, deviceID, "cmd", "package", "resolve-activity", "--brief", pkg)
	if err != nil {
		return definitions.Devicef("app %q not found on device", pkg)
	}

	lines := strings.Fields(strings.TrimSpace(out))
	activity := ""
	for _, f := range lines {
		if strings.Contains(f, "/") {
			activity = f
		}
	}
	if activity == "" {
		return definitions.Devicef("no launchable activity for app %q", pkg)
	}

	_, err = d.shellOut(ctx, deviceID, "am", "start", "-n", activity)
	return err
}

func (d *Driver) TerminateApp(ctx context.Context, deviceID, appID string) error {
	pkg := appID
	if mapped, ok := constants.APP_PACKAGES_ANDROID[strings.ToLower(appID)]; ok {
		pkg = mapped
	}
	_, err := d.shellOut(ctx, deviceID, "am", "force-stop", pkg)
	return err
}

func (d *Driver) InstallApp(ctx context.Context, deviceID, appPath string) error {
	out, err := d.adb(ctx, deviceID, "install", "-r", appPath)
	if err != nil {
		return err
	}
	if !strings.Contains(string(out), "Success") {
		return definitions.Subprocessf("install failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *Driver) UninstallApp(ctx context.Context, deviceID, appID string) error {
	pkg := appID
	if mapped, ok := constants.APP_PACKAGES_ANDROID[strings.ToLower(appID)]; ok {
		pkg = mapped
	}
	out, err := d.adb(ctx, deviceID, "uninstall", pkg)
	if err != nil {
		return err
	}
	if !strings.Contains(string(out), "Success") {
		return definitions.Subprocessf("uninstall failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

func (d *Driver) OpenURL(ctx context.Context, deviceID, url string) error {
	_, err := d.shellOut(ctx, deviceID,
		"am", "start", "-a", "android.intent.action.VIEW", "-d", url)
	return err
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}

func chunkString(s string, size int) []string {
	if len(s) <= size {
		return []string{s}
	}
	var chunks []string
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}
