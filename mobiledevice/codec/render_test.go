package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

func TestRender(t *testing.T) {
	got := Render("Screen size: {width}x{height} pixels", map[string]any{
		"width":  1080,
		"height": 2400,
	})
	if got != "Screen size: 1080x2400 pixels" {
		t.Errorf("unexpected render: %q", got)
	}
}

func TestRenderDeviceList(t *testing.T) {
	devices := []definitions.DeviceInfo{
		{ID: "emulator-5554", Name: "Pixel_7", Platform: definitions.Android, Kind: definitions.Emulator, State: "connected"},
		{ID: "AAAA-1111", Name: "iPhone 15 (iOS 17.2)", Platform: definitions.IOS, Kind: definitions.Simulator, State: "booted"},
	}

	got := RenderDeviceList(devices, nil)
	want := "- Pixel_7 (emulator-5554) - android emulator [connected]\n" +
		"- iPhone 15 (iOS 17.2) (AAAA-1111) - ios simulator [booted]"
	if got != want {
		t.Errorf("unexpected listing:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestRenderDeviceListEmpty(t *testing.T) {
	if got := RenderDeviceList(nil, nil); got != NoDevicesText {
		t.Errorf("unexpected empty listing: %q", got)
	}
}

func TestRenderDeviceListWarnings(t *testing.T) {
	got := RenderDeviceList(nil, []string{"ios discovery failed: xcrun not found"})
	if !strings.HasPrefix(got, NoDevicesText) {
		t.Errorf("expected empty-state prefix, got %q", got)
	}
	if !strings.Contains(got, "Warning: ios discovery failed") {
		t.Errorf("expected warning line, got %q", got)
	}
}

func TestRenderElementList(t *testing.T) {
	elements := []definitions.ScreenElement{
		{
			Class:      "android.widget.Button",
			Label:      "Submit",
			ResourceID: "com.example:id/submit",
			Bounds:     definitions.ElementBounds{X: 100, Y: 200, Width: 200, Height: 80},
		},
		{
			Class:  "android.widget.ImageView",
			Label:  "Profile picture",
			Bounds: definitions.ElementBounds{X: 900, Y: 100, Width: 100, Height: 100},
		},
	}

	got := RenderElementList(elements)
	if !strings.HasPrefix(got, "Screen elements:\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "- Submit at (100,200) size 200x80 [type: android.widget.Button] [id: com.example:id/submit]") {
		t.Errorf("unexpected button line: %q", got)
	}
	if strings.Contains(got, "Profile picture at (900,100) size 100x100 [type: android.widget.ImageView] [id:") {
		t.Errorf("id tag should be omitted without a resource id: %q", got)
	}

	if got := RenderElementList(nil); got != "No elements found" {
		t.Errorf("unexpected empty listing: %q", got)
	}
}

func TestRenderAppList(t *testing.T) {
	apps := []definitions.InstalledApp{
		{PackageName: "com.android.chrome", AppName: "Chrome"},
	}
	got := RenderAppList(apps)
	if got != "Installed apps:\n- Chrome (com.android.chrome)" {
		t.Errorf("unexpected listing: %q", got)
	}

	if got := RenderAppList(nil); got != "No apps found" {
		t.Errorf("unexpected empty listing: %q", got)
	}
}

func TestMapError(t *testing.T) {
	typed := definitions.Validationf("bad argument")
	if got := MapError(typed); got != typed {
		t.Errorf("typed errors must pass through, got %+v", got)
	}

	plain := errors.New("adb: device offline")
	mapped := MapError(plain)
	if mapped.Kind != definitions.SubprocessError {
		t.Errorf("expected subprocess kind, got %v", mapped.Kind)
	}
	if mapped.Code() != -32002 {
		t.Errorf("expected code -32002, got %d", mapped.Code())
	}
}

func TestErrorCodes(t *testing.T) {
	cases := map[*definitions.Error]int{
		definitions.Validationf("v"):  -32602,
		definitions.Devicef("d"):      -32000,
		definitions.Unsupportedf("u"): -32001,
		definitions.Subprocessf("s"):  -32002,
		definitions.IOf("i"):          -32003,
	}
	for err, want := range cases {
		if got := err.Code(); got != want {
			t.Errorf("%q: expected code %d, got %d", err.Message, want, got)
		}
	}
}
