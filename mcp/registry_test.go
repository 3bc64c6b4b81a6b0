package mcp

import (
	"context"
	"strings"
	"testing"
)

func callTool(t *testing.T, name string, args map[string]any) string {
	t.Helper()

	registry := newTestRegistry(t)
	content, err := registry.Call(context.Background(), name, args)
	if err != nil {
		t.Fatalf("%s failed: %v", name, err)
	}
	if len(content) != 1 {
		t.Fatalf("%s: expected 1 content block, got %d", name, len(content))
	}
	return content[0].Text
}

func deviceArgs(extra map[string]any) map[string]any {
	args := map[string]any{
		"device_id": "emulator-5554",
		"platform":  "android",
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestConfirmationTexts(t *testing.T) {
	cases := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"mobile_device_mcp_get_screen_size", deviceArgs(nil), "Screen size: 1080x2400 pixels"},
		{"mobile_device_mcp_get_orientation", deviceArgs(nil), "Current orientation: portrait"},
		{"mobile_device_mcp_list_apps", deviceArgs(nil), "Installed apps:\n- Chrome (com.android.chrome)"},
		{"mobile_device_mcp_list_elements_on_screen", deviceArgs(nil), "No elements found"},
		{"mobile_device_mcp_click_on_screen_at_coordinates", deviceArgs(map[string]any{"x": 150.0, "y": 300.0}), "Clicked at (150, 300)"},
		{"mobile_device_mcp_double_tap_on_screen", deviceArgs(map[string]any{"x": 10.0, "y": 20.0}), "Double tapped at (10, 20)"},
		{"mobile_device_mcp_long_press_on_screen_at_coordinates", deviceArgs(map[string]any{"x": 10.0, "y": 20.0}), "Long pressed at (10, 20) for 1000ms"},
		{"mobile_device_mcp_swipe_on_screen", deviceArgs(map[string]any{"start_x": 1.0, "start_y": 2.0, "end_x": 3.0, "end_y": 4.0}), "Swiped from (1, 2) to (3, 4)"},
		{"mobile_device_mcp_type_keys", deviceArgs(map[string]any{"text": "hello"}), "Typed text: hello"},
		{"mobile_device_mcp_press_button", deviceArgs(map[string]any{"button": "home"}), "Pressed button 'home'"},
		{"mobile_device_mcp_launch_app", deviceArgs(map[string]any{"app_id": "chrome"}), "Launched app 'chrome'"},
		{"mobile_device_mcp_terminate_app", deviceArgs(map[string]any{"app_id": "com.android.chrome"}), "Terminated app 'com.android.chrome'"},
		{"mobile_device_mcp_install_app", deviceArgs(map[string]any{"app_path": "/tmp/app.apk"}), "Installed app from '/tmp/app.apk'"},
		{"mobile_device_mcp_uninstall_app", deviceArgs(map[string]any{"app_id": "com.android.chrome"}), "Uninstalled app 'com.android.chrome'"},
		{"mobile_device_mcp_open_url", deviceArgs(map[string]any{"url": "https://example.com"}), "Opened URL 'https://example.com'"},
		{"mobile_device_mcp_set_orientation", deviceArgs(map[string]any{"orientation": "landscape"}), "Set orientation to 'landscape'"},
	}

	for _, tc := range cases {
		if got := callTool(t, tc.tool, tc.args); got != tc.want {
			t.Errorf("%s:\ngot:  %q\nwant: %q", tc.tool, got, tc.want)
		}
	}
}

func TestGestureDefaults(t *testing.T) {
	got := callTool(t, "mobile_device_mcp_long_press_on_screen_at_coordinates",
		deviceArgs(map[string]any{"x": 5.0, "y": 6.0, "duration": 2500.0}))
	if got != "Long pressed at (5, 6) for 2500ms" {
		t.Errorf("explicit duration not honored: %q", got)
	}
}

func TestSchemaRejectsWrongTypes(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Call(context.Background(),
		"mobile_device_mcp_click_on_screen_at_coordinates",
		deviceArgs(map[string]any{"x": "150", "y": 300.0}))
	if err == nil {
		t.Fatal("expected schema rejection for string coordinate")
	}
	if !strings.Contains(err.Error(), "invalid arguments") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSchemaRejectsBadEnum(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Call(context.Background(),
		"mobile_device_mcp_set_orientation",
		deviceArgs(map[string]any{"orientation": "upside_down"}))
	if err == nil {
		t.Fatal("expected schema rejection for bad enum value")
	}
}

func TestToolOrderIsStable(t *testing.T) {
	a := newTestRegistry(t).Tools()
	b := newTestRegistry(t).Tools()
	if len(a) != len(b) {
		t.Fatalf("catalog sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Errorf("tool order differs at %d: %s vs %s", i, a[i].Name, b[i].Name)
		}
	}
}
