package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/codec"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/utils"
)

const toolPrefix = "mobile_device_mcp_"

type handlerFunc func(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error)

// Registry holds the tool catalog in a stable order together with the
// compiled argument schemas and handlers. Arguments are validated
// against the published schema before any handler runs, so handlers
// can trust required fields exist with the right JSON types.
type Registry struct {
	manager         *mobiledevice.Manager
	defaultPlatform definitions.Platform

	tools    []Tool
	handlers map[string]handlerFunc
	schemas  map[string]*jsonschema.Schema
}

func NewRegistry(manager *mobiledevice.Manager, defaultPlatform definitions.Platform) (*Registry, error) {
	r := &Registry{
		manager:         manager,
		defaultPlatform: defaultPlatform,
		handlers:        make(map[string]handlerFunc),
		schemas:         make(map[string]*jsonschema.Schema),
	}
	if err := r.registerAll(); err != nil {
		return nil, err
	}
	return r, nil
}

// Tools returns the catalog in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Call validates the arguments and dispatches to the named tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) ([]definitions.ContentBlock, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, definitions.Validationf("unknown tool: %s", name)
	}
	if err := validateArgs(r.schemas[name], args); err != nil {
		return nil, err
	}
	return handler(ctx, args)
}

func (r *Registry) register(tool Tool, handler handlerFunc) error {
	compiled, err := compileSchema(tool.Name, tool.InputSchema)
	if err != nil {
		return err
	}
	r.tools = append(r.tools, tool)
	r.handlers[tool.Name] = handler
	r.schemas[tool.Name] = compiled
	return nil
}

// resolve picks the driver and device id for a device-scoped call.
// A configured default platform overrides the "auto" selector so an
// operator can pin the whole server to one platform.
func (r *Registry) resolve(ctx context.Context, args map[string]any) (mobiledevice.Driver, string, error) {
	deviceID := utils.AnyToString(args["device_id"])

	platform, err := definitions.ParsePlatform(utils.AnyToString(args["platform"]))
	if err != nil {
		return nil, "", err
	}
	if platform == definitions.Auto && r.defaultPlatform != definitions.Auto {
		platform = r.defaultPlatform
	}

	driver, err := r.manager.Resolve(ctx, platform, deviceID)
	if err != nil {
		return nil, "", err
	}
	return driver, deviceID, nil
}

func textResult(text string) []definitions.ContentBlock {
	return []definitions.ContentBlock{definitions.TextBlock(text)}
}

// Common schema fragments shared by the device-scoped tools.
func deviceProperties() map[string]Property {
	return map[string]Property{
		"device_id": {
			Type:        "string",
			Description: "Device identifier (e.g., 'emulator-5554' for Android or device UDID for iOS)",
		},
		"platform": {
			Type:        "string",
			Description: "Platform: 'android', 'ios' or 'auto'",
			Enum:        []string{"android", "ios", "auto"},
		},
	}
}

func deviceSchema(extra map[string]Property, required ...string) InputSchema {
	props := deviceProperties()
	for k, v := range extra {
		props[k] = v
	}
	return InputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"device_id", "platform"}, required...),
	}
}

func coordinateProperties() map[string]Property {
	return map[string]Property{
		"x": {Type: "number", Description: "X coordinate in pixels"},
		"y": {Type: "number", Description: "Y coordinate in pixels"},
	}
}

func (r *Registry) registerAll() error {
	type entry struct {
		tool    Tool
		handler handlerFunc
	}

	entries := []entry{
		{
			Tool{
				Name:        toolPrefix + "list_available_devices",
				Description: "List all available mobile devices and simulators. This includes both physical devices and emulators for Android and iOS platforms.",
				InputSchema: InputSchema{Type: "object", Properties: map[string]Property{}, Required: []string{}},
			},
			r.listAvailableDevices,
		},
		{
			Tool{
				Name:        toolPrefix + "get_screen_size",
				Description: "Get the screen size of the mobile device in pixels. Returns width and height.",
				InputSchema: deviceSchema(nil),
			},
			r.getScreenSize,
		},
		{
			Tool{
				Name:        toolPrefix + "get_orientation",
				Description: "Get the current screen orientation of the device. Returns 'portrait' or 'landscape'.",
				InputSchema: deviceSchema(nil),
			},
			r.getOrientation,
		},
		{
			Tool{
				Name:        toolPrefix + "list_apps",
				Description: "List all the installed apps on the device. Returns app package names and labels.",
				InputSchema: deviceSchema(nil),
			},
			r.listApps,
		},
		{
			Tool{
				Name:        toolPrefix + "list_elements_on_screen",
				Description: "List elements on screen and their coordinates, with optional filtering. Returns UI elements with their bounds and properties.",
				InputSchema: deviceSchema(map[string]Property{
					"filter": {Type: "string", Description: "Optional filter to search for specific elements (e.g., text content, resource ID)"},
				}),
			},
			r.listElements,
		},
		{
			Tool{
				Name:        toolPrefix + "take_screenshot",
				Description: "Take a screenshot of the mobile device. Use this to understand the current state of the screen. Returns the screenshot as base64-encoded PNG image data.",
				InputSchema: deviceSchema(nil),
			},
			r.takeScreenshot,
		},
		{
			Tool{
				Name:        toolPrefix + "save_screenshot",
				Description: "Save a screenshot of the mobile device to a file. Useful for creating test artifacts or documentation.",
				InputSchema: deviceSchema(map[string]Property{
					"output_path": {Type: "string", Description: "Path where the screenshot should be saved (e.g., '/tmp/screenshot.png')"},
				}, "output_path"),
			},
			r.saveScreenshot,
		},
		{
			Tool{
				Name:        toolPrefix + "click_on_screen_at_coordinates",
				Description: "Click on the screen at given x,y coordinates. Use this to tap buttons, links, or any interactive elements.",
				InputSchema: deviceSchema(coordinateProperties(), "x", "y"),
			},
			r.click,
		},
		{
			Tool{
				Name:        toolPrefix + "double_tap_on_screen",
				Description: "Double-tap on the screen at given x,y coordinates. Useful for zoom or activation gestures.",
				InputSchema: deviceSchema(coordinateProperties(), "x", "y"),
			},
			r.doubleTap,
		},
		{
			Tool{
				Name:        toolPrefix + "long_press_on_screen_at_coordinates",
				Description: "Long press on the screen at given x,y coordinates. Useful for context menus or drag operations.",
				InputSchema: deviceSchema(mergeProps(coordinateProperties(), map[string]Property{
					"duration": {Type: "number", Description: "Duration of long press in milliseconds (default: 1000)", Default: 1000},
				}), "x", "y"),
			},
			r.longPress,
		},
		{
			Tool{
				Name:        toolPrefix + "swipe_on_screen",
				Description: "Swipe on the screen from start coordinates to end coordinates. Useful for scrolling or gesture navigation.",
				InputSchema: deviceSchema(map[string]Property{
					"start_x":  {Type: "number", Description: "Starting X coordinate in pixels"},
					"start_y":  {Type: "number", Description: "Starting Y coordinate in pixels"},
					"end_x":    {Type: "number", Description: "Ending X coordinate in pixels"},
					"end_y":    {Type: "number", Description: "Ending Y coordinate in pixels"},
					"duration": {Type: "number", Description: "Duration of swipe in milliseconds (default: 300)", Default: 300},
				}, "start_x", "start_y", "end_x", "end_y"),
			},
			r.swipe,
		},
		{
			Tool{
				Name:        toolPrefix + "type_keys",
				Description: "Type text into the focused element. Use this to enter text in input fields, search boxes, etc.",
				InputSchema: deviceSchema(map[string]Property{
					"text": {Type: "string", Description: "Text to type"},
				}, "text"),
			},
			r.typeKeys,
		},
		{
			Tool{
				Name:        toolPrefix + "press_button",
				Description: "Press a hardware or software button on device. Common buttons: home, back, menu, power, volume_up, volume_down, camera, enter.",
				InputSchema: deviceSchema(map[string]Property{
					"button": {
						Type:        "string",
						Description: "Button name: home, back, menu, power, volume_up, volume_down, camera, enter, etc.",
						Enum:        []string{"home", "back", "menu", "power", "volume_up", "volume_down", "camera", "enter", "search", "app_switch"},
					},
				}, "button"),
			},
			r.pressButton,
		},
		{
			Tool{
				Name:        toolPrefix + "launch_app",
				Description: "Launch an app on mobile device. Use this to open a specific app. You can provide either the package name (Android) or bundle ID (iOS), or a common app name like 'chrome', 'youtube', etc.",
				InputSchema: deviceSchema(map[string]Property{
					"app_id": {Type: "string", Description: "App package name (Android: com.example.app) or bundle ID (iOS: com.example.app), or common name (chrome, youtube, settings, etc.)"},
				}, "app_id"),
			},
			r.launchApp,
		},
		{
			Tool{
				Name:        toolPrefix + "terminate_app",
				Description: "Stop and terminate an app on mobile device. Forces the app to close.",
				InputSchema: deviceSchema(map[string]Property{
					"app_id": {Type: "string", Description: "App package name (Android) or bundle ID (iOS)"},
				}, "app_id"),
			},
			r.terminateApp,
		},
		{
			Tool{
				Name:        toolPrefix + "install_app",
				Description: "Install an app on mobile device from a local APK file (Android) or IPA file (iOS).",
				InputSchema: deviceSchema(map[string]Property{
					"app_path": {Type: "string", Description: "Path to APK file (Android) or IPA file (iOS)"},
				}, "app_path"),
			},
			r.installApp,
		},
		{
			Tool{
				Name:        toolPrefix + "uninstall_app",
				Description: "Uninstall an app from mobile device. Removes the app completely from the device.",
				InputSchema: deviceSchema(map[string]Property{
					"app_id": {Type: "string", Description: "App package name (Android) or bundle ID (iOS)"},
				}, "app_id"),
			},
			r.uninstallApp,
		},
		{
			Tool{
				Name:        toolPrefix + "open_url",
				Description: "Open a URL in browser on device. This will launch the default browser and navigate to the specified URL.",
				InputSchema: deviceSchema(map[string]Property{
					"url": {Type: "string", Description: "URL to open (must include http:// or https://)"},
				}, "url"),
			},
			r.openURL,
		},
		{
			Tool{
				Name:        toolPrefix + "set_orientation",
				Description: "Change the screen orientation of the device. Sets the device to portrait or landscape mode.",
				InputSchema: deviceSchema(map[string]Property{
					"orientation": {
						Type:        "string",
						Description: "Target orientation",
						Enum:        []string{"portrait", "landscape"},
					},
				}, "orientation"),
			},
			r.setOrientation,
		},
	}

	for _, e := range entries {
		if err := r.register(e.tool, e.handler); err != nil {
			return err
		}
	}
	return nil
}

func mergeProps(a, b map[string]Property) map[string]Property {
	for k, v := range b {
		a[k] = v
	}
	return a
}

func (r *Registry) listAvailableDevices(ctx context.Context, _ map[string]any) ([]definitions.ContentBlock, error) {
	devices, warnings, err := r.manager.ListDevices(ctx, r.defaultPlatform)
	if err != nil {
		return nil, err
	}
	return textResult(codec.RenderDeviceList(devices, warnings)), nil
}

func (r *Registry) getScreenSize(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	size, err := driver.GetScreenSize(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return textResult(codec.Render("Screen size: {width}x{height} pixels", map[string]any{
		"width":  size.Width,
		"height": size.Height,
	})), nil
}

func (r *Registry) getOrientation(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	orientation, err := driver.GetOrientation(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Current orientation: %s", orientation)), nil
}

func (r *Registry) listApps(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	apps, err := driver.ListApps(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return textResult(codec.RenderAppList(apps)), nil
}

func (r *Registry) listElements(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	elements, err := driver.ListElements(ctx, deviceID, utils.AnyToString(args["filter"]))
	if err != nil {
		return nil, err
	}
	return textResult(codec.RenderElementList(elements)), nil
}

func (r *Registry) takeScreenshot(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	png, err := driver.TakeScreenshot(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return []definitions.ContentBlock{definitions.ImageBlock(png)}, nil
}

func (r *Registry) saveScreenshot(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	png, err := driver.TakeScreenshot(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	outputPath := utils.AnyToString(args["output_path"])
	if err := os.WriteFile(outputPath, png, 0o644); err != nil {
		return nil, definitions.IOf("failed to write screenshot to %q: %v", outputPath, err)
	}
	return textResult(fmt.Sprintf("Screenshot saved to: %s", outputPath)), nil
}

func (r *Registry) click(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	x := utils.AnyToIntDefault(args["x"], 0)
	y := utils.AnyToIntDefault(args["y"], 0)
	if err := driver.Tap(ctx, deviceID, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Clicked at (%d, %d)", x, y)), nil
}

func (r *Registry) doubleTap(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	x := utils.AnyToIntDefault(args["x"], 0)
	y := utils.AnyToIntDefault(args["y"], 0)
	if err := driver.DoubleTap(ctx, deviceID, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Double tapped at (%d, %d)", x, y)), nil
}

func (r *Registry) longPress(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	x := utils.AnyToIntDefault(args["x"], 0)
	y := utils.AnyToIntDefault(args["y"], 0)
	duration := utils.AnyToIntDefault(args["duration"], 1000)

	note, err := driver.LongPress(ctx, deviceID, x, y, duration)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Long pressed at (%d, %d) for %dms", x, y, duration)
	if note != "" {
		text += " (" + note + ")"
	}
	return textResult(text), nil
}

func (r *Registry) swipe(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	startX := utils.AnyToIntDefault(args["start_x"], 0)
	startY := utils.AnyToIntDefault(args["start_y"], 0)
	endX := utils.AnyToIntDefault(args["end_x"], 0)
	endY := utils.AnyToIntDefault(args["end_y"], 0)
	duration := utils.AnyToIntDefault(args["duration"], 300)

	if err := driver.Swipe(ctx, deviceID, startX, startY, endX, endY, duration); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Swiped from (%d, %d) to (%d, %d)", startX, startY, endX, endY)), nil
}

func (r *Registry) typeKeys(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	text := utils.AnyToString(args["text"])
	if err := driver.TypeText(ctx, deviceID, text); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Typed text: %s", text)), nil
}

func (r *Registry) pressButton(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	button := utils.AnyToString(args["button"])
	if err := driver.PressButton(ctx, deviceID, button); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Pressed button '%s'", button)), nil
}

func (r *Registry) launchApp(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	appID := utils.AnyToString(args["app_id"])
	if err := driver.LaunchApp(ctx, deviceID, appID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Launched app '%s'", appID)), nil
}

func (r *Registry) terminateApp(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	appID := utils.AnyToString(args["app_id"])
	if err := driver.TerminateApp(ctx, deviceID, appID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Terminated app '%s'", appID)), nil
}

func (r *Registry) installApp(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	appPath := utils.AnyToString(args["app_path"])
	if err := driver.InstallApp(ctx, deviceID, appPath); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Installed app from '%s'", appPath)), nil
}

func (r *Registry) uninstallApp(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	appID := utils.AnyToString(args["app_id"])
	if err := driver.UninstallApp(ctx, deviceID, appID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Uninstalled app '%s'", appID)), nil
}

func (r *Registry) openURL(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	url := utils.AnyToString(args["url"])
	if err := driver.OpenURL(ctx, deviceID, url); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Opened URL '%s'", url)), nil
}

func (r *Registry) setOrientation(ctx context.Context, args map[string]any) ([]definitions.ContentBlock, error) {
	driver, deviceID, err := r.resolve(ctx, args)
	if err != nil {
		return nil, err
	}
	orientation, err := definitions.ParseOrientation(utils.AnyToString(args["orientation"]))
	if err != nil {
		return nil, err
	}
	if err := driver.SetOrientation(ctx, deviceID, orientation); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Set orientation to '%s'", orientation)), nil
}
