package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/valyala/fasttemplate"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// NoDevicesText is the explicit empty state for device discovery. An
// empty list is a normal answer, never an error.
const NoDevicesText = "No devices found. Please ensure Android platform tools (adb) or iOS tools (xcrun) are installed."

const deviceLine = "- {name} ({id}) - {platform} {kind} [{state}]"

// Render expands a "{tag}" template with the given values. All tool
// confirmation texts go through here so their format lives in one place.
func Render(template string, vars map[string]any) string {
	t := fasttemplate.New(template, "{", "}")
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		return fmt.Fprint(w, vars[tag])
	})
}

// RenderDeviceList formats discovered devices one per line, appending
// any per-driver discovery warnings after the listing.
func RenderDeviceList(devices []definitions.DeviceInfo, warnings []string) string {
	if len(devices) == 0 && len(warnings) == 0 {
		return NoDevicesText
	}

	lines := lo.Map(devices, func(d definitions.DeviceInfo, _ int) string {
		return Render(deviceLine, map[string]any{
			"name":     d.Name,
			"id":       d.ID,
			"platform": d.Platform,
			"kind":     d.Kind,
			"state":    d.State,
		})
	})
	for _, w := range warnings {
		lines = append(lines, "Warning: "+w)
	}
	if len(devices) == 0 {
		lines = append([]string{NoDevicesText}, lines...)
	}

	return strings.Join(lines, "\n")
}

// RenderElementList formats UI elements with their tap coordinates.
func RenderElementList(elements []definitions.ScreenElement) string {
	if len(elements) == 0 {
		return "No elements found"
	}

	lines := lo.Map(elements, func(el definitions.ScreenElement, _ int) string {
		line := fmt.Sprintf("- %s %s [type: %s]", el.Label, el.Bounds, el.Class)
		if el.ResourceID != "" {
			line += fmt.Sprintf(" [id: %s]", el.ResourceID)
		}
		return line
	})

	return "Screen elements:\n" + strings.Join(lines, "\n")
}

// RenderAppList formats installed apps as "name (identifier)" lines.
func RenderAppList(apps []definitions.InstalledApp) string {
	if len(apps) == 0 {
		return "No apps found"
	}

	lines := lo.Map(apps, func(app definitions.InstalledApp, _ int) string {
		return fmt.Sprintf("- %s (%s)", app.AppName, app.PackageName)
	})

	return "Installed apps:\n" + strings.Join(lines, "\n")
}

// MapError is the single place a failure becomes the uniform error
// shape. Typed errors pass through untouched; anything else is assumed
// to come from a subprocess boundary.
func MapError(err error) *definitions.Error {
	var typed *definitions.Error
	if errors.As(err, &typed) {
		return typed
	}
	return &definitions.Error{Kind: definitions.SubprocessError, Message: err.Error()}
}
