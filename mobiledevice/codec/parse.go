package codec

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

// ValidatePNG checks that a captured byte stream begins with the PNG
// magic header. Anything else is treated as a corrupted capture.
func ValidatePNG(data []byte) error {
	if len(data) < 8 || !bytes.HasPrefix(data, pngMagic) {
		return definitions.Subprocessf("invalid PNG data received from screen capture (%d bytes)", len(data))
	}
	return nil
}

// ParseDisplaySize parses the display-size query output. The format is
// tolerant: "Physical size: 1080x2400" or a bare "1080x2400".
func ParseDisplaySize(output string) (definitions.ScreenSize, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return definitions.ScreenSize{}, definitions.Subprocessf("empty display size output")
	}

	dims := strings.SplitN(fields[len(fields)-1], "x", 2)
	if len(dims) != 2 {
		return definitions.ScreenSize{}, definitions.Subprocessf("invalid display size output: %q", strings.TrimSpace(output))
	}

	width, err := strconv.Atoi(dims[0])
	if err != nil {
		return definitions.ScreenSize{}, definitions.Subprocessf("invalid display width: %q", dims[0])
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil {
		return definitions.ScreenSize{}, definitions.Subprocessf("invalid display height: %q", dims[1])
	}

	return definitions.ScreenSize{Width: width, Height: height, Scale: 1.0}, nil
}

// ParseDisplayCount counts displays in "dumpsys SurfaceFlinger
// --display-id" output, one "Display ..." line per display.
func ParseDisplayCount(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Display ") {
			count++
		}
	}
	return count
}

// ParseActiveDisplayID extracts the powered-on display's unique id from
// "cmd display get-displays" output (Android 11+). The "local:" prefix
// is stripped because screencap -d wants the bare id.
func ParseActiveDisplayID(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Display id ") || !strings.Contains(line, ", state ON,") {
			continue
		}
		_, rest, ok := strings.Cut(line, `uniqueId "`)
		if !ok {
			continue
		}
		id, _, ok := strings.Cut(rest, `"`)
		if !ok {
			continue
		}
		return strings.TrimPrefix(id, "local:"), true
	}
	return "", false
}

// ParseActiveDisplayIDLegacy extracts the active internal display from
// "dumpsys display" viewport listings on devices predating the display
// service command.
func ParseActiveDisplayIDLegacy(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "DisplayViewport{type=INTERNAL") || !strings.Contains(line, "isActive=true") {
			continue
		}
		_, rest, ok := strings.Cut(line, "uniqueId='")
		if !ok {
			continue
		}
		id, _, ok := strings.Cut(rest, "'")
		if !ok {
			continue
		}
		return strings.TrimPrefix(id, "local:"), true
	}
	return "", false
}

// ParseBounds parses a UI-hierarchy bounds attribute of the form
// "[x1,y1][x2,y2]" into x/y/width/height form.
func ParseBounds(s string) (definitions.ElementBounds, bool) {
	parts := strings.Split(s, "][")
	if len(parts) != 2 {
		return definitions.ElementBounds{}, false
	}

	start := strings.Split(strings.TrimPrefix(parts[0], "["), ",")
	end := strings.Split(strings.TrimSuffix(parts[1], "]"), ",")
	if len(start) != 2 || len(end) != 2 {
		return definitions.ElementBounds{}, false
	}

	x1, err1 := strconv.Atoi(start[0])
	y1, err2 := strconv.Atoi(start[1])
	x2, err3 := strconv.Atoi(end[0])
	y2, err4 := strconv.Atoi(end[1])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return definitions.ElementBounds{}, false
	}

	return definitions.ElementBounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// ParseUIHierarchy walks a UI-hierarchy XML dump and extracts one
// ScreenElement per visible "node" element. When filter is non-empty,
// only nodes whose text, content description, resource id or class
// contain it (case-insensitive) are retained; filtering happens after
// each node is fully parsed because the match fields are unordered
// within the attribute set.
//
// A malformed or truncated dump either fails the whole call (strict)
// or keeps the elements parsed before the decode error (lenient).
func ParseUIHierarchy(dump []byte, filter string, strict bool) ([]definitions.ScreenElement, error) {
	decoder := xml.NewDecoder(bytes.NewReader(dump))
	filter = strings.ToLower(filter)

	var elements []definitions.ScreenElement
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if strict {
				return nil, definitions.Subprocessf("malformed UI hierarchy dump: %v", err)
			}
			break
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "node" {
			continue
		}

		attrs := make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}

		el := definitions.ScreenElement{
			Class:      attrs["class"],
			Text:       attrs["text"],
			ResourceID: attrs["resource-id"],
			Clickable:  attrs["clickable"] == "true",
			Focused:    attrs["focused"] == "true",
		}

		bounds, ok := ParseBounds(attrs["bounds"])
		if !ok {
			continue
		}
		el.Bounds = bounds

		contentDesc := attrs["content-desc"]
		switch {
		case el.Text != "":
			el.Label = el.Text
		case contentDesc != "":
			el.Label = contentDesc
		case el.ResourceID != "":
			el.Label = el.ResourceID
		case el.Class != "":
			el.Label = el.Class
		default:
			el.Label = "Unknown"
		}

		if filter != "" &&
			!strings.Contains(strings.ToLower(el.Text), filter) &&
			!strings.Contains(strings.ToLower(contentDesc), filter) &&
			!strings.Contains(strings.ToLower(el.ResourceID), filter) &&
			!strings.Contains(strings.ToLower(el.Class), filter) {
			continue
		}

		// Zero-sized nodes are invisible and useless as tap targets.
		if el.Bounds.Width > 0 && el.Bounds.Height > 0 {
			elements = append(elements, el)
		}
	}

	return elements, nil
}

// ParseADBDevices parses the debug bridge's "devices -l" table. The
// first line is a header and is skipped.
func ParseADBDevices(output string) []definitions.DeviceInfo {
	var devices []definitions.DeviceInfo

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Scan() // header

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		id := parts[0]
		state := parts[1]
		if state == "device" {
			state = "connected"
		}

		kind := definitions.Physical
		if strings.HasPrefix(id, "emulator-") {
			kind = definitions.Emulator
		}

		name := id
		for _, part := range parts[2:] {
			if strings.HasPrefix(part, "model:") {
				name = strings.SplitN(part, ":", 2)[1]
				break
			}
		}

		devices = append(devices, definitions.DeviceInfo{
			ID:       id,
			Name:     name,
			Platform: definitions.Android,
			Kind:     kind,
			State:    state,
		})
	}

	return devices
}

// ParseLauncherPackages extracts distinct package names from the
// launcher-activity query output (lines of the form "packageName=...").
func ParseLauncherPackages(output string) []definitions.InstalledApp {
	var apps []definitions.InstalledApp
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		pkg, ok := strings.CutPrefix(strings.TrimSpace(line), "packageName=")
		if !ok || pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		apps = append(apps, definitions.InstalledApp{PackageName: pkg, AppName: pkg})
	}

	return apps
}

type simulatorList struct {
	Devices map[string][]struct {
		UDID  string `json:"udid"`
		Name  string `json:"name"`
		State string `json:"state"`
	} `json:"devices"`
}

// ParseSimulatorList decodes the simulator-control tool's JSON device
// list. The runtime identifier suffix (e.g. "...SimRuntime.iOS-17-2")
// is folded into the display name. Runtimes are walked in sorted order
// so two identical queries render identically.
func ParseSimulatorList(data []byte) ([]definitions.DeviceInfo, error) {
	var list simulatorList
	if err := sonic.Unmarshal(data, &list); err != nil {
		return nil, definitions.Subprocessf("invalid simulator list JSON: %v", err)
	}

	runtimes := make([]string, 0, len(list.Devices))
	for runtime := range list.Devices {
		runtimes = append(runtimes, runtime)
	}
	sort.Strings(runtimes)

	var devices []definitions.DeviceInfo
	for _, runtime := range runtimes {
		version := runtimeVersion(runtime)
		for _, d := range list.Devices[runtime] {
			if d.UDID == "" || d.Name == "" {
				continue
			}
			name := d.Name
			if version != "" {
				name += " (iOS " + version + ")"
			}
			devices = append(devices, definitions.DeviceInfo{
				ID:       d.UDID,
				Name:     name,
				Platform: definitions.IOS,
				Kind:     definitions.Simulator,
				State:    strings.ToLower(d.State),
			})
		}
	}

	return devices, nil
}

// runtimeVersion turns "com.apple.CoreSimulator.SimRuntime.iOS-17-2"
// into "17.2". Non-iOS runtimes yield an empty string.
func runtimeVersion(runtime string) string {
	last := runtime
	if i := strings.LastIndex(runtime, "."); i >= 0 {
		last = runtime[i+1:]
	}
	if !strings.HasPrefix(last, "iOS-") {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(last, "iOS-"), "-", ".")
}

// ParseSimulatorApps decodes the simulator-control tool's installed-app
// listing, mapping bundle identifiers to display names.
func ParseSimulatorApps(data []byte) ([]definitions.InstalledApp, error) {
	var raw map[string]struct {
		CFBundleDisplayName string `json:"CFBundleDisplayName"`
		CFBundleName        string `json:"CFBundleName"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, definitions.Subprocessf("invalid app list output: %v", err)
	}

	bundles := make([]string, 0, len(raw))
	for bundle := range raw {
		bundles = append(bundles, bundle)
	}
	sort.Strings(bundles)

	apps := make([]definitions.InstalledApp, 0, len(raw))
	for _, bundle := range bundles {
		info := raw[bundle]
		name := info.CFBundleDisplayName
		if name == "" {
			name = info.CFBundleName
		}
		if name == "" {
			name = bundle
		}
		apps = append(apps, definitions.InstalledApp{PackageName: bundle, AppName: name})
	}

	return apps, nil
}
