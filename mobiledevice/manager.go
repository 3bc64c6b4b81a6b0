package mobiledevice

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// Manager routes tool calls to the right platform driver. It owns
// cross-platform discovery and the "auto" selector resolution; the
// drivers stay single-platform.
type Manager struct {
	android Driver
	ios     Driver
}

func NewManager(android, ios Driver) *Manager {
	return &Manager{android: android, ios: ios}
}

func (m *Manager) drivers(platform definitions.Platform) []Driver {
	switch platform {
	case definitions.Android:
		return []Driver{m.android}
	case definitions.IOS:
		return []Driver{m.ios}
	default:
		return []Driver{m.android, m.ios}
	}
}

// ListDevices discovers devices on the selected platform. With "auto"
// both platforms are queried and a failing driver is degraded to a
// warning so one missing toolchain never hides the other's devices.
// With an explicit platform a driver failure is a hard error.
func (m *Manager) ListDevices(ctx context.Context, platform definitions.Platform) ([]definitions.DeviceInfo, []string, error) {
	drivers := m.drivers(platform)

	var devices []definitions.DeviceInfo
	var warnings []string
	for _, drv := range drivers {
		found, err := drv.ListDevices(ctx)
		if err != nil {
			if len(drivers) == 1 {
				return nil, nil, err
			}
			log.Warn().Err(err).Str("platform", string(drv.Platform())).Msg("device discovery failed")
			warnings = append(warnings, fmt.Sprintf("%s discovery failed: %v", drv.Platform(), err))
			continue
		}
		devices = append(devices, found...)
	}

	return devices, warnings, nil
}

// Resolve picks the driver for a device. An explicit platform routes
// directly; "auto" searches Android first, then iOS, and rejects ids
// that exist on both platforms instead of guessing.
func (m *Manager) Resolve(ctx context.Context, platform definitions.Platform, deviceID string) (Driver, error) {
	switch platform {
	case definitions.Android:
		return m.android, nil
	case definitions.IOS:
		return m.ios, nil
	}

	onAndroid := m.hasDevice(ctx, m.android, deviceID)
	onIOS := m.hasDevice(ctx, m.ios, deviceID)

	switch {
	case onAndroid && onIOS:
		return nil, definitions.Devicef("device id %q exists on both platforms, pass an explicit platform", deviceID)
	case onAndroid:
		return m.android, nil
	case onIOS:
		return m.ios, nil
	default:
		return nil, definitions.Devicef("no device %q found on any platform", deviceID)
	}
}

func (m *Manager) hasDevice(ctx context.Context, drv Driver, deviceID string) bool {
	devices, err := drv.ListDevices(ctx)
	if err != nil {
		return false
	}
	for _, d := range devices {
		if d.ID == deviceID {
			return true
		}
	}
	return false
}
