// internal/ua/ua.go
//
// User-Agent classification for request logs.
//
// This wrapper isolates `github.com/avct/uasurfer` so the rest of the code
// never sees its enums.  Request logs carry the coarse family only (browser,
// OS, device class, bot flag); the raw header is never logged because it
// is high-cardinality and occasionally carries candidate e-mail addresses
// from badly written ATS integrations.
package ua

import (
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"

	"github.com/talentflux/talentflux-api/internal/cache"
)

// seen memoises classifications; browsers send a small set of distinct
// headers, so 1024 entries covers almost all traffic.
var seen = cache.NewLRU[string, Info](1024)

// Info is the coarse classification of one User-Agent header.
type Info struct {
	Browser string // "Chrome", "Firefox", "Unknown"
	Version string // major version only, "125"
	OS      string // "MacOSX", "Windows", "Linux"
	Device  string // "Desktop", "Mobile", "Tablet", "Bot", "Other"
	IsBot   bool
}

// Parse classifies raw.  An empty header yields Device "Other".
func Parse(raw string) Info {
	if strings.TrimSpace(raw) == "" {
		return Info{Browser: "Unknown", OS: "Unknown", Device: "Other"}
	}

	if info, ok := seen.Get(raw); ok {
		return info
	}

	u := surfer.Parse(raw)

	info := Info{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}
	if u.Browser.Version.Major > 0 {
		info.Version = strconv.Itoa(int(u.Browser.Version.Major))
	}

	switch {
	case info.IsBot:
		info.Device = "Bot"
	case u.DeviceType == surfer.DeviceComputer:
		info.Device = "Desktop"
	case u.DeviceType == surfer.DeviceTablet:
		info.Device = "Tablet"
	case u.DeviceType == surfer.DevicePhone, u.DeviceType == surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	seen.Add(raw, info)
	return info
}
