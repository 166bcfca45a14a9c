package axeos

// SystemInfo is the subset of the AxeOS system info response the updater
// cares about. The device returns many more fields (hashrate, temperatures,
// pool settings); they are ignored rather than modeled.
//
// Missing optional fields are normalized to "unknown" by FetchInfo so a
// sparse response never aborts a version check.
type SystemInfo struct {
	// Version is the running ESP-Miner firmware version, e.g. "v2.9.0".
	Version string `json:"version"`

	// AxeOSVersion is the web interface version, when reported separately.
	AxeOSVersion string `json:"axeOSVersion"`

	// Hostname is the device's configured hostname, e.g. "bitaxe".
	Hostname string `json:"hostname"`

	// BoardVersion identifies the hardware revision, e.g. "204".
	BoardVersion string `json:"boardVersion"`

	// ASICModel is the mining chip, e.g. "BM1366".
	ASICModel string `json:"ASICModel"`

	// MACAddr is the device MAC address.
	MACAddr string `json:"macAddr"`
}

// AssetKind selects which OTA endpoint an upload goes to.
type AssetKind int

const (
	// AssetWWW is the web interface image, flashed to the www partition.
	AssetWWW AssetKind = iota

	// AssetFirmware is the ESP-Miner application image. The device reboots
	// on its own after acknowledging this upload.
	AssetFirmware
)

// String returns the short name used in log and report output.
func (k AssetKind) String() string {
	switch k {
	case AssetWWW:
		return "www"
	case AssetFirmware:
		return "firmware"
	default:
		return "unknown"
	}
}

// endpoint returns the OTA upload path for the asset kind.
func (k AssetKind) endpoint() string {
	if k == AssetWWW {
		return "/api/system/OTAWWW"
	}
	return "/api/system/OTA"
}
