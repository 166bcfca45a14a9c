// Package bundle loads the firmware/web-interface pair that gets flashed to
// every device in a run and extracts the firmware version from the image.
package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ESP-IDF application images embed an esp_app_desc_t directly after the
// image and segment headers. The descriptor starts at a fixed offset and
// carries the firmware version as a NUL-terminated string.
const (
	appDescMagic  = 0xABCD5432
	appDescOffset = 0x20
	// version field offset within esp_app_desc_t: after magic_word (4),
	// secure_version (4) and reserv1 (8).
	versionOffset = 16
	versionLen    = 32
)

// ErrNoVersion indicates no firmware version could be extracted from an
// image.
var ErrNoVersion = errors.New("no version string found in firmware image")

// versionPattern matches dotted-numeric versions with an optional "v"
// prefix, used as a fallback when the app descriptor is absent.
var versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?`)

// Bundle is the pair of binaries uploaded to each device, plus the version
// parsed from the firmware image at load time. It is read-only and shared
// by reference across all device updates in a run.
type Bundle struct {
	Firmware []byte
	WWW      []byte

	// Version is the firmware version carried by Firmware, e.g. "v2.9.0".
	Version string
}

// Load reads both images from disk and extracts the firmware version.
// Either file being missing or empty is an error; a firmware image without
// an extractable version is not, since the updater can still force-flash it.
func Load(firmwarePath, wwwPath string) (*Bundle, error) {
	fw, err := readImage(firmwarePath)
	if err != nil {
		return nil, fmt.Errorf("firmware image: %w", err)
	}

	www, err := readImage(wwwPath)
	if err != nil {
		return nil, fmt.Errorf("web interface image: %w", err)
	}

	version, err := ExtractVersion(fw)
	if err != nil && !errors.Is(err, ErrNoVersion) {
		return nil, err
	}

	return &Bundle{Firmware: fw, WWW: www, Version: version}, nil
}

// ExtractVersion pulls the firmware version out of an ESP-Miner image.
// It reads the ESP-IDF app descriptor when present and falls back to
// scanning the image for a dotted-numeric version string.
func ExtractVersion(image []byte) (string, error) {
	if v := appDescVersion(image); v != "" {
		return v, nil
	}

	// Fallback: the version string also appears in plain text in the
	// image's string table on builds without a standard descriptor.
	if m := versionPattern.Find(image); m != nil {
		return string(m), nil
	}

	return "", ErrNoVersion
}

// appDescVersion reads the version field of the esp_app_desc_t, returning
// "" if the descriptor magic is not where it should be.
func appDescVersion(image []byte) string {
	if len(image) < appDescOffset+versionOffset+versionLen {
		return ""
	}

	if binary.LittleEndian.Uint32(image[appDescOffset:]) != appDescMagic {
		return ""
	}

	raw := image[appDescOffset+versionOffset : appDescOffset+versionOffset+versionLen]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}

	v := string(raw)
	if !versionPattern.MatchString(v) {
		return ""
	}
	return v
}

// readImage reads a binary image, rejecting missing or empty files before
// any device is touched.
func readImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return data, nil
}
