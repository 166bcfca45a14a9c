// Package devicelist reads and writes the fleet device list. The read
// format is deliberately forgiving, since these files are maintained by
// hand: one device per line, blank lines and # comments ignored, an
// optional label after a comma.
package devicelist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/updtrr/updtrr/internal/discovery"
	"github.com/updtrr/updtrr/internal/fleet"
)

// Parse reads targets from a device list. Duplicate addresses are an
// error: running two update plans against the same device in one run can
// interrupt its own flash cycle.
func Parse(r io.Reader) ([]fleet.Target, error) {
	var targets []fleet.Target
	seen := make(map[string]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Trailing comments after the address are allowed too.
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		// First column is the address, second the label; any further
		// columns (scan metadata) are ignored.
		fields := strings.Split(line, ",")
		addr := strings.TrimSpace(fields[0])
		label := ""
		if len(fields) > 1 {
			label = strings.TrimSpace(fields[1])
		}

		if addr == "" {
			return nil, fmt.Errorf("line %d: missing device address", lineNo)
		}
		if prev, dup := seen[addr]; dup {
			return nil, fmt.Errorf("line %d: duplicate device %s (first on line %d)", lineNo, addr, prev)
		}
		seen[addr] = lineNo

		targets = append(targets, fleet.Target{Address: addr, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

// ParseFile reads targets from a device list file.
func ParseFile(path string) ([]fleet.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	targets, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return targets, nil
}

// WriteCSV writes discovered devices as CSV with a commented header row.
// The output round-trips through Parse, so a scan result can be fed
// straight back in as a device list.
func WriteCSV(w io.Writer, devices []discovery.Device) error {
	if _, err := fmt.Fprintln(w, "# address,hostname,firmware,board,asic,mac"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, d := range devices {
		record := []string{d.Address, d.Hostname, d.FirmwareVersion, d.BoardVersion, d.ASICModel, d.MAC}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
