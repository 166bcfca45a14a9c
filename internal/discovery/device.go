package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/updtrr/updtrr/internal/axeos"
	"github.com/updtrr/updtrr/internal/fleet"
)

// Device is an AxeOS device found on the network, identified and enriched
// by its own system info response.
type Device struct {
	// Address is the host (or host:port for non-standard ports) usable
	// directly by the device client.
	Address string

	// Hostname is the device's configured hostname, e.g. "bitaxe".
	Hostname string

	// FirmwareVersion is the running ESP-Miner version at discovery time.
	FirmwareVersion string

	// BoardVersion and ASICModel identify the hardware.
	BoardVersion string
	ASICModel    string

	// MAC is the device MAC address, when reported.
	MAC string

	// DiscoveredAt is when the device answered.
	DiscoveredAt time.Time
}

// String returns a one-line description for scan output.
func (d Device) String() string {
	return fmt.Sprintf("%s  %s  %s  board %s  %s",
		d.Address, d.Hostname, d.FirmwareVersion, d.BoardVersion, d.ASICModel)
}

// Target converts the device into an update target, using the hostname as
// the display label.
func (d Device) Target() fleet.Target {
	return fleet.Target{Address: d.Address, Label: d.Hostname}
}

// Source finds devices. Implementations return however many devices they
// could identify before ctx ended; an empty result is not an error.
type Source interface {
	Find(ctx context.Context) ([]Device, error)
}

// InfoFetcher is the device API surface discovery needs to confirm a
// candidate host. *axeos.Client satisfies it.
type InfoFetcher interface {
	FetchInfo(ctx context.Context, addr string) (*axeos.SystemInfo, error)
}

// hostAddress formats a host and port as a client-usable address, leaving
// the default HTTP port implicit.
func hostAddress(host string, port int) string {
	if port == 0 || port == 80 {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// identify asks a candidate host for its system info and builds a Device
// from the answer. Hosts that do not respond like an AxeOS device are
// rejected with a nil Device.
func identify(ctx context.Context, client InfoFetcher, addr string) *Device {
	info, err := client.FetchInfo(ctx, addr)
	if err != nil {
		return nil
	}

	return &Device{
		Address:         addr,
		Hostname:        info.Hostname,
		FirmwareVersion: info.Version,
		BoardVersion:    info.BoardVersion,
		ASICModel:       info.ASICModel,
		MAC:             info.MACAddr,
		DiscoveredAt:    time.Now(),
	}
}
