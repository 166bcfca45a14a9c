// Package netutil holds the small networking pieces subnet discovery needs:
// CIDR expansion and concurrent TCP probing.
package netutil

import (
	"fmt"
	"net"
)

// ExpandCIDR returns every usable host address in an IPv4 CIDR block, in
// ascending order. The network and broadcast addresses are excluded, so
// "192.168.1.0/24" yields 254 addresses. Blocks of /31 and /32 are returned
// as-is since they have no network/broadcast pair.
func ExpandCIDR(cidr string) ([]string, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("invalid CIDR %q: only IPv4 is supported", cidr)
	}

	var hosts []string
	for addr := ip.Mask(ipnet.Mask); ipnet.Contains(addr); incIP(addr) {
		hosts = append(hosts, addr.String())
	}

	if len(hosts) > 2 {
		hosts = hosts[1 : len(hosts)-1]
	}
	return hosts, nil
}

// incIP increments an IP address in place, carrying across octets.
func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] > 0 {
			break
		}
	}
}
