package netutil

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

func TestExpandCIDR(t *testing.T) {
	tests := []struct {
		cidr      string
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{"192.168.1.0/24", 254, "192.168.1.1", "192.168.1.254"},
		{"10.0.0.0/30", 2, "10.0.0.1", "10.0.0.2"},
		{"10.0.0.4/31", 2, "10.0.0.4", "10.0.0.5"},
		{"10.0.0.7/32", 1, "10.0.0.7", "10.0.0.7"},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			hosts, err := ExpandCIDR(tt.cidr)
			if err != nil {
				t.Fatalf("ExpandCIDR(%q) error = %v", tt.cidr, err)
			}
			if len(hosts) != tt.wantCount {
				t.Fatalf("len = %d, want %d", len(hosts), tt.wantCount)
			}
			if hosts[0] != tt.wantFirst {
				t.Errorf("first = %s, want %s", hosts[0], tt.wantFirst)
			}
			if hosts[len(hosts)-1] != tt.wantLast {
				t.Errorf("last = %s, want %s", hosts[len(hosts)-1], tt.wantLast)
			}
		})
	}
}

func TestExpandCIDRInvalid(t *testing.T) {
	for _, cidr := range []string{"not-a-cidr", "192.168.1.0", "2001:db8::/64"} {
		if _, err := ExpandCIDR(cidr); err == nil {
			t.Errorf("ExpandCIDR(%q) should fail", cidr)
		}
	}
}

func TestProberFindsListeningHost(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)

	p := NewProber(WithProbeTimeout(time.Second))
	if !p.Open(context.Background(), "127.0.0.1", addr.Port) {
		t.Error("Open() = false for a listening port")
	}

	open := p.OpenHosts(context.Background(), []string{"127.0.0.1"}, addr.Port)
	if len(open) != 1 || open[0] != "127.0.0.1" {
		t.Errorf("OpenHosts() = %v, want [127.0.0.1]", open)
	}
}

func TestProberClosedPort(t *testing.T) {
	// Grab a port then release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	p := NewProber(WithProbeTimeout(500 * time.Millisecond))
	if p.Open(context.Background(), "127.0.0.1", port) {
		t.Error("Open() = true for a closed port")
	}
}

func TestOpenHostsOrdered(t *testing.T) {
	// Two listeners on loopback aliases resolve to the same port;
	// instead verify ordering logic directly on the comparator.
	addrs := []string{"192.168.1.10", "192.168.1.2", "192.168.1.100"}
	want := "192.168.1.2,192.168.1.10,192.168.1.100"

	for i := 0; i < len(addrs); i++ {
		for j := 0; j < len(addrs); j++ {
			less := ipLess(addrs[i], addrs[j])
			if i == j && less {
				t.Errorf("ipLess(%s, %s) = true", addrs[i], addrs[j])
			}
		}
	}

	sorted := append([]string(nil), addrs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && ipLess(sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if got := strings.Join(sorted, ","); got != want {
		t.Errorf("sorted = %s, want %s", got, want)
	}
}
