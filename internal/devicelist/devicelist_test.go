package devicelist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/updtrr/updtrr/internal/discovery"
)

func TestParse(t *testing.T) {
	input := `
# garage rack
192.168.1.37, bitaxe-garage
192.168.1.38

10.0.0.5:8080, behind-proxy   # non-standard port
`

	targets, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(targets) != 3 {
		t.Fatalf("Parse() = %d targets, want 3", len(targets))
	}

	if targets[0].Address != "192.168.1.37" || targets[0].Label != "bitaxe-garage" {
		t.Errorf("targets[0] = %+v", targets[0])
	}
	if targets[1].Address != "192.168.1.38" || targets[1].Label != "" {
		t.Errorf("targets[1] = %+v", targets[1])
	}
	if targets[2].Address != "10.0.0.5:8080" || targets[2].Label != "behind-proxy" {
		t.Errorf("targets[2] = %+v", targets[2])
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	input := "192.168.1.37\n192.168.1.38\n192.168.1.37\n"

	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Parse() should reject duplicate addresses")
	}
	if !strings.Contains(err.Error(), "192.168.1.37") {
		t.Errorf("error %q should name the duplicate address", err)
	}
}

func TestParseEmpty(t *testing.T) {
	targets, err := Parse(strings.NewReader("# nothing but comments\n\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("Parse() = %v, want no targets", targets)
	}
}

func TestWriteCSVRoundTrips(t *testing.T) {
	devices := []discovery.Device{
		{Address: "192.168.1.37", Hostname: "bitaxe", FirmwareVersion: "v2.9.0", BoardVersion: "204", ASICModel: "BM1366", MAC: "A0:B1:C2:D3:E4:F5"},
		{Address: "192.168.1.38", Hostname: "bitaxe-2", FirmwareVersion: "v2.8.0"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, devices); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	targets, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse() of scan output error = %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("round trip produced %d targets, want 2", len(targets))
	}
	if targets[0].Address != "192.168.1.37" || targets[0].Label != "bitaxe" {
		t.Errorf("targets[0] = %+v", targets[0])
	}
	if targets[1].Address != "192.168.1.38" || targets[1].Label != "bitaxe-2" {
		t.Errorf("targets[1] = %+v", targets[1])
	}
}
