package capture

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
)

// IWScanner satisfies ports.Scanner by shelling out to `iw dev <iface> scan`
// and parsing its BSS-block text output, grounded on the same
// exec.Command/CombinedOutput shelling pattern as radio.go's monitor-mode
// control (the teacher's own `iw`-shelling driver code).
type IWScanner struct {
	iface string
}

// NewIWScanner binds a scanner to the given network interface name.
func NewIWScanner(iface string) *IWScanner {
	return &IWScanner{iface: iface}
}

// ScanNetworks runs a single active scan and parses the result (§4.5). The
// scan blocks for the duration of the `iw` invocation; ctx cancellation
// aborts the subprocess.
func (s *IWScanner) ScanNetworks(ctx context.Context) ([]domain.ScanResult, error) {
	cmd := exec.CommandContext(ctx, "iw", "dev", s.iface, "scan")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, err
	}
	return parseScanOutput(out), nil
}

var _ ports.Scanner = (*IWScanner)(nil)

// parseScanOutput walks `iw scan` output one BSS block at a time. Each block
// starts with a "BSS <mac>(...)" line; "signal:", "SSID:" and "capability:"
// lines within a block fill in that block's ScanResult. A block with no SSID
// line (hidden network) or an unparsable BSSID is skipped.
func parseScanOutput(out []byte) []domain.ScanResult {
	var results []domain.ScanResult
	var cur *domain.ScanResult

	flush := func() {
		if cur != nil && cur.SSID != "" {
			results = append(results, *cur)
		}
		cur = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "BSS ") {
			flush()
			field := strings.TrimPrefix(line, "BSS ")
			if idx := strings.IndexAny(field, "( \t"); idx >= 0 {
				field = field[:idx]
			}
			mac, err := domain.ParseMAC(field)
			if err != nil {
				continue
			}
			cur = &domain.ScanResult{BSSID: mac, IsOpen: true}
			continue
		}
		if cur == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SSID: "):
			cur.SSID = strings.TrimPrefix(line, "SSID: ")
		case strings.HasPrefix(line, "signal: "):
			cur.RSSI = parseSignal(strings.TrimPrefix(line, "signal: "))
		case strings.HasPrefix(line, "capability: "):
			if strings.Contains(line, "Privacy") {
				cur.IsOpen = false
			}
		}
	}
	flush()
	return results
}

// parseSignal converts a "-45.00 dBm" measurement into an integer dBm value.
// A malformed measurement yields 0 rather than failing the whole scan.
func parseSignal(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), " dBm")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
