// Package capture implements the Radio Interface and Frame Demultiplexer
// (§4.1, §4.2): a live `gopacket/pcap` capture handle driving a pure
// byte-mask frame classifier, plus a deterministic FakeRadio for tests.
package capture

import (
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
	"github.com/oxide-sec/wisentry/internal/telemetry"
)

// minHeaderLen is the fixed 802.11 management header length (§4.2 step 1).
const minHeaderLen = 24

// ssidIEOffset is the fixed offset of the first information element on a
// beacon or probe-response frame (tagged parameters begin after the fixed
// 12-byte beacon body that follows the 24-byte header): 24 + 12 = 36.
// SPEC_FULL.md §4.2 (expansion) — SSID extraction open question, resolved
// as "implemented".
const ssidIEOffset = 36

// Demux turns raw captured frames into Device Table mutations. It holds no
// state itself beyond the table it writes to; one Demux per Table.
type Demux struct {
	table *devicetable.Table
}

// NewDemux builds a demultiplexer writing into table.
func NewDemux(table *devicetable.Table) *Demux {
	return &Demux{table: table}
}

// HandleFrame implements ports.FrameConsumer. It runs the full §4.2
// pipeline: length guard, frame-control decode, type filter, transmitter
// extraction, subtype classification, and device-table delivery. It never
// blocks; its only allocations are the SSID string copied out of a beacon or
// probe response and its insertion into the device's bounded SSID set, so it
// is safe to invoke directly from the capture callback context.
func (d *Demux) HandleFrame(raw []byte, now time.Time) {
	telemetry.FramesCaptured.Inc()

	mac, kind, ok := ParseFrame(raw)
	if !ok {
		telemetry.FramesDropped.WithLabelValues("malformed").Inc()
		return
	}
	if !d.table.Observe(mac, kind, now) {
		telemetry.FramesDropped.WithLabelValues("table_full").Inc()
		return
	}

	if kind == domain.FrameBeacon || kind == domain.FrameProbeResponse {
		if ssid, found := ExtractSSID(raw); found {
			d.table.AddSSID(mac, ssid)
		}
	}
}

// ParseFrame implements §4.2 steps 1-5 as a pure function: it discards
// anything shorter than the fixed management header, rejects non-management
// frame types, and returns the transmitter MAC and classified FrameKind.
// ok is false whenever the frame should be silently dropped (MalformedFrame
// or a non-management type), matching §7's error policy.
func ParseFrame(raw []byte) (domain.MacAddress, domain.FrameKind, bool) {
	if len(raw) < minHeaderLen {
		return domain.MacAddress{}, domain.FrameOther, false
	}

	fc0 := raw[0]
	frameType := fc0 & 0x0C
	if frameType != 0x00 {
		// 0b00: management frames only; §4.2 step 3.
		return domain.MacAddress{}, domain.FrameOther, false
	}
	subtype := (fc0 & 0xF0) >> 4

	mac := domain.MACFromBytes(raw[10:16]) // addr2, §4.2 step 4
	kind := domain.ClassifySubtype(subtype)
	return mac, kind, true
}

// ExtractSSID walks the information elements starting at ssidIEOffset
// looking for tag 0 (SSID), per SPEC_FULL.md §4.2's "implemented" resolution
// of the SSID-extraction open question. found is false when the frame is
// too short to carry a tagged-parameters section or no SSID tag is present.
// A hidden SSID (zero-length or a single null byte) is reported as not
// found, matching the device table's "insert if one has been decoded" rule
// (§4.3) — a hidden network never contributes to |advertised_ssids|.
func ExtractSSID(raw []byte) (string, bool) {
	if len(raw) <= ssidIEOffset+1 {
		return "", false
	}
	offset := ssidIEOffset
	limit := len(raw)

	for offset+1 < limit {
		tag := raw[offset]
		length := int(raw[offset+1])
		offset += 2
		if offset+length > limit {
			return "", false
		}
		val := raw[offset : offset+length]
		if tag == 0 {
			if len(val) == 0 || val[0] == 0x00 {
				return "", false
			}
			return string(val), true
		}
		offset += length
	}
	return "", false
}
