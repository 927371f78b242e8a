package capture

import (
	"testing"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
)

// buildMgmtFrame constructs a 24-byte management header followed by the
// zeroed 12-byte fixed beacon body, plus an optional tagged-parameters tail
// starting at ssidIEOffset, for demux tests. addr2 is placed at the
// spec-mandated offset 10.
func buildMgmtFrame(subtype byte, addr2 domain.MacAddress, tail []byte) []byte {
	frame := make([]byte, ssidIEOffset)
	frame[0] = 0x00 | (subtype << 4) // type bits = 00 (management)
	copy(frame[10:16], addr2[:])
	return append(frame, tail...)
}

func TestParseFrameRejectsShortFrames(t *testing.T) {
	_, _, ok := ParseFrame(make([]byte, 23))
	if ok {
		t.Error("expected ParseFrame to reject a frame shorter than 24 bytes")
	}
}

func TestParseFrameRejectsNonManagementType(t *testing.T) {
	frame := make([]byte, minHeaderLen)
	frame[0] = 0x04 // type bits = 01 (control), not management
	_, _, ok := ParseFrame(frame)
	if ok {
		t.Error("expected ParseFrame to reject a non-management frame type")
	}
}

func TestParseFrameExtractsTransmitterAndKind(t *testing.T) {
	addr2 := domain.MacAddress{0xaa, 0xbb, 0xcc, 0x11, 0x22, 0x33}
	frame := buildMgmtFrame(domain.SubtypeBeacon, addr2, nil)

	mac, kind, ok := ParseFrame(frame)
	if !ok {
		t.Fatal("expected ParseFrame to accept a well-formed beacon frame")
	}
	if mac != addr2 {
		t.Errorf("transmitter = %v, want %v", mac, addr2)
	}
	if kind != domain.FrameBeacon {
		t.Errorf("kind = %v, want Beacon", kind)
	}
}

func TestParseFrameClassifiesDeauth(t *testing.T) {
	addr2 := domain.MacAddress{1, 2, 3, 4, 5, 6}
	frame := buildMgmtFrame(domain.SubtypeDeauth, addr2, nil)
	_, kind, ok := ParseFrame(frame)
	if !ok || kind != domain.FrameDeauth {
		t.Errorf("kind = %v ok=%v, want Deauth/true", kind, ok)
	}
}

func TestExtractSSIDFindsTag0(t *testing.T) {
	addr2 := domain.MacAddress{1, 2, 3, 4, 5, 6}
	ssid := "CoffeeShopWiFi"
	ie := append([]byte{0x00, byte(len(ssid))}, []byte(ssid)...)
	frame := buildMgmtFrame(domain.SubtypeBeacon, addr2, ie)

	got, ok := ExtractSSID(frame)
	if !ok {
		t.Fatal("expected SSID to be found")
	}
	if got != ssid {
		t.Errorf("SSID = %q, want %q", got, ssid)
	}
}

func TestExtractSSIDSkipsOtherTagsFirst(t *testing.T) {
	addr2 := domain.MacAddress{1, 2, 3, 4, 5, 6}
	// tag 3 (DS Parameter Set, 1 byte) followed by tag 0 (SSID).
	ie := []byte{0x03, 0x01, 0x06}
	ssid := "Home"
	ie = append(ie, 0x00, byte(len(ssid)))
	ie = append(ie, []byte(ssid)...)
	frame := buildMgmtFrame(domain.SubtypeBeacon, addr2, ie)

	got, ok := ExtractSSID(frame)
	if !ok || got != ssid {
		t.Errorf("SSID = %q ok=%v, want %q/true", got, ok, ssid)
	}
}

func TestExtractSSIDHiddenNetworkNotFound(t *testing.T) {
	addr2 := domain.MacAddress{1, 2, 3, 4, 5, 6}
	ie := []byte{0x00, 0x00} // zero-length SSID: hidden network
	frame := buildMgmtFrame(domain.SubtypeBeacon, addr2, ie)

	_, ok := ExtractSSID(frame)
	if ok {
		t.Error("expected hidden SSID to be reported as not found")
	}
}

func TestExtractSSIDTooShortForIEs(t *testing.T) {
	frame := make([]byte, minHeaderLen)
	_, ok := ExtractSSID(frame)
	if ok {
		t.Error("expected a frame with no tagged-parameters section to report not found")
	}
}

func TestHandleFramePopulatesTableAndSSID(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	demux := NewDemux(tbl)

	addr2 := domain.MacAddress{1, 2, 3, 4, 5, 6}
	ssid := "OfficeNet"
	ie := append([]byte{0x00, byte(len(ssid))}, []byte(ssid)...)
	frame := buildMgmtFrame(domain.SubtypeBeacon, addr2, ie)

	now := time.Now()
	demux.HandleFrame(frame, now)

	snap := tbl.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("table len = %d, want 1", len(snap))
	}
	d := snap[0]
	if d.BeaconCount != 1 {
		t.Errorf("beacon_count = %d, want 1", d.BeaconCount)
	}
	if _, ok := d.AdvertisedSSIDs[ssid]; !ok {
		t.Errorf("expected %q in advertised_ssids, got %v", ssid, d.AdvertisedSSIDs)
	}
}

func TestHandleFrameDropsMalformedFrame(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	demux := NewDemux(tbl)
	demux.HandleFrame([]byte{0x01, 0x02}, time.Now())
	if tbl.Len() != 0 {
		t.Error("expected malformed frame to be silently dropped")
	}
}
