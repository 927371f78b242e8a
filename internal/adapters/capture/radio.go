package capture

import (
	"fmt"
	"log"
	"os/exec"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/oxide-sec/wisentry/internal/core/ports"
)

// Radio drives a real 802.11 interface into monitor mode and delivers
// captured frames through a bounded channel into a single consumer
// goroutine, satisfying ports.RadioInterface. Grounded on the teacher's
// `adapters/sniffer/driver` monitor-mode helpers (same `ip`/`iw` subprocess
// sequence) and its pcap-backed live handle wiring.
type Radio struct {
	iface      string
	snaplen    int32
	bufferSize int

	mu      sync.Mutex
	handle  *pcap.Handle
	cancel  chan struct{}
	active  bool
}

// NewRadio builds a Radio bound to the given network interface name.
func NewRadio(iface string) *Radio {
	return &Radio{
		iface:      iface,
		snaplen:    2048,
		bufferSize: 256,
	}
}

// EnableCapture forces monitor mode on the bound interface, opens a
// promiscuous pcap live handle, and starts a single consumer goroutine that
// calls consumer for every captured frame (§4.1). Idempotent: a second call
// replaces the consumer without reopening the handle.
func (r *Radio) EnableCapture(consumer ports.FrameConsumer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		go r.pump(consumer, r.handle, r.cancel)
		return nil
	}

	if err := enableMonitorMode(r.iface); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrRadioUnavailable, err)
	}

	handle, err := pcap.OpenLive(r.iface, r.snaplen, true, pcap.BlockForever)
	if err != nil {
		disableMonitorMode(r.iface)
		return fmt.Errorf("%w: %v", ports.ErrRadioUnavailable, err)
	}

	r.handle = handle
	r.cancel = make(chan struct{})
	r.active = true
	go r.pump(consumer, handle, r.cancel)
	return nil
}

// pump reads packets off handle and hands raw bytes to consumer until
// cancel is closed. It never blocks on consumer: consumer is the
// interrupt-like FrameConsumer contract (§4.1), invoked synchronously
// because the demultiplexer itself does no blocking work.
func (r *Radio) pump(consumer ports.FrameConsumer, handle *pcap.Handle, cancel chan struct{}) {
	src := gopacket.NewPacketSource(handle, handle.LinkType())
	packets := src.Packets()
	for {
		select {
		case <-cancel:
			return
		case pkt, ok := <-packets:
			if !ok {
				return
			}
			consumer(pkt.Data(), time.Now())
		}
	}
}

// DisableCapture stops frame delivery and closes the pcap handle. Safe to
// call when already inactive.
func (r *Radio) DisableCapture() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return nil
	}
	close(r.cancel)
	r.handle.Close()
	r.handle = nil
	r.active = false
	disableMonitorMode(r.iface)
	return nil
}

func enableMonitorMode(iface string) error {
	log.Printf("capture: enabling monitor mode on %s", iface)
	if err := runCmd("ip", "link", "set", iface, "down"); err != nil {
		return err
	}
	if err := runCmd("iw", iface, "set", "type", "monitor"); err != nil {
		return err
	}
	return runCmd("ip", "link", "set", iface, "up")
}

func disableMonitorMode(iface string) {
	log.Printf("capture: restoring managed mode on %s", iface)
	runCmd("ip", "link", "set", iface, "down")
	runCmd("iw", iface, "set", "type", "managed")
	runCmd("ip", "link", "set", iface, "up")
}

// KillConflictingProcesses stops NetworkManager and wpa_supplicant, which
// otherwise fight the kernel over the interface's mode.
func KillConflictingProcesses() error {
	for _, args := range [][]string{
		{"systemctl", "stop", "NetworkManager"},
		{"systemctl", "stop", "wpa_supplicant"},
	} {
		if err := runCmd(args[0], args[1:]...); err != nil {
			return err
		}
	}
	return nil
}

// RestoreNetworkServices restarts wpa_supplicant and NetworkManager, best
// effort: it attempts every step and returns the last error encountered.
func RestoreNetworkServices() error {
	var lastErr error
	for _, args := range [][]string{
		{"systemctl", "start", "wpa_supplicant"},
		{"systemctl", "start", "NetworkManager"},
	} {
		if err := runCmd(args[0], args[1:]...); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func runCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w (%s)", name, args, err, string(out))
	}
	return nil
}
