package capture

import (
	"sync"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/ports"
)

// FakeRadio is a deterministic ports.RadioInterface for tests and mock-mode
// application wiring: it never touches real hardware, and lets a test
// inject frames synchronously via Inject.
type FakeRadio struct {
	mu         sync.Mutex
	consumer   ports.FrameConsumer
	active     bool
	failEnable bool
}

// NewFakeRadio returns an inactive fake radio.
func NewFakeRadio() *FakeRadio {
	return &FakeRadio{}
}

// FailNextEnable makes the next EnableCapture call return
// ports.ErrRadioUnavailable, for testing the RadioUnavailable path (§7).
func (f *FakeRadio) FailNextEnable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failEnable = true
}

// EnableCapture registers consumer. Idempotent, per the RadioInterface
// contract.
func (f *FakeRadio) EnableCapture(consumer ports.FrameConsumer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEnable {
		f.failEnable = false
		return ports.ErrRadioUnavailable
	}
	f.consumer = consumer
	f.active = true
	return nil
}

// DisableCapture stops delivery. Safe when already inactive.
func (f *FakeRadio) DisableCapture() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.consumer = nil
	return nil
}

// Active reports whether capture is currently enabled.
func (f *FakeRadio) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Inject synchronously delivers raw to the registered consumer at now, as
// if it had just been captured. It is a no-op when capture is inactive,
// matching real hardware's behavior once DisableCapture has run.
func (f *FakeRadio) Inject(raw []byte, now time.Time) {
	f.mu.Lock()
	consumer := f.consumer
	active := f.active
	f.mu.Unlock()
	if active && consumer != nil {
		consumer(raw, now)
	}
}
