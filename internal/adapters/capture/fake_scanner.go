package capture

import (
	"context"
	"sync"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
)

// FakeScanner is a deterministic ports.Scanner for tests and MockMode: it
// never shells out to iw, returning whatever results have been loaded via
// SetResults. Grounded on FakeRadio's same no-hardware, test-injectable
// shape.
type FakeScanner struct {
	mu      sync.Mutex
	results []domain.ScanResult
}

// NewFakeScanner returns a scanner with no networks until SetResults is
// called.
func NewFakeScanner() *FakeScanner {
	return &FakeScanner{}
}

// SetResults replaces the networks the next ScanNetworks call returns.
func (f *FakeScanner) SetResults(results []domain.ScanResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
}

// ScanNetworks returns the currently loaded results. It never fails.
func (f *FakeScanner) ScanNetworks(ctx context.Context) ([]domain.ScanResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ScanResult, len(f.results))
	copy(out, f.results)
	return out, nil
}

var _ ports.Scanner = (*FakeScanner)(nil)
