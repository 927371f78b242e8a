package capture

import (
	"context"
	"testing"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

func TestFakeScannerReturnsLoadedResults(t *testing.T) {
	s := NewFakeScanner()
	results, err := s.ScanNetworks(context.Background())
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result set with no error, got %v, %v", results, err)
	}

	s.SetResults([]domain.ScanResult{{SSID: "Home", BSSID: domain.MacAddress{1, 2, 3, 4, 5, 6}}})
	results, err = s.ScanNetworks(context.Background())
	if err != nil || len(results) != 1 {
		t.Fatalf("expected one result, got %v, %v", results, err)
	}
}

func TestFakeScannerReturnsIndependentCopy(t *testing.T) {
	s := NewFakeScanner()
	s.SetResults([]domain.ScanResult{{SSID: "Home"}})

	results, _ := s.ScanNetworks(context.Background())
	results[0].SSID = "mutated"

	fresh, _ := s.ScanNetworks(context.Background())
	if fresh[0].SSID != "Home" {
		t.Error("expected ScanNetworks to return an independent copy")
	}
}
