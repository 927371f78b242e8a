package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oxide-sec/wisentry/internal/adapters/web/middleware"
)

// SetupRoutes builds the router over s. Grounded on the donor's router.go
// shape (one function building a mux over the Server), rebuilt on
// gorilla/mux as a genuine top-level router rather than the donor's
// stdlib-ServeMux-plus-mux.Vars() usage, since this API's path variable
// (the /api/devices/{mac} lookup) is worth gorilla/mux's real routing.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/devices", s.handleDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/devices/{mac}", s.handleDevice).Methods(http.MethodGet)
	r.HandleFunc("/api/threats", s.handleThreats).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/incident.pdf", s.handleIncidentReport).Methods(http.MethodGet)

	scanLimiter := middleware.NewRateLimiter(6, time.Minute)
	r.Handle("/api/scan", middleware.RateLimit(scanLimiter)(http.HandlerFunc(s.handleScan))).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	return r
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.WSManager == nil {
		http.Error(w, "websocket push is not configured", http.StatusServiceUnavailable)
		return
	}
	s.WSManager.HandleWebSocket(w, r)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Devices.Snapshot())
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	macStr := mux.Vars(r)["mac"]
	for _, d := range s.Devices.Snapshot() {
		if d.MAC.String() == macStr {
			writeJSON(w, d)
			return
		}
	}
	http.Error(w, "device not found", http.StatusNotFound)
}

func (s *Server) handleThreats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Threats.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Analyzer.Stats())
}

// handleScan triggers one blocking passive scan analyzer pass on demand
// (§2's "rate-limited endpoint to trigger PSA on demand"), folding its
// network count into the shared stats before responding.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.Scanner == nil {
		http.Error(w, "passive scan analyzer is not configured", http.StatusServiceUnavailable)
		return
	}

	networks, err := s.Scanner.Run(r.Context())
	if err != nil {
		http.Error(w, "scan failed", http.StatusInternalServerError)
		return
	}
	s.Analyzer.RecordScan(networks, s.Clock.Now())

	writeJSON(w, map[string]int{"networks_scanned": networks})
}

func (s *Server) handleIncidentReport(w http.ResponseWriter, r *http.Request) {
	pdf, err := s.PDFExporter.ExportIncidentReport(s.Analyzer.Stats(), s.Threats.Snapshot())
	if err != nil {
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="incident-report.pdf"`)
	w.Write(pdf)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
