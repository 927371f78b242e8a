// Package server exposes the read-only HTTP/WS API (§2's "HTTP/WS API"
// leaf): a REST projection of the device table, active threats, and
// aggregate stats, a WebSocket push stream, and a rate-limited on-demand
// scan trigger. Grounded on the donor's adapters/web/server package (same
// Server/otelhttp/graceful-shutdown shape), with every handler rebuilt
// around this spec's read-only surface instead of the donor's large
// attack-control API.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/oxide-sec/wisentry/internal/adapters/reporting"
	"github.com/oxide-sec/wisentry/internal/adapters/storage"
	"github.com/oxide-sec/wisentry/internal/adapters/web/websocket"
	"github.com/oxide-sec/wisentry/internal/core/ports"
	"github.com/oxide-sec/wisentry/internal/core/services/analyzer"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
	"github.com/oxide-sec/wisentry/internal/core/services/passivescan"
	"github.com/oxide-sec/wisentry/internal/core/services/threatlist"
)

// Server wires the read-only accessors every handler needs: none of them
// mutate the device table, the analyzer, or the active-threats list — that
// is RI/FD/DT/TA/PSA's job (§2's data-flow note: the API subscribes, it
// never feeds back in).
type Server struct {
	Addr string

	Devices     *devicetable.Table
	Threats     *threatlist.List
	Analyzer    *analyzer.Analyzer
	Scanner     *passivescan.Analyzer
	Store       *storage.SQLiteAdapter // nil when persistence is disabled
	PDFExporter *reporting.PDFExporter
	WSManager   *web.WSManager
	Clock       ports.Clock

	srv *http.Server
}

// NewServer builds a Server over the given collaborators. store and
// wsManager may be nil: no route reads store, and /ws reports a 503 instead
// of panicking when wsManager is nil.
func NewServer(addr string, devices *devicetable.Table, threats *threatlist.List, an *analyzer.Analyzer, scanner *passivescan.Analyzer, store *storage.SQLiteAdapter, wsManager *web.WSManager, clock ports.Clock) *Server {
	return &Server{
		Addr:        addr,
		Devices:     devices,
		Threats:     threats,
		Analyzer:    an,
		Scanner:     scanner,
		Store:       store,
		PDFExporter: reporting.NewPDFExporter(),
		WSManager:   wsManager,
		Clock:       clock,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// server fails to serve, matching the donor's graceful-shutdown pattern.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)
	instrumented := otelhttp.NewHandler(handler, "wisentry-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumented,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("web server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("web server shutdown error: %v", err)
		}
	}()

	log.Printf("web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
