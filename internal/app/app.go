// Package app wires RI → FD → DT, the periodic threat analyzer, the passive
// scan analyzer, and the HTTP/WS API into one runnable Application, the way
// the donor's internal/app orchestrates its own much larger component set.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oxide-sec/wisentry/internal/adapters/capture"
	"github.com/oxide-sec/wisentry/internal/adapters/storage"
	"github.com/oxide-sec/wisentry/internal/adapters/web/server"
	web "github.com/oxide-sec/wisentry/internal/adapters/web/websocket"
	"github.com/oxide-sec/wisentry/internal/config"
	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
	"github.com/oxide-sec/wisentry/internal/core/services/analyzer"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
	"github.com/oxide-sec/wisentry/internal/core/services/passivescan"
	"github.com/oxide-sec/wisentry/internal/core/services/threatlist"
	"github.com/oxide-sec/wisentry/internal/telemetry"
)

// systemClock satisfies ports.Clock against the wall clock. It is the only
// production implementation; tests use a fake per package.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// multiSink fans a ThreatDetection or DefenseStats snapshot out to every
// observer wired for it (§2's "HTTP/WS API and SQLite writer both subscribe
// to the active-threats list as read-only observers"). It never feeds
// anything back into the device table or analyzer.
type multiSink struct {
	threatSinks []ports.ThreatSink
	statsSinks  []ports.StatsSink
}

func (m *multiSink) PublishDetection(d domain.ThreatDetection) {
	for _, s := range m.threatSinks {
		s.PublishDetection(d)
	}
}

func (m *multiSink) PublishStats(s domain.DefenseStats) {
	for _, sink := range m.statsSinks {
		sink.PublishStats(s)
	}
}

// Application holds every wired component and orchestrates their lifecycle.
type Application struct {
	Config *config.Config

	Table    *devicetable.Table
	Radio    ports.RadioInterface
	Demux    *capture.Demux
	Analyzer *analyzer.Analyzer
	PSA      *passivescan.Analyzer
	Threats  *threatlist.List
	Store    *storage.SQLiteAdapter
	WS       *web.WSManager
	Server   *server.Server

	statsSink ports.StatsSink
}

// New builds and wires an Application from cfg. Nothing is started yet;
// call Run to enable capture and begin serving.
func New(cfg *config.Config) (*Application, error) {
	telemetry.InitMetrics()

	table := devicetable.New(cfg.MaxTrackedDevices)
	threats := threatlist.New()
	wsManager := web.NewWSManager()

	var store *storage.SQLiteAdapter
	if cfg.DBPath != "" {
		s, err := storage.NewSQLiteAdapter(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("app: open detection log: %w", err)
		}
		store = s
	}

	threatSinks := []ports.ThreatSink{threats, wsManager}
	statsSinks := []ports.StatsSink{wsManager}
	if store != nil {
		threatSinks = append(threatSinks, store)
		statsSinks = append(statsSinks, store)
	}
	sink := &multiSink{threatSinks: threatSinks, statsSinks: statsSinks}

	var radio ports.RadioInterface
	var scanner ports.Scanner
	if cfg.MockMode {
		radio = capture.NewFakeRadio()
		scanner = capture.NewFakeScanner()
	} else {
		radio = capture.NewRadio(cfg.Interface)
		scanner = capture.NewIWScanner(cfg.Interface)
	}

	demux := capture.NewDemux(table)

	thresholds := analyzer.Thresholds{
		BeaconSpam:      cfg.BeaconSpamRate,
		DeauthAttack:    cfg.DeauthAttackRate,
		ProbeFlood:      cfg.ProbeFloodRate,
		AttackDetection: cfg.AttackDetection,
	}
	an := analyzer.NewWithWindow(table, thresholds, sink, cfg.ShortWindow, cfg.ThreatTimeout)

	clock := systemClock{}
	psa := passivescan.New(scanner, sink, clock)

	srv := server.NewServer(cfg.Addr, table, threats, an, psa, store, wsManager, clock)

	return &Application{
		Config:    cfg,
		Table:     table,
		Radio:     radio,
		Demux:     demux,
		Analyzer:  an,
		PSA:       psa,
		Threats:   threats,
		Store:     store,
		WS:        wsManager,
		Server:    srv,
		statsSink: sink,
	}, nil
}

// Run enables capture, starts the HTTP server and the periodic analyzer
// loop, and blocks until ctx is cancelled or a component fails. On any exit
// path, capture is disabled before Run returns — a hard invariant (§5),
// enforced here with defer regardless of which path triggered the return.
func (app *Application) Run(ctx context.Context) error {
	if err := app.Radio.EnableCapture(app.Demux.HandleFrame); err != nil {
		return fmt.Errorf("app: enable capture: %w", err)
	}
	defer func() {
		if err := app.Radio.DisableCapture(); err != nil {
			slog.Error("disable capture", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := app.Server.Run(ctx); err != nil {
			errCh <- fmt.Errorf("app: web server: %w", err)
		}
	}()

	ticker := time.NewTicker(app.Config.MinAnalysisTime)
	defer ticker.Stop()
	lastTick := time.Now()

	slog.Info("wisentry running", "interface", app.Config.Interface, "addr", app.Config.Addr, "mock", app.Config.MockMode)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case now := <-ticker.C:
			app.Analyzer.AddMonitorTime(now.Sub(lastTick), now)
			lastTick = now
			app.Analyzer.Run(now)
			app.statsSink.PublishStats(app.Analyzer.Stats())
		}
	}
}

// Close releases the detection log, if one is open. Safe to call more than
// once or on a nil Store.
func (app *Application) Close() error {
	if app.Store == nil {
		return nil
	}
	return app.Store.Close()
}
