package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veloce-app/veloce/internal/api"
	"github.com/veloce-app/veloce/internal/app/achievement"
	"github.com/veloce-app/veloce/internal/app/celebration"
	"github.com/veloce-app/veloce/internal/app/scoring"
	"github.com/veloce-app/veloce/internal/app/tasks"
	"github.com/veloce-app/veloce/internal/domain"
	"github.com/veloce-app/veloce/internal/health"
	"github.com/veloce-app/veloce/internal/infra/sqlite"
)

// streakCheckInterval bounds how stale the daily streak can get while
// the daemon runs across midnight.
const streakCheckInterval = time.Hour

// Daemon is the core Veloce runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	cancel context.CancelFunc

	Tracker      *celebration.Tracker
	Dispatcher   *celebration.Dispatcher
	Scoring      *scoring.Service
	Achievements *achievement.Service
	Tasks        *tasks.Service
	Health       *health.Checker
	Server       *api.Server
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	home := veloceHome()
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	tracker := celebration.NewTracker()
	dispatcher := celebration.NewDispatcher(tracker)
	if cfg.Celebration.AnchorX != 0 || cfg.Celebration.AnchorY != 0 {
		dispatcher.SetAnchor(domain.Position{X: cfg.Celebration.AnchorX, Y: cfg.Celebration.AnchorY})
	}

	sc := scoring.NewService(db)
	ach := achievement.NewService(db)
	ts := tasks.NewService(db, sc, ach, dispatcher)

	srv := api.NewServer(ts, sc, ach, dispatcher)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:       cfg,
		DB:           db,
		Tracker:      tracker,
		Dispatcher:   dispatcher,
		Scoring:      sc,
		Achievements: ach,
		Tasks:        ts,
		Health:       health.NewChecker(db, home),
		Server:       srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// A day may have passed since the last run; the streak has to
	// reflect that before anything celebrates.
	if err := d.Tasks.CheckStreakBreak(); err != nil {
		log.Printf("[daemon] streak check failed: %v", err)
	}

	go d.Health.Run(ctx)
	go d.streakWatcher(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections stay open indefinitely
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Veloce serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// streakWatcher re-checks the daily streak periodically so a daemon
// left running over midnight still breaks stale streaks.
func (d *Daemon) streakWatcher(ctx context.Context) {
	ticker := time.NewTicker(streakCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Tasks.CheckStreakBreak(); err != nil {
				log.Printf("[daemon] streak check failed: %v", err)
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
