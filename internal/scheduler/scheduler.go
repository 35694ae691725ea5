package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"firewatch-go/internal/config"
	"firewatch-go/internal/jobs"
	"firewatch-go/internal/logging"
)

// SimulationRunner performs one sensor simulation sweep.
type SimulationRunner interface {
	Run(ctx context.Context)
}

// Scheduler periodically enumerates eligible units and dispatches one
// independent job per unit. Per-unit isolation is its core property: one
// failing unit never blocks its siblings.
type Scheduler struct {
	cfg        *config.Config
	queue      *jobs.Queue
	cameras    CameraSource
	scanner    *Scanner
	simulation SimulationRunner
	log        zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	lastScanSweep time.Time
	lastSimSweep  time.Time
}

func New(cfg *config.Config, queue *jobs.Queue, cameras CameraSource, scanner *Scanner, simulation SimulationRunner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:        cfg,
		queue:      queue,
		cameras:    cameras,
		scanner:    scanner,
		simulation: simulation,
		log:        logging.NewServiceLogger(cfg, "scheduler"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the scan and simulation tickers.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runLoop("camera-scan", s.cfg.ScanInterval, s.scanSweep)
	go s.runLoop("sensor-simulation", s.cfg.SimulationInterval, s.simulationSweep)

	s.log.Info().
		Dur("scan_interval", s.cfg.ScanInterval).
		Dur("simulation_interval", s.cfg.SimulationInterval).
		Msg("Scheduler started")
}

func (s *Scheduler) runLoop(name string, interval time.Duration, sweep func(context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sweep(s.ctx)
		case <-s.ctx.Done():
			s.log.Info().Str("loop", name).Msg("Sweep loop stopped")
			return
		}
	}
}

// scanSweep enumerates eligible cameras and enqueues one scan job each.
func (s *Scheduler) scanSweep(ctx context.Context) {
	s.mu.Lock()
	s.lastScanSweep = time.Now()
	s.mu.Unlock()

	cameras, err := s.cameras.EligibleCameras(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to enumerate cameras")
		return
	}
	if len(cameras) == 0 {
		s.log.Info().Msg("No cameras to scan")
		return
	}

	s.log.Info().Int("count", len(cameras)).Msg("Queuing scan jobs")
	for _, camera := range cameras {
		id := camera.ID
		s.queue.Enqueue(jobs.Job{
			Name: fmt.Sprintf("scan-camera-%d", id),
			Run: func(ctx context.Context) {
				s.scanner.Process(ctx, id)
			},
		})
	}
}

func (s *Scheduler) simulationSweep(ctx context.Context) {
	s.mu.Lock()
	s.lastSimSweep = time.Now()
	s.mu.Unlock()

	s.queue.Enqueue(jobs.Job{
		Name: "sensor-simulation",
		Run:  s.simulation.Run,
	})
}

// Status reports the last sweep times for the ops surface.
func (s *Scheduler) Status() (lastScan, lastSimulation time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScanSweep, s.lastSimSweep
}

// Stop halts the tickers and waits for the loops to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
