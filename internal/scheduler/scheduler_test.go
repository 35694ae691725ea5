package scheduler

import (
	"context"
	"testing"
	"time"

	"firewatch-go/internal/jobs"
	"firewatch-go/internal/models"
	"firewatch-go/internal/services/alerts"
	"firewatch-go/internal/services/prediction"
	"firewatch-go/internal/services/snapshot"
)

type chanCreator struct {
	created chan uint
}

func (c *chanCreator) CreateDetectionAlert(ctx context.Context, camera *models.Camera, confidence float64, snapshotPath string) alerts.Result {
	c.created <- camera.ID
	return alerts.Result{Success: true}
}

type fakeSimulation struct {
	runs chan struct{}
}

func (f *fakeSimulation) Run(ctx context.Context) {
	f.runs <- struct{}{}
}

func TestScanSweepQueuesScanJobs(t *testing.T) {
	queue := jobs.NewQueue(2, 16)
	defer queue.Stop()

	source := &fakeCameraSource{camera: testCamera()}
	creator := &chanCreator{created: make(chan uint, 1)}
	scanner := NewScanner(testConfig(), source,
		&fakeAcquirer{result: snapshot.Result{Success: true, FilePath: "/tmp/s.jpg"}},
		&fakePredictor{result: prediction.Result{Success: true, Label: "FIRE", Confidence: 0.9}},
		creator)

	sched := New(testConfig(), queue, source, scanner, &fakeSimulation{runs: make(chan struct{}, 1)})
	defer sched.Stop()

	sched.scanSweep(context.Background())

	select {
	case id := <-creator.created:
		if id != 3 {
			t.Fatalf("expected camera 3 to be scanned, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scan job never ran")
	}

	lastScan, _ := sched.Status()
	if lastScan.IsZero() {
		t.Fatal("sweep time not recorded")
	}
}

func TestSimulationSweepQueuesRun(t *testing.T) {
	queue := jobs.NewQueue(1, 4)
	defer queue.Stop()

	sim := &fakeSimulation{runs: make(chan struct{}, 1)}
	sched := New(testConfig(), queue, &fakeCameraSource{}, nil, sim)
	defer sched.Stop()

	sched.simulationSweep(context.Background())

	select {
	case <-sim.runs:
	case <-time.After(2 * time.Second):
		t.Fatal("simulation job never ran")
	}

	_, lastSim := sched.Status()
	if lastSim.IsZero() {
		t.Fatal("sweep time not recorded")
	}
}

func TestStatusStartsZero(t *testing.T) {
	queue := jobs.NewQueue(1, 1)
	defer queue.Stop()

	sched := New(testConfig(), queue, &fakeCameraSource{}, nil, nil)
	defer sched.Stop()

	lastScan, lastSim := sched.Status()
	if !lastScan.IsZero() || !lastSim.IsZero() {
		t.Fatal("expected zero sweep times before the first sweep")
	}
}

func TestScanSweepWithoutCamerasIsNoop(t *testing.T) {
	queue := jobs.NewQueue(1, 4)
	defer queue.Stop()

	sched := New(testConfig(), queue, &fakeCameraSource{camera: nil}, nil, nil)
	defer sched.Stop()

	// Nothing eligible: no job reaches the nil scanner.
	sched.scanSweep(context.Background())
}
