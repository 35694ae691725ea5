package jobs

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueueRunsJobs(t *testing.T) {
	q := NewQueue(2, 16)
	defer q.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0

	for i := 0; i < 5; i++ {
		wg.Add(1)
		ok := q.Enqueue(Job{
			Name: "test-job",
			Run: func(ctx context.Context) {
				defer wg.Done()
				mu.Lock()
				ran++
				mu.Unlock()
			},
		})
		if !ok {
			t.Fatal("enqueue failed")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not finish in time")
	}

	if ran != 5 {
		t.Fatalf("expected 5 jobs to run, got %d", ran)
	}
}

func TestQueueIsolatesPanics(t *testing.T) {
	q := NewQueue(1, 16)
	defer q.Stop()

	var wg sync.WaitGroup
	wg.Add(1)

	q.Enqueue(Job{
		Name: "panicking-job",
		Run:  func(ctx context.Context) { panic("boom") },
	})
	q.Enqueue(Job{
		Name: "surviving-job",
		Run:  func(ctx context.Context) { wg.Done() },
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking sibling job")
	}
}

func TestStopDrainsBufferedJobs(t *testing.T) {
	q := NewQueue(1, 16)

	var mu sync.Mutex
	ran := 0
	var ctxErr error
	block := make(chan struct{})

	// Occupy the single worker so the rest stays buffered.
	q.Enqueue(Job{Name: "blocker", Run: func(ctx context.Context) { <-block }})
	for i := 0; i < 5; i++ {
		q.Enqueue(Job{
			Name: "buffered-notification",
			Run: func(ctx context.Context) {
				mu.Lock()
				ran++
				ctxErr = ctx.Err()
				mu.Unlock()
			},
		})
	}

	close(block)
	q.Stop()

	if ran != 5 {
		t.Fatalf("expected all buffered jobs to run before shutdown, got %d", ran)
	}
	if ctxErr != nil {
		t.Fatalf("drained jobs must get a live context, got %v", ctxErr)
	}
}

func TestQueueRejectsAfterStop(t *testing.T) {
	q := NewQueue(1, 1)
	q.Stop()

	if ok := q.Enqueue(Job{Name: "late", Run: func(ctx context.Context) {}}); ok {
		t.Fatal("expected enqueue to fail after stop")
	}
}
