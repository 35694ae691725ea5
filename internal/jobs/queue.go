package jobs

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Job is one unit of background work: a camera scan, a chat-bot send, an
// outbound mail. Jobs are independent; a failing or panicking job never
// affects its siblings.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Queue is a buffered work queue drained by a fixed pool of workers.
type Queue struct {
	jobs    chan Job
	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewQueue(workers, size int) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:    make(chan Job, size),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue submits a job. Returns false if the queue is stopped or full;
// the caller logs and moves on, the next cycle retries naturally.
func (q *Queue) Enqueue(job Job) bool {
	if q.ctx.Err() != nil {
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		log.Warn().Str("job", job.Name).Msg("Job queue full, dropping job")
		return false
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			q.drain()
			return
		case job := <-q.jobs:
			q.execute(q.ctx, job)
		}
	}
}

// drain runs jobs still buffered at shutdown. Queued notifications must go
// out even when the stop signal arrives first, so drained jobs get a fresh
// context instead of the cancelled queue context.
func (q *Queue) drain() {
	for {
		select {
		case job := <-q.jobs:
			q.execute(context.Background(), job)
		default:
			return
		}
	}
}

func (q *Queue) execute(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("job", job.Name).Interface("panic", r).Msg("Job panicked")
		}
	}()
	job.Run(ctx)
}

// Stop cancels the context and waits for in-flight and buffered jobs to
// finish.
func (q *Queue) Stop() {
	q.cancel()
	q.wg.Wait()
}
