package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is a unit of background work dispatched after a state change commits.
type Job struct {
	ID   string
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs side-effect jobs (notifications, emails) outside the
// request path. Failures are logged and never surface to the caller.
type Dispatcher interface {
	// Enqueue schedules a job for execution. It never blocks the caller
	// beyond queue admission and never returns an error.
	Enqueue(name string, run func(ctx context.Context) error)
}

// AsyncDispatcher executes jobs on a fixed pool of worker goroutines with a
// per-job timeout.
type AsyncDispatcher struct {
	jobs    chan Job
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewAsyncDispatcher creates a dispatcher with the given number of workers
// and queue capacity, and starts the workers.
func NewAsyncDispatcher(workers, queueSize int, timeout time.Duration) *AsyncDispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &AsyncDispatcher{
		jobs:    make(chan Job, queueSize),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *AsyncDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.execute(job)
	}
}

func (d *AsyncDispatcher) execute(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s (%s) panicked: %v", job.Name, job.ID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		log.Printf("job %s (%s) failed: %v", job.Name, job.ID, err)
	}
}

func (d *AsyncDispatcher) Enqueue(name string, run func(ctx context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		log.Printf("dispatcher stopped, dropping job %s", name)
		return
	}

	job := Job{ID: uuid.NewString(), Name: name, Run: run}
	select {
	case d.jobs <- job:
	default:
		log.Printf("dispatcher queue full, dropping job %s (%s)", job.Name, job.ID)
	}
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (d *AsyncDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

// SyncDispatcher runs jobs inline on the calling goroutine. Used in tests so
// fan-out effects are observable immediately.
type SyncDispatcher struct{}

func (SyncDispatcher) Enqueue(name string, run func(ctx context.Context) error) {
	if err := run(context.Background()); err != nil {
		log.Printf("job %s failed: %v", name, err)
	}
}
