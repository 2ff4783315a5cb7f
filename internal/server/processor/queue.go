// FILE: internal/server/processor/queue.go
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"golf/internal/server/construct"
)

// Job states
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// maxJobs bounds the retained job history
const maxJobs = 100

// Runner executes construction sweeps
type Runner interface {
	RunAll(ctx context.Context) ([]construct.Summary, error)
	Run(ctx context.Context, id string) (construct.Summary, error)
}

// ConstructionTask requests a sweep of one construction, or all when
// Construction is empty
type ConstructionTask struct {
	JobID        string
	Construction string
}

// Job is the observable state of a queued task
type Job struct {
	ID           string
	Construction string
	State        string
	Summaries    []construct.Summary
	Err          error
	QueuedAt     time.Time
	DoneAt       time.Time
}

// ConstructionQueue runs construction sweeps off the request path
type ConstructionQueue struct {
	runner  Runner
	logger  *slog.Logger
	tasks   chan ConstructionTask
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
}

// NewConstructionQueue creates a queue with specified worker count
func NewConstructionQueue(runner Runner, workerCount int, logger *slog.Logger) *ConstructionQueue {
	if workerCount < 1 {
		workerCount = 1 // Sweeps clear and rewrite shared rows
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &ConstructionQueue{
		runner:  runner,
		logger:  logger,
		tasks:   make(chan ConstructionTask, 16),
		workers: workerCount,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*Job),
	}

	q.start()
	return q
}

// start initializes the worker pool
func (q *ConstructionQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// worker processes construction tasks
func (q *ConstructionQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return // Channel closed
			}
			q.processTask(id, task)

		case <-q.ctx.Done():
			return
		}
	}
}

// processTask executes a single sweep and records its outcome
func (q *ConstructionQueue) processTask(worker int, task ConstructionTask) {
	q.update(task.JobID, func(j *Job) { j.State = JobRunning })
	q.logger.Info("Construction job started", "job", task.JobID, "construction", task.Construction, "worker", worker)

	var (
		summaries []construct.Summary
		err       error
	)
	if task.Construction == "" {
		summaries, err = q.runner.RunAll(q.ctx)
	} else {
		var sum construct.Summary
		sum, err = q.runner.Run(q.ctx, task.Construction)
		summaries = []construct.Summary{sum}
	}

	q.update(task.JobID, func(j *Job) {
		j.Summaries = summaries
		j.DoneAt = time.Now().UTC()
		if err != nil {
			j.State = JobFailed
			j.Err = err
			return
		}
		j.State = JobDone
	})

	if err != nil {
		q.logger.Error("Construction job failed", "job", task.JobID, "error", err)
		return
	}
	q.logger.Info("Construction job finished", "job", task.JobID)
}

// Submit queues a sweep and returns its job id
func (q *ConstructionQueue) Submit(construction string) (string, error) {
	task := ConstructionTask{
		JobID:        uuid.New().String(),
		Construction: construction,
	}

	q.record(&Job{
		ID:           task.JobID,
		Construction: construction,
		State:        JobQueued,
		QueuedAt:     time.Now().UTC(),
	})

	select {
	case <-q.ctx.Done():
		q.forget(task.JobID)
		return "", fmt.Errorf("queue is shutting down")
	default:
	}

	select {
	case q.tasks <- task:
		return task.JobID, nil
	default:
		q.forget(task.JobID)
		return "", fmt.Errorf("queue is full")
	}
}

// Job returns a snapshot of a job
func (q *ConstructionQueue) Job(id string) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	j, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Wait blocks until the job leaves the queued and running states
func (q *ConstructionQueue) Wait(ctx context.Context, id string) (Job, error) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		j, ok := q.Job(id)
		if !ok {
			return Job{}, fmt.Errorf("unknown job %s", id)
		}
		if j.State == JobDone || j.State == JobFailed {
			return j, nil
		}
		select {
		case <-ctx.Done():
			return j, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (q *ConstructionQueue) record(j *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs[j.ID] = j
	q.order = append(q.order, j.ID)
	for len(q.order) > maxJobs {
		delete(q.jobs, q.order[0])
		q.order = q.order[1:]
	}
}

func (q *ConstructionQueue) forget(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.jobs, id)
	for i, jid := range q.order {
		if jid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func (q *ConstructionQueue) update(id string, fn func(*Job)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if j, ok := q.jobs[id]; ok {
		fn(j)
	}
}

// Shutdown gracefully stops the queue
func (q *ConstructionQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
