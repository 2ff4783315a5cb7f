package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf/internal/server/construct"
)

// blockingRunner holds every sweep until released
type blockingRunner struct {
	release chan struct{}
	err     error
}

func (r *blockingRunner) RunAll(ctx context.Context) ([]construct.Summary, error) {
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []construct.Summary{{ID: "all"}}, r.err
}

func (r *blockingRunner) Run(ctx context.Context, id string) (construct.Summary, error) {
	select {
	case <-r.release:
	case <-ctx.Done():
		return construct.Summary{}, ctx.Err()
	}
	return construct.Summary{ID: id}, r.err
}

func TestQueueRunsJob(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	q := NewConstructionQueue(runner, 1, nil)
	defer q.Shutdown(time.Second)

	id, err := q.Submit("golf_trivial_upper_bound_constructor")
	require.NoError(t, err)

	job, ok := q.Job(id)
	require.True(t, ok)
	assert.Contains(t, []string{JobQueued, JobRunning}, job.State)

	close(runner.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err = q.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JobDone, job.State)
	require.Len(t, job.Summaries, 1)
	assert.Equal(t, "golf_trivial_upper_bound_constructor", job.Summaries[0].ID)
	assert.False(t, job.DoneAt.IsZero())
}

func TestQueueRecordsFailure(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), err: errors.New("boom")}
	close(runner.release)
	q := NewConstructionQueue(runner, 1, nil)
	defer q.Shutdown(time.Second)

	id, err := q.Submit("")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := q.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, job.State)
	assert.EqualError(t, job.Err, "boom")
}

func TestQueueFull(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	q := NewConstructionQueue(runner, 1, nil)
	defer func() {
		close(runner.release)
		q.Shutdown(time.Second)
	}()

	// One task held by the worker plus a full buffer
	var lastErr error
	for i := 0; i < cap(q.tasks)+2; i++ {
		if _, err := q.Submit(""); err != nil {
			lastErr = err
			break
		}
	}
	require.Error(t, lastErr)
	assert.Contains(t, lastErr.Error(), "queue is full")
}

func TestQueueShutdown(t *testing.T) {
	q := NewConstructionQueue(&blockingRunner{release: make(chan struct{})}, 1, nil)
	require.NoError(t, q.Shutdown(time.Second))

	_, err := q.Submit("")
	assert.Error(t, err)
}
