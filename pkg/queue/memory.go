package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"match-service/dto"
)

var ErrClosed = errors.New("queue is closed")

// memoryPollInterval is shorter than the broker poll interval since a
// local check is free.
const memoryPollInterval = 10 * time.Millisecond

// MemoryQueue is an in-process FIFO used by the memory driver and by
// tests. Enqueue never blocks; Dequeue pops the head under the lock, so
// no two consumers ever receive the same job.
type MemoryQueue struct {
	mu     sync.Mutex
	jobs   []dto.JobMessage
	closed bool
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job dto.JobMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*dto.JobMessage, error) {
	deadline := time.Now().Add(timeout)
	for {
		if job, err := q.pop(); job != nil || err != nil {
			return job, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		wait := memoryPollInterval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (q *MemoryQueue) pop() (*dto.JobMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrClosed
	}
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return &job, nil
}

// Len reports the number of queued jobs.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
