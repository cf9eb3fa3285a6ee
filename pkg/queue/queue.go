// Package queue provides the durable FIFO job queue handing work to
// out-of-process workers. Producers enqueue opaque job descriptors;
// each descriptor is delivered to at most one consumer, with no
// redelivery after a pop.
package queue

import (
	"context"
	"time"

	"match-service/dto"
)

// Queue is a multi-producer/multi-consumer FIFO of job descriptors.
type Queue interface {
	// Enqueue appends a job to the tail. It never blocks on capacity.
	Enqueue(ctx context.Context, job dto.JobMessage) error

	// Dequeue blocks until a job is available or the timeout elapses.
	// A timeout is the normal poll-again signal and returns (nil, nil).
	// Malformed descriptors are dropped and reported as no job.
	Dequeue(ctx context.Context, timeout time.Duration) (*dto.JobMessage, error)

	Close() error
}

// pollInterval is how often blocking dequeues re-check the backend.
const pollInterval = 250 * time.Millisecond
