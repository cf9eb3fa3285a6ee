package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"match-service/dto"
)

const (
	exchangeName = "match_jobs_exchange"
	queueName    = "match_jobs_queue"
	routingKey   = "jobs.transcode_and_analyze"
)

// RabbitQueue is the durable queue driver. Jobs are published with
// persistent delivery mode and popped with auto-ack, so a job handed to
// a worker that crashes is lost rather than redelivered.
type RabbitQueue struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch *amqp.Channel
}

func NewRabbitQueue(conn *amqp.Connection, kind string) (*RabbitQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchangeName, kind, true, false, false, false, nil); err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
		return nil, err
	}

	return &RabbitQueue{conn: conn, ch: ch}, nil
}

func (q *RabbitQueue) Enqueue(ctx context.Context, job dto.JobMessage) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (q *RabbitQueue) Dequeue(ctx context.Context, timeout time.Duration) (*dto.JobMessage, error) {
	deadline := time.Now().Add(timeout)
	for {
		msg, ok, err := q.get()
		if err != nil {
			return nil, err
		}
		if ok {
			var job dto.JobMessage
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("dropping malformed job descriptor")
				return nil, nil
			}
			return &job, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		wait := pollInterval
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

func (q *RabbitQueue) get() (amqp.Delivery, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Get(queueName, true)
}

func (q *RabbitQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Close()
}
