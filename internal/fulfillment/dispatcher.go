package fulfillment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"swifteats/internal/correlation"
)

type job struct {
	orderID       int64
	city          string
	correlationID string
}

// Dispatcher runs the post-confirmation calls on a bounded worker pool so a
// slow collaborator never blocks the order response. Enqueue is non-blocking:
// when the queue is full the job is dropped and the drop is logged.
type Dispatcher struct {
	client *Client
	log    *zap.Logger
	jobs   chan job
	wg     sync.WaitGroup
}

func NewDispatcher(client *Client, workers, queueSize int, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		client: client,
		log:    log,
		jobs:   make(chan job, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// OrderConfirmed enqueues delivery assignment and notification for a
// confirmed order. Never blocks, never fails the caller.
func (d *Dispatcher) OrderConfirmed(orderID int64, city, correlationID string) {
	select {
	case d.jobs <- job{orderID: orderID, city: city, correlationID: correlationID}:
	default:
		d.log.Warn("fulfillment queue full, dropping job",
			zap.Int64("order_id", orderID),
			zap.String("correlation_id", correlationID))
	}
}

// Close drains the queue and stops the workers.
func (d *Dispatcher) Close() {
	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.process(j)
	}
}

func (d *Dispatcher) process(j job) {
	ctx := correlation.NewContext(context.Background(), j.correlationID)
	log := d.log.With(
		zap.Int64("order_id", j.orderID),
		zap.String("correlation_id", j.correlationID))

	if err := d.client.AssignDelivery(ctx, j.orderID, j.city); err != nil {
		log.Warn("delivery assignment dropped", zap.Error(err))
	}
	if err := d.client.Notify(ctx, j.orderID, NotificationOrderConfirmed); err != nil {
		log.Warn("notification dropped", zap.Error(err))
	}
}
