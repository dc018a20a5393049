package worker

import (
	"context"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
)

type alertConsumer interface {
	Consume(out chan<- queue.AlertMessage, strategy retry.Strategy) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg queue.AlertMessage, strategy retry.Strategy)
}

type triggerGate interface {
	ShouldFire(ctx context.Context, strategy retry.Strategy, msg queue.AlertMessage) (bool, error)
}

// Dispatcher consumes registered triggers, waits out each one's fire instant
// and hands live triggers to the delivery handler. Cancelled triggers and
// triggers behind the cancel-all watermark are dropped.
type Dispatcher struct {
	queue   alertConsumer
	handler messageHandler
	gate    triggerGate
}

// NewDispatcher creates a dispatcher over the queue, the delivery handler and
// the trigger state gate.
func NewDispatcher(q alertConsumer, h messageHandler, g triggerGate) *Dispatcher {
	return &Dispatcher{
		queue:   q,
		handler: h,
		gate:    g,
	}
}

// Run starts workerCount workers and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	msgChan := make(chan queue.AlertMessage)

	go func() {
		if err := d.queue.Consume(msgChan, strategy); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to consume messages")
		}
	}()

	for i := 0; i < workerCount; i++ {
		go func(id int) {
			zlog.Logger.Printf("worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("worker-%d shutting down", id)
					return
				case msg := <-msgChan:
					if !d.waitUntilDue(ctx, msg) {
						return
					}

					// The gate is checked after the wait so a cancellation
					// that lands while the trigger is pending still counts.
					ok, err := d.gate.ShouldFire(ctx, strategy, msg)
					if err != nil {
						zlog.Logger.Printf("failed to check trigger %s: %v", msg.TriggerID, err)
						continue
					}

					if !ok {
						zlog.Logger.Printf("trigger %s cancelled, skipping", msg.TriggerID)
						continue
					}

					d.handler.HandleMessage(ctx, msg, strategy)
				}
			}
		}(i)
	}

	<-ctx.Done()
	zlog.Logger.Print("dispatcher stopped")
}

// waitUntilDue blocks until the trigger's fire instant, reporting false when
// the context ended first.
func (d *Dispatcher) waitUntilDue(ctx context.Context, msg queue.AlertMessage) bool {
	delay := time.Until(msg.FireAt)
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
