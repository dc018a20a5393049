package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
)

type fakeConsumer struct {
	msgs []queue.AlertMessage
}

func (f *fakeConsumer) Consume(out chan<- queue.AlertMessage, _ retry.Strategy) error {
	for _, m := range f.msgs {
		out <- m
	}

	return nil
}

type fakeHandler struct {
	handled chan queue.AlertMessage
}

func (f *fakeHandler) HandleMessage(_ context.Context, msg queue.AlertMessage, _ retry.Strategy) {
	f.handled <- msg
}

// fakeGate blocks the trigger ids in its cancelled set.
type fakeGate struct {
	cancelled map[uuid.UUID]bool
}

func (f *fakeGate) ShouldFire(_ context.Context, _ retry.Strategy, msg queue.AlertMessage) (bool, error) {
	return !f.cancelled[msg.TriggerID], nil
}

func TestDispatcherSkipsCancelledTriggers(t *testing.T) {
	live := queue.AlertMessage{
		TriggerID: uuid.New(),
		Title:     "live",
		FireAt:    time.Now().Add(-time.Second),
	}
	cancelled := queue.AlertMessage{
		TriggerID: uuid.New(),
		Title:     "cancelled",
		FireAt:    time.Now().Add(-time.Second),
	}

	consumer := &fakeConsumer{msgs: []queue.AlertMessage{cancelled, live}}
	handler := &fakeHandler{handled: make(chan queue.AlertMessage, 2)}
	gate := &fakeGate{cancelled: map[uuid.UUID]bool{cancelled.TriggerID: true}}

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(consumer, handler, gate)

	go d.Run(ctx, retry.Strategy{}, 1)

	select {
	case got := <-handler.handled:
		assert.Equal(t, live.TriggerID, got.TriggerID)
	case <-time.After(2 * time.Second):
		t.Fatal("live trigger was never handled")
	}

	cancel()

	// Nothing else should arrive.
	select {
	case got := <-handler.handled:
		t.Fatalf("unexpected message handled: %s", got.Title)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherWaitsUntilFireInstant(t *testing.T) {
	fireAt := time.Now().Add(300 * time.Millisecond)
	msg := queue.AlertMessage{
		TriggerID: uuid.New(),
		Title:     "delayed",
		FireAt:    fireAt,
	}

	consumer := &fakeConsumer{msgs: []queue.AlertMessage{msg}}
	handler := &fakeHandler{handled: make(chan queue.AlertMessage, 1)}
	gate := &fakeGate{cancelled: map[uuid.UUID]bool{}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(consumer, handler, gate)
	go d.Run(ctx, retry.Strategy{}, 1)

	select {
	case <-handler.handled:
		assert.False(t, time.Now().Before(fireAt), "trigger fired before its instant")
	case <-time.After(2 * time.Second):
		t.Fatal("trigger was never handled")
	}
}
