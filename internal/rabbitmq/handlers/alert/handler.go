package alert

import (
	"context"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/alert/notification"
	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
)

type deliveryService interface {
	Deliver(title, body string) error
}

type triggerStore interface {
	SetStatus(ctx context.Context, strategy retry.Strategy, id, status string) error
}

// Handler delivers one due alert trigger and records its outcome.
type Handler struct {
	delivery deliveryService
	triggers triggerStore
}

// NewHandler creates the message handler.
func NewHandler(delivery deliveryService, triggers triggerStore) *Handler {
	return &Handler{
		delivery: delivery,
		triggers: triggers,
	}
}

// HandleMessage delivers the trigger with the given retry strategy, marking
// its state fired or failed afterwards.
func (h *Handler) HandleMessage(ctx context.Context, msg queue.AlertMessage, strategy retry.Strategy) {
	zlog.Logger.Info().Msgf("Handle Message: Got trigger %s for reminder %s, due at %v", msg.TriggerID, msg.ReminderID, msg.FireAt)

	err := retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			zlog.Logger.Printf("Handle Message: Delivering trigger %s (%s)", msg.TriggerID, msg.Kind)
			return h.delivery.Deliver(msg.Title, msg.Body)
		}
	}, strategy)

	if err != nil {
		zlog.Logger.Printf("Handle Message: Trigger %s failed, moving to DLQ: %v", msg.TriggerID, err)
		if setErr := h.triggers.SetStatus(ctx, strategy, msg.TriggerID.String(), notification.StatusFailed); setErr != nil {
			zlog.Logger.Error().Err(setErr).Msgf("failed to set status=failed for %s", msg.TriggerID)
		}
		return
	}

	zlog.Logger.Info().Msgf("Handle Message: Trigger %s delivered successfully", msg.TriggerID)
	if setErr := h.triggers.SetStatus(ctx, strategy, msg.TriggerID.String(), notification.StatusFired); setErr != nil {
		zlog.Logger.Error().Err(setErr).Msgf("failed to set status=fired for %s", msg.TriggerID)
	}
}
