// Package notification implements the silent alert back-end. A scheduled
// trigger is a row of state in redis plus a delayed delivery message in
// rabbitmq; the dispatcher worker fires it through the configured channels
// when its instant arrives.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/alert"
	"github.com/aliskhannn/reminders/internal/rabbitmq/queue"
)

// PlaceholderID is returned instead of a real identifier when the queue is
// absent, so callers still get a value whose later cancellation is a safe
// no-op.
const PlaceholderID = "noop"

// Trigger states kept in redis. A missing key counts as pending so an evicted
// entry never suppresses delivery.
const (
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusFired     = "fired"
	StatusFailed    = "failed"
)

const watermarkKey = "alert:cancelled_before"

type publisher interface {
	Publish(msg queue.AlertMessage, strategy retry.Strategy) error
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Backend registers notification triggers. A nil publisher degrades the
// back-end to placeholder identifiers instead of failing reminder writes.
type Backend struct {
	queue publisher
	cache cache

	now func() time.Time
}

// NewBackend creates the notification back-end.
func NewBackend(q publisher, c cache) *Backend {
	return &Backend{queue: q, cache: c, now: time.Now}
}

// Schedule records a pending trigger and publishes its delivery message,
// returning the trigger identifier.
func (b *Backend) Schedule(ctx context.Context, strategy retry.Strategy, t alert.Trigger) (string, error) {
	if b.queue == nil {
		zlog.Logger.Warn().Str("reminder_id", t.ReminderID.String()).Msg("alert queue absent, returning placeholder trigger id")
		return PlaceholderID, nil
	}

	id := uuid.New()

	if err := b.cache.SetWithRetry(ctx, strategy, triggerKey(id.String()), StatusPending); err != nil {
		// A missing state row reads back as pending, so delivery still works.
		zlog.Logger.Error().Err(err).Str("trigger_id", id.String()).Msg("failed to record trigger state")
	}

	msg := queue.AlertMessage{
		TriggerID:  id,
		ReminderID: t.ReminderID,
		Title:      t.Title,
		Body:       t.Body,
		FireAt:     t.At,
		Kind:       string(t.Kind),
		EnqueuedAt: b.now(),
	}

	if err := b.queue.Publish(msg, strategy); err != nil {
		return "", fmt.Errorf("publish alert trigger: %w", err)
	}

	return id.String(), nil
}

// Cancel marks the trigger cancelled; the dispatcher drops it when its
// message surfaces. Placeholder, blank and malformed identifiers are no-ops.
func (b *Backend) Cancel(ctx context.Context, strategy retry.Strategy, id string) error {
	if id == "" || id == PlaceholderID {
		return nil
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	if err := b.cache.SetWithRetry(ctx, strategy, triggerKey(id), StatusCancelled); err != nil {
		return fmt.Errorf("cancel alert trigger: %w", err)
	}

	return nil
}

// CancelAll writes a watermark invalidating every trigger enqueued before
// now. The wbf redis wrapper has no key enumeration, so cancellation is a
// cut-off instant rather than a sweep.
func (b *Backend) CancelAll(ctx context.Context, strategy retry.Strategy) error {
	if err := b.cache.SetWithRetry(ctx, strategy, watermarkKey, b.now().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("cancel all alert triggers: %w", err)
	}

	return nil
}

// ShouldFire reports whether a surfaced message is still live: not cancelled
// and not older than the cancel-all watermark.
func (b *Backend) ShouldFire(ctx context.Context, strategy retry.Strategy, msg queue.AlertMessage) (bool, error) {
	status, err := b.Status(ctx, strategy, msg.TriggerID.String())
	if err != nil {
		return false, err
	}

	if status == StatusCancelled {
		return false, nil
	}

	wm, err := b.cache.GetWithRetry(ctx, strategy, watermarkKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}

		return false, fmt.Errorf("get cancel watermark: %w", err)
	}

	cutoff, err := time.Parse(time.RFC3339Nano, wm)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("watermark", wm).Msg("unreadable cancel watermark, ignoring")
		return true, nil
	}

	return !msg.EnqueuedAt.Before(cutoff), nil
}

// Status returns the trigger's current state. A missing key reads as pending.
func (b *Backend) Status(ctx context.Context, strategy retry.Strategy, id string) (string, error) {
	status, err := b.cache.GetWithRetry(ctx, strategy, triggerKey(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return StatusPending, nil
		}

		return "", fmt.Errorf("get trigger status: %w", err)
	}

	return status, nil
}

// SetStatus records a delivery outcome for the trigger.
func (b *Backend) SetStatus(ctx context.Context, strategy retry.Strategy, id, status string) error {
	if err := b.cache.SetWithRetry(ctx, strategy, triggerKey(id), status); err != nil {
		return fmt.Errorf("set trigger status: %w", err)
	}

	return nil
}

func triggerKey(id string) string {
	return "trigger:" + id
}
