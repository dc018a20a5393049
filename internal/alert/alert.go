// Package alert registers and cancels platform alert triggers for reminders.
// Two back-ends exist: a silent notification back-end and an audible alarm
// back-end. Both are best-effort; the lifecycle coordinator never fails a
// persistence operation because alerting is unavailable.
package alert

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

var (
	// ErrPermissionDenied means the back-end rejected the configured
	// credentials. Scheduling proceeds without a handle.
	ErrPermissionDenied = errors.New("alert backend permission denied")

	// ErrUnavailable means the back-end is not configured or structurally
	// missing on this deployment. Scheduling proceeds without a handle.
	ErrUnavailable = errors.New("alert backend unavailable")
)

// TriggerKind distinguishes the on-time alert from its advance warning.
type TriggerKind string

const (
	KindOnTime  TriggerKind = "on_time"
	KindAdvance TriggerKind = "advance"
)

// Trigger is a single concrete alert registration request.
type Trigger struct {
	ReminderID uuid.UUID
	Title      string
	Body       string
	At         time.Time
	Kind       TriggerKind
}

// Backend registers and cancels individual triggers. Schedule returns an
// opaque identifier; Cancel of an unknown, already-fired or placeholder
// identifier is a no-op.
type Backend interface {
	Schedule(ctx context.Context, strategy retry.Strategy, t Trigger) (string, error)
	Cancel(ctx context.Context, strategy retry.Strategy, id string) error
}
