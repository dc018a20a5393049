package alert

import (
	"context"
	"errors"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/model"
	"github.com/aliskhannn/reminders/internal/schedule"
)

// Result reports what a scheduling pass registered. Handles are already
// encoded for persistence; an empty handle for a requested back-end means
// that back-end yielded nothing (soft failure or error).
type Result struct {
	NotificationID  string
	CalendarEventID string

	// Due is false when every trigger instant was already in the past at
	// scheduling time, so nothing was registered anywhere.
	Due bool
}

// Scheduler orchestrates both back-ends for one reminder. It computes the
// trigger instants, branches on the reminder's alert type, and never
// registers a trigger for a past instant.
type Scheduler struct {
	notification Backend
	alarm        Backend

	now func() time.Time
}

// NewScheduler creates a scheduler over the two back-ends.
func NewScheduler(notification, alarm Backend) *Scheduler {
	return &Scheduler{
		notification: notification,
		alarm:        alarm,
		now:          time.Now,
	}
}

// Schedule registers the reminder's due triggers with the back-ends its alert
// type selects. A failure in one back-end does not block the other; the
// returned error joins whatever went wrong while the Result still carries
// every handle that was obtained.
func (s *Scheduler) Schedule(ctx context.Context, strategy retry.Strategy, r model.Reminder) (Result, error) {
	now := s.now()
	triggers := dueTriggers(r, now)
	if len(triggers) == 0 {
		return Result{}, nil
	}

	res := Result{Due: true}
	var errs []error

	if r.AlertType.WantsNotification() {
		h, err := scheduleAll(ctx, strategy, s.notification, triggers)
		res.NotificationID = h.Encode()
		if err != nil {
			errs = append(errs, err)
		}
	}

	if r.AlertType.WantsAlarm() {
		h, err := scheduleAll(ctx, strategy, s.alarm, triggers)
		res.CalendarEventID = h.Encode()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return res, errors.Join(errs...)
}

// CancelHandles cancels every trigger identifier encoded in the two composite
// handles. Either handle may be empty. Cancellation of already-invalid
// identifiers is a no-op inside the back-ends, so calling this twice is safe.
func (s *Scheduler) CancelHandles(ctx context.Context, strategy retry.Strategy, notificationID, calendarEventID string) error {
	var errs []error

	for _, id := range ParseHandle(notificationID) {
		if err := s.notification.Cancel(ctx, strategy, id); err != nil && !isSoft(err) {
			errs = append(errs, err)
		}
	}

	for _, id := range ParseHandle(calendarEventID) {
		if err := s.alarm.Cancel(ctx, strategy, id); err != nil && !isSoft(err) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// dueTriggers builds the on-time and optional advance trigger for a reminder,
// dropping any instant that is not strictly in the future.
func dueTriggers(r model.Reminder, now time.Time) []Trigger {
	occurrence := schedule.NextOccurrence(r.Date, r.TimeOfDay, r.RepeatDays, now)

	body := r.Description
	if body == "" {
		body = "Reminder"
	}

	triggers := make([]Trigger, 0, 2)

	if occurrence.After(now) {
		triggers = append(triggers, Trigger{
			ReminderID: r.ID,
			Title:      r.Title,
			Body:       body,
			At:         occurrence,
			Kind:       KindOnTime,
		})
	}

	if r.AdvanceNotice != model.AdvanceNone && r.AdvanceNotice != "" {
		at := schedule.ApplyAdvance(occurrence, r.AdvanceNotice)
		if at.After(now) {
			triggers = append(triggers, Trigger{
				ReminderID: r.ID,
				Title:      "Upcoming: " + r.Title,
				Body:       body,
				At:         at,
				Kind:       KindAdvance,
			})
		}
	}

	return triggers
}

// scheduleAll registers each trigger with one back-end and collects the
// identifiers into a composite handle. A soft failure abandons the remaining
// triggers for this back-end; the handle keeps whatever was registered first.
func scheduleAll(ctx context.Context, strategy retry.Strategy, b Backend, triggers []Trigger) (Handle, error) {
	var (
		h    Handle
		errs []error
	)

	for _, t := range triggers {
		id, err := b.Schedule(ctx, strategy, t)
		if err != nil {
			if isSoft(err) {
				zlog.Logger.Warn().Err(err).Str("reminder_id", t.ReminderID.String()).Msg("alert backend unavailable, skipping")
				break
			}

			errs = append(errs, err)
			continue
		}

		if id != "" {
			h = append(h, id)
		}
	}

	return h, errors.Join(errs...)
}

func isSoft(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrPermissionDenied)
}
