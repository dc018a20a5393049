// Package reminder coordinates the reminder lifecycle: persistence is
// authoritative, alert registration is best-effort, and stale alert handles
// are always cancelled before anything is re-registered or removed.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/alert"
	"github.com/aliskhannn/reminders/internal/model"
)

type reminderRepository interface {
	CreateReminder(ctx context.Context, rem model.Reminder) (model.Reminder, error)
	GetReminderByID(ctx context.Context, id uuid.UUID) (model.Reminder, error)
	GetAllReminders(ctx context.Context) ([]model.Reminder, error)
	GetRemindersByDate(ctx context.Context, dayStart, dayEnd time.Time) ([]model.Reminder, error)
	GetUpcomingReminders(ctx context.Context, todayStart time.Time) ([]model.Reminder, error)
	UpdateReminder(ctx context.Context, rem model.Reminder) (model.Reminder, error)
	UpdateAlertState(ctx context.Context, id uuid.UUID, notificationID, calendarEventID string, status model.AlertStatus) error
	ToggleReminderComplete(ctx context.Context, id uuid.UUID) (model.Reminder, error)
	DeleteReminder(ctx context.Context, id uuid.UUID) error
}

type alertScheduler interface {
	Schedule(ctx context.Context, strategy retry.Strategy, rem model.Reminder) (alert.Result, error)
	CancelHandles(ctx context.Context, strategy retry.Strategy, notificationID, calendarEventID string) error
}

// Service is the lifecycle coordinator.
type Service struct {
	repo      reminderRepository
	scheduler alertScheduler
	loc       *time.Location

	now func() time.Time

	// locks serializes lifecycle transitions per reminder id; the store's
	// read-modify-write span is not safe against two rapid operations on
	// the same reminder otherwise.
	locks sync.Map
}

// NewService creates the coordinator. loc is the timezone day boundaries are
// computed in.
func NewService(repo reminderRepository, scheduler alertScheduler, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}

	return &Service{
		repo:      repo,
		scheduler: scheduler,
		loc:       loc,
		now:       time.Now,
	}
}

// Create persists a new reminder, then registers its alerts and records the
// handles and outcome on the row. Scheduling failures never abort the create.
func (s *Service) Create(ctx context.Context, strategy retry.Strategy, rem model.Reminder) (model.Reminder, error) {
	created, err := s.repo.CreateReminder(ctx, rem)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}

	unlock := s.lock(created.ID)
	defer unlock()

	return s.scheduleAndPersist(ctx, strategy, created)
}

// Update cancels the reminder's outstanding alerts, persists the field
// changes, then re-registers alerts from the updated configuration. Handle
// namespaces the new alert type does not own are cleared.
func (s *Service) Update(ctx context.Context, strategy retry.Strategy, id uuid.UUID, upd model.ReminderUpdate) (model.Reminder, error) {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.repo.GetReminderByID(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}

	s.cancelHandles(ctx, strategy, current)

	updated, err := s.repo.UpdateReminder(ctx, upd.Apply(current))
	if err != nil {
		return model.Reminder{}, fmt.Errorf("update reminder: %w", err)
	}

	return s.scheduleAndPersist(ctx, strategy, updated)
}

// Delete cancels the reminder's outstanding alerts, then removes the row.
func (s *Service) Delete(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.repo.GetReminderByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get reminder: %w", err)
	}

	s.cancelHandles(ctx, strategy, current)

	if err := s.repo.DeleteReminder(ctx, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}

	return nil
}

// ToggleComplete flips the completion flag. Alert handles are untouched: a
// repeating reminder keeps its registered triggers until the next resync
// pass, which skips completed reminders.
func (s *Service) ToggleComplete(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	unlock := s.lock(id)
	defer unlock()

	rem, err := s.repo.ToggleReminderComplete(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("toggle reminder: %w", err)
	}

	return rem, nil
}

// GetAll returns every reminder.
func (s *Service) GetAll(ctx context.Context) ([]model.Reminder, error) {
	reminders, err := s.repo.GetAllReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all reminders: %w", err)
	}

	return reminders, nil
}

// GetByID returns one reminder.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	rem, err := s.repo.GetReminderByID(ctx, id)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("get reminder: %w", err)
	}

	return rem, nil
}

// GetByDate returns the reminders based on the given calendar day.
func (s *Service) GetByDate(ctx context.Context, day time.Time) ([]model.Reminder, error) {
	start := startOfDay(day.In(s.loc))

	reminders, err := s.repo.GetRemindersByDate(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("get reminders by date: %w", err)
	}

	return reminders, nil
}

// GetUpcoming returns incomplete reminders dated today or later.
func (s *Service) GetUpcoming(ctx context.Context) ([]model.Reminder, error) {
	reminders, err := s.repo.GetUpcomingReminders(ctx, startOfDay(s.now().In(s.loc)))
	if err != nil {
		return nil, fmt.Errorf("get upcoming reminders: %w", err)
	}

	return reminders, nil
}

// ResyncRepeating re-registers the next occurrence of every incomplete
// repeating reminder. Only the nearest occurrence is ever registered with the
// back-ends, so repeating reminders need this pass after each firing.
func (s *Service) ResyncRepeating(ctx context.Context, strategy retry.Strategy) error {
	reminders, err := s.repo.GetAllReminders(ctx)
	if err != nil {
		return fmt.Errorf("get all reminders: %w", err)
	}

	var errs []error
	for _, rem := range reminders {
		if !rem.Repeats() || rem.IsCompleted {
			continue
		}

		if err := s.resyncOne(ctx, strategy, rem); err != nil {
			errs = append(errs, fmt.Errorf("resync reminder %s: %w", rem.ID, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Service) resyncOne(ctx context.Context, strategy retry.Strategy, rem model.Reminder) error {
	unlock := s.lock(rem.ID)
	defer unlock()

	s.cancelHandles(ctx, strategy, rem)

	_, err := s.scheduleAndPersist(ctx, strategy, rem)
	return err
}

// scheduleAndPersist registers alerts for the reminder and records the
// resulting handles and outcome. The scheduling step is best-effort; only the
// persistence of its result can fail the operation.
func (s *Service) scheduleAndPersist(ctx context.Context, strategy retry.Strategy, rem model.Reminder) (model.Reminder, error) {
	res, err := s.scheduler.Schedule(ctx, strategy, rem)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", rem.ID.String()).Msg("failed to schedule alerts")
	}

	status := alertStatusFor(rem.AlertType, res)

	if err := s.repo.UpdateAlertState(ctx, rem.ID, res.NotificationID, res.CalendarEventID, status); err != nil {
		return model.Reminder{}, fmt.Errorf("persist alert state: %w", err)
	}

	rem.NotificationID = res.NotificationID
	rem.CalendarEventID = res.CalendarEventID
	rem.AlertStatus = status

	return rem, nil
}

// cancelHandles cancels whatever the reminder currently has registered.
// Cancellation failures are logged, not propagated: the handles are about to
// be overwritten or the row removed either way.
func (s *Service) cancelHandles(ctx context.Context, strategy retry.Strategy, rem model.Reminder) {
	if rem.NotificationID == "" && rem.CalendarEventID == "" {
		return
	}

	if err := s.scheduler.CancelHandles(ctx, strategy, rem.NotificationID, rem.CalendarEventID); err != nil {
		zlog.Logger.Error().Err(err).Str("id", rem.ID.String()).Msg("failed to cancel alerts")
	}
}

func (s *Service) lock(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}

// alertStatusFor derives the persisted outcome from what the scheduler
// obtained versus what the alert type asked for.
func alertStatusFor(t model.AlertType, res alert.Result) model.AlertStatus {
	if !res.Due {
		return model.AlertStatusExpired
	}

	wantNotif := t.WantsNotification()
	wantAlarm := t.WantsAlarm()
	gotNotif := res.NotificationID != ""
	gotAlarm := res.CalendarEventID != ""

	switch {
	case (!wantNotif || gotNotif) && (!wantAlarm || gotAlarm):
		return model.AlertStatusScheduled
	case (wantNotif && gotNotif) || (wantAlarm && gotAlarm):
		return model.AlertStatusPartial
	default:
		return model.AlertStatusFailed
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
