package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/reminders/internal/model"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
)

const reminderColumns = `
		id, title, description, category, date, time_of_day, repeat_days,
		is_completed, alert_type, advance_notice, notification_id,
		calendar_event_id, alert_status, created_at, updated_at`

// Repository provides methods to interact with the reminders table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new reminder repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateReminder inserts a new reminder and returns the stored row with its
// assigned id and timestamps.
func (r *Repository) CreateReminder(ctx context.Context, rem model.Reminder) (model.Reminder, error) {
	query := `
		INSERT INTO reminders (
		    title, description, category, date, time_of_day, repeat_days,
		    alert_type, advance_notice, alert_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + reminderColumns + `;
    `

	row := r.db.Master.QueryRowContext(
		ctx, query,
		rem.Title, rem.Description, rem.Category, rem.Date, rem.TimeOfDay,
		pq.Array(repeatDayStrings(rem.RepeatDays)), rem.AlertType,
		rem.AdvanceNotice, model.AlertStatusNone,
	)

	created, err := scanReminder(row)
	if err != nil {
		return model.Reminder{}, fmt.Errorf("failed to create reminder: %w", err)
	}

	return created, nil
}

// GetReminderByID retrieves a reminder by its ID.
func (r *Repository) GetReminderByID(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE id = $1;
    `

	rem, err := scanReminder(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrReminderNotFound
		}

		return model.Reminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}

	return rem, nil
}

// GetAllReminders retrieves all reminders ordered by date ascending.
func (r *Repository) GetAllReminders(ctx context.Context) ([]model.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		ORDER BY date ASC, time_of_day ASC;
    `

	return r.queryReminders(ctx, query)
}

// GetRemindersByDate retrieves the reminders whose base date falls inside
// [dayStart, dayEnd).
func (r *Repository) GetRemindersByDate(ctx context.Context, dayStart, dayEnd time.Time) ([]model.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE date >= $1 AND date < $2
		ORDER BY time_of_day ASC;
    `

	return r.queryReminders(ctx, query, dayStart, dayEnd)
}

// GetUpcomingReminders retrieves incomplete reminders dated today or later,
// ascending.
func (r *Repository) GetUpcomingReminders(ctx context.Context, todayStart time.Time) ([]model.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE NOT is_completed AND date >= $1
		ORDER BY date ASC, time_of_day ASC;
    `

	return r.queryReminders(ctx, query, todayStart)
}

// UpdateReminder overwrites the mutable fields of a reminder and returns the
// stored row.
func (r *Repository) UpdateReminder(ctx context.Context, rem model.Reminder) (model.Reminder, error) {
	query := `
		UPDATE reminders
		SET title = $1, description = $2, category = $3, date = $4,
		    time_of_day = $5, repeat_days = $6, alert_type = $7,
		    advance_notice = $8, updated_at = now()
		WHERE id = $9
		RETURNING ` + reminderColumns + `;
    `

	row := r.db.Master.QueryRowContext(
		ctx, query,
		rem.Title, rem.Description, rem.Category, rem.Date, rem.TimeOfDay,
		pq.Array(repeatDayStrings(rem.RepeatDays)), rem.AlertType,
		rem.AdvanceNotice, rem.ID,
	)

	updated, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrReminderNotFound
		}

		return model.Reminder{}, fmt.Errorf("failed to update reminder: %w", err)
	}

	return updated, nil
}

// UpdateAlertState persists the alert handles and scheduling outcome of a
// reminder. Passing empty handles clears the corresponding namespaces.
func (r *Repository) UpdateAlertState(ctx context.Context, id uuid.UUID, notificationID, calendarEventID string, status model.AlertStatus) error {
	query := `
		UPDATE reminders
		SET notification_id = $1, calendar_event_id = $2, alert_status = $3,
		    updated_at = now()
		WHERE id = $4;
    `

	res, err := r.db.ExecContext(ctx, query, notificationID, calendarEventID, status, id)
	if err != nil {
		return fmt.Errorf("failed to update alert state: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// ToggleReminderComplete flips the completion flag and returns the stored
// row.
func (r *Repository) ToggleReminderComplete(ctx context.Context, id uuid.UUID) (model.Reminder, error) {
	query := `
		UPDATE reminders
		SET is_completed = NOT is_completed, updated_at = now()
		WHERE id = $1
		RETURNING ` + reminderColumns + `;
    `

	rem, err := scanReminder(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrReminderNotFound
		}

		return model.Reminder{}, fmt.Errorf("failed to toggle reminder: %w", err)
	}

	return rem, nil
}

// DeleteReminder removes a reminder by its ID.
func (r *Repository) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM reminders
		WHERE id = $1;
    `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrReminderNotFound
	}

	return nil
}

func (r *Repository) queryReminders(ctx context.Context, query string, args ...interface{}) ([]model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}

		reminders = append(reminders, rem)
	}

	return reminders, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReminder(row rowScanner) (model.Reminder, error) {
	var (
		rem  model.Reminder
		days pq.StringArray
	)

	err := row.Scan(
		&rem.ID, &rem.Title, &rem.Description, &rem.Category, &rem.Date,
		&rem.TimeOfDay, &days, &rem.IsCompleted, &rem.AlertType,
		&rem.AdvanceNotice, &rem.NotificationID, &rem.CalendarEventID,
		&rem.AlertStatus, &rem.CreatedAt, &rem.UpdatedAt,
	)
	if err != nil {
		return model.Reminder{}, err
	}

	rem.RepeatDays = toRepeatDays(days)

	return rem, nil
}

func repeatDayStrings(days []model.RepeatDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}

	return out
}

func toRepeatDays(days []string) []model.RepeatDay {
	if len(days) == 0 {
		return nil
	}

	out := make([]model.RepeatDay, len(days))
	for i, d := range days {
		out[i] = model.RepeatDay(d)
	}

	return out
}
