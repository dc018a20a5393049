package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups reminders for filtering purposes.
type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryHealth   Category = "health"
	CategoryOther    Category = "other"
)

// AlertType selects which alerting back-ends a reminder uses.
type AlertType string

const (
	AlertNotification AlertType = "notification"
	AlertAlarm        AlertType = "alarm"
	AlertBoth         AlertType = "both"
)

// WantsNotification reports whether the silent notification back-end applies.
func (t AlertType) WantsNotification() bool {
	return t == AlertNotification || t == AlertBoth
}

// WantsAlarm reports whether the audible alarm back-end applies.
func (t AlertType) WantsAlarm() bool {
	return t == AlertAlarm || t == AlertBoth
}

// AdvanceNotice is the offset of the optional early alert before the occurrence.
type AdvanceNotice string

const (
	AdvanceNone   AdvanceNotice = "none"
	Advance5Min   AdvanceNotice = "5min"
	Advance15Min  AdvanceNotice = "15min"
	Advance30Min  AdvanceNotice = "30min"
	Advance1Hour  AdvanceNotice = "1hour"
	Advance3Hours AdvanceNotice = "3hours"
	Advance1Day   AdvanceNotice = "1day"
	Advance2Days  AdvanceNotice = "2days"
)

// RepeatDay tags the weekdays a reminder recurs on. RepeatEveryday subsumes
// all other tags; an empty set means a one-shot reminder.
type RepeatDay string

const (
	RepeatEveryday RepeatDay = "everyday"
	RepeatMon      RepeatDay = "mon"
	RepeatTue      RepeatDay = "tue"
	RepeatWed      RepeatDay = "wed"
	RepeatThu      RepeatDay = "thu"
	RepeatFri      RepeatDay = "fri"
	RepeatSat      RepeatDay = "sat"
	RepeatSun      RepeatDay = "sun"
)

// AlertStatus records the outcome of the latest scheduling attempt so a failed
// or skipped registration is visible state rather than a dropped log line.
type AlertStatus string

const (
	AlertStatusNone      AlertStatus = "none"      // no back-end requested or nothing attempted yet
	AlertStatusScheduled AlertStatus = "scheduled" // every requested back-end returned a handle
	AlertStatusPartial   AlertStatus = "partial"   // some requested back-ends returned a handle
	AlertStatusFailed    AlertStatus = "failed"    // no requested back-end returned a handle
	AlertStatusExpired   AlertStatus = "expired"   // every trigger instant was already in the past
)

// Reminder is the central entity. Date carries the calendar day of the base
// occurrence; TimeOfDay carries the hour/minute applied to every occurrence.
// NotificationID and CalendarEventID are composite alert handles, empty when
// no trigger is registered with the corresponding back-end.
type Reminder struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Category        Category      `json:"category"`
	Date            time.Time     `json:"date"`
	TimeOfDay       time.Time     `json:"time"`
	RepeatDays      []RepeatDay   `json:"repeat_days"`
	IsCompleted     bool          `json:"is_completed"`
	AlertType       AlertType     `json:"alert_type"`
	AdvanceNotice   AdvanceNotice `json:"advance_notice"`
	NotificationID  string        `json:"notification_id,omitempty"`
	CalendarEventID string        `json:"calendar_event_id,omitempty"`
	AlertStatus     AlertStatus   `json:"alert_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Repeats reports whether the reminder recurs rather than firing once.
func (r Reminder) Repeats() bool {
	return len(r.RepeatDays) > 0
}

// ReminderUpdate carries a partial set of field changes for an update
// operation. Nil pointers leave the current value untouched.
type ReminderUpdate struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Category      *Category      `json:"category,omitempty"`
	Date          *time.Time     `json:"date,omitempty"`
	TimeOfDay     *time.Time     `json:"time,omitempty"`
	RepeatDays    *[]RepeatDay   `json:"repeat_days,omitempty"`
	AlertType     *AlertType     `json:"alert_type,omitempty"`
	AdvanceNotice *AdvanceNotice `json:"advance_notice,omitempty"`
}

// Apply overlays the update onto r and returns the result.
func (u ReminderUpdate) Apply(r Reminder) Reminder {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Category != nil {
		r.Category = *u.Category
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.TimeOfDay != nil {
		r.TimeOfDay = *u.TimeOfDay
	}
	if u.RepeatDays != nil {
		r.RepeatDays = *u.RepeatDays
	}
	if u.AlertType != nil {
		r.AlertType = *u.AlertType
	}
	if u.AdvanceNotice != nil {
		r.AdvanceNotice = *u.AdvanceNotice
	}
	return r
}

// ReminderTemplate is a static preset used to pre-fill a reminder draft.
type ReminderTemplate struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
}
