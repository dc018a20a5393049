// Package schedule computes concrete trigger instants for reminders. All
// functions are pure so the API layer and the alert scheduler derive the same
// instants from the same inputs.
package schedule

import (
	"time"

	"github.com/aliskhannn/reminders/internal/model"
)

// weekdayTags maps time.Weekday (Sunday = 0) onto repeat-day tags.
var weekdayTags = [7]model.RepeatDay{
	model.RepeatSun,
	model.RepeatMon,
	model.RepeatTue,
	model.RepeatWed,
	model.RepeatThu,
	model.RepeatFri,
	model.RepeatSat,
}

// advanceMinutes maps each advance-notice value onto its minute offset.
var advanceMinutes = map[model.AdvanceNotice]int{
	model.AdvanceNone:   0,
	model.Advance5Min:   5,
	model.Advance15Min:  15,
	model.Advance30Min:  30,
	model.Advance1Hour:  60,
	model.Advance3Hours: 180,
	model.Advance1Day:   1440,
	model.Advance2Days:  2880,
}

// NextOccurrence returns the next trigger instant for a reminder.
//
// With no repeat days the result is date combined with timeOfDay, past or not;
// whether a past one-shot is still worth registering is the caller's call.
// With repeat days, candidate dates now..now+7d are scanned in ascending order
// (8 candidates, so every weekday tag is tried at least once) and the first
// matching candidate whose combined instant is strictly after now wins. The
// combined base instant is the defensive fallback.
func NextOccurrence(date, timeOfDay time.Time, repeatDays []model.RepeatDay, now time.Time) time.Time {
	if len(repeatDays) == 0 {
		return combine(date, timeOfDay, now.Location())
	}

	for i := 0; i < 8; i++ {
		candidate := now.AddDate(0, 0, i)
		if !matches(repeatDays, weekdayTags[candidate.Weekday()]) {
			continue
		}

		instant := combine(candidate, timeOfDay, now.Location())
		if instant.After(now) {
			return instant
		}
	}

	return combine(date, timeOfDay, now.Location())
}

// Advance returns the offset duration for an advance-notice value. Unknown
// values behave like none.
func Advance(notice model.AdvanceNotice) time.Duration {
	return time.Duration(advanceMinutes[notice]) * time.Minute
}

// ApplyAdvance returns the advance trigger instant for an occurrence.
func ApplyAdvance(occurrence time.Time, notice model.AdvanceNotice) time.Time {
	return occurrence.Add(-Advance(notice))
}

// matches tolerates everyday coexisting with explicit day tags.
func matches(repeatDays []model.RepeatDay, tag model.RepeatDay) bool {
	for _, d := range repeatDays {
		if d == model.RepeatEveryday || d == tag {
			return true
		}
	}
	return false
}

// combine merges the calendar day of date with the hour/minute of timeOfDay,
// zeroing seconds.
func combine(date, timeOfDay time.Time, loc *time.Location) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	)
}
