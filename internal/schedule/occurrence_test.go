package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aliskhannn/reminders/internal/model"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNextOccurrence_OneShot(t *testing.T) {
	base := date(2024, time.June, 10, 0, 0)
	tod := date(2024, time.June, 10, 9, 0)

	// A one-shot reminder keeps its fixed instant regardless of now.
	nows := []time.Time{
		date(2024, time.June, 1, 12, 0),
		date(2024, time.June, 10, 8, 0),
		date(2024, time.July, 1, 0, 0),
	}

	for _, now := range nows {
		got := NextOccurrence(base, tod, nil, now)
		assert.Equal(t, date(2024, time.June, 10, 9, 0), got)
	}
}

func TestNextOccurrence_OneShotZeroesSeconds(t *testing.T) {
	base := date(2024, time.June, 10, 0, 0)
	tod := time.Date(2024, time.June, 10, 9, 30, 45, 123, time.UTC)

	got := NextOccurrence(base, tod, nil, date(2024, time.June, 1, 0, 0))
	assert.Equal(t, date(2024, time.June, 10, 9, 30), got)
}

func TestNextOccurrence_EverydayTimeStillAhead(t *testing.T) {
	tod := date(2024, time.June, 10, 21, 0)
	now := date(2024, time.June, 14, 9, 0) // a Friday

	got := NextOccurrence(date(2024, time.June, 10, 0, 0), tod, []model.RepeatDay{model.RepeatEveryday}, now)
	assert.Equal(t, date(2024, time.June, 14, 21, 0), got, "same day when time-of-day has not passed")
}

func TestNextOccurrence_EverydayTimePassed(t *testing.T) {
	tod := date(2024, time.June, 10, 8, 0)
	now := date(2024, time.June, 14, 9, 0)

	got := NextOccurrence(date(2024, time.June, 10, 0, 0), tod, []model.RepeatDay{model.RepeatEveryday}, now)
	assert.Equal(t, date(2024, time.June, 15, 8, 0), got, "next day when time-of-day already passed")
}

func TestNextOccurrence_WeekdaySubset(t *testing.T) {
	tod := date(2024, time.June, 10, 9, 0)
	now := date(2024, time.June, 14, 12, 0) // Friday

	days := []model.RepeatDay{model.RepeatMon, model.RepeatWed}
	got := NextOccurrence(date(2024, time.June, 10, 0, 0), tod, days, now)

	// The following Monday, 2024-06-17.
	assert.Equal(t, date(2024, time.June, 17, 9, 0), got)
	assert.Equal(t, time.Monday, got.Weekday())
}

func TestNextOccurrence_TodayMatchesButTimePassed(t *testing.T) {
	tod := date(2024, time.June, 10, 9, 0)
	now := date(2024, time.June, 14, 12, 0) // Friday, 09:00 already gone

	days := []model.RepeatDay{model.RepeatFri}
	got := NextOccurrence(date(2024, time.June, 10, 0, 0), tod, days, now)
	assert.Equal(t, date(2024, time.June, 21, 9, 0), got, "skips to next Friday")
}

func TestNextOccurrence_EverydayMixedWithExplicitDays(t *testing.T) {
	tod := date(2024, time.June, 10, 21, 0)
	now := date(2024, time.June, 14, 9, 0)

	// The UI builds either representation; everyday must win.
	days := []model.RepeatDay{model.RepeatMon, model.RepeatEveryday}
	got := NextOccurrence(date(2024, time.June, 10, 0, 0), tod, days, now)
	assert.Equal(t, date(2024, time.June, 14, 21, 0), got)
}

func TestApplyAdvance(t *testing.T) {
	occ := date(2024, time.June, 10, 9, 0)

	tests := []struct {
		notice model.AdvanceNotice
		want   time.Time
	}{
		{model.AdvanceNone, occ},
		{model.Advance5Min, date(2024, time.June, 10, 8, 55)},
		{model.Advance15Min, date(2024, time.June, 10, 8, 45)},
		{model.Advance30Min, date(2024, time.June, 10, 8, 30)},
		{model.Advance1Hour, date(2024, time.June, 10, 8, 0)},
		{model.Advance3Hours, date(2024, time.June, 10, 6, 0)},
		{model.Advance1Day, date(2024, time.June, 9, 9, 0)},
		{model.Advance2Days, date(2024, time.June, 8, 9, 0)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ApplyAdvance(occ, tt.notice), "notice %s", tt.notice)
	}
}

func TestAdvance_UnknownValueBehavesLikeNone(t *testing.T) {
	assert.Equal(t, time.Duration(0), Advance(model.AdvanceNotice("soon")))
}
