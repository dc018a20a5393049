// Package alarm implements the audible alert back-end on top of a CalDAV
// calendar: every trigger becomes an event carrying an absolute display
// alarm, so the platform's calendar alerting does the loud part. A missing or
// rejected configuration degrades scheduling softly instead of failing the
// reminder write.
package alarm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/reminders/internal/alert"
)

// eventDuration is the block the alarm event occupies in the calendar.
const eventDuration = 30 * time.Minute

// Config carries the CalDAV connection settings. An empty URL or empty
// credentials mean the back-end is unavailable on this deployment.
type Config struct {
	URL          string
	Username     string
	Password     string
	CalendarPath string
}

// Backend schedules alarm triggers as CalDAV events.
type Backend struct {
	cfg Config

	mu           sync.Mutex
	client       *caldav.Client
	calendarPath string
}

// NewBackend creates the alarm back-end. The connection is established lazily
// on first use.
func NewBackend(cfg Config) *Backend {
	return &Backend{cfg: cfg, calendarPath: cfg.CalendarPath}
}

// configured reports whether credentials exist at all.
func (b *Backend) configured() bool {
	return b.cfg.URL != "" && b.cfg.Username != "" && b.cfg.Password != ""
}

// Schedule creates one calendar event with an absolute alarm at the trigger
// instant and returns the event UID as the trigger identifier.
func (b *Backend) Schedule(ctx context.Context, strategy retry.Strategy, t alert.Trigger) (string, error) {
	if !b.configured() {
		return "", alert.ErrUnavailable
	}

	client, calPath, err := b.connect(ctx)
	if err != nil {
		return "", classify(err)
	}

	uid := fmt.Sprintf("%s-%s", t.ReminderID, t.Kind)
	cal := triggerToICS(uid, t)

	err = retry.Do(func() error {
		_, putErr := client.PutCalendarObject(ctx, eventPath(calPath, uid), cal)
		return putErr
	}, strategy)
	if err != nil {
		return "", classify(fmt.Errorf("put calendar event: %w", err))
	}

	return uid, nil
}

// Cancel removes the event for the given trigger identifier. Missing events
// and an unconfigured back-end are no-ops.
func (b *Backend) Cancel(ctx context.Context, strategy retry.Strategy, id string) error {
	if id == "" || !b.configured() {
		return nil
	}

	client, calPath, err := b.connect(ctx)
	if err != nil {
		return classify(err)
	}

	err = retry.Do(func() error {
		rmErr := client.RemoveAll(ctx, eventPath(calPath, id))
		if rmErr != nil && isNotFound(rmErr) {
			return nil
		}
		return rmErr
	}, strategy)
	if err != nil {
		return classify(fmt.Errorf("remove calendar event: %w", err))
	}

	return nil
}

// connect builds the CalDAV client once and resolves the calendar path when
// the configuration leaves it blank.
func (b *Backend) connect(ctx context.Context) (*caldav.Client, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		httpClient := &http.Client{
			Transport: &basicAuthTransport{
				username: b.cfg.Username,
				password: b.cfg.Password,
			},
			Timeout: 30 * time.Second,
		}

		client, err := caldav.NewClient(httpClient, b.cfg.URL)
		if err != nil {
			return nil, "", fmt.Errorf("connect to CalDAV: %w", err)
		}

		b.client = client
	}

	if b.calendarPath == "" {
		path, err := discoverCalendar(ctx, b.client)
		if err != nil {
			return nil, "", err
		}

		b.calendarPath = path
	}

	return b.client, b.calendarPath, nil
}

// discoverCalendar picks the first calendar of the current principal.
func discoverCalendar(ctx context.Context, client *caldav.Client) (string, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendar available: %w", alert.ErrUnavailable)
	}

	return cals[0].Path, nil
}

// triggerToICS builds the VCALENDAR payload for one trigger.
func triggerToICS(uid string, t alert.Trigger) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//reminders//alarm//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetText(ical.PropSummary, t.Title)
	event.Props.SetText(ical.PropDescription, t.Body)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, t.At.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, t.At.Add(eventDuration).UTC())

	valarm := ical.NewComponent(ical.CompAlarm)
	valarm.Props.SetText(ical.PropAction, "DISPLAY")
	valarm.Props.SetText(ical.PropDescription, t.Title)

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetDateTime(t.At.UTC())
	trigger.Params.Set(ical.ParamValue, string(ical.ValueDateTime))
	valarm.Props.Set(trigger)

	event.Children = append(event.Children, valarm)
	cal.Children = append(cal.Children, event.Component)

	return cal
}

func eventPath(calendarPath, uid string) string {
	if !strings.HasSuffix(calendarPath, "/") {
		calendarPath += "/"
	}

	return calendarPath + uid + ".ics"
}

// isNotFound detects a 404 from the server; cancelling an already-removed
// event must stay a no-op.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "Not Found")
}

// classify maps HTTP auth failures onto the soft permission error so the
// lifecycle coordinator treats them as "no handle" rather than a fault.
func classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "Unauthorized") || strings.Contains(msg, "Forbidden") {
		return fmt.Errorf("%w: %s", alert.ErrPermissionDenied, msg)
	}

	return err
}

// basicAuthTransport adds Basic Auth to every CalDAV request.
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}
