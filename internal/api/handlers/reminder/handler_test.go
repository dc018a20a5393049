package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/reminders/internal/config"
	"github.com/aliskhannn/reminders/internal/model"
	reminderrepo "github.com/aliskhannn/reminders/internal/repository/reminder"
)

// fakeService satisfies reminderService with canned responses.
type fakeService struct {
	reminder  model.Reminder
	reminders []model.Reminder
	err       error

	created model.Reminder
	updated *model.ReminderUpdate
	deleted []uuid.UUID
}

func (f *fakeService) Create(_ context.Context, _ retry.Strategy, rem model.Reminder) (model.Reminder, error) {
	if f.err != nil {
		return model.Reminder{}, f.err
	}

	rem.ID = uuid.New()
	f.created = rem
	return rem, nil
}

func (f *fakeService) Update(_ context.Context, _ retry.Strategy, id uuid.UUID, upd model.ReminderUpdate) (model.Reminder, error) {
	if f.err != nil {
		return model.Reminder{}, f.err
	}

	f.updated = &upd
	return upd.Apply(f.reminder), nil
}

func (f *fakeService) Delete(_ context.Context, _ retry.Strategy, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}

	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeService) ToggleComplete(_ context.Context, _ uuid.UUID) (model.Reminder, error) {
	return f.reminder, f.err
}

func (f *fakeService) GetAll(_ context.Context) ([]model.Reminder, error) {
	return f.reminders, f.err
}

func (f *fakeService) GetByID(_ context.Context, _ uuid.UUID) (model.Reminder, error) {
	return f.reminder, f.err
}

func (f *fakeService) GetByDate(_ context.Context, _ time.Time) ([]model.Reminder, error) {
	return f.reminders, f.err
}

func (f *fakeService) GetUpcoming(_ context.Context) ([]model.Reminder, error) {
	return f.reminders, f.err
}

func setupHandler(service *fakeService) *Handler {
	cfg := &config.Config{Retry: retry.Strategy{}}
	return NewHandler(service, validator.New(), cfg)
}

func testContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bodyBytes)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

func TestHandler_Create_Success(t *testing.T) {
	service := &fakeService{}
	handler := setupHandler(service)

	reqBody := CreateRequest{
		Title:         "Take medication",
		Category:      "health",
		Date:          "2026-09-15",
		Time:          "09:00",
		RepeatDays:    []string{"mon", "wed"},
		AlertType:     "both",
		AdvanceNotice: "30min",
	}

	c, w := testContext(t, http.MethodPost, "/api/reminders", reqBody)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	assert.Equal(t, "Take medication", service.created.Title)
	assert.Equal(t, model.AlertBoth, service.created.AlertType)
	assert.Equal(t, model.Advance30Min, service.created.AdvanceNotice)
	assert.Equal(t, []model.RepeatDay{model.RepeatMon, model.RepeatWed}, service.created.RepeatDays)
	assert.Equal(t, 9, service.created.TimeOfDay.Hour())
}

func TestHandler_Create_DefaultsAdvanceNotice(t *testing.T) {
	service := &fakeService{}
	handler := setupHandler(service)

	reqBody := CreateRequest{
		Title:     "No advance",
		Category:  "personal",
		Date:      "2026-09-15",
		Time:      "12:30",
		AlertType: "notification",
	}

	c, w := testContext(t, http.MethodPost, "/api/reminders", reqBody)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
	assert.Equal(t, model.AdvanceNone, service.created.AdvanceNotice)
}

func TestHandler_Create_ValidationError(t *testing.T) {
	handler := setupHandler(&fakeService{})

	tests := []struct {
		name string
		body CreateRequest
	}{
		{"missing title", CreateRequest{Category: "work", Date: "2026-09-15", Time: "09:00", AlertType: "alarm"}},
		{"bad category", CreateRequest{Title: "t", Category: "nope", Date: "2026-09-15", Time: "09:00", AlertType: "alarm"}},
		{"bad alert type", CreateRequest{Title: "t", Category: "work", Date: "2026-09-15", Time: "09:00", AlertType: "loud"}},
		{"bad repeat day", CreateRequest{Title: "t", Category: "work", Date: "2026-09-15", Time: "09:00", AlertType: "alarm", RepeatDays: []string{"funday"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(t, http.MethodPost, "/api/reminders", tt.body)
			handler.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
		})
	}
}

func TestHandler_Create_BadDate(t *testing.T) {
	handler := setupHandler(&fakeService{})

	reqBody := CreateRequest{
		Title:     "t",
		Category:  "work",
		Date:      "15.09.2026",
		Time:      "09:00",
		AlertType: "alarm",
	}

	c, w := testContext(t, http.MethodPost, "/api/reminders", reqBody)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_GetAll_FiltersByCategory(t *testing.T) {
	service := &fakeService{reminders: []model.Reminder{
		{ID: uuid.New(), Title: "work one", Category: model.CategoryWork},
		{ID: uuid.New(), Title: "health one", Category: model.CategoryHealth},
	}}
	handler := setupHandler(service)

	c, w := testContext(t, http.MethodGet, "/api/reminders?category=work", nil)
	handler.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var resp struct {
		Data []reminderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "work one", resp.Data[0].Title)
}

func TestHandler_GetByID_NotFound(t *testing.T) {
	handler := setupHandler(&fakeService{err: reminderrepo.ErrReminderNotFound})

	id := uuid.New()
	c, w := testContext(t, http.MethodGet, "/api/reminders/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	handler.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestHandler_GetByID_InvalidID(t *testing.T) {
	handler := setupHandler(&fakeService{})

	c, w := testContext(t, http.MethodGet, "/api/reminders/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Update_Success(t *testing.T) {
	current := model.Reminder{
		ID:        uuid.New(),
		Title:     "Old title",
		Category:  model.CategoryPersonal,
		AlertType: model.AlertNotification,
	}
	service := &fakeService{reminder: current}
	handler := setupHandler(service)

	title := "New title"
	alertType := "alarm"
	reqBody := UpdateRequest{Title: &title, AlertType: &alertType}

	c, w := testContext(t, http.MethodPut, "/api/reminders/"+current.ID.String(), reqBody)
	c.Params = gin.Params{{Key: "id", Value: current.ID.String()}}

	handler.Update(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	require.NotNil(t, service.updated)
	assert.Equal(t, "New title", *service.updated.Title)
	assert.Equal(t, model.AlertAlarm, *service.updated.AlertType)
	assert.Nil(t, service.updated.Date)
}

func TestHandler_Delete_Success(t *testing.T) {
	service := &fakeService{}
	handler := setupHandler(service)

	id := uuid.New()
	c, w := testContext(t, http.MethodDelete, "/api/reminders/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	handler.Delete(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, []uuid.UUID{id}, service.deleted)
}

func TestHandler_ToggleComplete_Success(t *testing.T) {
	service := &fakeService{reminder: model.Reminder{ID: uuid.New(), Title: "done", IsCompleted: true}}
	handler := setupHandler(service)

	id := service.reminder.ID
	c, w := testContext(t, http.MethodPost, "/api/reminders/"+id.String()+"/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	handler.ToggleComplete(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestHandler_GetByDate_BadDate(t *testing.T) {
	handler := setupHandler(&fakeService{})

	c, w := testContext(t, http.MethodGet, "/api/reminders/date/tomorrow", nil)
	c.Params = gin.Params{{Key: "date", Value: "tomorrow"}}

	handler.GetByDate(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestToResponseOmitsNextOccurrenceWhenCompleted(t *testing.T) {
	handler := setupHandler(&fakeService{})

	done := model.Reminder{Title: "done", IsCompleted: true}
	assert.Nil(t, handler.toResponse(done).NextOccurrence)

	// A completed repeating reminder still shows its next occurrence.
	repeating := model.Reminder{
		Title:       "daily",
		IsCompleted: true,
		Date:        time.Now(),
		TimeOfDay:   time.Now(),
		RepeatDays:  []model.RepeatDay{model.RepeatEveryday},
	}
	assert.NotNil(t, handler.toResponse(repeating).NextOccurrence)
}
