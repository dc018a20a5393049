package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/api/respond"
	"github.com/aliskhannn/reminders/internal/config"
	"github.com/aliskhannn/reminders/internal/model"
	reminderrepo "github.com/aliskhannn/reminders/internal/repository/reminder"
	"github.com/aliskhannn/reminders/internal/schedule"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// reminderService defines the interface that the Handler depends on.
type reminderService interface {
	Create(ctx context.Context, strategy retry.Strategy, rem model.Reminder) (model.Reminder, error)
	Update(ctx context.Context, strategy retry.Strategy, id uuid.UUID, upd model.ReminderUpdate) (model.Reminder, error)
	Delete(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error
	ToggleComplete(ctx context.Context, id uuid.UUID) (model.Reminder, error)
	GetAll(ctx context.Context) ([]model.Reminder, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Reminder, error)
	GetByDate(ctx context.Context, day time.Time) ([]model.Reminder, error)
	GetUpcoming(ctx context.Context) ([]model.Reminder, error)
}

// Handler handles HTTP requests related to reminders. It is the creation
// boundary: title presence, enum values and date formats are enforced here,
// not in the core.
type Handler struct {
	service   reminderService
	validator *validator.Validate
	cfg       *config.Config
	loc       *time.Location
}

// NewHandler creates a new Handler instance.
func NewHandler(s reminderService, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{
		service:   s,
		validator: v,
		cfg:       cfg,
		loc:       cfg.Server.Location(),
	}
}

// CreateRequest represents the JSON body expected in a reminder creation request.
type CreateRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description"`
	Category      string   `json:"category" validate:"required,oneof=personal work health other"`
	Date          string   `json:"date" validate:"required"`
	Time          string   `json:"time" validate:"required"`
	RepeatDays    []string `json:"repeat_days" validate:"omitempty,dive,oneof=everyday mon tue wed thu fri sat sun"`
	AlertType     string   `json:"alert_type" validate:"required,oneof=notification alarm both"`
	AdvanceNotice string   `json:"advance_notice" validate:"omitempty,oneof=none 5min 15min 30min 1hour 3hours 1day 2days"`
}

// UpdateRequest represents the JSON body of a partial reminder update. Absent
// fields leave the stored values untouched.
type UpdateRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=1"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category" validate:"omitempty,oneof=personal work health other"`
	Date          *string   `json:"date"`
	Time          *string   `json:"time"`
	RepeatDays    *[]string `json:"repeat_days" validate:"omitempty,dive,oneof=everyday mon tue wed thu fri sat sun"`
	AlertType     *string   `json:"alert_type" validate:"omitempty,oneof=notification alarm both"`
	AdvanceNotice *string   `json:"advance_notice" validate:"omitempty,oneof=none 5min 15min 30min 1hour 3hours 1day 2days"`
}

// reminderResponse is a reminder plus its derived next occurrence, so list
// labels agree with what the scheduler registered. A completed one-shot
// reminder is inert and carries no next occurrence.
type reminderResponse struct {
	model.Reminder
	NextOccurrence *time.Time `json:"next_occurrence,omitempty"`
}

func (h *Handler) toResponse(rem model.Reminder) reminderResponse {
	resp := reminderResponse{Reminder: rem}

	if rem.IsCompleted && !rem.Repeats() {
		return resp
	}

	next := schedule.NextOccurrence(rem.Date, rem.TimeOfDay, rem.RepeatDays, time.Now().In(h.loc))
	resp.NextOccurrence = &next

	return resp
}

func (h *Handler) toResponses(reminders []model.Reminder) []reminderResponse {
	out := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, h.toResponse(rem))
	}

	return out
}

// Create handles HTTP POST requests to create a new reminder.
func (h *Handler) Create(c *ginext.Context) {
	var req CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to parse date")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid date format, expected %s", dateLayout))
		return
	}

	timeOfDay, err := time.ParseInLocation(timeLayout, req.Time, h.loc)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to parse time")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid time format, expected %s", timeLayout))
		return
	}

	advance := model.AdvanceNotice(req.AdvanceNotice)
	if advance == "" {
		advance = model.AdvanceNone
	}

	rem := model.Reminder{
		Title:         req.Title,
		Description:   req.Description,
		Category:      model.Category(req.Category),
		Date:          date,
		TimeOfDay:     timeOfDay,
		RepeatDays:    toRepeatDays(req.RepeatDays),
		AlertType:     model.AlertType(req.AlertType),
		AdvanceNotice: advance,
	}

	created, err := h.service.Create(c.Request.Context(), h.cfg.Retry, rem)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("title", rem.Title).Msg("failed to create reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, h.toResponse(created))
}

// GetAll handles HTTP GET requests to list reminders, optionally filtered by
// the category query parameter.
func (h *Handler) GetAll(c *ginext.Context) {
	reminders, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get reminders")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	if category := c.Query("category"); category != "" {
		filtered := reminders[:0]
		for _, rem := range reminders {
			if rem.Category == model.Category(category) {
				filtered = append(filtered, rem)
			}
		}
		reminders = filtered
	}

	respond.OK(c.Writer, h.toResponses(reminders))
}

// GetUpcoming handles HTTP GET requests for incomplete, today-or-future
// reminders.
func (h *Handler) GetUpcoming(c *ginext.Context) {
	reminders, err := h.service.GetUpcoming(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get upcoming reminders")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, h.toResponses(reminders))
}

// GetByDate handles HTTP GET requests for the reminders of one calendar day.
func (h *Handler) GetByDate(c *ginext.Context) {
	day, err := time.ParseInLocation(dateLayout, c.Param("date"), h.loc)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to parse date")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid date format, expected %s", dateLayout))
		return
	}

	reminders, err := h.service.GetByDate(c.Request.Context(), day)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get reminders by date")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, h.toResponses(reminders))
}

// GetByID handles HTTP GET requests for a single reminder.
func (h *Handler) GetByID(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	rem, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, reminderrepo.ErrReminderNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("reminder not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("reminder not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to get reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, h.toResponse(rem))
}

// Update handles HTTP PUT requests to change a reminder. Outstanding alerts
// are cancelled and re-registered by the service.
func (h *Handler) Update(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	upd, err := h.toUpdate(req)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to parse update request")
		respond.Fail(c.Writer, http.StatusBadRequest, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), h.cfg.Retry, id, upd)
	if err != nil {
		if errors.Is(err, reminderrepo.ErrReminderNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("reminder not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("reminder not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to update reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, h.toResponse(updated))
}

// Delete handles HTTP DELETE requests. Outstanding alerts are cancelled
// before the record is removed.
func (h *Handler) Delete(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), h.cfg.Retry, id)
	if err != nil {
		if errors.Is(err, reminderrepo.ErrReminderNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("reminder not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("reminder not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to delete reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "reminder deleted")
}

// ToggleComplete handles HTTP POST requests flipping the completion flag.
func (h *Handler) ToggleComplete(c *ginext.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	rem, err := h.service.ToggleComplete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, reminderrepo.ErrReminderNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("reminder not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("reminder not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to toggle reminder")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, h.toResponse(rem))
}

func (h *Handler) parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) toUpdate(req UpdateRequest) (model.ReminderUpdate, error) {
	upd := model.ReminderUpdate{
		Title:       req.Title,
		Description: req.Description,
	}

	if req.Category != nil {
		category := model.Category(*req.Category)
		upd.Category = &category
	}

	if req.Date != nil {
		date, err := time.ParseInLocation(dateLayout, *req.Date, h.loc)
		if err != nil {
			return model.ReminderUpdate{}, fmt.Errorf("invalid date format, expected %s", dateLayout)
		}
		upd.Date = &date
	}

	if req.Time != nil {
		timeOfDay, err := time.ParseInLocation(timeLayout, *req.Time, h.loc)
		if err != nil {
			return model.ReminderUpdate{}, fmt.Errorf("invalid time format, expected %s", timeLayout)
		}
		upd.TimeOfDay = &timeOfDay
	}

	if req.RepeatDays != nil {
		days := toRepeatDays(*req.RepeatDays)
		upd.RepeatDays = &days
	}

	if req.AlertType != nil {
		alertType := model.AlertType(*req.AlertType)
		upd.AlertType = &alertType
	}

	if req.AdvanceNotice != nil {
		advance := model.AdvanceNotice(*req.AdvanceNotice)
		upd.AdvanceNotice = &advance
	}

	return upd, nil
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
