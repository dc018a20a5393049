package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/reminders/internal/api/respond"
	"github.com/aliskhannn/reminders/internal/model"
	templaterepo "github.com/aliskhannn/reminders/internal/repository/template"
)

type templateRepository interface {
	CreateTemplate(ctx context.Context, t model.ReminderTemplate) (uuid.UUID, error)
	GetAllTemplates(ctx context.Context) ([]model.ReminderTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// Handler handles HTTP requests for reminder templates. Templates are plain
// prefill presets, so the handler talks to the repository directly.
type Handler struct {
	repo      templateRepository
	validator *validator.Validate
}

// NewHandler creates a new Handler instance.
func NewHandler(repo templateRepository, v *validator.Validate) *Handler {
	return &Handler{repo: repo, validator: v}
}

// CreateRequest represents the JSON body expected in a template creation request.
type CreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,oneof=personal work health other"`
}

// Create handles HTTP POST requests to create a new template.
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

	t := model.ReminderTemplate{
		Title:       req.Title,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
		Category:    model.Category(req.Category),
	}

	id, err := h.repo.CreateTemplate(c.Request.Context(), t)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("title", t.Title).Msg("failed to create template")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	t.ID = id
	respond.Created(c.Writer, t)
}

// GetAll handles HTTP GET requests to list all templates.
func (h *Handler) GetAll(c *ginext.Context) {
	templates, err := h.repo.GetAllTemplates(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to get templates")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, templates)
}

// Delete handles HTTP DELETE requests to remove a template.
func (h *Handler) Delete(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	if err := h.repo.DeleteTemplate(c.Request.Context(), id); err != nil {
		if errors.Is(err, templaterepo.ErrTemplateNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("template not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("template not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to delete template")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "template deleted")
}
