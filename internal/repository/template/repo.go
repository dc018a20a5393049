package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/reminders/internal/model"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
)

// Repository provides methods to interact with the reminder_templates table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new template repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateTemplate inserts a new template and returns its ID.
func (r *Repository) CreateTemplate(ctx context.Context, t model.ReminderTemplate) (uuid.UUID, error) {
	query := `
		INSERT INTO reminder_templates (
		    title, icon, color, description, category
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
    `

	err := r.db.Master.QueryRowContext(
		ctx, query, t.Title, t.Icon, t.Color, t.Description, t.Category,
	).Scan(&t.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create template: %w", err)
	}

	return t.ID, nil
}

// GetAllTemplates retrieves all templates ordered by title.
func (r *Repository) GetAllTemplates(ctx context.Context) ([]model.ReminderTemplate, error) {
	query := `
		SELECT id, title, icon, color, description, category
		FROM reminder_templates
		ORDER BY title ASC;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ReminderTemplate
	for rows.Next() {
		var t model.ReminderTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Icon, &t.Color, &t.Description, &t.Category); err != nil {
			return nil, err
		}

		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// GetTemplateByID retrieves a template by its ID.
func (r *Repository) GetTemplateByID(ctx context.Context, id uuid.UUID) (model.ReminderTemplate, error) {
	query := `
		SELECT id, title, icon, color, description, category
		FROM reminder_templates
		WHERE id = $1;
    `

	var t model.ReminderTemplate
	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Icon, &t.Color, &t.Description, &t.Category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ReminderTemplate{}, ErrTemplateNotFound
		}

		return model.ReminderTemplate{}, fmt.Errorf("failed to get template: %w", err)
	}

	return t, nil
}

// DeleteTemplate removes a template by its ID.
func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM reminder_templates
		WHERE id = $1;
    `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrTemplateNotFound
	}

	return nil
}
