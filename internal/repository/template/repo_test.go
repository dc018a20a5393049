package template

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/reminders/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func TestCreateTemplate(t *testing.T) {
	repo, mock := setupMockDB(t)

	templateID := uuid.New()
	tmpl := model.ReminderTemplate{
		Title:       "Take medication",
		Icon:        "pill",
		Color:       "#e74c3c",
		Description: "Daily medication reminder",
		Category:    model.CategoryHealth,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO reminder_templates (
		    title, icon, color, description, category
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
    `)).
		WithArgs(tmpl.Title, tmpl.Icon, tmpl.Color, tmpl.Description, tmpl.Category).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(templateID))

	id, err := repo.CreateTemplate(context.Background(), tmpl)
	assert.NoError(t, err)
	assert.Equal(t, templateID, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllTemplates(t *testing.T) {
	repo, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "title", "icon", "color", "description", "category"}).
		AddRow(uuid.New(), "Pay bills", "credit-card", "#f39c12", "Monthly bills", "personal").
		AddRow(uuid.New(), "Team standup", "users", "#3498db", "Daily team sync", "work")

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, title, icon, color, description, category
		FROM reminder_templates
		ORDER BY title ASC;
    `)).WillReturnRows(rows)

	list, err := repo.GetAllTemplates(context.Background())
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTemplateByID(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	query := regexp.QuoteMeta(`
		SELECT id, title, icon, color, description, category
		FROM reminder_templates
		WHERE id = $1;
    `)

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "icon", "color", "description", "category"}).
			AddRow(id, "Water plants", "leaf", "#2ecc71", "", "personal"))

	tmpl, err := repo.GetTemplateByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "Water plants", tmpl.Title)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetTemplateByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTemplate(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	query := regexp.QuoteMeta(`
		DELETE FROM reminder_templates
		WHERE id = $1;
    `)

	mock.ExpectExec(query).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteTemplate(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(query).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteTemplate(context.Background(), id)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
