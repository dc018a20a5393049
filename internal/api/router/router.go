package router

import (
	"github.com/wb-go/wbf/ginext"

	reminderhandler "github.com/aliskhannn/reminders/internal/api/handlers/reminder"
	templatehandler "github.com/aliskhannn/reminders/internal/api/handlers/template"
	"github.com/aliskhannn/reminders/internal/middlewares"
)

// New creates a new router with all API routes registered.
func New(reminders *reminderhandler.Handler, templates *templatehandler.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")
	{
		r := api.Group("/reminders")
		{
			r.POST("", reminders.Create)
			r.GET("", reminders.GetAll)
			r.GET("/upcoming", reminders.GetUpcoming)
			r.GET("/date/:date", reminders.GetByDate)
			r.GET("/:id", reminders.GetByID)
			r.PUT("/:id", reminders.Update)
			r.DELETE("/:id", reminders.Delete)
			r.POST("/:id/complete", reminders.ToggleComplete)
		}

		t := api.Group("/templates")
		{
			t.GET("", templates.GetAll)
			t.POST("", templates.Create)
			t.DELETE("/:id", templates.Delete)
		}
	}

	return e
}
