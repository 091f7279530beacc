package router

import (
	"dagplanner-api/core/middleware"
	"dagplanner-api/modules/schedule/controller"

	"github.com/labstack/echo/v4"
)

// ScheduleRouter handles scheduling routes
type ScheduleRouter struct {
	ScheduleController *controller.ScheduleController
}

// NewScheduleRouter creates a new router
func NewScheduleRouter(scheduleController *controller.ScheduleController) *ScheduleRouter {
	return &ScheduleRouter{
		ScheduleController: scheduleController,
	}
}

// Setup registers scheduling routes
func (r *ScheduleRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	scheduleRoutes := privateRoutes.Group("/schedule", mw.AuthMiddleware())
	scheduleRoutes.POST("/preview", r.ScheduleController.Preview)
	scheduleRoutes.POST("/confirm", r.ScheduleController.Confirm)

	blockRoutes := privateRoutes.Group("/time-blocks", mw.AuthMiddleware())
	blockRoutes.GET("", r.ScheduleController.ListBlocks)
	blockRoutes.POST("", r.ScheduleController.CreateBlock)
	blockRoutes.POST("/check-conflicts", r.ScheduleController.CheckConflicts)
	blockRoutes.DELETE("/:id", r.ScheduleController.DeleteBlock)

	calendarRoutes := privateRoutes.Group("/calendar", mw.AuthMiddleware())
	calendarRoutes.POST("/sync", r.ScheduleController.RequestSync)
}
