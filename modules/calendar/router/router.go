package router

import (
	"dagplanner-api/core/middleware"
	"dagplanner-api/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

// CalendarRouter handles calendar routes
type CalendarRouter struct {
	CalendarController *controller.CalendarController
}

func NewCalendarRouter(calendarController *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{CalendarController: calendarController}
}

// Setup registers calendar routes
func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	calendarRoutes := privateRoutes.Group("/calendar", mw.AuthMiddleware())
	calendarRoutes.POST("/connections/google", r.CalendarController.ConnectGoogle)
	calendarRoutes.GET("/connections", r.CalendarController.GetConnections)
	calendarRoutes.DELETE("/connections/:provider", r.CalendarController.Disconnect)
	calendarRoutes.GET("/free-busy", r.CalendarController.GetFreeBusy)
}
