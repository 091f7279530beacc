package calendar

import (
	"dagplanner-api/core/cache"
	"dagplanner-api/core/database"
	"dagplanner-api/core/middleware"
	"dagplanner-api/modules/calendar/controller"
	"dagplanner-api/modules/calendar/repository"
	"dagplanner-api/modules/calendar/router"
	"dagplanner-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the calendar module and registers routes. The returned
// service doubles as the scheduler's external busy provider and the sync
// worker's push target.
func Init(e *echo.Echo, db database.IDatabase, c *cache.Cache, mw *middleware.Middleware) service.CalendarService {
	repo := repository.NewCalendarRepository(db)
	svc := service.NewCalendarService(repo, c)
	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
