package schedule

import (
	"dagplanner-api/core/database"
	"dagplanner-api/core/middleware"
	"dagplanner-api/modules/schedule/controller"
	"dagplanner-api/modules/schedule/repository"
	"dagplanner-api/modules/schedule/router"
	"dagplanner-api/modules/schedule/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the schedule module and registers routes. The busy
// provider and sync enqueuer are supplied by the calendar and sync modules.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, busyProvider service.ExternalBusyProvider, enqueuer service.SyncEnqueuer) service.ScheduleServiceInterface {
	repo := repository.NewScheduleRepository(db)
	svc := service.NewScheduleService(repo, busyProvider, enqueuer)
	ctrl := controller.NewScheduleController(svc)
	rtr := router.NewScheduleRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
