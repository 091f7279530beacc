package controller

import (
	"dagplanner-api/core/constants"
	"dagplanner-api/core/controller"
	"dagplanner-api/core/errors"
	"dagplanner-api/core/utils"
	"dagplanner-api/modules/schedule/dto"
	"dagplanner-api/modules/schedule/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ScheduleController handles scheduling HTTP requests
type ScheduleController struct {
	controller.BaseController
	ScheduleService service.ScheduleServiceInterface
}

// NewScheduleController creates a new controller
func NewScheduleController(svc service.ScheduleServiceInterface) *ScheduleController {
	return &ScheduleController{
		BaseController:  controller.NewBaseController(),
		ScheduleService: svc,
	}
}

// getUserIDFromContext extracts user ID from JWT context
func (c *ScheduleController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.UserID, nil
}

// Preview handles POST /schedule/preview
// @Summary Dagplanning voorvertonen
// @Description Berekent een voorgestelde dagindeling zonder iets op te slaan
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ScheduleRequest true "Activiteiten, datum en opties"
// @Success 200 {object} dto.ScheduleResult
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/schedule/preview [post]
func (c *ScheduleController) Preview(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.ScheduleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.ScheduleService.Preview(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Schedule preview computed")
}

// Confirm handles POST /schedule/confirm
// @Summary Dagplanning bevestigen
// @Description Herberekent de planning en slaat de tijdblokken definitief op
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ScheduleRequest true "Activiteiten, datum en opties"
// @Success 200 {object} dto.ScheduleResult
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/schedule/confirm [post]
func (c *ScheduleController) Confirm(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.ScheduleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.ScheduleService.Confirm(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Schedule committed")
}

// CheckConflicts handles POST /time-blocks/check-conflicts
// @Summary Conflicten controleren
// @Description Controleert handmatige tijdblokken op overlap met bestaande blokken en agenda-afspraken
// @Tags TimeBlocks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CheckConflictsRequest true "Kandidaat-tijdblokken"
// @Success 200 {object} dto.CheckConflictsResponse
// @Failure 400 {object} errors.AppError
// @Router /private/time-blocks/check-conflicts [post]
func (c *ScheduleController) CheckConflicts(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CheckConflictsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.ScheduleService.CheckConflicts(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Conflict check completed")
}

// ListBlocks handles GET /time-blocks
// @Summary Tijdblokken ophalen
// @Description Haalt alle tijdblokken van een dag op
// @Tags TimeBlocks
// @Security BearerAuth
// @Produce json
// @Param date query string true "Datum (YYYY-MM-DD)"
// @Success 200 {object} dto.TimeBlockListResponse
// @Failure 400 {object} errors.AppError
// @Router /private/time-blocks [get]
func (c *ScheduleController) ListBlocks(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	date := ctx.QueryParam("date")
	if date == "" {
		return c.BadRequest(errors.ErrInvalidInput, "date query parameter is required")
	}

	result, appErr := c.ScheduleService.ListBlocks(ctx.Request().Context(), userID, date)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// CreateBlock handles POST /time-blocks
// @Summary Tijdblok handmatig aanmaken
// @Description Maakt een tijdblok aan buiten de automatische planner om
// @Tags TimeBlocks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTimeBlockRequest true "Tijdblok"
// @Success 200 {object} entity.TimeBlock
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/time-blocks [post]
func (c *ScheduleController) CreateBlock(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.CreateTimeBlockRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.ScheduleService.CreateManualBlock(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Time block created")
}

// DeleteBlock handles DELETE /time-blocks/:id
// @Summary Tijdblok verwijderen
// @Description Verwijdert een tijdblok
// @Tags TimeBlocks
// @Security BearerAuth
// @Param id path string true "Tijdblok ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} errors.AppError
// @Router /private/time-blocks/{id} [delete]
func (c *ScheduleController) DeleteBlock(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	blockID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid time block ID")
	}

	if appErr := c.ScheduleService.DeleteBlock(ctx.Request().Context(), userID, blockID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Time block deleted")
}

// RequestSync handles POST /calendar/sync
// @Summary Agenda-synchronisatie starten
// @Description Zet de opgegeven tijdblokken in de wachtrij voor synchronisatie met de externe agenda
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SyncRequest true "Tijdblok IDs"
// @Success 200 {object} dto.SyncResponse
// @Failure 400 {object} errors.AppError
// @Router /private/calendar/sync [post]
func (c *ScheduleController) RequestSync(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.SyncRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.ScheduleService.RequestSync(ctx.Request().Context(), userID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Calendar sync enqueued")
}
