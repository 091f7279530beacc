package controller

import (
	"time"

	"dagplanner-api/core/constants"
	"dagplanner-api/core/controller"
	"dagplanner-api/core/errors"
	"dagplanner-api/core/utils"
	"dagplanner-api/modules/calendar/dto"
	"dagplanner-api/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CalendarController handles calendar connection HTTP requests
type CalendarController struct {
	controller.BaseController
	CalendarService service.CalendarService
}

func NewCalendarController(svc service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController:  controller.NewBaseController(),
		CalendarService: svc,
	}
}

func (c *CalendarController) getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
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

// ConnectGoogle handles POST /calendar/connections/google
// @Summary Google Agenda koppelen
// @Description Slaat de tokens uit de OAuth-flow op en activeert de koppeling
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ConnectGoogleRequest true "OAuth-tokens"
// @Success 200 {object} dto.CalendarConnectionResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/connections/google [post]
func (c *CalendarController) ConnectGoogle(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.ConnectGoogleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.AccessToken == "" || req.RefreshToken == "" || req.CalendarEmail == "" {
		return c.BadRequest(errors.ErrInvalidInput, "access_token, refresh_token and calendar_email are required")
	}

	expiresAt, err := time.Parse(time.RFC3339, req.TokenExpiresAt)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "token_expires_at must be RFC3339 formatted")
	}

	conn, err := c.CalendarService.SaveGoogleConnection(ctx.Request().Context(), userID,
		req.AccessToken, req.RefreshToken, expiresAt, req.CalendarEmail)
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInternalServer, "Failed to save calendar connection", err))
	}

	resp := dto.CalendarConnectionResponse{
		ID:            conn.ID.String(),
		Provider:      conn.Provider,
		CalendarEmail: conn.CalendarEmail,
		IsActive:      conn.IsActive,
		ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
	}
	return c.SuccessResponse(ctx, resp, "Calendar connected")
}

// GetConnections handles GET /calendar/connections
// @Summary Agendakoppelingen ophalen
// @Description Haalt alle gekoppelde externe agenda's van de gebruiker op
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.CalendarConnectionListResponse
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/connections [get]
func (c *CalendarController) GetConnections(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	connections, appErr := c.CalendarService.GetConnections(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.CalendarConnectionListResponse{Connections: connections}, "Success")
}

// Disconnect handles DELETE /calendar/connections/:provider
// @Summary Agendakoppeling verwijderen
// @Description Verbreekt de koppeling met een externe agenda
// @Tags Calendar
// @Security BearerAuth
// @Param provider path string true "Provider (google)"
// @Success 200 {object} controller.SuccessResponse
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/connections/{provider} [delete]
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	provider := ctx.Param("provider")
	if provider == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Provider is required")
	}

	if appErr := c.CalendarService.DisconnectCalendar(ctx.Request().Context(), userID, provider); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Calendar disconnected")
}

// GetFreeBusy handles GET /calendar/free-busy
// @Summary Beschikbaarheid ophalen
// @Description Haalt de drukke periodes uit de externe agenda op voor een tijdsbereik
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param start query string true "Start (RFC3339)"
// @Param end query string true "Einde (RFC3339)"
// @Success 200 {object} dto.FreeBusyResponse
// @Failure 400 {object} errors.AppError
// @Router /private/calendar/free-busy [get]
func (c *CalendarController) GetFreeBusy(ctx echo.Context) error {
	userID, err := c.getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	start, err := time.Parse(time.RFC3339, ctx.QueryParam("start"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "start must be RFC3339 formatted")
	}
	end, err := time.Parse(time.RFC3339, ctx.QueryParam("end"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "end must be RFC3339 formatted")
	}
	if !start.Before(end) {
		return c.BadRequest(errors.ErrInvalidInput, "start must be before end")
	}

	result, appErr := c.CalendarService.GetFreeBusy(ctx.Request().Context(), userID, start, end)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
