package handler

import (
	"log/slog"
	"net/http"

	"courier/internal/delivery/http/response"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TrackingHandlerParams holds dependencies for TrackingHandler, injected by Fx.
type TrackingHandlerParams struct {
	fx.In

	TrackingUC usecase.TrackingUsecase
	Logger     *slog.Logger
}

// TrackingHandler holds dependencies for read-side tracking handlers
type TrackingHandler struct {
	trackingUC usecase.TrackingUsecase
	logger     *slog.Logger
}

// NewTrackingHandler is the constructor for TrackingHandler
func NewTrackingHandler(params TrackingHandlerParams) *TrackingHandler {
	return &TrackingHandler{
		trackingUC: params.TrackingUC,
		logger:     params.Logger,
	}
}

// TrackParcel handles looking up a parcel by its public tracking code
func (h *TrackingHandler) TrackParcel(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_CODE", "Tracking code is required")
	}

	parcel, err := h.trackingUC.GetParcelByTrackingCode(c.Request().Context(), code)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Parcel retrieved successfully")
}

// TrackingQR handles rendering the tracking QR code as a PNG image
func (h *TrackingHandler) TrackingQR(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_CODE", "Tracking code is required")
	}

	png, err := h.trackingUC.GetTrackingQR(c.Request().Context(), code)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// AgentStatus handles reporting an agent's last known position and freshness
func (h *TrackingHandler) AgentStatus(c echo.Context) error {
	agentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid agent ID")
	}

	status, err := h.trackingUC.GetAgentStatus(c.Request().Context(), agentID.String())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, status, "Agent status retrieved successfully")
}

// ActiveParcels handles listing all parcels still in flight
func (h *TrackingHandler) ActiveParcels(c echo.Context) error {
	parcels, err := h.trackingUC.ListActiveParcels(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcels, "Active parcels retrieved successfully")
}

// StatusSummary handles the dashboard count-by-status rollup
func (h *TrackingHandler) StatusSummary(c echo.Context) error {
	summary, err := h.trackingUC.GetStatusSummary(c.Request().Context())
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, summary, "Status summary retrieved successfully")
}

// HealthCheck provides a basic health check endpoint
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

// handleAppError handles application errors
func (h *TrackingHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
