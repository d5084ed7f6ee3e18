package handler

import (
	"log/slog"
	"net/http"

	"courier/internal/delivery/http/response"
	"courier/internal/domain/entity"
	domainerrors "courier/internal/domain/errors"
	"courier/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ParcelHandlerParams holds dependencies for ParcelHandler, injected by Fx.
type ParcelHandlerParams struct {
	fx.In

	ParcelUC usecase.ParcelUsecase
	Logger   *slog.Logger
}

// ParcelHandler holds dependencies for parcel lifecycle handlers
type ParcelHandler struct {
	parcelUC usecase.ParcelUsecase
	logger   *slog.Logger
}

// NewParcelHandler is the constructor for ParcelHandler
func NewParcelHandler(params ParcelHandlerParams) *ParcelHandler {
	return &ParcelHandler{
		parcelUC: params.ParcelUC,
		logger:   params.Logger,
	}
}

// CreateParcelRequest represents the request body for creating a parcel
type CreateParcelRequest struct {
	TrackingCode    string `json:"tracking_code,omitempty"`
	PickupAddress   string `json:"pickup_address" validate:"required"`
	DeliveryAddress string `json:"delivery_address" validate:"required"`
	RecipientToken  string `json:"recipient_token,omitempty"`
}

// AssignAgentRequest represents the request body for assigning a delivery agent
type AssignAgentRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

// TransitionRequest represents the request body for advancing parcel status
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateLocationRequest represents the request body for an agent position report
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Timestamp int64   `json:"timestamp" validate:"required,gt=0"`
}

// ConfirmOtpRequest represents the request body for confirming a delivery OTP
type ConfirmOtpRequest struct {
	Code string `json:"code" validate:"required"`
}

// CreateParcel handles registering a new parcel
func (h *ParcelHandler) CreateParcel(c echo.Context) error {
	var req CreateParcelRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid parcel input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.CreateParcelInput{
		TrackingCode:    req.TrackingCode,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		RecipientToken:  req.RecipientToken,
	}

	parcel, err := h.parcelUC.CreateParcel(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, parcel, "Parcel created successfully")
}

// GetParcel handles retrieving a parcel by its ID
func (h *ParcelHandler) GetParcel(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	parcel, err := h.parcelUC.GetParcel(c.Request().Context(), parcelID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Parcel retrieved successfully")
}

// AssignAgent handles assigning or reassigning a delivery agent
func (h *ParcelHandler) AssignAgent(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	var req AssignAgentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid assignment input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	agentID, err := uuid.Parse(req.AgentID)
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid agent ID")
	}

	parcel, err := h.parcelUC.AssignAgent(c.Request().Context(), parcelID, agentID)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Agent assigned successfully")
}

// Transition handles advancing a parcel along its delivery lifecycle
func (h *ParcelHandler) Transition(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	var req TransitionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid transition input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	parcel, err := h.parcelUC.Transition(c.Request().Context(), parcelID, entity.Status(req.Status))
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Parcel status updated successfully")
}

// UpdateLocation handles an agent position report for a parcel in flight
func (h *ParcelHandler) UpdateLocation(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input := &usecase.UpdateParcelLocationInput{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Timestamp: req.Timestamp,
	}

	parcel, err := h.parcelUC.UpdateParcelLocation(c.Request().Context(), parcelID, input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Parcel location updated successfully")
}

// RequestOtp handles issuing a delivery confirmation OTP to the recipient
func (h *ParcelHandler) RequestOtp(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	if _, err := h.parcelUC.RequestDeliveryOtp(c.Request().Context(), parcelID); err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "OTP sent to recipient"}, "OTP issued successfully")
}

// ConfirmOtp handles verifying the delivery OTP and closing the parcel
func (h *ParcelHandler) ConfirmOtp(c echo.Context) error {
	parcelID, err := h.getParcelID(c)
	if err != nil {
		return err
	}

	var req ConfirmOtpRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid OTP input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	parcel, err := h.parcelUC.ConfirmDeliveryOtp(c.Request().Context(), parcelID, req.Code)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, parcel, "Parcel delivered successfully")
}

// getParcelID extracts the parcel ID from the path
func (h *ParcelHandler) getParcelID(c echo.Context) (uuid.UUID, error) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, response.BadRequest(c, "INVALID_ID", "Invalid parcel ID")
	}

	return parcelID, nil
}

// handleAppError handles application errors
func (h *ParcelHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
