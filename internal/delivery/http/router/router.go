// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"courier/internal/delivery/http/router/handler"
	"courier/internal/delivery/ws"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ParcelHandler   *handler.ParcelHandler
	TrackingHandler *handler.TrackingHandler
	Hub             *ws.Hub
}

// router holds all the handlers that need to be registered.
type router struct {
	parcelHandler   *handler.ParcelHandler
	trackingHandler *handler.TrackingHandler
	hub             *ws.Hub
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		parcelHandler:   params.ParcelHandler,
		trackingHandler: params.TrackingHandler,
		hub:             params.Hub,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Realtime feed for agents, recipients and dashboards
	e.GET("/ws", r.hub.HandleConnection)

	// Parcel lifecycle routes
	parcelGroup := e.Group("/parcels")
	{
		parcelGroup.POST("", r.parcelHandler.CreateParcel)
		parcelGroup.GET("", r.trackingHandler.ActiveParcels)
		parcelGroup.GET("/:id", r.parcelHandler.GetParcel)
		parcelGroup.PUT("/:id/agent", r.parcelHandler.AssignAgent)
		parcelGroup.PUT("/:id/status", r.parcelHandler.Transition)
		parcelGroup.PUT("/:id/location", r.parcelHandler.UpdateLocation)
		parcelGroup.POST("/:id/otp", r.parcelHandler.RequestOtp)
		parcelGroup.POST("/:id/otp/confirm", r.parcelHandler.ConfirmOtp)
	}

	// Public tracking routes keyed by tracking code
	trackingGroup := e.Group("/tracking")
	{
		trackingGroup.GET("/:code", r.trackingHandler.TrackParcel)
		trackingGroup.GET("/:code/qrcode", r.trackingHandler.TrackingQR)
	}

	// Agent and dashboard read routes
	e.GET("/agents/:id/status", r.trackingHandler.AgentStatus)
	e.GET("/dashboard/summary", r.trackingHandler.StatusSummary)
}
