// Package ws carries the websocket surface of the realtime tracking feed.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"courier/internal/realtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Hub upgrades connections and tracks them for shutdown. Topic membership
// itself lives in the realtime registry; the hub only owns the sockets.
type Hub struct {
	router   *realtime.EventRouter
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// HubParams holds dependencies for the Hub, injected by Fx.
type HubParams struct {
	fx.In
	fx.Lifecycle

	Router *realtime.EventRouter
	Logger *slog.Logger
}

// NewHub creates the websocket hub and hooks connection teardown into the
// application lifecycle.
func NewHub(params HubParams) *Hub {
	hub := &Hub{
		router: params.Router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from a separate tracking frontend.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  params.Logger,
		clients: make(map[*Client]struct{}),
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			hub.closeAll()

			return nil
		},
	})

	return hub
}

// HandleConnection upgrades an HTTP request to a websocket connection. A
// userId query parameter subscribes the connection to its direct reply topic.
func (h *Hub) HandleConnection(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}

	client := &Client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan realtime.Event, sendBufferSize),
		done: make(chan struct{}),
	}

	userID := c.QueryParam("userId")

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.router.AttachConnection(client, userID)

	h.logger.Info("websocket connected",
		slog.String("client", client.id),
		slog.String("userId", userID),
	)

	go client.writePump()
	go client.readPump()

	return nil
}

// drop removes a disconnected client from the hub and every topic.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	h.router.DetachConnection(client)

	h.logger.Info("websocket disconnected",
		slog.String("client", client.id),
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}
