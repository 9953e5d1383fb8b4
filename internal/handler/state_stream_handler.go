package handler

import (
	"context"
	"encoding/json"

	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/pkg/logger"
	"sales-copilot-be/internal/pkg/serverutils"
	"sales-copilot-be/internal/service"
	internalWS "sales-copilot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StateStreamHandler pushes engine snapshots to websocket clients.
type StateStreamHandler struct {
	engine    service.IChatEngine
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewStateStreamHandler(engine service.IChatEngine, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *StateStreamHandler {
	return &StateStreamHandler{
		engine:    engine,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// Start forwards every published snapshot to the clients of this instance
// until ctx is done. Snapshots are per instance, so they never go through Redis.
func (h *StateStreamHandler) Start(ctx context.Context) error {
	snapshots, err := h.engine.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for snap := range snapshots {
			h.hub.BroadcastLocal(dto.StreamFrame{Type: dto.FrameTypeState, Data: snap.ToResponse()})
		}
		h.logger.Info("StateStream", "Snapshot forwarding stopped", nil)
	}()
	return nil
}

func (h *StateStreamHandler) ServeWs(c *fiber.Ctx) error {
	if h.jwtSecret != "" {
		tokenStr := serverutils.BearerToken(c)
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token (query 'token' or header 'Authorization')")
		}
		if _, err := serverutils.ParseToken(tokenStr, h.jwtSecret); err != nil {
			h.logger.Warn("StateStream", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		initial, err := json.Marshal(dto.StreamFrame{Type: dto.FrameTypeState, Data: h.engine.Snapshot().ToResponse()})
		if err != nil {
			h.logger.Error("StateStream", "Failed to encode initial state", map[string]interface{}{"error": err.Error()})
			initial = nil
		}

		h.logger.Info("StateStream", "Websocket session started", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		internalWS.ServeWs(h.hub, conn, initial)
		h.logger.Info("StateStream", "Websocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
	})(c)
}

func (h *StateStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/copilot/v1/ws", h.ServeWs)
}
