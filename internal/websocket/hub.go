package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"sales-copilot-be/internal/dto"
	"sales-copilot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries frames between instances sharing one Redis.
const ClusterChannel = "cluster_events"

type clusterMessage struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil runs the hub standalone.
	rdb      *redis.Client
	instance string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Id] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.Id})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.Id]; ok && current == client {
		delete(h.clients, client.Id)
		close(client.Send)
		h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.Id})
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastLocal pushes a frame to the clients of this instance only.
func (h *Hub) BroadcastLocal(frame dto.StreamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"type": frame.Type, "error": err.Error()})
		return
	}
	h.deliver(data)
}

// Broadcast pushes a frame to every client of every instance.
func (h *Hub) Broadcast(frame dto.StreamFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"type": frame.Type, "error": err.Error()})
		return
	}
	h.deliver(data)

	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterMessage{Origin: h.instance, Message: data})
	if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
	}
}

// deliver drops clients whose buffer is full; they reconnect and get a fresh state frame.
func (h *Hub) deliver(data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"client_id": client.Id})
		h.remove(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instance {
				continue
			}
			h.deliver(payload.Message)
		}
	}
}
