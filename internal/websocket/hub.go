package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"smartair-backend/internal/models"
)

const (
	eventsChannel = "smartair:reservation_events"
	writeTimeout  = 5 * time.Second
	sendBuffer    = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one admin page. Only its writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans reservation events out to connected admin pages. With a Redis
// client, events travel over pub/sub so every instance sees every change.
type Hub struct {
	mu          sync.Mutex
	clients     map[*client]struct{}
	redisClient *redis.Client
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		clients:     make(map[*client]struct{}),
		redisClient: redisClient,
	}
}

// Run relays pub/sub messages until ctx is done. It returns immediately when
// the hub has no Redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.redisClient == nil {
		return
	}

	pubsub := h.redisClient.Subscribe(ctx, eventsChannel)
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
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) Publish(ctx context.Context, event models.ReservationEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket: failed to encode event: %v", err)
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, eventsChannel, string(data)).Err(); err != nil {
			log.Printf("websocket: failed to publish event: %v", err)
		}
		return
	}
	h.broadcast(data)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go c.writePump()

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	log.Printf("WebSocket connected (total: %d)", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	log.Printf("WebSocket disconnected (total: %d)", len(h.clients))
}

// broadcast never blocks on a client. One whose buffer is full is dropped.
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			close(c.send)
			log.Printf("WebSocket dropped slow client (total: %d)", len(h.clients))
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
