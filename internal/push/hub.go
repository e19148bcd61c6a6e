// Package push delivers alerts and dashboard snapshots to connected browser
// clients over websockets. Delivery is best-effort: a slow or gone client is
// dropped rather than blocking the broadcast.
package push

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("Websocket client registered: %s", client.conn.RemoteAddr())
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Websocket client unregistered: %s", client.conn.RemoteAddr())
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client send buffer full or closed, drop it.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// RegisterClient adds a new client to the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (h *Hub) broadcastJSON(kind string, payload interface{}) {
	message, err := json.Marshal(envelope{Type: kind, Payload: payload})
	if err != nil {
		log.Printf("Error marshalling %s broadcast: %v", kind, err)
		return
	}
	h.broadcast <- message
}

// Notify implements the alerting sink. The tag carries the sensor ID so the
// receiving platform can collapse duplicate notifications per sensor.
func (h *Hub) Notify(alert models.Alert) {
	h.broadcastJSON("alert", map[string]interface{}{
		"title": alert.Title,
		"body":  alert.Message,
		"tag":   alert.SensorID,
		"alert": alert,
	})
}

// BroadcastSnapshot pushes a freshly computed dashboard snapshot.
func (h *Hub) BroadcastSnapshot(snapshot interface{}) {
	h.broadcastJSON("snapshot", snapshot)
}
