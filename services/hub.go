package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	EventQuestionCreated = "question_created"
	EventQuestionUpdated = "question_updated"
	EventQuestionDeleted = "question_deleted"
)

// Hub fans question change events out to connected admin dashboards.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
	userID uint
	email  string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client registered: %s (user %d: %s) - Total clients: %d", client.id, client.userID, client.email, total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client unregistered: %s (user %d: %s) - Total clients: %d", client.id, client.userID, client.email, len(h.clients))
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastQuestionEvent sends {type, payload} to every connected client.
// Clients whose send buffer is full are dropped.
func (h *Hub) BroadcastQuestionEvent(eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", eventType, err)
		return
	}

	h.mutex.Lock()
	sent := 0
	for client := range h.clients {
		select {
		case client.send <- data:
			sent++
		default:
			log.Printf("Client %s (user %d) send buffer full, closing connection", client.id, client.userID)
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()

	log.Printf("Broadcast %s to %d clients", eventType, sent)
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) RegisterClient(conn *websocket.Conn, userID uint, email string) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
		userID: userID,
		email:  email,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.hub.mutex.RLock()
		if c.hub.clients[c] {
			select {
			case c.send <- data:
			default:
			}
		}
		c.hub.mutex.RUnlock()

	default:
		log.Printf("Unknown message type: %s from client %s (user %d)", msg.Type, c.id, c.userID)
	}
}
