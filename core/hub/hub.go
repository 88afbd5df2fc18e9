package hub

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"RaffleOracle/core/logger"
	"RaffleOracle/core/store/models"
)

type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub fans persisted raffle events out to websocket subscribers.
// Subscribers are read-only; inbound frames are discarded.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan models.Event
	mutex     sync.Mutex
	upgrader  websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan models.Event, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (self *Hub) Run() {
	for event := range self.broadcast {
		msg := wsMessage{Event: event.Name, Data: event.Data}
		self.mutex.Lock()
		for client := range self.clients {
			if err := client.WriteJSON(msg); err != nil {
				client.Close()
				delete(self.clients, client)
			}
		}
		self.mutex.Unlock()
	}
	self.mutex.Lock()
	for client := range self.clients {
		client.Close()
		delete(self.clients, client)
	}
	self.mutex.Unlock()
}

func (self *Hub) Stop() {
	close(self.broadcast)
}

// Notify queues an event for broadcast. Never blocks the caller; when
// the feed is over capacity the event is dropped (it is still persisted
// in the store for indexers to page through).
func (self *Hub) Notify(event models.Event) {
	select {
	case self.broadcast <- event:
	default:
		logger.Error("event feed over capacity - dropped event")
	}
}

func (self *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := self.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	self.mutex.Lock()
	self.clients[conn] = true
	self.mutex.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				self.mutex.Lock()
				delete(self.clients, conn)
				self.mutex.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
