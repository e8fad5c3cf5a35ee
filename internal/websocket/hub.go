// internal/websocket/hub.go
package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message — кадр, уходящий клиенту.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client — одно подключение пользователя (у пользователя их может быть
// несколько: телефон и веб).
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan Message
}

// Hub раздаёт сообщения по подключённым пользователям.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	done       chan struct{}
	mutex      sync.RWMutex
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if conns, exists := h.clients[client.UserID]; exists {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.Send)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for _, conns := range h.clients {
				for client := range conns {
					select {
					case client.Send <- message:
					default:
						// Медленный клиент, пропускаем кадр
					}
				}
			}
			h.mutex.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Register и Unregister не должны виснуть после Shutdown: цикл Run уже
// завершён и каналы никто не читает, а pump-горутины закрывающихся
// соединений всё ещё зовут Unregister.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("websocket: broadcast queue full, dropping message")
	}
}

// SendToUser доставляет сообщение всем подключениям пользователя.
// Отсутствие подключений не ошибка: push-канал подстрахует.
func (h *Hub) SendToUser(userID string, message Message) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- message:
		default:
		}
	}
}

func (h *Hub) GetConnectionsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}

func (h *Hub) Shutdown() {
	close(h.done)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			if client.Conn == nil {
				continue
			}
			client.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(time.Second))
			client.Conn.Close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
