package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
)

// ClientMessage tin nhắn từ client: đăng ký/huỷ nhận cảnh báo theo tỉnh
type ClientMessage struct {
	Type      string   `json:"type"` // subscribe, unsubscribe
	Provinces []string `json:"provinces"`
}

// AlertPayload nội dung cảnh báo đẩy xuống client
type AlertPayload struct {
	Type        string  `json:"type"` // salinity_alert
	AlertID     uint    `json:"alert_id"`
	StationID   uint    `json:"station_id"`
	StationName string  `json:"station_name"`
	Province    string  `json:"province"`
	Level       string  `json:"level"`
	Salinity    float64 `json:"salinity"`
	Message     string  `json:"message"`
}

// Client một kết nối WebSocket của người dùng
type Client struct {
	Hub       *Hub
	Conn      *Conn
	UserID    uint
	Send      chan []byte
	Provinces map[string]bool // tỉnh đang theo dõi; rỗng = nhận tất cả
	mu        sync.RWMutex

	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

type broadcastMessage struct {
	Province string
	Message  []byte
}

// Hub quản lý các kết nối WebSocket nhận cảnh báo độ mặn
type Hub struct {
	// UserID -> []*Client (hỗ trợ nhiều thiết bị)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
	}
}

// Run vòng lặp chính của Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				// Unregister có thể tới hai lần cho cùng một client (đồng thời từ
				// ReadPump và nhánh Send đầy); chỉ đóng kênh khi thật sự gỡ được
				removed = len(newList) != len(clientList)

				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}

				if removed {
					close(client.Send)
				}
			}
			h.mu.Unlock()
			if removed {
				logger.Info("WebSocket client unregistered", map[string]interface{}{
					"user_id": client.UserID,
				})
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			for userID, clientList := range h.clients {
				for _, client := range clientList {
					if !client.wantsProvince(message.Province) {
						continue
					}

					select {
					case client.Send <- message.Message:
					default:
						// Send đầy: ngắt kết nối để tránh nghẽn hub
						go h.Unregister(client)
						logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
							"user_id": userID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// wantsProvince client nhận cảnh báo của tỉnh này không
// (chưa đăng ký tỉnh nào = nhận tất cả)
func (c *Client) wantsProvince(province string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.Provinces) == 0 {
		return true
	}
	return c.Provinces[province]
}

// BroadcastAlert đẩy một cảnh báo độ mặn tới các client theo dõi tỉnh liên quan
func (h *Hub) BroadcastAlert(alert *model.SalinityAlert) {
	payload := AlertPayload{
		Type:        "salinity_alert",
		AlertID:     alert.ID,
		StationID:   alert.StationID,
		StationName: alert.Station.Name,
		Province:    alert.Station.Province,
		Level:       string(alert.Level),
		Salinity:    alert.Salinity,
		Message:     alert.Message,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal alert payload", err, nil)
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{Province: alert.Station.Province, Message: data}:
	default:
		// kênh đầy: chấp nhận rơi cảnh báo, bản ghi vẫn còn trong DB
		logger.Warn("Broadcast channel full, alert dropped", map[string]interface{}{
			"alert_id": alert.ID,
		})
	}
}

// Register đăng ký client mới
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister gỡ client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline người dùng có phiên kết nối nào không
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage xử lý tin nhắn từ client (đăng ký tỉnh theo dõi)
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	switch msg.Type {
	case "subscribe":
		client.mu.Lock()
		for _, p := range msg.Provinces {
			client.Provinces[p] = true
		}
		client.mu.Unlock()
		logger.Debug("Client subscribed to provinces", map[string]interface{}{
			"user_id":   client.UserID,
			"provinces": msg.Provinces,
		})

	case "unsubscribe":
		client.mu.Lock()
		for _, p := range msg.Provinces {
			delete(client.Provinces, p)
		}
		client.mu.Unlock()
	}
}
