package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/nongdanviet/nongdanviet-backend/internal/realtime"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS đã được kiểm soát ở tầng middleware
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketController kết nối nhận cảnh báo độ mặn thời gian thực
type WebSocketController struct {
	hub *realtime.Hub
}

func NewWebSocketController(hub *realtime.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// Connect nâng cấp HTTP lên WebSocket
// GET /api/v1/ws/alerts?token=<jwt>
func (ctrl *WebSocketController) Connect(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Failed to upgrade WebSocket connection", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &realtime.Client{
		Hub:           ctrl.hub,
		Conn:          &realtime.Conn{Conn: conn},
		UserID:        userID,
		Send:          make(chan []byte, 256),
		Provinces:     make(map[string]bool),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Status trạng thái kết nối cảnh báo của người dùng hiện tại
// GET /api/v1/ws/status
func (ctrl *WebSocketController) Status(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected": ctrl.hub.IsUserOnline(userID),
	})
}
