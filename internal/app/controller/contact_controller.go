package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/nongdanviet/nongdanviet-backend/pkg/mailer"
)

// ContactController chuyển tiếp form liên hệ tới hộp thư hỗ trợ
type ContactController struct {
	mailer *mailer.Mailer
}

func NewContactController(m *mailer.Mailer) *ContactController {
	return &ContactController{mailer: m}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required,min=10,max=2000"`
}

// SendMessage gửi nội dung liên hệ
// POST /api/v1/contact
func (ctrl *ContactController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Thông tin liên hệ không hợp lệ")
		return
	}

	if err := ctrl.mailer.SendContactMessage(req.Name, req.Email, req.Message); err != nil {
		log.Error("Failed to forward contact message", err, map[string]interface{}{
			"sender": req.Email,
		})
		apperrors.InternalError(c, "Không gửi được tin nhắn. Vui lòng thử lại sau")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã gửi tin nhắn. Chúng tôi sẽ phản hồi sớm nhất",
	})
}
