package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/nongdanviet/nongdanviet-backend/config"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
)

// Mailer gửi email qua SMTP (đặt lại mật khẩu, form liên hệ)
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send sends a plain-text email to a single recipient
func (m *Mailer) Send(to, subject, body string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		// SMTP chưa cấu hình: chỉ ghi log, không chặn luồng nghiệp vụ
		logger.Warn("SMTP not configured, skipping email send", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body,
	))

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// SendPasswordReset gửi email chứa liên kết đặt lại mật khẩu
func (m *Mailer) SendPasswordReset(to, token string) error {
	subject := "NongDanViet - Đặt lại mật khẩu"
	body := fmt.Sprintf(
		"Xin chào,\n\nBạn vừa yêu cầu đặt lại mật khẩu. Mã đặt lại của bạn là:\n\n%s\n\nMã có hiệu lực trong 1 giờ. Nếu không phải bạn yêu cầu, vui lòng bỏ qua email này.\n",
		token,
	)
	return m.Send(to, subject, body)
}

// SendContactMessage chuyển tiếp nội dung form liên hệ tới hộp thư hỗ trợ
func (m *Mailer) SendContactMessage(senderName, senderEmail, message string) error {
	subject := fmt.Sprintf("NongDanViet - Liên hệ từ %s", senderName)
	body := fmt.Sprintf("Người gửi: %s <%s>\n\n%s\n", senderName, senderEmail, message)
	return m.Send(m.cfg.ContactRecipient, subject, body)
}
