package scheduler

import (
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SalinityScheduler quét định kỳ các trạm đo và dọn token hết hạn
type SalinityScheduler struct {
	cron            *cron.Cron
	salinityService service.SalinityService
	resetService    service.PasswordResetService
	checkSchedule   string
}

func NewSalinityScheduler(
	salinityService service.SalinityService,
	resetService service.PasswordResetService,
	checkSchedule string,
) *SalinityScheduler {
	return &SalinityScheduler{
		cron:            cron.New(),
		salinityService: salinityService,
		resetService:    resetService,
		checkSchedule:   checkSchedule,
	}
}

// Start đăng ký các job và chạy scheduler
func (s *SalinityScheduler) Start() error {
	// Quét trạm đo theo lịch cấu hình (mặc định 6h sáng hằng ngày,
	// mùa khô nên tăng tần suất qua biến môi trường)
	_, err := s.cron.AddFunc(s.checkSchedule, func() {
		logger.Info("Starting scheduled salinity check", nil)

		if err := s.salinityService.CheckStations(); err != nil {
			logger.Error("Scheduled salinity check failed", err)
			return
		}

		logger.Info("Scheduled salinity check completed", nil)
	})
	if err != nil {
		logger.Error("Failed to add cron job for salinity check", err)
		return err
	}

	// Dọn token đặt lại mật khẩu hết hạn lúc 3h sáng
	_, err = s.cron.AddFunc("0 3 * * *", func() {
		if err := s.resetService.CleanupExpired(); err != nil {
			logger.Error("Failed to clean up expired reset tokens", err)
			return
		}
		logger.Info("Expired reset tokens cleaned up", nil)
	})
	if err != nil {
		logger.Error("Failed to add cron job for token cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Salinity scheduler started", map[string]interface{}{
		"check_schedule": s.checkSchedule,
	})

	return nil
}

// Stop dừng scheduler
func (s *SalinityScheduler) Stop() {
	logger.Info("Stopping salinity scheduler...", nil)
	s.cron.Stop()
	logger.Info("Salinity scheduler stopped", nil)
}
