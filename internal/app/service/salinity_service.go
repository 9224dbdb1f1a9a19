package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/nongdanviet/nongdanviet-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrStationNotFound = errors.New("salinity station not found")
	ErrNoReading       = errors.New("station has no readings yet")
)

// SalinityThresholds ngưỡng phân loại độ mặn (g/L)
type SalinityThresholds struct {
	Watch  float64 // từ mức này trở lên: theo dõi
	Danger float64 // từ mức này trở lên: nguy hiểm
}

// AlertBroadcaster đẩy cảnh báo thời gian thực tới client đang kết nối
type AlertBroadcaster interface {
	BroadcastAlert(alert *model.SalinityAlert)
}

type SalinityService interface {
	CreateStation(station *model.SalinityStation) error
	ListStations(province string) ([]model.SalinityStation, error)
	RecordReading(stationID uint, salinity float64, measuredAt time.Time) (*model.SalinityReading, error)
	GetLatestReading(ctx context.Context, stationID uint) (*model.SalinityReading, error)
	GetHistory(stationID uint, from, to time.Time) ([]model.SalinityReading, error)
	GetRecentAlerts(limit int) ([]model.SalinityAlert, error)
	Classify(salinity float64) model.SalinityLevel
	CheckStations() error
}

type salinityService struct {
	salinityRepo repository.SalinityRepository
	thresholds   SalinityThresholds
	broadcaster  AlertBroadcaster
}

func NewSalinityService(
	salinityRepo repository.SalinityRepository,
	thresholds SalinityThresholds,
	broadcaster AlertBroadcaster,
) SalinityService {
	return &salinityService{
		salinityRepo: salinityRepo,
		thresholds:   thresholds,
		broadcaster:  broadcaster,
	}
}

// Classify phân loại một chỉ số độ mặn theo ngưỡng cấu hình
func (s *salinityService) Classify(salinity float64) model.SalinityLevel {
	switch {
	case salinity >= s.thresholds.Danger:
		return model.SalinityLevelDanger
	case salinity >= s.thresholds.Watch:
		return model.SalinityLevelWatch
	default:
		return model.SalinityLevelSafe
	}
}

func (s *salinityService) CreateStation(station *model.SalinityStation) error {
	if err := s.salinityRepo.CreateStation(station); err != nil {
		logger.Error("Failed to create salinity station", err, map[string]interface{}{
			"code": station.Code,
		})
		return err
	}

	logger.Info("Salinity station created", map[string]interface{}{
		"station_id": station.ID,
		"code":       station.Code,
	})
	return nil
}

func (s *salinityService) ListStations(province string) ([]model.SalinityStation, error) {
	return s.salinityRepo.FindStations(province)
}

// RecordReading ghi nhận một lần đo mới; nếu mức cảnh báo xấu đi so với
// lần đo trước thì phát cảnh báo cho nông dân vùng liên quan
func (s *salinityService) RecordReading(stationID uint, salinity float64, measuredAt time.Time) (*model.SalinityReading, error) {
	station, err := s.salinityRepo.FindStationByID(stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}

	level := s.Classify(salinity)

	previous, err := s.salinityRepo.FindLatestReading(stationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reading := &model.SalinityReading{
		StationID:  stationID,
		Salinity:   salinity,
		MeasuredAt: measuredAt,
		Level:      level,
	}
	if err := s.salinityRepo.CreateReading(reading); err != nil {
		logger.Error("Failed to record salinity reading", err, map[string]interface{}{
			"station_id": stationID,
		})
		return nil, err
	}

	// Cache chỉ số mới nhất; lỗi cache không chặn nghiệp vụ
	if redis.GetClient() != nil {
		if err := redis.CacheLatestReading(context.Background(), stationID, reading); err != nil {
			logger.Warn("Failed to cache latest reading", map[string]interface{}{
				"station_id": stationID,
				"error":      err.Error(),
			})
		}
	}

	if worsened(previousLevel(previous), level) {
		if err := s.raiseAlert(station, reading); err != nil {
			logger.Error("Failed to raise salinity alert", err, map[string]interface{}{
				"station_id": stationID,
			})
		}
	}

	logger.Info("Salinity reading recorded", map[string]interface{}{
		"station_id": stationID,
		"salinity":   salinity,
		"level":      level,
	})

	return reading, nil
}

func previousLevel(reading *model.SalinityReading) model.SalinityLevel {
	if reading == nil {
		return model.SalinityLevelSafe
	}
	return reading.Level
}

// worsened mức sau nghiêm trọng hơn mức trước
func worsened(before, after model.SalinityLevel) bool {
	rank := map[model.SalinityLevel]int{
		model.SalinityLevelSafe:   0,
		model.SalinityLevelWatch:  1,
		model.SalinityLevelDanger: 2,
	}
	return rank[after] > rank[before]
}

func (s *salinityService) raiseAlert(station *model.SalinityStation, reading *model.SalinityReading) error {
	var message string
	switch reading.Level {
	case model.SalinityLevelDanger:
		message = fmt.Sprintf(
			"Cảnh báo: độ mặn tại %s đã lên %.2f g/L. Bà con ngừng lấy nước tưới, đóng cống giữ ngọt.",
			station.Name, reading.Salinity,
		)
	case model.SalinityLevelWatch:
		message = fmt.Sprintf(
			"Lưu ý: độ mặn tại %s đạt %.2f g/L. Bà con hạn chế tưới, theo dõi bản tin hằng ngày.",
			station.Name, reading.Salinity,
		)
	default:
		return nil
	}

	alert := &model.SalinityAlert{
		StationID: station.ID,
		Level:     reading.Level,
		Salinity:  reading.Salinity,
		Message:   message,
	}
	if err := s.salinityRepo.CreateAlert(alert); err != nil {
		return err
	}

	// gắn thông tin trạm để phía nhận lọc theo tỉnh
	alert.Station = *station

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAlert(alert)
	}

	logger.Info("Salinity alert raised", map[string]interface{}{
		"station_id": station.ID,
		"level":      alert.Level,
		"salinity":   alert.Salinity,
	})
	return nil
}

// GetLatestReading đọc chỉ số mới nhất, ưu tiên cache
func (s *salinityService) GetLatestReading(ctx context.Context, stationID uint) (*model.SalinityReading, error) {
	if redis.GetClient() != nil {
		var cached model.SalinityReading
		hit, err := redis.GetLatestReading(ctx, stationID, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	reading, err := s.salinityRepo.FindLatestReading(stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoReading
		}
		return nil, err
	}

	if redis.GetClient() != nil {
		if err := redis.CacheLatestReading(ctx, stationID, reading); err != nil {
			logger.Warn("Failed to backfill latest reading cache", map[string]interface{}{
				"station_id": stationID,
				"error":      err.Error(),
			})
		}
	}

	return reading, nil
}

func (s *salinityService) GetHistory(stationID uint, from, to time.Time) ([]model.SalinityReading, error) {
	if _, err := s.salinityRepo.FindStationByID(stationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return s.salinityRepo.FindReadings(stationID, from, to)
}

func (s *salinityService) GetRecentAlerts(limit int) ([]model.SalinityAlert, error) {
	return s.salinityRepo.FindRecentAlerts(limit)
}

// CheckStations quét toàn bộ trạm và phát lại cảnh báo cho trạm đang ở
// mức nguy hiểm (chạy định kỳ qua scheduler)
func (s *salinityService) CheckStations() error {
	stations, err := s.salinityRepo.FindStations("")
	if err != nil {
		return err
	}

	for _, station := range stations {
		reading, err := s.salinityRepo.FindLatestReading(station.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}

		if reading.Level == model.SalinityLevelDanger {
			if err := s.raiseAlert(&station, reading); err != nil {
				logger.Error("Failed to re-raise danger alert", err, map[string]interface{}{
					"station_id": station.ID,
				})
			}
		}
	}

	return nil
}
