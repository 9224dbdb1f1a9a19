package repository

import (
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"gorm.io/gorm"
)

// SalinityRepository lưu trữ trạm đo, chỉ số và cảnh báo độ mặn
type SalinityRepository interface {
	CreateStation(station *model.SalinityStation) error
	BulkCreateStations(stations []model.SalinityStation, batchSize int) error
	FindStationByID(id uint) (*model.SalinityStation, error)
	FindStationByCode(code string) (*model.SalinityStation, error)
	FindStations(province string) ([]model.SalinityStation, error)

	CreateReading(reading *model.SalinityReading) error
	FindLatestReading(stationID uint) (*model.SalinityReading, error)
	FindReadings(stationID uint, from, to time.Time) ([]model.SalinityReading, error)

	CreateAlert(alert *model.SalinityAlert) error
	FindRecentAlerts(limit int) ([]model.SalinityAlert, error)
}

type salinityRepository struct {
	db *gorm.DB
}

func NewSalinityRepository(db *gorm.DB) SalinityRepository {
	return &salinityRepository{db: db}
}

func (r *salinityRepository) CreateStation(station *model.SalinityStation) error {
	return r.db.Create(station).Error
}

func (r *salinityRepository) BulkCreateStations(stations []model.SalinityStation, batchSize int) error {
	return r.db.CreateInBatches(stations, batchSize).Error
}

func (r *salinityRepository) FindStationByID(id uint) (*model.SalinityStation, error) {
	var station model.SalinityStation
	if err := r.db.First(&station, id).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *salinityRepository) FindStationByCode(code string) (*model.SalinityStation, error) {
	var station model.SalinityStation
	if err := r.db.Where("code = ?", code).First(&station).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

// FindStations liệt kê trạm; province rỗng nghĩa là tất cả
func (r *salinityRepository) FindStations(province string) ([]model.SalinityStation, error) {
	var stations []model.SalinityStation

	query := r.db.Order("province ASC, name ASC")
	if province != "" {
		query = query.Where("province = ?", province)
	}

	if err := query.Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *salinityRepository) CreateReading(reading *model.SalinityReading) error {
	return r.db.Create(reading).Error
}

func (r *salinityRepository) FindLatestReading(stationID uint) (*model.SalinityReading, error) {
	var reading model.SalinityReading
	err := r.db.Where("station_id = ?", stationID).
		Order("measured_at DESC, id DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *salinityRepository) FindReadings(stationID uint, from, to time.Time) ([]model.SalinityReading, error) {
	var readings []model.SalinityReading
	err := r.db.
		Where("station_id = ? AND measured_at BETWEEN ? AND ?", stationID, from, to).
		Order("measured_at ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *salinityRepository) CreateAlert(alert *model.SalinityAlert) error {
	return r.db.Create(alert).Error
}

func (r *salinityRepository) FindRecentAlerts(limit int) ([]model.SalinityAlert, error) {
	var alerts []model.SalinityAlert
	query := r.db.Preload("Station").Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}
