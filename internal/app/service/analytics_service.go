package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// VerificationStats thống kê hồ sơ xác minh theo trạng thái và loại giấy tờ
type VerificationStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}

type AnalyticsService interface {
	GetVerificationStats() (*VerificationStats, error)
	ExportSalinityHistoryXLSX(stationID uint, from, to time.Time) ([]byte, error)
	ExportSalinityHistoryCSV(stationID uint, from, to time.Time) ([]byte, error)
}

type analyticsService struct {
	verificationRepo repository.VerificationRepository
	salinityRepo     repository.SalinityRepository
}

func NewAnalyticsService(
	verificationRepo repository.VerificationRepository,
	salinityRepo repository.SalinityRepository,
) AnalyticsService {
	return &analyticsService{
		verificationRepo: verificationRepo,
		salinityRepo:     salinityRepo,
	}
}

func (s *analyticsService) GetVerificationStats() (*VerificationStats, error) {
	docs, err := s.verificationRepo.FindAll("")
	if err != nil {
		return nil, err
	}

	stats := &VerificationStats{
		Total:    int64(len(docs)),
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}
	for _, doc := range docs {
		stats.ByStatus[doc.Status]++
		stats.ByType[doc.DocumentType]++
	}
	return stats, nil
}

var salinityExportHeaders = []string{"Trạm", "Mã trạm", "Thời điểm đo", "Độ mặn (g/L)", "Mức cảnh báo"}

func (s *analyticsService) salinityRows(stationID uint, from, to time.Time) (*model.SalinityStation, []model.SalinityReading, error) {
	station, err := s.salinityRepo.FindStationByID(stationID)
	if err != nil {
		return nil, nil, err
	}

	readings, err := s.salinityRepo.FindReadings(stationID, from, to)
	if err != nil {
		return nil, nil, err
	}
	return station, readings, nil
}

// ExportSalinityHistoryXLSX xuất lịch sử đo của một trạm ra file Excel
func (s *analyticsService) ExportSalinityHistoryXLSX(stationID uint, from, to time.Time) ([]byte, error) {
	station, readings, err := s.salinityRows(stationID, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range salinityExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, reading := range readings {
		row := i + 2
		values := []interface{}{
			station.Name,
			station.Code,
			reading.MeasuredAt.Format("2006-01-02 15:04"),
			reading.Salinity,
			string(reading.Level),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write XLSX: %w", err)
	}

	logger.Info("Salinity history exported to XLSX", map[string]interface{}{
		"station_id": stationID,
		"rows":       len(readings),
	})
	return buf.Bytes(), nil
}

// ExportSalinityHistoryCSV xuất lịch sử đo ra CSV (kèm BOM cho Excel tiếng Việt)
func (s *analyticsService) ExportSalinityHistoryCSV(stationID uint, from, to time.Time) ([]byte, error) {
	station, readings, err := s.salinityRows(stationID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	if err := w.Write(salinityExportHeaders); err != nil {
		return nil, err
	}

	for _, reading := range readings {
		record := []string{
			station.Name,
			station.Code,
			reading.MeasuredAt.Format("2006-01-02 15:04"),
			strconv.FormatFloat(reading.Salinity, 'f', 2, 64),
			string(reading.Level),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	logger.Info("Salinity history exported to CSV", map[string]interface{}{
		"station_id": stationID,
		"rows":       len(readings),
	})
	return buf.Bytes(), nil
}
