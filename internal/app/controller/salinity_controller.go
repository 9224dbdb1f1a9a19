package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
)

// SalinityController tra cứu độ mặn và cảnh báo cho nông dân miền Tây
type SalinityController struct {
	salinityService service.SalinityService
}

func NewSalinityController(salinityService service.SalinityService) *SalinityController {
	return &SalinityController{salinityService: salinityService}
}

type CreateStationRequest struct {
	Name      string   `json:"name" binding:"required"`
	Code      string   `json:"code" binding:"required"`
	River     string   `json:"river"`
	Province  string   `json:"province" binding:"required"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Communes  []string `json:"communes"`
}

type RecordReadingRequest struct {
	Salinity   float64    `json:"salinity" binding:"min=0"`
	MeasuredAt *time.Time `json:"measured_at"`
}

// ListStations danh sách trạm đo (lọc theo tỉnh)
// GET /api/v1/salinity/stations?province=Ben+Tre
func (ctrl *SalinityController) ListStations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stations, err := ctrl.salinityService.ListStations(c.Query("province"))
	if err != nil {
		log.Error("Failed to list salinity stations", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list stations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stations": stations,
		"total":    len(stations),
	})
}

// CreateStation thêm trạm đo mới (chỉ quản trị viên)
// POST /api/v1/admin/salinity/stations
func (ctrl *SalinityController) CreateStation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Thông tin trạm đo không hợp lệ")
		return
	}

	station := &model.SalinityStation{
		Name:      req.Name,
		Code:      req.Code,
		River:     req.River,
		Province:  req.Province,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Communes:  req.Communes,
	}
	if err := ctrl.salinityService.CreateStation(station); err != nil {
		log.Error("Failed to create salinity station", err, map[string]interface{}{
			"code": req.Code,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create station")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã thêm trạm đo",
		"station": station,
	})
}

// RecordReading ghi nhận chỉ số đo mới (chỉ quản trị viên)
// POST /api/v1/admin/salinity/stations/:id/readings
func (ctrl *SalinityController) RecordReading(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Chỉ số đo không hợp lệ")
		return
	}

	measuredAt := time.Now()
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading, err := ctrl.salinityService.RecordReading(stationID, req.Salinity, measuredAt)
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			apperrors.NotFound(c, apperrors.SalinityStationNotFound, "Không tìm thấy trạm đo")
			return
		}
		log.Error("Failed to record salinity reading", err, map[string]interface{}{
			"station_id": stationID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "record reading")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã ghi nhận chỉ số đo",
		"reading": reading,
	})
}

// GetLatestReading chỉ số mới nhất của một trạm
// GET /api/v1/salinity/stations/:id/latest
func (ctrl *SalinityController) GetLatestReading(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reading, err := ctrl.salinityService.GetLatestReading(c.Request.Context(), stationID)
	if err != nil {
		if errors.Is(err, service.ErrNoReading) {
			apperrors.NotFound(c, apperrors.SalinityNoReading, "Trạm chưa có số liệu đo")
			return
		}
		log.Error("Failed to get latest reading", err, map[string]interface{}{
			"station_id": stationID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get latest reading")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reading": reading,
	})
}

// GetHistory lịch sử đo trong khoảng thời gian
// GET /api/v1/salinity/stations/:id/history?from=2026-03-01&to=2026-03-31
func (ctrl *SalinityController) GetHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	readings, err := ctrl.salinityService.GetHistory(stationID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrStationNotFound) {
			apperrors.NotFound(c, apperrors.SalinityStationNotFound, "Không tìm thấy trạm đo")
			return
		}
		log.Error("Failed to get salinity history", err, map[string]interface{}{
			"station_id": stationID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"readings": readings,
		"total":    len(readings),
	})
}

// GetRecentAlerts các cảnh báo gần nhất
// GET /api/v1/salinity/alerts?limit=20
func (ctrl *SalinityController) GetRecentAlerts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Giới hạn không hợp lệ (1-100)")
			return
		}
		limit = parsed
	}

	alerts, err := ctrl.salinityService.GetRecentAlerts(limit)
	if err != nil {
		log.Error("Failed to get recent alerts", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get alerts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// parseDateRange đọc khoảng ngày from/to (mặc định 30 ngày gần nhất)
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"

	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Ngày bắt đầu không hợp lệ (YYYY-MM-DD)")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Ngày kết thúc không hợp lệ (YYYY-MM-DD)")
			return time.Time{}, time.Time{}, false
		}
		// lấy hết ngày kết thúc
		to = parsed.Add(24*time.Hour - time.Second)
	}

	if to.Before(from) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Ngày kết thúc phải sau ngày bắt đầu")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
