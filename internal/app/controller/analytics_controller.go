package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"gorm.io/gorm"
)

// AnalyticsController thống kê và xuất dữ liệu (chỉ quản trị viên)
type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// GetVerificationStats thống kê hồ sơ xác minh
// GET /api/v1/admin/analytics/verifications
func (ctrl *AnalyticsController) GetVerificationStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.analyticsService.GetVerificationStats()
	if err != nil {
		log.Error("Failed to get verification stats", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportSalinityHistory xuất lịch sử đo của một trạm
// GET /api/v1/admin/analytics/salinity/:id/export?format=xlsx&from=...&to=...
func (ctrl *AnalyticsController) ExportSalinityHistory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")

	var (
		data        []byte
		contentType string
		ext         string
		err         error
	)
	switch format {
	case "xlsx":
		data, err = ctrl.analyticsService.ExportSalinityHistoryXLSX(stationID, from, to)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	case "csv":
		data, err = ctrl.analyticsService.ExportSalinityHistoryCSV(stationID, from, to)
		contentType = "text/csv; charset=utf-8"
		ext = "csv"
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Định dạng xuất không hợp lệ (xlsx hoặc csv)")
		return
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.NotFound(c, apperrors.SalinityStationNotFound, "Không tìm thấy trạm đo")
			return
		}
		log.Error("Failed to export salinity history", err, map[string]interface{}{
			"station_id": stationID,
			"format":     format,
		})
		apperrors.InternalError(c, "Không thể xuất dữ liệu. Vui lòng thử lại sau")
		return
	}

	filename := fmt.Sprintf("do-man-tram-%d-%s.%s", stationID, time.Now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
