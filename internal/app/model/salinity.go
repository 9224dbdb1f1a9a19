package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SalinityLevel mức cảnh báo độ mặn
type SalinityLevel string

const (
	SalinityLevelSafe   SalinityLevel = "safe"   // an toàn cho lúa (< 1 g/L)
	SalinityLevelWatch  SalinityLevel = "watch"  // theo dõi, hạn chế tưới (1 - 4 g/L)
	SalinityLevelDanger SalinityLevel = "danger" // nguy hiểm, ngừng lấy nước (>= 4 g/L)
)

// SalinityStation trạm đo độ mặn trên sông/kênh
type SalinityStation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string         `gorm:"not null" json:"name"`                              // tên trạm (vd: Cống Cái Lớn)
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`                  // mã trạm
	River     string         `json:"river"`                                             // sông/kênh
	Province  string         `gorm:"index" json:"province"`                             // tỉnh
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Communes  pq.StringArray `gorm:"type:text[];default:'{}'" json:"communes"`          // các xã dùng nước từ trạm này
}

func (SalinityStation) TableName() string {
	return "salinity_stations"
}

// SalinityReading một lần đo độ mặn
type SalinityReading struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	StationID  uint            `gorm:"not null;index" json:"station_id"`
	Station    SalinityStation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Salinity   float64         `gorm:"not null" json:"salinity"`              // g/L
	MeasuredAt time.Time       `gorm:"not null;index" json:"measured_at"`     // thời điểm đo
	Level      SalinityLevel   `gorm:"type:varchar(10);index" json:"level"`   // phân loại tại thời điểm ghi nhận
}

func (SalinityReading) TableName() string {
	return "salinity_readings"
}

// SalinityAlert cảnh báo phát ra khi mức độ mặn xấu đi
type SalinityAlert struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	StationID uint            `gorm:"not null;index" json:"station_id"`
	Station   SalinityStation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Level     SalinityLevel   `gorm:"type:varchar(10);not null" json:"level"`
	Salinity  float64         `gorm:"not null" json:"salinity"`
	Message   string          `gorm:"type:text;not null" json:"message"` // nội dung tiếng Việt hiển thị cho nông dân
}

func (SalinityAlert) TableName() string {
	return "salinity_alerts"
}
