package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/nongdanviet/nongdanviet-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingBroadcaster struct {
	alerts []*model.SalinityAlert
}

func (b *recordingBroadcaster) BroadcastAlert(alert *model.SalinityAlert) {
	b.alerts = append(b.alerts, alert)
}

func setupSalinityServiceTest(t *testing.T) (SalinityService, *recordingBroadcaster, *model.SalinityStation, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	broadcaster := &recordingBroadcaster{}
	svc := NewSalinityService(
		repository.NewSalinityRepository(testDB),
		SalinityThresholds{Watch: 1.0, Danger: 4.0},
		broadcaster,
	)

	station := &model.SalinityStation{
		Name:     "Cống Cái Lớn",
		Code:     "CL-01",
		River:    "Sông Cái Lớn",
		Province: "Kiên Giang",
		Communes: []string{"An Biên", "Châu Thành"},
	}
	require.NoError(t, svc.CreateStation(station))

	return svc, broadcaster, station, testDB
}

func TestSalinityService_Classify(t *testing.T) {
	svc, _, _, _ := setupSalinityServiceTest(t)

	tests := []struct {
		name     string
		salinity float64
		want     model.SalinityLevel
	}{
		{"nước ngọt", 0.3, model.SalinityLevelSafe},
		{"sát ngưỡng theo dõi", 0.99, model.SalinityLevelSafe},
		{"đúng ngưỡng theo dõi", 1.0, model.SalinityLevelWatch},
		{"giữa khoảng theo dõi", 2.5, model.SalinityLevelWatch},
		{"đúng ngưỡng nguy hiểm", 4.0, model.SalinityLevelDanger},
		{"xâm nhập mặn nặng", 8.2, model.SalinityLevelDanger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Classify(tt.salinity))
		})
	}
}

func TestSalinityService_RecordReading(t *testing.T) {
	svc, _, station, _ := setupSalinityServiceTest(t)

	reading, err := svc.RecordReading(station.ID, 0.5, time.Now())
	require.NoError(t, err)

	assert.Equal(t, model.SalinityLevelSafe, reading.Level)
	assert.Equal(t, station.ID, reading.StationID)
	assert.NotZero(t, reading.ID)
}

func TestSalinityService_RecordReading_StationNotFound(t *testing.T) {
	svc, _, _, _ := setupSalinityServiceTest(t)

	_, err := svc.RecordReading(9999, 1.5, time.Now())
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestSalinityService_RecordReading_AlertOnWorseningLevel(t *testing.T) {
	svc, broadcaster, station, testDB := setupSalinityServiceTest(t)

	// safe -> watch: phát cảnh báo
	_, err := svc.RecordReading(station.ID, 0.4, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = svc.RecordReading(station.ID, 1.8, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	require.Len(t, broadcaster.alerts, 1)
	assert.Equal(t, model.SalinityLevelWatch, broadcaster.alerts[0].Level)
	assert.Contains(t, broadcaster.alerts[0].Message, station.Name)

	// watch -> watch: không phát thêm
	_, err = svc.RecordReading(station.ID, 2.1, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, broadcaster.alerts, 1)

	// watch -> danger: phát tiếp
	_, err = svc.RecordReading(station.ID, 5.0, time.Now())
	require.NoError(t, err)
	require.Len(t, broadcaster.alerts, 2)
	assert.Equal(t, model.SalinityLevelDanger, broadcaster.alerts[1].Level)

	var count int64
	testDB.Model(&model.SalinityAlert{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSalinityService_RecordReading_NoAlertWhenImproving(t *testing.T) {
	svc, broadcaster, station, _ := setupSalinityServiceTest(t)

	_, err := svc.RecordReading(station.ID, 5.0, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, broadcaster.alerts, 1)

	// danger -> watch: nước rút, không cảnh báo
	_, err = svc.RecordReading(station.ID, 2.0, time.Now())
	require.NoError(t, err)
	assert.Len(t, broadcaster.alerts, 1)
}

func TestSalinityService_GetLatestReading_CacheRoundTrip(t *testing.T) {
	svc, _, station, _ := setupSalinityServiceTest(t)

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		redis.SetClient(nil)
	})

	recorded, err := svc.RecordReading(station.ID, 3.2, time.Now())
	require.NoError(t, err)

	cacheKey := fmt.Sprintf("salinity:latest:%d", station.ID)

	// cache đã được ghi khi RecordReading
	assert.True(t, mr.Exists(cacheKey))

	latest, err := svc.GetLatestReading(context.Background(), station.ID)
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, latest.ID)
	assert.InDelta(t, 3.2, latest.Salinity, 0.001)

	// xoá cache: đọc lại từ DB và backfill
	mr.FlushAll()
	latest, err = svc.GetLatestReading(context.Background(), station.ID)
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, latest.ID)
	assert.True(t, mr.Exists(cacheKey))
}

func TestSalinityService_GetLatestReading_NoReading(t *testing.T) {
	svc, _, station, _ := setupSalinityServiceTest(t)

	_, err := svc.GetLatestReading(context.Background(), station.ID)
	assert.ErrorIs(t, err, ErrNoReading)
}

func TestSalinityService_GetHistory(t *testing.T) {
	svc, _, station, _ := setupSalinityServiceTest(t)

	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.RecordReading(station.ID, 0.5+float64(i), base.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}

	readings, err := svc.GetHistory(station.ID, base.Add(24*time.Hour), base.Add(3*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, readings, 3)

	// thứ tự thời gian tăng dần
	for i := 1; i < len(readings); i++ {
		assert.True(t, !readings[i].MeasuredAt.Before(readings[i-1].MeasuredAt))
	}
}

func TestSalinityService_GetHistory_StationNotFound(t *testing.T) {
	svc, _, _, _ := setupSalinityServiceTest(t)

	_, err := svc.GetHistory(9999, time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestSalinityService_CheckStations(t *testing.T) {
	svc, broadcaster, station, _ := setupSalinityServiceTest(t)

	_, err := svc.RecordReading(station.ID, 6.5, time.Now())
	require.NoError(t, err)
	require.Len(t, broadcaster.alerts, 1)

	// quét định kỳ phát lại cảnh báo cho trạm đang nguy hiểm
	require.NoError(t, svc.CheckStations())
	assert.Len(t, broadcaster.alerts, 2)
}
