package realtime

import (
	"testing"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{
		Hub:           hub,
		UserID:        userID,
		Send:          make(chan []byte, 1),
		Provinces:     make(map[string]bool),
		LastResetTime: time.Now(),
	}
}

func testAlert() *model.SalinityAlert {
	return &model.SalinityAlert{
		ID:        1,
		StationID: 1,
		Station: model.SalinityStation{
			Name:     "Cống Cái Lớn",
			Province: "Kiên Giang",
		},
		Level:    model.SalinityLevelDanger,
		Salinity: 4.5,
		Message:  "Độ mặn vượt ngưỡng nguy hiểm",
	}
}

// waitSessions chờ hub xử lý xong các đăng ký đang xếp hàng
func waitSessions(t *testing.T, hub *Hub, userID uint, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[userID]) == want
	}, time.Second, 10*time.Millisecond)
}

func waitClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected channel to be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1)
	hub.Register(client)
	waitSessions(t, hub, 1, 1)

	hub.Unregister(client)
	waitClosed(t, client.Send)
	assert.False(t, hub.IsUserOnline(1))
}

func TestHub_UnregisterTwice_DoesNotPanic(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Hai thiết bị của cùng một người dùng
	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 1)
	hub.Register(c1)
	hub.Register(c2)
	waitSessions(t, hub, 1, 2)

	// ReadPump và nhánh Send đầy có thể cùng gỡ một client
	hub.Unregister(c1)
	hub.Unregister(c1)

	waitClosed(t, c1.Send)
	waitSessions(t, hub, 1, 1)

	// Hub vẫn sống: thiết bị còn lại tiếp tục nhận cảnh báo
	hub.BroadcastAlert(testAlert())
	select {
	case msg := <-c2.Send:
		assert.Contains(t, string(msg), "salinity_alert")
	case <-time.After(time.Second):
		t.Fatal("remaining client did not receive the alert")
	}
	assert.True(t, hub.IsUserOnline(1))
}

func TestHub_BroadcastAlert_FiltersByProvince(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscribed := newTestClient(hub, 1)
	subscribed.Provinces["Kiên Giang"] = true
	other := newTestClient(hub, 2)
	other.Provinces["Bến Tre"] = true
	all := newTestClient(hub, 3) // chưa đăng ký tỉnh nào = nhận tất cả

	hub.Register(subscribed)
	hub.Register(other)
	hub.Register(all)
	waitSessions(t, hub, 1, 1)
	waitSessions(t, hub, 2, 1)
	waitSessions(t, hub, 3, 1)

	hub.BroadcastAlert(testAlert())

	for _, c := range []*Client{subscribed, all} {
		select {
		case msg := <-c.Send:
			assert.Contains(t, string(msg), "Cống Cái Lớn")
		case <-time.After(time.Second):
			t.Fatal("subscribed client did not receive the alert")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("client watching another province should not receive the alert")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_IsUserOnline(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	assert.False(t, hub.IsUserOnline(1))

	c1 := newTestClient(hub, 1)
	c2 := newTestClient(hub, 1)
	hub.Register(c1)
	hub.Register(c2)
	waitSessions(t, hub, 1, 2)

	hub.Unregister(c1)
	waitClosed(t, c1.Send)
	assert.True(t, hub.IsUserOnline(1), "second session still connected")

	hub.Unregister(c2)
	waitClosed(t, c2.Send)
	assert.False(t, hub.IsUserOnline(1))
}
