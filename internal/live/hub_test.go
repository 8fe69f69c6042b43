package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/technosupport/ts-dvr-gateway/internal/event"
)

func testMessage() *EventMessage {
	e := event.New(uuid.New())
	e.ID = 1001
	e.Level = event.LevelAlarm
	e.Type = event.TypeCameraMotion
	e.SetLocation("camera-3")
	e.SetUTCStart(time.Unix(1767225600, 0))
	e.SetDurationSeconds(90)
	return NewEventMessage(e, 7, "Main DVR", "Front Door", time.Now())
}

func TestEventMessageRendering(t *testing.T) {
	msg := testMessage()

	if msg.UILevel != "Alarm" || msg.Level != "alrm" {
		t.Errorf("level = %s/%s", msg.Level, msg.UILevel)
	}
	if msg.LevelColor != (event.RGB{R: 204, G: 120, B: 10}) {
		t.Errorf("color = %v", msg.LevelColor)
	}
	if msg.UIType != "Motion" {
		t.Errorf("ui type = %s", msg.UIType)
	}
	if msg.UILocation != "Front Door" {
		t.Errorf("ui location = %s", msg.UILocation)
	}
	if msg.UIDuration != "1 minute, 30 seconds" {
		t.Errorf("ui duration = %s", msg.UIDuration)
	}
	if msg.InProgress {
		t.Error("90s event should not be in progress")
	}
	if !msg.ServerEnd.Equal(msg.ServerStart.Add(90 * time.Second)) {
		t.Error("server end should be start+90s")
	}
}

func TestEventMessageFallbackLocation(t *testing.T) {
	e := event.New(uuid.New())
	e.SetLocation("camera-9")
	msg := NewEventMessage(e, 1, "", "", time.Now())
	if msg.UILocation != "camera-9" {
		t.Errorf("fallback location = %s", msg.UILocation)
	}

	e2 := event.New(uuid.New())
	e2.SetLocation("system")
	msg2 := NewEventMessage(e2, 2, "", "", time.Now())
	if msg2.UILocation != "System" {
		t.Errorf("system location = %s", msg2.UILocation)
	}
	if !msg2.InProgress || msg2.UIDuration != "In progress" {
		t.Error("fresh event should render in progress")
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cleanup := hub.Register(conn)
		defer cleanup()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(testMessage())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got EventMessage
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.EventID != 1001 || got.UILevel != "Alarm" {
		t.Errorf("payload = %+v", got)
	}
}
