package live

import (
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/event"
)

// EventMessage is the normalized event envelope the gateway emits: the
// raw fields plus every UI-facing rendering the client would otherwise
// compute (labels, colors, duration wording, derived dates). It is the
// payload for NATS, the WebSocket stream and the REST responses.
type EventMessage struct {
	Seq        int64     `json:"seq"`
	ServerID   uuid.UUID `json:"server_id"`
	ServerName string    `json:"server_name,omitempty"`
	EventID    int64     `json:"event_id"`
	MediaID    int64     `json:"media_id"`

	Level      string    `json:"level"`
	UILevel    string    `json:"ui_level"`
	LevelColor event.RGB `json:"level_color"`
	Type       string    `json:"type"`
	UIType     string    `json:"ui_type"`

	LocationID int    `json:"location_id"`
	UILocation string `json:"ui_location"`

	StartUTC        time.Time `json:"start_utc"`
	LocalStart      time.Time `json:"local_start"`
	ServerStart     time.Time `json:"server_start"`
	ServerEnd       time.Time `json:"server_end"`
	DurationSeconds int       `json:"duration_seconds"`
	UIDuration      string    `json:"ui_duration"`
	InProgress      bool      `json:"in_progress"`

	ReceivedAt time.Time `json:"received_at"`
}

// NewEventMessage renders an event for emission. serverName and
// cameraName may be empty when the registry could not resolve them; the
// UI location falls back per the display rules.
func NewEventMessage(e *event.Event, seq int64, serverName, cameraName string, receivedAt time.Time) *EventMessage {
	uiLocation := event.UILocation(cameraName, e.LocationID())

	return &EventMessage{
		Seq:        seq,
		ServerID:   e.ServerID,
		ServerName: serverName,
		EventID:    e.ID,
		MediaID:    e.MediaID,

		Level:      e.Level.Code(),
		UILevel:    e.Level.UIString(),
		LevelColor: e.Level.Color(true),
		Type:       e.Type.Code(),
		UIType:     e.Type.UIString(),

		LocationID: e.LocationID(),
		UILocation: uiLocation,

		StartUTC:        e.UTCStart(),
		LocalStart:      e.LocalStart(),
		ServerStart:     e.ServerStart(),
		ServerEnd:       e.ServerEnd(),
		DurationSeconds: e.DurationSeconds(),
		UIDuration:      e.UIDuration(),
		InProgress:      e.InProgress(),

		ReceivedAt: receivedAt,
	}
}
