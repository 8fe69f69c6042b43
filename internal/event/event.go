package event

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/platform/paths"
)

// Event is one occurrence reported by a DVR server: a camera event
// (motion, signal loss) or a system event (disk space, crash, reboot).
// Start times are held as true UTC internally; every derived view
// (local, server zone) is computed from that. A duration of -1 means the
// event is still in progress.
type Event struct {
	ID       int64
	MediaID  int64
	ServerID uuid.UUID

	Level Level
	Type  Type

	utcStart        time.Time
	localStart      time.Time
	durationSeconds int
	locationID      int
	tzOffsetMins    int16
}

// New returns an Event with the safe defaults: system location, no
// media, in progress.
func New(serverID uuid.UUID) *Event {
	return &Event{
		ServerID:        serverID,
		MediaID:         -1,
		durationSeconds: -1,
		locationID:      -1,
	}
}

// SetUTCStart stores the start time as UTC and derives the local view.
func (e *Event) SetUTCStart(t time.Time) {
	e.utcStart = t.UTC()
	e.localStart = e.utcStart.Local()
}

func (e *Event) UTCStart() time.Time   { return e.utcStart }
func (e *Event) LocalStart() time.Time { return e.localStart }

// SetDurationSeconds stores the duration, clamping anything below the
// in-progress sentinel back to -1.
func (e *Event) SetDurationSeconds(d int) {
	if d < -1 {
		d = -1
	}
	e.durationSeconds = d
}

func (e *Event) DurationSeconds() int { return e.durationSeconds }

// HasDuration reports whether the event has a finished, non-zero span.
func (e *Event) HasDuration() bool { return e.durationSeconds > 0 }

// InProgress reports whether the event is still open on the server.
func (e *Event) InProgress() bool { return e.durationSeconds < 0 }

// SetInProgress marks the event as still running.
func (e *Event) SetInProgress() { e.SetDurationSeconds(-1) }

func (e *Event) SetLocationID(id int) { e.locationID = id }

// LocationID is the event origin: a camera id when non-negative, the
// system itself when -1.
func (e *Event) LocationID() int { return e.locationID }

// SetLocation parses a feed location string. "camera-<N>" selects camera
// N, "system" the system location; anything else is logged and treated
// as system-level.
func (e *Event) SetLocation(location string) {
	if rest, ok := strings.CutPrefix(location, "camera-"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			log.Printf("[WARN] event: invalid location %q", location)
			e.locationID = -1
			return
		}
		e.locationID = n
		return
	}
	if location != "system" {
		log.Printf("[WARN] event: invalid location %q", location)
	}
	e.locationID = -1
}

func (e *Event) SetServerTzOffsetMins(mins int16) { e.tzOffsetMins = mins }
func (e *Event) ServerTzOffsetMins() int16        { return e.tzOffsetMins }

// ServerStart is the start time expressed in the server's own zone.
func (e *Event) ServerStart() time.Time {
	offsetSecs := int(e.tzOffsetMins) * 60
	return e.utcStart.In(time.FixedZone("server", offsetSecs))
}

// ServerEnd is start + duration in the server's zone. An in-progress
// event has no elapsed span yet, so it equals ServerStart.
func (e *Event) ServerEnd() time.Time {
	start := e.ServerStart()
	if !e.HasDuration() {
		return start
	}
	return start.Add(time.Duration(e.durationSeconds) * time.Second)
}

// LocalEnd is start + duration in the local zone, with an in-progress
// duration contributing zero elapsed time.
func (e *Event) LocalEnd() time.Time {
	d := e.durationSeconds
	if d < 0 {
		d = 0
	}
	return e.localStart.Add(time.Duration(d) * time.Second)
}

func appendUnit(s string, n int, unit string) string {
	if s != "" {
		s += ", "
	}
	s += strconv.Itoa(n) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s
}

// UIDuration renders the duration for display: largest units first,
// stopping after the two largest non-zero units ("2 days, 3 hours" never
// also shows minutes). In-progress events render a fixed label.
func (e *Event) UIDuration() string {
	if e.InProgress() {
		return "In progress"
	}

	d := e.durationSeconds
	var out string
	count := 0

	if d >= 86400 {
		out = appendUnit(out, d/86400, "day")
		d %= 86400
		count++
	}
	if d >= 3600 {
		out = appendUnit(out, d/3600, "hour")
		d %= 3600
		if count++; count == 2 {
			return out
		}
	}
	if d >= 60 {
		out = appendUnit(out, d/60, "minute")
		d %= 60
		if count++; count == 2 {
			return out
		}
	}
	if d > 0 || out == "" {
		out = appendUnit(out, d, "second")
	}
	return out
}

// UILocation renders a location label: the camera's display name when
// resolved, "System" for system-level events, and the raw camera-<N>
// form when the camera is unknown to the registry.
func UILocation(cameraName string, locationID int) string {
	if cameraName != "" {
		return cameraName
	}
	if locationID < 0 {
		return "System"
	}
	return fmt.Sprintf("camera-%d", locationID)
}

// BaseFileName derives the filesystem-safe stem used when exporting the
// event's media: server name, location label and local start time.
func (e *Event) BaseFileName(serverName, uiLocation string) string {
	name := fmt.Sprintf("%s.%s.%s", serverName, uiLocation, e.localStart.Format("2006-01-02 15-04-05"))
	return paths.SanitizeFileName(name)
}
