package event

import "strings"

// Level is the severity a DVR server assigns to an event.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelAlarm
	LevelCritical
)

// ParseLevel maps a feed level code onto a Level. Unknown codes degrade
// to LevelInfo; classification never fails on malformed server data.
func ParseLevel(code string) Level {
	switch strings.ToLower(code) {
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarning
	case "alrm", "alarm":
		return LevelAlarm
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// Code returns the canonical feed code for the level, used for storage.
func (l Level) Code() string {
	switch l {
	case LevelWarning:
		return "warn"
	case LevelAlarm:
		return "alrm"
	case LevelCritical:
		return "critical"
	default:
		return "info"
	}
}

// UIString returns the display label for the level.
func (l Level) UIString() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelAlarm:
		return "Alarm"
	case LevelCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// RGB is a display color for a severity.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Color returns the severity color. graphical selects the richer palette
// used by graphical views; plain list views render Warning in black.
func (l Level) Color(graphical bool) RGB {
	switch l {
	case LevelInfo:
		return RGB{122, 122, 122}
	case LevelWarning:
		if graphical {
			return RGB{62, 107, 199}
		}
		return RGB{0, 0, 0}
	case LevelAlarm:
		return RGB{204, 120, 10}
	case LevelCritical:
		return RGB{175, 0, 0}
	default:
		return RGB{0, 0, 0}
	}
}
