//go:build !windows

package windows

import "log"

// EventLogger mirrors the Windows event log surface on other platforms
// by writing to the process log.
type EventLogger struct{}

func NewEventLogger(source string) *EventLogger { return &EventLogger{} }

func (e *EventLogger) Info(eventID uint32, msg string) {
	log.Printf("[INFO] %s", msg)
}

func (e *EventLogger) Error(eventID uint32, msg string) {
	log.Printf("[ERROR] %s", msg)
}

func (e *EventLogger) Close() {}
