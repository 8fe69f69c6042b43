//go:build windows

package windows

import (
	"log"

	"golang.org/x/sys/windows/svc/eventlog"
)

// EventLogger writes to the Windows Application event log, falling back
// to the process log when the source cannot be opened.
type EventLogger struct {
	elog *eventlog.Log
}

func NewEventLogger(source string) *EventLogger {
	// Best effort: registering the source needs admin rights, the
	// installer does it. Open what is there.
	l, err := eventlog.Open(source)
	if err != nil {
		log.Printf("[WARN] eventlog: open %s failed: %v", source, err)
		return &EventLogger{}
	}
	return &EventLogger{elog: l}
}

func (e *EventLogger) Info(eventID uint32, msg string) {
	if e.elog == nil {
		log.Printf("[INFO] %s", msg)
		return
	}
	e.elog.Info(eventID, msg)
}

func (e *EventLogger) Error(eventID uint32, msg string) {
	if e.elog == nil {
		log.Printf("[ERROR] %s", msg)
		return
	}
	e.elog.Error(eventID, msg)
}

func (e *EventLogger) Close() {
	if e.elog != nil {
		e.elog.Close()
	}
}
