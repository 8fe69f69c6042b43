package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/event"
	"github.com/technosupport/ts-dvr-gateway/internal/live"
)

// rehydrate rebuilds the domain event from its stored row so the
// response carries the same derived fields the live stream does.
func rehydrate(se *data.Event) *event.Event {
	e := event.New(se.ServerID)
	e.ID = se.EventID
	e.MediaID = se.MediaID
	e.Level = event.ParseLevel(se.Level)
	e.Type = event.ParseType(se.Type)
	e.SetLocationID(se.LocationID)
	e.SetUTCStart(se.StartUTC)
	e.SetDurationSeconds(se.DurationSeconds)
	e.SetServerTzOffsetMins(se.TzOffsetMins)
	return e
}

func (a *API) renderStored(r *http.Request, se *data.Event) *live.EventMessage {
	e := rehydrate(se)
	serverName := a.Resolver.ServerName(r.Context(), se.ServerID)
	cameraName := a.Resolver.CameraName(r.Context(), se.ServerID, se.LocationID)
	return live.NewEventMessage(e, se.Seq, serverName, cameraName, se.ReceivedAt)
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := data.EventFilter{}

	if raw := q.Get("server"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid server id")
			return
		}
		filter.ServerID = &id
	}
	if raw := q.Get("level"); raw != "" {
		level := event.ParseLevel(raw).Code()
		filter.Level = &level
	}
	if raw := q.Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "before must be RFC 3339")
			return
		}
		filter.Before = &t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	stored, err := a.Events.List(r.Context(), filter)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}

	items := make([]*live.EventMessage, 0, len(stored))
	for _, se := range stored {
		items = append(items, a.renderStored(r, se))
	}
	writeJSON(w, http.StatusOK, envelope{"events": items})
}

func (a *API) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	se, ok := a.storedEventParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, envelope{"event": a.renderStored(r, se)})
}

// handleEventExportName returns the filesystem-safe stem clients should
// use when saving the event's media to disk.
func (a *API) handleEventExportName(w http.ResponseWriter, r *http.Request) {
	se, ok := a.storedEventParam(w, r)
	if !ok {
		return
	}

	e := rehydrate(se)
	serverName := a.Resolver.ServerName(r.Context(), se.ServerID)
	if serverName == "" {
		serverName = se.ServerID.String()
	}
	cameraName := a.Resolver.CameraName(r.Context(), se.ServerID, se.LocationID)
	uiLocation := event.UILocation(cameraName, se.LocationID)

	writeJSON(w, http.StatusOK, envelope{
		"seq":            se.Seq,
		"base_file_name": e.BaseFileName(serverName, uiLocation),
	})
}

func (a *API) storedEventParam(w http.ResponseWriter, r *http.Request) (*data.Event, bool) {
	seq, err := strconv.ParseInt(chi.URLParam(r, "seq"), 10, 64)
	if err != nil || seq < 1 {
		errorResponse(w, http.StatusBadRequest, "invalid event sequence")
		return nil, false
	}

	se, err := a.Events.GetBySeq(r.Context(), seq)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusNotFound, "event not found")
			return nil, false
		}
		serverErrorResponse(w, err)
		return nil, false
	}
	return se, true
}
