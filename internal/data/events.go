package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a stored, normalized DVR event. Seq is the gateway's own
// ordering key; EventID is the id the server assigned inside its feed.
type Event struct {
	Seq             int64     `json:"seq"`
	ServerID        uuid.UUID `json:"server_id"`
	EventID         int64     `json:"event_id"`
	MediaID         int64     `json:"media_id"`
	Level           string    `json:"level"`
	Type            string    `json:"type"`
	LocationID      int       `json:"location_id"`
	StartUTC        time.Time `json:"start_utc"`
	DurationSeconds int       `json:"duration_seconds"`
	TzOffsetMins    int16     `json:"tz_offset_mins"`
	ReceivedAt      time.Time `json:"received_at"`
}

type EventFilter struct {
	ServerID *uuid.UUID
	Level    *string
	Before   *time.Time
	Limit    int
}

type EventModel struct {
	DB DBTX
}

// Upsert stores an event, updating duration and media id when a later
// poll re-delivers the record after the event closed on the server.
func (m EventModel) Upsert(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO dvr_events (server_id, event_id, media_id, level, type, location_id, start_utc, duration_seconds, tz_offset_mins)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (server_id, event_id) DO UPDATE
		SET media_id = EXCLUDED.media_id, duration_seconds = EXCLUDED.duration_seconds
		RETURNING seq, received_at`

	return m.DB.QueryRowContext(ctx, query,
		e.ServerID, e.EventID, e.MediaID, e.Level, e.Type, e.LocationID,
		e.StartUTC.UTC(), e.DurationSeconds, e.TzOffsetMins,
	).Scan(&e.Seq, &e.ReceivedAt)
}

func (m EventModel) GetBySeq(ctx context.Context, seq int64) (*Event, error) {
	query := `
		SELECT seq, server_id, event_id, media_id, level, type, location_id, start_utc, duration_seconds, tz_offset_mins, received_at
		FROM dvr_events
		WHERE seq = $1`

	var e Event
	err := m.DB.QueryRowContext(ctx, query, seq).Scan(
		&e.Seq, &e.ServerID, &e.EventID, &e.MediaID, &e.Level, &e.Type,
		&e.LocationID, &e.StartUTC, &e.DurationSeconds, &e.TzOffsetMins, &e.ReceivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	e.StartUTC = e.StartUTC.UTC()
	return &e, nil
}

// List returns events newest first, under the filter.
func (m EventModel) List(ctx context.Context, filter EventFilter) ([]*Event, error) {
	where := "WHERE true"
	args := []any{}
	nextArg := 1

	if filter.ServerID != nil {
		where += fmt.Sprintf(" AND server_id = $%d", nextArg)
		args = append(args, *filter.ServerID)
		nextArg++
	}
	if filter.Level != nil {
		where += fmt.Sprintf(" AND level = $%d", nextArg)
		args = append(args, *filter.Level)
		nextArg++
	}
	if filter.Before != nil {
		where += fmt.Sprintf(" AND start_utc < $%d", nextArg)
		args = append(args, filter.Before.UTC())
		nextArg++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT seq, server_id, event_id, media_id, level, type, location_id, start_utc, duration_seconds, tz_offset_mins, received_at
		FROM dvr_events
		%s
		ORDER BY start_utc DESC, seq DESC
		LIMIT $%d`, where, nextArg)
	args = append(args, limit)

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.ServerID, &e.EventID, &e.MediaID, &e.Level, &e.Type,
			&e.LocationID, &e.StartUTC, &e.DurationSeconds, &e.TzOffsetMins, &e.ReceivedAt); err != nil {
			return nil, err
		}
		e.StartUTC = e.StartUTC.UTC()
		events = append(events, &e)
	}
	return events, rows.Err()
}
