package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PollState tracks per-server feed polling progress and failure streaks.
type PollState struct {
	ServerID            uuid.UUID
	LastSuccessAt       *time.Time
	SinceTS             *time.Time
	LastError           *string
	ConsecutiveFailures int
	UpdatedAt           time.Time
}

type PollStateModel struct {
	DB DBTX
}

func (m PollStateModel) Get(ctx context.Context, serverID uuid.UUID) (*PollState, error) {
	query := `
		SELECT server_id, last_success_at, since_ts, last_error, consecutive_failures, updated_at
		FROM dvr_poll_state
		WHERE server_id = $1`

	var s PollState
	var lastSuccess, since sql.NullTime
	var lastErr sql.NullString

	err := m.DB.QueryRowContext(ctx, query, serverID).Scan(
		&s.ServerID, &lastSuccess, &since, &lastErr, &s.ConsecutiveFailures, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // first poll, no state yet
	}
	if err != nil {
		return nil, err
	}

	if lastSuccess.Valid {
		s.LastSuccessAt = &lastSuccess.Time
	}
	if since.Valid {
		s.SinceTS = &since.Time
	}
	if lastErr.Valid {
		s.LastError = &lastErr.String
	}
	return &s, nil
}

func (m PollStateModel) Upsert(ctx context.Context, s *PollState) error {
	query := `
		INSERT INTO dvr_poll_state (server_id, last_success_at, since_ts, last_error, consecutive_failures, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (server_id) DO UPDATE
		SET last_success_at = EXCLUDED.last_success_at,
		    since_ts = EXCLUDED.since_ts,
		    last_error = EXCLUDED.last_error,
		    consecutive_failures = EXCLUDED.consecutive_failures,
		    updated_at = now()`

	_, err := m.DB.ExecContext(ctx, query,
		s.ServerID, s.LastSuccessAt, s.SinceTS, s.LastError, s.ConsecutiveFailures)
	return err
}
