package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Server is one remote DVR server the gateway ingests from.
type Server struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	IsEnabled bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ServerModel struct {
	DB DBTX
}

func (m ServerModel) Create(ctx context.Context, s *Server) error {
	query := `
		INSERT INTO dvr_servers (name, base_url, username, password, is_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := m.DB.QueryRowContext(ctx, query,
		s.Name, s.BaseURL, s.Username, s.Password, s.IsEnabled,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	var pqErr *pq.Error
	if err != nil {
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

func (m ServerModel) GetByID(ctx context.Context, id uuid.UUID) (*Server, error) {
	query := `
		SELECT id, name, base_url, username, password, is_enabled, created_at, updated_at
		FROM dvr_servers
		WHERE id = $1`

	var s Server
	err := m.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.BaseURL, &s.Username, &s.Password, &s.IsEnabled, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (m ServerModel) List(ctx context.Context, enabledOnly bool) ([]*Server, error) {
	query := `
		SELECT id, name, base_url, username, password, is_enabled, created_at, updated_at
		FROM dvr_servers`
	if enabledOnly {
		query += ` WHERE is_enabled = true`
	}
	query += ` ORDER BY name`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []*Server
	for rows.Next() {
		var s Server
		if err := rows.Scan(&s.ID, &s.Name, &s.BaseURL, &s.Username, &s.Password, &s.IsEnabled, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		servers = append(servers, &s)
	}
	return servers, rows.Err()
}

func (m ServerModel) Update(ctx context.Context, s *Server) error {
	query := `
		UPDATE dvr_servers
		SET name = $2, base_url = $3, username = $4, password = $5, is_enabled = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := m.DB.QueryRowContext(ctx, query,
		s.ID, s.Name, s.BaseURL, s.Username, s.Password, s.IsEnabled,
	).Scan(&s.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrRecordNotFound
	}
	return err
}

func (m ServerModel) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	res, err := m.DB.ExecContext(ctx,
		`UPDATE dvr_servers SET is_enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (m ServerModel) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM dvr_servers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
