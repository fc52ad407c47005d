package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	type TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
	transcript TEXT,
	ai_output JSONB,
	file_path TEXT,
	source TEXT NOT NULL DEFAULT 'upload',
	status TEXT NOT NULL DEFAULT 'pending'
)`

type postgres struct {
	db *sql.DB
}

// NewPostgres opens the meetings table over an existing connection pool.
func NewPostgres(ctx context.Context, db *sql.DB) (Storage, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to ensure meetings schema: %w", err)
	}
	return &postgres{db: db}, nil
}

// Open dials the database and returns a ready store.
func Open(ctx context.Context, dsn string) (Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgres(ctx, db)
}

func (s *postgres) CreateMeeting(ctx context.Context, m *entity.Meeting) (*entity.Meeting, error) {
	aiOutput, err := marshalAIOutput(m.AIOutput)
	if err != nil {
		return nil, err
	}

	stored := *m
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO meetings (title, type, timestamp, transcript, ai_output, file_path, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		stored.Title, stored.Type, stored.Timestamp, nullString(stored.Transcript), aiOutput,
		nullString(stored.FilePath), string(stored.Source), string(stored.Status),
	).Scan(&stored.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meeting: %w", err)
	}
	return &stored, nil
}

func (s *postgres) ListMeetings(ctx context.Context, skip, limit int) ([]*entity.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, type, timestamp, transcript, ai_output, file_path, source, status
		FROM meetings ORDER BY id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var out []*entity.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *postgres) GetMeeting(ctx context.Context, id int64) (*entity.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, type, timestamp, transcript, ai_output, file_path, source, status
		FROM meetings WHERE id = $1`, id)

	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	return m, err
}

func (s *postgres) UpdateMeeting(ctx context.Context, m *entity.Meeting) error {
	aiOutput, err := marshalAIOutput(m.AIOutput)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE meetings SET title=$2, type=$3, transcript=$4, ai_output=$5, file_path=$6, source=$7, status=$8
		WHERE id = $1`,
		m.ID, m.Title, m.Type, nullString(m.Transcript), aiOutput,
		nullString(m.FilePath), string(m.Source), string(m.Status))
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (s *postgres) DeleteMeeting(ctx context.Context, id int64) (*entity.Meeting, error) {
	m, err := s.GetMeeting(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete meeting: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*entity.Meeting, error) {
	var (
		m          entity.Meeting
		transcript sql.NullString
		aiOutput   []byte
		filePath   sql.NullString
		source     string
		status     string
	)
	err := row.Scan(&m.ID, &m.Title, &m.Type, &m.Timestamp, &transcript, &aiOutput, &filePath, &source, &status)
	if err != nil {
		return nil, err
	}

	m.Transcript = transcript.String
	m.FilePath = filePath.String
	m.Source = entity.Source(source)
	m.Status = entity.Status(status)
	if len(aiOutput) > 0 {
		var out entity.AIOutput
		if err := json.Unmarshal(aiOutput, &out); err != nil {
			return nil, fmt.Errorf("failed to decode ai_output: %w", err)
		}
		m.AIOutput = &out
	}
	return &m, nil
}

func marshalAIOutput(out *entity.AIOutput) (any, error) {
	if out == nil {
		return nil, nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ai_output: %w", err)
	}
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
