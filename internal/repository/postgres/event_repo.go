package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"sharedcal/internal/domain"
)

const eventColumns = `id, title, start_time, end_time, description, owner, participants, is_public, is_meeting, meeting_link, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// The roster crosses the storage boundary as a comma-delimited column; the
// rest of the system only ever sees domain.Roster.
func encodeParticipants(r domain.Roster) string {
	return strings.Join(r, ",")
}

func decodeParticipants(s string) domain.Roster {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roster := make(domain.Roster, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			roster = append(roster, p)
		}
	}
	return roster
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, participantsNull, linkNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.StartTime, &e.EndTime, &descNull, &e.Owner,
		&participantsNull, &e.IsPublic, &e.IsMeeting, &linkNull,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = descNull.String
	}
	if participantsNull.Valid {
		e.Participants = decodeParticipants(participantsNull.String)
	}
	if linkNull.Valid {
		e.MeetingLink = linkNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, start_time, end_time, description, owner, participants, is_public, is_meeting, meeting_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.StartTime, e.EndTime, e.Description, e.Owner,
		encodeParticipants(e.Participants), e.IsPublic, e.IsMeeting,
		e.MeetingLink, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner = $1
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query, owner)
}

func (r *eventRepository) ListPublic(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_public = TRUE
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) FindConflicts(ctx context.Context, owner string, start, end time.Time, excludeID string) ([]*domain.Event, error) {
	// Half-open overlap: intervals touching at an endpoint do not conflict.
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE owner = $1
		  AND start_time < $2
		  AND end_time > $3
		  AND ($4 = '' OR id::text <> $4)
		ORDER BY start_time
	`
	return r.queryEvents(ctx, query, owner, end, start, excludeID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	query := `
		UPDATE events
		SET title = $1, start_time = $2, end_time = $3, description = $4, participants = $5, is_public = $6, is_meeting = $7, meeting_link = $8, updated_at = $9
		WHERE id = $10
		RETURNING ` + eventColumns + `
	`
	updated, err := scanEvent(r.DB.QueryRowContext(ctx, query,
		e.Title, e.StartTime, e.EndTime, e.Description,
		encodeParticipants(e.Participants), e.IsPublic, e.IsMeeting,
		e.MeetingLink, e.UpdatedAt, e.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
