package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sharedcal/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{
	"id", "title", "start_time", "end_time", "description", "owner",
	"participants", "is_public", "is_meeting", "meeting_link",
	"created_at", "updated_at",
}

func eventRow(e *domain.Event) *sqlmock.Rows {
	return sqlmock.NewRows(eventCols).AddRow(
		e.ID, e.Title, e.StartTime, e.EndTime, e.Description, e.Owner,
		encodeParticipants(e.Participants), e.IsPublic, e.IsMeeting,
		e.MeetingLink, e.CreatedAt, e.UpdatedAt,
	)
}

func sampleEvent() *domain.Event {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Event{
		ID:           "ev-uuid-1",
		Title:        "Standup",
		StartTime:    ts,
		EndTime:      ts.Add(time.Hour),
		Description:  "ciphertext",
		Owner:        "alice",
		Participants: domain.Roster{"alice", "bob"},
		IsPublic:     false,
		IsMeeting:    true,
		MeetingLink:  "https://meet.jit.si/abc123def456",
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name:  "success",
			event: sampleEvent(),
			mock: func(mock sqlmock.Sqlmock) {
				e := sampleEvent()
				mock.ExpectQuery(`INSERT INTO events \(title, start_time, end_time, description, owner, participants, is_public, is_meeting, meeting_link, created_at, updated_at\)`).
					WithArgs(e.Title, e.StartTime, e.EndTime, e.Description, e.Owner,
						"alice,bob", e.IsPublic, e.IsMeeting, e.MeetingLink,
						e.CreatedAt, e.UpdatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID:  "ev-uuid-1",
			wantErr: false,
		},
		{
			name:  "db error",
			event: sampleEvent(),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			tt.event.ID = ""
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		want := sampleEvent()
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs(want.ID).
			WillReturnRows(eventRow(want))

		repo := NewEventRepository(db)
		got, err := repo.GetByID(ctx, want.ID)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_GetByID_NullColumns(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventCols).AddRow(
		"ev-uuid-2", "Bare", ts, ts.Add(time.Hour), nil, "alice",
		nil, false, false, nil, ts, ts,
	)
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE id = \$1`).
		WithArgs("ev-uuid-2").
		WillReturnRows(rows)

	repo := NewEventRepository(db)
	got, err := repo.GetByID(ctx, "ev-uuid-2")
	require.NoError(t, err)
	require.Empty(t, got.Description)
	require.Nil(t, got.Participants)
	require.Empty(t, got.MeetingLink)
}

func TestEventRepository_FindConflicts(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	want := sampleEvent()

	// Half-open comparison: end bound precedes start bound in the arg list.
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE owner = \$1 AND start_time < \$2 AND end_time > \$3 AND \(\$4 = '' OR id::text <> \$4\)`).
		WithArgs("alice", end, start, "ev-exclude").
		WillReturnRows(eventRow(want))

	repo := NewEventRepository(db)
	got, err := repo.FindConflicts(ctx, "alice", start, end, "ev-exclude")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, want.ID, got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListByOwner(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	want := sampleEvent()
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE owner = \$1 ORDER BY start_time`).
		WithArgs("alice").
		WillReturnRows(eventRow(want))

	repo := NewEventRepository(db)
	got, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.Roster{"alice", "bob"}, got[0].Participants)
}

func TestEventRepository_ListPublic_Empty(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE is_public = TRUE`).
		WillReturnRows(sqlmock.NewRows(eventCols))

	repo := NewEventRepository(db)
	got, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		e := sampleEvent()
		mock.ExpectQuery(`UPDATE events SET title = \$1`).
			WithArgs(e.Title, e.StartTime, e.EndTime, e.Description,
				"alice,bob", e.IsPublic, e.IsMeeting, e.MeetingLink,
				e.UpdatedAt, e.ID).
			WillReturnRows(eventRow(e))

		repo := NewEventRepository(db)
		got, err := repo.Update(ctx, e)
		require.NoError(t, err)
		require.Equal(t, e, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET title = \$1`).
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, sampleEvent())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-uuid-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-uuid-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs("ev-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ev-missing"), domain.ErrNotFound)
	})
}

func TestDecodeParticipants(t *testing.T) {
	require.Nil(t, decodeParticipants(""))
	require.Equal(t, domain.Roster{"alice"}, decodeParticipants("alice"))
	require.Equal(t, domain.Roster{"alice", "bob"}, decodeParticipants("alice, bob"))
	require.Equal(t, domain.Roster{"alice", "bob"}, decodeParticipants("alice,,bob,"))
}
