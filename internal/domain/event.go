package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for event operations.
var (
	ErrNotFound      = errors.New("event not found")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyMember = errors.New("already a participant")
	ErrNotMember     = errors.New("not a participant")
	ErrInvalidInput  = errors.New("invalid input")
)

// Event represents a calendar event shared among principals. Description is
// held as ciphertext in storage; services hand decrypted copies to callers
// with access.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Description  string    `json:"description,omitempty"`
	Owner        string    `json:"owner"`
	Participants Roster    `json:"participants,omitempty"`
	IsPublic     bool      `json:"is_public"`
	IsMeeting    bool      `json:"is_meeting"`
	MeetingLink  string    `json:"meeting_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Overlaps reports whether the event's interval collides with [start, end).
// Intervals that merely touch at an endpoint do not overlap.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && e.EndTime.After(start)
}

// EventInput carries the caller-supplied fields for create and update. Owner
// is never taken from input; the service sets it from the authenticated
// caller.
type EventInput struct {
	Title        string
	StartTime    time.Time
	EndTime      time.Time
	Description  string
	Participants []string
	IsPublic     bool
	IsMeeting    bool
}

// ConflictWarning is the advisory double-booking report. It identifies the
// first existing event that overlaps a candidate interval and never blocks
// the write that triggered it.
type ConflictWarning struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

// DescriptionCodec protects free-text description content at rest.
type DescriptionCodec interface {
	// Encrypt seals plaintext for storage. Empty input passes through.
	Encrypt(plaintext string) (string, error)
	// Decrypt opens a stored value. It never fails: input that cannot be
	// decrypted is returned unchanged.
	Decrypt(stored string) string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByOwner(ctx context.Context, owner string) ([]*Event, error)
	ListPublic(ctx context.Context) ([]*Event, error)
	// FindConflicts returns owner's events whose stored interval overlaps
	// [start, end), excluding excludeID when non-empty.
	FindConflicts(ctx context.Context, owner string, start, end time.Time, excludeID string) ([]*Event, error)
	Update(ctx context.Context, e *Event) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for the event lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, caller string, in EventInput) (*Event, *ConflictWarning, error)
	UpdateEvent(ctx context.Context, caller, eventID string, in EventInput) (*Event, *ConflictWarning, error)
	DeleteEvent(ctx context.Context, caller, eventID string) error
	ListMine(ctx context.Context, caller string) ([]*Event, error)
	ListPublic(ctx context.Context) ([]*Event, error)
	ListForTarget(ctx context.Context, caller, target string) ([]*Event, error)
	JoinEvent(ctx context.Context, caller, eventID string) (*Event, error)
	LeaveEvent(ctx context.Context, caller, eventID string) (*Event, error)
	CheckConflict(ctx context.Context, caller string, start, end time.Time, excludeID string) (*ConflictWarning, error)
}
