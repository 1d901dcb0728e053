package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"sharedcal/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	codec          domain.DescriptionCodec
	sanitizer      *bluemonday.Policy
	contextTimeout time.Duration
}

// NewEventService creates the event lifecycle service with the given
// repository, description codec, and per-call timeout.
func NewEventService(eventRepo domain.EventRepository, codec domain.DescriptionCodec, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		codec:          codec,
		sanitizer:      bluemonday.StrictPolicy(),
		contextTimeout: timeout,
	}
}

const (
	meetingTokenLength = 12
	meetingLinkBase    = "https://meet.jit.si/"
)

var meetingTokenAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

func generateMeetingLink() (string, error) {
	b := make([]rune, meetingTokenLength)
	max := big.NewInt(int64(len(meetingTokenAlphabet)))
	for i := 0; i < meetingTokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = meetingTokenAlphabet[n.Int64()]
	}
	return meetingLinkBase + string(b), nil
}

func (s *eventService) CreateEvent(ctx context.Context, caller string, in domain.EventInput) (*domain.Event, *domain.ConflictWarning, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if caller == "" {
		return nil, nil, fmt.Errorf("event owner is required")
	}

	// Advisory only: an overlap is reported to the caller but never blocks
	// the write.
	warning, err := s.firstConflict(ctx, caller, in.StartTime, in.EndTime, "")
	if err != nil {
		return nil, nil, fmt.Errorf("check conflicts: %w", err)
	}

	now := time.Now()
	event := &domain.Event{
		Title:        s.sanitizer.Sanitize(in.Title),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Owner:        caller,
		Participants: domain.NormalizeRoster(caller, in.Participants),
		IsPublic:     in.IsPublic,
		IsMeeting:    in.IsMeeting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.IsMeeting {
		link, err := generateMeetingLink()
		if err != nil {
			return nil, nil, fmt.Errorf("generate meeting link: %w", err)
		}
		event.MeetingLink = link
	}

	plain := s.sanitizer.Sanitize(in.Description)
	stored, err := s.codec.Encrypt(plain)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt description: %w", err)
	}
	event.Description = stored

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}
	event.Description = plain
	return event, warning, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, caller, eventID string, in domain.EventInput) (*domain.Event, *domain.ConflictWarning, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	if event.Owner != caller {
		return nil, nil, domain.ErrForbidden
	}

	warning, err := s.firstConflict(ctx, caller, in.StartTime, in.EndTime, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("check conflicts: %w", err)
	}

	event.Title = s.sanitizer.Sanitize(in.Title)
	event.StartTime = in.StartTime
	event.EndTime = in.EndTime
	event.IsPublic = in.IsPublic
	// The owner is re-injected regardless of the submitted roster.
	event.Participants = domain.NormalizeRoster(event.Owner, in.Participants)

	if in.IsMeeting {
		// An existing link is retained; a fresh one is issued only when
		// the event had none.
		if event.MeetingLink == "" {
			link, err := generateMeetingLink()
			if err != nil {
				return nil, nil, fmt.Errorf("generate meeting link: %w", err)
			}
			event.MeetingLink = link
		}
	} else {
		event.MeetingLink = ""
	}
	event.IsMeeting = in.IsMeeting

	plain := s.sanitizer.Sanitize(in.Description)
	stored, err := s.codec.Encrypt(plain)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt description: %w", err)
	}
	event.Description = stored
	event.UpdatedAt = time.Now()

	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("update event: %w", err)
	}
	updated.Description = plain
	return updated, warning, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, caller, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.Owner != caller {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListMine(ctx context.Context, caller string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	all, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	mine := make([]*domain.Event, 0)
	for _, e := range all {
		if e.Owner == caller || e.Participants.Contains(caller) {
			e.Description = s.codec.Decrypt(e.Description)
			mine = append(mine, e)
		}
	}
	return mine, nil
}

func (s *eventService) ListPublic(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	for _, e := range events {
		e.Description = s.codec.Decrypt(e.Description)
	}
	return events, nil
}

func (s *eventService) ListForTarget(ctx context.Context, caller, target string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwner(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list events by owner: %w", err)
	}
	// Every event of the target is returned; the ones the caller may not
	// read become Busy blocks instead of being dropped.
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if domain.ResolveAccess(caller, e) == domain.AccessFull {
			e.Description = s.codec.Decrypt(e.Description)
			out = append(out, e)
			continue
		}
		out = append(out, e.Masked())
	}
	return out, nil
}

func (s *eventService) JoinEvent(ctx context.Context, caller, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	roster, joined := event.Participants.Join(caller)
	if !joined {
		return nil, domain.ErrAlreadyMember
	}
	if !event.IsPublic {
		return nil, domain.ErrForbidden
	}
	event.Participants = roster
	event.UpdatedAt = time.Now()
	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	updated.Description = s.codec.Decrypt(updated.Description)
	return updated, nil
}

func (s *eventService) LeaveEvent(ctx context.Context, caller, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// The owner cannot leave; an ownerless event could never be mutated
	// again.
	if event.Owner == caller {
		return nil, domain.ErrForbidden
	}
	roster, left := event.Participants.Leave(caller)
	if !left {
		return nil, domain.ErrNotMember
	}
	event.Participants = roster
	event.UpdatedAt = time.Now()
	updated, err := s.eventRepo.Update(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	updated.Description = s.codec.Decrypt(updated.Description)
	return updated, nil
}

func (s *eventService) CheckConflict(ctx context.Context, caller string, start, end time.Time, excludeID string) (*domain.ConflictWarning, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	warning, err := s.firstConflict(ctx, caller, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("check conflicts: %w", err)
	}
	return warning, nil
}

// firstConflict reports the first overlapping event on the caller's own
// calendar, or nil when the interval is free. Best-effort: the result can be
// stale by the time the caller writes.
func (s *eventService) firstConflict(ctx context.Context, owner string, start, end time.Time, excludeID string) (*domain.ConflictWarning, error) {
	conflicts, err := s.eventRepo.FindConflicts(ctx, owner, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, nil
	}
	first := conflicts[0]
	return &domain.ConflictWarning{
		EventID:   first.ID,
		Title:     first.Title,
		StartTime: first.StartTime,
	}, nil
}
