package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sharedcal/internal/delivery/http/helpers"
	"sharedcal/internal/delivery/http/middleware"
	"sharedcal/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
type EventRequest struct {
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Description  string    `json:"description"`
	Participants []string  `json:"participants"`
	IsPublic     bool      `json:"is_public"`
	IsMeeting    bool      `json:"is_meeting"`
}

// Validate implements Validator. The interval ordering is deliberately not
// validated; the conflict math tolerates inverted intervals.
func (e EventRequest) Validate() []string {
	var errs []string
	if e.Title == "" {
		errs = append(errs, "title is required")
	}
	if e.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if e.EndTime.IsZero() {
		errs = append(errs, "end_time is required")
	}
	return errs
}

func (e EventRequest) toInput() domain.EventInput {
	return domain.EventInput{
		Title:        e.Title,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Description:  e.Description,
		Participants: e.Participants,
		IsPublic:     e.IsPublic,
		IsMeeting:    e.IsMeeting,
	}
}

// EventResponse bundles an event with the advisory conflict found while
// writing it, if any.
type EventResponse struct {
	Event    *domain.Event           `json:"event"`
	Conflict *domain.ConflictWarning `json:"conflict,omitempty"`
}

// EventSuccessResponse is the success envelope for event writes.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for event listings.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a calendar event owned by the authenticated principal. Title and description are sanitized against markup; the description is encrypted at rest. An overlapping event on the owner's calendar is reported as an advisory conflict but never blocks the write.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event and optional conflict"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, conflict, err := c.Service.CreateEvent(r.Context(), caller, req.toInput())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, EventResponse{Event: event, Conflict: conflict})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event's fields. Only the owner may update; the owner is re-injected into the roster. A meeting link is retained while is_meeting stays true, cleared when it flips false, and issued when it flips true without one.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body EventRequest true "Replacement fields"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event and optional conflict"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, conflict, err := c.Service.UpdateEvent(r.Context(), caller, eventID, req.toInput())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventResponse{Event: event, Conflict: conflict})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event. Only the owner may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a status message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), caller, eventID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListMine godoc
// @Summary List the caller's events
// @Description Returns every event the authenticated principal owns or participates in, descriptions decrypted.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMine(r.Context(), caller)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListPublic godoc
// @Summary List public events
// @Description Returns every public event, descriptions decrypted.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/public [get]
func (c *EventController) ListPublic(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListPublic(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListForTarget godoc
// @Summary View one principal's calendar
// @Description Returns every event owned by the target principal. Events the caller may not read appear as Busy blocks with only the time slot visible.
// @Tags calendars
// @Produce json
// @Security BearerAuth
// @Param principal path string true "Target principal"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendars/{principal} [get]
func (c *EventController) ListForTarget(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("principal")
	if target == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing principal")
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListForTarget(r.Context(), caller, target)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// JoinResponse reports the membership outcome along with the event.
type JoinResponse struct {
	Status string        `json:"status"`
	Event  *domain.Event `json:"event,omitempty"`
}

// JoinEvent godoc
// @Summary Join a public event
// @Description Adds the authenticated principal to the event roster. Joining twice is a no-op reported as already_member. Private events cannot be joined.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "status: already_member"
// @Success 201 {object} helpers.APIResponse "status: joined"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (private event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [post]
func (c *EventController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.JoinEvent(r.Context(), caller, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			helpers.WriteJSONSuccess(w, http.StatusOK, JoinResponse{Status: "already_member"})
			return
		}
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, JoinResponse{Status: "joined", Event: event})
}

// LeaveEvent godoc
// @Summary Leave an event
// @Description Removes the authenticated principal from the event roster. Leaving an event the principal is not on is a no-op reported as not_member. The owner cannot leave.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "status: left or not_member"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/leave [post]
func (c *EventController) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.LeaveEvent(r.Context(), caller, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotMember) {
			helpers.WriteJSONSuccess(w, http.StatusOK, JoinResponse{Status: "not_member"})
			return
		}
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, JoinResponse{Status: "left", Event: event})
}

// CheckConflictResponse is the data payload for GET /events/conflicts.
type CheckConflictResponse struct {
	Conflict  bool       `json:"conflict"`
	EventID   string     `json:"event_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
}

// CheckConflict godoc
// @Summary Check a time interval for double-booking
// @Description Reports whether the candidate interval overlaps an existing event on the caller's calendar. Touching endpoints do not conflict. Advisory only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param start query string true "Interval start (RFC 3339)"
// @Param end query string true "Interval end (RFC 3339)"
// @Param exclude query string false "Event ID to exclude (update-in-place checks)"
// @Success 200 {object} helpers.APIResponse "data contains the conflict report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/conflicts [get]
func (c *EventController) CheckConflict(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be RFC 3339")
		return
	}
	warning, err := c.Service.CheckConflict(r.Context(), caller, start, end, r.URL.Query().Get("exclude"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	resp := CheckConflictResponse{Conflict: warning != nil}
	if warning != nil {
		resp.EventID = warning.EventID
		resp.Title = warning.Title
		resp.StartTime = &warning.StartTime
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// writeEventError maps domain sentinel errors to HTTP responses and logs the
// rest as internal errors.
func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
