package domain

// BusyTitle replaces the real title on masked projections.
const BusyTitle = "Busy"

// Access is the visibility tier computed for one (viewer, event) pair.
type Access int

const (
	// AccessFull exposes the whole event, description decrypted.
	AccessFull Access = iota
	// AccessMasked exposes only the occupied time slot.
	AccessMasked
)

// ResolveAccess computes what viewer may see of e: full access for the
// owner, for participants, and for public events; masked for everyone else.
// The result differs per viewer, so it must be computed for each pair and
// never cached across viewers.
func ResolveAccess(viewer string, e *Event) Access {
	if e.IsPublic || viewer == e.Owner || e.Participants.Contains(viewer) {
		return AccessFull
	}
	return AccessMasked
}

// Masked returns the privacy-reduced projection of e: the time slot stays
// visible so viewers can see it is occupied, the content does not. The
// ciphertext description never reaches the codec on this path.
func (e *Event) Masked() *Event {
	return &Event{
		ID:        e.ID,
		Title:     BusyTitle,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Owner:     e.Owner,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
