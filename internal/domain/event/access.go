package event

// Operation classifies a request against an existing event.
type Operation uint8

const (
	OpRead Operation = iota
	OpWrite
)

// CanMutate is the ownership rule for events: anyone (anonymous included) may
// read, only the organizer may update or delete. Creating an event is not
// governed here.
func CanMutate(actorID string, e Event, op Operation) bool {
	switch op {
	case OpRead:
		return true
	case OpWrite:
		return actorID != "" && actorID == e.OrganizerID
	default:
		return false
	}
}
