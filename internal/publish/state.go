// Package publish is the client half of the publish protocol: it sends a deck
// with a PIN-stamped date to the storage service and remembers the identity
// used for each deck.
package publish

// State tracks where the current deck is in the publish flow.
type State int

const (
	Unpublished State = iota
	Publishing
	Published
	// ConflictPendingConfirmation means a non-local deck collides with a
	// local record of the same name and waits for the user to confirm.
	ConflictPendingConfirmation
	// Rejected means the service refused the PIN. The deck is unchanged.
	Rejected
)

func (s State) String() string {
	switch s {
	case Unpublished:
		return "unpublished"
	case Publishing:
		return "publishing"
	case Published:
		return "published"
	case ConflictPendingConfirmation:
		return "conflict"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}
