package statemachine

import (
	"fmt"

	"github.com/fairwayfoods/fairway-app/session"
)

// Order statuses, in lifecycle order. There is no cancelled or rejected
// status; ready is terminal.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
)

// successor maps each status to the only status it may advance to.
var successor = map[string]string{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
}

// actionLabels are the button captions the dashboards show for the one legal
// advance out of each status.
var actionLabels = map[string]string{
	StatusPending:   "Start Preparing",
	StatusPreparing: "Mark as Ready",
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

// Terminal reports whether the status has no further transition.
func Terminal(s string) bool {
	_, ok := successor[s]
	return !ok && ValidStatus(s)
}

// Next returns the single legal successor of a status. ok is false for the
// terminal status and for unknown input.
func Next(s string) (string, bool) {
	next, ok := successor[s]
	return next, ok
}

// ActionLabel returns the advance-button caption for a status, or "" when no
// action is exposed.
func ActionLabel(s string) string {
	return actionLabels[s]
}

// CanAdvance validates a requested transition. Only adjacent forward moves
// are legal, and only staff actors may perform them; the placing customer can
// never advance their own order.
func CanAdvance(from, to, actorRole string) error {
	if !session.Allows(actorRole, session.CapAdvanceOrders) {
		return fmt.Errorf("role %q may not advance orders", actorRole)
	}
	if !ValidStatus(to) {
		return fmt.Errorf("unknown order status %q", to)
	}
	next, ok := successor[from]
	if !ok {
		return fmt.Errorf("order is %s and cannot be advanced", from)
	}
	if to != next {
		return fmt.Errorf("illegal transition %s -> %s, next status is %s", from, to, next)
	}
	return nil
}
