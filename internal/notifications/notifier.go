package notifications

import (
	"context"
	"time"
)

// Notice carries everything a registration message needs, so senders never
// reach back into the store.
type Notice struct {
	RegistrationID string
	Username       string
	Email          string
	EventID        string
	EventTitle     string
	EventDate      time.Time
	Location       string
}

// Notifier delivers best-effort registration messages. Callers treat any
// returned error as non-fatal.
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, n Notice) error
	SendUnregistrationNotice(ctx context.Context, n Notice) error
}

const (
	KindRegistrationConfirmation = "registration.confirmation"
	KindUnregistrationNotice     = "registration.cancellation"
)
