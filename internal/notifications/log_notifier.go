package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes messages to the structured log instead of sending them.
// It is the development backend.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendRegistrationConfirmation(ctx context.Context, in Notice) error {
	return n.emit(ctx, KindRegistrationConfirmation, in, RegistrationConfirmationMessage(in))
}

func (n *LogNotifier) SendUnregistrationNotice(ctx context.Context, in Notice) error {
	return n.emit(ctx, KindUnregistrationNotice, in, UnregistrationMessage(in))
}

func (n *LogNotifier) emit(ctx context.Context, kind string, in Notice, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.console",
		"kind", kind,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
		"event_id", in.EventID,
		"registration_id", in.RegistrationID,
	)
	return nil
}
