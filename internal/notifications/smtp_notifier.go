package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
	Timeout  time.Duration
}

// SMTPNotifier sends plain text mail through a single SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

func (n *SMTPNotifier) SendRegistrationConfirmation(ctx context.Context, in Notice) error {
	return n.send(ctx, RegistrationConfirmationMessage(in))
}

func (n *SMTPNotifier) SendUnregistrationNotice(ctx context.Context, in Notice) error {
	return n.send(ctx, UnregistrationMessage(in))
}

func (n *SMTPNotifier) send(ctx context.Context, m Message) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTimeout(n.cfg.Timeout),
	}

	if n.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts
}
