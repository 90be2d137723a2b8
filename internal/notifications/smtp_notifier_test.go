package notifications

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"
)

func TestNewSMTPNotifier(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SMTPConfig
		wantErr string
		want    SMTPConfig
	}{
		{name: "host required", cfg: SMTPConfig{From: "events@example.com"}, wantErr: "host"},
		{name: "sender required", cfg: SMTPConfig{Host: "smtp.example.com"}, wantErr: "sender"},
		{
			name: "defaults",
			cfg:  SMTPConfig{Host: "smtp.example.com", Username: "mailer@example.com"},
			want: SMTPConfig{Host: "smtp.example.com", Username: "mailer@example.com", From: "mailer@example.com", Port: 587, Timeout: 10 * time.Second},
		},
		{
			name: "explicit values kept",
			cfg:  SMTPConfig{Host: "smtp.example.com", From: "events@example.com", Port: 2525, Timeout: time.Second},
			want: SMTPConfig{Host: "smtp.example.com", From: "events@example.com", Port: 2525, Timeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSMTPNotifier(tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.cfg != tt.want {
				t.Fatalf("cfg = %+v, want %+v", n.cfg, tt.want)
			}
		})
	}
}

func TestSMTPClientOptions(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SMTPConfig
		wantAddr   string
		wantPolicy string
	}{
		{name: "plain relay", cfg: SMTPConfig{Host: "relay.local", From: "a@example.com", Port: 25}, wantAddr: "relay.local:25", wantPolicy: "NoTLS"},
		{name: "tls with auth", cfg: SMTPConfig{Host: "smtp.example.com", Username: "u@example.com", Password: "secret", UseTLS: true}, wantAddr: "smtp.example.com:587", wantPolicy: "TLSMandatory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSMTPNotifier(tt.cfg)
			if err != nil {
				t.Fatalf("NewSMTPNotifier: %v", err)
			}

			client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if got := client.ServerAddr(); got != tt.wantAddr {
				t.Fatalf("addr = %q, want %q", got, tt.wantAddr)
			}
			if got := client.TLSPolicy(); got != tt.wantPolicy {
				t.Fatalf("tls policy = %q, want %q", got, tt.wantPolicy)
			}
		})
	}
}

func TestSMTPSendRejectsBadAddresses(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{name: "bad sender", from: "not an address", to: "alice@example.com", wantErr: "set sender"},
		{name: "bad recipient", from: "events@example.com", to: "alice at example", wantErr: "set recipient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSMTPNotifier(SMTPConfig{Host: "127.0.0.1", Port: 1, From: tt.from})
			if err != nil {
				t.Fatalf("NewSMTPNotifier: %v", err)
			}

			err = n.SendRegistrationConfirmation(context.Background(), Notice{Email: tt.to, Username: "alice", EventTitle: "Meetup"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
