package notifications

import (
	"strings"
	"testing"
	"time"
)

func TestRegistrationConfirmationMessage(t *testing.T) {
	n := Notice{
		Username:   "alice",
		Email:      "alice@example.com",
		EventTitle: "GopherCon",
		EventDate:  time.Date(2026, 11, 5, 9, 30, 0, 0, time.UTC),
		Location:   "Berlin",
	}

	msg := RegistrationConfirmationMessage(n)

	if msg.To != "alice@example.com" {
		t.Fatalf("to = %q", msg.To)
	}
	if msg.Subject != "Registration Confirmed: GopherCon" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"Hello alice", "Date: 2026-11-05 09:30", "Location: Berlin"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestUnregistrationMessage(t *testing.T) {
	msg := UnregistrationMessage(Notice{Username: "bob", EventTitle: "Meetup"})

	if msg.Subject != "Unregistered from: Meetup" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "You have been unregistered") {
		t.Fatalf("body = %s", msg.Body)
	}
}

func TestConfirmationWithoutLocation(t *testing.T) {
	msg := RegistrationConfirmationMessage(Notice{Username: "carol", EventTitle: "Meetup"})

	if !strings.Contains(msg.Body, "Location: None\n") {
		t.Fatalf("body = %s", msg.Body)
	}
}
