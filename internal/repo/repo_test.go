package repo

import (
	"testing"

	"github.com/geocoder89/eventmanager/internal/domain/event"
)

func TestContainsPattern(t *testing.T) {
	tests := map[string]string{
		"conf":    "%conf%",
		"50%":     `%50\%%`,
		"a_b":     `%a\_b%`,
		`c:\path`: `%c:\\path%`,
	}
	for in, want := range tests {
		if got := ContainsPattern(in); got != want {
			t.Fatalf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		in   event.Ordering
		col  string
		desc bool
	}{
		{event.OrderDateDesc, "date", true},
		{event.OrderDateAsc, "date", false},
		{event.OrderTitleAsc, "title", false},
		{event.OrderCreatedAtDesc, "created_at", true},
		{event.Ordering("bogus"), "date", true},
	}
	for _, tt := range tests {
		col, desc := OrderBy(tt.in)
		if col != tt.col || desc != tt.desc {
			t.Fatalf("OrderBy(%q) = (%q, %v), want (%q, %v)", tt.in, col, desc, tt.col, tt.desc)
		}
	}
}
