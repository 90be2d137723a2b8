package utils

import (
	"net/url"
	"testing"
)

func TestIsUUID(t *testing.T) {
	if !IsUUID("3b241101-e2bb-4255-8caf-4136c566a962") {
		t.Fatalf("canonical uuid rejected")
	}
	for _, s := range []string{"", "42", "not-a-uuid", "3b241101e2bb42558caf4136c566a962", "urn:uuid:3b241101-e2bb-4255-8caf-4136c566a962"} {
		if IsUUID(s) {
			t.Fatalf("IsUUID(%q) = true", s)
		}
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		want    Page
		wantErr bool
	}{
		{"", Page{1, DefaultPageSize}, false},
		{"page=3&page_size=5", Page{3, 5}, false},
		{"page_size=1000", Page{1, MaxPageSize}, false},
		{"page_size=-1", Page{1, DefaultPageSize}, false},
		{"page=0", Page{}, true},
		{"page=abc", Page{}, true},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParsePage(q)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePage(%q) err = %v", tt.query, err)
		}
		if got != tt.want {
			t.Fatalf("ParsePage(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestPageLinks(t *testing.T) {
	base, _ := url.Parse("http://api.test/api/events?title=go&page=2")

	next, prev := PageLinks(*base, Page{Number: 2, Size: 10}, 35)
	if next == nil || *next != "http://api.test/api/events?page=3&title=go" {
		t.Fatalf("next = %v", next)
	}
	if prev == nil || *prev != "http://api.test/api/events?title=go" {
		t.Fatalf("previous = %v", prev)
	}

	next, prev = PageLinks(*base, Page{Number: 1, Size: 10}, 10)
	if next != nil || prev != nil {
		t.Fatalf("single page should have no links: %v %v", next, prev)
	}

	if LastPage(35, 10) != 4 || LastPage(0, 10) != 1 {
		t.Fatalf("LastPage wrong")
	}
}
