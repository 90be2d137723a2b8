package event

import "testing"

func TestCanMutate(t *testing.T) {
	e := Event{ID: "e1", OrganizerID: "alice"}

	tests := []struct {
		name  string
		actor string
		op    Operation
		want  bool
	}{
		{"anonymous_read", "", OpRead, true},
		{"stranger_read", "bob", OpRead, true},
		{"organizer_read", "alice", OpRead, true},
		{"organizer_write", "alice", OpWrite, true},
		{"stranger_write", "bob", OpWrite, false},
		{"anonymous_write", "", OpWrite, false},
		{"unknown_op", "alice", Operation(42), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.actor, e, tt.op); got != tt.want {
				t.Fatalf("CanMutate(%q, op=%d) = %v, want %v", tt.actor, tt.op, got, tt.want)
			}
		})
	}
}

func TestCanMutateNoOrganizerNeverWritable(t *testing.T) {
	orphan := Event{ID: "e2"}

	if CanMutate("", orphan, OpWrite) {
		t.Fatalf("an empty actor must never match an empty organizer")
	}
}
