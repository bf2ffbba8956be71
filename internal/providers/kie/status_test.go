package kie

import (
	"testing"

	"adforge-server/internal/domain"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		state string
		want  domain.JobStatus
	}{
		{"waiting", domain.JobStatusInQueue},
		{"queuing", domain.JobStatusInQueue},
		{"generating", domain.JobStatusInProgress},
		{"success", domain.JobStatusCompleted},
		{"fail", domain.JobStatusFailed},
		{"  SUCCESS  ", domain.JobStatusCompleted},
	}
	for _, tc := range cases {
		got, err := MapStatus(tc.state)
		if err != nil {
			t.Fatalf("MapStatus(%q): %v", tc.state, err)
		}
		if got != tc.want {
			t.Errorf("MapStatus(%q) = %s, want %s", tc.state, got, tc.want)
		}
	}
}

func TestMapStatusUnknown(t *testing.T) {
	if _, err := MapStatus("exploded"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestMapStatusIsDeterministic(t *testing.T) {
	first, _ := MapStatus("generating")
	for i := 0; i < 10; i++ {
		again, _ := MapStatus("generating")
		if again != first {
			t.Fatalf("MapStatus not deterministic: %s vs %s", first, again)
		}
	}
}
