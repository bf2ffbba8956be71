package wavespeed

import (
	"testing"

	"adforge-server/internal/domain"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		status string
		want   domain.JobStatus
	}{
		{"created", domain.JobStatusInQueue},
		{"processing", domain.JobStatusInProgress},
		{"completed", domain.JobStatusCompleted},
		{"failed", domain.JobStatusFailed},
		{" Completed ", domain.JobStatusCompleted},
	}
	for _, tc := range cases {
		got, err := MapStatus(tc.status)
		if err != nil {
			t.Fatalf("MapStatus(%q): %v", tc.status, err)
		}
		if got != tc.want {
			t.Errorf("MapStatus(%q) = %s, want %s", tc.status, got, tc.want)
		}
	}

	if _, err := MapStatus("starting"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
