package gemini

import (
	"testing"

	"adforge-server/internal/domain"
)

func TestMapOperation(t *testing.T) {
	cases := []struct {
		done   bool
		failed bool
		want   domain.JobStatus
	}{
		{false, false, domain.JobStatusInProgress},
		{true, false, domain.JobStatusCompleted},
		{true, true, domain.JobStatusFailed},
		{false, true, domain.JobStatusInProgress},
	}
	for _, tc := range cases {
		if got := MapOperation(tc.done, tc.failed); got != tc.want {
			t.Errorf("MapOperation(%v, %v) = %s, want %s", tc.done, tc.failed, got, tc.want)
		}
	}
}
