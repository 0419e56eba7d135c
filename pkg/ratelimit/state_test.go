package ratelimit

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestDefaultState_NotThrottling(t *testing.T) {
	state := DefaultState()

	if state.Observed {
		t.Error("Default state should not be marked observed")
	}

	if state.Exhausted() {
		t.Error("Default state should never be exhausted")
	}
}

func TestState_Exhausted(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		observed  bool
		want      bool
	}{
		{
			name:      "observed with calls remaining",
			remaining: 14,
			observed:  true,
			want:      false,
		},
		{
			name:      "observed and spent",
			remaining: 0,
			observed:  true,
			want:      true,
		},
		{
			name:      "unobserved zero remaining",
			remaining: 0,
			observed:  false,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := State{Remaining: tt.remaining, Observed: tt.observed}
			if got := state.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	future := State{ResetAt: time.Now().Add(30 * time.Second)}
	if d := future.TimeUntilReset(); d <= 25*time.Second || d > 30*time.Second {
		t.Errorf("TimeUntilReset = %v, want approximately 30s", d)
	}

	past := State{ResetAt: time.Now().Add(-time.Minute)}
	if d := past.TimeUntilReset(); d != 0 {
		t.Errorf("TimeUntilReset for past reset = %v, want 0", d)
	}
}

func TestStateFromHeaders(t *testing.T) {
	resetAt := time.Now().Add(90 * time.Second).Unix()

	tests := []struct {
		name         string
		remainHeader string
		resetHeader  string
		wantOK       bool
		wantRemain   int
	}{
		{
			name:         "valid headers",
			remainHeader: "14",
			resetHeader:  strconv.FormatInt(resetAt, 10),
			wantOK:       true,
			wantRemain:   14,
		},
		{
			name:         "exhausted window",
			remainHeader: "0",
			resetHeader:  strconv.FormatInt(resetAt, 10),
			wantOK:       true,
			wantRemain:   0,
		},
		{
			name:        "missing remaining header",
			resetHeader: strconv.FormatInt(resetAt, 10),
			wantOK:      false,
		},
		{
			name:         "missing reset header",
			remainHeader: "14",
			wantOK:       false,
		},
		{
			name:         "unparseable remaining",
			remainHeader: "plenty",
			resetHeader:  strconv.FormatInt(resetAt, 10),
			wantOK:       false,
		},
		{
			name:         "unparseable reset",
			remainHeader: "14",
			resetHeader:  "soon",
			wantOK:       false,
		},
		{
			name:   "no headers at all",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.remainHeader != "" {
				headers.Set(HeaderRemaining, tt.remainHeader)
			}
			if tt.resetHeader != "" {
				headers.Set(HeaderReset, tt.resetHeader)
			}

			state, ok := StateFromHeaders(headers)
			if ok != tt.wantOK {
				t.Fatalf("StateFromHeaders ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}

			if state.Remaining != tt.wantRemain {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemain)
			}
			if !state.Observed {
				t.Error("Parsed state should be marked observed")
			}
			if state.ResetAt.Unix() != resetAt {
				t.Errorf("ResetAt = %v, want epoch %d", state.ResetAt, resetAt)
			}
		})
	}
}
