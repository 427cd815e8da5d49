package jobcontext

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJobBeginCarriesMetadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := JobBegin(context.Background(), jobID, "generation", 7)
	defer cancel()

	gotID, ok := GetJobID(ctx)
	if !ok || gotID != jobID {
		t.Errorf("GetJobID = %v, %v; want %v, true", gotID, ok, jobID)
	}
	if jobType, _ := GetJobType(ctx); jobType != "generation" {
		t.Errorf("GetJobType = %q, want %q", jobType, "generation")
	}
	if GetWorkerID(ctx) != 7 {
		t.Errorf("GetWorkerID = %d, want 7", GetWorkerID(ctx))
	}
	if GetMaxRetries(ctx) != defaultMaxRetries {
		t.Errorf("GetMaxRetries = %d, want %d", GetMaxRetries(ctx), defaultMaxRetries)
	}
	if _, ok := GetJobStartTime(ctx); !ok {
		t.Error("GetJobStartTime missing")
	}
}

func TestJobEndNonRetryableStopsImmediately(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "generation", 0)
	defer cancel()

	calls := 0
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return errors.New("invalid recording URL")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("job function called %d times, want 1", calls)
	}
	if !strings.Contains(err.Error(), "non-retryable") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJobEndRecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "generation", 0)
	defer cancel()

	err := JobEnd(ctx, func(context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected error from panic")
	}
	if !strings.Contains(err.Error(), "panic recovered") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJobEndSuccess(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), uuid.New(), "generation", 0)
	defer cancel()

	if err := JobEnd(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("JobEnd: %v", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("connection refused"), true},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("deadlock detected"), true},
		{errors.New("503 Service Unavailable"), true},
		{errors.New("invalid request payload"), false},
		{errors.New("quote text not found in transcript"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(0, 5*time.Second); got != 5*time.Second {
		t.Errorf("attempt 0 = %v, want 5s", got)
	}
	if got := CalculateBackoff(2, 5*time.Second); got != 20*time.Second {
		t.Errorf("attempt 2 = %v, want 20s", got)
	}
	if got := CalculateBackoff(10, 5*time.Second); got != 60*time.Second {
		t.Errorf("attempt 10 = %v, want capped 60s", got)
	}
	if got := CalculateBackoff(-1, 5*time.Second); got != 5*time.Second {
		t.Errorf("negative attempt = %v, want 5s", got)
	}
}
