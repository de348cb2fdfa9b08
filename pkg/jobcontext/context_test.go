package jobcontext

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJobBegin_Metadata(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), 42, "insights", 3, time.Minute)
	defer cancel()

	md := GetJobMetadata(ctx)
	if md.MeetingID != 42 || md.JobType != "insights" || md.WorkerID != 3 {
		t.Fatalf("unexpected metadata %+v", md)
	}
	if id, ok := GetRunID(ctx); !ok || id != md.RunID || id.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected a run id, got %v", id)
	}
	if md.StartTime.IsZero() {
		t.Fatal("expected a start time")
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline")
	}

	fields := md.Fields()
	if len(fields) != 4 || fields[0].Key != "run_id" || fields[0].String != md.RunID.String() {
		t.Fatalf("unexpected log fields %+v", fields)
	}
}

func TestJobBegin_RunIDsDiffer(t *testing.T) {
	a, cancelA := JobBegin(context.Background(), 1, "insights", 0, time.Minute)
	defer cancelA()
	b, cancelB := JobBegin(context.Background(), 1, "insights", 0, time.Minute)
	defer cancelB()

	idA, _ := GetRunID(a)
	idB, _ := GetRunID(b)
	if idA == idB {
		t.Fatal("each job run must get its own id")
	}
}

func TestJobEnd_RecoversPanic(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), 1, "insights", 0, time.Second)
	defer cancel()

	err := JobEnd(ctx, func(context.Context) error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "panic recovered: boom") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestJobEnd_RunsOnce(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), 1, "insights", 0, time.Second)
	defer cancel()

	calls := 0
	sentinel := errors.New("connection refused")
	err := JobEnd(ctx, func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestJobEnd_CancelledContext(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), 1, "insights", 0, time.Second)
	cancel()

	called := false
	err := JobEnd(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("job must not run on a cancelled context (err=%v, called=%v)", err, called)
	}
}
