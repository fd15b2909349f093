package analyses

import (
	"context"
	"testing"
	"time"
)

func TestDetachRunSurvivesParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(WithRequestID(context.Background(), "req-1"))
	runCtx, cancel := detachRun(parent, time.Second)
	defer cancel()

	cancelParent()
	if err := runCtx.Err(); err != nil {
		t.Fatalf("expected detached context alive, got %v", err)
	}
	if got := requestIDFromContext(runCtx); got != "req-1" {
		t.Fatalf("expected request id carried over, got %q", got)
	}
	deadline, ok := runCtx.Deadline()
	if !ok || time.Until(deadline) > time.Second+runTimeout {
		t.Fatalf("expected deadline bounded by delay plus run timeout")
	}
}

func TestWithRequestIDIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	if WithRequestID(ctx, "") != ctx {
		t.Fatalf("expected context unchanged for empty id")
	}
}
