package execution

import (
	"testing"

	"dcengine/internal/schema"
)

func TestLifecycleOpenDefaultsToPending(t *testing.T) {
	l := NewLifecycle()
	l.Open("ORDER_1")
	status, ok := l.Status("ORDER_1")
	if !ok || status != schema.ExecutionPending {
		t.Fatalf("expected pending status, got %s (tracked=%v)", status, ok)
	}
}

func TestLifecycleTransitionToFilled(t *testing.T) {
	l := NewLifecycle()
	l.Open("ORDER_1")
	if err := l.Transition("ORDER_1", schema.ExecutionFilled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, _ := l.Status("ORDER_1")
	if status != schema.ExecutionFilled {
		t.Fatalf("expected filled status, got %s", status)
	}
}

func TestLifecycleRejectsTransitionAfterTerminal(t *testing.T) {
	l := NewLifecycle()
	l.Open("ORDER_1")
	l.Transition("ORDER_1", schema.ExecutionRejected)

	if err := l.Transition("ORDER_1", schema.ExecutionFilled); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestLifecycleUnknownOrder(t *testing.T) {
	l := NewLifecycle()
	if err := l.Transition("ORDER_MISSING", schema.ExecutionFilled); err != ErrUnknownOrder {
		t.Fatalf("expected ErrUnknownOrder, got %v", err)
	}
}
