package form

import "testing"

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	bio := Top("bio")

	tr.Warn(bio)
	if tr.Warning() != "bio" {
		t.Fatalf("expected warning on bio, got %q", tr.Warning())
	}
	if !tr.Begin(bio) {
		t.Fatalf("expected first Begin to succeed")
	}
	if tr.Warning() != "" {
		t.Fatalf("Begin should clear the warning on the same field")
	}
	if tr.Begin(bio) {
		t.Fatalf("expected second Begin to be rejected")
	}
	if !tr.Optimizing(bio) || !tr.Busy() {
		t.Fatalf("expected bio to be optimizing")
	}
	tr.Done(bio)
	if tr.Optimizing(bio) || tr.Busy() {
		t.Fatalf("expected tracker to be idle")
	}
}
