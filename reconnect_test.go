package mqtt5

import (
	"testing"
	"time"
)

func TestBackoffDoublesUntilCapped(t *testing.T) {
	b := newBackoff(time.Second, 8*time.Second)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %s, want %s", i, got, w)
		}
	}
}

func TestBackoffResetZeroesAttempts(t *testing.T) {
	b := newBackoff(time.Second, 8*time.Second)
	b.Next()
	b.Next()
	if b.Attempts() != 2 {
		t.Fatalf("Attempts() = %d, want 2", b.Attempts())
	}
	b.Reset()
	if b.Attempts() != 0 {
		t.Errorf("Attempts() after Reset = %d, want 0", b.Attempts())
	}
	if got := b.Next(); got != time.Second {
		t.Errorf("Next() after Reset = %s, want %s", got, time.Second)
	}
}

func TestBackoffAppliesDefaultsForNonPositiveInputs(t *testing.T) {
	b := newBackoff(0, 0)
	if b.initial != 5*time.Second || b.max != 60*time.Second {
		t.Errorf("newBackoff(0, 0) = {%s, %s}, want defaults", b.initial, b.max)
	}
}
