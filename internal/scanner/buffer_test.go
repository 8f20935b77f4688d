package scanner

import (
	"testing"
)

func TestBufferSession(t *testing.T) {
	b := NewBuffer()

	// Scans before Start are dropped.
	b.Add("early")
	if b.Len() != 0 {
		t.Errorf("Len = %d before Start, want 0", b.Len())
	}

	b.Start()
	if !b.Active() {
		t.Error("Active = false after Start")
	}

	b.Add("  9780306406157  ")
	b.Add("")
	b.Add("036000291452")

	got := b.Stop()
	if b.Active() {
		t.Error("Active = true after Stop")
	}

	want := []string{"9780306406157", "036000291452"}
	if len(got) != len(want) {
		t.Fatalf("Stop returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("codes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBufferStartClearsPrevious(t *testing.T) {
	b := NewBuffer()
	b.Start()
	b.Add("one")
	b.Start()
	b.Add("two")

	got := b.Stop()
	if len(got) != 1 || got[0] != "two" {
		t.Errorf("Stop = %v, want just [two]", got)
	}
}

func TestBufferStopDrains(t *testing.T) {
	b := NewBuffer()
	b.Start()
	b.Add("one")
	b.Stop()

	b.Start()
	if got := b.Stop(); len(got) != 0 {
		t.Errorf("second session returned stale codes: %v", got)
	}
}

func TestBufferConcurrentAdds(t *testing.T) {
	b := NewBuffer()
	b.Start()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				b.Add("code")
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	if got := len(b.Stop()); got != 200 {
		t.Errorf("collected %d codes, want 200", got)
	}
}
