package history

import (
	"testing"
	"time"

	"github.com/starford/cutline/internal/clock"
)

func delivered(d *Debouncer) bool {
	select {
	case <-d.C():
		d.Fired()
		return true
	default:
		return false
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	d := NewDebouncer(clk, 300*time.Millisecond)

	if d.C() != nil {
		t.Fatal("idle debouncer should expose a nil channel")
	}

	d.Trigger()
	clk.Advance(200 * time.Millisecond)
	d.Trigger() // resets, does not stack
	clk.Advance(200 * time.Millisecond)
	if delivered(d) {
		t.Fatal("fired before the quiet period after the last trigger")
	}
	clk.Advance(100 * time.Millisecond)
	if !delivered(d) {
		t.Fatal("did not fire after the quiet period")
	}
	if d.Pending() {
		t.Error("still pending after Fired")
	}
	clk.Advance(time.Second)
	if delivered(d) {
		t.Error("fired twice for one burst")
	}
}

func TestDebouncerCancel(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	d := NewDebouncer(clk, 0)

	if d.Cancel() {
		t.Error("cancel with nothing pending should report false")
	}
	d.Trigger()
	if !d.Cancel() {
		t.Error("cancel should report the dropped capture")
	}
	if d.Cancel() {
		t.Error("second cancel should be a no-op")
	}
	clk.Advance(time.Second)
	if delivered(d) {
		t.Error("cancelled capture fired")
	}
	if clk.Active() != 0 {
		t.Errorf("dangling timers: %d", clk.Active())
	}

	d.Trigger()
	clk.Advance(DefaultDebounce)
	if !delivered(d) {
		t.Error("debouncer unusable after cancel")
	}
}
