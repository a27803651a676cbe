package clock

import (
	"testing"
	"time"
)

func TestSystem_Monotonic(t *testing.T) {
	c := System()

	a := c.Now()
	b := c.Now()

	if b.Before(a) {
		t.Errorf("Now() went backwards: %v then %v", a, b)
	}
}

func TestFake_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	f.Advance(5 * time.Second)

	want := start.Add(5 * time.Second)
	if got := f.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFake_SetIgnoresPast(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	f.Set(start.Add(-time.Hour))

	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now() after past Set = %v, want %v", got, start)
	}

	future := start.Add(time.Minute)
	f.Set(future)

	if got := f.Now(); !got.Equal(future) {
		t.Errorf("Now() after future Set = %v, want %v", got, future)
	}
}
