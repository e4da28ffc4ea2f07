package scroll

import (
	"testing"
	"time"
)

// fakeContainer simulates lazy layout: once the offset crosses shiftAt, the
// target's required offset moves by shiftBy, the way measuring content above
// a target moves it in a real transcript.
type fakeContainer struct {
	offset  float64
	max     float64
	targets map[string]float64
	shiftID string
	shiftAt float64
	shiftBy float64
	sets    int
}

func (c *fakeContainer) Offset() float64 { return c.offset }

func (c *fakeContainer) SetOffset(v float64) {
	c.offset = v
	c.sets++
	if c.shiftID != "" && v >= c.shiftAt {
		c.targets[c.shiftID] += c.shiftBy
		c.shiftID = ""
	}
}

func (c *fakeContainer) TargetOffset(id string) (float64, bool) {
	offset, ok := c.targets[id]
	return offset, ok
}

func (c *fakeContainer) MaxOffset() float64 { return c.max }

func runToCompletion(t *testing.T, a *Animator, start time.Time, duration time.Duration) {
	t.Helper()
	for i := 1; i <= 60; i++ {
		now := start.Add(time.Duration(i) * duration / 50)
		if a.Step(now) {
			return
		}
	}
	t.Fatalf("animation did not finish")
}

func TestStepLandsOnShiftedTarget(t *testing.T) {
	c := &fakeContainer{
		max:     10000,
		targets: map[string]float64{"t2": 400},
		shiftID: "t2",
		shiftAt: 200,
		shiftBy: 150,
	}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)
	a.Start("t2", c, start)

	runToCompletion(t, a, start, 500*time.Millisecond)

	if c.offset != 550 {
		t.Fatalf("final offset = %v, want the shifted target 550", c.offset)
	}
	if a.Active() {
		t.Fatalf("animator still active after completion")
	}
}

func TestStepFinalAlignmentIsExact(t *testing.T) {
	c := &fakeContainer{max: 10000, targets: map[string]float64{"t1": 333}}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)
	a.Start("t1", c, start)

	// Jump straight past the duration: even a single late frame must end
	// with the precise alignment.
	if done := a.Step(start.Add(2 * time.Second)); !done {
		t.Fatalf("step past duration must finish")
	}
	if c.offset != 333 {
		t.Fatalf("final offset = %v, want 333", c.offset)
	}
}

func TestStartCancelsPreviousAnimation(t *testing.T) {
	c := &fakeContainer{max: 10000, targets: map[string]float64{"t1": 400, "t2": 900}}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)

	gen1 := a.Start("t1", c, start)
	a.Step(start.Add(100 * time.Millisecond))

	gen2 := a.Start("t2", c, start.Add(120*time.Millisecond))
	if gen2 == gen1 {
		t.Fatalf("generation must change on restart")
	}
	if a.Target() != "t2" {
		t.Fatalf("target = %q, want t2", a.Target())
	}

	runToCompletion(t, a, start.Add(120*time.Millisecond), 500*time.Millisecond)
	if c.offset != 900 {
		t.Fatalf("final offset = %v, want the second target 900", c.offset)
	}
}

func TestCancelStopsWithoutAlignment(t *testing.T) {
	c := &fakeContainer{max: 10000, targets: map[string]float64{"t1": 800}}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)
	a.Start("t1", c, start)
	a.Step(start.Add(50 * time.Millisecond))
	mid := c.offset

	a.Cancel()
	if a.Active() {
		t.Fatalf("cancel must deactivate")
	}
	if done := a.Step(start.Add(100 * time.Millisecond)); !done {
		t.Fatalf("step after cancel must report done")
	}
	if c.offset != mid {
		t.Fatalf("cancel must not move the offset further")
	}
}

func TestVanishedTargetStopsAnimation(t *testing.T) {
	c := &fakeContainer{max: 10000, targets: map[string]float64{}}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)
	a.Start("gone", c, start)

	if done := a.Step(start.Add(10 * time.Millisecond)); !done {
		t.Fatalf("vanished target must finish the animation")
	}
	if c.sets != 0 {
		t.Fatalf("vanished target must not move the offset")
	}
}

func TestOffsetClampedToRange(t *testing.T) {
	c := &fakeContainer{max: 100, targets: map[string]float64{"t1": 5000}}
	a := NewAnimator(500 * time.Millisecond)
	start := time.Unix(0, 0)
	a.Start("t1", c, start)

	runToCompletion(t, a, start, 500*time.Millisecond)
	if c.offset != 100 {
		t.Fatalf("offset must clamp to MaxOffset, got %v", c.offset)
	}
}
