// Package scroll implements a time-boxed smooth scroll toward a target whose
// position may shift mid-flight. The container's required offset for the
// target is re-read on every frame, because lazily measured content above the
// target can change its position after the animation starts; sampling the
// position once at the start would land in the wrong place.
package scroll

import (
	"math"
	"time"
)

// Container is the scrollable surface the animator drives.
type Container interface {
	Offset() float64
	SetOffset(float64)
	// TargetOffset reports the offset that would align the identified
	// target's top edge with the container's visible top (minus any
	// configured inset), computed from the target's current position.
	// ok is false when the target no longer exists.
	TargetOffset(id string) (offset float64, ok bool)
	MaxOffset() float64
}

// Animator runs at most one animation at a time. Starting a new one cancels
// the previous one; stale frame ticks are detected via the generation counter.
type Animator struct {
	duration time.Duration

	container   Container
	target      string
	startOffset float64
	startTime   time.Time
	generation  int
	active      bool
}

func NewAnimator(duration time.Duration) *Animator {
	if duration <= 0 {
		duration = 500 * time.Millisecond
	}
	return &Animator{duration: duration}
}

// Start begins animating toward the target, cancelling any in-flight
// animation. It returns the new generation; frame ticks carrying an older
// generation must be dropped by the caller.
func (a *Animator) Start(targetID string, c Container, now time.Time) int {
	a.generation++
	a.container = c
	a.target = targetID
	a.startOffset = c.Offset()
	a.startTime = now
	a.active = true
	return a.generation
}

func (a *Animator) Active() bool { return a.active }

func (a *Animator) Target() string {
	if !a.active {
		return ""
	}
	return a.target
}

func (a *Animator) Generation() int { return a.generation }

// Cancel stops the in-flight animation without a final alignment.
func (a *Animator) Cancel() {
	a.active = false
	a.generation++
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Step advances the animation to the given time and returns true when it has
// finished. The target offset is recomputed from the container on every call;
// the interpolation runs between the recorded start offset and the target's
// CURRENT required offset. After the duration elapses the offset is snapped
// to one final freshly computed alignment rather than the last interpolated
// value.
func (a *Animator) Step(now time.Time) bool {
	if !a.active {
		return true
	}

	progress := float64(now.Sub(a.startTime)) / float64(a.duration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	target, ok := a.container.TargetOffset(a.target)
	if !ok {
		// Target vanished mid-flight; stop where we are.
		a.active = false
		return true
	}

	next := a.startOffset + (target-a.startOffset)*easeOutCubic(progress)
	a.container.SetOffset(a.clamp(next))

	if progress < 1 {
		return false
	}

	// Final precise re-alignment: setting the offset above may have forced
	// more content to be measured, moving the target one last time.
	if final, ok := a.container.TargetOffset(a.target); ok {
		a.container.SetOffset(a.clamp(final))
	}
	a.active = false
	return true
}

func (a *Animator) clamp(offset float64) float64 {
	if offset < 0 {
		return 0
	}
	if max := a.container.MaxOffset(); offset > max {
		return max
	}
	return offset
}
