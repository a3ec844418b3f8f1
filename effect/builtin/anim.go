package builtin

import "time"

// clock turns presentation timestamps into frame intervals.
type clock struct {
	last    time.Duration
	started bool
}

// tick returns the time since the previous tick. The first tick and
// timestamps running backwards yield zero.
func (c *clock) tick(now time.Duration) time.Duration {
	if !c.started || now < c.last {
		c.last, c.started = now, true
		return 0
	}
	d := now - c.last
	c.last = now
	return d
}

// reset makes the next tick the first one again. Animations starting
// after an idle period call it so the idle time is not counted.
func (c *clock) reset() { c.started = false }

// timeline is a finite animation.
type timeline struct {
	duration time.Duration
	elapsed  time.Duration
}

func (t *timeline) advance(d time.Duration) {
	t.elapsed = min(t.elapsed+d, t.duration)
}

// value returns the progress from 0 to 1.
func (t *timeline) value() float64 {
	if t.duration <= 0 {
		return 1
	}
	return float64(t.elapsed) / float64(t.duration)
}

func (t *timeline) done() bool { return t.elapsed >= t.duration }

// reverse restarts t so that its value continues from 1-value.
func (t *timeline) reverse() {
	t.elapsed = t.duration - t.elapsed
}

func easeOutCubic(x float64) float64 {
	x = 1 - x
	return 1 - x*x*x
}
