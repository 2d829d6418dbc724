package motion

import (
	"math"

	"skelanim/internal/mathutil"
)

// Animator is a time cursor evaluated against whatever Motion it is handed.
// It owns no clip data. Behavior is the product of three flags:
//
//   - loop: what happens past the end of the motion (wrap or freeze)
//   - repeat: whether Update additionally wraps into [repeatL, repeatR]
//   - ended: set whenever a wrap or clamp occurred; with loop off it
//     freezes Update until ResetTimer
type Animator struct {
	elapsed float64

	repeatL, repeatR float64

	enableRepeat bool
	enableLoop   bool
	wasEnded     bool
}

// NewAnimator returns a looping animator at time zero with repeat disabled.
func NewAnimator() *Animator {
	return &Animator{enableLoop: true}
}

// Update advances the cursor by dt. A clip that ended with looping disabled
// stays frozen on its end pose.
func (a *Animator) Update(dt float64) {
	if a.wasEnded && !a.enableLoop {
		return
	}
	a.elapsed += dt
	a.wasEnded = false
	if a.enableRepeat {
		a.WrapAround(a.repeatL, a.repeatR)
	}
}

// WrapAround brings the cursor into [min, max]. With looping it shifts by
// whole range widths; without it clamps to the nearest bound. Either way an
// adjustment marks the animator as ended. A non-positive width panics.
func (a *Animator) WrapAround(min, max float64) {
	if !(min < max) {
		precondition("WrapAround", "empty range [%v, %v]", min, max)
	}

	if !a.enableLoop {
		switch {
		case a.elapsed < min:
			a.elapsed = min
			a.wasEnded = true
		case a.elapsed > max:
			a.elapsed = max
			a.wasEnded = true
		}
		return
	}

	width := max - min
	if a.elapsed > max {
		a.elapsed -= math.Ceil((a.elapsed-max)/width) * width
		a.wasEnded = true
	}
	if a.elapsed < min {
		a.elapsed += math.Ceil((min-a.elapsed)/width) * width
		a.wasEnded = true
	}
}

// CalcCurrentPose evaluates m at the current time.
//
// An empty motion yields an empty KeyFrame; a single-keyframe motion yields
// that keyframe. Past the end, a non-looping animator returns the last
// keyframe as stored while a looping one folds time back into the clip.
// Returned keyframes taken verbatim from m share its node storage.
func (a *Animator) CalcCurrentPose(m *Motion) KeyFrame {
	frames := m.KeyFrames
	switch len(frames) {
	case 0:
		return KeyFrame{}
	case 1:
		return frames[0]
	}

	whole := frames[len(frames)-1].Seconds
	cur := a.currentSeconds()

	if cur >= whole {
		if !a.enableLoop {
			return frames[len(frames)-1]
		}
		if whole > 0 {
			cur = math.Mod(cur, whole)
		} else {
			cur = 0
		}
	}

	for i := 0; i+1 < len(frames); i++ {
		l, r := &frames[i], &frames[i+1]
		if l.Seconds <= cur && cur < r.Seconds {
			return interpolateAt(*l, *r, cur)
		}
	}

	// No bracket: blend from the last frame toward the first frame of the
	// next loop, placed one average step after the end.
	next := frames[0].Clone()
	next.Seconds = whole + m.AverageStep()
	return interpolateAt(frames[len(frames)-1], next, cur)
}

func interpolateAt(l, r KeyFrame, cur float64) KeyFrame {
	percent := (cur - l.Seconds) / (r.Seconds - l.Seconds + mathutil.Epsilon)
	return InterpolateKeyFrame(l, r, percent)
}

// currentSeconds maps elapsed time to a non-negative clip time. Negative time
// plays backwards from the top of the repeat range when repeat is enabled and
// clamps to zero otherwise.
func (a *Animator) currentSeconds() float64 {
	if a.elapsed >= 0 {
		return a.elapsed
	}
	if a.enableRepeat {
		dist := a.repeatR - a.repeatL
		if dist <= 0 {
			return 0
		}
		return a.repeatR - math.Mod(-a.elapsed, dist)
	}
	return 0
}

// IsOverPlaybackTimeOf reports whether elapsed time reached the end of m,
// ignoring any repeat range.
func (a *Animator) IsOverPlaybackTimeOf(m *Motion) bool {
	return a.elapsed >= m.WholeSeconds()
}

// SetRepeatRange sets the sub-range Update wraps into and immediately wraps
// the current time into it. The ended flag is left as it was.
func (a *Animator) SetRepeatRange(start, end float64) {
	if start < 0 || end < 0 {
		precondition("SetRepeatRange", "negative bound [%v, %v]", start, end)
	}
	if !(start < end) {
		precondition("SetRepeatRange", "empty range [%v, %v]", start, end)
	}
	a.repeatL, a.repeatR = start, end

	ended := a.wasEnded
	a.WrapAround(start, end)
	a.wasEnded = ended
}

func (a *Animator) RepeatRange() (start, end float64) {
	return a.repeatL, a.repeatR
}

// ResetTimer rewinds to zero and clears the ended flag. Call it whenever the
// evaluated motion changes.
func (a *Animator) ResetTimer() {
	a.elapsed = 0
	a.wasEnded = false
}

// SetTime moves the cursor without any wrapping.
func (a *Animator) SetTime(seconds float64) {
	a.elapsed = seconds
}

func (a *Animator) ElapsedTime() float64 { return a.elapsed }

func (a *Animator) EnableLoop(enable bool) { a.enableLoop = enable }

func (a *Animator) IsLoop() bool { return a.enableLoop }

func (a *Animator) EnableRepeat(enable bool) { a.enableRepeat = enable }

func (a *Animator) IsRepeat() bool { return a.enableRepeat }

func (a *Animator) WasEnded() bool { return a.wasEnded }
