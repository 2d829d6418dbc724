package motion

// Control is the per-frame simulation state handed to Player.Tick.
// The zero value runs at normal speed.
type Control struct {
	Paused bool
	// Step advances one frame while Paused.
	Step bool
	// TimeScale multiplies dt; values <= 0 mean 1.
	TimeScale float64
}

// Advances reports whether time moves this frame.
func (c Control) Advances() bool {
	return !c.Paused || c.Step
}

// Delta returns the effective time step for dt.
func (c Control) Delta(dt float64) float64 {
	if !c.Advances() {
		return 0
	}
	if c.TimeScale > 0 {
		return dt * c.TimeScale
	}
	return dt
}
