package motion

// Holder is an ordered list of motions it owns outright: motions are deep
// copied on the way in. Names are not required to be unique; name lookups
// return the first match.
type Holder struct {
	motions []Motion
}

func NewHolder(motions ...Motion) *Holder {
	h := &Holder{motions: make([]Motion, 0, len(motions))}
	for i := range motions {
		h.Append(motions[i])
	}
	return h
}

func (h *Holder) Len() int {
	return len(h.motions)
}

// At returns the motion at index i. Out-of-range indices panic.
func (h *Holder) At(i int) *Motion {
	if i < 0 || i >= len(h.motions) {
		precondition("Holder.At", "index %d out of range [0,%d)", i, len(h.motions))
	}
	return &h.motions[i]
}

// Find returns the index of the first motion called name, or Len() when
// there is none.
func (h *Holder) Find(name string) int {
	for i := range h.motions {
		if h.motions[i].Name == name {
			return i
		}
	}
	return len(h.motions)
}

// ByName returns the first motion called name.
func (h *Holder) ByName(name string) (*Motion, bool) {
	i := h.Find(name)
	if i == len(h.motions) {
		return nil, false
	}
	return &h.motions[i], true
}

func (h *Holder) Append(m Motion) {
	h.motions = append(h.motions, m.Clone())
}

// Erase removes the motion at index i. Out-of-range indices panic.
func (h *Holder) Erase(i int) {
	if i < 0 || i >= len(h.motions) {
		precondition("Holder.Erase", "index %d out of range [0,%d)", i, len(h.motions))
	}
	h.motions = append(h.motions[:i], h.motions[i+1:]...)
}

// EraseByName removes the first motion called name and reports whether one
// was found.
func (h *Holder) EraseByName(name string) bool {
	i := h.Find(name)
	if i == len(h.motions) {
		return false
	}
	h.Erase(i)
	return true
}

// Motions returns the underlying slice; callers must not append to it.
func (h *Holder) Motions() []Motion {
	return h.motions
}

func (h *Holder) Names() []string {
	names := make([]string, len(h.motions))
	for i := range h.motions {
		names[i] = h.motions[i].Name
	}
	return names
}
