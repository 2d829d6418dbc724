package motion

import "sort"

// DefaultSamplingRate is the nominal interval between authored keyframes.
const DefaultSamplingRate = 1.0 / 24

// Motion is one named animation clip: keyframes sorted by Seconds.
type Motion struct {
	Name         string
	SamplingRate float64
	// AnimSeconds is the clip length, kept equal to the last keyframe's
	// Seconds by AddKeyFrame.
	AnimSeconds float64
	KeyFrames   []KeyFrame
}

// NewMotion returns an empty clip with the default sampling rate.
func NewMotion(name string) Motion {
	return Motion{Name: name, SamplingRate: DefaultSamplingRate}
}

// WholeSeconds is the last keyframe's start time, or 0 for an empty clip.
func (m *Motion) WholeSeconds() float64 {
	if len(m.KeyFrames) == 0 {
		return 0
	}
	return m.KeyFrames[len(m.KeyFrames)-1].Seconds
}

// AverageStep is the mean spacing between consecutive keyframes.
// Clips with fewer than two keyframes fall back to the sampling rate.
func (m *Motion) AverageStep() float64 {
	n := len(m.KeyFrames)
	if n < 2 {
		return m.SamplingRate
	}
	return (m.KeyFrames[n-1].Seconds - m.KeyFrames[0].Seconds) / float64(n-1)
}

// BoneCount returns the number of bones per keyframe (0 for an empty clip).
func (m *Motion) BoneCount() int {
	if len(m.KeyFrames) == 0 {
		return 0
	}
	return len(m.KeyFrames[0].KeyPose)
}

// AddKeyFrame inserts kf keeping keyframes sorted by time. A keyframe whose
// bone count differs from the clip's panics.
func (m *Motion) AddKeyFrame(kf KeyFrame) {
	if len(m.KeyFrames) > 0 && len(kf.KeyPose) != m.BoneCount() {
		precondition("AddKeyFrame", "bone count mismatch: %d != %d", len(kf.KeyPose), m.BoneCount())
	}
	i := sort.Search(len(m.KeyFrames), func(i int) bool { return m.KeyFrames[i].Seconds > kf.Seconds })
	m.KeyFrames = append(m.KeyFrames, KeyFrame{})
	copy(m.KeyFrames[i+1:], m.KeyFrames[i:])
	m.KeyFrames[i] = kf
	m.AnimSeconds = m.WholeSeconds()
}

// IsSorted reports whether keyframes are in ascending time order.
func (m *Motion) IsSorted() bool {
	return sort.SliceIsSorted(m.KeyFrames, func(i, j int) bool {
		return m.KeyFrames[i].Seconds < m.KeyFrames[j].Seconds
	})
}

// Clone deep-copies the keyframe list.
func (m *Motion) Clone() Motion {
	out := *m
	out.KeyFrames = make([]KeyFrame, len(m.KeyFrames))
	for i := range m.KeyFrames {
		out.KeyFrames[i] = m.KeyFrames[i].Clone()
	}
	return out
}
