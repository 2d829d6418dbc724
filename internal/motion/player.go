package motion

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"skelanim/internal/skeleton"
)

// Player drives one animated instance: it owns an Animator and a Pose and
// plays motions from a shared Holder.
type Player struct {
	// BlendSeconds is the crossfade length used by Play. Zero switches
	// immediately.
	BlendSeconds float64

	holder   *Holder
	animator Animator
	pose     skeleton.Pose
	current  int

	fade    *gween.Tween
	from    []skeleton.Node
	scratch []skeleton.Node
}

// NewPlayer binds a player to h with bind as the initial pose. bind must be
// ordered parents-first.
func NewPlayer(h *Holder, bind []skeleton.Node) (*Player, error) {
	pose, err := skeleton.NewPose(bind)
	if err != nil {
		return nil, fmt.Errorf("motion: bind pose: %w", err)
	}
	p := &Player{
		holder:   h,
		animator: Animator{enableLoop: true},
		pose:     *pose,
		current:  -1,
	}
	p.pose.UpdateTransformMatrices()
	return p, nil
}

func (p *Player) Animator() *Animator { return &p.animator }

func (p *Player) Pose() *skeleton.Pose { return &p.pose }

// Current returns the index of the playing motion, or Holder.Len() if none.
func (p *Player) Current() int {
	if !p.playing() {
		return p.holder.Len()
	}
	return p.current
}

func (p *Player) playing() bool {
	return p.current >= 0 && p.current < p.holder.Len()
}

// Blending reports whether a crossfade is in progress.
func (p *Player) Blending() bool { return p.fade != nil }

// Play switches to the first motion called name. Switching resets the timer;
// replaying the current motion only updates the loop flag. When BlendSeconds
// is set and the new motion's skeletal matches the current pose, the old
// pose fades out over BlendSeconds.
func (p *Player) Play(name string, loop bool) error {
	idx := p.holder.Find(name)
	if idx == p.holder.Len() {
		return fmt.Errorf("%w: %q", ErrMotionNotFound, name)
	}
	p.animator.EnableLoop(loop)
	if idx == p.current {
		return nil
	}

	next := p.holder.At(idx)
	p.fade, p.from = nil, nil
	if p.BlendSeconds > 0 && len(next.KeyFrames) > 0 && p.pose.Len() > 0 &&
		p.pose.HasCompatibleWith(next.KeyFrames[0].KeyPose) {
		p.from = append([]skeleton.Node(nil), p.pose.GetCurrentPose()...)
		p.fade = gween.New(0, 1, float32(p.BlendSeconds), ease.InOutQuad)
	}

	p.current = idx
	p.animator.ResetTimer()
	return nil
}

// Tick advances time per ctrl, evaluates the current motion and resolves
// the pose. The returned nodes are owned by the player's pose.
func (p *Player) Tick(ctrl Control, dt float64) []skeleton.Node {
	d := ctrl.Delta(dt)
	if ctrl.Advances() {
		p.animator.Update(d)
	}
	if !p.playing() {
		return p.pose.GetCurrentPose()
	}

	kf := p.animator.CalcCurrentPose(p.holder.At(p.current))
	if kf.IsEmpty() {
		return p.pose.GetCurrentPose()
	}

	if p.fade != nil && len(p.from) == len(kf.KeyPose) {
		w, done := p.fade.Update(float32(d))
		p.scratch = p.scratch[:0]
		for i := range kf.KeyPose {
			p.scratch = append(p.scratch, skeleton.InterpolateNode(p.from[i], kf.KeyPose[i], float64(w)))
		}
		p.pose.AssignSkeletal(p.scratch)
		if done {
			p.fade, p.from = nil, nil
		}
	} else {
		p.fade, p.from = nil, nil
		kf.AssignTo(&p.pose)
	}

	p.pose.UpdateTransformMatrices()
	return p.pose.GetCurrentPose()
}
