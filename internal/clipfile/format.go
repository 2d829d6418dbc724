// Package clipfile reads and writes motions as versioned YAML documents and
// persists them through gdata.
//
// Every structure carries its own version. Readers accept any version from 1
// up to the current one and fill fields added later with defaults; writers
// always emit the current versions.
package clipfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"skelanim/internal/mathutil"
	"skelanim/internal/motion"
	"skelanim/internal/skeleton"
)

const (
	// MotionVersion 2 added sampling_rate.
	MotionVersion = 2
	// KeyFrameVersion is the only keyframe layout so far.
	KeyFrameVersion = 1
	// BoneVersion 2 added transform_to_parent.
	BoneVersion = 2
)

// ErrUnsupportedVersion is returned for versions this reader does not know.
var ErrUnsupportedVersion = errors.New("clipfile: unsupported version")

type motionDoc struct {
	Version      int           `yaml:"version"`
	Name         string        `yaml:"name"`
	SamplingRate float64       `yaml:"sampling_rate,omitempty"`
	AnimSeconds  float64       `yaml:"anim_seconds"`
	KeyFrames    []keyFrameDoc `yaml:"keyframes"`
}

type keyFrameDoc struct {
	Version int       `yaml:"version"`
	Seconds float64   `yaml:"seconds"`
	Bones   []boneDoc `yaml:"bones"`
}

type boneDoc struct {
	Version           int           `yaml:"version"`
	Name              string        `yaml:"name"`
	Parent            string        `yaml:"parent,omitempty"`
	ParentIndex       int           `yaml:"parent_index"`
	Transform         transformDoc  `yaml:"transform"`
	TransformToParent *transformDoc `yaml:"transform_to_parent,omitempty"`
}

type transformDoc struct {
	Scale       [3]float64 `yaml:"scale,flow"`
	Rotation    [4]float64 `yaml:"rotation,flow"`
	Translation [3]float64 `yaml:"translation,flow"`
}

func checkVersion(kind string, got, current int) error {
	if got < 1 || got > current {
		return fmt.Errorf("%w: %s version %d (max %d)", ErrUnsupportedVersion, kind, got, current)
	}
	return nil
}

func toTransformDoc(tr skeleton.Transform) transformDoc {
	return transformDoc{
		Scale:       tr.Scale,
		Rotation:    tr.Rotation,
		Translation: tr.Translation,
	}
}

func (d transformDoc) transform() skeleton.Transform {
	return skeleton.Transform{
		Scale:       mathutil.Vec3(d.Scale),
		Rotation:    mathutil.Quat(d.Rotation).Normalize(),
		Translation: mathutil.Vec3(d.Translation),
	}
}

func toDoc(m *motion.Motion) motionDoc {
	doc := motionDoc{
		Version:      MotionVersion,
		Name:         m.Name,
		SamplingRate: m.SamplingRate,
		AnimSeconds:  m.AnimSeconds,
		KeyFrames:    make([]keyFrameDoc, len(m.KeyFrames)),
	}
	for i, kf := range m.KeyFrames {
		kd := keyFrameDoc{
			Version: KeyFrameVersion,
			Seconds: kf.Seconds,
			Bones:   make([]boneDoc, len(kf.KeyPose)),
		}
		for j, n := range kf.KeyPose {
			toParent := toTransformDoc(n.Bone.TransformToParent)
			kd.Bones[j] = boneDoc{
				Version:           BoneVersion,
				Name:              n.Bone.Name,
				Parent:            n.Bone.ParentName,
				ParentIndex:       n.Bone.ParentIndex,
				Transform:         toTransformDoc(n.Bone.Transform),
				TransformToParent: &toParent,
			}
		}
		doc.KeyFrames[i] = kd
	}
	return doc
}

func fromDoc(doc *motionDoc) (motion.Motion, error) {
	if err := checkVersion("motion", doc.Version, MotionVersion); err != nil {
		return motion.Motion{}, err
	}

	m := motion.NewMotion(doc.Name)
	if doc.Version >= 2 && doc.SamplingRate > 0 {
		m.SamplingRate = doc.SamplingRate
	}

	var pose skeleton.Pose
	for i := range doc.KeyFrames {
		kd := &doc.KeyFrames[i]
		if err := checkVersion("keyframe", kd.Version, KeyFrameVersion); err != nil {
			return motion.Motion{}, fmt.Errorf("keyframe %d: %w", i, err)
		}
		if len(m.KeyFrames) > 0 && len(kd.Bones) != m.BoneCount() {
			return motion.Motion{}, fmt.Errorf("clipfile: %s: keyframe %d has %d bones, want %d",
				doc.Name, i, len(kd.Bones), m.BoneCount())
		}

		nodes := make([]skeleton.Node, len(kd.Bones))
		for j := range kd.Bones {
			bd := &kd.Bones[j]
			if err := checkVersion("bone", bd.Version, BoneVersion); err != nil {
				return motion.Motion{}, fmt.Errorf("keyframe %d bone %d: %w", i, j, err)
			}
			b := skeleton.NewBone(bd.Name)
			b.ParentName = bd.Parent
			b.ParentIndex = bd.ParentIndex
			b.Transform = bd.Transform.transform()
			b.TransformToParent = b.Transform
			if bd.Version >= 2 && bd.TransformToParent != nil {
				b.TransformToParent = bd.TransformToParent.transform()
			}
			nodes[j] = skeleton.NewNode(b)
		}
		if err := skeleton.ValidateOrder(nodes); err != nil {
			return motion.Motion{}, fmt.Errorf("clipfile: %s: keyframe %d: %w", doc.Name, i, err)
		}

		pose.AssignSkeletal(nodes)
		pose.UpdateTransformMatrices()
		m.AddKeyFrame(motion.KeyFrame{
			Seconds: kd.Seconds,
			KeyPose: append([]skeleton.Node(nil), pose.GetCurrentPose()...),
		})
	}
	return m, nil
}

// Encode writes m as a YAML document.
func Encode(w io.Writer, m *motion.Motion) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDoc(m)); err != nil {
		return fmt.Errorf("clipfile: encode %s: %w", m.Name, err)
	}
	return enc.Close()
}

// Decode reads one YAML document written by Encode or an older release.
// Global matrices are recomputed from the stored transforms.
func Decode(r io.Reader) (motion.Motion, error) {
	var doc motionDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return motion.Motion{}, fmt.Errorf("clipfile: decode: %w", err)
	}
	return fromDoc(&doc)
}

func Marshal(m *motion.Motion) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Unmarshal(data []byte) (motion.Motion, error) {
	return Decode(bytes.NewReader(data))
}
