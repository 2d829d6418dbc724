package bmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"skelanim/internal/crypto"
	"skelanim/internal/mathutil"
)

type builder struct {
	bytes.Buffer
}

func (b *builder) name(s string) {
	buf := make([]byte, nameLen)
	copy(buf, s)
	b.Write(buf)
}

func (b *builder) i16(v int16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	b.Write(buf[:])
}

func (b *builder) f32(v float32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	b.Write(buf[:])
}

func (b *builder) vec3(x, y, z float32) {
	b.f32(x)
	b.f32(y)
	b.f32(z)
}

// samplePayload encodes a model with one triangle, two actions and three
// bones: "arm" (EUC-KR 팔) stored before its parent "root", then a dummy.
func samplePayload() []byte {
	var b builder
	b.name("Hero")
	b.i16(1) // meshes
	b.i16(3) // bones
	b.i16(2) // actions

	// mesh
	b.i16(3) // verts
	b.i16(1) // normals
	b.i16(0) // texcoords
	b.i16(1) // triangles
	b.i16(0) // texture
	for _, v := range []struct {
		node    int16
		x, y, z float32
	}{{1, 0, 0, 0}, {1, 1, 0, 0}, {0, 0, 1, 0}} {
		b.i16(v.node)
		b.i16(0)
		b.vec3(v.x, v.y, v.z)
	}
	b.i16(0)
	b.i16(0)
	b.vec3(0, 0, 1)
	b.i16(0)
	b.i16(0)

	tri := make([]byte, triangleSize)
	tri[0] = 3
	for k, vi := range []uint16{0, 1, 2} {
		binary.LittleEndian.PutUint16(tri[2+k*2:], vi)
	}
	b.Write(tri)
	b.name(`skin\body.jpg`)

	// actions
	b.i16(2)
	b.WriteByte(0)
	b.i16(1)
	b.WriteByte(1)
	b.vec3(5, 0, 0)

	// bone 0: arm, parent 1
	b.WriteByte(0)
	b.name("\xc6\xc8")
	b.i16(1)
	b.vec3(0, 1, 0)
	b.vec3(0, 1, 0)
	b.vec3(0, 0, 0)
	b.vec3(0, 0, 0.5)
	b.vec3(0, 1, 0)
	b.vec3(0, 0, 0)

	// bone 1: root
	b.WriteByte(0)
	b.name("root")
	b.i16(-1)
	b.vec3(0, 0, 0)
	b.vec3(2, 0, 0)
	b.vec3(0, 0, 0)
	b.vec3(0, 0, 0)
	b.vec3(0, 0, 0)
	b.vec3(0, 0, 0)

	// bone 2: dummy
	b.WriteByte(1)

	return b.Bytes()
}

func plainFile() []byte {
	return append([]byte("BMD\x0a"), samplePayload()...)
}

func sealed(version byte, body []byte) []byte {
	out := []byte{'B', 'M', 'D', version, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	return append(out, body...)
}

func testKeys() crypto.Keys {
	k := crypto.Keys{HasXOR: true, HasLEA: true}
	for i := range k.XOR {
		k.XOR[i] = byte(i + 1)
	}
	for i := range k.LEA {
		k.LEA[i] = byte(0x55 ^ i)
	}
	return k
}

func TestDecodePlain(t *testing.T) {
	f, err := Decode(plainFile(), crypto.Keys{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Name != "Hero" || f.Version != 10 {
		t.Errorf("Expected Hero v10, got %q v%d", f.Name, f.Version)
	}
	if len(f.Meshes) != 1 || len(f.Meshes[0].Tris) != 1 {
		t.Fatalf("Expected 1 mesh with 1 triangle, got %+v", f.Meshes)
	}
	if f.Meshes[0].TexPath != "skin/body.jpg" {
		t.Errorf("Expected normalized texture path, got %q", f.Meshes[0].TexPath)
	}
	if len(f.Actions) != 2 || f.Actions[0].KeyCount != 2 {
		t.Fatalf("Expected 2 actions, got %+v", f.Actions)
	}
	if !f.Actions[1].LockPositions || f.Actions[1].Positions[0] != [3]float32{5, 0, 0} {
		t.Errorf("Expected locked action with root travel, got %+v", f.Actions[1])
	}
	if len(f.Bones) != 3 {
		t.Fatalf("Expected 3 bones, got %d", len(f.Bones))
	}
	if f.Bones[0].Name != "팔" {
		t.Errorf("Expected EUC-KR bone name decoded, got %q", f.Bones[0].Name)
	}
	if !f.Bones[2].IsDummy {
		t.Error("Expected bone 2 to be a dummy")
	}
	if got := f.Bones[0].Keys[0][1].Rotation[2]; got != 0.5 {
		t.Errorf("Expected second key rotation 0.5, got %v", got)
	}
}

func TestDecodeEncrypted(t *testing.T) {
	keys := testKeys()
	payload := samplePayload()

	padded := append([]byte(nil), payload...)
	for len(padded)%16 != 0 {
		padded = append(padded, 0)
	}

	tests := []struct {
		name    string
		raw     []byte
		keys    crypto.Keys
		wantErr error
	}{
		{"v12", sealed(12, crypto.EncryptXOR(payload, keys.XOR)), keys, nil},
		{"v15", sealed(15, crypto.EncryptLEA(padded, keys.LEA)), keys, nil},
		{"v12 without key", sealed(12, crypto.EncryptXOR(payload, keys.XOR)), crypto.Keys{}, crypto.ErrMissingKey},
		{"v15 without key", sealed(15, padded), crypto.Keys{HasXOR: true}, crypto.ErrMissingKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.raw, tt.keys)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if f.Name != "Hero" || len(f.Bones) != 3 {
				t.Errorf("Expected decrypted Hero with 3 bones, got %q with %d", f.Name, len(f.Bones))
			}
		})
	}
}

// keyedFile encodes a v10 model with no meshes and one bone keyed by
// actions of keyCount keys each, keeping only keyBytes bytes of key data.
func keyedFile(actions int, keyCount int16, keyBytes int) []byte {
	var b builder
	b.WriteString("BMD\x0a")
	b.name("Cut")
	b.i16(0) // meshes
	b.i16(1) // bones
	b.i16(int16(actions))
	for a := 0; a < actions; a++ {
		b.i16(keyCount)
		b.WriteByte(0)
	}
	b.WriteByte(0)
	b.name("root")
	b.i16(-1)
	b.Write(make([]byte, keyBytes))
	return b.Bytes()
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("XYZ\x0a")},
		{"short sealed header", []byte("BMD\x0c\x01")},
		{"sealed size past end", sealed(12, []byte{1, 2})[:9]},
		{"truncated bones", plainFile()[:len(plainFile())-40]},
		{"truncated mid keys", keyedFile(1, 4, 12)},
		{"key count past end", keyedFile(300, 32767, 96)},
		{"truncated header", []byte("BMD\x0aHero")},
		{"truncated mesh vertices", plainFile()[:4+nameLen+6+10+20]},
		{"truncated texture name", plainFile()[:4+nameLen+6+10+3*16+20+triangleSize+4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.raw, testKeys()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestDecodeKeyedFile(t *testing.T) {
	f, err := Decode(keyedFile(1, 4, 4*24), crypto.Keys{})
	if err != nil {
		t.Fatalf("Expected complete key data to decode, got %v", err)
	}
	if len(f.Bones) != 1 || len(f.Bones[0].Keys[0]) != 4 {
		t.Errorf("Expected 1 bone with 4 keys, got %+v", f.Bones)
	}
}

func TestParseFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.bmd")
	if err := os.WriteFile(path, plainFile(), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(path, crypto.Keys{}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Parse(filepath.Join(t.TempDir(), "missing.bmd"), crypto.Keys{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestToSource(t *testing.T) {
	f, err := Decode(plainFile(), crypto.Keys{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	src, err := ToSource(f, 0)
	if err != nil {
		t.Fatalf("ToSource: %v", err)
	}

	names := []string{"root", "bone_002", "팔"}
	for i, want := range names {
		if got := src.Skeletal[i].Bone.Name; got != want {
			t.Errorf("Expected bone %d %q, got %q", i, want, got)
		}
	}
	if p := src.Skeletal[2].Bone.ParentIndex; p != 0 {
		t.Errorf("Expected arm parent remapped to 0, got %d", p)
	}
	if src.Skeletal[2].Bone.ParentName != "root" {
		t.Errorf("Expected arm parent name root, got %q", src.Skeletal[2].Bone.ParentName)
	}

	mesh := src.Meshes[0]
	if got := mesh.BoneIndices; len(got) != 3 || got[0] != 0 || got[1] != 0 || got[2] != 2 {
		t.Errorf("Expected bone indices [0 0 2], got %v", got)
	}
	if mesh.Normals[0] != (mathutil.Vec3{0, 0, 1}) {
		t.Errorf("Expected corner normal (0,0,1), got %v", mesh.Normals[0])
	}

	if len(src.Motions) != 2 {
		t.Fatalf("Expected 2 motions, got %d", len(src.Motions))
	}
	walk := src.Motions[0]
	if walk.Name != "action_00" || len(walk.KeyFrames) != 2 {
		t.Fatalf("Expected action_00 with 2 keys, got %q with %d", walk.Name, len(walk.KeyFrames))
	}
	if math.Abs(walk.AnimSeconds-1.0/24) > 1e-12 {
		t.Errorf("Expected anim seconds 1/24, got %v", walk.AnimSeconds)
	}

	last := walk.KeyFrames[1].KeyPose
	if g := last[0].Global.Translation(); !g.ApproxEqual(mathutil.Vec3{2, 0, 0}, 1e-6) {
		t.Errorf("Expected root at (2,0,0), got %v", g)
	}
	if g := last[2].Global.Translation(); !g.ApproxEqual(mathutil.Vec3{2, 1, 0}, 1e-6) {
		t.Errorf("Expected arm at (2,1,0), got %v", g)
	}

	if len(src.BoneOffsets) != 3 || !src.BoneOffsets[1].IsIdentity() {
		t.Error("Expected identity bone offsets for bone-space vertices")
	}
	if err := src.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
