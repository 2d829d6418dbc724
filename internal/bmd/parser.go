// Package bmd decodes BMD model files: meshes, bone hierarchy and actions.
package bmd

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/text/encoding/korean"

	"skelanim/internal/crypto"
)

const (
	nameLen      = 32
	triangleSize = 64
	maxMeshes    = 100

	headerSize       = nameLen + 3*2
	meshHeaderSize   = 5 * 2
	vertexSize       = 16
	normalSize       = 20
	texCoordSize     = 8
	actionHeaderSize = 3
	vec3Size         = 12
	boneHeaderSize   = nameLen + 2
	boneKeySize      = 2 * vec3Size
)

// Parse reads a BMD file from disk. See Decode.
func Parse(filepath string, keys crypto.Keys) (*File, error) {
	raw, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("bmd: read %s: %w", filepath, err)
	}
	f, err := Decode(raw, keys)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, filepath)
	}
	return f, nil
}

// Decode parses raw BMD bytes.
// Supports versions 10 (unencrypted), 12 (XOR), and 15 (LEA-256 ECB).
func Decode(raw []byte, keys crypto.Keys) (*File, error) {
	if len(raw) < 4 || string(raw[:3]) != "BMD" {
		return nil, fmt.Errorf("bmd: invalid header")
	}

	version := raw[3]
	var data []byte

	switch version {
	case 15, 12:
		if len(raw) < 8 {
			return nil, fmt.Errorf("bmd: truncated v%d header", version)
		}
		size := binary.LittleEndian.Uint32(raw[4:8])
		if 8+int(size) > len(raw) {
			return nil, fmt.Errorf("bmd: truncated v%d data", version)
		}
		payload := raw[8 : 8+size]
		if version == 15 {
			if !keys.HasLEA {
				return nil, fmt.Errorf("bmd: decode v15: %w", crypto.ErrMissingKey)
			}
			data = crypto.DecryptLEA(payload, keys.LEA)
		} else {
			if !keys.HasXOR {
				return nil, fmt.Errorf("bmd: decode v12: %w", crypto.ErrMissingKey)
			}
			data = crypto.DecryptXOR(payload, keys.XOR)
		}
	default:
		data = raw[4:]
	}

	r := &reader{data: data}
	f, err := r.parse()
	if err != nil {
		return nil, err
	}
	f.Version = version
	return f, nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) readRaw(n int) []byte {
	if r.off+n > len(r.data) {
		r.off = len(r.data)
		return nil
	}
	s := r.data[r.off : r.off+n]
	r.off += n
	// Find null terminator
	for i, b := range s {
		if b == 0 {
			return s[:i]
		}
	}
	return s
}

func (r *reader) readStr(n int) string {
	return string(r.readRaw(n))
}

// readName decodes a fixed-width EUC-KR name. Invalid sequences fall back to
// the raw bytes.
func (r *reader) readName(n int) string {
	raw := r.readRaw(n)
	s, err := korean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}

func (r *reader) readI16() int16 {
	if r.off+2 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(r.data[r.off:]))
	r.off += 2
	return v
}

func (r *reader) readU16() uint16 {
	if r.off+2 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) readF32() float32 {
	if r.off+4 > len(r.data) {
		r.off = len(r.data)
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

func (r *reader) readVec3() [3]float32 {
	return [3]float32{r.readF32(), r.readF32(), r.readF32()}
}

func (r *reader) readByte() byte {
	if r.off >= len(r.data) {
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

func (r *reader) eof() bool {
	return r.off >= len(r.data)
}

// need fails unless n more bytes are available for what.
func (r *reader) need(n int, what string) error {
	if left := len(r.data) - r.off; n > left {
		return fmt.Errorf("truncated %s: need %d bytes, %d left", what, n, left)
	}
	return nil
}

func (r *reader) parse() (*File, error) {
	if err := r.need(headerSize, "header"); err != nil {
		return nil, fmt.Errorf("bmd: %w", err)
	}
	f := &File{Name: r.readName(nameLen)}
	meshCount := int(r.readU16())
	boneCount := int(r.readU16())
	actionCount := int(r.readU16())

	if meshCount > maxMeshes {
		return nil, fmt.Errorf("bmd: invalid mesh count %d", meshCount)
	}

	f.Meshes = make([]Mesh, 0, meshCount)
	for i := 0; i < meshCount; i++ {
		m, err := r.parseMesh()
		if err != nil {
			return nil, fmt.Errorf("bmd: mesh %d: %w", i, err)
		}
		f.Meshes = append(f.Meshes, m)
	}

	f.Actions = make([]Action, actionCount)
	keyBytes := 0
	for a := range f.Actions {
		if err := r.need(actionHeaderSize, "action header"); err != nil {
			return nil, fmt.Errorf("bmd: action %d: %w", a, err)
		}
		act := Action{KeyCount: int(r.readI16())}
		if act.KeyCount < 0 {
			return nil, fmt.Errorf("bmd: action %d: negative key count %d", a, act.KeyCount)
		}
		keyBytes += act.KeyCount * boneKeySize
		act.LockPositions = r.readByte() > 0
		if act.LockPositions {
			if err := r.need(act.KeyCount*vec3Size, "lock positions"); err != nil {
				return nil, fmt.Errorf("bmd: action %d: %w", a, err)
			}
			act.Positions = make([][3]float32, act.KeyCount)
			for k := range act.Positions {
				act.Positions[k] = r.readVec3()
			}
		}
		f.Actions[a] = act
	}

	f.Bones = make([]Bone, 0, boneCount)
	for b := 0; b < boneCount; b++ {
		if r.eof() {
			return nil, fmt.Errorf("bmd: truncated at bone %d of %d", b, boneCount)
		}
		if r.readByte() > 0 {
			f.Bones = append(f.Bones, Bone{Parent: -1, IsDummy: true})
			continue
		}
		// Check the whole key block before allocating for it.
		if err := r.need(boneHeaderSize+keyBytes, "bone keys"); err != nil {
			return nil, fmt.Errorf("bmd: bone %d of %d: %w", b, boneCount, err)
		}

		bone := Bone{
			Name:   r.readName(nameLen),
			Parent: int(r.readI16()),
			Keys:   make([][]BoneKey, actionCount),
		}
		for a, act := range f.Actions {
			keys := make([]BoneKey, act.KeyCount)
			// Positions for every key, then rotations for every key.
			for k := range keys {
				keys[k].Position = r.readVec3()
			}
			for k := range keys {
				keys[k].Rotation = r.readVec3()
			}
			bone.Keys[a] = keys
		}
		f.Bones = append(f.Bones, bone)
	}

	return f, nil
}

func (r *reader) parseMesh() (Mesh, error) {
	if err := r.need(meshHeaderSize, "mesh header"); err != nil {
		return Mesh{}, err
	}
	nv := int(r.readI16())
	nn := int(r.readI16())
	ntc := int(r.readI16())
	nt := int(r.readI16())
	_ = r.readI16() // texture index

	if nv < 0 || nn < 0 || ntc < 0 || nt < 0 {
		return Mesh{}, fmt.Errorf("negative element count")
	}
	if err := r.need(nv*vertexSize+nn*normalSize+ntc*texCoordSize, "mesh vertex data"); err != nil {
		return Mesh{}, err
	}

	// Vertices: 16 bytes each (node:i16, pad:i16, x:f32, y:f32, z:f32)
	verts := make([][3]float32, nv)
	nodes := make([]int16, nv)
	for j := 0; j < nv; j++ {
		nodes[j] = r.readI16()
		_ = r.readI16() // padding
		verts[j] = r.readVec3()
	}

	// Normals: 20 bytes each (node:i16, pad:i16, nx:f32, ny:f32, nz:f32, bind:i16, pad:i16)
	normals := make([][3]float32, nn)
	for j := 0; j < nn; j++ {
		_ = r.readI16() // node
		_ = r.readI16() // padding
		normals[j] = r.readVec3()
		_ = r.readI16() // bindVertex
		_ = r.readI16() // padding
	}

	// TexCoords: 8 bytes each (u:f32, v:f32)
	uvs := make([][2]float32, ntc)
	for j := 0; j < ntc; j++ {
		uvs[j][0] = r.readF32()
		uvs[j][1] = r.readF32()
	}

	tris := make([]Triangle, 0, nt)
	for j := 0; j < nt; j++ {
		base := r.off
		if base+triangleSize > len(r.data) {
			return Mesh{}, fmt.Errorf("truncated at triangle %d of %d", j, nt)
		}
		poly := int(r.data[base])
		var vi, ni, ti [4]int16
		for k := 0; k < 4; k++ {
			vi[k] = int16(binary.LittleEndian.Uint16(r.data[base+2+k*2:]))
			ni[k] = int16(binary.LittleEndian.Uint16(r.data[base+10+k*2:]))
			ti[k] = int16(binary.LittleEndian.Uint16(r.data[base+18+k*2:]))
		}
		tris = append(tris, Triangle{Polygon: poly, VI: vi, NI: ni, TI: ti})
		r.off += triangleSize
	}

	if err := r.need(nameLen, "texture name"); err != nil {
		return Mesh{}, err
	}
	texPath := strings.ReplaceAll(r.readStr(nameLen), "\\", "/")

	return Mesh{
		Verts:   verts,
		Nodes:   nodes,
		Normals: normals,
		UVs:     uvs,
		Tris:    tris,
		TexPath: texPath,
	}, nil
}
