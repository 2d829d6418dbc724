package bmd

// Triangle holds polygon type and index triples into vertex/normal/texcoord arrays.
// Polygon == 4 means quad (two triangles: 0-1-2 and 0-2-3).
type Triangle struct {
	Polygon int
	VI      [4]int16
	NI      [4]int16
	TI      [4]int16
}

// Corners returns the triangle-list corner order for this polygon.
func (t Triangle) Corners() [][3]int {
	if t.Polygon == 4 {
		return [][3]int{{0, 1, 2}, {0, 2, 3}}
	}
	return [][3]int{{0, 1, 2}}
}

// Mesh holds parsed geometry for one sub-mesh within a BMD file.
// Vertex positions are stored in the space of the bone named by Nodes.
type Mesh struct {
	Verts   [][3]float32
	Nodes   []int16 // bone index per vertex
	Normals [][3]float32
	UVs     [][2]float32
	Tris    []Triangle
	TexPath string // texture reference from BMD (e.g. "sword04.jpg")
}

// Action describes one animation stored in the file. When LockPositions is
// set, Positions holds the per-key root travel.
type Action struct {
	KeyCount      int
	LockPositions bool
	Positions     [][3]float32
}

// BoneKey is one keyframe of one bone: translation and Euler XYZ radians.
type BoneKey struct {
	Position [3]float32
	Rotation [3]float32
}

// Bone holds one entry of the skeleton hierarchy. Keys is indexed by action
// then by key; dummy bones carry no keys.
type Bone struct {
	Name    string
	Parent  int
	IsDummy bool
	Keys    [][]BoneKey
}

// BindKey returns the first key of the first action, the pose the model
// was authored in.
func (b *Bone) BindKey() (BoneKey, bool) {
	if len(b.Keys) == 0 || len(b.Keys[0]) == 0 {
		return BoneKey{}, false
	}
	return b.Keys[0][0], true
}

// File is a decoded BMD model.
type File struct {
	Name    string
	Version byte
	Meshes  []Mesh
	Actions []Action
	Bones   []Bone
}
