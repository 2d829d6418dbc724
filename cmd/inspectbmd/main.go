package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"skelanim/internal/bmd"
	"skelanim/internal/collision"
	"skelanim/internal/config"
	"skelanim/internal/filter"
	"skelanim/internal/mathutil"
	"skelanim/internal/model"
	"skelanim/internal/motion"
	"skelanim/internal/skeleton"
)

func main() {
	configFile := flag.String("config", "", "Path to config.yaml file (cipher keys, sampling rate)")
	motionName := flag.String("motion", "", "Evaluate this motion (e.g. action_00)")
	at := flag.Float64("at", 0, "Time in seconds to evaluate -motion at")
	noLoop := flag.Bool("noloop", false, "Clamp -at to the clip instead of wrapping")
	ray := flag.String("ray", "", "Cast a ray against the bind-pose mesh: x,y,z:x,y,z")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{})
	keys, err := cfg.CipherKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, arg := range flag.Args() {
		f, err := bmd.Parse(arg, keys)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", arg, err)
			continue
		}
		src, err := bmd.ToSource(f, cfg.SamplingRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Convert error %s: %v\n", arg, err)
			continue
		}

		fmt.Printf("\n=== %s %q v%d (meshes=%d bones=%d actions=%d) ===\n",
			arg, f.Name, f.Version, len(f.Meshes), len(f.Bones), len(f.Actions))

		fmt.Println("--- ACTIONS ---")
		for i, a := range f.Actions {
			line := fmt.Sprintf("  %s: keys=%d seconds=%.3f", bmd.ActionName(i), a.KeyCount, src.Motions[i].AnimSeconds)
			if a.LockPositions && len(a.Positions) > 0 {
				first, last := a.Positions[0], a.Positions[len(a.Positions)-1]
				line += fmt.Sprintf(" locked travel=(%.1f,%.1f,%.1f)",
					last[0]-first[0], last[1]-first[1], last[2]-first[2])
			}
			fmt.Println(line)
		}

		fmt.Println("--- MESHES ---")
		for i := range src.Meshes {
			m := &src.Meshes[i]
			flags := ""
			if filter.IsEffectMesh(m) {
				flags = " [EFFECT]"
			}
			fmt.Printf("  Mesh[%d] %s: triangles=%d%s\n", i, filter.TextureStem(m.Name), m.TriangleCount(), flags)
		}

		fmt.Println("--- BONES (bind pose) ---")
		printTree(src.Skeletal)

		if *motionName != "" {
			evaluate(src, *motionName, *at, !*noLoop)
		}
		if *ray != "" {
			castRay(src, *ray)
		}
	}
}

func printTree(nodes []skeleton.Node) {
	depth := make([]int, len(nodes))
	for i, n := range nodes {
		if p := n.Bone.ParentIndex; p >= 0 {
			depth[i] = depth[p] + 1
		}
		t := n.Global.Translation()
		fmt.Printf("  %3d %s%s  global=(%.1f,%.1f,%.1f)\n",
			i, strings.Repeat("  ", depth[i]), n.Bone.Name, t[0], t[1], t[2])
	}
}

func evaluate(src *model.Source, name string, at float64, loop bool) {
	h := src.NewMotionHolder()
	m, ok := h.ByName(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "  motion %q not found (have %s)\n", name, strings.Join(h.Names(), ", "))
		return
	}

	anim := motion.NewAnimator()
	anim.EnableLoop(loop)
	anim.SetTime(at)
	kf := anim.CalcCurrentPose(m)
	if kf.IsEmpty() {
		fmt.Printf("--- %s @ %.3fs: no keyframes ---\n", name, at)
		return
	}

	var pose skeleton.Pose
	kf.AssignTo(&pose)
	pose.UpdateTransformMatrices()

	over := ""
	if anim.IsOverPlaybackTimeOf(m) {
		over = " (past end)"
	}
	fmt.Printf("--- %s @ %.3fs → frame time %.3fs%s ---\n", name, at, kf.Seconds, over)
	printTree(pose.GetCurrentPose())
}

func parseVec(s string) (mathutil.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mathutil.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mathutil.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

func castRay(src *model.Source, arg string) {
	from, to, err := parseRay(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  bad -ray %q: %v\n", arg, err)
		return
	}

	mdl, err := model.NewModel(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  model: %v\n", err)
		return
	}
	bind, err := src.BindPose()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  bind pose: %v\n", err)
		return
	}

	// Vertices are stored per bone; skin them into the bind pose first.
	mats, err := model.SkinningMatrices(bind.GetCurrentPose(), mdl.BoneOffsets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
	}
	posed := model.Source{Meshes: make([]model.Mesh, len(src.Meshes))}
	for i := range src.Meshes {
		posed.Meshes[i] = src.Meshes[i]
		posed.Meshes[i].Positions = model.SkinVertices(&src.Meshes[i], mats)
	}
	group := posed.PolygonGroup(collision.CullBack)

	hit, ok := group.Raycast(from, to, false)
	if !ok {
		fmt.Printf("--- RAY: no hit among %d polygons ---\n", len(group.Polygons))
		return
	}
	fmt.Printf("--- RAY: polygon %d at distance %.2f point=(%.1f,%.1f,%.1f) normal=(%.2f,%.2f,%.2f) ---\n",
		hit.Index, hit.Distance,
		hit.Intersection[0], hit.Intersection[1], hit.Intersection[2],
		hit.Normal[0], hit.Normal[1], hit.Normal[2])
}

func parseRay(arg string) (from, to mathutil.Vec3, err error) {
	ends := strings.SplitN(arg, ":", 2)
	if len(ends) != 2 {
		return from, to, fmt.Errorf("want x,y,z:x,y,z")
	}
	if from, err = parseVec(ends[0]); err != nil {
		return from, to, err
	}
	to, err = parseVec(ends[1])
	return from, to, err
}
