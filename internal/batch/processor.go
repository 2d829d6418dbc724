// Package batch bakes every motion of a set of models into frame strips.
package batch

import (
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"

	"skelanim/internal/bmd"
	"skelanim/internal/clipfile"
	"skelanim/internal/config"
	"skelanim/internal/crypto"
	"skelanim/internal/filter"
	"skelanim/internal/mathutil"
	"skelanim/internal/model"
	"skelanim/internal/motion"
	"skelanim/internal/postprocess"
	"skelanim/internal/raster"
	"skelanim/internal/skeleton"
)

// Config holds all shared resources for a batch run.
type Config struct {
	ModelDir     string
	OutputDir    string
	Keys         crypto.Keys
	RenderSize   int
	Supersample  int
	Workers      int
	Frames       int
	Format       string
	SamplingRate float64
	BlendSeconds float64
	ShowBones    bool
	// Store receives every baked clip when set.
	Store *clipfile.Store
}

// Job names one model file relative to ModelDir.
type Job struct {
	Name      string
	ModelFile string
}

// MotionResult describes the outputs written for one motion.
type MotionResult struct {
	Name    string  `json:"name"`
	Seconds float64 `json:"seconds"`
	Frames  int     `json:"frames"`
	Image   string  `json:"image"`
	Clip    string  `json:"clip,omitempty"`
}

// Result holds the outcome of processing one model.
type Result struct {
	Name    string
	Model   string
	Bones   int
	Motions []MotionResult
	Success bool
	Error   string
}

// FindJobs lists every .bmd file under dir, sorted by path.
func FindJobs(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".bmd") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
		jobs = append(jobs, Job{Name: name, ModelFile: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	return jobs, nil
}

// Run processes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Printf("[Batch] %d/%d models, %.1f models/sec", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{Name: job.Name, Model: filepath.ToSlash(job.ModelFile)}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	f, err := bmd.Parse(filepath.Join(cfg.ModelDir, job.ModelFile), cfg.Keys)
	if err != nil {
		return fail(err)
	}
	src, err := bmd.ToSource(f, cfg.SamplingRate)
	if err != nil {
		return fail(err)
	}
	mdl, err := model.NewModel(src)
	if err != nil {
		return fail(err)
	}
	res.Bones = len(src.Skeletal)
	if len(src.Motions) == 0 {
		return fail(fmt.Errorf("no actions in %s", job.ModelFile))
	}

	outDir := filepath.Join(cfg.OutputDir, filepath.FromSlash(job.Name))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fail(err)
	}

	holder := src.NewMotionHolder()
	for i := 0; i < holder.Len(); i++ {
		m := holder.At(i)
		frames, err := BakeMotion(mdl, holder, m.Name, cfg)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", m.Name, err))
		}
		mr, err := writeMotion(cfg, job, outDir, m, frames)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", m.Name, err))
		}
		res.Motions = append(res.Motions, mr)
	}

	if cfg.BlendSeconds > 0 && holder.Len() > 1 {
		from, to := holder.At(0).Name, holder.At(1).Name
		frames, err := BakeTransition(mdl, holder, from, to, cfg)
		if err != nil {
			return fail(fmt.Errorf("transition: %w", err))
		}
		name := from + "_to_" + to
		img := postprocess.Strip(frames)
		rel := filepath.ToSlash(filepath.Join(job.Name, name+"."+cfg.Format))
		if err := writeImage(filepath.Join(outDir, name+"."+cfg.Format), img, cfg.Format); err != nil {
			return fail(err)
		}
		res.Motions = append(res.Motions, MotionResult{Name: name, Seconds: cfg.BlendSeconds, Frames: len(frames), Image: rel})
	}

	res.Success = true
	return res
}

func writeMotion(cfg Config, job Job, outDir string, m *motion.Motion, frames []*image.NRGBA) (MotionResult, error) {
	mr := MotionResult{Name: m.Name, Seconds: m.AnimSeconds, Frames: len(frames)}

	imgName := m.Name + "." + cfg.Format
	if err := writeImage(filepath.Join(outDir, imgName), postprocess.Strip(frames), cfg.Format); err != nil {
		return mr, err
	}
	mr.Image = filepath.ToSlash(filepath.Join(job.Name, imgName))

	clipName := m.Name + ".yaml"
	if err := writeClip(filepath.Join(outDir, clipName), m); err != nil {
		return mr, err
	}
	mr.Clip = filepath.ToSlash(filepath.Join(job.Name, clipName))

	if cfg.Store != nil {
		stored := m.Clone()
		stored.Name = job.Name + "/" + m.Name
		if err := cfg.Store.Save(&stored); err != nil {
			return mr, err
		}
	}
	return mr, nil
}

// createFile runs write against a new file at path. A failed close is
// reported like a failed write.
func createFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeClip(path string, m *motion.Motion) error {
	return createFile(path, func(w io.Writer) error {
		return clipfile.Encode(w, m)
	})
}

func writeImage(path string, img image.Image, format string) error {
	return createFile(path, func(w io.Writer) error {
		switch format {
		case config.FormatTGA:
			if err := tga.Encode(w, img); err != nil {
				return fmt.Errorf("TGA encode: %w", err)
			}
		default:
			if err := nativewebp.Encode(w, img, nil); err != nil {
				return fmt.Errorf("WebP encode: %w", err)
			}
		}
		return nil
	})
}

func renderOptions(cfg Config) raster.Options {
	return raster.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		ShowBones:   cfg.ShowBones,
	}
}

// samplePoses plays name on a fresh player and captures frames poses spaced
// evenly over one loop of the clip.
func samplePoses(mdl *model.Model, h *motion.Holder, name string, frames int) ([][]skeleton.Node, error) {
	p, err := motion.NewPlayer(h, mdl.Source.Skeletal)
	if err != nil {
		return nil, err
	}
	if err := p.Play(name, true); err != nil {
		return nil, err
	}
	m, _ := h.ByName(name)
	step := m.AnimSeconds / float64(frames)

	poses := make([][]skeleton.Node, 0, frames)
	for i := 0; i < frames; i++ {
		dt := step
		if i == 0 {
			dt = 0
		}
		nodes := p.Tick(motion.Control{}, dt)
		poses = append(poses, append([]skeleton.Node(nil), nodes...))
	}
	return poses, nil
}

// BakeMotion renders frames evenly spaced over one loop of the named motion,
// all framed by the same camera.
func BakeMotion(mdl *model.Model, h *motion.Holder, name string, cfg Config) ([]*image.NRGBA, error) {
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	poses, err := samplePoses(mdl, h, name, cfg.Frames)
	if err != nil {
		return nil, err
	}
	return renderPoses(mdl, poses, cfg)
}

// BakeTransition plays from to its end, switches to to with a crossfade of
// cfg.BlendSeconds and renders frames spread over the fade.
func BakeTransition(mdl *model.Model, h *motion.Holder, from, to string, cfg Config) ([]*image.NRGBA, error) {
	if cfg.Frames <= 0 {
		cfg.Frames = 1
	}
	p, err := motion.NewPlayer(h, mdl.Source.Skeletal)
	if err != nil {
		return nil, err
	}
	p.BlendSeconds = cfg.BlendSeconds

	if err := p.Play(from, false); err != nil {
		return nil, err
	}
	m, _ := h.ByName(from)
	p.Tick(motion.Control{}, m.AnimSeconds)
	if err := p.Play(to, true); err != nil {
		return nil, err
	}

	step := cfg.BlendSeconds / float64(cfg.Frames)
	poses := make([][]skeleton.Node, 0, cfg.Frames)
	for i := 0; i < cfg.Frames; i++ {
		nodes := p.Tick(motion.Control{}, step)
		poses = append(poses, append([]skeleton.Node(nil), nodes...))
	}
	return renderPoses(mdl, poses, cfg)
}

func renderPoses(mdl *model.Model, poses [][]skeleton.Node, cfg Config) ([]*image.NRGBA, error) {
	opts := renderOptions(cfg)
	meshes := filter.Solid(mdl.Source.Meshes)

	var pts []mathutil.Vec3
	for _, pose := range poses {
		skinned, err := raster.SkinPose(meshes, pose, mdl.BoneOffsets)
		if err != nil {
			return nil, err
		}
		for _, s := range skinned {
			pts = append(pts, s...)
		}
		pts = append(pts, raster.JointPositions(pose)...)
	}
	opts.Framing = raster.FitFraming(pts, opts)

	out := make([]*image.NRGBA, 0, len(poses))
	for _, pose := range poses {
		img, err := raster.RenderPose(meshes, pose, mdl.BoneOffsets, opts)
		if err != nil {
			return nil, err
		}
		if cfg.Supersample > 1 {
			img = postprocess.Downsample(img, cfg.RenderSize)
		}
		out = append(out, img)
	}
	return out, nil
}
