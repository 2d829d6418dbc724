package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skelanim/internal/batch"
	"skelanim/internal/clipfile"
	"skelanim/internal/config"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.yaml file")
	testN := flag.Int("test", 0, "Bake only first N models for testing")
	match := flag.String("model", "", "Bake only models whose path contains this string")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: Data/Animation-renders)")
	frames := flag.Int("frames", 0, "Frames sampled per motion (default: 8)")
	format := flag.String("format", "", "Frame strip format: webp or tga (default: webp)")
	bones := flag.Bool("bones", false, "Overlay the skeleton on every frame")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		OutputDir: *outputDir,
		Workers:   *workers,
		Frames:    *frames,
		Format:    *format,
	})
	if *bones {
		cfg.ShowBones = true
	}

	if cfg.BaseDir == "" && cfg.ModelDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find Data directory. Use -data flag or config.yaml.")
		os.Exit(1)
	}

	keys, err := cfg.CipherKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	jobs, err := batch.FindJobs(cfg.ModelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning models: %v\n", err)
		os.Exit(1)
	}

	// Filter by path
	if *match != "" {
		var filtered []batch.Job
		for _, j := range jobs {
			if strings.Contains(strings.ToLower(j.Name), strings.ToLower(*match)) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	// Limit for testing
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}

	if len(jobs) == 0 {
		fmt.Println("No models to bake.")
		os.Exit(0)
	}

	var store *clipfile.Store
	if cfg.ClipStore != "" {
		store = clipfile.OpenStore(cfg.ClipStore)
	}

	// Print summary
	mode := ""
	if *match != "" {
		mode = fmt.Sprintf(" (matching %q)", *match)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Skeletal animation bake → %s%s\n", strings.ToUpper(cfg.Format), mode)
	fmt.Printf("Models: %d, Workers: %d, Frames: %d\n", len(jobs), cfg.Workers, cfg.Frames)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		ModelDir:     cfg.ModelDir,
		OutputDir:    cfg.OutputDir,
		Keys:         keys,
		RenderSize:   cfg.RenderSize,
		Supersample:  cfg.Supersample,
		Workers:      cfg.Workers,
		Frames:       cfg.Frames,
		Format:       cfg.Format,
		SamplingRate: cfg.SamplingRate,
		BlendSeconds: cfg.BlendSeconds,
		ShowBones:    cfg.ShowBones,
		Store:        store,
	}

	results := batch.Run(batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, motions := 0, 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			motions += len(r.Motions)
		} else {
			failed = append(failed, r)
		}
	}

	fmt.Printf("Baked: %d/%d models, %d strips\n", success, len(jobs), motions)

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, e := range failed[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
