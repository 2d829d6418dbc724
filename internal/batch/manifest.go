package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one baked model in the output manifest.
type ManifestEntry struct {
	Name    string         `json:"name"`
	Model   string         `json:"model_file"`
	Bones   int            `json:"bones"`
	Motions []MotionResult `json:"motions"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:    r.Name,
			Model:   r.Model,
			Bones:   r.Bones,
			Motions: r.Motions,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
