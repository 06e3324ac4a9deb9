package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/homeval/internal/domain/estimator"
)

const (
	dirPermission  = 0o750
	filePermission = 0o600
)

// Sample is an artifact set to write to disk.
type Sample struct {
	// Model is the estimator document; it is decoded before writing.
	Model    []byte
	Features []string
	// Accuracy is written to the metric file unless empty.
	Accuracy string
}

// Export writes s into dir using the default file names. The model is
// checked against the feature list first so a bad sample never lands.
func Export(dir string, s Sample) error {
	est, err := estimator.Unmarshal(s.Model)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	if est.NumFeatures() != len(s.Features) {
		return fmt.Errorf("%w: %w: model expects %d features, got %d names",
			ErrCorruptArtifact, estimator.ErrFeatureCount, est.NumFeatures(), len(s.Features))
	}
	names, err := json.Marshal(s.Features)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	files := map[string][]byte{
		DefaultModelFile:  s.Model,
		DefaultSchemaFile: names,
	}
	if s.Accuracy != "" {
		files[DefaultMetricFile] = []byte(s.Accuracy + "\n")
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, filePermission); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
