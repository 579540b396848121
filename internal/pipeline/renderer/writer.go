package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type WriteReport struct {
	Written []string
	Skipped []string
}

// Writer materializes an ArtifactSet. Existing files are never overwritten so
// manual edits to a previous run survive.
type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// Preview returns the set as Write would leave it on disk, without writing
// anything: artifacts whose file already exists carry the existing body.
func (w *Writer) Preview(dir string, set *ArtifactSet) (*ArtifactSet, error) {
	return set.mapArtifacts(func(a Artifact) (Artifact, error) {
		existing, err := os.ReadFile(filepath.Join(dir, a.Path))
		if err == nil {
			a.Body = string(existing)
			return a, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Artifact{}, fmt.Errorf("failed to read %s: %w", a.Path, err)
		}
		return a, nil
	})
}

// Write persists every artifact under dir and returns the set as it exists on
// disk afterwards: skipped artifacts carry the body of the existing file.
func (w *Writer) Write(dir string, set *ArtifactSet) (*ArtifactSet, *WriteReport, error) {
	report := &WriteReport{}

	out, err := set.mapArtifacts(func(a Artifact) (Artifact, error) {
		body, written, err := w.writeFile(dir, a)
		if err != nil {
			return Artifact{}, err
		}
		if written {
			report.Written = append(report.Written, a.Path)
		} else {
			report.Skipped = append(report.Skipped, a.Path)
		}
		a.Body = body
		return a, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return out, report, nil
}

func (s *ArtifactSet) mapArtifacts(fn func(Artifact) (Artifact, error)) (*ArtifactSet, error) {
	out := &ArtifactSet{}
	var err error

	for _, a := range s.Auxiliary {
		e, err := fn(a)
		if err != nil {
			return nil, err
		}
		out.Auxiliary = append(out.Auxiliary, e)
	}
	if out.BuildFile, err = fn(s.BuildFile); err != nil {
		return nil, err
	}
	if out.Workload, err = fn(s.Workload); err != nil {
		return nil, err
	}
	if out.PVC, err = fn(s.PVC); err != nil {
		return nil, err
	}

	return out, nil
}

func (w *Writer) writeFile(dir string, a Artifact) (string, bool, error) {
	path := filepath.Join(dir, a.Path)

	existing, err := os.ReadFile(path)
	if err == nil {
		w.logger.Warn("file already exists, delete it if you want to recreate it",
			zap.String("path", a.Path))
		return string(existing), false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("failed to read %s: %w", a.Path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", false, fmt.Errorf("failed to create directory for %s: %w", a.Path, err)
	}
	if err := os.WriteFile(path, []byte(a.Body), os.FileMode(a.Mode)); err != nil {
		return "", false, fmt.Errorf("failed to write %s: %w", a.Path, err)
	}

	w.logger.Info("file created", zap.String("path", a.Path))
	return a.Body, true, nil
}
