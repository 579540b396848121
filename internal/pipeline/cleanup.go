package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/renderer"
)

// CleanupManager removes generated artifacts so a forced run can render them
// again.
type CleanupManager struct {
	config *config.PipelineConfig
	logger *zap.Logger
}

func NewCleanupManager(config *config.PipelineConfig, logger *zap.Logger) *CleanupManager {
	return &CleanupManager{
		config: config,
		logger: logger,
	}
}

// RemoveArtifacts deletes every file the set would write, then prunes
// directories under the output directory that were left empty. Files the
// tool does not generate are never touched.
func (cm *CleanupManager) RemoveArtifacts(dir string, set *renderer.ArtifactSet) error {
	for _, a := range set.All() {
		path := filepath.Join(dir, a.Path)
		if err := os.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to remove %s: %w", a.Path, err)
		}
		cm.logger.Info("removed generated file", zap.String("path", a.Path))
	}

	return cm.pruneEmptyDirs(filepath.Join(dir, cm.config.OutputDir))
}

func (cm *CleanupManager) pruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := cm.pruneEmptyDirs(path); err != nil {
			return err
		}
		if children, err := os.ReadDir(path); err == nil && len(children) == 0 {
			if err := os.Remove(path); err != nil {
				cm.logger.Warn("failed to remove empty directory",
					zap.String("path", path),
					zap.Error(err))
			}
		}
	}

	return nil
}
