package builder

import (
	"fmt"
	"path/filepath"

	ggcrname "github.com/google/go-containerregistry/pkg/name"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/templates"
	"github.com/elskow/deployit/internal/pipeline/types"
)

// NewImageSpec names the local and remote image for a project and checks
// both parse as image tags before any tool runs.
func NewImageSpec(cfg *config.PipelineConfig, dir, name string) (*types.ImageSpec, error) {
	remote := fmt.Sprintf("%s/%s", cfg.Builder.Registry, name)

	if _, err := ggcrname.NewTag(name); err != nil {
		return nil, fmt.Errorf("invalid image name %q: %w", name, err)
	}
	if _, err := ggcrname.NewTag(remote); err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", remote, err)
	}

	return &types.ImageSpec{
		Name:       name,
		RemoteRef:  remote,
		Dockerfile: filepath.ToSlash(filepath.Join(cfg.OutputDir, templates.BuildFilePath)),
		ContextDir: dir,
		Platform:   cfg.Builder.Platform,
	}, nil
}
