package builder

import (
	"context"
	"io"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// ImageTool runs the three image stages. Each call is attempted exactly
// once; a failure is reported as *types.ExternalToolError.
type ImageTool interface {
	Build(ctx context.Context, spec *types.ImageSpec) error
	Tag(ctx context.Context, spec *types.ImageSpec) error
	Push(ctx context.Context, spec *types.ImageSpec) error
}

type Options struct {
	// Stdout and Stderr receive the tool's progress output.
	Stdout io.Writer
	Stderr io.Writer
}
