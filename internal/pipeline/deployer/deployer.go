package deployer

import (
	"context"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// Request is one submission: the rendered manifests plus what is needed to
// authorize them.
type Request struct {
	Descriptor types.ProjectDescriptor
	Manifests  types.Manifests
	// Lookup resolves the auth token variable, process environment first.
	Lookup types.LookupFunc
}

// Deployer submits rendered manifests exactly once. Failures are reported as
// *types.SubmissionError.
type Deployer interface {
	Deploy(ctx context.Context, req *Request) error
}
