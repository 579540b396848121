package validator

import (
	"github.com/elskow/deployit/internal/pipeline/types"
)

type Validator interface {
	CheckPreconditions(dir string) error
	ReadManifest(dir string) (*PackageJSON, error)
	Warnings(name string, pkg *PackageJSON) []string
	ValidateManifests(manifests types.Manifests) error
	CheckConsistency(manifests types.Manifests, d *types.ProjectDescriptor, image string) error
}
