package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

// NodeBaseImageMajor is the node major shipped by every node build file.
const NodeBaseImageMajor = "v20"

type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
	Engines         map[string]string `json:"engines"`
}

func (p *PackageJSON) HasScript(name string) bool {
	return p != nil && strings.TrimSpace(p.Scripts[name]) != ""
}

func (p *PackageJSON) HasDependency(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Dependencies[name]
	return ok
}

type ProjectValidator struct {
	config *config.PipelineConfig
}

func NewProjectValidator(config *config.PipelineConfig) *ProjectValidator {
	return &ProjectValidator{
		config: config,
	}
}

func (v *ProjectValidator) CheckPreconditions(dir string) error {
	if !fileExists(filepath.Join(dir, v.config.ManifestFile)) {
		return types.ErrMissingManifest
	}
	if !fileExists(filepath.Join(dir, v.config.DeployConfigFile)) {
		return types.ErrMissingDeployConfig
	}
	return nil
}

func (v *ProjectValidator) ReadManifest(dir string) (*PackageJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, v.config.ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.ErrMissingManifest
		}
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	if pkg.Scripts == nil {
		pkg.Scripts = map[string]string{}
	}

	return &pkg, nil
}

// Warnings reports problems that do not stop a deployment.
func (v *ProjectValidator) Warnings(name string, pkg *PackageJSON) []string {
	var warnings []string

	if name != "" {
		for _, msg := range validation.IsDNS1123Label(name) {
			warnings = append(warnings, fmt.Sprintf("name %q is not a valid DNS label: %s", name, msg))
		}
	}

	if w := v.checkNodeEngine(pkg); w != "" {
		warnings = append(warnings, w)
	}

	return warnings
}

func (v *ProjectValidator) ValidateManifests(manifests types.Manifests) error {
	_, err := DecodeManifests(manifests)
	return err
}

func (v *ProjectValidator) checkNodeEngine(pkg *PackageJSON) string {
	if pkg == nil || pkg.Engines == nil || pkg.Engines["node"] == "" {
		return "" // No engine constraints specified
	}

	constraint := strings.TrimSpace(pkg.Engines["node"])
	// Ranges with an open bound may well include the base image.
	if strings.ContainsAny(constraint, "<>|*") || strings.Contains(constraint, " - ") {
		return ""
	}

	version := strings.TrimLeft(constraint, "^~=v ")
	version = strings.TrimSuffix(version, ".x")
	version = strings.TrimSuffix(version, ".x")
	if !semver.IsValid("v" + version) {
		return ""
	}

	if major := semver.Major("v" + version); major != NodeBaseImageMajor {
		return fmt.Sprintf("engines.node %q does not match the node %s base image", constraint, strings.TrimPrefix(NodeBaseImageMajor, "v"))
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
