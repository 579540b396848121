package renderer

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/templates"
	"github.com/elskow/deployit/internal/pipeline/types"
)

// Artifact is one generated file. Path is relative to the project directory.
type Artifact struct {
	Path string
	Body string
	Mode uint32
}

// ArtifactSet is everything a single run generates.
type ArtifactSet struct {
	BuildFile Artifact
	Auxiliary []Artifact
	Workload  Artifact
	PVC       Artifact
}

// All lists the artifacts in write order.
func (s *ArtifactSet) All() []Artifact {
	all := make([]Artifact, 0, len(s.Auxiliary)+3)
	all = append(all, s.Auxiliary...)
	all = append(all, s.BuildFile, s.Workload, s.PVC)
	return all
}

func (s *ArtifactSet) Manifests() types.Manifests {
	return types.Manifests{
		Workload: s.Workload.Body,
		PVC:      s.PVC.Body,
	}
}

type Renderer struct {
	config  *config.PipelineConfig
	catalog *templates.Catalog
	logger  *zap.Logger
}

func NewRenderer(config *config.PipelineConfig, catalog *templates.Catalog, logger *zap.Logger) *Renderer {
	return &Renderer{
		config:  config,
		catalog: catalog,
		logger:  logger,
	}
}

// Render produces every artifact body for the project. It does not touch the
// filesystem.
func (r *Renderer) Render(project *types.Project) (*ArtifactSet, error) {
	d := project.Descriptor
	data := r.templateData(project)

	buildFile, err := r.catalog.BuildFile(d.ProjectType)
	if err != nil {
		return nil, err
	}

	var aux []*templates.Template
	switch d.ProjectType {
	case types.ProjectTypePHP:
		aux = r.catalog.PHPBundle()
	case types.ProjectTypeNestJS:
		aux = []*templates.Template{r.catalog.StartScript()}
	}

	set := &ArtifactSet{}
	if set.BuildFile, err = r.render(buildFile, data); err != nil {
		return nil, err
	}
	for _, t := range aux {
		a, err := r.render(t, data)
		if err != nil {
			return nil, err
		}
		set.Auxiliary = append(set.Auxiliary, a)
	}
	if set.Workload, err = r.render(r.catalog.Workload(), data); err != nil {
		return nil, err
	}
	if set.PVC, err = r.render(r.catalog.PVC(), data); err != nil {
		return nil, err
	}

	r.logger.Debug("artifacts rendered",
		zap.String("project_type", string(d.ProjectType)),
		zap.Int("count", len(set.All())))

	return set, nil
}

func (r *Renderer) render(t *templates.Template, data *templates.Data) (Artifact, error) {
	body, err := t.Render(data)
	if err != nil {
		return Artifact{}, err
	}

	path := t.Path
	if t.Location == templates.OutputDir {
		path = filepath.Join(r.config.OutputDir, t.Path)
	}

	mode := uint32(0644)
	if t.Path == templates.StartScriptPath {
		mode = 0755
	}

	return Artifact{Path: path, Body: body, Mode: mode}, nil
}

func (r *Renderer) templateData(project *types.Project) *templates.Data {
	d := project.Descriptor

	data := &templates.Data{
		Name:           d.Name,
		Host:           d.Host,
		Port:           d.InternalPort,
		EntryPoint:     d.EntryPointFolder,
		Registry:       r.config.Builder.Registry,
		TLSSecretName:  r.config.Deploy.TLSSecretName,
		StorageRequest: r.config.Deploy.StorageRequest,
		StoragePath:    d.PersistentStoragePath,
		OutputDir:      filepath.ToSlash(r.config.OutputDir),
		Disabled: map[string]bool{
			templates.ToggleBuild:    !project.Facts.HasBuildScript,
			templates.ToggleComposer: !project.Facts.HasComposerManifest,
		},
		StartFallback: !project.Facts.HasStartScript,
	}

	if project.Env != nil {
		for _, key := range project.Env.Keys() {
			data.Env = append(data.Env, templates.EnvVar{Key: key, Value: project.Env.Get(key)})
		}
	}

	return data
}
