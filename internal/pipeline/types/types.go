package types

import (
	"fmt"
	"time"

	"github.com/elskow/deployit/internal/pipeline/envset"
)

type ProjectType string

const (
	ProjectTypeNextJS ProjectType = "nextjs"
	ProjectTypeNestJS ProjectType = "nestjs"
	ProjectTypeNodeJS ProjectType = "nodejs"
	ProjectTypePHP    ProjectType = "php"
)

// ProjectTypes lists every type the catalog knows how to render.
var ProjectTypes = []ProjectType{
	ProjectTypeNextJS,
	ProjectTypeNestJS,
	ProjectTypeNodeJS,
	ProjectTypePHP,
}

func ParseProjectType(s string) (ProjectType, error) {
	for _, t := range ProjectTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnresolvableProjectType, s)
}

const (
	ExternalPort          = 443
	PersistentStoragePath = "/data"
)

// ProjectDescriptor is the resolved deployment target. It is built once per
// invocation and never modified afterwards.
type ProjectDescriptor struct {
	Name                  string      `json:"name"`
	Host                  string      `json:"host"`
	InternalPort          int         `json:"internal_port"`
	ExternalPort          int         `json:"external_port"`
	ProjectType           ProjectType `json:"project_type"`
	EntryPointFolder      string      `json:"entry_point_folder,omitempty"`
	PersistentStoragePath string      `json:"persistent_storage_path"`
}

func (d *ProjectDescriptor) PublicAddress() string {
	return "https://" + d.Host
}

// ProjectFacts are the manifest-derived switches the renderer needs.
type ProjectFacts struct {
	HasBuildScript      bool
	HasStartScript      bool
	HasComposerManifest bool
}

// Project is the result of resolution: the descriptor plus the facts observed
// while resolving it.
type Project struct {
	Dir        string
	Env        *envset.Set
	Descriptor ProjectDescriptor
	Facts      ProjectFacts
	Warnings   []string
}

// Overrides are the user supplied fields. Empty values mean "resolve".
type Overrides struct {
	Name        string
	Host        string
	Port        int
	ProjectType string
}

// LookupFunc resolves a variable the same way os.LookupEnv does.
type LookupFunc func(key string) (string, bool)

type Stage string

const (
	StageStart     Stage = "start"
	StageConfirm   Stage = "confirm"
	StageBuild     Stage = "build"
	StageTag       Stage = "tag"
	StagePush      Stage = "push"
	StageSubmit    Stage = "submit"
	StageDone      Stage = "done"
	StageAborted   Stage = "aborted"
	StageCancelled Stage = "cancelled"
)

// ImageSpec names the image a run builds and pushes.
type ImageSpec struct {
	Name       string
	RemoteRef  string
	Dockerfile string
	ContextDir string
	Platform   string
}

// Manifests are the orchestration documents sent to the deploy target.
type Manifests struct {
	Workload string `json:"yaml"`
	PVC      string `json:"pvcYaml"`
}

type Outcome struct {
	Stage     Stage
	StartTime time.Time
	EndTime   time.Time
	Err       error
}

// ExitCode maps an outcome onto the process exit status.
func (o *Outcome) ExitCode() int {
	switch o.Stage {
	case StageDone, StageCancelled:
		return 0
	default:
		return 1
	}
}
