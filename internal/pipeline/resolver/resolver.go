package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/envset"
	"github.com/elskow/deployit/internal/pipeline/types"
	"github.com/elskow/deployit/internal/pipeline/validator"
)

const (
	EnvName = "NAME_DEPLOY"
	EnvHost = "HOST_DEPLOY"
	EnvPort = "PORT_DEPLOY"

	nextConfigFile  = "next.config.js"
	nestCorePackage = "@nestjs/core"
	composerFile    = "composer.json"
)

var defaultPorts = map[types.ProjectType]int{
	types.ProjectTypeNextJS: 3000,
	types.ProjectTypeNestJS: 3050,
	types.ProjectTypeNodeJS: 3000,
	types.ProjectTypePHP:    8080,
}

// phpSignals are probed in order; the first hit fixes the entry point.
var phpSignals = []struct {
	path  string
	entry string
}{
	{"index.php", "./"},
	{"artisan", "./"},
	{composerFile, "./"},
	{"public/index.php", "./public"},
	{"src/index.php", "./src"},
}

var nextPortFlag = regexp.MustCompile(`-p (\d+)`)

type Request struct {
	Dir       string
	Overrides types.Overrides
	// Process looks up the process environment, usually os.LookupEnv.
	Process types.LookupFunc
}

type Resolver struct {
	config    *config.PipelineConfig
	validator validator.Validator
	logger    *zap.Logger
}

func NewResolver(config *config.PipelineConfig, validator validator.Validator, logger *zap.Logger) *Resolver {
	return &Resolver{
		config:    config,
		validator: validator,
		logger:    logger,
	}
}

// Resolve inspects the project directory and produces a complete descriptor.
// Nothing is written to disk.
func (r *Resolver) Resolve(req Request) (*types.Project, error) {
	if err := r.validator.CheckPreconditions(req.Dir); err != nil {
		return nil, err
	}

	pkg, err := r.validator.ReadManifest(req.Dir)
	if err != nil {
		return nil, err
	}

	env, err := envset.Load(filepath.Join(req.Dir, r.config.DeployConfigFile))
	if err != nil {
		return nil, err
	}

	lookup := env.Layered(req.Process)
	d := types.ProjectDescriptor{
		Name:                  req.Overrides.Name,
		Host:                  req.Overrides.Host,
		InternalPort:          req.Overrides.Port,
		ExternalPort:          types.ExternalPort,
		PersistentStoragePath: types.PersistentStoragePath,
	}

	if d.Name == "" {
		d.Name = firstNonEmpty(env.Get(EnvName), pkg.Name)
	}

	if d.Host == "" {
		if host := env.Get(EnvHost); host != "" {
			d.Host = host
		} else if d.Name != "" {
			d.Host = fmt.Sprintf("%s.%s", d.Name, r.config.DefaultDomain)
		}
	}

	if req.Overrides.ProjectType != "" {
		t, err := types.ParseProjectType(req.Overrides.ProjectType)
		if err != nil {
			return nil, err
		}
		d.ProjectType = t
		if t == types.ProjectTypePHP {
			d.EntryPointFolder = detectPHPEntryPoint(req.Dir)
			if d.EntryPointFolder == "" {
				d.EntryPointFolder = "./"
			}
		}
	} else {
		d.ProjectType, d.EntryPointFolder = r.detectProjectType(req.Dir, pkg)
	}

	var portErr error
	if d.InternalPort == 0 {
		d.InternalPort, portErr = r.resolvePort(d.ProjectType, env, lookup, pkg)
	}

	if err := checkComplete(&d, portErr); err != nil {
		return nil, err
	}

	project := &types.Project{
		Dir:        req.Dir,
		Env:        env,
		Descriptor: d,
		Facts: types.ProjectFacts{
			HasBuildScript:      pkg.HasScript("build"),
			HasStartScript:      pkg.HasScript("start"),
			HasComposerManifest: fileExists(filepath.Join(req.Dir, composerFile)),
		},
		Warnings: r.validator.Warnings(d.Name, pkg),
	}

	for _, w := range project.Warnings {
		r.logger.Warn(w)
	}
	r.logger.Debug("project resolved",
		zap.String("name", d.Name),
		zap.String("host", d.Host),
		zap.Int("port", d.InternalPort),
		zap.String("project_type", string(d.ProjectType)),
		zap.String("entry_point", d.EntryPointFolder))

	return project, nil
}

func (r *Resolver) detectProjectType(dir string, pkg *validator.PackageJSON) (types.ProjectType, string) {
	if fileExists(filepath.Join(dir, nextConfigFile)) {
		return types.ProjectTypeNextJS, ""
	}

	if r.isNestProject(pkg) {
		return types.ProjectTypeNestJS, ""
	}

	if entry := detectPHPEntryPoint(dir); entry != "" {
		return types.ProjectTypePHP, entry
	}

	return types.ProjectTypeNodeJS, ""
}

func (r *Resolver) isNestProject(pkg *validator.PackageJSON) bool {
	if r.config.Detection.LegacyNestCheck {
		// deploy-it 1.x never detected Nest projects.
		return false
	}
	return pkg.HasDependency(nestCorePackage)
}

func detectPHPEntryPoint(dir string) string {
	for _, signal := range phpSignals {
		if fileExists(filepath.Join(dir, signal.path)) {
			return signal.entry
		}
	}
	return ""
}

func (r *Resolver) resolvePort(t types.ProjectType, env *envset.Set, lookup types.LookupFunc, pkg *validator.PackageJSON) (int, error) {
	if v := env.Get(EnvPort); v != "" {
		return parsePort(EnvPort, v)
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		return parsePort("PORT", v)
	}

	if t == types.ProjectTypeNextJS {
		if m := nextPortFlag.FindStringSubmatch(pkg.Scripts["start"]); m != nil {
			return parsePort("scripts.start", m[1])
		}
	}

	return defaultPorts[t], nil
}

func parsePort(source, value string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%s: invalid port %q", source, value)
	}
	return port, nil
}

func checkComplete(d *types.ProjectDescriptor, portErr error) error {
	var errs error
	var missing []string

	if d.Name == "" {
		missing = append(missing, "name")
		errs = multierr.Append(errs, fmt.Errorf("name is not set, set %s or project.name", EnvName))
	}
	if d.Host == "" {
		missing = append(missing, "host")
		errs = multierr.Append(errs, fmt.Errorf("host is not set, set %s or project.host", EnvHost))
	}
	if d.InternalPort == 0 {
		missing = append(missing, "port")
		if portErr != nil {
			errs = multierr.Append(errs, portErr)
		} else {
			errs = multierr.Append(errs, fmt.Errorf("port is not set, set %s or project.port", EnvPort))
		}
	}
	if d.ProjectType == "" {
		missing = append(missing, "project_type")
		errs = multierr.Append(errs, types.ErrUnresolvableProjectType)
	}

	if len(missing) == 0 {
		return nil
	}
	return &types.IncompleteDescriptorError{Missing: missing, Err: errs}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
