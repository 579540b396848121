package templates

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/elskow/deployit/internal/pipeline/types"
)

//go:embed files/*.tmpl
var files embed.FS

// Location says which directory an artifact path is relative to.
type Location int

const (
	OutputDir Location = iota
	ProjectRoot
)

// Template is one named artifact kind and where it lands on disk.
type Template struct {
	Path     string
	Location Location
	tmpl     *template.Template
}

func (t *Template) Name() string {
	return t.tmpl.Name()
}

func (t *Template) Render(data *Data) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Path, err)
	}
	return buf.String(), nil
}

var buildFiles = map[types.ProjectType]string{
	types.ProjectTypeNodeJS: "dockerfile.nodejs.tmpl",
	types.ProjectTypeNestJS: "dockerfile.nestjs.tmpl",
	types.ProjectTypeNextJS: "dockerfile.nextjs.tmpl",
	types.ProjectTypePHP:    "dockerfile.php.tmpl",
}

var phpBundle = []struct {
	file string
	path string
}{
	{"nginx.conf.tmpl", "server/etc/nginx/nginx.conf"},
	{"nginx-default.conf.tmpl", "server/etc/nginx/conf.d/default.conf"},
	{"php-fpm.conf.tmpl", "server/etc/php/php-fpm.conf"},
	{"php-fpm-www.conf.tmpl", "server/etc/php/php-fpm.d/www.conf"},
	{"php.ini.tmpl", "server/etc/php/php.ini"},
	{"supervisord.conf.tmpl", "server/etc/supervisord.conf"},
}

const (
	BuildFilePath   = "Dockerfile"
	StartScriptPath = "start.sh"
	WorkloadPath    = "deployment.yaml"
	PVCPath         = "pvc.yaml"
)

// Catalog holds the parsed templates. It is immutable once built.
type Catalog struct {
	root *template.Template
}

func NewCatalog() (*Catalog, error) {
	root, err := template.New("catalog").Option("missingkey=error").ParseFS(files, "files/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Catalog{root: root}, nil
}

func (c *Catalog) lookup(file, path string, loc Location) *Template {
	return &Template{Path: path, Location: loc, tmpl: c.root.Lookup(file)}
}

// BuildFile selects the container build file for a project type.
func (c *Catalog) BuildFile(t types.ProjectType) (*Template, error) {
	file, ok := buildFiles[t]
	if !ok {
		return nil, fmt.Errorf("%w: no build file for project type %q", types.ErrInternalInvariant, t)
	}
	return c.lookup(file, BuildFilePath, OutputDir), nil
}

// PHPBundle returns the server configuration files a PHP image copies in.
func (c *Catalog) PHPBundle() []*Template {
	bundle := make([]*Template, 0, len(phpBundle))
	for _, f := range phpBundle {
		bundle = append(bundle, c.lookup(f.file, f.path, OutputDir))
	}
	return bundle
}

// StartScript is the container entry script for NestJS projects. It lives in
// the project root because the build context copies it from there.
func (c *Catalog) StartScript() *Template {
	return c.lookup("start.sh.tmpl", StartScriptPath, ProjectRoot)
}

func (c *Catalog) Workload() *Template {
	return c.lookup("deployment.yaml.tmpl", WorkloadPath, OutputDir)
}

func (c *Catalog) PVC() *Template {
	return c.lookup("pvc.yaml.tmpl", PVCPath, OutputDir)
}
