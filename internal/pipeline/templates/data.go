package templates

import (
	"fmt"
	"strings"
)

// Toggle names used by the build files.
const (
	ToggleBuild    = "build"
	ToggleComposer = "composer"
)

// FallbackStart replaces the start command when the project declares none.
const FallbackStart = `CMD ["node", "."]`

type EnvVar struct {
	Key   string
	Value string
}

// Data is everything a template can reference. Templates never see the
// filesystem; the renderer fills this in.
type Data struct {
	Name           string
	Host           string
	Port           int
	EntryPoint     string
	Registry       string
	TLSSecretName  string
	StorageRequest string
	StoragePath    string
	OutputDir      string
	Env            []EnvVar

	Disabled      map[string]bool
	StartFallback bool
}

// Image is the remote reference the workload pulls.
func (d *Data) Image() string {
	return fmt.Sprintf("%s/%s", d.Registry, d.Name)
}

// Toggle emits line, commented out when the named toggle is disabled.
func (d *Data) Toggle(name, line string) string {
	if d.Disabled[name] {
		return "# " + line
	}
	return line
}

func (d *Data) Start(cmd string) string {
	if d.StartFallback {
		return FallbackStart
	}
	return cmd
}

// EnvBlock renders one ENV declaration per variable in insertion order. An
// empty set yields an empty string, so the marker line stays blank.
func (d *Data) EnvBlock() string {
	lines := make([]string, 0, len(d.Env))
	for _, v := range d.Env {
		lines = append(lines, fmt.Sprintf("ENV %s=%s", v.Key, v.Value))
	}
	return strings.Join(lines, "\n")
}
