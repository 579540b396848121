package builder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/pkg/archive"
	"github.com/moby/patternmatcher/ignorefile"
)

const dockerIgnoreFile = ".dockerignore"

// NewBuildContext tars dir the way the docker CLI would, honouring
// .dockerignore but always keeping the build file and the ignore file.
func NewBuildContext(dir, dockerfile string) (io.ReadCloser, error) {
	excludes, err := readDockerIgnore(dir)
	if err != nil {
		return nil, err
	}

	if len(excludes) > 0 {
		excludes = append(excludes, "!"+filepath.ToSlash(dockerfile), "!"+dockerIgnoreFile)
	}

	tar, err := archive.TarWithOptions(dir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create build context: %w", err)
	}
	return tar, nil
}

func readDockerIgnore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, dockerIgnoreFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", dockerIgnoreFile, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", dockerIgnoreFile, err)
	}
	return patterns, nil
}
