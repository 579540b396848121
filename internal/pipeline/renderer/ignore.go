package renderer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// EnsureIgnoreEntries appends every entry that does not already appear in
// the ignore file. Presence is a substring test on the file content, so an
// entry mentioned anywhere counts as present.
func EnsureIgnoreEntries(path string, entries []string, logger *zap.Logger) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}
	content := string(data)

	var b strings.Builder
	var appended []string
	for _, entry := range entries {
		if strings.Contains(content, entry) || strings.Contains(b.String(), entry+"\n") {
			continue
		}
		logger.Info("appending entry to ignore file",
			zap.String("entry", entry),
			zap.String("path", path))
		b.WriteString(entry + "\n")
		appended = append(appended, entry)
	}

	if len(appended) == 0 && data != nil {
		return nil, nil
	}

	prefix := ""
	if content != "" && !strings.HasSuffix(content, "\n") && b.Len() > 0 {
		prefix = "\n"
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(prefix + b.String()); err != nil {
		return nil, fmt.Errorf("failed to update ignore file: %w", err)
	}

	return appended, nil
}
