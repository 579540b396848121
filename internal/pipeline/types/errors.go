package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingManifest         = errors.New("package.json not found, run from the root of your project")
	ErrMissingDeployConfig     = errors.New("deploy config file not found, create it with the necessary environment variables")
	ErrUnresolvableProjectType = errors.New("could not detect project type")
	ErrInternalInvariant       = errors.New("internal invariant violated")
)

// IncompleteDescriptorError reports every required field that stayed empty.
type IncompleteDescriptorError struct {
	Missing []string
	Err     error
}

func (e *IncompleteDescriptorError) Error() string {
	return fmt.Sprintf("incomplete descriptor, missing: %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteDescriptorError) Unwrap() error {
	return e.Err
}

// ExternalToolError is returned when an image tool stage exits non-zero.
type ExternalToolError struct {
	Stage    Stage
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed with exit code %d: %v", e.Stage, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Stage, e.ExitCode)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// SubmissionError carries either the transport error or the raw response
// body of a rejected deployment.
type SubmissionError struct {
	Body string
	Err  error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("an error occurred during deployment: %v", e.Err)
	}
	return fmt.Sprintf("an error occurred during deployment: %s", e.Body)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StaleManifestError reports persisted manifests that no longer describe the
// resolved project.
type StaleManifestError struct {
	Mismatches []string
}

func (e *StaleManifestError) Error() string {
	return fmt.Sprintf("generated manifests are out of date (%s), delete them or rerun with --force",
		strings.Join(e.Mismatches, "; "))
}
