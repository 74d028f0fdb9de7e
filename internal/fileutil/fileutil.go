// Package fileutil provides temporary and atomic file writes plus small path
// helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// WriteFunc streams content into w.
type WriteFunc func(w io.Writer) error

// WriteTempFile creates a uniquely named file in dir (the system temp dir
// when empty) and fills it with write. Returns the file path and a cleanup
// function to remove the file. Nothing is left on disk on failure.
func WriteTempFile(dir, extension string, write WriteFunc) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp(dir, "tsumego-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if writeErr := write(tmpFile); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// Staged is an output written next to its destination and not yet visible
// under its final name.
type Staged struct {
	temp, final string
}

// Stage writes content to a temp file in the destination directory.
func Stage(path string, write WriteFunc) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	tmp, _, err := WriteTempFile(dir, "part", write)
	if err != nil {
		return nil, err
	}
	return &Staged{temp: tmp, final: path}, nil
}

// Commit renames the staged file to its final name.
func (s *Staged) Commit() error {
	if err := os.Chmod(s.temp, 0o644); err != nil { // #nosec G302 -- output documents are world-readable
		return fmt.Errorf("setting permissions on %s: %w", s.final, err)
	}
	if err := os.Rename(s.temp, s.final); err != nil {
		return fmt.Errorf("renaming %s: %w", s.final, err)
	}
	return nil
}

// Discard removes the staged file.
func (s *Staged) Discard() {
	_ = os.Remove(s.temp)
}

// Path returns the final path.
func (s *Staged) Path() string { return s.final }

// TempPath returns where the content sits until Commit.
func (s *Staged) TempPath() string { return s.temp }

// DiscardAll removes every staged file.
func DiscardAll(staged []*Staged) {
	for _, s := range staged {
		s.Discard()
	}
}

// CommitAll commits every staged file, or discards all of them when any
// write failed. Files committed before a rename failure are kept.
func CommitAll(staged []*Staged, writeErr error) error {
	if writeErr != nil {
		DiscardAll(staged)
		return writeErr
	}
	for i, s := range staged {
		if err := s.Commit(); err != nil {
			DiscardAll(staged[i+1:])
			return err
		}
	}
	return nil
}

// AtomicWrite writes path through a temp file in the same directory and
// renames it into place.
func AtomicWrite(path string, write WriteFunc) error {
	s, err := Stage(path, write)
	if err != nil {
		return err
	}
	if err := s.Commit(); err != nil {
		s.Discard()
		return err
	}
	return nil
}

// RemoveAll deletes the given files, skipping empty paths.
func RemoveAll(paths []string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "worksheet" -> false (name)
//   - "./worksheet.yaml" -> true (relative path)
//   - "/etc/tsumego/a4.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
