package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// newTestEnv returns an environment with captured output and the given
// variables.
func newTestEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			var out []string
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, stdout, stderr
}

const (
	tinyCollection = `name: tiny
label: Tiny Problems
problems:
  - board: "B..@@ .@!!X"
  - board: "W.@! X@!"
`
	sectionedCollection = `name: classic
sections:
  - name: living
    problems:
      - board: "B@! .X"
  - name: killing
    problems:
      - board: "W@@! ..X"
`
)

// writeCollections writes the fixture collections to a new directory.
func writeCollections(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"tiny.yaml": tinyCollection, "classic.yml": sectionedCollection} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile(%s) unexpected error: %v", name, err)
		}
	}
	return dir
}
