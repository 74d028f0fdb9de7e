package main

// Notes:
// - runMain: we test dispatch, exit codes and the import, collections,
//   export and generate commands end to end on temporary directories.
// - generate writes real PDFs on a small page; page content is covered by
//   the library tests, here we only check that the files exist.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
)

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Command routing and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"tsumego-pdf"}, ExitUsage, "", "Usage: tsumego-pdf"},
		{"version", []string{"tsumego-pdf", "version"}, ExitSuccess, "tsumego-pdf dev", ""},
		{"help", []string{"tsumego-pdf", "help"}, ExitSuccess, "Commands:", ""},
		{"help generate", []string{"tsumego-pdf", "help", "generate"}, ExitSuccess, "--booklet", ""},
		{"unknown command", []string{"tsumego-pdf", "frobnicate"}, ExitUsage, "", "unknown command: frobnicate"},
		{"bad flag", []string{"tsumego-pdf", "generate", "--no-such-flag"}, ExitUsage, "", "usage error"},
		{"generate -h", []string{"tsumego-pdf", "generate", "-h"}, ExitSuccess, "", "Usage: tsumego-pdf generate"},
		{"import without input", []string{"tsumego-pdf", "import"}, ExitUsage, "", "no collection files"},
		{"export without name", []string{"tsumego-pdf", "export"}, ExitUsage, "", "exactly one collection"},
		{"completion bash", []string{"tsumego-pdf", "completion", "bash"}, ExitSuccess, "complete -o filenames", ""},
		{"completion unknown shell", []string{"tsumego-pdf", "completion", "tcsh"}, ExitUsage, "", "unsupported shell"},
		{"bad workers", []string{"tsumego-pdf", "generate", "tiny", "--workers=-1"}, ExitUsage, "", "invalid worker count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(nil)
			code := runMain(tt.args, env)
			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ImportAndCollections - Catalog round trip
// ---------------------------------------------------------------------------

func TestRunMain_ImportAndCollections(t *testing.T) {
	t.Parallel()

	src := writeCollections(t)
	catalog := filepath.Join(t.TempDir(), "data", "catalog.db")

	env, stdout, stderr := newTestEnv(nil)
	if code := runMain([]string{"tsumego-pdf", "import", "--catalog", catalog, src}, env); code != ExitSuccess {
		t.Fatalf("import = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout.String(), "imported tiny") || !strings.Contains(stdout.String(), "imported classic") {
		t.Errorf("import stdout = %q", stdout)
	}

	env, stdout, stderr = newTestEnv(map[string]string{"TSUMEGO_CATALOG": catalog})
	if code := runMain([]string{"tsumego-pdf", "collections"}, env); code != ExitSuccess {
		t.Fatalf("collections = %d, stderr: %s", code, stderr)
	}
	out := stdout.String()
	for _, want := range []string{"NAME", "tiny", "Tiny Problems", "classic"} {
		if !strings.Contains(out, want) {
			t.Errorf("collections output missing %q:\n%s", want, out)
		}
	}

	exported := filepath.Join(t.TempDir(), "tiny.yaml")
	env, _, stderr = newTestEnv(nil)
	if code := runMain([]string{"tsumego-pdf", "export", "--catalog", catalog, "tiny", "-o", exported}, env); code != ExitSuccess {
		t.Fatalf("export = %d, stderr: %s", code, stderr)
	}
	c, err := puzzle.LoadCollectionFile(exported)
	if err != nil {
		t.Fatalf("exported collection does not load: %v", err)
	}
	if c.Label != "Tiny Problems" || len(c.Problems) != 2 || c.Problems[1].Board != "W.@! X@!" {
		t.Errorf("exported collection = %+v", c)
	}

	env, _, _ = newTestEnv(nil)
	if code := runMain([]string{"tsumego-pdf", "export", "--catalog", catalog, "nope"}, env); code != ExitNotFound {
		t.Errorf("export nope = %d, want %d", code, ExitNotFound)
	}
}

func TestRunMain_MissingCatalog(t *testing.T) {
	t.Parallel()

	env, _, stderr := newTestEnv(nil)
	missing := filepath.Join(t.TempDir(), "none.db")
	code := runMain([]string{"tsumego-pdf", "generate", "tiny", "--catalog", missing, "-o", filepath.Join(t.TempDir(), "p.pdf")}, env)
	if code != ExitNotFound {
		t.Errorf("runMain() = %d, want %d", code, ExitNotFound)
	}
	if !strings.Contains(stderr.String(), "import") {
		t.Errorf("stderr should hint at import, got %q", stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Generate - End-to-end generation
// ---------------------------------------------------------------------------

func smallGenerateArgs(collections string) []string {
	return []string{
		"--collections", collections,
		"--page-size", "288x288",
		"--margin", "0.25",
		"--columns", "1",
		"--display-width", "19",
		"--seed", "7",
	}
}

func TestRunMain_Generate(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	problems := filepath.Join(out, "nested", "problems.pdf")
	key := filepath.Join(out, "nested", "solutions.pdf")

	args := append([]string{"tsumego-pdf", "generate", "tiny"}, smallGenerateArgs(writeCollections(t))...)
	args = append(args, "-o", problems, "--key-output", key, "--verify")

	env, stdout, stderr := newTestEnv(nil)
	if code := runMain(args, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr: %s", code, stderr)
	}
	for _, p := range []string{problems, key} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	if !strings.Contains(stdout.String(), "2 problems on 1 pages") {
		t.Errorf("stdout = %q, want summary", stdout)
	}
}

func TestRunMain_GenerateAutoName(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	args := append([]string{"tsumego-pdf", "generate", "classic", "-q"}, smallGenerateArgs(writeCollections(t))...)
	env, stdout, stderr := newTestEnv(map[string]string{"TSUMEGO_OUTPUT_DIR": out})

	if code := runMain(args, env); code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr: %s", code, stderr)
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run wrote to stdout: %q", stdout)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "tsumego problems.pdf") {
		t.Errorf("output dir = %v, want one problems PDF", entries)
	}
}

func TestRunMain_GenerateNotFound(t *testing.T) {
	t.Parallel()

	args := append([]string{"tsumego-pdf", "generate", "nope", "-o", filepath.Join(t.TempDir(), "p.pdf")}, smallGenerateArgs(writeCollections(t))...)
	env, _, stderr := newTestEnv(nil)

	if code := runMain(args, env); code != ExitNotFound {
		t.Errorf("runMain() = %d, want %d", code, ExitNotFound)
	}
	// the hint lists what exists
	if !strings.Contains(stderr.String(), "tiny") {
		t.Errorf("stderr = %q, want available collections", stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Doctor
// ---------------------------------------------------------------------------

func TestRunMain_Doctor(t *testing.T) {
	t.Parallel()

	t.Run("yaml collections", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv(map[string]string{"TSUMEGO_COLLECTIONS": writeCollections(t)})
		if code := runMain([]string{"tsumego-pdf", "doctor"}, env); code != ExitSuccess {
			t.Fatalf("doctor = %d, output: %s", code, stdout)
		}
		if !strings.Contains(stdout.String(), "2 collections, 4 problems") {
			t.Errorf("stdout = %q", stdout)
		}
	})

	t.Run("missing catalog", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv(map[string]string{"TSUMEGO_CATALOG": filepath.Join(t.TempDir(), "x.db")})
		if code := runMain([]string{"tsumego-pdf", "doctor", "--json"}, env); code != ExitGeneral {
			t.Errorf("doctor = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(stdout.String(), `"status": "errors"`) {
			t.Errorf("stdout = %q", stdout)
		}
	})
}
