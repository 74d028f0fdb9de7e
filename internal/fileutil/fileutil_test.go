package fileutil_test

// Notes:
// - Close and rename error branches are not tested because triggering disk
//   failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
)

func writeString(s string) fileutil.WriteFunc {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

var errBoom = errors.New("boom")

func failing(w io.Writer) error {
	_, _ = io.WriteString(w, "partial")
	return errBoom
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	es, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name()
	}
	return names
}

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{"png", "png", nil},
		{"pdf", "pdf", nil},
		{"empty", "", fileutil.ErrExtensionEmpty},
		{"forward slash", "../etc/passwd", fileutil.ErrExtensionPathTraversal},
		{"backslash", "..\\windows", fileutil.ErrExtensionPathTraversal},
		{"null byte", "png\x00exe", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Unique temp files with cleanup
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	t.Run("writes and cleans up", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path, cleanup, err := fileutil.WriteTempFile(dir, "png", writeString("page"))
		if err != nil {
			t.Fatalf("WriteTempFile() unexpected error: %v", err)
		}
		if filepath.Dir(path) != dir || !strings.HasSuffix(path, ".png") {
			t.Errorf("path = %q, want a .png inside %q", path, dir)
		}
		data, _ := os.ReadFile(path)
		if string(data) != "page" {
			t.Errorf("content = %q, want %q", data, "page")
		}
		cleanup()
		if fileutil.FileExists(path) {
			t.Error("file still exists after cleanup")
		}
	})

	t.Run("unique names", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a, _, _ := fileutil.WriteTempFile(dir, "png", writeString("a"))
		b, _, _ := fileutil.WriteTempFile(dir, "png", writeString("b"))
		if a == b {
			t.Errorf("two temp files share the path %q", a)
		}
	})

	t.Run("write failure leaves nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := fileutil.WriteTempFile(dir, "png", failing)
		if !errors.Is(err, errBoom) {
			t.Errorf("WriteTempFile() error = %v, want %v", err, errBoom)
		}
		if names := entries(t, dir); len(names) != 0 {
			t.Errorf("dir holds %v after failure", names)
		}
	})

	t.Run("invalid extension", func(t *testing.T) {
		t.Parallel()

		_, _, err := fileutil.WriteTempFile(t.TempDir(), "", writeString("x"))
		if !errors.Is(err, fileutil.ErrExtensionEmpty) {
			t.Errorf("WriteTempFile() error = %v, want ErrExtensionEmpty", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAtomicWrite / TestCommitAll - No partial outputs
// ---------------------------------------------------------------------------

func TestAtomicWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "sub", "book.pdf")

	if err := fileutil.AtomicWrite(out, writeString("v1")); err != nil {
		t.Fatalf("AtomicWrite() unexpected error: %v", err)
	}
	if err := fileutil.AtomicWrite(out, failing); !errors.Is(err, errBoom) {
		t.Fatalf("AtomicWrite() error = %v, want %v", err, errBoom)
	}

	data, _ := os.ReadFile(out)
	if string(data) != "v1" {
		t.Errorf("content = %q, want previous content kept", data)
	}
	if names := entries(t, filepath.Join(dir, "sub")); len(names) != 1 {
		t.Errorf("dir holds %v, want only book.pdf", names)
	}
}

func TestCommitAll(t *testing.T) {
	t.Parallel()

	t.Run("all committed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		var staged []*fileutil.Staged
		for _, name := range []string{"a.pdf", "b.pdf"} {
			s, err := fileutil.Stage(filepath.Join(dir, name), writeString(name))
			if err != nil {
				t.Fatal(err)
			}
			staged = append(staged, s)
		}
		if err := fileutil.CommitAll(staged, nil); err != nil {
			t.Fatalf("CommitAll() unexpected error: %v", err)
		}
		for _, name := range []string{"a.pdf", "b.pdf"} {
			if !fileutil.FileExists(filepath.Join(dir, name)) {
				t.Errorf("%s missing after commit", name)
			}
		}
	})

	t.Run("write error discards everything", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := fileutil.Stage(filepath.Join(dir, "a.pdf"), writeString("a"))
		if err != nil {
			t.Fatal(err)
		}
		if err := fileutil.CommitAll([]*fileutil.Staged{s}, errBoom); !errors.Is(err, errBoom) {
			t.Errorf("CommitAll() error = %v, want %v", err, errBoom)
		}
		if names := entries(t, dir); len(names) != 0 {
			t.Errorf("dir holds %v, want nothing", names)
		}
	})

	t.Run("staged content stays hidden until commit", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		final := filepath.Join(dir, "a.pdf")
		s, err := fileutil.Stage(final, writeString("a"))
		if err != nil {
			t.Fatal(err)
		}
		if fileutil.FileExists(final) {
			t.Error("final path exists before commit")
		}
		if data, _ := os.ReadFile(s.TempPath()); string(data) != "a" {
			t.Errorf("TempPath() content = %q, want %q", data, "a")
		}
		fileutil.DiscardAll([]*fileutil.Staged{s})
		if names := entries(t, dir); len(names) != 0 {
			t.Errorf("dir holds %v after DiscardAll, want nothing", names)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRemoveAll / TestIsFilePath
// ---------------------------------------------------------------------------

func TestRemoveAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, _, _ := fileutil.WriteTempFile(dir, "png", writeString("a"))
	fileutil.RemoveAll([]string{a, "", filepath.Join(dir, "missing.png")})
	if fileutil.FileExists(a) {
		t.Error("file still exists after RemoveAll")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"worksheet", false},
		{"a4-booklet", false},
		{"./worksheet.yaml", true},
		{"/etc/tsumego/a4.yaml", true},
		{`C:\configs\a4.yaml`, true},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
