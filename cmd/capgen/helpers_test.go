package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// pkgHarness is a throwaway package directory for generator runs.
type pkgHarness struct {
	t   *testing.T
	dir string
}

func newPkg(t *testing.T) *pkgHarness {
	t.Helper()
	return &pkgHarness{t: t, dir: t.TempDir()}
}

func (p *pkgHarness) write(rel, content string) string {
	p.t.Helper()
	full := filepath.Join(p.dir, rel)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(p.t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

func (p *pkgHarness) path(rel string) string {
	return filepath.Join(p.dir, rel)
}

func (p *pkgHarness) read(rel string) string {
	p.t.Helper()
	b, err := os.ReadFile(filepath.Join(p.dir, rel))
	require.NoError(p.t, err)
	return string(b)
}

// fakeTempFile lets tests fail Write or Close.
type fakeTempFile struct {
	name     string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.name }

func (f *fakeTempFile) Write(b []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(b), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// swapFileHooks replaces the writeFileAtomic hooks until the test ends. Nil
// arguments keep the current hook. Tests using it must not call t.Parallel.
func swapFileHooks(
	t *testing.T,
	createFn func(string, string) (tempFile, error),
	removeFn func(string) error,
	chmodFn func(string, os.FileMode) error,
	renameFn func(string, string) error,
) {
	t.Helper()

	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile, removeFile, chmodFile, renameFile = origCreate, origRemove, origChmod, origRename
	})

	if createFn != nil {
		createTempFile = createFn
	}
	if removeFn != nil {
		removeFile = removeFn
	}
	if chmodFn != nil {
		chmodFile = chmodFn
	}
	if renameFn != nil {
		renameFile = renameFn
	}
}

const shapesSpec = `package: shapes
capabilityImport: github.com/sghaida/facet/capability
imports:
  - path: context
  - path: time
capabilities:
  - name: Scaler
    method: Scale
    doc: resizes a model in place.
    params:
      - {name: ctx, type: context.Context}
      - {name: factor, type: float64}
    returns:
      - type: error
  - name: Area
    method: Area
    returns:
      - type: float64
  - name: Labeler
    method: Label
    params:
      - {name: parts, type: ...string}
    returns:
      - type: string
      - type: int
`

func indexOrFail(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", sub, s)
	return i
}
