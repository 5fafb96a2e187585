package backend

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// fakeScratch is an in-directory workspace for tests.
type fakeScratch struct {
	dir string
}

func newFakeScratch(t *testing.T) *fakeScratch {
	t.Helper()
	return &fakeScratch{dir: t.TempDir()}
}

func (f *fakeScratch) Path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *fakeScratch) Write(name string, data []byte) (string, error) {
	p := f.Path(name)
	return p, os.WriteFile(p, data, 0o600)
}

func (f *fakeScratch) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *fakeScratch) Close() error {
	return nil
}

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(w, h, c)))
	return buf.Bytes()
}

func newJob(t *testing.T, src, dst domain.Dimensions, mode domain.ResizeMode, anchor domain.Anchor,
	f domain.Format) *port.Job {
	t.Helper()
	plan, err := domain.ComputePlan(src, dst, mode, anchor, domain.DefaultBackground, domain.Lanczos)
	require.NoError(t, err)

	return &port.Job{
		Plan:     plan,
		InputExt: ".png",
		Format:   f,
		Quality:  90,
		Scratch:  newFakeScratch(t),
	}
}
