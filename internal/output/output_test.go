package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/imglabel/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.NRGBA {
	return imaging.New(32, 16, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		dir       string
		outName   string
		wantPath  string
		wantError bool
	}{
		{"base name into dir", "/a/b/photo.png", "out", "", filepath.Join("out", "photo.png"), false},
		{"default dir", "photo.jpg", "", "", filepath.Join(DefaultDir, "photo.jpg"), false},
		{"explicit name", "/a/b/photo.png", "out", "labeled.jpeg", filepath.Join("out", "labeled.jpeg"), false},
		{"webp input falls back to png", "/a/b/photo.webp", "out", "", filepath.Join("out", "photo.png"), false},
		{"extensionless input falls back to png", "/a/b/photo", "out", "", filepath.Join("out", "photo.png"), false},
		{"explicit unsupported extension", "/a/b/photo.png", "out", "labeled.webp", "", true},
		{"explicit name without extension", "/a/b/photo.png", "out", "labeled", "", true},
		{"name with directory", "/a/b/photo.png", "out", "x/y.png", "", true},
		{"empty input", "", "out", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := Resolve(tt.input, tt.dir, tt.outName)
			if tt.wantError {
				require.Error(t, err)
				var outErr *utils.OutputError
				assert.True(t, errors.As(err, &outErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, target.Path())
		})
	}
}

func TestResolveRefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")

	_, err := Resolve(input, dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

func TestResolveRefusesSymlinkedInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := Resolve(input, link, "")
	require.Error(t, err)
	var outErr *utils.OutputError
	require.True(t, errors.As(err, &outErr))
	assert.Contains(t, err.Error(), "must be different")
}

func TestResolveRefusesHardLinkedInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0755))
	if err := os.Link(input, filepath.Join(out, "photo.png")); err != nil {
		t.Skipf("hard links unavailable: %v", err)
	}

	_, err := Resolve(input, out, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")

	// A distinct file with the same name is fine.
	other := filepath.Join(dir, "other")
	require.NoError(t, os.Mkdir(other, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "photo.png"), []byte("y"), 0644))
	_, err = Resolve(input, other, "")
	assert.NoError(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	target := Target{Dir: dir, Name: "photo.png"}

	require.NoError(t, Save(testImage(), target))

	got, err := imaging.Open(target.Path())
	require.NoError(t, err)
	assert.Equal(t, 32, got.Bounds().Dx())
	assert.Equal(t, 16, got.Bounds().Dy())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSaveIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	img := testImage()

	a := Target{Dir: dir, Name: "a.png"}
	b := Target{Dir: dir, Name: "b.png"}
	require.NoError(t, Save(img, a))
	require.NoError(t, Save(img, b))

	dataA, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	dataB, err := os.ReadFile(b.Path())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(dataA, dataB))
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.png", "x.jpg", "x.gif", "x.tiff", "x.bmp"} {
		t.Run(name, func(t *testing.T) {
			target := Target{Dir: dir, Name: name}
			require.NoError(t, Save(testImage(), target))
			_, err := imaging.Open(target.Path())
			assert.NoError(t, err)
		})
	}
}

func TestSaveReportsDirectoryFailure(t *testing.T) {
	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Save(testImage(), Target{Dir: filepath.Join(blocker, "out"), Name: "a.png"})
	require.Error(t, err)

	var outErr *utils.OutputError
	require.True(t, errors.As(err, &outErr))
	assert.Contains(t, outErr.Path, "blocker")
}
