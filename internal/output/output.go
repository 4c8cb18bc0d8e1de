package output

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/imglabel/internal/utils"
	"github.com/disintegration/imaging"
)

// DefaultDir is where annotated images go when no directory is given.
const DefaultDir = "annotated"

// Target is the destination of one annotated image.
type Target struct {
	Dir  string
	Name string
}

// Path joins the directory and file name.
func (t Target) Path() string {
	return filepath.Join(t.Dir, t.Name)
}

// Resolve derives the output location for inputPath. An empty name keeps the
// input's base name; the extension of the name picks the encoder. When the
// input's own extension has no encoder (WebP, or none at all) the default name
// is written as PNG instead.
func Resolve(inputPath, dir, name string) (Target, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if name == "" {
		name = filepath.Base(inputPath)
		if _, err := imaging.FormatFromFilename(name); err != nil && isPlainName(name) {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
		}
	}
	t := Target{Dir: dir, Name: name}

	if !isPlainName(name) {
		return Target{}, &utils.OutputError{Path: t.Path(), Err: fmt.Errorf("output name %q must be a plain file name", name)}
	}
	if _, err := imaging.FormatFromFilename(name); err != nil {
		return Target{}, &utils.OutputError{Path: t.Path(), Err: fmt.Errorf("cannot infer image format from %q: %w", filepath.Ext(name), err)}
	}

	// Safety Check: never overwrite the source image
	inAbs, errIn := filepath.Abs(inputPath)
	outAbs, errOut := filepath.Abs(t.Path())
	if errIn == nil && errOut == nil && inAbs == outAbs {
		return Target{}, &utils.OutputError{Path: t.Path(), Err: errSameFile}
	}
	// Symlinked directories and hard links reach the input under another name.
	if inInfo, err := os.Stat(inputPath); err == nil {
		if outInfo, err := os.Stat(t.Path()); err == nil && os.SameFile(inInfo, outInfo) {
			return Target{}, &utils.OutputError{Path: t.Path(), Err: errSameFile}
		}
	}
	return t, nil
}

var errSameFile = errors.New("input and output paths must be different")

func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && name != string(filepath.Separator) && filepath.Base(name) == name
}

// Save encodes img into t, creating t.Dir and its parents as needed.
// The image is encoded into a temporary file next to the target and renamed
// into place, so a failed encode never leaves a partial file behind.
func Save(img image.Image, t Target) error {
	path := t.Path()

	format, err := imaging.FormatFromFilename(t.Name)
	if err != nil {
		return &utils.OutputError{Path: path, Err: err}
	}

	if err := os.MkdirAll(t.Dir, 0755); err != nil {
		return &utils.OutputError{Path: t.Dir, Err: err}
	}

	tmp, err := os.CreateTemp(t.Dir, "."+t.Name+".*.tmp")
	if err != nil {
		return &utils.OutputError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	// Removing after a successful rename is a no-op error we ignore.
	defer os.Remove(tmpName)

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(90)); err != nil {
		tmp.Close()
		return &utils.OutputError{Path: path, Err: fmt.Errorf("encode %s: %w", format, err)}
	}
	if err := tmp.Close(); err != nil {
		return &utils.OutputError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &utils.OutputError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &utils.OutputError{Path: path, Err: err}
	}
	return nil
}
