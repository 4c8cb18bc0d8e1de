package annotate

import (
	"context"
	"image/color"
	"io"

	"github.com/andresmejia3/imglabel/internal/layout"
	"github.com/andresmejia3/imglabel/internal/output"
	"github.com/andresmejia3/imglabel/internal/render"
	"github.com/andresmejia3/imglabel/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/opentype"

	// Registers WebP with image.Decode so WebP sources can be labeled.
	_ "golang.org/x/image/webp"
)

// Options holds everything one labeling run needs.
type Options struct {
	InputPath   string
	Text        string
	LabelColor  color.Color
	BannerColor color.Color
	OutputDir   string
	OutputName  string
	SizeMode    layout.SizeMode

	// Font defaults to the embedded font when nil.
	Font *opentype.Font

	// Progress receives the stage bar. Nil hides it.
	Progress io.Writer
	Log      logrus.FieldLogger
}

const stageCount = 4

// Run decodes the input, places and draws the banner and label, and writes
// the result. It returns the path of the written image. Nothing is written
// unless every earlier stage succeeded.
func Run(ctx context.Context, opts Options) (string, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("input", opts.InputPath)

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(stageCount,
		progressbar.OptionSetDescription("🏷️  Labeling"),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
	)

	font := opts.Font
	if font == nil {
		f, err := render.LoadEmbeddedFont()
		if err != nil {
			return "", err
		}
		font = f
	}

	// Resolve first so a bad destination fails before any decoding work.
	target, err := output.Resolve(opts.InputPath, opts.OutputDir, opts.OutputName)
	if err != nil {
		return "", err
	}

	// 1. Decode
	bar.Describe("🖼️  Decoding")
	src, err := imaging.Open(opts.InputPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", &utils.InputError{Path: opts.InputPath, Err: err}
	}
	log.WithFields(logrus.Fields{
		"width":  src.Bounds().Dx(),
		"height": src.Bounds().Dy(),
	}).Info("Decoded image")
	bar.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// 2. Layout
	bar.Describe("📐 Layout")
	l := layout.Compute(src.Bounds(), opts.SizeMode)
	log.WithFields(logrus.Fields{
		"mode":       opts.SizeMode,
		"label_size": l.LabelSize,
		"banner":     l.Banner,
	}).Debug("Computed layout")
	bar.Add(1)

	// 3. Composite
	bar.Describe("🎨 Compositing")
	label := render.LabelSpec{
		Text:  opts.Text,
		Font:  font,
		Size:  l.LabelSize,
		Color: orDefault(opts.LabelColor, render.DefaultLabelColor),
	}
	out, err := render.NewCompositor(log).Compose(src, l, label, orDefault(opts.BannerColor, render.DefaultBannerColor))
	if err != nil {
		return "", err
	}
	bar.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// 4. Save
	bar.Describe("💾 Saving")
	if err := output.Save(out, target); err != nil {
		return "", err
	}
	bar.Add(1)
	bar.Finish()

	log.WithField("output", target.Path()).Info("Wrote labeled image")
	return target.Path(), nil
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}
