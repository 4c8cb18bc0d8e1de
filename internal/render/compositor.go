package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/andresmejia3/imglabel/internal/layout"
	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	// DefaultBannerColor is the fill behind the label.
	DefaultBannerColor = color.NRGBA{R: 241, G: 162, B: 130, A: 255}
	// DefaultLabelColor is the text colour.
	DefaultLabelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// LabelSpec describes the text drawn on the banner.
type LabelSpec struct {
	Text  string
	Font  *opentype.Font
	Size  int
	Color color.Color
}

// Compositor draws the banner and the label onto a copy of an image.
type Compositor struct {
	log logrus.FieldLogger
}

// NewCompositor returns a Compositor that reports through log.
func NewCompositor(log logrus.FieldLogger) *Compositor {
	return &Compositor{log: log}
}

// Compose returns a new image with the banner filled and the label drawn on
// top, in that order. src is never modified.
func (c *Compositor) Compose(src image.Image, l layout.Layout, label LabelSpec, banner color.Color) (*image.NRGBA, error) {
	if label.Font == nil {
		return nil, fmt.Errorf("compose: no font")
	}

	// Clone rebases the image to (0,0); move the layout with it.
	dst := imaging.Clone(src)
	offset := src.Bounds().Min
	rect := l.Banner.Sub(offset)
	origin := l.Origin.Sub(offset)

	fillBanner(dst, rect, banner)

	face, err := opentype.NewFace(label.Font, &opentype.FaceOptions{
		Size:    float64(label.Size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	if missing := MissingGlyphs(label.Font, label.Text); len(missing) > 0 {
		c.log.WithField("runes", string(missing)).Warn("Font has no glyphs for some characters")
	}

	// The origin is the top of the text box; the drawer wants the baseline.
	baseline := origin.Y + face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(label.Color),
		Face: face,
		Dot:  fixed.P(origin.X, baseline),
	}

	if width := origin.X + d.MeasureString(label.Text).Ceil(); width > dst.Bounds().Dx() {
		c.log.WithFields(logrus.Fields{
			"text_width":  width,
			"image_width": dst.Bounds().Dx(),
		}).Debug("Label wider than image, clipping")
	}

	d.DrawString(label.Text)

	c.log.WithFields(logrus.Fields{
		"banner":     rect,
		"origin":     origin,
		"label_size": label.Size,
	}).Debug("Composited label")

	return dst, nil
}

// fillBanner replaces the pixels of rect with c, alpha included, so the banner
// is one flat colour whatever lies beneath it. rect is clipped to dst, so a
// banner that hangs off the image cannot panic.
func fillBanner(dst draw.Image, rect image.Rectangle, c color.Color) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}
