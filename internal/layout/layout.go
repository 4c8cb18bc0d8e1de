package layout

import (
	"fmt"
	"image"
	"strings"
)

// SizeMode selects how the label size follows the image.
// It satisfies pflag.Value so an unknown mode fails at flag parse time.
type SizeMode string

const (
	// Fixed uses a constant 32px label regardless of image size.
	Fixed SizeMode = "fixed"
	// Proportional scales the label with the image height.
	Proportional SizeMode = "proportional"
)

const (
	fixedLabelSize = 32
	fixedMarginX   = 10
	fixedMarginY   = 4
)

func (m *SizeMode) String() string { return string(*m) }

func (m *SizeMode) Set(s string) error {
	switch v := SizeMode(strings.ToLower(strings.TrimSpace(s))); v {
	case Fixed, Proportional:
		*m = v
		return nil
	default:
		return fmt.Errorf("invalid size mode %q: must be %q or %q", s, Fixed, Proportional)
	}
}

func (m *SizeMode) Type() string { return "mode" }

// Layout is the placement of the banner and label on one image.
type Layout struct {
	LabelSize int
	MarginX   int
	MarginY   int
	// Banner is already clipped to the image bounds and may be empty.
	Banner image.Rectangle
	// Origin is the top-left corner of the text box.
	Origin image.Point
}

// Compute places the banner one twentieth of the way down the image.
// The banner spans the full width and is clipped to bounds, so short
// images never produce a negative top.
func Compute(bounds image.Rectangle, mode SizeMode) Layout {
	h := bounds.Dy()
	y := h / 20

	size, mx, my := fixedLabelSize, fixedMarginX, fixedMarginY
	if mode == Proportional {
		size = max(h/20, 1)
		mx = size / 5
		my = size / 5
	}

	banner := image.Rect(
		bounds.Min.X,
		bounds.Min.Y+y-my,
		bounds.Max.X,
		bounds.Min.Y+y-my+size+2*my,
	).Intersect(bounds)

	return Layout{
		LabelSize: size,
		MarginX:   mx,
		MarginY:   my,
		Banner:    banner,
		Origin:    image.Pt(bounds.Min.X+mx, bounds.Min.Y+y),
	}
}
