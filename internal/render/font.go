package render

import (
	"os"

	"github.com/andresmejia3/imglabel/internal/utils"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// EmbeddedFontName identifies the compiled-in font in error reports.
const EmbeddedFontName = "embedded Go Mono"

// LoadEmbeddedFont parses the font compiled into the binary.
// A failure here means the build shipped a corrupt asset.
func LoadEmbeddedFont() (*opentype.Font, error) {
	return parseFont(EmbeddedFontName, gomono.TTF)
}

// LoadFontFile reads a TrueType/OpenType font from disk. Unlike the embedded
// font, a bad file here is user input and is reported as such.
func LoadFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &utils.InputError{Path: path, Err: err}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &utils.InputError{Path: path, Err: err}
	}
	return f, nil
}

func parseFont(name string, data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, &utils.ResourceError{Name: name, Err: err}
	}
	return f, nil
}

// MissingGlyphs lists the runes of text that f has no glyph for.
// Those runes are drawn as the font's .notdef box.
func MissingGlyphs(f *opentype.Font, text string) []rune {
	var (
		buf     sfnt.Buffer
		missing []rune
		seen    = make(map[rune]bool)
	)
	for _, r := range text {
		if seen[r] {
			continue
		}
		seen[r] = true
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}
