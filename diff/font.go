package diff

import (
	"image"

	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/fontdiff/engine/shaping"
)

// Font is what the comparison needs to know about a font: its character
// map, and how it shapes and renders text. Implementations must be safe for
// concurrent use.
type Font interface {
	Name() string
	Cmap() []rune // code-points mapped to a glyph
	Shape(text string, params shaping.Params) ([]shaping.Glyph, error)
	Render(text string, opts render.Options) (image.Image, error)
}

// Bind adapts a loaded font for comparison.
func Bind(f *font.ScalableFont) Font {
	return boundFont{f: f}
}

type boundFont struct {
	f *font.ScalableFont
}

func (bf boundFont) Name() string {
	return bf.f.Fontname
}

func (bf boundFont) Cmap() []rune {
	return bf.f.BestCmap()
}

func (bf boundFont) Shape(text string, params shaping.Params) ([]shaping.Glyph, error) {
	return shaping.Shape(bf.f, text, params)
}

func (bf boundFont) Render(text string, opts render.Options) (image.Image, error) {
	img, err := render.Render(bf.f, text, opts)
	if err != nil {
		return nil, err
	}
	return img, nil
}
