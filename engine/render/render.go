/*
Package render draws shaped text into pixel buffers.

Text is shaped with HarfBuzz (package shaping), then glyph outlines are
loaded from the font's sfnt container and filled with an anti-aliasing
rasterizer. Output is black text on an opaque white background. Images are
exactly as wide as the sum of the glyph advances and as high as the font's
ascent plus descent, enlarged by a margin on every side.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/fontdiff/engine/shaping"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// tracer traces with key 'fontdiff.render'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.render")
}

// DefaultSize is the font size in pixels per em used for comparisons.
const DefaultSize = 12

// Options control rendering.
type Options struct {
	Size   float64 // pixels per em; 0 selects DefaultSize
	Margin int     // blank pixels around the text
	Params shaping.Params
}

func (o Options) size() float64 {
	if o.Size <= 0 {
		return DefaultSize
	}
	return o.Size
}

// Render shapes text with f and draws the resulting glyphs.
func Render(f *font.ScalableFont, text string, opts Options) (*image.NRGBA, error) {
	glyphs, err := shaping.Shape(f, text, opts.Params)
	if err != nil {
		return nil, err
	}
	return Glyphs(f, glyphs, opts)
}

// Glyphs draws a sequence of shaped glyphs. Glyph positions are expected
// in font units, as output by shaping.Shape.
func Glyphs(f *font.ScalableFont, glyphs []shaping.Glyph, opts Options) (*image.NRGBA, error) {
	if f == nil || f.SFNT == nil {
		return nil, core.Error(core.EINVALID, "no font given for rendering")
	}
	size := opts.size()
	ppem := fixed.Int26_6(math.Round(size * 64))
	scale := size / float64(f.UnitsPerEm())
	var buf sfnt.Buffer
	metrics, err := f.SFNT.Metrics(&buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "font %s has no usable metrics", f.Fontname)
	}
	advance := 0.0
	for _, g := range glyphs {
		advance += float64(g.XAdvance) * scale
	}
	w := int(math.Ceil(advance)) + 2*opts.Margin
	h := (metrics.Ascent + metrics.Descent).Ceil() + 2*opts.Margin
	if w <= 0 || h <= 0 {
		return nil, core.Error(core.EINVALID, "nothing to render: image would be %d×%d pixels", w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	raster := vector.NewRasterizer(w, h)
	baseline := float64(opts.Margin) + float64(metrics.Ascent)/64
	x := float64(opts.Margin)
	for _, g := range glyphs {
		segments, err := f.SFNT.LoadGlyph(&buf, sfnt.GlyphIndex(g.GID), ppem, nil)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "cannot load glyph %d of %s", g.GID, f.Fontname)
		}
		ox := float32(x + float64(g.XOffset)*scale)
		oy := float32(baseline - float64(g.YOffset)*scale)
		addOutline(raster, segments, ox, oy)
		x += float64(g.XAdvance) * scale
	}
	raster.Draw(img, img.Bounds(), image.Black, image.Point{})
	tracer().Debugf("rendered %d glyphs of %s to %d×%d pixels", len(glyphs), f.Fontname, w, h)
	return img, nil
}

// addOutline adds the segments of a glyph outline, located at the glyph
// origin (ox, oy), to the rasterizer. sfnt outlines have the y-axis pointing
// down, as does the image.
func addOutline(raster *vector.Rasterizer, segments sfnt.Segments, ox, oy float32) {
	px := func(p fixed.Point26_6) (float32, float32) {
		return ox + float32(p.X)/64, oy + float32(p.Y)/64
	}
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				raster.ClosePath()
			}
			x, y := px(seg.Args[0])
			raster.MoveTo(x, y)
			open = true
		case sfnt.SegmentOpLineTo:
			x, y := px(seg.Args[0])
			raster.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			raster.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := px(seg.Args[0])
			cx, cy := px(seg.Args[1])
			dx, dy := px(seg.Args[2])
			raster.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		raster.ClosePath()
	}
}

// FontRenderer renders text with a fixed font.
type FontRenderer struct {
	Font *font.ScalableFont
}

// Render renders text with the renderer's font.
func (fr FontRenderer) Render(text string, opts Options) (image.Image, error) {
	return Render(fr.Font, text, opts)
}
