package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/fontdiff/engine/shaping"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestRenderText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.render")
	defer teardown()
	//
	f := loadFont(t)
	img, err := Render(f, "Hamburg", Options{})
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dx(), 20)
	assert.Greater(t, b.Dy(), 10)
	assert.Less(t, b.Dy(), 20, "12px font should render less than 20px high")
	assert.Greater(t, inked(img), 0)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(b.Max.X-1, 0))
}

func TestRenderMargin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.render")
	defer teardown()
	//
	f := loadFont(t)
	plain, err := Render(f, "x", Options{})
	require.NoError(t, err)
	framed, err := Render(f, "x", Options{Margin: 5})
	require.NoError(t, err)
	assert.Equal(t, plain.Bounds().Dx()+10, framed.Bounds().Dx())
	assert.Equal(t, plain.Bounds().Dy()+10, framed.Bounds().Dy())
	for x := 0; x < framed.Bounds().Dx(); x++ {
		assert.Equal(t, uint8(255), framed.NRGBAAt(x, 0).R, "margin must stay blank")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	f := loadFont(t)
	a, err := Render(f, "fontdiff", Options{})
	require.NoError(t, err)
	b, err := Render(f, "fontdiff", Options{})
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestRenderNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.render")
	defer teardown()
	//
	f := loadFont(t)
	_, err := Render(f, "", Options{})
	assert.Error(t, err, "empty text has no extent")
	_, err = Glyphs(f, []shaping.Glyph{{GID: 60000, XAdvance: 1000}}, Options{})
	assert.Error(t, err, "glyph index out of range")
	_, err = Glyphs(nil, nil, Options{})
	assert.Error(t, err)
}

func TestFontRenderer(t *testing.T) {
	var r interface {
		Render(string, Options) (image.Image, error)
	} = FontRenderer{Font: loadFont(t)}
	img, err := r.Render("a", Options{Size: 24})
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dy(), 20)
}

// ---------------------------------------------------------------------------

func inked(img *image.NRGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 128 {
			n++
		}
	}
	return n
}

func loadFont(t *testing.T) *font.ScalableFont {
	f, err := font.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	return f
}
