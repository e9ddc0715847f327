package font

import (
	"sort"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.fonts")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, "Go Regular", f.Fontname)
	assert.Equal(t, 2048, f.UnitsPerEm())
}

func TestParseGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.fonts")
	defer teardown()
	//
	_, err := ParseOpenTypeFont([]byte("this is not a font"))
	assert.Error(t, err)
}

func TestLoadMissingFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.fonts")
	defer teardown()
	//
	_, err := LoadOpenTypeFont("does/not/exist.ttf")
	assert.Error(t, err)
}

func TestBestCmap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.fonts")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(gobold.TTF)
	require.NoError(t, err)
	cmap := f.BestCmap()
	require.NotEmpty(t, cmap)
	assert.True(t, sort.SliceIsSorted(cmap, func(i, j int) bool { return cmap[i] < cmap[j] }))
	assert.Contains(t, cmap, 'A')
	assert.Contains(t, cmap, 'ж')
	assert.NotContains(t, cmap, rune(0x0915)) // Devanagari KA
	var bmp []rune
	for _, r := range cmap {
		if r >= 0x20 && r <= 0xFFFF {
			bmp = append(bmp, r)
		}
	}
	assert.Equal(t, bmp, f.probedCmap(), "cmap subtable and glyph probing should agree for the BMP")
}

func TestHarfBuzzPool(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.fonts")
	defer teardown()
	//
	f := FallbackFont()
	hb1, err := f.HarfBuzz()
	require.NoError(t, err)
	hb2, err := f.HarfBuzz()
	require.NoError(t, err)
	assert.NotSame(t, hb1, hb2, "borrowed HarfBuzz fonts must not be shared")
	f.Release(hb1)
	f.Release(hb2)
}

func TestNormalizeFontname(t *testing.T) {
	assert.Equal(t, "gentiumplus-r", NormalizeFontname("fonts/GentiumPlus-R.ttf"))
	assert.Equal(t, "noto_sans", NormalizeFontname(" Noto Sans "))
}
