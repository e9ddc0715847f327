package shaping

import (
	"fmt"
	"testing"

	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestHBScript(t *testing.T) {
	hbScript := Script4HB("Plrd")
	hstr := fmt.Sprintf("%x", uint32(hbScript))
	if hstr != "706c7264" {
		t.Errorf("expected HB script of 706c7264, is %s", hstr)
	}
	assert.Equal(t, uint32(0), uint32(Script4HB("")))
}

func TestHBLang(t *testing.T) {
	assert.Equal(t, "de-de", string(Lang4HB("de_DE")))
	assert.Equal(t, "sr", string(Lang4HB("SRB")))
	assert.Equal(t, "", string(Lang4HB("dflt")))
	assert.Equal(t, "", string(Lang4HB("")))
}

func TestHBDir(t *testing.T) {
	assert.Equal(t, hb.LeftToRight, Direction4HB("Hello"))
	assert.Equal(t, hb.RightToLeft, Direction4HB("שלום"))
	assert.Equal(t, hb.RightToLeft, Direction4HB("123 سلام"))
	assert.Equal(t, hb.LeftToRight, Direction4HB("123"))
}

func TestFeatureSettings(t *testing.T) {
	f, err := Feature4HB("liga")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), f.Value)
	assert.Equal(t, uint32(0x6c696761), uint32(f.Tag))
	f, err = Feature4HB("-kern")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), f.Value)
	f, err = Feature4HB("salt=3")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), f.Value)
	f, err = Feature4HB("cv")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x63762020), uint32(f.Tag))
	_, err = Feature4HB("toolong")
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = Feature4HB("salt=x")
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.Len(t, features4HB([]string{"liga", "", "toolong", "kern"}), 2)
}

func TestScriptCode(t *testing.T) {
	for _, c := range []struct{ tag, text, iso string }{
		{"latn", "", "Latn"},
		{"LATN", "", "Latn"},
		{"dev2", "", "Deva"},
		{"Cyrl", "", "Cyrl"},
		{"nko ", "", "Nkoo"},
		{"dflt", "мир", "Cyrl"},
		{"", "…hello", "Latn"},
		{"xqzw", "αβγ", "Grek"},
		{"", "123", ""},
	} {
		assert.Equal(t, c.iso, ScriptCode(c.tag, c.text), "script tag %q for %q", c.tag, c.text)
	}
}

func TestHTMLLang(t *testing.T) {
	assert.Equal(t, "en", HTMLLang("", ""))
	assert.Equal(t, "en", HTMLLang("latn", "dflt"))
	assert.Equal(t, "ar", HTMLLang("arab", "ARA"))
	assert.Equal(t, "mr", HTMLLang("dev2", "MAR"))
	assert.Equal(t, "ne", HTMLLang("dev2", "NEP"))
	assert.Equal(t, "hi", HTMLLang("dev2", "HIN"))
	assert.Equal(t, "mo", HTMLLang("latn", "MOL"))
	assert.Equal(t, "sr", HTMLLang("cyrl", "SRB"))
	assert.Equal(t, "", HTMLLang("thai", "dflt"))
	for _, pair := range [][2]string{
		{"latn", "VIT"}, {"latn", "DEU"}, {"cyrl", "dflt"},
		{"arab", "URD"}, {"latn", "SRB"}, {"grek", "dflt"},
	} {
		assert.Equal(t, "", HTMLLang(pair[0], pair[1]), "%s/%s has no lang", pair[0], pair[1])
	}
}

func TestHBShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.shaping")
	defer teardown()
	//
	input := "Hello"
	glyphs, err := Shape(loadFont(t, goregular.TTF), input, DefaultParams)
	require.NoError(t, err)
	require.Len(t, glyphs, len(input))
	for i, g := range glyphs {
		assert.NotZero(t, g.GID, "expected glyph for %q", input[i])
		assert.Equal(t, i, g.Cluster)
		assert.Positive(t, g.XAdvance)
	}
	_, err = Shape(nil, input, DefaultParams)
	assert.Error(t, err)
}

func TestHBShapeConcurrently(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.shaping")
	defer teardown()
	//
	f := loadFont(t, goregular.TTF)
	expected, err := Shape(f, "typography", DefaultParams)
	require.NoError(t, err)
	done := make(chan []Glyph)
	for i := 0; i < 8; i++ {
		go func() {
			glyphs, _ := Shape(f, "typography", DefaultParams)
			done <- glyphs
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, expected, <-done)
	}
}

func TestHashes(t *testing.T) {
	g := Glyph{GID: 42, XAdvance: 600}
	assert.Equal(t, "gid=42, pos=(600, 0, 0, 0)<br>", GIDPosHash(g))
	assert.Equal(t, "gid=42", GIDHash(g))
	assert.Equal(t, "gid=42gid=42", Hash([]Glyph{g, g}, GIDHash))
	assert.Equal(t, "", Hash(nil, GIDHash))
	fn, err := HashByName("pos")
	require.NoError(t, err)
	assert.Equal(t, "pos=(600, 0, 0, 0)<br>", fn(g))
	_, err = HashByName("md5")
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestWordEqual(t *testing.T) {
	w := Word{String: "fi", HB: "gid=1"}
	assert.True(t, w.Equal(Word{String: "fi", HB: "gid=1"}))
	assert.False(t, w.Equal(Word{String: "fi", HB: "gid=2"}))
	assert.False(t, w.Equal(Word{String: "fl", HB: "gid=1"}))
}

func TestCompareFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.shaping")
	defer teardown()
	//
	regular := FontShaper{Font: loadFont(t, goregular.TTF)}
	bold := FontShaper{Font: loadFont(t, gobold.TTF)}
	wa, wb, differ, err := Compare(regular, regular, "hamburgefonstiv", DefaultParams, GIDPosHash)
	require.NoError(t, err)
	assert.False(t, differ)
	assert.Equal(t, wa, wb)
	_, _, differ, err = Compare(regular, bold, "hamburgefonstiv", DefaultParams, GIDPosHash)
	require.NoError(t, err)
	assert.True(t, differ, "bold glyphs are expected to advance differently")
}

func TestCompareFailingShaper(t *testing.T) {
	regular := FontShaper{Font: loadFont(t, goregular.TTF)}
	_, _, differ, err := Compare(regular, failingShaper{}, "abc", DefaultParams, nil)
	assert.Error(t, err)
	assert.False(t, differ)
}

// ---------------------------------------------------------------------------

type failingShaper struct{}

func (failingShaper) Shape(string, Params) ([]Glyph, error) {
	return nil, core.Error(core.EINTERNAL, "broken")
}

func loadFont(t *testing.T, ttf []byte) *font.ScalableFont {
	f, err := font.ParseOpenTypeFont(ttf)
	require.NoError(t, err)
	return f
}
