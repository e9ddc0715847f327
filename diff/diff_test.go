package diff

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/locate/resources"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/fontdiff/engine/shaping"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Fakes -----------------------------------------------------------------

// fakeFont shapes every rune to a glyph with the rune as glyph index and
// renders blank 100×10 images, unless configured otherwise.
type fakeFont struct {
	name    string
	cmap    []rune
	advance map[rune]int32
	images  map[string]image.Image
}

func (f fakeFont) Name() string { return f.name }
func (f fakeFont) Cmap() []rune { return f.cmap }

func (f fakeFont) Shape(text string, _ shaping.Params) ([]shaping.Glyph, error) {
	var glyphs []shaping.Glyph
	for i, r := range []rune(text) {
		adv, ok := f.advance[r]
		if !ok {
			adv = 500
		}
		glyphs = append(glyphs, shaping.Glyph{GID: uint32(r), Cluster: i, XAdvance: adv})
	}
	return glyphs, nil
}

func (f fakeFont) Render(text string, _ render.Options) (image.Image, error) {
	if img, ok := f.images[text]; ok {
		return img, nil
	}
	return blank(), nil
}

func blank() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 10))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// speckled returns a blank 100×10 image with n pixels colored c.
// A pixel with one channel reduced to 127 contributes 128 to the difference
// sum of a comparison with a blank image, which corresponds to a score of
// 128/6912000 for images of this size.
func speckled(n int, c color.NRGBA) *image.NRGBA {
	img := blank()
	for i := 0; i < n; i++ {
		img.SetNRGBA(i%100, i/100, c)
	}
	return img
}

var (
	oneChannel  = color.NRGBA{127, 255, 255, 255} // difference of 128
	twoChannels = color.NRGBA{127, 127, 255, 255} // difference of 256
)

type wordLists map[string]string

func (wl wordLists) WordList(script string) (io.ReadCloser, error) {
	if list, ok := wl[script]; ok {
		return io.NopCloser(strings.NewReader(list)), nil
	}
	return nil, resources.NotFound(script)
}

func runes(s string) []rune {
	return []rune(s)
}

// --- Suite -----------------------------------------------------------------

type DiffTestEnviron struct {
	suite.Suite
	teardown func()
}

// listen for 'go test' command --> run test methods
func TestDiffFunctions(t *testing.T) {
	suite.Run(t, new(DiffTestEnviron))
}

// run once, before test suite methods
func (env *DiffTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	env.teardown = gotestingadapter.QuickConfig(env.T(), "fontdiff.diff")
}

// run once, after test suite methods
func (env *DiffTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
	env.teardown()
}

func (env *DiffTestEnviron) TestGlyphSets() {
	a := fakeFont{name: "A", cmap: runes("dcba")}
	b := fakeFont{name: "B", cmap: runes("bcdeé"), images: map[string]image.Image{
		"c": speckled(27, oneChannel), // exactly at the threshold
		"d": speckled(28, oneChannel),
		"b": speckled(100, twoChannels),
	}}
	items, err := TestFontGlyphs(context.Background(), a, b, Options{Workers: 2})
	env.Require().NoError(err)
	env.Equal([]Glyph{{String: "a", Name: "LATIN SMALL LETTER A", Unicode: 'a'}}, items.Missing)
	env.Equal([]Glyph{
		{String: "e", Name: "LATIN SMALL LETTER E", Unicode: 'e'},
		{String: "é", Name: "LATIN SMALL LETTER E WITH ACUTE", Unicode: 'é'},
	}, items.New)
	env.Require().Len(items.Modified, 2, "glyph at threshold is not modified")
	env.Equal("b", items.Modified[0].String)
	env.Equal("d", items.Modified[1].String)
	env.Greater(items.Modified[0].ChangedPixels, items.Modified[1].ChangedPixels)
	env.Len(items.Skipped(), 3)
	//
	swapped, err := TestFontGlyphs(context.Background(), b, a, Options{Workers: 2})
	env.Require().NoError(err)
	env.Equal(items.Missing, swapped.New, "missing glyphs are new with fonts swapped")
	env.Equal(items.New, swapped.Missing, "new glyphs are missing with fonts swapped")
}

func (env *DiffTestEnviron) TestIdenticalGlyphSets() {
	a := fakeFont{name: "A", cmap: runes("abc")}
	items, err := TestFontGlyphs(context.Background(), a, a, Options{})
	env.Require().NoError(err)
	env.NotNil(items.Missing)
	env.NotNil(items.New)
	env.NotNil(items.Modified)
	data, err := json.Marshal(items)
	env.Require().NoError(err)
	env.JSONEq(`{"missing": [], "new": [], "modified": []}`, string(data))
}

func (env *DiffTestEnviron) TestUnnamedGlyph() {
	a := fakeFont{cmap: []rune{0xE000}}
	items, err := TestFontGlyphs(context.Background(), a, fakeFont{}, Options{})
	env.Require().NoError(err)
	env.Require().Len(items.Missing, 1)
	env.Equal("", items.Missing[0].Name)
}

func (env *DiffTestEnviron) TestIdenticalFonts() {
	a := fakeFont{name: "A", cmap: runes("abcdefghijklmnop")}
	report, err := TestFonts(context.Background(), a, a, Options{
		WordLists: wordLists{"Latn": "abc\nfed\nhop"},
	})
	env.Require().NoError(err)
	env.True(report.Empty())
	env.Empty(report.Words, "scripts without differences are omitted")
}

func (env *DiffTestEnviron) TestWordThreshold() {
	a := fakeFont{name: "A"}
	b := fakeFont{name: "B", advance: map[rune]int32{'x': 600}, images: map[string]image.Image{
		"xa": speckled(54, twoChannels), // exactly at the threshold
		"xb": speckled(53, twoChannels),
		"xc": speckled(100, twoChannels),
		"ab": speckled(500, twoChannels), // shapes identically
		"xe": speckled(500, twoChannels), // contains a skipped glyph
	}}
	list := "xa\nxb\n\nxc,latn,dflt,liga\nab\nxe\n"
	skip := []Glyph{{String: "e", Unicode: 'e'}}
	diffs, err := TestWords(context.Background(), strings.NewReader(list), a, b, skip, Options{})
	env.Require().NoError(err)
	env.Require().Len(diffs, 2)
	env.Equal("xc", diffs[0].String)
	env.Equal([]string{"liga"}, diffs[0].Features)
	env.Equal("en", diffs[0].Lang)
	env.Equal("xa", diffs[1].String)
	env.NotEqual(diffs[1].HashA, diffs[1].HashB)
}

func (env *DiffTestEnviron) TestWordDeduplication() {
	a := fakeFont{name: "A"}
	b := fakeFont{name: "B", advance: map[rune]int32{'x': 600}, images: map[string]image.Image{
		"xa": speckled(100, twoChannels),
	}}
	list := "xa\nxa,latn,SRB\nxa,latn,dflt,liga"
	diffs, err := TestWords(context.Background(), strings.NewReader(list), a, b, nil, Options{Workers: 3})
	env.Require().NoError(err)
	env.Require().Len(diffs, 2, "language does not distinguish word diffs")
	env.Equal("en", diffs[0].Lang)
	env.Empty(diffs[0].Features)
	env.Equal([]string{"liga"}, diffs[1].Features)
}

func (env *DiffTestEnviron) TestFontWordsPerScript() {
	latin := runes("abcdefghijklmnopqrstuvwxyz")
	greek := runes("αβγδε")            // too few to be tested
	cyrillic := runes("абвгдежзийклмн") // no word list
	cmap := append(append(append([]rune{}, latin...), greek...), cyrillic...)
	a := fakeFont{name: "A", cmap: cmap}
	b := fakeFont{name: "B", cmap: cmap, advance: map[rune]int32{'x': 600, 'β': 600},
		images: map[string]image.Image{
			"box": speckled(100, twoChannels),
			"αβγ": speckled(100, twoChannels),
		}}
	lists := wordLists{"Latn": "box\nbag", "Grek": "αβγ"}
	words, err := TestFontWords(context.Background(), a, b, nil, Options{WordLists: lists, Hash: shaping.PosHash})
	env.Require().NoError(err)
	env.Equal(map[string][]WordDiff{
		"Latn": {{String: "box", HashA: "pos=(500, 0, 0, 0)<br>pos=(500, 0, 0, 0)<br>pos=(500, 0, 0, 0)<br>",
			HashB: "pos=(500, 0, 0, 0)<br>pos=(500, 0, 0, 0)<br>pos=(600, 0, 0, 0)<br>", Lang: "en",
			OTScript: "latn", OTLang: "dflt"}},
	}, words, "expected Latin words only, hashed by position")
}

func (env *DiffTestEnviron) TestFontsSkipsMissingGlyphs() {
	a := fakeFont{name: "A", cmap: runes("abcdefghijklmnopqrstuvwxyz")}
	b := fakeFont{name: "B", cmap: runes("abcdefghijklmnopqrstuvwxy"), advance: map[rune]int32{'x': 600},
		images: map[string]image.Image{
			"xz": speckled(500, twoChannels),
			"xy": speckled(500, twoChannels),
		}}
	report, err := TestFonts(context.Background(), a, b, Options{WordLists: wordLists{"Latn": "xz\nxy"}})
	env.Require().NoError(err)
	env.Equal([]Glyph{{String: "z", Name: "LATIN SMALL LETTER Z", Unicode: 'z'}}, report.Glyphs.Missing)
	env.Require().Len(report.Words["Latn"], 1)
	env.Equal("xy", report.Words["Latn"][0].String)
}

func (env *DiffTestEnviron) TestCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := fakeFont{name: "A", cmap: runes("abcdefghijklmnopqrstuvwxyz")}
	_, err := TestFonts(ctx, a, a, Options{})
	env.Equal(core.ECANCELED, core.Code(err))
}

// --- Plain tests -----------------------------------------------------------

func TestParseWordListLine(t *testing.T) {
	for _, c := range []struct {
		line     string
		expected WordListLine
	}{
		{"word", WordListLine{Word: "word", Script: "latn", Lang: "dflt"}},
		{"word\r", WordListLine{Word: "word", Script: "latn", Lang: "dflt"}},
		{"word,cyrl", WordListLine{Word: "word", Script: "latn", Lang: "dflt"}},
		{"српски,cyrl,SRB", WordListLine{Word: "српски", Script: "cyrl", Lang: "SRB"}},
		{"office,latn,dflt,liga,kern", WordListLine{Word: "office", Script: "latn", Lang: "dflt",
			Features: []string{"liga", "kern"}}},
		{"office,latn,dflt,", WordListLine{Word: "office", Script: "latn", Lang: "dflt"}},
	} {
		l, ok := ParseWordListLine(c.line)
		require.True(t, ok, c.line)
		if d := cmp.Diff(c.expected, l); d != "" {
			t.Errorf("line %q: (-want +got)\n%s", c.line, d)
		}
	}
	_, ok := ParseWordListLine("")
	assert.False(t, ok)
	_, ok = ParseWordListLine(",latn,dflt")
	assert.False(t, ok)
}

func TestWordDiffKey(t *testing.T) {
	wd := WordDiff{String: "fi", HashA: "a", HashB: "b", Features: []string{"liga"}, Lang: "en"}
	other := wd
	other.Lang = "sr"
	assert.Equal(t, wd.Key(), other.Key())
	other.Features = nil
	assert.NotEqual(t, wd.Key(), other.Key())
	assert.NotEqual(t, WordDiff{String: "ab", HashA: "c"}.Key(), WordDiff{String: "a", HashA: "bc"}.Key())
}

func TestOptionsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.diff")
	defer teardown()
	//
	opts, err := OptionsFromConfig(testconfig.Conf{
		"fontdiff.workers":   "3",
		"fontdiff.wordlists": t.TempDir(),
		"fontdiff.hash":      "gid",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, "gid=7", opts.Hash(shaping.Glyph{GID: 7}))
	rc, err := opts.WordLists.WordList("Latn") // falls through to packaged lists
	require.NoError(t, err)
	rc.Close()
	_, err = OptionsFromConfig(testconfig.Conf{"fontdiff.workers": "many"})
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = OptionsFromConfig(testconfig.Conf{"fontdiff.hash": "md5"})
	assert.Equal(t, core.EINVALID, core.Code(err))
	opts, err = OptionsFromConfig(nil)
	require.NoError(t, err)
	assert.NotNil(t, opts.WordLists)
}
