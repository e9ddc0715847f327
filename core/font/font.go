/*
Package font is for loading fonts and answering questions about them.

A ScalableFont is the font handle fontdiff works with. It bundles the raw
font binary with

* an x/image sfnt.Font, used for outlines and metrics during rendering,

* a best-effort character map, i.e. the set of code-points the font maps
to a glyph,

* a pool of HarfBuzz fonts, used for shaping.

Font handles are read-only after construction and may be used from several
goroutines concurrently. HarfBuzz fonts are not safe for concurrent use,
therefore every shaping call borrows one from the pool.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package font

import (
	"bytes"
	"os"
	"strings"
	"sync"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	seehuhn "seehuhn.de/go/sfnt"
)

// tracer traces with key 'fontdiff.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.fonts")
}

// ScalableFont is a loaded font, independent of a point size.
type ScalableFont struct {
	Fontname string     // full name of the font, as found in table 'name'
	Filepath string     // file path, if loaded from a file
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container, for outlines and metrics

	cmap     []rune // sorted code-points mapped by the font
	cmapOnce sync.Once
	hbfonts  sync.Pool // of *hb.Font
}

// LoadOpenTypeFont loads a font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = NormalizeFontname(fontfile)
	}
	return f, nil
}

// ParseOpenTypeFont creates a font handle from a font binary. It checks that
// both the outline parser and the shaping engine accept the font.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	hbfont, err := f.newHarfBuzzFont()
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "shaping engine rejects font %s", f.Fontname)
	}
	f.hbfonts.Put(hbfont)
	f.hbfonts.New = func() interface{} {
		hbf, err := f.newHarfBuzzFont()
		if err != nil { // has been parsed successfully before
			tracer().Errorf("cannot re-create HarfBuzz font for %s: %v", f.Fontname, err)
			return nil
		}
		return hbf
	}
	tracer().Debugf("loaded font %s", f.Fontname)
	return f, nil
}

func (sf *ScalableFont) newHarfBuzzFont() (*hb.Font, error) {
	face, err := hbtt.Parse(bytes.NewReader(sf.Binary), true)
	if err != nil {
		return nil, err
	}
	return hb.NewFont(face), nil
}

// HarfBuzz borrows a HarfBuzz font for shaping. Clients must hand it back
// with Release after use and must not use it from more than one goroutine.
func (sf *ScalableFont) HarfBuzz() (*hb.Font, error) {
	hbf, _ := sf.hbfonts.Get().(*hb.Font)
	if hbf == nil {
		return nil, core.Error(core.EINTERNAL, "no shaping font available for %s", sf.Fontname)
	}
	return hbf, nil
}

// Release hands back a HarfBuzz font borrowed by HarfBuzz.
func (sf *ScalableFont) Release(hbf *hb.Font) {
	if hbf != nil {
		sf.hbfonts.Put(hbf)
	}
}

// UnitsPerEm returns the number of font design units per em.
func (sf *ScalableFont) UnitsPerEm() int {
	return int(sf.SFNT.UnitsPerEm())
}

// --- Character map ---------------------------------------------------------

// BestCmap returns the code-points the font maps to a glyph, in ascending
// order. The result is computed once and shared; clients must not modify it.
//
// The best Unicode cmap subtable is selected by seehuhn.de/go/sfnt. If that
// fails, BestCmap falls back to probing the Basic Multilingual Plane with the
// x/image glyph lookup.
func (sf *ScalableFont) BestCmap() []rune {
	sf.cmapOnce.Do(func() {
		var err error
		if sf.cmap, err = sf.subtableCmap(); err != nil {
			tracer().Infof("font %s: %v; probing glyph lookup instead", sf.Fontname, err)
			sf.cmap = sf.probedCmap()
		}
		tracer().Debugf("font %s maps %d code-points", sf.Fontname, len(sf.cmap))
	})
	return sf.cmap
}

// maxRune is the highest valid Unicode code-point.
const maxRune = 0x10FFFF

func (sf *ScalableFont) subtableCmap() ([]rune, error) {
	info, err := seehuhn.Read(bytes.NewReader(sf.Binary))
	if err != nil {
		return nil, err
	}
	if info.CMapTable == nil {
		return nil, core.Error(core.EMISSING, "font has no cmap table")
	}
	subtable, err := info.CMapTable.GetBest()
	if err != nil {
		return nil, err
	}
	low, high := subtable.CodeRange()
	if high > maxRune {
		high = maxRune
	}
	var cmap []rune
	for r := low; r <= high; r++ {
		if subtable.Lookup(r) != 0 {
			cmap = append(cmap, r)
		}
	}
	return cmap, nil
}

func (sf *ScalableFont) probedCmap() []rune {
	var buf sfnt.Buffer
	var cmap []rune
	for r := rune(0x20); r <= 0xFFFF; r++ {
		if r >= 0xD800 && r <= 0xDFFF { // surrogates
			continue
		}
		if gid, err := sf.SFNT.GlyphIndex(&buf, r); err == nil && gid != 0 {
			cmap = append(cmap, r)
		}
	}
	return cmap
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	gofont, err := ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	gofont.Fontname = "Go Sans"
	gofont.Filepath = "internal"
	return gofont
}

// ---------------------------------------------------------------------------

// NormalizeFontname strips a font file name or a font name down to a
// lowercase identifier without spaces, directories and file extension.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSpace(fname)
	if slash := strings.LastIndexAny(fname, `/\`); slash >= 0 {
		fname = fname[slash+1:]
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fname
}
