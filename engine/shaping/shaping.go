/*
Package shaping uses HarfBuzz to convert text to sequences of positioned glyphs.

Shaping parameters follow OpenType conventions: a script tag ("latn",
"dev2"), a language system tag ("dflt", "SRB") and a list of feature tags
("liga", "-kern", "ss01=2"). They are translated to HarfBuzz segment
properties and feature switches before shaping.

Two fonts are compared by shaping the same text with both of them and
hashing the output (see Hash and Compare). Glyph IDs are not stable across
font builds; PosHash ignores them.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package shaping

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/unicode/bidi"
)

// tracer traces with key 'fontdiff.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.shaping")
}

// Params collects shaping parameters.
type Params struct {
	Script   string   // OpenType script tag or ISO 15924 code; empty: guess from text
	Language string   // OpenType language system tag or BCP 47 tag; "dflt" or empty: none
	Features []string // feature tags, "-" prefix switches off, "=n" suffix sets a value
}

// DefaultParams are the shaping parameters for lines of a word list which
// do not carry any.
var DefaultParams = Params{Script: "latn", Language: "dflt"}

// Glyph is a shaped glyph as output by HarfBuzz. Positions are in font units.
type Glyph struct {
	GID      uint32 // glyph index within the font
	Cluster  int    // index of the first code-point this glyph results from
	XAdvance int32
	YAdvance int32
	XOffset  int32
	YOffset  int32
}

// Shaper shapes text with a fixed font.
type Shaper interface {
	Shape(text string, params Params) ([]Glyph, error)
}

// FontShaper is a Shaper for a ScalableFont.
type FontShaper struct {
	Font *font.ScalableFont
}

// Shape implements the Shaper interface.
func (fs FontShaper) Shape(text string, params Params) ([]Glyph, error) {
	return Shape(fs.Font, text, params)
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language. OpenType language
// system tags are mapped to BCP 47 where a mapping is known.
func Lang4HB(lang string) hblang.Language {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, "dflt") {
		return ""
	}
	if bcp, ok := otLanguages[strings.ToUpper(lang)]; ok && len(lang) == 3 {
		return hblang.NewLanguage(bcp)
	}
	return hblang.NewLanguage(lang)
}

// Script4HB returns an ISO 15924 script code as a HarfBuzz script.
// HarfBuzz scripts are lowercase tags.
func Script4HB(iso string) hblang.Script {
	if len(iso) != 4 {
		return 0
	}
	b := []byte(strings.ToLower(iso))
	return hblang.Script(binary.BigEndian.Uint32(b))
}

// Direction4HB returns the writing direction for text, as determined by its
// first character with a strong bidi class.
func Direction4HB(text string) hb.Direction {
	for _, r := range text {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return hb.LeftToRight
		case bidi.R, bidi.AL:
			return hb.RightToLeft
		}
	}
	return hb.LeftToRight
}

// globalEnd marks a feature range extending to the end of the buffer.
const globalEnd = int(^uint(0) >> 1)

// Feature4HB converts a feature setting to a HarfBuzz feature switch.
// Settings are written as "liga" (on), "-liga" (off) or "salt=3" (value).
// Tags shorter than 4 letters are padded with spaces.
func Feature4HB(setting string) (hb.Feature, error) {
	setting = strings.TrimSpace(setting)
	f := hb.Feature{Value: 1, Start: 0, End: globalEnd}
	if strings.HasPrefix(setting, "-") {
		f.Value = 0
		setting = setting[1:]
	} else {
		setting = strings.TrimPrefix(setting, "+")
	}
	if eq := strings.IndexByte(setting, '='); eq >= 0 {
		v, err := strconv.ParseUint(setting[eq+1:], 10, 32)
		if err != nil {
			return f, core.WrapError(err, core.EINVALID, "illegal feature value in %q", setting)
		}
		f.Value = uint32(v)
		setting = setting[:eq]
	}
	if setting == "" || len(setting) > 4 {
		return f, core.Error(core.EINVALID, "illegal feature tag %q", setting)
	}
	tag := []byte(setting + strings.Repeat(" ", 4-len(setting)))
	f.Tag = hbtt.Tag(binary.BigEndian.Uint32(tag))
	return f, nil
}

// features4HB converts a list of feature settings. Illegal settings are
// skipped.
func features4HB(settings []string) []hb.Feature {
	features := make([]hb.Feature, 0, len(settings))
	for _, s := range settings {
		if strings.TrimSpace(s) == "" {
			continue
		}
		f, err := Feature4HB(s)
		if err != nil {
			tracer().Infof("skipping feature: %v", err)
			continue
		}
		features = append(features, f)
	}
	return features
}

// --- Shape -----------------------------------------------------------------

// Shape calls the HarfBuzz shaper.
//
// Shape shapes a string, turning its Unicode characters to positioned glyphs.
// It will select a shape plan based on params and the properties of the
// input text. If params.Script is empty or unknown, the script is guessed
// from the text.
//
// Shape borrows a HarfBuzz font from f and is therefore safe to call
// concurrently for the same font.
func Shape(f *font.ScalableFont, text string, params Params) (glyphs []Glyph, err error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "no font given for shaping")
	}
	hbfont, err := f.HarfBuzz()
	if err != nil {
		return nil, err
	}
	defer f.Release(hbfont)
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = core.Error(core.EINTERNAL, "shaping %q with %s failed: %v", text, f.Fontname, r)
		}
	}()
	runes := []rune(text)
	buf := hb.NewBuffer()
	buf.Props = hb.SegmentProperties{
		Language:  Lang4HB(params.Language),
		Script:    Script4HB(ScriptCode(params.Script, text)),
		Direction: Direction4HB(text),
	}
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(hbfont, features4HB(params.Features))
	glyphs = make([]Glyph, len(buf.Info))
	for i, ginfo := range buf.Info {
		gpos := buf.Pos[i]
		glyphs[i] = Glyph{
			GID:      uint32(ginfo.Glyph),
			Cluster:  ginfo.Cluster,
			XAdvance: int32(gpos.XAdvance),
			YAdvance: int32(gpos.YAdvance),
			XOffset:  int32(gpos.XOffset),
			YOffset:  int32(gpos.YOffset),
		}
	}
	tracer().Debugf("shaped %q with %s to %d glyphs", text, f.Fontname, len(glyphs))
	return glyphs, nil
}

// String returns a readable representation of a shaped glyph.
func (g Glyph) String() string {
	return fmt.Sprintf("[%d@%d adv=(%d,%d) off=(%d,%d)]", g.GID, g.Cluster,
		g.XAdvance, g.YAdvance, g.XOffset, g.YOffset)
}
