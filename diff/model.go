package diff

import (
	"strings"
)

// Glyph is a character which is mapped by one font only.
type Glyph struct {
	String  string `json:"string"`
	Name    string `json:"name"`    // Unicode character name, may be empty
	Unicode rune   `json:"unicode"` // code-point
}

// GlyphDiff is a character which renders differently in two fonts.
type GlyphDiff struct {
	String        string  `json:"string"`
	Name          string  `json:"name"`
	Unicode       rune    `json:"unicode"`
	ChangedPixels float64 `json:"changed_pixels"` // pixel difference score
}

// GlyphItems is the outcome of comparing the character sets of two fonts.
type GlyphItems struct {
	Missing  []Glyph     `json:"missing"`  // in font A only, sorted by character
	New      []Glyph     `json:"new"`      // in font B only, sorted by character
	Modified []GlyphDiff `json:"modified"` // sorted by descending score
}

// Skipped returns the characters which are not present in both fonts.
func (gi GlyphItems) Skipped() []Glyph {
	skip := make([]Glyph, 0, len(gi.Missing)+len(gi.New))
	skip = append(skip, gi.Missing...)
	return append(skip, gi.New...)
}

// Empty is true if no glyph differences have been found.
func (gi GlyphItems) Empty() bool {
	return len(gi.Missing) == 0 && len(gi.New) == 0 && len(gi.Modified) == 0
}

// WordDiff is a word which shapes and renders differently in two fonts.
type WordDiff struct {
	String   string   `json:"string"`
	HashA    string   `json:"hb_a"`        // shaping hash with font A
	HashB    string   `json:"hb_b"`        // shaping hash with font B
	Features []string `json:"ot_features"` // OpenType features enabled for shaping
	Lang     string   `json:"lang"`        // BCP 47 tag for display, may be empty
	OTScript string   `json:"-"`           // OpenType script the word has been shaped with
	OTLang   string   `json:"-"`           // OpenType language system the word has been shaped with
}

// Key identifies a word diff. The display language is not part of the
// identity: diffs which differ in language only are duplicates.
func (wd WordDiff) Key() string {
	return strings.Join([]string{wd.String, wd.HashA, wd.HashB, strings.Join(wd.Features, ",")}, "\x00")
}

// Report is the result of comparing two fonts.
type Report struct {
	Glyphs GlyphItems            `json:"glyphs"`
	Words  map[string][]WordDiff `json:"words"` // per ISO 15924 script code
}

// Empty is true if the fonts showed no differences.
func (r Report) Empty() bool {
	for _, words := range r.Words {
		if len(words) > 0 {
			return false
		}
	}
	return r.Glyphs.Empty()
}
