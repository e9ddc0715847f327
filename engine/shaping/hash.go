package shaping

import (
	"fmt"
	"strings"

	"github.com/npillmayer/fontdiff/core"
)

// HashFunc formats a single shaped glyph. The formatted glyphs of a text are
// concatenated to the text's shaping hash.
type HashFunc func(g Glyph) string

// GIDPosHash formats a glyph by glyph index and position. It is the default
// hash, ending in a line break for HTML output.
func GIDPosHash(g Glyph) string {
	return fmt.Sprintf("gid=%d, pos=(%d, %d, %d, %d)<br>", g.GID,
		g.XAdvance, g.YAdvance, g.XOffset, g.YOffset)
}

// GIDHash formats a glyph by glyph index only.
func GIDHash(g Glyph) string {
	return fmt.Sprintf("gid=%d", g.GID)
}

// PosHash formats a glyph by position only. Glyph indices usually differ
// between two builds of the same font, positions should not.
func PosHash(g Glyph) string {
	return fmt.Sprintf("pos=(%d, %d, %d, %d)<br>", g.XAdvance, g.YAdvance, g.XOffset, g.YOffset)
}

// HashByName returns a hash function for a name as used on the command line
// or in configuration: "gid+pos", "gid" or "pos". An empty name selects
// GIDPosHash.
func HashByName(name string) (HashFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gid+pos", "gidpos":
		return GIDPosHash, nil
	case "gid":
		return GIDHash, nil
	case "pos":
		return PosHash, nil
	}
	return nil, core.Error(core.EINVALID, "unknown shaping hash %q", name)
}

// Hash concatenates the formatted glyphs of a shaping result.
func Hash(glyphs []Glyph, fn HashFunc) string {
	if fn == nil {
		fn = GIDPosHash
	}
	var sb strings.Builder
	for _, g := range glyphs {
		sb.WriteString(fn(g))
	}
	return sb.String()
}

// Word is a text together with the hash of its shaping output.
type Word struct {
	String string // the text
	HB     string // shaping hash
}

// Equal is true if both text and shaping hash are equal.
func (w Word) Equal(other Word) bool {
	return w.String == other.String && w.HB == other.HB
}

// ShapeWord shapes text and returns it as a Word.
func ShapeWord(s Shaper, text string, params Params, fn HashFunc) (Word, error) {
	glyphs, err := s.Shape(text, params)
	if err != nil {
		return Word{String: text}, err
	}
	return Word{String: text, HB: Hash(glyphs, fn)}, nil
}

// Compare shapes text with two shapers and reports whether the shaping
// hashes differ. If either shaping fails, the error is returned and the
// words are not considered different.
func Compare(a, b Shaper, text string, params Params, fn HashFunc) (Word, Word, bool, error) {
	wa, err := ShapeWord(a, text, params, fn)
	if err != nil {
		return wa, Word{String: text}, false, err
	}
	wb, err := ShapeWord(b, text, params, fn)
	if err != nil {
		return wa, wb, false, err
	}
	return wa, wb, !wa.Equal(wb), nil
}
