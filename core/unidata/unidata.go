/*
Package unidata answers the Unicode questions fontdiff asks about single
code-points: the character name and the script a code-point belongs to.

Names come from golang.org/x/text/unicode/runenames, script properties from
the script tables of github.com/go-text/typesetting/language. Scripts are
reported as ISO 15924 codes ("Latn", "Cyrl", "Arab"), which is also the
naming scheme of packaged word lists.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package unidata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/runenames"
)

// ErrNoName is returned for code-points without a Unicode character name,
// e.g. unassigned code-points, controls or private use characters.
var ErrNoName = errors.New("code-point has no Unicode name")

// Script codes of the pseudo-scripts which do not identify a writing system.
const (
	Common    = "Zyyy"
	Inherited = "Zinh"
	Unknown   = "Zzzz"
)

// Name returns the Unicode character name of r.
func Name(r rune) (string, error) {
	name := runenames.Name(r)
	if name == "" || strings.HasPrefix(name, "<") {
		return "", fmt.Errorf("%w: %U", ErrNoName, r)
	}
	return name, nil
}

// NameOrEmpty returns the Unicode character name of r, or "" if r
// does not have one.
func NameOrEmpty(r rune) string {
	name, _ := Name(r)
	return name
}

// Script returns the ISO 15924 script code of r, e.g. "Latn".
// Code-points not covered by the script tables map to "Zzzz".
func Script(r rune) string {
	return ScriptCode(language.LookupScript(r))
}

// ScriptCode formats a script as its 4-letter ISO 15924 code, in title case.
// Script values are lowercase tags internally.
func ScriptCode(s language.Script) string {
	if s == 0 {
		return Unknown
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(s))
	code := string(b[:])
	return strings.ToUpper(code[:1]) + strings.ToLower(code[1:])
}

// IsCommon is true for pseudo-script codes, which do not identify a writing
// system of their own.
func IsCommon(script string) bool {
	switch script {
	case Common, Inherited, Unknown, "":
		return true
	}
	return false
}

// ScriptDistribution counts code-points per script. Code-points of
// pseudo-scripts are not counted.
func ScriptDistribution(cmap []rune) map[string]int {
	dist := make(map[string]int)
	for _, r := range cmap {
		s := Script(r)
		if IsCommon(s) {
			continue
		}
		dist[s]++
	}
	return dist
}

// DominantScript returns the script of the first code-point of text which
// belongs to a real writing system, or "" if there is none.
func DominantScript(text string) string {
	for _, r := range text {
		if s := Script(r); !IsCommon(s) {
			return s
		}
	}
	return ""
}
