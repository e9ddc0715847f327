/*
Package diff compares two versions of a font.

Comparison runs in two stages. First, the character sets of both fonts are
compared: characters mapped by one font only are reported as missing or new,
characters mapped by both are rendered and compared pixel by pixel
(TestFontGlyphs). Second, real-world words are shaped with both fonts
(TestFontWords). If the shaping output of a word differs, the word is
rendered with both fonts, and reported if the rendering differs visibly.
Words containing characters missing in one of the fonts are skipped.

Word lists are looked up per script, named by ISO 15924 code. Every line of
a word list holds a word, optionally followed by an OpenType script tag, a
language system tag and feature tags, separated by commas.

Errors for single characters or words never propagate: if shaping or
rendering fails, the item is not reported.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package diff

import (
	"context"
	"strconv"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/locate/resources"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/fontdiff/engine/shaping"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontdiff.diff'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.diff")
}

// Options control a font comparison. The zero value is usable.
type Options struct {
	Workers   int                      // goroutines per stage; 0: GOMAXPROCS
	WordLists resources.WordListSource // nil: packaged word lists
	Hash      shaping.HashFunc         // nil: shaping.GIDPosHash
	Size      float64                  // rendering size in pixels per em; 0: render.DefaultSize
}

func (opts Options) withDefaults() Options {
	if opts.WordLists == nil {
		opts.WordLists = resources.PackagedWordLists()
	}
	if opts.Hash == nil {
		opts.Hash = shaping.GIDPosHash
	}
	if opts.Size <= 0 {
		opts.Size = render.DefaultSize
	}
	return opts
}

// OptionsFromConfig reads comparison options from configuration keys
// `fontdiff.workers`, `fontdiff.wordlists` (a directory searched before the
// packaged word lists) and `fontdiff.hash` ("gid+pos", "gid" or "pos").
// conf may be nil.
func OptionsFromConfig(conf schuko.Configuration) (Options, error) {
	opts := Options{}
	if conf == nil {
		return opts.withDefaults(), nil
	}
	if w := conf.GetString("fontdiff.workers"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 {
			return opts, core.Error(core.EINVALID, "illegal number of workers: %q", w)
		}
		opts.Workers = n
	}
	opts.WordLists = resources.DefaultWordLists(conf.GetString("fontdiff.wordlists"))
	hash, err := shaping.HashByName(conf.GetString("fontdiff.hash"))
	if err != nil {
		return opts, err
	}
	opts.Hash = hash
	return opts.withDefaults(), nil
}

// TestFonts compares font A (usually the older version) with font B.
//
// If ctx is canceled, TestFonts stops and returns the partial report
// together with an error of code ECANCELED.
func TestFonts(ctx context.Context, a, b Font, opts Options) (Report, error) {
	opts = opts.withDefaults()
	report := Report{Words: map[string][]WordDiff{}}
	glyphs, err := TestFontGlyphs(ctx, a, b, opts)
	report.Glyphs = glyphs
	if err != nil {
		return report, core.WrapError(err, core.ECANCELED, "glyph test canceled")
	}
	words, err := TestFontWords(ctx, a, b, glyphs.Skipped(), opts)
	report.Words = words
	if err != nil {
		return report, err
	}
	return report, nil
}
