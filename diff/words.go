package diff

import (
	"bufio"
	"context"
	"io"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/locate/resources"
	"github.com/npillmayer/fontdiff/core/unidata"
	"github.com/npillmayer/fontdiff/engine/parallel"
	"github.com/npillmayer/fontdiff/engine/pixdiff"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/fontdiff/engine/shaping"
)

// WordThreshold is the pixel difference score a word with diverging shaping
// output must reach to be reported.
const WordThreshold = 0.002

// MinScriptCodePoints is the number of code-points of a script a font has to
// map for the script to be tested with words.
const MinScriptCodePoints = 10

// WordListLine is a parsed line of a word list.
type WordListLine struct {
	Word     string
	Script   string // OpenType script tag as written in the list
	Lang     string // OpenType language system tag as written in the list
	Features []string
}

// Params returns the shaping parameters for the line.
func (l WordListLine) Params() shaping.Params {
	return shaping.Params{Script: l.Script, Language: l.Lang, Features: l.Features}
}

// ParseWordListLine parses a line of a word list. Lines are of the form
//
//	word[,script,lang[,feature]*]
//
// Lines with fewer than three fields use script "latn", language "dflt" and
// no features. ParseWordListLine returns false for empty lines.
func ParseWordListLine(line string) (WordListLine, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return WordListLine{}, false
	}
	items := strings.Split(line, ",")
	if items[0] == "" {
		return WordListLine{}, false
	}
	if len(items) < 3 {
		return WordListLine{
			Word:   items[0],
			Script: shaping.DefaultParams.Script,
			Lang:   shaping.DefaultParams.Language,
		}, true
	}
	l := WordListLine{Word: items[0], Script: items[1], Lang: items[2]}
	for _, feat := range items[3:] {
		if feat = strings.TrimSpace(feat); feat != "" {
			l.Features = append(l.Features, feat)
		}
	}
	return l, true
}

// ReadWordList reads all non-empty lines of a word list.
func ReadWordList(r io.Reader) ([]WordListLine, error) {
	var lines []WordListLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if l, ok := ParseWordListLine(scanner.Text()); ok {
			lines = append(lines, l)
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, core.WrapError(err, core.EINVALID, "cannot read word list")
	}
	return lines, nil
}

// scoredWord is the outcome of testing a single word.
type scoredWord struct {
	diff  WordDiff
	score float64
	found bool
}

// TestWords tests the words of a word list with two fonts. Words containing
// one of the skip glyphs are not tested. A word is reported if its shaping
// hashes differ and its pixel difference score is at least WordThreshold.
// Results are ordered by descending score, duplicates (see WordDiff.Key)
// are removed.
func TestWords(ctx context.Context, wordlist io.Reader, a, b Font, skip []Glyph, opts Options) ([]WordDiff, error) {
	opts = opts.withDefaults()
	lines, err := ReadWordList(wordlist)
	if err != nil {
		return nil, err
	}
	skipSet := hashset.New()
	for _, g := range skip {
		skipSet.Add(g.Unicode)
	}
	tracer().Infof("testing %d words", len(lines))
	results, _, err := parallel.Map(ctx, opts.Workers, lines, func(_ context.Context, l WordListLine) scoredWord {
		return testWord(l, a, b, skipSet, opts)
	})
	var found []scoredWord
	for _, res := range results {
		if res.found {
			found = append(found, res)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })
	seen := hashset.New()
	diffs := make([]WordDiff, 0, len(found))
	for _, res := range found {
		if key := res.diff.Key(); !seen.Contains(key) {
			seen.Add(key)
			diffs = append(diffs, res.diff)
		}
	}
	return diffs, err
}

func testWord(l WordListLine, a, b Font, skip *hashset.Set, opts Options) scoredWord {
	for _, r := range l.Word {
		if skip.Contains(r) {
			return scoredWord{}
		}
	}
	params := l.Params()
	wa, wb, differ, err := shaping.Compare(a, b, l.Word, params, opts.Hash)
	if err != nil {
		tracer().Debugf("cannot shape %q: %v", l.Word, err)
		return scoredWord{}
	}
	if !differ {
		return scoredWord{}
	}
	res := pixdiff.Diff(a, b, l.Word, render.Options{Size: opts.Size, Params: params})
	if res.Degraded() {
		tracer().Debugf("cannot compare pixels of %q: %v", l.Word, res.Err)
	}
	if res.Score() < WordThreshold {
		return scoredWord{}
	}
	return scoredWord{
		diff: WordDiff{
			String:   l.Word,
			HashA:    wa.HB,
			HashB:    wb.HB,
			Features: l.Features,
			Lang:     shaping.HTMLLang(l.Script, l.Lang),
			OTScript: l.Script,
			OTLang:   l.Lang,
		},
		score: res.Score(),
		found: true,
	}
}

// TestFontWords tests two fonts with the word lists of every script font A
// covers with at least MinScriptCodePoints code-points. Scripts without a
// word list are skipped. Scripts without differences are not part of the
// result.
func TestFontWords(ctx context.Context, a, b Font, skip []Glyph, opts Options) (map[string][]WordDiff, error) {
	opts = opts.withDefaults()
	dist := unidata.ScriptDistribution(a.Cmap())
	scripts := make([]string, 0, len(dist))
	for script, count := range dist {
		if count < MinScriptCodePoints {
			tracer().Debugf("font covers %d code-points of script %s only, skipping", count, script)
			continue
		}
		scripts = append(scripts, script)
	}
	sort.Strings(scripts)
	res := make(map[string][]WordDiff)
	for _, script := range scripts {
		if err := ctx.Err(); err != nil {
			return res, core.WrapError(err, core.ECANCELED, "word test canceled")
		}
		diffs, err := testScript(ctx, script, a, b, skip, opts)
		if err != nil {
			if core.Code(err) == core.ECANCELED {
				return res, err
			}
			tracer().Errorf("script %s: %v", script, err)
			continue
		}
		if len(diffs) > 0 {
			res[script] = diffs
		}
	}
	return res, nil
}

func testScript(ctx context.Context, script string, a, b Font, skip []Glyph, opts Options) ([]WordDiff, error) {
	rc, err := opts.WordLists.WordList(script)
	if err != nil {
		if resources.IsNotFound(err) {
			tracer().Infof("no word list for %s", script)
			return nil, nil
		}
		return nil, err
	}
	defer rc.Close()
	tracer().Infof("testing word list for %s", script)
	diffs, err := TestWords(ctx, rc, a, b, skip, opts)
	if err != nil && ctx.Err() != nil {
		return diffs, core.WrapError(err, core.ECANCELED, "word test canceled")
	}
	return diffs, err
}
