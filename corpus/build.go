/*
Package corpus builds word lists from text corpora.

A corpus is an XML dump of a wiki, in the format of the MediaWiki export
(pages containing revisions). Revision texts are split into words, and a
word is kept for the list if

* it consists of allowed characters only (if a set of characters is given),

* it is not a proper substring of another candidate word,

* it occurs more than twice within the corpus.

The resulting list is written one word per line, in sorted order. Word lists
built this way cover many different glyph sequences with few words, which
keeps font comparisons fast.

Revisions are selected with an XPath expression, evaluated by
github.com/antchfx/xpath over a lightweight document tree. Substring
suppression runs an Aho-Corasick automaton based on a trie from
github.com/derekparker/trie.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package corpus

import (
	"bytes"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontdiff.corpus'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.corpus")
}

// DefaultXPath selects the revision texts of all pages of a wiki dump.
// Revision metadata (model, format, contributor, sha1) is not selected.
const DefaultXPath = "//page/revision/text"

// DefaultMinFrequency is the number of occurrences a word needs to be kept.
const DefaultMinFrequency = 3

// BuildOptions control the construction of a word list.
type BuildOptions struct {
	Allowed      string    // characters words may consist of; empty: all
	Tokenizer    Tokenizer // how to split text into words
	StripMarkup  bool      // remove HTML markup from revision text
	XPath        string    // selects text elements; empty: DefaultXPath
	MinFrequency int       // minimum number of occurrences; 0: DefaultMinFrequency
}

// OptionsFromConfig reads build options from configuration keys
// `fontdiff.xpath`, `fontdiff.corpus.glyphs`, `fontdiff.corpus.tokenizer`,
// `fontdiff.corpus.strip-markup` and `fontdiff.corpus.min-frequency`.
// conf may be nil.
func OptionsFromConfig(conf schuko.Configuration) BuildOptions {
	opts := BuildOptions{}
	if conf == nil {
		return opts
	}
	opts.XPath = conf.GetString("fontdiff.xpath")
	opts.Allowed = conf.GetString("fontdiff.corpus.glyphs")
	opts.Tokenizer = ParseTokenizer(conf.GetString("fontdiff.corpus.tokenizer"))
	opts.StripMarkup, _ = strconv.ParseBool(conf.GetString("fontdiff.corpus.strip-markup"))
	if n, err := strconv.Atoi(conf.GetString("fontdiff.corpus.min-frequency")); err == nil {
		opts.MinFrequency = n
	}
	return opts
}

func (opts BuildOptions) xpath() string {
	if opts.XPath == "" {
		return DefaultXPath
	}
	return opts.XPath
}

func (opts BuildOptions) minFrequency() int {
	if opts.MinFrequency <= 0 {
		return DefaultMinFrequency
	}
	return opts.MinFrequency
}

// Stats reports numbers collected during a build.
type Stats struct {
	Texts      int // number of text elements selected
	Tokens     int // number of tokens seen
	Distinct   int // number of distinct tokens
	Banked     int // distinct tokens consisting of allowed characters
	Suppressed int // banked words removed as substrings of others
	Rare       int // surviving words removed for low frequency
	Written    int // words in the list
}

// Collect reads a corpus and returns the sorted word list.
func Collect(ctx context.Context, in io.Reader, opts BuildOptions) ([]string, Stats, error) {
	var stats Stats
	doc, err := ParseXML(in)
	if err != nil {
		return nil, stats, err
	}
	texts, err := Select(doc, opts.xpath())
	if err != nil {
		return nil, stats, err
	}
	stats.Texts = len(texts)
	tracer().Infof("corpus contains %d texts", len(texts))
	var allowed *hashset.Set
	if opts.Allowed != "" {
		allowed = hashset.New()
		for _, r := range opts.Allowed {
			allowed.Add(r)
		}
	}
	freq := make(map[string]int)
	bank := hashset.New()
	tk := newTokenizer(opts.Tokenizer)
	for _, node := range texts {
		if err := ctx.Err(); err != nil {
			return nil, stats, core.WrapError(err, core.ECANCELED, "building word list canceled")
		}
		text := node.Text()
		if opts.StripMarkup {
			text = StripMarkup(text)
		}
		tk.tokens(strings.NewReader(text), func(token string) {
			stats.Tokens++
			freq[token]++
			if freq[token] == 1 && isComposedOf(token, allowed) {
				bank.Add(token)
			}
		})
	}
	stats.Distinct = len(freq)
	stats.Banked = bank.Size()
	banked := make([]string, 0, bank.Size())
	for _, v := range bank.Values() {
		banked = append(banked, v.(string))
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, core.WrapError(err, core.ECANCELED, "building word list canceled")
	}
	survivors := RemoveSubstringWords(banked)
	stats.Suppressed = len(banked) - len(survivors)
	sorted := treeset.NewWithStringComparator()
	for _, w := range survivors {
		if freq[w] < opts.minFrequency() {
			stats.Rare++
			continue
		}
		sorted.Add(w)
	}
	words := make([]string, 0, sorted.Size())
	for _, v := range sorted.Values() {
		words = append(words, v.(string))
	}
	stats.Written = len(words)
	tracer().Infof("word list: %d tokens, %d banked, %d substrings, %d rare, %d written",
		stats.Tokens, stats.Banked, stats.Suppressed, stats.Rare, stats.Written)
	return words, stats, nil
}

// isComposedOf is true if allowed is nil or contains every rune of word.
func isComposedOf(word string, allowed *hashset.Set) bool {
	if allowed == nil {
		return true
	}
	for _, r := range word {
		if !allowed.Contains(r) {
			return false
		}
	}
	return true
}

// BuildWords reads a corpus from in and writes the word list to out, one
// word per line, without a trailing newline. Nothing is written if the
// corpus cannot be read.
func BuildWords(ctx context.Context, in io.Reader, out io.Writer, opts BuildOptions) (Stats, error) {
	words, stats, err := Collect(ctx, in, opts)
	if err != nil {
		return stats, err
	}
	_, err = io.WriteString(out, strings.Join(words, "\n"))
	return stats, err
}

// BuildWordsFile builds a word list from the corpus file at inPath and writes
// it to outPath. The output file is not created if the corpus cannot be read.
func BuildWordsFile(ctx context.Context, inPath, outPath string, opts BuildOptions) (Stats, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, core.WrapError(err, core.EMISSING, "cannot open corpus %s", inPath)
	}
	defer in.Close()
	var buf bytes.Buffer
	stats, err := BuildWords(ctx, in, &buf, opts)
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return stats, core.WrapError(err, core.EINVALID, "cannot write word list %s", outPath)
	}
	return stats, nil
}
