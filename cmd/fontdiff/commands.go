package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/locate/resources"
	"github.com/npillmayer/fontdiff/corpus"
	"github.com/npillmayer/fontdiff/diff"
	"github.com/npillmayer/fontdiff/report"
	"github.com/npillmayer/schuko"
)

// --- build -----------------------------------------------------------------

type buildCmd struct {
	glyphs      string
	uax29       bool
	stripMarkup bool
	xpath       string
	minFreq     string
	trace       string
}

func (c *buildCmd) flags() *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.StringVar(&c.glyphs, "glyphs", "", "characters words may consist of")
	fs.BoolVar(&c.uax29, "uax29", false, "split words at UAX #29 word boundaries")
	fs.BoolVar(&c.stripMarkup, "strip-markup", false, "remove HTML markup from corpus text")
	fs.StringVar(&c.xpath, "xpath", "", "XPath selecting text elements")
	fs.StringVar(&c.minFreq, "min-frequency", "", "minimum number of occurrences of a word")
	fs.StringVar(&c.trace, "trace", "Error", "trace level [Debug|Info|Error]")
	return fs
}

func (c *buildCmd) arity() int         { return 2 }
func (c *buildCmd) traceLevel() string { return c.trace }

func (c *buildCmd) conf() schuko.Configuration {
	tokenizer := corpus.TokenizeWhitespace
	if c.uax29 {
		tokenizer = corpus.TokenizeUAX29
	}
	return config(
		"fontdiff.xpath", c.xpath,
		"fontdiff.corpus.glyphs", c.glyphs,
		"fontdiff.corpus.tokenizer", tokenizer.String(),
		"fontdiff.corpus.strip-markup", fmt.Sprint(c.stripMarkup),
		"fontdiff.corpus.min-frequency", c.minFreq,
	)
}

func (c *buildCmd) execute(args []string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stats, err := corpus.BuildWordsFile(ctx, args[0], args[1], corpus.OptionsFromConfig(c.conf()))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d texts, %d tokens, %d distinct, %d banked, %d substrings, %d rare\n",
		stats.Texts, stats.Tokens, stats.Distinct, stats.Banked, stats.Suppressed, stats.Rare)
	fmt.Fprintf(out, "wrote %d words to %s\n", stats.Written, args[1])
	return nil
}

// --- diff ------------------------------------------------------------------

type diffCmd struct {
	jsonFile  string
	htmlFile  string
	imageDir  string
	workers   string
	wordlists string
	hash      string
	trace     string
}

func (c *diffCmd) flags() *flag.FlagSet {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	fs.StringVar(&c.jsonFile, "json", "", "write JSON report to file ('-' for stdout)")
	fs.StringVar(&c.htmlFile, "html", "", "write HTML report to file")
	fs.StringVar(&c.imageDir, "images", "", "write diff images to directory")
	fs.StringVar(&c.workers, "workers", "", "number of parallel workers")
	fs.StringVar(&c.wordlists, "wordlists", "", "directory of word lists, searched first")
	fs.StringVar(&c.hash, "hash", "", "shaping hash [gid+pos|gid|pos]")
	fs.StringVar(&c.trace, "trace", "Error", "trace level [Debug|Info|Error]")
	return fs
}

func (c *diffCmd) arity() int         { return 2 }
func (c *diffCmd) traceLevel() string { return c.trace }

func (c *diffCmd) conf() schuko.Configuration {
	return config(
		"fontdiff.workers", c.workers,
		"fontdiff.wordlists", c.wordlists,
		"fontdiff.hash", c.hash,
	)
}

func (c *diffCmd) execute(args []string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	conf := c.conf()
	opts, err := diff.OptionsFromConfig(conf)
	if err != nil {
		return err
	}
	a, b, meta, err := loadFonts(ctx, conf, args[0], args[1])
	if err != nil {
		return err
	}
	r, err := diff.TestFonts(ctx, a, b, opts)
	if err != nil && core.Code(err) != core.ECANCELED {
		return err
	}
	if werr := c.writeReports(ctx, r, a, b, meta, opts, out); err == nil {
		err = werr
	} else if werr != nil {
		tracer().Errorf("cannot write partial report: %v", werr)
	}
	return err
}

// writeReports writes all reports the user asked for. Canceled runs still
// get their partial reports, but no images.
func (c *diffCmd) writeReports(ctx context.Context, r diff.Report, a, b diff.Font, meta report.Meta,
	opts diff.Options, out io.Writer) error {
	//
	var canceled error
	if c.imageDir != "" && ctx.Err() == nil {
		n, err := report.WriteDiffImages(ctx, c.imageDir, r, a, b, opts.Size, opts.Workers)
		switch {
		case err == nil:
			tracer().Infof("wrote %d diff images", n)
			meta.ImageDir = imageDirFrom(c.htmlFile, c.imageDir)
		case core.Code(err) == core.ECANCELED:
			canceled = err
		default:
			return err
		}
	}
	if c.htmlFile != "" {
		if err := writeFile(c.htmlFile, func(w io.Writer) error { return report.WriteHTML(w, r, meta) }); err != nil {
			return err
		}
	}
	switch c.jsonFile {
	case "":
	case "-":
		if err := report.WriteJSON(out, r, meta); err != nil {
			return err
		}
		return canceled
	default:
		if err := writeFile(c.jsonFile, func(w io.Writer) error { return report.WriteJSON(w, r, meta) }); err != nil {
			return err
		}
	}
	if err := report.WriteText(out, r, meta); err != nil {
		return err
	}
	return canceled
}

// imageDirFrom returns the image directory as referenced from an HTML page.
func imageDirFrom(htmlFile, imageDir string) string {
	if htmlFile == "" {
		return filepath.ToSlash(imageDir)
	}
	rel, err := filepath.Rel(filepath.Dir(htmlFile), imageDir)
	if err != nil {
		return filepath.ToSlash(imageDir)
	}
	return filepath.ToSlash(rel)
}

// --- words -----------------------------------------------------------------

type wordsCmd struct {
	workers string
	hash    string
	trace   string
}

func (c *wordsCmd) flags() *flag.FlagSet {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	fs.StringVar(&c.workers, "workers", "", "number of parallel workers")
	fs.StringVar(&c.hash, "hash", "", "shaping hash [gid+pos|gid|pos]")
	fs.StringVar(&c.trace, "trace", "Error", "trace level [Debug|Info|Error]")
	return fs
}

func (c *wordsCmd) arity() int         { return 3 }
func (c *wordsCmd) traceLevel() string { return c.trace }

func (c *wordsCmd) execute(args []string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	conf := config("fontdiff.workers", c.workers, "fontdiff.hash", c.hash)
	opts, err := diff.OptionsFromConfig(conf)
	if err != nil {
		return err
	}
	list, err := os.Open(args[2])
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot open word list %s", args[2])
	}
	defer list.Close()
	a, b, meta, err := loadFonts(ctx, conf, args[0], args[1])
	if err != nil {
		return err
	}
	words, err := diff.TestWords(ctx, list, a, b, nil, opts)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(args[2]), filepath.Ext(args[2]))
	r := diff.Report{Words: map[string][]diff.WordDiff{}}
	if len(words) > 0 {
		r.Words[name] = words
	}
	return report.WriteText(out, r, meta)
}

// --- helpers ---------------------------------------------------------------

// loadFonts resolves both fonts concurrently.
func loadFonts(ctx context.Context, conf schuko.Configuration, nameA, nameB string) (diff.Font, diff.Font, report.Meta, error) {
	promiseA := resources.ResolveFont(ctx, conf, nameA)
	promiseB := resources.ResolveFont(ctx, conf, nameB)
	fa, err := promiseA.Font()
	if err != nil {
		return nil, nil, report.Meta{}, err
	}
	fb, err := promiseB.Font()
	if err != nil {
		return nil, nil, report.Meta{}, err
	}
	meta := report.Meta{FontA: fa.Fontname, FontB: fb.Fontname}
	if fa.Filepath != "internal" {
		meta.PathA = fa.Filepath
	}
	if fb.Filepath != "internal" {
		meta.PathB = fb.Filepath
	}
	tracer().Infof("comparing %s with %s", fa.Fontname, fb.Fontname)
	return diff.Bind(fa), diff.Bind(fb), meta, nil
}

// writeFile writes a file through a buffered writer.
func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", name)
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return core.WrapError(err, core.EINVALID, "cannot write %s", name)
	}
	return f.Close()
}
