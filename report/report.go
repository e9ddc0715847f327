/*
Package report presents the result of a font comparison.

Reports are available as plain text tables for terminals, as JSON for
further processing and as an HTML page, which shows differing words in both
fonts side by side. For glyphs and words which render differently, images
may be written to a directory and referenced from the HTML page.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/diff"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontdiff.report'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.report")
}

// Meta describes the fonts a report has been created for.
type Meta struct {
	FontA, FontB string // font names
	PathA, PathB string // font file paths or URLs, for HTML @font-face rules
	ImageDir     string // directory of diff images, relative to the HTML page
}

// Scripts returns the scripts of a report in sorted order.
func Scripts(r diff.Report) []string {
	scripts := make([]string, 0, len(r.Words))
	for s := range r.Words {
		scripts = append(scripts, s)
	}
	sort.Strings(scripts)
	return scripts
}

// --- Text ------------------------------------------------------------------

// WriteText writes a report as text tables.
func WriteText(w io.Writer, r diff.Report, meta Meta) error {
	fmt.Fprintf(w, "%s\n\n", pterm.Bold.Sprintf("%s  ⟷  %s", meta.FontA, meta.FontB))
	if r.Empty() {
		_, err := fmt.Fprintln(w, "No differences found.")
		return err
	}
	sections := []struct {
		title  string
		glyphs []diff.Glyph
	}{
		{fmt.Sprintf("Missing glyphs (in %s only)", meta.FontA), r.Glyphs.Missing},
		{fmt.Sprintf("New glyphs (in %s only)", meta.FontB), r.Glyphs.New},
	}
	for _, sect := range sections {
		if len(sect.glyphs) == 0 {
			continue
		}
		data := pterm.TableData{{"Char", "Code-point", "Name"}}
		for _, g := range sect.glyphs {
			data = append(data, []string{printable(g.String), fmt.Sprintf("%U", g.Unicode), g.Name})
		}
		if err := writeTable(w, sect.title, data); err != nil {
			return err
		}
	}
	if len(r.Glyphs.Modified) > 0 {
		data := pterm.TableData{{"Char", "Code-point", "Name", "Changed pixels"}}
		for _, g := range r.Glyphs.Modified {
			data = append(data, []string{printable(g.String), fmt.Sprintf("%U", g.Unicode), g.Name,
				fmt.Sprintf("%.5f", g.ChangedPixels)})
		}
		if err := writeTable(w, "Modified glyphs", data); err != nil {
			return err
		}
	}
	for _, script := range Scripts(r) {
		data := pterm.TableData{{"Word", "Features", "Lang"}}
		for _, wd := range r.Words[script] {
			data = append(data, []string{wd.String, strings.Join(wd.Features, " "), wd.Lang})
		}
		if err := writeTable(w, "Modified words, script "+script, data); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, title string, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot format table %q", title)
	}
	_, err = fmt.Fprintf(w, "%s (%d)\n%s\n\n", pterm.Bold.Sprint(title), len(data)-1, table)
	return err
}

// printable replaces characters which would disturb a table layout.
func printable(s string) string {
	for _, r := range s {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return "�"
		}
	}
	return s
}

// --- JSON ------------------------------------------------------------------

// jsonReport is the JSON layout of a report.
type jsonReport struct {
	FontA  string                     `json:"font_a"`
	FontB  string                     `json:"font_b"`
	Glyphs diff.GlyphItems            `json:"glyphs"`
	Words  map[string][]diff.WordDiff `json:"words"`
}

// WriteJSON writes a report as indented JSON.
func WriteJSON(w io.Writer, r diff.Report, meta Meta) error {
	jr := jsonReport{FontA: meta.FontA, FontB: meta.FontB, Glyphs: r.Glyphs, Words: r.Words}
	if jr.Words == nil {
		jr.Words = map[string][]diff.WordDiff{}
	}
	if jr.Glyphs.Missing == nil {
		jr.Glyphs.Missing = []diff.Glyph{}
	}
	if jr.Glyphs.New == nil {
		jr.Glyphs.New = []diff.Glyph{}
	}
	if jr.Glyphs.Modified == nil {
		jr.Glyphs.Modified = []diff.GlyphDiff{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jr); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot encode report")
	}
	return nil
}
