package report

import (
	"fmt"
	"html/template"
	"io"
	"path"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/diff"
)

// baseCSS styles the HTML report.
const baseCSS = `
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.2em; margin-top: 2em; border-bottom: 1px solid #ccc; }
table { border-collapse: collapse; }
td, th { padding: 0.2em 0.8em; text-align: left; vertical-align: top; }
tr:nth-child(even) { background: #f4f4f4; }
.sample { font-size: 2em; }
.font-a { color: #1f4e9a; }
.font-b { color: #b3261e; }
.hash { font-family: monospace; font-size: 0.75em; color: #666; }
`

// Stylesheet returns the CSS of the HTML report. If font paths are given,
// @font-face rules make both fonts available to the page.
func Stylesheet(meta Meta) (string, error) {
	sheet, err := parser.Parse(baseCSS)
	if err != nil {
		return "", core.WrapError(err, core.EINTERNAL, "report stylesheet is broken")
	}
	faces := []struct{ family, src, class string }{
		{"fontdiff-a", meta.PathA, ".font-a"},
		{"fontdiff-b", meta.PathB, ".font-b"},
	}
	for _, face := range faces {
		if face.src == "" {
			continue
		}
		sheet.Rules = append(sheet.Rules, &css.Rule{
			Kind: css.AtRule,
			Name: "@font-face",
			Declarations: []*css.Declaration{
				{Property: "font-family", Value: quoteCSS(face.family)},
				{Property: "src", Value: fmt.Sprintf("url(%s)", quoteCSS(fontURL(face.src)))},
			},
		})
		sheet.Rules = append(sheet.Rules, &css.Rule{
			Kind:      css.QualifiedRule,
			Prelude:   face.class,
			Selectors: []string{face.class},
			Declarations: []*css.Declaration{
				{Property: "font-family", Value: quoteCSS(face.family) + ", sans-serif"},
			},
		})
	}
	return sheet.String(), nil
}

// cssEscaper escapes CSS string content. Angle brackets are escaped so the
// stylesheet cannot end its <style> element.
var cssEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "<", `\3C `, ">", `\3E `)

func quoteCSS(s string) string {
	return `"` + cssEscaper.Replace(s) + `"`
}

// fontURL turns a font location into a URL usable from the report page.
func fontURL(src string) string {
	if strings.Contains(src, "://") {
		return src
	}
	if strings.HasPrefix(src, "/") {
		return "file://" + src
	}
	return src
}

var htmlFuncs = template.FuncMap{
	"hashlines": func(hash string) []string {
		lines := strings.Split(hash, "<br>")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
		return lines
	},
	"codepoint": func(r rune) string { return fmt.Sprintf("U+%04X", r) },
	"score":     func(f float64) string { return fmt.Sprintf("%.5f", f) },
	"join":      strings.Join,
	"glyphimg":  GlyphImageName,
	"wordimg":   WordImageName,
	"imgpath":   func(dir, name string) string { return path.Join(dir, name) },
	"dict":      dict,
}

var htmlTemplate = template.Must(template.New("report").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>fontdiff: {{.Meta.FontA}} vs {{.Meta.FontB}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<h1>{{.Meta.FontA}} <span class="hash">vs</span> {{.Meta.FontB}}</h1>
{{if .Empty}}<p id="no-differences">No differences found.</p>{{end}}
{{with .Report.Glyphs.Missing}}{{template "glyphs" dict "ID" "missing" "Title" "Missing glyphs" "Glyphs" .}}{{end}}
{{with .Report.Glyphs.New}}{{template "glyphs" dict "ID" "new" "Title" "New glyphs" "Glyphs" .}}{{end}}
{{with .Report.Glyphs.Modified}}
<h2>Modified glyphs</h2>
<table id="modified">
<tr><th>Font A</th><th>Font B</th><th>Code-point</th><th>Name</th><th>Changed pixels</th>{{if $.Meta.ImageDir}}<th>Rendering</th>{{end}}</tr>
{{range .}}<tr class="glyph-diff">
<td class="sample font-a">{{.String}}</td><td class="sample font-b">{{.String}}</td>
<td>{{codepoint .Unicode}}</td><td>{{.Name}}</td><td>{{score .ChangedPixels}}</td>
{{if $.Meta.ImageDir}}<td><img src="{{imgpath $.Meta.ImageDir (glyphimg .Unicode)}}" alt="{{.String}}"></td>{{end}}
</tr>
{{end}}</table>
{{end}}
{{range $script := .Scripts}}
<h2>Modified words, script {{$script}}</h2>
<table class="words" data-script="{{$script}}">
<tr><th>Font A</th><th>Font B</th><th>Features</th>{{if $.Meta.ImageDir}}<th>Rendering</th>{{end}}</tr>
{{range $i, $w := index $.Report.Words $script}}<tr class="word-diff">
<td class="sample font-a" lang="{{$w.Lang}}">{{$w.String}}<div class="hash">{{range hashlines $w.HashA}}{{.}}<br>{{end}}</div></td>
<td class="sample font-b" lang="{{$w.Lang}}">{{$w.String}}<div class="hash">{{range hashlines $w.HashB}}{{.}}<br>{{end}}</div></td>
<td>{{join $w.Features " "}}</td>
{{if $.Meta.ImageDir}}<td><img src="{{imgpath $.Meta.ImageDir (wordimg $script $i)}}" alt="{{$w.String}}"></td>{{end}}
</tr>
{{end}}</table>
{{end}}
</body>
</html>
{{define "glyphs"}}
<h2>{{.Title}}</h2>
<table id="{{.ID}}">
<tr><th>Char</th><th>Code-point</th><th>Name</th></tr>
{{range .Glyphs}}<tr class="glyph"><td class="sample">{{.String}}</td><td>{{codepoint .Unicode}}</td><td>{{.Name}}</td></tr>
{{end}}</table>
{{end}}
`))

// dict builds a map from alternating keys and values, for passing more than
// one value to a sub-template.
func dict(kv ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}

// WriteHTML writes a report as an HTML page.
func WriteHTML(w io.Writer, r diff.Report, meta Meta) error {
	style, err := Stylesheet(meta)
	if err != nil {
		return err
	}
	data := struct {
		Meta    Meta
		CSS     template.CSS
		Report  diff.Report
		Scripts []string
		Empty   bool
	}{
		Meta:    meta,
		CSS:     template.CSS(style),
		Report:  r,
		Scripts: Scripts(r),
		Empty:   r.Empty(),
	}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write HTML report")
	}
	tracer().Debugf("wrote HTML report for %s vs %s", meta.FontA, meta.FontB)
	return nil
}
