package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const fcListOutput = `
/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf: DejaVu Sans:style=Book
/usr/share/fonts/truetype/dejavu/DejaVuSans-Oblique.ttf: DejaVu Sans:style=Oblique
/usr/share/fonts/truetype/dejavu/DejaVuSansCondensed.ttf: DejaVu Sans,DejaVu Sans Condensed:style=Condensed,Book
/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc: Noto Sans CJK JP:style=Regular
/usr/share/fonts/truetype/liberation/LiberationSerif-BoldItalic.ttf: Liberation Serif:style=Bold Italic
/System/Library/Fonts/.SFNS.ttf: .SF NS:style=Regular
broken line
`

func TestParseFontConfigList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.resources")
	defer teardown()
	//
	entries, err := parseFontConfigList(strings.NewReader(fcListOutput))
	require.NoError(t, err)
	require.Len(t, entries, 6, "collections and malformed lines are skipped")
	assert.Equal(t, "bold", entries[0].Variant)
	assert.Equal(t, "regular", entries[1].Variant)
	assert.Equal(t, "italic", entries[2].Variant)
	assert.Equal(t, []string{"DejaVu Sans", "DejaVu Sans Condensed"}, entries[3].Families)
	assert.Equal(t, "bolditalic", entries[4].Variant)
	assert.Equal(t, []string{"SF NS"}, entries[5].Families)
}

func TestMatchFontConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.resources")
	defer teardown()
	//
	entries, err := parseFontConfigList(strings.NewReader(fcListOutput))
	require.NoError(t, err)
	for name, expected := range map[string]string{
		"DejaVu Sans":                  "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"dejavusans":                   "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"DejaVu Sans Regular":          "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"DejaVu Sans Bold":             "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		"DejaVu Sans Italic":           "/usr/share/fonts/truetype/dejavu/DejaVuSans-Oblique.ttf",
		"Liberation Serif Bold Italic": "/usr/share/fonts/truetype/liberation/LiberationSerif-BoldItalic.ttf",
	} {
		e, ok := matchFontConfig(entries, name)
		if assert.True(t, ok, "expected match for %q", name) {
			assert.Equal(t, expected, e.Path, name)
		}
	}
	_, ok := matchFontConfig(entries, "Noto Sans CJK JP")
	assert.False(t, ok)
	_, ok = matchFontConfig(entries, "Liberation Serif")
	assert.False(t, ok, "no regular variant listed")
}

func TestResolveFontConfigFont(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a shell script as fc-list")
	}
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.resources")
	defer teardown()
	//
	dir := t.TempDir()
	fontfile := filepath.Join(dir, "FontdiffTestSans.ttf")
	require.NoError(t, os.WriteFile(fontfile, goregular.TTF, 0644))
	fclist := filepath.Join(dir, "fc-list")
	script := fmt.Sprintf("#!/bin/sh\necho '%s: Fontdiff Test Sans:style=Regular'\n", fontfile)
	require.NoError(t, os.WriteFile(fclist, []byte(script), 0755))
	conf := testconfig.Conf{
		"cache-dir":  filepath.Join(dir, "cache"),
		"fontconfig": fclist,
	}
	f, err := ResolveFont(context.Background(), conf, "Fontdiff Test Sans").Font()
	require.NoError(t, err)
	assert.Equal(t, "Go Regular", f.Fontname)
	assert.Equal(t, fontfile, f.Filepath)
	_, err = os.Stat(filepath.Join(dir, "cache", "fontconfig", "fontlist.txt"))
	assert.NoError(t, err, "fc-list output is cached")
}

func TestFontConfigBinaryMustBeAbsolute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontdiff.resources")
	defer teardown()
	//
	_, err := findFontConfigBinary(testconfig.Conf{"fontconfig": "fc-list"})
	assert.Error(t, err)
}
