package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko"
)

// fcEntry is a font file listed by fontconfig.
type fcEntry struct {
	Families []string
	Path     string
	Variant  string
}

// fontconfig lists, by location of the cached fc-list output
var fcLists = struct {
	sync.Mutex
	lists map[string][]fcEntry
}{lists: map[string][]fcEntry{}}

func findFontConfigBinary(conf schuko.Configuration) (string, error) {
	fcpath := ""
	if conf != nil {
		fcpath = conf.GetString("fontconfig")
	}
	if fcpath == "" {
		p, err := exec.LookPath("fc-list")
		if err != nil {
			return "", core.WrapError(err, core.EMISSING, "fontconfig not configured and fc-list not found")
		}
		fcpath = p
	}
	if !filepath.IsAbs(fcpath) {
		return "", core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		return "", core.Error(core.EINVALID, "fontconfig configuration points to an invalid binary: %s", fcpath)
	}
	return fcpath, nil
}

// cacheFontConfigList writes the output of fc-list to the cache directory,
// once.
func cacheFontConfigList(conf schuko.Configuration) (string, error) {
	cachedir, err := CacheDirPath(conf, "fontconfig")
	if err != nil {
		return "", err
	}
	fcListFilename := filepath.Join(cachedir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil {
		return fcListFilename, nil
	}
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return "", err
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "fontconfig output file cannot be created: %s", fcListFilename)
	}
	fccmd := exec.Command(fcpath)
	fccmd.Stdout = fontlistFile
	err = fccmd.Run()
	if cerr := fontlistFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fcListFilename)
		return "", core.WrapError(err, core.EINVALID, "cannot run fontconfig binary %s", fcpath)
	}
	return fcListFilename, nil
}

func loadFontConfigList(conf schuko.Configuration) ([]fcEntry, error) {
	fclist, err := cacheFontConfigList(conf)
	if err != nil {
		return nil, err
	}
	fcLists.Lock()
	defer fcLists.Unlock()
	if entries, ok := fcLists.lists[fclist]; ok {
		return entries, nil
	}
	fc, err := os.Open(fclist)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "fontconfig font list cannot be opened: %s", fclist)
	}
	defer fc.Close()
	entries, err := parseFontConfigList(fc)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
	}
	tracer().Infof("loaded fontconfig list with %d fonts", len(entries))
	fcLists.lists[fclist] = entries
	return entries, nil
}

// parseFontConfigList reads lines of fc-list output, which look like
//
//	/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
func parseFontConfigList(r io.Reader) ([]fcEntry, error) {
	var entries []fcEntry
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		entry := fcEntry{Path: fontpath, Variant: fcVariant(fields[2])}
		for _, family := range strings.Split(fields[1], ",") {
			family = strings.TrimPrefix(strings.TrimSpace(family), ".")
			if family != "" {
				entry.Families = append(entry.Families, family)
			}
		}
		entries = append(entries, entry)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: font collections not supported", ttc)
	}
	return entries, scanner.Err()
}

func fcVariant(style string) string {
	style = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(style), "style="))
	if i := strings.IndexByte(style, ','); i >= 0 {
		style = style[:i]
	}
	switch {
	case strings.Contains(style, "bold") && strings.Contains(style, "italic"):
		return "bolditalic"
	case strings.Contains(style, "italic"), strings.Contains(style, "oblique"):
		return "italic"
	case strings.Contains(style, "bold"), strings.Contains(style, "black"):
		return "bold"
	case strings.Contains(style, "light"):
		return "light"
	}
	return "regular"
}

// matchFontConfig finds a font for a name like "DejaVu Sans" or
// "DejaVu Sans Bold Italic".
func matchFontConfig(entries []fcEntry, name string) (fcEntry, bool) {
	words := strings.Fields(strings.ToLower(name))
	variant := ""
	for len(words) > 1 {
		last := words[len(words)-1]
		if last != "bold" && last != "italic" && last != "light" && last != "regular" {
			break
		}
		if last != "regular" {
			variant = last + variant
		}
		words = words[:len(words)-1]
	}
	if variant == "italicbold" {
		variant = "bolditalic"
	}
	if variant == "" {
		variant = "regular"
	}
	family := font2key(strings.Join(words, " "))
	for _, e := range entries {
		if e.Variant != variant {
			continue
		}
		for _, f := range e.Families {
			if font2key(f) == family {
				return e, true
			}
		}
	}
	return fcEntry{}, false
}

func font2key(family string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(family))
}

// findFontConfigFont searches for a locally installed font using the fontconfig
// system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// The location of the 'fc-list' binary may be configured with key 'fontconfig',
// otherwise it is searched in $PATH.
//
// The output of fc-list is copied to the cache directory once. Subsequent calls
// use the cached entries.
//
// We call the binary instead of using the C library because of possible version
// issues. If fontconfig is not available, findFontConfigFont silently returns
// false.
func findFontConfigFont(conf schuko.Configuration, name string) (string, bool) {
	entries, err := loadFontConfigList(conf)
	if err != nil {
		tracer().Debugf("fontconfig: %v", err)
		return "", false
	}
	e, ok := matchFontConfig(entries, name)
	if ok {
		tracer().Debugf("fontconfig match for %s: %s", name, e.Path)
	}
	return e.Path, ok
}
