package resources

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/fontdiff/core/font/fontregistry"
	"github.com/npillmayer/schuko"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// packagedFonts are the Go fonts, addressable by their package names.
var packagedFonts = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
	"gosmallcaps":  gosmallcaps.TTF,
}

// FontNotFound returns an application error for a missing font.
func FontNotFound(name string) error {
	return core.Error(core.EMISSING, "font not found: %s", name)
}

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise is returned by ResolveFont. Calling Font blocks until the
// font has been loaded.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

// ResolveFont resolves a font by name. Names are tried as
//
//   - http(s) URL, which will be downloaded to the cache directory
//   - "gf:<family>[:<variant>]", a font of the Google Fonts service
//   - path of a font file
//   - name of a packaged Go font (e.g. "goregular")
//   - name of a font installed on the system, found by file name or
//     with fontconfig
//
// conf may be nil.
func ResolveFont(ctx context.Context, conf schuko.Configuration, name string) FontPromise {
	ch := make(chan fontPlusErr, 1)
	go func(ch chan<- fontPlusErr) {
		f, err := resolveFont(ctx, conf, name)
		ch <- fontPlusErr{font: f, err: err}
		close(ch)
	}(ch)
	return fontLoader{
		await: func(c context.Context) (*font.ScalableFont, error) {
			select {
			case <-c.Done():
				return nil, c.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

func resolveFont(ctx context.Context, conf schuko.Configuration, name string) (*font.ScalableFont, error) {
	if name == "" {
		return nil, core.Error(core.EINVALID, "empty font name")
	}
	registry := fontregistry.GlobalRegistry()
	if isURL(name) {
		return registry.LoadFont(name, func() (*font.ScalableFont, error) {
			fpath, err := cachedFontFile(ctx, conf, name)
			if err != nil {
				return nil, err
			}
			return font.LoadOpenTypeFont(fpath)
		})
	}
	if strings.HasPrefix(name, GoogleFontsPrefix) {
		family, variant := splitGoogleFontName(name)
		return registry.LoadFont(GoogleFontsPrefix+font2key(family)+":"+variant, func() (*font.ScalableFont, error) {
			fpath, err := cachedGoogleFont(ctx, conf, name)
			if err != nil {
				return nil, err
			}
			return font.LoadOpenTypeFont(fpath)
		})
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		tracer().Debugf("%s is a font file", name)
		return registry.LoadFont(absPath(name), func() (*font.ScalableFont, error) {
			return font.LoadOpenTypeFont(name)
		})
	}
	normalized := font.NormalizeFontname(name)
	if bytez, ok := packagedFonts[normalized]; ok {
		tracer().Debugf("%s is a packaged font", name)
		return registry.LoadFont("packaged:"+normalized, func() (*font.ScalableFont, error) {
			f, err := font.ParseOpenTypeFont(bytez)
			if err != nil {
				return nil, err
			}
			f.Filepath = "internal"
			return f, nil
		})
	}
	fpath, err := findfont.Find(name) // try to find as system font
	if err == nil && fpath != "" {
		tracer().Debugf("%s is a system font: %s", name, fpath)
		return registry.LoadFont(absPath(fpath), func() (*font.ScalableFont, error) {
			return font.LoadOpenTypeFont(fpath)
		})
	}
	if fpath, ok := findFontConfigFont(conf, name); ok {
		tracer().Debugf("%s is a fontconfig font: %s", name, fpath)
		return registry.LoadFont(absPath(fpath), func() (*font.ScalableFont, error) {
			return font.LoadOpenTypeFont(fpath)
		})
	}
	return nil, FontNotFound(name)
}

func absPath(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return name
}

func isURL(name string) bool {
	return strings.HasPrefix(name, "https://") || strings.HasPrefix(name, "http://")
}

// cachedFontFile downloads a font file into the cache directory, if it is not
// already present there.
func cachedFontFile(ctx context.Context, conf schuko.Configuration, rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "malformed font URL %s", rawurl)
	}
	base := path.Base(u.Path)
	if base == "" || base == "/" || base == "." {
		return "", core.Error(core.EINVALID, "font URL %s does not name a file", rawurl)
	}
	cachedir, err := CacheDirPath(conf, "fonts", u.Host)
	if err != nil {
		return "", err
	}
	fpath := filepath.Join(cachedir, base)
	if _, err := os.Stat(fpath); err == nil {
		tracer().Debugf("font %s found in cache", base)
		return fpath, nil
	}
	tracer().Infof("downloading font %s", rawurl)
	if err := DownloadCachedFile(ctx, fpath, rawurl); err != nil {
		return "", err
	}
	return fpath, nil
}
