package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko"
)

// GoogleFontsPrefix marks font names to be resolved with the Google Fonts
// service, as in "gf:Roboto" or "gf:Roboto:700italic".
const GoogleFontsPrefix = "gf:"

// GoogleFontInfo describes a font family of the Google webfont service.
type GoogleFontInfo struct {
	Family   string            `json:"family"`
	Version  string            `json:"version"`
	Variants []string          `json:"variants"`
	Subsets  []string          `json:"subsets"`
	Files    map[string]string `json:"files"`
}

type googleFontsList struct {
	Items []GoogleFontInfo `json:"items"`
}

var googleFontsAPI = `https://www.googleapis.com/webfonts/v1/webfonts`

// directories by API endpoint; failed requests are not remembered
var googleFontsDirs = struct {
	sync.Mutex
	dirs map[string]*googleFontsList
}{dirs: map[string]*googleFontsList{}}

func googleFontsDirectory(ctx context.Context, conf schuko.Configuration) (*googleFontsList, error) {
	api, apikey := googleFontsAPI, ""
	if conf != nil {
		if a := conf.GetString("google-fonts-api"); a != "" {
			api = a
		}
		apikey = conf.GetString("google-api-key")
	}
	if apikey == "" {
		apikey = os.Getenv("GOOGLE_API_KEY")
	}
	if apikey == "" {
		return nil, core.Error(core.EMISSING,
			`Google Fonts API-key must be set in configuration or as GOOGLE_API_KEY in environment;
      please refer to https://developers.google.com/fonts/docs/developer_api`)
	}
	googleFontsDirs.Lock()
	defer googleFontsDirs.Unlock()
	if dir, ok := googleFontsDirs.dirs[api]; ok {
		return dir, nil
	}
	u, err := url.Parse(api)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "malformed Google Fonts API URL %s", api)
	}
	u.RawQuery = url.Values{"sort": []string{"alpha"}, "key": []string{apikey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot request Google fonts directory")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		tracer().Errorf("Google Fonts API request not OK: %s", err.Error())
		return nil, core.WrapError(err, core.EMISSING, "could not get fonts-directory from Google font service")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		tracer().Errorf("Google Fonts API request not OK: %v", resp.Status)
		return nil, core.Error(core.EMISSING, "could not get fonts-directory from Google font service: %s", resp.Status)
	}
	dir := &googleFontsList{}
	if err := json.NewDecoder(resp.Body).Decode(dir); err != nil {
		return nil, core.WrapError(err, core.EPARSE, "could not decode fonts-list from Google font service")
	}
	tracer().Infof("%d fonts in Google fonts directory", len(dir.Items))
	googleFontsDirs.dirs[api] = dir
	return dir, nil
}

// splitGoogleFontName splits "gf:Family:variant" into family and variant,
// with variant defaulting to "regular".
func splitGoogleFontName(name string) (family, variant string) {
	family = strings.TrimPrefix(name, GoogleFontsPrefix)
	variant = "regular"
	if i := strings.LastIndexByte(family, ':'); i >= 0 {
		family, variant = family[:i], strings.ToLower(family[i+1:])
	}
	return strings.TrimSpace(family), variant
}

// findGoogleFont returns the download URL of a font family variant.
func findGoogleFont(dir *googleFontsList, family, variant string) (string, error) {
	for _, info := range dir.Items {
		if !strings.EqualFold(info.Family, family) {
			continue
		}
		if u, ok := info.Files[variant]; ok {
			return u, nil
		}
		return "", core.Error(core.EMISSING, "Google font %s has no variant %s (have %v)",
			info.Family, variant, info.Variants)
	}
	return "", FontNotFound(GoogleFontsPrefix + family)
}

// cachedGoogleFont resolves a Google font name to a font file in the cache
// directory, downloading it if necessary.
func cachedGoogleFont(ctx context.Context, conf schuko.Configuration, name string) (string, error) {
	family, variant := splitGoogleFontName(name)
	dir, err := googleFontsDirectory(ctx, conf)
	if err != nil {
		return "", err
	}
	fonturl, err := findGoogleFont(dir, family, variant)
	if err != nil {
		return "", err
	}
	return cachedFontFile(ctx, conf, fonturl)
}
