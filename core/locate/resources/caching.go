package resources

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko"
)

// DownloadCachedFile will download a url to a local file (usually located in the
// user's cache directory). A partially downloaded file is removed.
func DownloadCachedFile(ctx context.Context, filepath string, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot download %s", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return core.WrapError(err, core.EMISSING, "cannot download %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Error(core.EMISSING, "download of %s failed: %s", url, resp.Status)
	}
	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(filepath)
		return err
	}
	return out.Close()
}

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from configuration key
// `cache-dir`, or from `os.UserCacheDir()` plus an application specific key,
// taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	cachedir := ""
	if conf != nil {
		cachedir = conf.GetString("cache-dir")
	}
	if cachedir == "" {
		appkey := "fontdiff"
		if conf != nil && conf.GetString("app-key") != "" {
			appkey = conf.GetString("app-key")
		}
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		cachedir = filepath.Join(base, appkey)
	}
	subs := path.Join(subfolders...)
	cachedir = filepath.Join(cachedir, filepath.FromSlash(subs))
	tracer().Infof("caching in %s", cachedir)
	_, err := os.Stat(cachedir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(cachedir, 0755)
		if err != nil {
			return "", err
		}
	}
	return cachedir, nil
}
