package resources

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/npillmayer/fontdiff/core"
)

//go:embed packaged/*
var packaged embed.FS

// WordListSource locates the word list for a script. Scripts are given as
// ISO 15924 codes.
type WordListSource interface {
	WordList(script string) (io.ReadCloser, error)
}

// NotFound returns an application error for a missing word list.
func NotFound(script string) error {
	return core.WrapError(fs.ErrNotExist, core.EMISSING, "no word list for script %s", script)
}

// IsNotFound is true if err signals a missing resource.
func IsNotFound(err error) bool {
	return core.Code(err) == core.EMISSING || errors.Is(err, fs.ErrNotExist)
}

type fsWordLists struct {
	fsys fs.FS
	dir  string
}

func (wl fsWordLists) WordList(script string) (io.ReadCloser, error) {
	if script == "" || strings.ContainsAny(script, `/\.`) {
		return nil, core.Error(core.EINVALID, "illegal script name %q", script)
	}
	name := script + ".txt"
	if wl.dir != "" {
		name = wl.dir + "/" + name
	}
	f, err := wl.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound(script)
		}
		return nil, err
	}
	return f, nil
}

// PackagedWordLists returns the word lists compiled into fontdiff.
func PackagedWordLists() WordListSource {
	return fsWordLists{fsys: packaged, dir: "packaged/wordlists"}
}

// DirWordLists returns word lists located in a directory of the file system.
func DirWordLists(dir string) WordListSource {
	return fsWordLists{fsys: os.DirFS(filepath.Clean(dir))}
}

// Chain searches a sequence of word-list sources in order, returning the
// first word list found.
type Chain []WordListSource

// WordList implements WordListSource.
func (ch Chain) WordList(script string) (io.ReadCloser, error) {
	for _, src := range ch {
		if src == nil {
			continue
		}
		rc, err := src.WordList(script)
		if err == nil {
			return rc, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, NotFound(script)
}

// DefaultWordLists returns the packaged word lists, preceded by the word lists
// in dir, if dir is not empty.
func DefaultWordLists(dir string) WordListSource {
	if dir == "" {
		return PackagedWordLists()
	}
	tracer().Infof("searching word lists in %s before packaged ones", dir)
	return Chain{DirWordLists(dir), PackagedWordLists()}
}

// PackagedScripts lists the scripts for which word lists are packaged.
func PackagedScripts() []string {
	entries, err := packaged.ReadDir("packaged/wordlists")
	if err != nil {
		return nil
	}
	var scripts []string
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, ".txt") {
			scripts = append(scripts, strings.TrimSuffix(name, ".txt"))
		}
	}
	sort.Strings(scripts)
	return scripts
}
