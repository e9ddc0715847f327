package fontregistry

import (
	"sort"
	"sync"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/core/font"
	"github.com/npillmayer/schuko/tracing"
)

// Registry is a type for holding loaded fonts.
type Registry struct {
	sync.Mutex
	fonts map[string]*entry
}

type entry struct {
	ready chan struct{} // closed when loading has finished
	font  *font.ScalableFont
	err   error
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

func NewRegistry() *Registry {
	return &Registry{fonts: make(map[string]*entry)}
}

// StoreFont pushes a font into the registry if it isn't contained yet.
// If key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(key string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[key]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, key)
		e := &entry{ready: make(chan struct{}), font: f}
		close(e.ready)
		fr.fonts[key] = e
	}
}

// Font returns the font registered under key, if any. If the font is
// currently being loaded, Font waits for it.
func (fr *Registry) Font(key string) (*font.ScalableFont, bool) {
	fr.Lock()
	e, ok := fr.fonts[key]
	fr.Unlock()
	if !ok {
		return nil, false
	}
	<-e.ready
	return e.font, e.err == nil
}

// LoadFont returns the font registered under key. If there is none, load is
// called to produce it. Concurrent calls for the same key call load once.
// Failed loads are not remembered.
func (fr *Registry) LoadFont(key string, load func() (*font.ScalableFont, error)) (*font.ScalableFont, error) {
	fr.Lock()
	if e, ok := fr.fonts[key]; ok {
		fr.Unlock()
		<-e.ready
		tracer().Debugf("registry found font %s", key)
		return e.font, e.err
	}
	e := &entry{ready: make(chan struct{})}
	fr.fonts[key] = e
	fr.Unlock()
	e.font, e.err = safeLoad(key, load)
	if e.err == nil && e.font == nil {
		e.err = core.Error(core.EMISSING, "no font loaded for %s", key)
	}
	if e.err != nil {
		fr.Lock()
		delete(fr.fonts, key)
		fr.Unlock()
		e.font = nil
	}
	close(e.ready)
	return e.font, e.err
}

// safeLoad calls load and turns a panic into an error, so waiting callers
// are released.
func safeLoad(key string, load func() (*font.ScalableFont, error)) (f *font.ScalableFont, err error) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("loading font %s panicked: %v", key, r)
			f, err = nil, core.Error(core.EINTERNAL, "loading font %s failed: %v", key, r)
		}
	}()
	return load()
}

// Keys returns the keys of all fonts in the registry, in sorted order.
func (fr *Registry) Keys() []string {
	fr.Lock()
	entries := make(map[string]*entry, len(fr.fonts))
	for k, e := range fr.fonts {
		entries[k] = e
	}
	fr.Unlock()
	keys := make([]string, 0, len(entries))
	for k, e := range entries {
		<-e.ready
		if e.err == nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// LogFontList is a helper function to dump the list of known fonts
// to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range fr.Keys() {
		f, _ := fr.Font(k)
		tracer().Infof("font [%s] = %v", k, f.Fontname)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}
