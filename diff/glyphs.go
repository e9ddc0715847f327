package diff

import (
	"context"
	"sort"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/fontdiff/core/unidata"
	"github.com/npillmayer/fontdiff/engine/parallel"
	"github.com/npillmayer/fontdiff/engine/pixdiff"
	"github.com/npillmayer/fontdiff/engine/render"
)

// GlyphThreshold is the pixel difference score a shared character must
// exceed to be reported as modified.
const GlyphThreshold = 0.0005

// TestFontGlyphs compares the character sets of two fonts. Characters
// mapped by one font only are reported as missing (font A only) or new
// (font B only). Characters mapped by both fonts are rendered with each and
// reported as modified if their pixel difference score exceeds
// GlyphThreshold.
//
// If ctx is canceled, glyphs not yet rendered are not reported as modified
// and ctx's error is returned.
func TestFontGlyphs(ctx context.Context, a, b Font, opts Options) (GlyphItems, error) {
	cmapA, cmapB := runeSet(a.Cmap()), runeSet(b.Cmap())
	items := GlyphItems{Missing: []Glyph{}, New: []Glyph{}, Modified: []GlyphDiff{}}
	var shared []rune
	for _, v := range cmapA.Values() {
		r := v.(rune)
		if cmapB.Contains(r) {
			shared = append(shared, r)
		} else {
			items.Missing = append(items.Missing, newGlyph(r))
		}
	}
	for _, v := range cmapB.Values() {
		if r := v.(rune); !cmapA.Contains(r) {
			items.New = append(items.New, newGlyph(r))
		}
	}
	sortGlyphs(items.Missing)
	sortGlyphs(items.New)
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
	tracer().Infof("%s vs %s: %d missing, %d new, %d shared glyphs", a.Name(), b.Name(),
		len(items.Missing), len(items.New), len(shared))
	//
	ropts := render.Options{Size: opts.Size}
	results, _, err := parallel.Map(ctx, opts.Workers, shared, func(_ context.Context, r rune) pixdiff.Result {
		return pixdiff.Diff(a, b, string(r), ropts)
	})
	for i, res := range results {
		if res.Degraded() {
			tracer().Debugf("glyph %U: %v", shared[i], res.Err)
			continue
		}
		if score := res.Score(); score > GlyphThreshold {
			g := newGlyph(shared[i])
			items.Modified = append(items.Modified, GlyphDiff{
				String:        g.String,
				Name:          g.Name,
				Unicode:       g.Unicode,
				ChangedPixels: score,
			})
		}
	}
	sort.SliceStable(items.Modified, func(i, j int) bool {
		return items.Modified[i].ChangedPixels > items.Modified[j].ChangedPixels
	})
	return items, err
}

func newGlyph(r rune) Glyph {
	return Glyph{String: string(r), Name: unidata.NameOrEmpty(r), Unicode: r}
}

func sortGlyphs(glyphs []Glyph) {
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].String < glyphs[j].String })
}

func runeSet(runes []rune) *hashset.Set {
	set := hashset.New()
	for _, r := range runes {
		set.Add(r)
	}
	return set
}
