package report

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/diff"
	"github.com/npillmayer/fontdiff/engine/parallel"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/fontdiff/engine/shaping"
)

const panelGap = 8

var diffInk = color.NRGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff}

// GlyphImageName is the file name of the diff image for a modified glyph.
func GlyphImageName(r rune) string {
	return fmt.Sprintf("glyph-%04X.png", r)
}

// WordImageName is the file name of the diff image for the i-th modified
// word of a script.
func WordImageName(script string, i int) string {
	return fmt.Sprintf("word-%s-%04d.png", strings.ToLower(script), i)
}

type imageJob struct {
	name   string
	text   string
	params shaping.Params
}

// WriteDiffImages renders every modified glyph and word of a report with
// both fonts and writes an image into dir, showing font A, font B and the
// differing pixels next to each other. File names are given by
// GlyphImageName and WordImageName.
//
// Items which fail to render are left out. The number of images written is
// returned.
func WriteDiffImages(ctx context.Context, dir string, r diff.Report, a, b diff.Font, size float64, workers int) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, core.WrapError(err, core.EINVALID, "cannot create image directory %s", dir)
	}
	var jobs []imageJob
	for _, g := range r.Glyphs.Modified {
		jobs = append(jobs, imageJob{name: GlyphImageName(g.Unicode), text: g.String})
	}
	for _, script := range Scripts(r) {
		for i, wd := range r.Words[script] {
			jobs = append(jobs, imageJob{name: WordImageName(script, i), text: wd.String, params: wordParams(script, wd)})
		}
	}
	if size <= 0 {
		size = render.DefaultSize
	}
	written, _, err := parallel.Map(ctx, workers, jobs, func(_ context.Context, job imageJob) bool {
		opts := render.Options{Size: size, Margin: 2, Params: job.params}
		img, err := sideBySide(a, b, job.text, opts)
		if err != nil {
			tracer().Infof("no diff image for %q: %v", job.text, err)
			return false
		}
		if err = imaging.Save(img, filepath.Join(dir, job.name)); err != nil {
			tracer().Errorf("cannot write diff image %s: %v", job.name, err)
			return false
		}
		return true
	})
	n := 0
	for _, ok := range written {
		if ok {
			n++
		}
	}
	tracer().Debugf("wrote %d of %d diff images to %s", n, len(jobs), dir)
	if err != nil {
		return n, core.WrapError(err, core.ECANCELED, "writing diff images canceled")
	}
	return n, nil
}

// wordParams returns the shaping parameters a word diff has been scored
// with. Word diffs read back from JSON do not carry them; these are drawn
// with the script of their word list.
func wordParams(script string, wd diff.WordDiff) shaping.Params {
	if wd.OTScript == "" {
		return shaping.Params{Script: strings.ToLower(script), Language: "dflt", Features: wd.Features}
	}
	return shaping.Params{Script: wd.OTScript, Language: wd.OTLang, Features: wd.Features}
}

// sideBySide renders text with both fonts and composes a single image of
// three panels: A, B and the pixels which differ between A and B.
func sideBySide(a, b diff.Font, text string, opts render.Options) (*image.NRGBA, error) {
	ia, err := a.Render(text, opts)
	if err != nil {
		return nil, err
	}
	ib, err := b.Render(text, opts)
	if err != nil {
		return nil, err
	}
	return compose(ia, ib), nil
}

func compose(ia, ib image.Image) *image.NRGBA {
	ba, bb := ia.Bounds(), ib.Bounds()
	w := min(ba.Dx(), bb.Dx())
	h := min(ba.Dy(), bb.Dy())
	delta := imaging.New(w, h, color.White)
	ca := imaging.Crop(ia, image.Rect(ba.Min.X, ba.Min.Y, ba.Min.X+w, ba.Min.Y+h))
	cb := imaging.Crop(ib, image.Rect(bb.Min.X, bb.Min.Y, bb.Min.X+w, bb.Min.Y+h))
	for i := 0; i+3 < len(ca.Pix); i += 4 {
		if ca.Pix[i] != cb.Pix[i] || ca.Pix[i+1] != cb.Pix[i+1] || ca.Pix[i+2] != cb.Pix[i+2] || ca.Pix[i+3] != cb.Pix[i+3] {
			delta.Pix[i], delta.Pix[i+1], delta.Pix[i+2], delta.Pix[i+3] = diffInk.R, diffInk.G, diffInk.B, diffInk.A
		}
	}
	width := ba.Dx() + bb.Dx() + w + 2*panelGap
	height := max(ba.Dy(), bb.Dy())
	dst := imaging.New(width, height, color.White)
	dst = imaging.Paste(dst, ia, image.Pt(0, 0))
	dst = imaging.Paste(dst, ib, image.Pt(ba.Dx()+panelGap, 0))
	return imaging.Paste(dst, delta, image.Pt(ba.Dx()+bb.Dx()+2*panelGap, 0))
}
