/*
Package pixdiff confirms shaping differences by comparing rendered pixels.

A text is rendered with two fonts and the overlapping top-left region of
both images is compared pixel by pixel. For every pixel which differs, the
absolute differences of all four NRGBA channels are summed. The sum is
normalized by the area of the region times a constant (256·27), which
yields a score in [0, 1]. Scores are small numbers: a pixel which turns
from white to black contributes 765/6912 of a full pixel.

Rendering may fail, e.g. for texts without extent or glyphs the font
cannot load. Failures never propagate: the score falls back to 0 and the
result is flagged as degraded.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package pixdiff

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/fontdiff/engine/render"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'fontdiff.render'.
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.render")
}

// normalization is the per-pixel divisor of the difference sum.
const normalization = 256 * 3 * 3 * 3

// Renderer renders text to an image.
type Renderer interface {
	Render(text string, opts render.Options) (image.Image, error)
}

// Result is the outcome of a pixel comparison.
type Result struct {
	score float64
	Err   error // set if the comparison could not be carried out
}

// Score returns the difference score. Degraded results have a score of 0.
func (r Result) Score() float64 {
	if r.Err != nil {
		return 0
	}
	return r.score
}

// Degraded is true if the score is a default caused by a failure.
func (r Result) Degraded() bool {
	return r.Err != nil
}

func (r Result) String() string {
	if r.Degraded() {
		return fmt.Sprintf("0 (degraded: %v)", r.Err)
	}
	return fmt.Sprintf("%.6f", r.score)
}

// Scored returns a successful result.
func Scored(score float64) Result {
	return Result{score: score}
}

// Failed returns a degraded result.
func Failed(err error) Result {
	return Result{Err: err}
}

// Compare compares the overlapping region of two images.
// It returns an error if the region is empty.
func Compare(a, b image.Image) (float64, error) {
	ba, bb := a.Bounds(), b.Bounds()
	w, h := min(ba.Dx(), bb.Dx()), min(ba.Dy(), bb.Dy())
	if w <= 0 || h <= 0 {
		return 0, core.Error(core.EINVALID, "images do not overlap: %v vs %v", ba, bb)
	}
	ca := imaging.Crop(a, image.Rect(ba.Min.X, ba.Min.Y, ba.Min.X+w, ba.Min.Y+h))
	cb := imaging.Crop(b, image.Rect(bb.Min.X, bb.Min.Y, bb.Min.X+w, bb.Min.Y+h))
	sum := 0
	for y := 0; y < h; y++ {
		pa := ca.Pix[y*ca.Stride : y*ca.Stride+4*w]
		pb := cb.Pix[y*cb.Stride : y*cb.Stride+4*w]
		for i := 0; i < len(pa); i += 4 {
			if pa[i] == pb[i] && pa[i+1] == pb[i+1] && pa[i+2] == pb[i+2] && pa[i+3] == pb[i+3] {
				continue
			}
			for c := 0; c < 4; c++ {
				sum += absdiff(pa[i+c], pb[i+c])
			}
		}
	}
	return float64(sum) / float64(w*h*normalization), nil
}

func absdiff(x, y uint8) int {
	if x > y {
		return int(x - y)
	}
	return int(y - x)
}

// Diff renders text with two renderers and compares the images.
// Failures of either renderer, including panics, result in a degraded
// result.
func Diff(ra, rb Renderer, text string, opts render.Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed(core.Error(core.EINTERNAL, "rendering %q panicked: %v", text, r))
		}
	}()
	imgA, err := ra.Render(text, opts)
	if err != nil {
		tracer().Debugf("cannot render %q with font A: %v", text, err)
		return Failed(err)
	}
	imgB, err := rb.Render(text, opts)
	if err != nil {
		tracer().Debugf("cannot render %q with font B: %v", text, err)
		return Failed(err)
	}
	score, err := Compare(imgA, imgB)
	if err != nil {
		return Failed(err)
	}
	return Scored(score)
}
