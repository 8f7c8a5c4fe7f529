// Package texture reduces tile images to the perceptual statistics the
// catalog stores: a mean Lab color, a noise score, and transparency.
package texture

import (
	"fmt"
	"image"
	"image/color"
	"os"

	// Canonical tile images are PNG files.
	_ "image/png"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mapsmith/tessera/internal/colorspace"
)

// Summary is the perceptual description of one tile image. Pixels with
// zero alpha carry no color and are excluded from every statistic, so an
// image with no visible pixels yields the zero Summary (Samples == 0).
type Summary struct {
	// Mean is the average visible color. Averaging happens on linear
	// RGB before the Lab conversion; averaging gamma-encoded values
	// would darken every mix.
	Mean colorspace.Lab

	// Hex is Mean rendered as a lowercase sRGB hex string for display
	// swatches.
	Hex string

	// Noise is the mean of the per-channel population variances of the
	// per-pixel Lab values. Flat tiles score near zero.
	Noise float64

	// Transparent reports whether any visible pixel has partial alpha.
	Transparent bool

	// Samples counts the pixels with alpha > 0.
	Samples int
}

// Analyze summarizes the visible pixels of img.
func Analyze(img image.Image) Summary {
	bounds := img.Bounds()

	var (
		sumR, sumG, sumB float64
		labs             []colorspace.Lab
		transparent      bool
	)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// NRGBA keeps the channels straight (non-premultiplied);
			// premultiplied values would bias partially transparent
			// pixels toward black.
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if px.A == 0 {
				continue
			}
			if px.A < 0xff {
				transparent = true
			}
			r := colorspace.SRGBToLinear(float64(px.R) / 255)
			g := colorspace.SRGBToLinear(float64(px.G) / 255)
			b := colorspace.SRGBToLinear(float64(px.B) / 255)
			sumR += r
			sumG += g
			sumB += b
			labs = append(labs, colorspace.LinearToLab(r, g, b))
		}
	}

	n := len(labs)
	if n == 0 {
		return Summary{}
	}

	fn := float64(n)
	mr, mg, mb := sumR/fn, sumG/fn, sumB/fn

	return Summary{
		Mean:        colorspace.LinearToLab(mr, mg, mb),
		Hex:         colorful.LinearRgb(mr, mg, mb).Clamped().Hex(),
		Noise:       meanVariance(labs),
		Transparent: transparent,
		Samples:     n,
	}
}

// AnalyzeFile decodes the image at path and summarizes it.
func AnalyzeFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Summary{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return Analyze(img), nil
}

// meanVariance averages the population variances of the L, A, and B
// channels over the given samples. len(labs) must be > 0.
func meanVariance(labs []colorspace.Lab) float64 {
	n := float64(len(labs))

	var mL, mA, mB float64
	for _, s := range labs {
		mL += s.L
		mA += s.A
		mB += s.B
	}
	mL /= n
	mA /= n
	mB /= n

	var vL, vA, vB float64
	for _, s := range labs {
		vL += (s.L - mL) * (s.L - mL)
		vA += (s.A - mA) * (s.A - mA)
		vB += (s.B - mB) * (s.B - mB)
	}
	return (vL + vA + vB) / n / 3
}
