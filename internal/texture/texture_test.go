package texture

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAnalyzeSolidWhite(t *testing.T) {
	t.Parallel()

	got := Analyze(solidImage(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))

	if got.Samples != 16 {
		t.Fatalf("Samples = %d, want 16", got.Samples)
	}
	if got.Transparent {
		t.Fatal("solid image reported transparent")
	}
	if !almostEqual(got.Mean.L, 100, 0.01) || !almostEqual(got.Mean.A, 0, 0.01) || !almostEqual(got.Mean.B, 0, 0.01) {
		t.Fatalf("Mean = %+v, want ~{100 0 0}", got.Mean)
	}
	if !almostEqual(got.Noise, 0, 1e-9) {
		t.Fatalf("Noise = %v, want 0", got.Noise)
	}
	if got.Hex != "#ffffff" {
		t.Fatalf("Hex = %q, want #ffffff", got.Hex)
	}
}

func TestAnalyzeIgnoresInvisiblePixels(t *testing.T) {
	t.Parallel()

	// Fully transparent red must not influence any statistic.
	img := solidImage(2, 2, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 0})

	got := Analyze(img)

	if got.Samples != 2 {
		t.Fatalf("Samples = %d, want 2", got.Samples)
	}
	if got.Transparent {
		t.Fatal("zero-alpha pixels must not set Transparent")
	}
	if !almostEqual(got.Mean.L, 100, 0.01) {
		t.Fatalf("Mean.L = %v, want ~100", got.Mean.L)
	}
	if !almostEqual(got.Noise, 0, 1e-9) {
		t.Fatalf("Noise = %v, want 0", got.Noise)
	}
}

func TestAnalyzePartialAlphaSetsTransparent(t *testing.T) {
	t.Parallel()

	img := solidImage(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	got := Analyze(img)

	if !got.Transparent {
		t.Fatal("partial alpha must set Transparent")
	}
	if got.Samples != 2 {
		t.Fatalf("Samples = %d, want 2 (partial alpha still counts)", got.Samples)
	}
}

func TestAnalyzeFullyTransparent(t *testing.T) {
	t.Parallel()

	got := Analyze(solidImage(3, 3, color.NRGBA{}))

	if got != (Summary{}) {
		t.Fatalf("fully transparent image: got %+v, want zero Summary", got)
	}
}

func TestAnalyzeAveragesInLinearSpace(t *testing.T) {
	t.Parallel()

	// Half black, half white. The linear mean is 0.5, whose lightness is
	// ~76.07; a gamma-space mean would land near 53.39 instead.
	img := solidImage(2, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})

	got := Analyze(img)

	if !almostEqual(got.Mean.L, 76.069, 0.01) {
		t.Fatalf("Mean.L = %v, want ~76.069", got.Mean.L)
	}
}

func TestAnalyzeNoiseCheckerboard(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}

	got := Analyze(img)

	// L alternates between 0 and 100: variance 2500 on L, ~0 on A and B.
	if !almostEqual(got.Noise, 2500.0/3, 0.5) {
		t.Fatalf("Noise = %v, want ~%v", got.Noise, 2500.0/3)
	}
}

func TestAnalyzeFileRoundTrip(t *testing.T) {
	t.Parallel()

	img := solidImage(2, 2, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 200, B: 90, A: 200})

	path := filepath.Join(t.TempDir(), "tile.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	fromFile, err := AnalyzeFile(path)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if inMemory := Analyze(img); fromFile != inMemory {
		t.Fatalf("AnalyzeFile = %+v, Analyze = %+v", fromFile, inMemory)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := AnalyzeFile(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
