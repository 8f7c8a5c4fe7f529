// Package colorspace converts display RGB samples to CIE L*a*b* (D65).
// The map-art matcher ranks tiles by Euclidean distance in Lab space, so
// these functions follow the published sRGB and CIE constants exactly;
// any deviation would skew every downstream color match.
package colorspace

import "math"

// Lab is a color in CIE L*a*b* space relative to the D65 reference white.
// L is lightness in [0, 100]; A and B are the green/red and blue/yellow
// chroma axes.
type Lab struct {
	L float64
	A float64
	B float64
}

// sRGB transfer-function constants (IEC 61966-2-1).
const (
	srgbCutoff = 0.04045
	srgbScale  = 12.92
	srgbOffset = 0.055
	srgbGamma  = 2.4
)

// D65 reference white point.
const (
	whiteX = 0.95047
	whiteY = 1.0
	whiteZ = 1.08883
)

// labDelta is the 6/29 breakpoint of the Lab transfer function.
const labDelta = 6.0 / 29.0

// SRGBToLinear removes sRGB gamma encoding from one channel value in [0, 1].
func SRGBToLinear(c float64) float64 {
	if c <= srgbCutoff {
		return c / srgbScale
	}
	return math.Pow((c+srgbOffset)/(1+srgbOffset), srgbGamma)
}

// LinearToXYZ converts a linear RGB triple to CIE XYZ using the standard
// sRGB D65 primary matrix.
func LinearToXYZ(r, g, b float64) (x, y, z float64) {
	x = 0.4124564*r + 0.3575761*g + 0.1804375*b
	y = 0.2126729*r + 0.7151522*g + 0.0721750*b
	z = 0.0193339*r + 0.1191920*g + 0.9503041*b
	return x, y, z
}

// XYZToLab converts CIE XYZ to Lab relative to the D65 white point.
func XYZToLab(x, y, z float64) Lab {
	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)
	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// labF is the piecewise cube-root transfer function of the Lab model. The
// linear branch keeps the function continuous at t = (6/29)³.
func labF(t float64) float64 {
	if t > labDelta*labDelta*labDelta {
		return math.Cbrt(t)
	}
	return t/(3*labDelta*labDelta) + 4.0/29.0
}

// LinearToLab converts a linear RGB triple straight to Lab.
func LinearToLab(r, g, b float64) Lab {
	return XYZToLab(LinearToXYZ(r, g, b))
}

// SRGBToLab converts a gamma-encoded sRGB triple in [0, 1] to Lab.
func SRGBToLab(r, g, b float64) Lab {
	return LinearToLab(SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b))
}
