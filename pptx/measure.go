package pptx

import "math"

// EMU is the fixed-point coordinate unit used throughout OOXML drawing
// markup: 914400 English Metric Units per inch.
type EMU = int64

const (
	EMUPerInch       EMU = 914400
	EMUPerPoint      EMU = 12700
	EMUPerCentimeter EMU = 360000
	EMUPerMillimeter EMU = 36000

	// maxEMU bounds conversions so arithmetic on shape geometry cannot
	// overflow when offsets and extents are summed.
	maxEMU EMU = math.MaxInt64 / 2
)

func clampEMU(v float64) EMU {
	if v > float64(maxEMU) {
		return maxEMU
	}
	if v < -float64(maxEMU) {
		return -maxEMU
	}
	return EMU(v)
}

// Inch converts inches to EMU.
func Inch(in float64) EMU { return clampEMU(in * float64(EMUPerInch)) }

// Point converts typographic points to EMU.
func Point(pt float64) EMU { return clampEMU(pt * float64(EMUPerPoint)) }

// Centimeter converts centimeters to EMU.
func Centimeter(cm float64) EMU { return clampEMU(cm * float64(EMUPerCentimeter)) }

// EMUToInch converts EMU to inches.
func EMUToInch(v EMU) float64 { return float64(v) / float64(EMUPerInch) }

// EMUToPoint converts EMU to typographic points.
func EMUToPoint(v EMU) float64 { return float64(v) / float64(EMUPerPoint) }

// EMUToPixels converts EMU to pixels at the given DPI.
func EMUToPixels(v EMU, dpi float64) float64 {
	return EMUToInch(v) * dpi
}
