package vector

import (
	"math"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

// Placeholder v1 encoders. Each produces exactly Dim finite float32 values,
// deterministic for a fixed input: summary statistics up front, histogram
// bins after, zero padding to Dim.

const histogramBins = 32

// EncodeStrokes derives a style vector from raw stroke samples: per-axis
// statistics, velocity statistics, pressure-delta statistics and positional
// histograms.
func EncodeStrokes(samples []models.StrokeSample) []float32 {
	out := make([]float32, Dim)
	if len(samples) == 0 {
		return out
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	ps := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s.X)
		ys[i] = float64(s.Y)
		ps[i] = float64(s.Pressure)
	}

	i := 0
	put := func(vals ...float64) {
		for _, v := range vals {
			if i < Dim {
				out[i] = sanitize(v)
				i++
			}
		}
	}

	put(stats(xs)...)
	put(stats(ys)...)
	put(stats(ps)...)

	// Velocity between consecutive samples, using the sample timestamps.
	velocities := make([]float64, 0, len(samples)-1)
	pressureDeltas := make([]float64, 0, len(samples)-1)
	for j := 1; j < len(samples); j++ {
		dx := float64(samples[j].X - samples[j-1].X)
		dy := float64(samples[j].Y - samples[j-1].Y)
		dt := samples[j].Timestamp - samples[j-1].Timestamp
		if dt <= 0 {
			dt = 1
		}
		velocities = append(velocities, math.Hypot(dx, dy)/dt)
		pressureDeltas = append(pressureDeltas, float64(samples[j].Pressure-samples[j-1].Pressure))
	}
	put(stats(velocities)...)
	put(stats(pressureDeltas)...)
	put(float64(len(samples)))

	put(histogram(xs, histogramBins)...)
	put(histogram(ys, histogramBins)...)

	return out
}

// EncodeImage derives a style vector from raw image bytes: intensity
// statistics, a byte-value histogram and a gradient-magnitude summary over
// consecutive bytes.
func EncodeImage(data []byte) []float32 {
	out := make([]float32, Dim)
	if len(data) == 0 {
		return out
	}

	vals := make([]float64, len(data))
	for j, b := range data {
		vals[j] = float64(b)
	}

	grads := make([]float64, 0, len(data)-1)
	for j := 1; j < len(data); j++ {
		grads = append(grads, math.Abs(vals[j]-vals[j-1]))
	}

	i := 0
	put := func(vs ...float64) {
		for _, v := range vs {
			if i < Dim {
				out[i] = sanitize(v)
				i++
			}
		}
	}

	put(stats(vals)...)
	put(stats(grads)...)
	put(float64(len(data)))
	put(histogram(vals, 64)...)

	return out
}

// EncodeTemporal derives a style vector from the timing of stroke samples:
// inter-sample interval statistics and an interval histogram.
func EncodeTemporal(samples []models.StrokeSample) []float32 {
	out := make([]float32, Dim)
	if len(samples) < 2 {
		return out
	}

	intervals := make([]float64, 0, len(samples)-1)
	for j := 1; j < len(samples); j++ {
		intervals = append(intervals, samples[j].Timestamp-samples[j-1].Timestamp)
	}

	i := 0
	put := func(vs ...float64) {
		for _, v := range vs {
			if i < Dim {
				out[i] = sanitize(v)
				i++
			}
		}
	}

	put(stats(intervals)...)
	put(float64(len(samples)))
	put(samples[len(samples)-1].Timestamp - samples[0].Timestamp)
	put(histogram(intervals, histogramBins)...)

	return out
}

// stats returns mean, stddev, min, max.
func stats(vals []float64) []float64 {
	if len(vals) == 0 {
		return []float64{0, 0, 0, 0}
	}
	var sum float64
	min, max := vals[0], vals[0]
	for _, v := range vals {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(vals))
	var variance float64
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))
	return []float64{mean, math.Sqrt(variance), min, max}
}

// histogram returns bin counts normalized by the sample count.
func histogram(vals []float64, bins int) []float64 {
	out := make([]float64, bins)
	if len(vals) == 0 {
		return out
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		out[0] = 1
		return out
	}
	for _, v := range vals {
		b := int((v - min) / span * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		out[b]++
	}
	for b := range out {
		out[b] /= float64(len(vals))
	}
	return out
}

// sanitize clamps non-finite values to zero so stored vectors never carry
// NaN or Inf.
func sanitize(v float64) float32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return float32(v)
}
