package vector

import (
	"math"
	"testing"

	"github.com/jesforart/traceos-sub000/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStrokes(n int) []models.StrokeSample {
	out := make([]models.StrokeSample, n)
	for i := range out {
		out[i] = models.StrokeSample{
			X:         float32(i) * 1.5,
			Y:         float32(i%7) * 2.0,
			Pressure:  0.5 + float32(i%3)*0.1,
			Timestamp: float64(i) * 16.0,
			Tilt:      0.1,
		}
	}
	return out
}

func assertValidVector(t *testing.T, v []float32) {
	t.Helper()
	require.Len(t, v, Dim)
	for i, x := range v {
		assert.False(t, math.IsNaN(float64(x)) || math.IsInf(float64(x), 0),
			"element %d is not finite: %v", i, x)
	}
}

func TestEncodeStrokes(t *testing.T) {
	samples := sampleStrokes(50)
	v := EncodeStrokes(samples)
	assertValidVector(t, v)
	assert.Equal(t, v, EncodeStrokes(sampleStrokes(50)), "must be deterministic")
	assert.NotEqual(t, v, EncodeStrokes(sampleStrokes(10)))

	assertValidVector(t, EncodeStrokes(nil))
	assertValidVector(t, EncodeStrokes(samples[:1]))
}

func TestEncodeStrokes_DegenerateTimestamps(t *testing.T) {
	samples := sampleStrokes(10)
	for i := range samples {
		samples[i].Timestamp = 100 // zero dt between all samples
	}
	assertValidVector(t, EncodeStrokes(samples))
}

func TestEncodeImage(t *testing.T) {
	img := make([]byte, 4096)
	for i := range img {
		img[i] = byte(i * 31)
	}
	v := EncodeImage(img)
	assertValidVector(t, v)
	assert.Equal(t, v, EncodeImage(img))

	assertValidVector(t, EncodeImage(nil))
	assertValidVector(t, EncodeImage([]byte{42}))
}

func TestEncodeTemporal(t *testing.T) {
	samples := sampleStrokes(30)
	v := EncodeTemporal(samples)
	assertValidVector(t, v)
	assert.Equal(t, v, EncodeTemporal(sampleStrokes(30)))

	assertValidVector(t, EncodeTemporal(nil))
	assertValidVector(t, EncodeTemporal(samples[:1]))
}
