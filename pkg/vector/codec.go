// Package vector implements the fixed-dimension style-vector codec and the
// placeholder v1 feature encoders.
package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Dim is the fixed style-vector dimension. Packed vectors are exactly
// Dim*4 bytes.
const Dim = 128

// DimensionError reports a packed blob whose byte length does not decode to
// exactly Dim float32 values. Callers treat it as stored-data corruption.
type DimensionError struct {
	Bytes int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("packed vector has %d bytes, want %d (%d float32 values)",
		e.Bytes, Dim*4, Dim)
}

// Pack serializes v as little-endian IEEE-754 float32 values.
// v must have exactly Dim elements.
func Pack(v []float32) ([]byte, error) {
	if len(v) != Dim {
		return nil, fmt.Errorf("vector has %d elements, want %d", len(v), Dim)
	}
	buf := make([]byte, Dim*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf, nil
}

// Unpack deserializes a packed blob produced by Pack. Any length other than
// Dim*4 is a DimensionError.
func Unpack(data []byte) ([]float32, error) {
	if len(data)%4 != 0 || len(data)/4 != Dim {
		return nil, &DimensionError{Bytes: len(data)}
	}
	v := make([]float32, Dim)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}

// Checksum computes the hex SHA-256 of the packed concatenation of the given
// vectors in the fixed order stroke, image, temporal, skipping nil vectors.
// Returns "" when every vector is nil.
func Checksum(stroke, image, temporal []float32) (string, error) {
	h := sha256.New()
	any := false
	for _, v := range [][]float32{stroke, image, temporal} {
		if v == nil {
			continue
		}
		packed, err := Pack(v)
		if err != nil {
			return "", err
		}
		h.Write(packed)
		any = true
	}
	if !any {
		return "", nil
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// L2Norm computes sqrt(sum(x^2)).
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
