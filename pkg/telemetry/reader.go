package telemetry

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

// LoadSession reads a session's entire telemetry file and returns the rows
// in write order.
func LoadSession(path string) ([]models.StrokeSample, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("telemetry file not readable: %w", err)
	}

	rows, err := parquet.ReadFile[StrokeRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry file %s: %w", path, err)
	}

	out := make([]models.StrokeSample, len(rows))
	for i, r := range rows {
		out[i] = models.StrokeSample{
			X: r.X, Y: r.Y, Pressure: r.Pressure,
			Timestamp: r.Timestamp,
			Tilt:      r.Tilt, TiltX: r.TiltX, TiltY: r.TiltY,
		}
	}
	return out, nil
}
