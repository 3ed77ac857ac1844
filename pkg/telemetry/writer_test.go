package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesforart/traceos-sub000/pkg/models"
)

func strokeBatch(n int, base float64) []models.StrokeSample {
	out := make([]models.StrokeSample, n)
	for i := range out {
		out[i] = models.StrokeSample{
			X:         float32(i),
			Y:         float32(i) * 2,
			Pressure:  0.7,
			Timestamp: base + float64(i)*16,
		}
	}
	return out
}

func TestWriterPool_RunningTotals(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	defer pool.Close()

	sizes := []int{10, 25, 5}
	total := 0
	var last *models.TelemetryChunk
	for i, n := range sizes {
		chunk, err := pool.SaveStrokes("s1", "a1", strokeBatch(n, float64(i)*1000))
		require.NoError(t, err)
		total += n
		assert.Equal(t, n, chunk.ChunkRowCount)
		assert.Equal(t, total, chunk.TotalSessionRows)
		assert.Equal(t, SchemaVersion, chunk.SchemaVersion)
		last = chunk
	}
	assert.Equal(t, 40, last.TotalSessionRows)
}

func TestWriterPool_SessionsAreIndependent(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	defer pool.Close()

	c1, err := pool.SaveStrokes("s1", "a1", strokeBatch(10, 0))
	require.NoError(t, err)
	c2, err := pool.SaveStrokes("s2", "a1", strokeBatch(3, 0))
	require.NoError(t, err)

	assert.Equal(t, 10, c1.TotalSessionRows)
	assert.Equal(t, 3, c2.TotalSessionRows)
	assert.NotEqual(t, c1.ParquetPath, c2.ParquetPath)
	assert.ElementsMatch(t, []string{"s1", "s2"}, pool.OpenSessions())
}

func TestWriterPool_LoadAfterClose(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)

	_, err = pool.SaveStrokes("s1", "a1", strokeBatch(10, 0))
	require.NoError(t, err)
	_, err = pool.SaveStrokes("s1", "a1", strokeBatch(7, 1000))
	require.NoError(t, err)
	require.NoError(t, pool.CloseSession("s1"))

	rows, err := LoadSession(pool.SessionPath("s1"))
	require.NoError(t, err)
	require.Len(t, rows, 17)

	// Rows come back in write order.
	assert.Equal(t, float64(0), rows[0].Timestamp)
	assert.Equal(t, float64(1000), rows[10].Timestamp)
	assert.Equal(t, float32(0.7), rows[0].Pressure)
}

func TestWriterPool_TotalsSurviveReopen(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.SaveStrokes("s1", "a1", strokeBatch(10, 0))
	require.NoError(t, err)
	require.NoError(t, pool.CloseSession("s1"))

	chunk, err := pool.SaveStrokes("s1", "a2", strokeBatch(5, 0))
	require.NoError(t, err)
	assert.Equal(t, 15, chunk.TotalSessionRows)
}

func TestWriterPool_EmptyBatch(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	defer pool.Close()

	chunk, err := pool.SaveStrokes("s1", "a1", nil)
	require.NoError(t, err)
	assert.Zero(t, chunk.ChunkRowCount)
	assert.Zero(t, chunk.TotalSessionRows)
}

func TestWriterPool_ClosedPoolRejectsWrites(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	_, err = pool.SaveStrokes("s1", "a1", strokeBatch(1, 0))
	require.Error(t, err)
}

func TestCloseSession_UnknownIsNoop(t *testing.T) {
	pool, err := NewWriterPool(t.TempDir())
	require.NoError(t, err)
	defer pool.Close()

	require.NoError(t, pool.CloseSession("never-opened"))
}
