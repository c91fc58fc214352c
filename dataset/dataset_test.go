package dataset

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	tglfista "github.com/n0madic/go-multitask-lasso/tgl-fista"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
tasks:
  - x: [[1, 2, 3], [4, 5, 6]]
    y: [1, 2]
  - x: [[0, 1, 0], [1, 0, 1], [2, 2, 2]]
    y: [3, 4, 5]
`)
	tasks, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	d, n := tasks[0].X.Dims()
	assert.Equal(t, 3, d)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{1, 4}, tasks[0].X.RawRowView(0))
	assert.Equal(t, 3, tasks[1].Samples())
}

func TestParseJSON(t *testing.T) {
	tasks, err := Parse([]byte(`{"tasks": [{"x": [[1, 2]], "y": [3]}]}`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 3.0, tasks[0].Y.AtVec(0))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{name: "no tasks", data: "tasks: []", invalid: true},
		{name: "ragged samples", data: "tasks: [{x: [[1, 2], [3]], y: [1, 2]}]", invalid: true},
		{name: "y length", data: "tasks: [{x: [[1, 2]], y: [1, 2]}]", invalid: true},
		{name: "unknown field", data: "tasks: [{x: [[1]], y: [1], w: 2}]"},
		{name: "garbage", data: "tasks: {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, tglfista.ErrInvalidInput)
			}
		})
	}
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	tasks, _, err := Synthetic(SyntheticConfig{Features: 3, Tasks: 2, Samples: 4, Active: 2, Drift: 0.1, Noise: 0.1}, rng)
	require.NoError(t, err)

	data, err := Encode(tasks)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(tasks))
	for i := range tasks {
		assert.True(t, mat.Equal(tasks[i].X, loaded[i].X), "task %d X", i)
		assert.True(t, mat.Equal(tasks[i].Y, loaded[i].Y), "task %d Y", i)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSynthetic(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	cfg := SyntheticConfig{Features: 6, Tasks: 4, Samples: 10, Active: 2, Drift: 0.2}
	tasks, truth, err := Synthetic(cfg, rng)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	r, c := truth.Dims()
	assert.Equal(t, 6, r)
	assert.Equal(t, 4, c)
	for i := 2; i < 6; i++ {
		assert.Equal(t, []float64{0, 0, 0, 0}, truth.RawRowView(i))
	}

	// Without noise the responses are exactly Xᵗ·w_t.
	for tt, task := range tasks {
		var want mat.VecDense
		want.MulVec(task.X.T(), truth.ColView(tt))
		assert.True(t, mat.EqualApprox(&want, task.Y, 1e-12))
	}

	for _, bad := range []SyntheticConfig{
		{Features: 0, Tasks: 1, Samples: 1},
		{Features: 2, Tasks: 1, Samples: 1, Active: 3},
		{Features: 2, Tasks: 1, Samples: 1, Noise: -1},
	} {
		_, _, err := Synthetic(bad, rng)
		assert.ErrorIs(t, err, tglfista.ErrInvalidInput)
	}
}

func TestSummary(t *testing.T) {
	tasks, err := Parse([]byte(`
tasks:
  - x: [[1], [1], [1], [1]]
    y: [2, 4, 4, 6]
  - x: [[1]]
    y: [7]
`))
	require.NoError(t, err)

	s := Summary(tasks)
	require.Len(t, s, 2)
	assert.Equal(t, 4, s[0].Samples)
	assert.InDelta(t, 4.0, s[0].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(8.0/3), s[0].StdDev, 1e-12)
	assert.Equal(t, 7.0, s[1].Mean)
	assert.True(t, math.IsNaN(s[1].StdDev))
}
