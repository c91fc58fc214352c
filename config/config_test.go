package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tglfista "github.com/n0madic/go-multitask-lasso/tgl-fista"
)

func TestResolveDefaults(t *testing.T) {
	for name, cfg := range map[string]*Config{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			opts, pen, err := Resolve(cfg)
			require.NoError(t, err)
			if diff := cmp.Diff(tglfista.DefaultOptions(), opts); diff != "" {
				t.Errorf("Resolve() options mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tglfista.Penalty{}, pen)
		})
	}
}

func TestParseAndResolve(t *testing.T) {
	data := []byte(`
init: 0
tFlag: 2
tol: 1e-6
maxIter: 250
pFlag: true
workers: 3
rho1: 0.1
rho2: 2
rho3: 0.5
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	opts, pen, err := Resolve(cfg)
	require.NoError(t, err)

	want := tglfista.Options{
		Init:     tglfista.InitCorrelation,
		Stop:     tglfista.StopFloor,
		Tol:      1e-6,
		MaxIter:  250,
		Parallel: true,
		Workers:  3,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("Resolve() options mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, tglfista.Penalty{Rho1: 0.1, Rho2: 2, Rho3: 0.5}, pen)
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("maxIter: 20\n"))
	require.NoError(t, err)

	opts, _, err := Resolve(cfg)
	require.NoError(t, err)

	want := tglfista.DefaultOptions()
	want.MaxIter = 20
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("Resolve() options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown key", data: "tolerance: 1\n"},
		{name: "wrong type", data: "maxIter: many\n"},
		{name: "not yaml", data: "init: [1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestResolveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "init out of range", data: "init: 3"},
		{name: "tFlag out of range", data: "tFlag: -1"},
		{name: "zero tol", data: "tol: 0"},
		{name: "negative maxIter", data: "maxIter: -5"},
		{name: "negative rho", data: "rho2: -0.1"},
		{name: "NaN tol", data: "tol: .nan"},
		{name: "infinite tol", data: "tol: .inf"},
		{name: "negative workers", data: "workers: -1"},
		{name: "infinite rho", data: "rho3: .inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			_, _, err = Resolve(cfg)
			assert.ErrorIs(t, err, tglfista.ErrInvalidInput)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tFlag: 3\nrho3: 1.5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.TFlag)
	assert.Equal(t, 3, *cfg.TFlag)
	assert.Equal(t, 1.5, cfg.Rho3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
