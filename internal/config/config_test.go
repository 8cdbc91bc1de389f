package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toaster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_dir: /data
input_dir: meshes
output_dir: /out
exclude: [NiMaterialProperty]
stitch: false
workers: 3
precision:
  uv: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{Exclude: []string{"NiTriStrips"}})

	assert.Equal(t, filepath.Join("/data", "meshes"), cfg.InputDir)
	assert.Equal(t, "/out", cfg.OutputDir)
	assert.Equal(t, cfg.InputDir, cfg.TextureDir)
	assert.Equal(t, []string{"NiMaterialProperty", "NiTriStrips"}, cfg.Exclude)
	assert.Equal(t, []string{"optimize"}, cfg.Spells)
	require.NotNil(t, cfg.StripLengthCutoff)
	assert.Equal(t, 10.0, *cfg.StripLengthCutoff)
	require.NotNil(t, cfg.Stitch)
	assert.False(t, *cfg.Stitch)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 4, cfg.Precision.UV)
}

func TestResolveFlagsOverride(t *testing.T) {
	cutoff := 4.0
	var cfg Config
	cfg.Resolve(Flags{
		InputDir:          "in",
		Workers:           2,
		Spells:            []string{"opt_cleanreflists"},
		StripLengthCutoff: &cutoff,
		NoStitch:          true,
		DryRun:            true,
	})
	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"opt_cleanreflists"}, cfg.Spells)
	assert.Equal(t, 4.0, *cfg.StripLengthCutoff)
	assert.False(t, *cfg.Stitch)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 256, cfg.PreviewSize)
}

func TestZeroCutoffKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toaster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strip_length_cutoff: 0\nmerge_veto: []\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{})
	require.NotNil(t, cfg.StripLengthCutoff)
	assert.Zero(t, *cfg.StripLengthCutoff)
	assert.NotNil(t, cfg.MergeVeto)
	assert.Empty(t, cfg.MergeVeto)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
