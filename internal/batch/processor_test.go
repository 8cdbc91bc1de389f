package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/metrics"
	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/nif/niftest"
	"nif-optimizer/internal/raster"
	"nif-optimizer/internal/scenefile"
	"nif-optimizer/internal/spell"
	"nif-optimizer/internal/spells"
)

// duplicated writes a scene with two identical sibling nodes.
func duplicated(t *testing.T, path string) {
	t.Helper()
	b := niftest.New()
	verts, tris := niftest.Grid(2)
	s1 := b.TriShape("part", b.TriShapeData(verts, tris))
	s2 := b.TriShape("part", b.TriShapeData(verts, tris))
	b.Roots(b.Node("root", s1, s2, nif.Nil))
	require.NoError(t, scenefile.Save(path, b.G))
}

func testConfig(t *testing.T, in string) Config {
	t.Helper()
	unit, err := spells.Lookup("optimize", spells.DefaultSettings())
	require.NoError(t, err)
	render := raster.DefaultOptions()
	render.Size = 32
	return Config{
		InputDir:  in,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Unit:      unit,
		Workers:   2,
		Render:    render,
		Metrics:   metrics.New(),
	}
}

func TestDiscover(t *testing.T) {
	in := t.TempDir()
	duplicated(t, filepath.Join(in, "b.yaml"))
	duplicated(t, filepath.Join(in, "sub", "a.yml"))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), nil, 0o644))

	files, err := Discover(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.yaml", filepath.Join("sub", "a.yml")}, files)
}

func TestRunOptimizesAndCollectsFailures(t *testing.T) {
	in := t.TempDir()
	duplicated(t, filepath.Join(in, "good.yaml"))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.yaml"), []byte("blocks: [{type: NiBogus}]\n"), 0o644))
	cfg := testConfig(t, in)

	results, err := Run(context.Background(), cfg, []string{"bad.yaml", "good.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)

	good := results[1]
	require.True(t, good.Success, good.Error)
	assert.Equal(t, 1, good.Stats["branches_merged"])
	assert.Less(t, good.BlocksAfter, good.BlocksBefore)

	g, err := scenefile.Load(filepath.Join(cfg.OutputDir, "good.yaml"))
	require.NoError(t, err)
	children := g.Children(g.Roots()[0])
	require.Len(t, children, 2)
	assert.Equal(t, children[0], children[1])
}

func TestDryRunWritesNothing(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "scene.yaml")
	duplicated(t, path)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg := testConfig(t, in)
	cfg.OutputDir = ""
	cfg.DryRun = true
	res := ProcessFile(cfg, "scene.yaml")
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Output)
	assert.Equal(t, 1, res.Stats["branches_merged"])

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPreviews(t *testing.T) {
	in := t.TempDir()
	duplicated(t, filepath.Join(in, "m", "scene.yaml"))
	cfg := testConfig(t, in)
	cfg.PreviewDir = t.TempDir()
	cfg.Unit = spells.NewCleanRefLists()

	res := ProcessFile(cfg, filepath.Join("m", "scene.yaml"))
	require.True(t, res.Success, res.Error)
	require.Len(t, res.Previews, 3)
	assert.Equal(t, filepath.Join(cfg.PreviewDir, "m", "scene.before.webp"), res.Previews[0])
	assert.Equal(t, filepath.Join(cfg.PreviewDir, "m", "scene.compare.webp"), res.Previews[2])
	for _, p := range res.Previews {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestReadOnlyUnitSkipsWrite(t *testing.T) {
	in := t.TempDir()
	duplicated(t, filepath.Join(in, "scene.yaml"))
	cfg := testConfig(t, in)
	cfg.Unit = readOnly{}

	res := ProcessFile(cfg, "scene.yaml")
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Output)
	_, err := os.Stat(filepath.Join(cfg.OutputDir, "scene.yaml"))
	assert.True(t, os.IsNotExist(err))
}

type readOnly struct{ spell.Base }

func (readOnly) Name() string { return "count" }

func TestManifest(t *testing.T) {
	m := NewManifest("optimize", false)
	m.Finish([]Result{
		{File: "a.yaml", Success: true, Stats: map[string]int{"branches_merged": 2}},
		{File: "b.yaml", Error: "boom"},
		{File: "c.yaml", Success: true, Stats: map[string]int{"branches_merged": 1}},
	})
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, 3, m.Totals["branches_merged"])
	assert.Len(t, m.RunID, 36)

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, m))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Manifest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.RunID, back.RunID)
	assert.Len(t, back.Files, 3)
}

func TestCancelledRunMarksUnprocessed(t *testing.T) {
	in := t.TempDir()
	duplicated(t, filepath.Join(in, "a.yaml"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, testConfig(t, in), []string{"a.yaml"})
	require.Error(t, err)
	assert.Equal(t, "not processed", results[0].Error)
}
