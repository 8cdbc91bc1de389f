package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.SetNRGBA(i%2, i/2, c)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestIndexResolve(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "armor", "iron.png"), color.NRGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(root, "clutter", "iron.png"), color.NRGBA{G: 255, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(root, "armor", "iron.jpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644))

	idx := BuildIndex(root)
	assert.Equal(t, 2, idx.Len())

	p, ok := idx.ResolvePath(`textures\armor\iron.dds`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "armor", "iron.png"), p)

	p, ok = idx.ResolvePath(`Data\Textures\Clutter\IRON.dds`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "clutter", "iron.png"), p)

	_, ok = idx.ResolvePath(`textures\other\iron.dds`)
	assert.True(t, ok, "falls back to the bare name")
	_, ok = idx.ResolvePath(`textures\missing.dds`)
	assert.False(t, ok)
}

func TestCacheLoadsOnce(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), color.NRGBA{B: 200, A: 128})
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("not a png"), 0o644))

	var failures []string
	c := NewCache(BuildIndex(root), func(path string, err error) { failures = append(failures, path) })

	img := c.Resolve("textures/a.dds")
	require.NotNil(t, img)
	assert.Equal(t, color.NRGBA{B: 200, A: 128}, img.NRGBAAt(1, 1))
	assert.Same(t, img, c.Resolve(`TEXTURES\A.DDS`))

	assert.Nil(t, c.Resolve("broken"))
	assert.Nil(t, c.Resolve("broken"))
	assert.Len(t, failures, 1)
	assert.Nil(t, c.Resolve("nothing"))
}

func TestLoadUnsupported(t *testing.T) {
	_, err := LoadTexture("skin.dds")
	assert.ErrorIs(t, err, ErrUnsupported)
}
