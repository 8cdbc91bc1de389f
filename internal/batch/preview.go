package batch

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/postprocess"
	"nif-optimizer/internal/raster"
)

// previewPath maps meshes/a.yaml to <dir>/meshes/a.<stage>.webp.
func previewPath(dir, rel, stage string) string {
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(dir, base+"."+stage+".webp")
}

func renderPreview(cfg Config, g *nif.Graph) *image.NRGBA {
	img := raster.RenderScene(g, cfg.TexResolver, cfg.Render)
	if cfg.Render.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Render.Size)
	}
	return img
}

// writePreviews encodes the before and after renders and a side by side
// comparison of both.
func writePreviews(cfg Config, rel string, before, after *image.NRGBA) ([]string, error) {
	var paths []string
	for _, stage := range []struct {
		name string
		img  *image.NRGBA
	}{
		{"before", before},
		{"after", after},
		{"compare", postprocess.SideBySide(before, after)},
	} {
		path := previewPath(cfg.PreviewDir, rel, stage.name)
		if err := encodeWebP(path, stage.img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func encodeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "preview")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "preview")
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return errors.Wrapf(err, "preview: webp encode %s", path)
	}
	return nil
}
