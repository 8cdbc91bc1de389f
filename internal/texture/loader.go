package texture

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// ErrUnsupported is returned for texture files no registered decoder reads.
var ErrUnsupported = errors.New("texture: unsupported format")

// extensions lists the decodable formats, in resolve priority: formats
// that carry alpha come first.
var extensions = []string{".tga", ".png", ".bmp", ".jpg", ".jpeg"}

func priority(ext string) int {
	for i, e := range extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// LoadTexture reads an image file and returns it as NRGBA.
func LoadTexture(path string) (*image.NRGBA, error) {
	if priority(strings.ToLower(filepath.Ext(path))) < 0 {
		return nil, errors.Wrap(ErrUnsupported, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "texture: open %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "texture: decode %s", path)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA. Opaque sources end up with alpha 255.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
