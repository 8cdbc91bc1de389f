package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Index maps texture names as stored in scene files to image files on disk.
type Index struct {
	byPath map[string]string // "armor/iron" → full path
	byStem map[string]string // "iron" → full path
}

// BuildIndex scans root recursively for decodable images. When several
// files share a name, formats with alpha win.
func BuildIndex(root string) *Index {
	idx := &Index{byPath: make(map[string]string), byStem: make(map[string]string)}
	if root == "" {
		return idx
	}

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if priority(ext) < 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		idx.add(idx.byPath, key(rel), path)
		idx.add(idx.byStem, stem(rel), path)
		return nil
	})
	return idx
}

func (idx *Index) add(m map[string]string, k, path string) {
	existing, ok := m[k]
	if !ok || priority(strings.ToLower(filepath.Ext(path))) < priority(strings.ToLower(filepath.Ext(existing))) {
		m[k] = path
	}
}

// key normalizes a texture name: forward slashes, lower case, no
// extension, relative to the textures folder.
func key(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(name, "textures/"); i >= 0 {
		name = name[i+len("textures/"):]
	}
	return strings.TrimPrefix(name, "/")
}

func stem(name string) string {
	k := key(name)
	return k[strings.LastIndex(k, "/")+1:]
}

// ResolvePath returns the file for a texture name, or ("", false). The
// path below the textures folder is tried first, then the bare file name.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	if p, ok := idx.byPath[key(texName)]; ok {
		return p, true
	}
	p, ok := idx.byStem[stem(texName)]
	return p, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.byPath)
}
