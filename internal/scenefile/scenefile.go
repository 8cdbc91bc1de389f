// Package scenefile reads and writes scene graphs as YAML documents.
//
// A document lists the blocks in ref order, each a mapping whose "type" key
// names the block kind:
//
//	version: 20.0.0.5
//	roots: [1]
//	blocks:
//	  - type: NiNode
//	    name: root
//	    children: [2]
//	  - type: NiTriShape
//	    ...
//
// Refs are 1-based block positions and 0 is the null link.
package scenefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"nif-optimizer/internal/nif"
)

const typeKey = "type"

// ErrNoType is returned for block entries without a type key.
var ErrNoType = errors.New("scenefile: block has no type")

type document struct {
	Version string      `yaml:"version"`
	Roots   []nif.Ref   `yaml:"roots,flow"`
	Blocks  []yaml.Node `yaml:"blocks"`
}

// Load reads the scene file at path.
func Load(path string) (*nif.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "scenefile: open %s", path)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "scenefile: %s", path)
	}
	return g, nil
}

// Decode parses one document from r. Fields absent from a block keep the
// defaults of its kind.
func Decode(r io.Reader) (*nif.Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	g := nif.NewGraph(doc.Version)
	for i := range doc.Blocks {
		b, err := decodeBlock(&doc.Blocks[i])
		if err != nil {
			return nil, errors.Wrapf(err, "block %d", i+1)
		}
		g.Add(b)
	}
	g.SetRoots(doc.Roots...)

	if err := validate(g, doc.Roots); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeBlock(n *yaml.Node) (nif.Block, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.Errorf("scenefile: line %d: expected a mapping", n.Line)
	}
	var kind string
	fields := make([]*yaml.Node, 0, len(n.Content))
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == typeKey {
			kind = n.Content[i+1].Value
			continue
		}
		fields = append(fields, n.Content[i], n.Content[i+1])
	}
	if kind == "" {
		return nil, errors.Wrapf(ErrNoType, "line %d", n.Line)
	}

	b, err := nif.New(nif.Kind(kind))
	if err != nil {
		return nil, errors.Wrapf(err, "line %d", n.Line)
	}
	body := *n
	body.Content = fields
	if err := body.Decode(b); err != nil {
		return nil, errors.Wrap(err, kind)
	}
	return b, nil
}

func validate(g *nif.Graph, roots []nif.Ref) error {
	check := func(r nif.Ref, where string) error {
		if r != nif.Nil && int(r) > g.Len() {
			return errors.Wrapf(nif.ErrBadRef, "%s links %s", where, r)
		}
		return nil
	}
	for _, r := range roots {
		if err := check(r, "roots"); err != nil {
			return err
		}
	}
	for i := 1; i <= g.Len(); i++ {
		self := nif.Ref(i)
		var err error
		g.Block(self).Edges(func(e nif.Edge) {
			for _, t := range e.Targets() {
				if err == nil {
					err = check(t, self.String()+"."+e.Field)
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Save writes g to path, creating parent directories. Only blocks
// reachable from the roots are written, renumbered in tree order; g itself
// is left untouched.
func Save(path string, g *nif.Graph) error {
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		return errors.Wrapf(err, "scenefile: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "scenefile: mkdir %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "scenefile: write %s", path)
	}
	return nil
}

// Encode writes the compacted form of g to w.
func Encode(w io.Writer, g *nif.Graph) error {
	c, err := g.Clone()
	if err != nil {
		return err
	}
	c.Compact()

	doc := document{Version: c.Version, Roots: c.Roots()}
	for i := 1; i <= c.Len(); i++ {
		b := c.Block(nif.Ref(i))
		var n yaml.Node
		if err := n.Encode(b); err != nil {
			return errors.Wrapf(err, "encode %s", nif.Ref(i))
		}
		n.Content = append([]*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: typeKey},
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(b.Kind())},
		}, n.Content...)
		doc.Blocks = append(doc.Blocks, n)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return errors.Wrap(err, "write")
	}
	return enc.Close()
}
