package spells

import (
	"strings"

	"github.com/pkg/errors"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/spell"
)

// DetachHavokTriStripsData gives collision shapes their own copy of strips
// data that is also rendered, so that geometry optimization leaves the
// collision mesh alone.
type DetachHavokTriStripsData struct {
	spell.Base
}

// NewDetachHavokTriStripsData returns the havok data detacher.
func NewDetachHavokTriStripsData() *DetachHavokTriStripsData {
	return &DetachHavokTriStripsData{Base: spell.Base{SpellName: "fix_detachhavoktristripsdata", Mutates: true}}
}

type renderedData map[nif.Ref]bool

func (s *DetachHavokTriStripsData) DataInspect(t *spell.Toast) bool {
	t.Forget(s)
	return t.Graph.HasBlockType(nif.KindNiTriStripsShape)
}

func (s *DetachHavokTriStripsData) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	switch b.(type) {
	case nif.AV, *nif.CollisionObject, *nif.RigidBody, *nif.NiTriStripsShape:
		return true
	}
	return false
}

func (s *DetachHavokTriStripsData) rendered(t *spell.Toast) renderedData {
	return spell.Scratch(t, s, func() renderedData {
		out := make(renderedData)
		for _, r := range t.Graph.Tree() {
			if ts, ok := nif.Get[*nif.TriStrips](t.Graph, r); ok && ts.Data != nif.Nil {
				out[ts.Data] = true
			}
		}
		return out
	})
}

func (s *DetachHavokTriStripsData) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	shape, ok := nif.Get[*nif.NiTriStripsShape](t.Graph, r)
	if !ok {
		return spell.Continue, nil
	}
	rendered := s.rendered(t)
	for i, d := range shape.StripsData {
		if !rendered[d] || t.Graph.Block(d) == nil {
			continue
		}
		c, err := nif.CloneBlock(t.Graph.Block(d))
		if err != nil {
			return spell.Prune, errors.Wrap(err, "detach havok data")
		}
		shape.StripsData[i] = t.Graph.Add(c)
		t.BlockLog(r).Info("detaching havok data")
		t.Count("havok_data_detached", 1)
	}
	return spell.Prune, nil
}

// FixTexturePath normalizes texture file names to the backslash form
// relative to the textures folder.
type FixTexturePath struct {
	spell.Base
}

// NewFixTexturePath returns the texture path fixer.
func NewFixTexturePath() *FixTexturePath {
	return &FixTexturePath{Base: spell.Base{SpellName: "fix_texturepath", Mutates: true}}
}

// TexturePath returns the normalized form of a texture file name.
func TexturePath(name string) string {
	name = strings.ReplaceAll(name, "\n", `\n`)
	name = strings.ReplaceAll(name, "\r", `\r`)
	name = strings.ReplaceAll(name, "/", `\`)
	for strings.Contains(name, `\\`) {
		name = strings.ReplaceAll(name, `\\`, `\`)
	}
	if i := strings.Index(strings.ToLower(name), `textures\`); i > 0 {
		name = name[i:]
	}
	return name
}

func (s *FixTexturePath) DataInspect(t *spell.Toast) bool {
	return t.Graph.HasBlockType(nif.KindSourceTexture)
}

func (s *FixTexturePath) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	switch b.(type) {
	case nif.AV, *nif.TexturingProperty, *nif.SourceTexture:
		return true
	}
	return false
}

func (s *FixTexturePath) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	tex, ok := nif.Get[*nif.SourceTexture](t.Graph, r)
	if !ok {
		return spell.Continue, nil
	}
	if fixed := TexturePath(tex.FileName); fixed != tex.FileName {
		t.BlockLog(r).Infof("fixed file name %q", fixed)
		tex.FileName = fixed
		t.Count("texture_paths_fixed", 1)
	}
	return spell.Prune, nil
}

// ClampMaterialAlpha brings material alpha back into [0, 1].
type ClampMaterialAlpha struct {
	spell.Base
}

// NewClampMaterialAlpha returns the alpha clamper.
func NewClampMaterialAlpha() *ClampMaterialAlpha {
	return &ClampMaterialAlpha{Base: spell.Base{SpellName: "fix_clampmaterialalpha", Mutates: true}}
}

func (s *ClampMaterialAlpha) DataInspect(t *spell.Toast) bool {
	return t.Graph.HasBlockType(nif.KindMaterialProperty)
}

func (s *ClampMaterialAlpha) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	switch b.(type) {
	case nif.AV, *nif.MaterialProperty:
		return true
	}
	return false
}

func (s *ClampMaterialAlpha) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	m, ok := nif.Get[*nif.MaterialProperty](t.Graph, r)
	if !ok {
		return spell.Continue, nil
	}
	switch {
	case m.Alpha > 1.01:
		t.BlockLog(r).Infof("clamping alpha value (%f -> 1.0)", m.Alpha)
		m.Alpha = 1
		t.Count("alpha_clamped", 1)
	case m.Alpha < -0.01:
		t.BlockLog(r).Infof("clamping alpha value (%f -> 0.0)", m.Alpha)
		m.Alpha = 0
		t.Count("alpha_clamped", 1)
	}
	return spell.Prune, nil
}

// DelTangentSpace unlinks cached tangent space blocks from geometry.
type DelTangentSpace struct {
	spell.Base
}

// NewDelTangentSpace returns the tangent space remover.
func NewDelTangentSpace() *DelTangentSpace {
	return &DelTangentSpace{Base: spell.Base{SpellName: "fix_deltangentspace", Mutates: true}}
}

func (s *DelTangentSpace) DataInspect(t *spell.Toast) bool {
	return t.Graph.HasBlockType(nif.KindBinaryExtraData)
}

func (s *DelTangentSpace) BranchInspect(_ *spell.Toast, b nif.Block) bool {
	_, ok := b.(nif.AV)
	return ok
}

func (s *DelTangentSpace) BranchEntry(t *spell.Toast, r nif.Ref) (spell.Action, error) {
	geom, ok := nif.Get[nif.Geom](t.Graph, r)
	if !ok {
		return spell.Continue, nil
	}
	net := geom.Net()
	kept := net.ExtraData[:0]
	for _, x := range net.ExtraData {
		if bx, ok := nif.Get[*nif.BinaryExtraData](t.Graph, x); ok && bx.Name == nif.TangentSpaceName {
			t.BlockLog(r).Info("removing tangent space block")
			t.Count("tangent_space_removed", 1)
			continue
		}
		kept = append(kept, x)
	}
	net.ExtraData = kept
	return spell.Prune, nil
}
