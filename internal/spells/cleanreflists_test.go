package spells_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/nif/niftest"
	"nif-optimizer/internal/spell"
	"nif-optimizer/internal/spells"
)

func TestCleanRefList(t *testing.T) {
	var dropped []nif.Ref
	out := spells.CleanRefList([]nif.Ref{3, nif.Nil, 1, 3, 2, nif.Nil, 1}, func(r nif.Ref) {
		dropped = append(dropped, r)
	})
	assert.Equal(t, []nif.Ref{3, 1, 2}, out)
	assert.Equal(t, []nif.Ref{nif.Nil, 3, nif.Nil, 1}, dropped)
	assert.Empty(t, spells.CleanRefList(nil, nil))
}

func TestCleanRefListIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		list := make([]nif.Ref, rng.Intn(12))
		for j := range list {
			list[j] = nif.Ref(rng.Intn(5))
		}
		once := spells.CleanRefList(append([]nif.Ref(nil), list...), nil)
		twice := spells.CleanRefList(append([]nif.Ref(nil), once...), nil)
		assert.Equal(t, once, twice)

		seen := map[nif.Ref]bool{}
		for _, r := range once {
			assert.NotEqual(t, nif.Nil, r)
			assert.False(t, seen[r], "duplicate %s in %v", r, once)
			seen[r] = true
		}
		for _, r := range list {
			if r != nif.Nil {
				assert.True(t, seen[r], "lost %s from %v", r, list)
			}
		}
	}
}

func TestCleanRefListsSpell(t *testing.T) {
	b := niftest.New()
	mat := b.Material("mat", 1)
	leaf := b.Node("leaf")
	root := b.Node("root", leaf, nif.Nil, leaf)
	b.NodeAt(root).Properties = []nif.Ref{mat, mat, nif.Nil}
	b.NodeAt(root).Effects = []nif.Ref{nif.Nil}
	b.Roots(root)

	toast := spell.NewToast(b.G, nil, spell.Options{})
	require.NoError(t, spell.Cast(toast, spells.NewCleanRefLists()))

	assert.Equal(t, []nif.Ref{leaf}, b.NodeAt(root).Children)
	assert.Equal(t, []nif.Ref{mat}, b.NodeAt(root).Properties)
	assert.Empty(t, b.NodeAt(root).Effects)
	assert.Equal(t, 5, toast.Stat("references_cleaned"))
}

func TestCleanRefListsSkipsMeshEmitters(t *testing.T) {
	b := niftest.New()
	leaf := b.Node("leaf")
	root := b.Node("root", leaf, leaf)
	b.Add(&nif.PSysMeshEmitter{})
	b.Roots(root)

	toast := spell.NewToast(b.G, nil, spell.Options{})
	require.NoError(t, spell.Cast(toast, spells.NewCleanRefLists()))
	assert.Equal(t, []nif.Ref{leaf, leaf}, b.NodeAt(root).Children)
}
