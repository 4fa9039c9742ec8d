package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaxonomy() *Taxonomy {
	return &Taxonomy{
		Industry: "hot_tub_spa",
		Root: &CategoryNode{
			Name: "FloWorx",
			Children: []*CategoryNode{
				{Name: "Urgent", Color: "#fb4c2f"},
				{Name: "Sales", Children: []*CategoryNode{
					{Name: "New Inquiry"},
				}},
				{Name: "Managers", Children: []*CategoryNode{
					{Name: "Jen", Dynamic: true},
				}},
			},
		},
	}
}

func TestTaxonomyPaths_ParentBeforeChild(t *testing.T) {
	tax := testTaxonomy()
	paths := tax.Paths()

	require.Equal(t, []string{
		"FloWorx",
		"FloWorx/Urgent",
		"FloWorx/Sales",
		"FloWorx/Sales/New Inquiry",
		"FloWorx/Managers",
		"FloWorx/Managers/Jen",
	}, paths)
}

func TestTaxonomyFind(t *testing.T) {
	tax := testTaxonomy()

	node := tax.Find("FloWorx/Managers/Jen")
	require.NotNil(t, node)
	assert.Equal(t, "Jen", node.Name)
	assert.True(t, node.Dynamic)

	assert.Nil(t, tax.Find("FloWorx/Nope"))
	assert.Nil(t, tax.Find(""))
}

func TestTaxonomyWalk_NilSafe(t *testing.T) {
	var tax *Taxonomy
	tax.Walk(func(string, *CategoryNode) {
		t.Fatal("visitor should not be called on nil taxonomy")
	})

	empty := &Taxonomy{}
	empty.Walk(func(string, *CategoryNode) {
		t.Fatal("visitor should not be called on empty taxonomy")
	})
}
