// Package taxonomy builds the hierarchical label tree for a business.
// There is exactly one generator; every consumer (provisioning, the
// classifier, workflow injection) derives its category set from the same
// tree so label paths can never drift between components.
package taxonomy

import (
	"sort"
	"strings"

	"github.com/floworx/triage-agent/internal/types"
)

// RootName is the top-level label every managed category lives under.
const RootName = "FloWorx"

// DefaultCategory is where unclassifiable mail lands. It exists in every
// generated taxonomy, so falling back to it is always safe.
const DefaultCategory = RootName + "/Misc"

// ensureChild returns the existing child with the given name (case
// insensitive) or appends a new one.
func ensureChild(parent *types.CategoryNode, name string) *types.CategoryNode {
	for _, c := range parent.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	child := &types.CategoryNode{Name: name}
	parent.Children = append(parent.Children, child)
	return child
}

// findChild returns the child with the given name (case insensitive) or nil.
func findChild(parent *types.CategoryNode, name string) *types.CategoryNode {
	for _, c := range parent.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// sortDynamic sorts only the dynamic children of a node by name, keeping
// base children in their defined order ahead of them.
func sortDynamic(parent *types.CategoryNode) {
	base := parent.Children[:0:0]
	var dynamic []*types.CategoryNode
	for _, c := range parent.Children {
		if c.Dynamic {
			dynamic = append(dynamic, c)
		} else {
			base = append(base, c)
		}
	}
	sort.Slice(dynamic, func(i, j int) bool {
		return strings.ToLower(dynamic[i].Name) < strings.ToLower(dynamic[j].Name)
	})
	parent.Children = append(base, dynamic...)
}

// MergeCustom adds user-defined top-level categories to the taxonomy.
// Names matching an existing child of the root (case insensitive) are
// ignored rather than duplicated.
func MergeCustom(tax *types.Taxonomy, custom []string) error {
	for _, name := range custom {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyCategoryName
		}
		if findChild(tax.Root, name) != nil {
			continue
		}
		tax.Root.Children = append(tax.Root.Children, &types.CategoryNode{
			Name:    name,
			Color:   ColorGray,
			Dynamic: true,
		})
	}
	return nil
}
