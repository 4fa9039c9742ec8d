package types

// PathSeparator joins category names into a hierarchical label path.
// Gmail renders "Parent/Child" as nested labels; Outlook folders nest
// natively and the path is split on this separator during provisioning.
const PathSeparator = "/"

// CategoryNode is a single node in a business label taxonomy.
// Children are ordered; the order is the provisioning sort order.
type CategoryNode struct {
	Name     string          `json:"name"`
	Color    string          `json:"color,omitempty"`
	Dynamic  bool            `json:"dynamic,omitempty"` // generated from team data, not the base tree
	Children []*CategoryNode `json:"children,omitempty"`
}

// Taxonomy is the full label tree for one business, rooted at a single
// top-level node (e.g. "FloWorx").
type Taxonomy struct {
	Industry string        `json:"industry"`
	Root     *CategoryNode `json:"root"`
}

// Walk visits every node depth-first, parents before children.
// The visitor receives the node and its full path.
func (t *Taxonomy) Walk(visit func(path string, node *CategoryNode)) {
	if t == nil || t.Root == nil {
		return
	}
	var walk func(prefix string, n *CategoryNode)
	walk = func(prefix string, n *CategoryNode) {
		path := n.Name
		if prefix != "" {
			path = prefix + PathSeparator + n.Name
		}
		visit(path, n)
		for _, child := range n.Children {
			walk(path, child)
		}
	}
	walk("", t.Root)
}

// Paths returns every label path in the taxonomy in provisioning order.
func (t *Taxonomy) Paths() []string {
	var paths []string
	t.Walk(func(path string, _ *CategoryNode) {
		paths = append(paths, path)
	})
	return paths
}

// Find returns the node at the given path, or nil if the path does not exist.
func (t *Taxonomy) Find(path string) *CategoryNode {
	var found *CategoryNode
	t.Walk(func(p string, n *CategoryNode) {
		if p == path {
			found = n
		}
	})
	return found
}
