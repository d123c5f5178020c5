// Package navigation prunes the console menu to what the actor may see.
package navigation

import "github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"

// Node is one menu entry. A node with children is a group whose visibility
// is derived from its children.
type Node struct {
	Name               string          `yaml:"name" json:"name"`
	Path               string          `yaml:"path,omitempty" json:"path,omitempty"`
	RequiredPermission rbac.Permission `yaml:"permission,omitempty" json:"requiredPermission,omitempty"`
	Children           []Node          `yaml:"children,omitempty" json:"children,omitempty"`
}

// IsGroup reports whether the node has children.
func (n Node) IsGroup() bool {
	return len(n.Children) > 0
}

// Permission is the capability a leaf requires; it defaults to the name.
func (n Node) Permission() rbac.Permission {
	if n.RequiredPermission != "" {
		return n.RequiredPermission
	}
	return rbac.Permission(n.Name)
}

// Filter returns the nodes visible to identity, preserving source order.
// Wildcard roles get the tree unchanged. Leaves survive only when their
// permission is held; groups survive only when a child does.
func Filter(tree []Node, identity rbac.Identity) []Node {
	if identity.Role.IsWildcard() {
		return tree
	}
	return filter(tree, identity.Permissions)
}

func filter(nodes []Node, perms rbac.PermissionSet) []Node {
	var out []Node
	for _, n := range nodes {
		if n.IsGroup() {
			children := filter(n.Children, perms)
			if len(children) == 0 {
				continue
			}
			n.Children = children
			out = append(out, n)
			continue
		}
		if perms.Has(n.Permission()) {
			out = append(out, n)
		}
	}
	return out
}

// Paths flattens the tree into leaf paths in order.
func Paths(tree []Node) []string {
	var out []string
	for _, n := range tree {
		if n.IsGroup() {
			out = append(out, Paths(n.Children)...)
			continue
		}
		if n.Path != "" {
			out = append(out, n.Path)
		}
	}
	return out
}
