// ABOUTME: Builds a folder tree from saved scripts' "/"-delimited folder paths
// ABOUTME: Used by the script browser, `scripts list --tree` and the save dialog

package scripttree

import (
	"sort"
	"strings"

	"github.com/nigelgwork/ignition-module-python3-sub000/internal/client"
)

// RootName labels the root folder
const RootName = "Scripts"

// Node is a folder or a script. Script is nil for folders.
type Node struct {
	Name     string
	Path     string
	Script   *client.ScriptMetadata
	Children []*Node
}

// IsFolder reports whether the node is a folder
func (n *Node) IsFolder() bool {
	return n.Script == nil
}

// Row is one visible line of a flattened tree
type Row struct {
	Node  *Node
	Depth int
}

// SplitPath splits a folder path into segments, dropping empty ones.
// "", "/" and "  " all mean the root folder.
func SplitPath(folderPath string) []string {
	var parts []string
	for _, p := range strings.Split(folderPath, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// CleanPath normalizes a folder path: no empty segments, no outer slashes
func CleanPath(folderPath string) string {
	return strings.Join(SplitPath(folderPath), "/")
}

// Build arranges scripts into a tree. Folders sort before scripts, both by
// name, case-insensitively.
func Build(scripts []client.ScriptMetadata) *Node {
	root := &Node{Name: RootName}
	folders := map[string]*Node{"": root}

	for i := range scripts {
		s := scripts[i]
		parent := folderFor(root, folders, s.FolderPath)
		parent.Children = append(parent.Children, &Node{
			Name:   s.Name,
			Path:   parent.Path,
			Script: &s,
		})
	}

	sortTree(root)
	return root
}

// folderFor returns the folder node for a path, creating missing ancestors
func folderFor(root *Node, folders map[string]*Node, folderPath string) *Node {
	key := CleanPath(folderPath)
	if n, ok := folders[key]; ok {
		return n
	}

	parent := root
	current := ""
	for _, part := range SplitPath(folderPath) {
		if current != "" {
			current += "/"
		}
		current += part

		n, ok := folders[current]
		if !ok {
			n = &Node{Name: part, Path: current}
			parent.Children = append(parent.Children, n)
			folders[current] = n
		}
		parent = n
	}
	return parent
}

func sortTree(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		if c.IsFolder() {
			sortTree(c)
		}
	}
}

// Flatten lists the visible rows depth-first. The root itself is not included.
// A folder's children are listed only when expanded(folder.Path) is true;
// a nil expanded func expands everything.
func (n *Node) Flatten(expanded func(path string) bool) []Row {
	var rows []Row
	var walk func(node *Node, depth int)
	walk = func(node *Node, depth int) {
		for _, c := range node.Children {
			rows = append(rows, Row{Node: c, Depth: depth})
			if c.IsFolder() && (expanded == nil || expanded(c.Path)) {
				walk(c, depth+1)
			}
		}
	}
	walk(n, 0)
	return rows
}

// Find returns the script node with the given name, or nil
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if !c.IsFolder() && c.Name == name {
			return c
		}
		if c.IsFolder() {
			if found := c.Find(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// Count returns the number of folders and scripts below n
func (n *Node) Count() (folders, scripts int) {
	for _, c := range n.Children {
		if c.IsFolder() {
			folders++
			f, s := c.Count()
			folders += f
			scripts += s
		} else {
			scripts++
		}
	}
	return folders, scripts
}

// FolderPaths returns every distinct folder path, including ancestors, sorted
func FolderPaths(scripts []client.ScriptMetadata) []string {
	seen := map[string]bool{}
	for _, s := range scripts {
		current := ""
		for _, part := range SplitPath(s.FolderPath) {
			if current != "" {
				current += "/"
			}
			current += part
			seen[current] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
