package render

import (
	"sort"

	gotree "github.com/disiqueira/gotree/v3"

	"gcpath/internal/hierarchy"
)

// TreeOptions controls tree rendering. Level zero means unlimited depth;
// level N stops after N levels below each organization.
type TreeOptions struct {
	Level   int
	ShowIDs bool
}

const organizationlessLabel = "(organizationless)"

// Tree renders the hierarchy as an indented tree. Organizations come
// first; projects outside any organization are grouped under a trailing
// pseudo-node.
func Tree(h *hierarchy.Hierarchy, opts TreeOptions) string {
	root := gotree.New("GCP Hierarchy")
	grouped := projectsByParent(h)

	for _, org := range h.Organizations {
		orgNode := root.Add(nodeLabel(org.DisplayName, org.Name, opts.ShowIDs))
		addProjects(orgNode, grouped, org.Name, 1, opts)
		addFolders(orgNode, org, grouped, org.Name, 1, opts)
	}

	orgless := h.OrganizationlessProjects()
	if len(orgless) > 0 {
		orglessNode := root.Add(organizationlessLabel)
		for _, p := range sortedByDisplayName(orgless) {
			orglessNode.Add(nodeLabel(p.DisplayName, p.Name, opts.ShowIDs))
		}
	}

	return root.Print()
}

func addFolders(node gotree.Tree, org *hierarchy.OrganizationNode, grouped map[string][]*hierarchy.Project, parentName string, depth int, opts TreeOptions) {
	if opts.Level > 0 && depth > opts.Level {
		return
	}
	for _, f := range childFolders(org, parentName) {
		sub := node.Add(nodeLabel(f.DisplayName, f.Name, opts.ShowIDs))
		addProjects(sub, grouped, f.Name, depth+1, opts)
		addFolders(sub, org, grouped, f.Name, depth+1, opts)
	}
}

func addProjects(node gotree.Tree, grouped map[string][]*hierarchy.Project, parentName string, depth int, opts TreeOptions) {
	if opts.Level > 0 && depth > opts.Level {
		return
	}
	for _, p := range grouped[parentName] {
		node.Add(nodeLabel(p.DisplayName, p.Name, opts.ShowIDs))
	}
}

func nodeLabel(displayName, resourceName string, showIDs bool) string {
	if showIDs {
		return displayName + " (" + resourceName + ")"
	}
	return displayName
}

func sortedByDisplayName(projects []*hierarchy.Project) []*hierarchy.Project {
	out := make([]*hierarchy.Project, len(projects))
	copy(out, projects)
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}
