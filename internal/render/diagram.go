package render

import (
	"strings"

	gcperrors "gcpath/internal/errors"
	"gcpath/internal/hierarchy"
)

// Diagram output formats.
const (
	FormatMermaid = "mermaid"
	FormatD2      = "d2"
)

// DiagramOptions controls diagram generation.
type DiagramOptions struct {
	Format  string
	Level   int
	ShowIDs bool
}

type diagramNode struct {
	id    string
	label string
}

type diagramEdge struct {
	parent string
	child  string
}

// Diagram renders the hierarchy as Mermaid or D2 source. Node ids derive
// from resource names; insertion order is preserved so output is stable
// for diffing.
func Diagram(h *hierarchy.Hierarchy, opts DiagramOptions) (string, error) {
	var nodes []diagramNode
	var edges []diagramEdge
	seen := make(map[string]bool)
	grouped := projectsByParent(h)

	addNode := func(id, label string) {
		if seen[id] {
			return
		}
		seen[id] = true
		nodes = append(nodes, diagramNode{id: id, label: label})
	}

	for _, org := range h.Organizations {
		orgID := sanitizeNodeID(org.Name)
		addNode(orgID, diagramLabel(org.Path(), org.Name, opts.ShowIDs))
		collectEdges(org, grouped, orgID, org.Name, 1, opts, addNode, &edges)
	}

	orgless := h.OrganizationlessProjects()
	if len(orgless) > 0 {
		addNode("organizationless", organizationlessLabel)
		for _, p := range sortedByDisplayName(orgless) {
			childID := sanitizeNodeID(p.Name)
			addNode(childID, diagramLabel(p.DisplayName, p.Name, opts.ShowIDs))
			edges = append(edges, diagramEdge{parent: "organizationless", child: childID})
		}
	}

	switch opts.Format {
	case FormatMermaid, "":
		return formatMermaid(nodes, edges), nil
	case FormatD2:
		return formatD2(nodes, edges), nil
	default:
		return "", gcperrors.New(gcperrors.UnsupportedResource, "unsupported diagram format %q", opts.Format)
	}
}

func collectEdges(org *hierarchy.OrganizationNode, grouped map[string][]*hierarchy.Project, parentID, parentName string, depth int, opts DiagramOptions, addNode func(id, label string), edges *[]diagramEdge) {
	if opts.Level > 0 && depth > opts.Level {
		return
	}

	for _, f := range childFolders(org, parentName) {
		childID := sanitizeNodeID(f.Name)
		addNode(childID, diagramLabel(f.DisplayName, f.Name, opts.ShowIDs))
		*edges = append(*edges, diagramEdge{parent: parentID, child: childID})
		collectEdges(org, grouped, childID, f.Name, depth+1, opts, addNode, edges)
	}

	for _, p := range grouped[parentName] {
		childID := sanitizeNodeID(p.Name)
		addNode(childID, diagramLabel(p.DisplayName, p.Name, opts.ShowIDs))
		*edges = append(*edges, diagramEdge{parent: parentID, child: childID})
	}
}

// sanitizeNodeID maps a resource name onto the alphanumeric-plus-underscore
// id space both Mermaid and D2 parse without quoting.
func sanitizeNodeID(resourceName string) string {
	replacer := strings.NewReplacer("/", "_", ".", "_", "-", "_")
	return replacer.Replace(resourceName)
}

func diagramLabel(display, resourceName string, showIDs bool) string {
	if showIDs {
		return display + " (" + resourceName + ")"
	}
	return display
}

func formatMermaid(nodes []diagramNode, edges []diagramEdge) string {
	lines := []string{"graph TD"}
	for _, n := range nodes {
		safeLabel := strings.ReplaceAll(n.label, `"`, "#quot;")
		lines = append(lines, "    "+n.id+`["`+safeLabel+`"]`)
	}
	for _, e := range edges {
		lines = append(lines, "    "+e.parent+" --> "+e.child)
	}
	return strings.Join(lines, "\n")
}

func formatD2(nodes []diagramNode, edges []diagramEdge) string {
	var lines []string
	for _, n := range nodes {
		lines = append(lines, n.id+`: "`+n.label+`"`)
	}
	for _, e := range edges {
		lines = append(lines, e.parent+" -> "+e.child)
	}
	return strings.Join(lines, "\n")
}
