// Package render turns an assembled hierarchy into the CLI output shapes:
// flat listings, tree views, and diagram sources.
package render

import (
	"sort"

	"gcpath/internal/hierarchy"
)

// Item is one listing row: a display path and the resource name behind it.
type Item struct {
	Path         string
	ResourceName string
}

// Listing flattens the hierarchy into sorted path rows. Recursive mode
// lists every folder and project; otherwise only organizations and
// projects outside folders appear, which keeps the top level readable for
// accounts with deep trees.
func Listing(h *hierarchy.Hierarchy, recursive bool) []Item {
	var items []Item

	for _, org := range h.Organizations {
		items = append(items, Item{Path: org.Path(), ResourceName: org.Name})
		if recursive {
			for _, f := range org.Folders {
				items = append(items, Item{Path: f.Path(), ResourceName: f.Name})
			}
		}
	}

	for _, p := range h.Projects {
		if recursive || p.Folder == nil {
			items = append(items, Item{Path: p.Path(), ResourceName: p.Name})
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items
}

// projectsByParent groups projects under their parent resource name.
func projectsByParent(h *hierarchy.Hierarchy) map[string][]*hierarchy.Project {
	grouped := make(map[string][]*hierarchy.Project)
	for _, p := range h.Projects {
		grouped[p.Parent] = append(grouped[p.Parent], p)
	}
	for _, projects := range grouped {
		sort.Slice(projects, func(i, j int) bool {
			return projects[i].DisplayName < projects[j].DisplayName
		})
	}
	return grouped
}

// childFolders returns the direct child folders of parentName within one
// organization, sorted by display name. Top-level folders have a
// single-entry ancestor chain below the organization; deeper folders name
// their parent at chain index 1.
func childFolders(org *hierarchy.OrganizationNode, parentName string) []*hierarchy.Folder {
	var out []*hierarchy.Folder
	for _, f := range org.Folders {
		switch {
		case f.Parent != "":
			if f.Parent == parentName {
				out = append(out, f)
			}
		case len(f.Ancestors) > 1 && f.Ancestors[1] == parentName:
			out = append(out, f)
		case len(f.Ancestors) == 1 && parentName == org.Name:
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}
