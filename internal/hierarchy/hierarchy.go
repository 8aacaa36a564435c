package hierarchy

import (
	"strings"

	gcperrors "gcpath/internal/errors"
)

// Resource name prefixes for the three supported kinds.
const (
	OrganizationPrefix = "organizations/"
	FolderPrefix       = "folders/"
	ProjectPrefix      = "projects/"
)

// Hierarchy is the aggregate root: all loaded organizations plus a flat list
// of every project, including organizationless ones. Lookup indices are
// rebuilt eagerly on construction; entities are never mutated in place, a
// changed remote state means a fresh assembly or cache refresh.
type Hierarchy struct {
	Organizations []*OrganizationNode
	Projects      []*Project

	orgIndex     map[string]*OrganizationNode
	folderIndex  map[string]*Folder
	projectIndex map[string]*Project
}

// New builds a Hierarchy and its lookup indices from assembled entities.
func New(organizations []*OrganizationNode, projects []*Project) *Hierarchy {
	h := &Hierarchy{
		Organizations: organizations,
		Projects:      projects,
		orgIndex:      make(map[string]*OrganizationNode, len(organizations)),
		folderIndex:   make(map[string]*Folder),
		projectIndex:  make(map[string]*Project, len(projects)),
	}
	for _, org := range organizations {
		h.orgIndex[org.Name] = org
		for name, f := range org.Folders {
			h.folderIndex[name] = f
		}
	}
	for _, p := range projects {
		h.projectIndex[p.Name] = p
	}
	return h
}

// Folders returns every folder across all organizations.
func (h *Hierarchy) Folders() []*Folder {
	folders := make([]*Folder, 0, len(h.folderIndex))
	for _, org := range h.Organizations {
		for _, f := range org.Folders {
			folders = append(folders, f)
		}
	}
	return folders
}

// Organization returns the organization with the given resource name.
func (h *Hierarchy) Organization(name string) (*OrganizationNode, bool) {
	org, ok := h.orgIndex[name]
	return org, ok
}

// Folder returns the folder with the given resource name.
func (h *Hierarchy) Folder(name string) (*Folder, bool) {
	f, ok := h.folderIndex[name]
	return f, ok
}

// Project returns the project with the given resource name.
func (h *Hierarchy) Project(name string) (*Project, bool) {
	p, ok := h.projectIndex[name]
	return p, ok
}

// GetResourceName resolves a display path to a resource name. The reserved
// organization segment "_" routes to organizationless-project search. Folder
// matching runs first; on a NotFound or AmbiguousMatch the projects of the
// organization are scanned for an exact path match, since projects are
// leaves the folder-matching algorithm never indexes.
func (h *Hierarchy) GetResourceName(path string) (string, error) {
	orgSegment, segments, err := ParsePath(path)
	if err != nil {
		return "", err
	}

	if orgSegment == OrganizationlessSegment {
		for _, p := range h.Projects {
			if p.Org == nil && p.Path() == path {
				return p.Name, nil
			}
		}
		return "", gcperrors.New(gcperrors.NotFound, "project %q not found in organizationless scope", path)
	}

	var orgNode *OrganizationNode
	for _, org := range h.Organizations {
		if org.DisplayName == orgSegment {
			orgNode = org
			break
		}
	}
	if orgNode == nil {
		return "", gcperrors.New(gcperrors.NotFound, "organization %q not found", orgSegment)
	}

	if len(segments) == 0 {
		return orgNode.Name, nil
	}

	name, matchErr := orgNode.GetResourceName(segments)
	if matchErr == nil {
		return name, nil
	}

	for _, p := range h.Projects {
		if p.Org == orgNode && p.Path() == path {
			return p.Name, nil
		}
	}
	return "", matchErr
}

// GetPathByResourceName resolves a resource name to its display path via
// pure index lookup.
func (h *Hierarchy) GetPathByResourceName(resourceName string) (string, error) {
	switch {
	case strings.HasPrefix(resourceName, OrganizationPrefix):
		if org, ok := h.orgIndex[resourceName]; ok {
			return org.Path(), nil
		}
		return "", gcperrors.New(gcperrors.NotFound, "organization %q not found", resourceName)
	case strings.HasPrefix(resourceName, FolderPrefix):
		if f, ok := h.folderIndex[resourceName]; ok {
			return f.Path(), nil
		}
		return "", gcperrors.New(gcperrors.NotFound, "folder %q not found", resourceName)
	case strings.HasPrefix(resourceName, ProjectPrefix):
		if p, ok := h.projectIndex[resourceName]; ok {
			return p.Path(), nil
		}
		return "", gcperrors.New(gcperrors.NotFound, "project %q not found", resourceName)
	default:
		return "", gcperrors.New(gcperrors.UnsupportedResource, "unsupported resource name %q", resourceName)
	}
}

// OrganizationlessProjects returns projects outside any organization.
func (h *Hierarchy) OrganizationlessProjects() []*Project {
	var out []*Project
	for _, p := range h.Projects {
		if p.Org == nil {
			out = append(out, p)
		}
	}
	return out
}
