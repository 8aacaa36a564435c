// Package loader assembles the resource hierarchy from Google Cloud APIs.
//
// Two strategies produce the same shape. The direct strategy walks the
// Resource Manager APIs recursively, one list call per folder. The asset
// strategy issues one bulk SQL query per resource kind against the Cloud
// Asset index, then repairs the ancestor chains the index reports
// unreliably under scoped filters.
package loader

import (
	"context"
	"strings"

	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"

	"gcpath/internal/assetrow"
	gcperrors "gcpath/internal/errors"
	"gcpath/internal/gcp"
	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

// Options controls one assembly run.
type Options struct {
	// DisplayNames restricts assembly to organizations whose display name
	// is listed. Empty means every visible organization.
	DisplayNames []string

	// UseAssetAPI selects the bulk asset-index strategy over per-folder
	// Resource Manager recursion.
	UseAssetAPI bool

	// Scope restricts the load to one folder's subtree instead of whole
	// organizations. Must be a folders/N resource name when set.
	Scope string

	// Recursive loads all descendants of Scope rather than only its direct
	// children. Ignored without Scope.
	Recursive bool
}

// Loader assembles hierarchies. Listing failures on individual
// organizations are logged and skipped so one inaccessible organization
// does not abort the whole inventory.
type Loader struct {
	lister  gcp.ResourceLister
	querier gcp.AssetQuerier
	log     *logging.Logger
}

// New returns a Loader over the given API surfaces.
func New(lister gcp.ResourceLister, querier gcp.AssetQuerier, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Discard()
	}
	return &Loader{lister: lister, querier: querier, log: log}
}

// Load assembles the hierarchy according to opts.
func (l *Loader) Load(ctx context.Context, opts Options) (*hierarchy.Hierarchy, error) {
	// Assembly is best effort from here down: a backend that denies or
	// drops the search yields an empty inventory, not a failed command.
	orgs, err := l.lister.SearchOrganizations(ctx)
	if err != nil {
		if gcperrors.IsPermissionDenied(err) {
			l.log.Warn("organization search denied, continuing without organizations", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			l.log.Error("organization search failed, continuing without organizations", map[string]interface{}{
				"error": err.Error(),
			})
		}
		orgs = nil
	}

	var nodes []*hierarchy.OrganizationNode
	for _, org := range orgs {
		if !matchDisplayName(opts.DisplayNames, org.GetDisplayName()) {
			continue
		}
		node := hierarchy.NewOrganizationNode(org.GetName(), org.GetDisplayName(), l.log)
		nodes = append(nodes, node)
	}

	if opts.UseAssetAPI {
		return l.loadViaAssets(ctx, nodes, opts)
	}
	return l.loadViaResourceManager(ctx, nodes, opts)
}

// loadViaResourceManager is the direct strategy: recursive folder listing
// plus one project search resolved against the loaded folders.
func (l *Loader) loadViaResourceManager(ctx context.Context, nodes []*hierarchy.OrganizationNode, opts Options) (*hierarchy.Hierarchy, error) {
	for _, node := range nodes {
		root := node.Name
		if opts.Scope != "" {
			l.loadScopeFolder(ctx, node, opts.Scope)
			scopeFolder, ok := node.Folders[opts.Scope]
			if !ok {
				continue
			}
			l.listFoldersInto(ctx, node, scopeFolder.Name, scopeFolder.Ancestors, opts.Recursive)
			continue
		}
		l.listFoldersInto(ctx, node, root, []string{root}, true)
	}

	projects, err := l.lister.SearchProjects(ctx)
	if err != nil {
		if gcperrors.IsPermissionDenied(err) {
			l.log.Warn("project search denied", map[string]interface{}{"error": err.Error()})
		} else {
			l.log.Error("project search failed, continuing without projects", map[string]interface{}{
				"error": err.Error(),
			})
		}
		projects = nil
	}

	var assembled []*hierarchy.Project
	for _, p := range projects {
		project := l.resolveProject(nodes, p.GetName(), p.GetProjectId(), p.GetDisplayName(), p.GetParent())
		if opts.Scope != "" && !projectInScope(project, opts.Scope, opts.Recursive) {
			continue
		}
		assembled = append(assembled, project)
	}

	return hierarchy.New(nodes, assembled), nil
}

// loadViaAssets is the bulk strategy: per-organization SQL queries against
// the asset index, ancestor repair, and a direct-listing fallback for
// projects living outside any organization.
func (l *Loader) loadViaAssets(ctx context.Context, nodes []*hierarchy.OrganizationNode, opts Options) (*hierarchy.Hierarchy, error) {
	parentFilter, ancestorsFilter := scopeFilters(opts)

	// Statement construction validates the scope filter; a malformed scope
	// is a caller mistake and fails before any query is sent.
	folderStmt, err := assetrow.BuildFolderQuery(parentFilter, ancestorsFilter)
	if err != nil {
		return nil, err
	}
	projectStmt, err := assetrow.BuildProjectQuery(parentFilter, ancestorsFilter)
	if err != nil {
		return nil, err
	}

	var assembled []*hierarchy.Project
	for _, node := range nodes {
		// One inaccessible or flaky organization must not abort the rest
		// of the inventory.
		if err := l.queryFolders(ctx, node, folderStmt); err != nil {
			l.log.Warn("folder query failed, skipping organization", map[string]interface{}{
				"organization": node.Name,
				"error":        err.Error(),
			})
			continue
		}
		if opts.Scope != "" {
			l.loadScopeFolder(ctx, node, opts.Scope)
		}
		FixFolderAncestors(node, l.log)

		projects, err := l.queryProjects(ctx, node, projectStmt)
		if err != nil {
			l.log.Warn("project query failed, skipping organization", map[string]interface{}{
				"organization": node.Name,
				"error":        err.Error(),
			})
			continue
		}
		assembled = append(assembled, projects...)
	}

	if opts.Scope == "" {
		assembled = append(assembled, l.loadOrganizationlessProjects(ctx, assembled)...)
	}

	return hierarchy.New(nodes, assembled), nil
}

// listFoldersInto lists folders under parent into the node, recursing when
// asked. Chains are built parent-first, so every child chain is the child
// prepended to its parent's chain.
func (l *Loader) listFoldersInto(ctx context.Context, node *hierarchy.OrganizationNode, parent string, parentChain []string, recurse bool) {
	folders, err := l.lister.ListFolders(ctx, parent)
	if err != nil {
		if gcperrors.IsPermissionDenied(err) {
			l.log.Warn("folder listing denied", map[string]interface{}{
				"parent": parent,
				"error":  err.Error(),
			})
			return
		}
		l.log.Error("folder listing failed", map[string]interface{}{
			"parent": parent,
			"error":  err.Error(),
		})
		return
	}

	for _, folderProto := range folders {
		chain := append([]string{folderProto.GetName()}, parentChain...)
		folder := &hierarchy.Folder{
			Name:        folderProto.GetName(),
			DisplayName: folderProto.GetDisplayName(),
			Parent:      parent,
			Ancestors:   chain,
			Org:         node,
		}
		node.Folders[folder.Name] = folder
		if recurse {
			l.listFoldersInto(ctx, node, folder.Name, chain, true)
		}
	}
}

// queryFolders runs the bulk folder statement for one organization and
// populates its folder map.
func (l *Loader) queryFolders(ctx context.Context, node *hierarchy.OrganizationNode, statement string) error {
	rows, err := l.querier.QueryAssets(ctx, node.Name, statement)
	if err != nil {
		return err
	}

	for _, row := range rows {
		parsed, err := assetrow.ParseFolderRow(row)
		if err != nil {
			l.log.Warn("skipping malformed folder row", map[string]interface{}{
				"organization": node.Name,
				"error":        err.Error(),
			})
			continue
		}
		node.Folders[parsed.Name] = &hierarchy.Folder{
			Name:        parsed.Name,
			DisplayName: parsed.DisplayName,
			Parent:      parsed.Parent,
			Ancestors:   BuildFolderAncestors(parsed.Name, parsed.Ancestors, parsed.Parent, node.Folders, node.Name),
			Org:         node,
		}
	}
	return nil
}

// queryProjects runs the bulk project statement for one organization.
func (l *Loader) queryProjects(ctx context.Context, node *hierarchy.OrganizationNode, statement string) ([]*hierarchy.Project, error) {
	rows, err := l.querier.QueryAssets(ctx, node.Name, statement)
	if err != nil {
		return nil, err
	}

	var out []*hierarchy.Project
	for _, row := range rows {
		parsed, err := assetrow.ParseProjectRow(row)
		if err != nil {
			l.log.Warn("skipping malformed project row", map[string]interface{}{
				"organization": node.Name,
				"error":        err.Error(),
			})
			continue
		}

		project := &hierarchy.Project{
			Name:        parsed.Name,
			ProjectID:   parsed.ProjectID,
			DisplayName: parsed.DisplayName,
			Parent:      parsed.Parent,
			Org:         node,
		}
		if strings.HasPrefix(parsed.Parent, hierarchy.FolderPrefix) {
			if folder, ok := node.Folders[parsed.Parent]; ok {
				project.Folder = folder
			} else {
				l.log.Warn("project parent folder not loaded", map[string]interface{}{
					"project": parsed.Name,
					"parent":  parsed.Parent,
				})
			}
		}
		out = append(out, project)
	}
	return out, nil
}

// loadOrganizationlessProjects runs the direct project search and keeps
// projects whose parent is neither an organization nor a folder, skipping
// any identifier the asset queries already produced. The asset index only
// covers organization scopes, so these never appear in bulk results.
func (l *Loader) loadOrganizationlessProjects(ctx context.Context, existing []*hierarchy.Project) []*hierarchy.Project {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Name] = true
	}

	projects, err := l.lister.SearchProjects(ctx)
	if err != nil {
		l.log.Warn("organizationless project search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	var out []*hierarchy.Project
	for _, p := range projects {
		if seen[p.GetName()] {
			continue
		}
		parent := p.GetParent()
		if strings.HasPrefix(parent, hierarchy.OrganizationPrefix) || strings.HasPrefix(parent, hierarchy.FolderPrefix) {
			continue
		}
		out = append(out, &hierarchy.Project{
			Name:        p.GetName(),
			ProjectID:   p.GetProjectId(),
			DisplayName: projectDisplayName(p),
			Parent:      parent,
		})
	}
	return out
}

// resolveProject attaches a searched project to its organization and folder
// when they are loaded. A parent outside every loaded organization leaves
// the project organizationless.
func (l *Loader) resolveProject(nodes []*hierarchy.OrganizationNode, name, projectID, displayName, parent string) *hierarchy.Project {
	project := &hierarchy.Project{
		Name:        name,
		ProjectID:   projectID,
		DisplayName: displayName,
		Parent:      parent,
	}
	if project.DisplayName == "" {
		project.DisplayName = projectID
	}

	switch {
	case strings.HasPrefix(parent, hierarchy.OrganizationPrefix):
		for _, node := range nodes {
			if node.Name == parent {
				project.Org = node
				break
			}
		}
	case strings.HasPrefix(parent, hierarchy.FolderPrefix):
		for _, node := range nodes {
			if folder, ok := node.Folders[parent]; ok {
				project.Org = node
				project.Folder = folder
				break
			}
		}
	}
	return project
}

func projectDisplayName(p *resourcemanagerpb.Project) string {
	if p.GetDisplayName() != "" {
		return p.GetDisplayName()
	}
	return p.GetProjectId()
}

// projectInScope reports whether a resolved project belongs to the scoped
// subtree: directly under the scope folder, or under any descendant when
// recursive.
func projectInScope(p *hierarchy.Project, scope string, recursive bool) bool {
	if p.Folder == nil {
		return false
	}
	if p.Folder.Name == scope {
		return true
	}
	if !recursive {
		return false
	}
	for _, anc := range p.Folder.Ancestors {
		if anc == scope {
			return true
		}
	}
	return false
}

// scopeFilters maps Options onto the two mutually exclusive SQL filters.
func scopeFilters(opts Options) (parentFilter, ancestorsFilter string) {
	if opts.Scope == "" {
		return "", ""
	}
	if opts.Recursive {
		return "", opts.Scope
	}
	return opts.Scope, ""
}

func matchDisplayName(wanted []string, displayName string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if w == displayName {
			return true
		}
	}
	return false
}
