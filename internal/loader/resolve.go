package loader

import (
	"context"
	"strings"

	gcperrors "gcpath/internal/errors"
	"gcpath/internal/gcp"
	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

// ResolveAncestry derives the display path of a single resource by walking
// parent pointers upward with direct Get calls, no hierarchy assembly
// required. Permission denied on the topmost organization lookup degrades
// to a placeholder path built from the organization's numeric id; denied or
// missing resources anywhere else fail the walk. A chain that never reaches
// an organization resolves under the organizationless root.
func ResolveAncestry(ctx context.Context, lister gcp.ResourceLister, resourceName string, log *logging.Logger) (string, error) {
	if log == nil {
		log = logging.Discard()
	}

	var segments []string
	current := resourceName

	for {
		switch {
		case strings.HasPrefix(current, hierarchy.OrganizationPrefix):
			org, err := lister.GetOrganization(ctx, current)
			if err != nil {
				if gcperrors.IsPermissionDenied(err) {
					placeholder := strings.TrimPrefix(current, hierarchy.OrganizationPrefix)
					log.Warn("organization lookup denied, using numeric id in path", map[string]interface{}{
						"organization": current,
					})
					return joinPath(placeholder, segments), nil
				}
				return "", err
			}
			return joinPath(org.GetDisplayName(), segments), nil

		case strings.HasPrefix(current, hierarchy.FolderPrefix):
			folder, err := lister.GetFolder(ctx, current)
			if err != nil {
				return "", err
			}
			segments = append([]string{folder.GetDisplayName()}, segments...)
			if folder.GetParent() == "" {
				return joinPath(hierarchy.OrganizationlessSegment, segments), nil
			}
			current = folder.GetParent()

		case strings.HasPrefix(current, hierarchy.ProjectPrefix):
			project, err := lister.GetProject(ctx, current)
			if err != nil {
				return "", err
			}
			display := project.GetDisplayName()
			if display == "" {
				display = project.GetProjectId()
			}
			segments = append([]string{display}, segments...)
			parent := project.GetParent()
			if !strings.HasPrefix(parent, hierarchy.OrganizationPrefix) && !strings.HasPrefix(parent, hierarchy.FolderPrefix) {
				return joinPath(hierarchy.OrganizationlessSegment, segments), nil
			}
			current = parent

		default:
			return "", gcperrors.New(gcperrors.UnsupportedResource, "unsupported resource name %q", current)
		}
	}
}

// joinPath renders "//" plus the escaped root segment and escaped children.
// The organizationless root segment is a literal underscore and needs no
// escaping, but escaping it is a no-op anyway.
func joinPath(root string, segments []string) string {
	var b strings.Builder
	b.WriteString("//")
	b.WriteString(hierarchy.PathEscape(root))
	for _, seg := range segments {
		b.WriteString("/")
		b.WriteString(hierarchy.PathEscape(seg))
	}
	return b.String()
}
