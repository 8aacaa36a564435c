package loader

import (
	"context"
	"strings"

	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

// BuildFolderAncestors produces a complete self-to-root chain from raw
// ancestor data, which may be empty, partial, or complete depending on the
// query filter that produced it. A raw list already starting with the folder
// itself is trusted; otherwise the folder is prepended. A chain that is
// still trivial is rebuilt by walking parent pointers, splicing in the
// already-known chain of any loaded parent. The result always terminates at
// the organization, though it may be short when parents are not loaded yet;
// FixFolderAncestors finishes the job once the whole batch is in.
func BuildFolderAncestors(name string, rawAncestors []string, parent string, loaded map[string]*hierarchy.Folder, orgName string) []string {
	var ancestors []string
	if len(rawAncestors) == 0 || rawAncestors[0] != name {
		ancestors = append([]string{name}, rawAncestors...)
	} else {
		ancestors = append(ancestors, rawAncestors...)
	}

	if len(ancestors) == 1 {
		ancestors = []string{name}
		current := parent
		for current != "" && strings.HasPrefix(current, hierarchy.FolderPrefix) {
			ancestors = append(ancestors, current)
			parentFolder, ok := loaded[current]
			if !ok {
				ancestors = append(ancestors, orgName)
				break
			}
			for _, anc := range parentFolder.Ancestors {
				if anc != current && !contains(ancestors, anc) {
					ancestors = append(ancestors, anc)
				}
			}
			break
		}
		if len(ancestors) == 1 || !strings.HasPrefix(ancestors[len(ancestors)-1], hierarchy.OrganizationPrefix) {
			ancestors = append(ancestors, orgName)
		}
	}

	return ancestors
}

// FixFolderAncestors is the second repair pass. Bulk queries return reliable
// ancestor data only when unscoped, so once every folder of a batch is
// loaded, each folder with a folder parent gets its chain re-walked against
// the now-populated map. A chain that revisits an identifier is truncated
// with a diagnostic instead of looping.
func FixFolderAncestors(node *hierarchy.OrganizationNode, log *logging.Logger) {
	for _, folder := range node.Folders {
		if !strings.HasPrefix(folder.Parent, hierarchy.FolderPrefix) {
			continue
		}

		ancestors := []string{folder.Name}
		visited := map[string]bool{folder.Name: true}
		current := folder.Parent

		for current != "" && strings.HasPrefix(current, hierarchy.FolderPrefix) {
			if visited[current] {
				if log != nil {
					log.Warn("circular parent reference detected", map[string]interface{}{
						"folder": folder.Name,
						"parent": current,
					})
				}
				break
			}
			visited[current] = true
			ancestors = append(ancestors, current)

			parentFolder, ok := node.Folders[current]
			if !ok {
				break
			}
			current = parentFolder.Parent
		}

		if !strings.HasPrefix(ancestors[len(ancestors)-1], hierarchy.OrganizationPrefix) {
			ancestors = append(ancestors, node.Name)
		}

		if !equalStrings(ancestors, folder.Ancestors) {
			folder.Ancestors = ancestors
			if log != nil {
				log.Debug("repaired folder ancestors", map[string]interface{}{
					"folder":    folder.Name,
					"ancestors": strings.Join(ancestors, ","),
				})
			}
		}
	}
}

// loadScopeFolder fetches the scope folder of a scoped load and splices it
// into the folder map. Descendant-filtered results exclude the scope folder
// itself, but projects directly under it still need to resolve their folder
// reference. Failure is tolerated: the load continues without the splice.
func (l *Loader) loadScopeFolder(ctx context.Context, node *hierarchy.OrganizationNode, scope string) {
	if _, ok := node.Folders[scope]; ok {
		return
	}

	folderProto, err := l.lister.GetFolder(ctx, scope)
	if err != nil {
		l.log.Warn("could not load scope folder", map[string]interface{}{
			"folder": scope,
			"error":  err.Error(),
		})
		return
	}

	ancestors := []string{folderProto.GetName()}
	current := folderProto.GetParent()
	for current != "" && strings.HasPrefix(current, hierarchy.FolderPrefix) {
		ancestors = append(ancestors, current)
		if loaded, ok := node.Folders[current]; ok {
			for _, anc := range loaded.Ancestors {
				if anc != current && !contains(ancestors, anc) {
					ancestors = append(ancestors, anc)
				}
			}
			break
		}
		parentProto, err := l.lister.GetFolder(ctx, current)
		if err != nil {
			break
		}
		current = parentProto.GetParent()
	}
	if !strings.HasPrefix(ancestors[len(ancestors)-1], hierarchy.OrganizationPrefix) {
		ancestors = append(ancestors, node.Name)
	}

	node.Folders[folderProto.GetName()] = &hierarchy.Folder{
		Name:        folderProto.GetName(),
		DisplayName: folderProto.GetDisplayName(),
		Parent:      folderProto.GetParent(),
		Ancestors:   ancestors,
		Org:         node,
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
