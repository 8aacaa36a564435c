package hierarchy

import "strings"

// Folder is a container node. Ancestors is the ordered resource-name chain
// from the folder itself up to and including the owning organization:
// Ancestors[0] == Name, Ancestors[len-1] is an organizations/ name.
type Folder struct {
	Name        string
	DisplayName string
	Parent      string
	Ancestors   []string

	// Org is a non-owning back-reference used for lookups only.
	Org *OrganizationNode
}

// Path reconstructs the folder's display path by walking the ancestor chain
// from the organization end down to the folder itself. An ancestor missing
// from the organization's folder map is skipped with a diagnostic rather
// than failing the whole computation: scoped loads materialize only part of
// the tree and the remaining segments are still useful.
func (f *Folder) Path() string {
	var b strings.Builder
	b.WriteString("//")
	b.WriteString(PathEscape(f.Org.DisplayName))

	if len(f.Ancestors) < 2 {
		return b.String()
	}
	for i := len(f.Ancestors) - 2; i >= 0; i-- {
		name := f.Ancestors[i]
		ancestor, ok := f.Org.Folders[name]
		if !ok {
			f.Org.warn("ancestor not found in folder map", map[string]interface{}{
				"folder":   f.Name,
				"ancestor": name,
			})
			continue
		}
		b.WriteString("/")
		b.WriteString(PathEscape(ancestor.DisplayName))
	}
	return b.String()
}

// isPathMatch reports whether the folder sits exactly at the given segment
// sequence. The chain must be exactly one longer than the segments (the
// organization terminates it), and the ancestor at chain index N-i-1 must be
// a mapped folder whose display name equals segments[i]. The index
// arithmetic inverts ordering: segments run root-to-leaf, the chain
// leaf-to-root. Unmapped ancestors are non-matches, not errors.
func (f *Folder) isPathMatch(segments []string) bool {
	if len(segments)+1 != len(f.Ancestors) {
		return false
	}
	for i, seg := range segments {
		name := f.Ancestors[len(segments)-i-1]
		ancestor, ok := f.Org.Folders[name]
		if !ok {
			return false
		}
		if ancestor.DisplayName != seg {
			return false
		}
	}
	return true
}
