// Package hierarchy models the Google Cloud resource hierarchy and resolves
// between display paths (//org/folder/project) and resource names
// (folders/123, projects/456).
package hierarchy

import (
	gcperrors "gcpath/internal/errors"
	"gcpath/internal/logging"
)

// OrganizationNode is the root of one hierarchy tree. Folders holds every
// folder anywhere under the organization, keyed by resource name, not just
// direct children.
type OrganizationNode struct {
	Name        string
	DisplayName string
	Folders     map[string]*Folder

	log *logging.Logger
}

// NewOrganizationNode creates an empty organization node. The logger receives
// path-computation diagnostics for partially loaded hierarchies; nil is
// allowed and silences them.
func NewOrganizationNode(name, displayName string, log *logging.Logger) *OrganizationNode {
	return &OrganizationNode{
		Name:        name,
		DisplayName: displayName,
		Folders:     make(map[string]*Folder),
		log:         log,
	}
}

// Path returns the organization's display path.
func (o *OrganizationNode) Path() string {
	return "//" + PathEscape(o.DisplayName)
}

// Paths returns the display paths of every folder under the organization.
func (o *OrganizationNode) Paths() []string {
	paths := make([]string, 0, len(o.Folders))
	for _, f := range o.Folders {
		paths = append(paths, f.Path())
	}
	return paths
}

// GetResourceName finds the unique folder whose ancestor chain matches the
// given segment sequence (already relative to the organization, unescaped).
// Zero matches is a NotFound error; more than one is an AmbiguousMatch,
// which is legitimate data, not a bug: display names are not unique.
func (o *OrganizationNode) GetResourceName(segments []string) (string, error) {
	if len(segments) == 0 {
		return o.Name, nil
	}

	var matches []*Folder
	for _, f := range o.Folders {
		if f.isPathMatch(segments) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return "", gcperrors.New(gcperrors.NotFound, "no folder matches path segments %v in %q", segments, o.DisplayName)
	case 1:
		return matches[0].Name, nil
	default:
		return "", gcperrors.New(gcperrors.AmbiguousMatch, "%d folders match path segments %v in %q", len(matches), segments, o.DisplayName)
	}
}

func (o *OrganizationNode) warn(message string, fields map[string]interface{}) {
	if o.log != nil {
		o.log.Warn(message, fields)
	}
}
