package hierarchy

// Project is a leaf resource. Org and Folder are non-owning back-references;
// a project with neither is organizationless, a real supported state for
// projects created outside any organization.
type Project struct {
	Name        string
	ProjectID   string
	DisplayName string
	Parent      string

	Org    *OrganizationNode
	Folder *Folder
}

// OrganizationlessSegment is the reserved pseudo-organization path segment
// for projects that belong to no organization.
const OrganizationlessSegment = "_"

// Path returns the project's display path. Organizationless projects live
// under the reserved //_/ prefix.
func (p *Project) Path() string {
	switch {
	case p.Folder != nil:
		return p.Folder.Path() + "/" + PathEscape(p.DisplayName)
	case p.Org != nil:
		return "//" + PathEscape(p.Org.DisplayName) + "/" + PathEscape(p.DisplayName)
	default:
		return "//" + OrganizationlessSegment + "/" + PathEscape(p.DisplayName)
	}
}
