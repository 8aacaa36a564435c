package assetrow

import (
	"fmt"
	"regexp"
	"strings"

	gcperrors "gcpath/internal/errors"
)

const (
	folderBaseQuery = "SELECT name, resource.data.displayName, resource.data.parent, ancestors " +
		"FROM `cloudresourcemanager_googleapis_com_Folder` " +
		"WHERE resource.data.lifecycleState = 'ACTIVE'"

	projectBaseQuery = "SELECT name, resource.data.projectNumber, resource.data.projectId, " +
		"resource.data.parent, ancestors " +
		"FROM `cloudresourcemanager_googleapis_com_Project` " +
		"WHERE resource.data.lifecycleState = 'ACTIVE'"
)

// filterValueRe constrains filter values to well-formed resource names.
// QueryAssets accepts a single SQL string with no bind parameters, so the
// validation is what makes interpolation injection-safe.
var filterValueRe = regexp.MustCompile(`^(organizations|folders|projects)/[A-Za-z0-9_-]+$`)

// BuildFolderQuery returns the folder statement. parentFilter restricts to
// direct children of one parent; ancestorsFilter restricts to descendants
// of one ancestor, excluding the ancestor itself (the asset index lists a
// folder among its own ancestors). The filters are mutually exclusive;
// parentFilter wins when both are set. Neither means every active folder
// under the organization.
func BuildFolderQuery(parentFilter, ancestorsFilter string) (string, error) {
	switch {
	case parentFilter != "":
		if err := validateFilterValue(parentFilter); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s AND resource.data.parent = '%s'", folderBaseQuery, parentFilter), nil
	case ancestorsFilter != "":
		if err := validateFilterValue(ancestorsFilter); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s AND '%s' IN UNNEST(ancestors) AND name != '%s%s'",
			folderBaseQuery, ancestorsFilter, assetNamePrefix, ancestorsFilter), nil
	default:
		return folderBaseQuery, nil
	}
}

// BuildProjectQuery returns the project statement. The project parent is a
// STRUCT, so the direct-children filter matches on its id component.
func BuildProjectQuery(parentFilter, ancestorsFilter string) (string, error) {
	switch {
	case parentFilter != "":
		if err := validateFilterValue(parentFilter); err != nil {
			return "", err
		}
		parentID := parentFilter[strings.LastIndex(parentFilter, "/")+1:]
		return fmt.Sprintf("%s AND resource.data.parent.id = '%s'", projectBaseQuery, parentID), nil
	case ancestorsFilter != "":
		if err := validateFilterValue(ancestorsFilter); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s AND '%s' IN UNNEST(ancestors)", projectBaseQuery, ancestorsFilter), nil
	default:
		return projectBaseQuery, nil
	}
}

func validateFilterValue(value string) error {
	if !filterValueRe.MatchString(value) {
		return gcperrors.New(gcperrors.QueryInvalid, "invalid filter resource name %q", value)
	}
	return nil
}
