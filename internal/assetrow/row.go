// Package assetrow parses Cloud Asset API query result rows and builds the
// SQL statements that produce them.
//
// QueryAssets returns BigQuery-shaped rows: a struct with one "f" field
// holding the cell list, each cell a struct wrapping its value under "v".
// Nested values (the project parent STRUCT, ancestor arrays) repeat the same
// wrapping one level down.
package assetrow

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	gcperrors "gcpath/internal/errors"
)

// assetNamePrefix is the fully-qualified API host prefix the asset index
// prepends to resource names.
const assetNamePrefix = "//cloudresourcemanager.googleapis.com/"

const (
	folderColumns  = 4
	projectColumns = 5
)

// FolderRow is one parsed folder result row.
type FolderRow struct {
	Name        string
	DisplayName string
	Parent      string
	Ancestors   []string
}

// ProjectRow is one parsed project result row.
type ProjectRow struct {
	Name        string
	ProjectID   string
	DisplayName string
	Parent      string
	Ancestors   []string
}

// CleanAssetName strips the asset index host prefix, normalizing to the
// short kind/id form.
func CleanAssetName(name string) string {
	return strings.TrimPrefix(name, assetNamePrefix)
}

// ExtractValue returns the inner value under "v" when the value is a
// wrapper struct exposing one, and the value itself otherwise.
func ExtractValue(v *structpb.Value) *structpb.Value {
	if v == nil {
		return nil
	}
	if sv := v.GetStructValue(); sv != nil {
		if inner, ok := sv.GetFields()["v"]; ok {
			return inner
		}
	}
	return v
}

// ExtractListValues unwraps a wrapped ancestor list into cleaned resource
// names. A non-list value yields nil.
func ExtractListValues(v *structpb.Value) []string {
	inner := ExtractValue(v)
	list := inner.GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		out = append(out, CleanAssetName(scalarString(ExtractValue(item))))
	}
	return out
}

// ParseParentStruct decodes the project parent STRUCT, encoded as
// {"v": {"f": [{"v": kind}, {"v": id}]}}, into "kinds/id" form. The kind
// arrives singular and is pluralized unless already plural. An absent or
// malformed struct yields the empty string.
func ParseParentStruct(v *structpb.Value) string {
	inner := ExtractValue(v)
	sv := inner.GetStructValue()
	if sv == nil {
		return ""
	}
	fVal, ok := sv.GetFields()["f"]
	if !ok {
		return ""
	}
	cells := fVal.GetListValue().GetValues()
	if len(cells) < 2 {
		return ""
	}

	kind := scalarString(ExtractValue(cells[0]))
	id := scalarString(ExtractValue(cells[1]))
	if kind == "" || id == "" {
		return ""
	}
	if !strings.HasSuffix(kind, "s") {
		kind += "s"
	}
	return kind + "/" + id
}

// ParseFolderRow parses one folder row. Expected columns: name,
// displayName, parent, ancestors. Missing name or display name is a parse
// error, not a silent skip.
func ParseFolderRow(row *structpb.Struct) (FolderRow, error) {
	cells, err := rowCells(row, folderColumns, "folder")
	if err != nil {
		return FolderRow{}, err
	}

	name := scalarString(ExtractValue(cells[0]))
	displayName := scalarString(ExtractValue(cells[1]))
	if name == "" || displayName == "" {
		return FolderRow{}, gcperrors.New(gcperrors.RowParseError, "folder row missing name or display name")
	}

	return FolderRow{
		Name:        CleanAssetName(name),
		DisplayName: displayName,
		Parent:      scalarString(ExtractValue(cells[2])),
		Ancestors:   ExtractListValues(cells[3]),
	}, nil
}

// ParseProjectRow parses one project row. Expected columns: name,
// projectNumber, projectId, parent (STRUCT), ancestors. The asset index
// carries no display name for projects, so the project id doubles as one.
func ParseProjectRow(row *structpb.Struct) (ProjectRow, error) {
	cells, err := rowCells(row, projectColumns, "project")
	if err != nil {
		return ProjectRow{}, err
	}

	name := scalarString(ExtractValue(cells[0]))
	projectID := scalarString(ExtractValue(cells[2]))
	if name == "" || projectID == "" {
		return ProjectRow{}, gcperrors.New(gcperrors.RowParseError, "project row missing name or project id")
	}

	return ProjectRow{
		Name:        CleanAssetName(name),
		ProjectID:   projectID,
		DisplayName: projectID,
		Parent:      ParseParentStruct(cells[3]),
		Ancestors:   ExtractListValues(cells[4]),
	}, nil
}

// rowCells validates the row wrapper and column count, returning the cells.
func rowCells(row *structpb.Struct, expected int, kind string) ([]*structpb.Value, error) {
	if row == nil {
		return nil, gcperrors.New(gcperrors.RowParseError, "nil %s row", kind)
	}
	fVal, ok := row.GetFields()["f"]
	if !ok {
		return nil, gcperrors.New(gcperrors.RowParseError, "missing 'f' field in %s row", kind)
	}
	cells := fVal.GetListValue().GetValues()
	if len(cells) < expected {
		return nil, gcperrors.New(gcperrors.RowParseError,
			"unexpected column count in %s row: expected %d, got %d", kind, expected, len(cells))
	}
	return cells, nil
}

// scalarString renders a scalar cell value as a string. Numbers lose no
// precision for the integral ids the asset index returns.
func scalarString(v *structpb.Value) string {
	switch v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return v.GetStringValue()
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(v.GetNumberValue(), 'f', -1, 64)
	default:
		return ""
	}
}
