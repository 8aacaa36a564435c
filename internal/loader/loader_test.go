package loader

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/protobuf/types/known/structpb"

	gcperrors "gcpath/internal/errors"
	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

type fakeLister struct {
	orgs          []*resourcemanagerpb.Organization
	foldersByPar  map[string][]*resourcemanagerpb.Folder
	folderByName  map[string]*resourcemanagerpb.Folder
	projectByName map[string]*resourcemanagerpb.Project
	allProjects   []*resourcemanagerpb.Project

	orgErr       map[string]error
	folderErr    map[string]error
	projectErr   map[string]error
	listErr      map[string]error
	searchErr    error
	orgSearchErr error
}

func (f *fakeLister) SearchOrganizations(ctx context.Context) ([]*resourcemanagerpb.Organization, error) {
	if f.orgSearchErr != nil {
		return nil, f.orgSearchErr
	}
	return f.orgs, nil
}

func (f *fakeLister) ListFolders(ctx context.Context, parent string) ([]*resourcemanagerpb.Folder, error) {
	if err := f.listErr[parent]; err != nil {
		return nil, err
	}
	return f.foldersByPar[parent], nil
}

func (f *fakeLister) GetFolder(ctx context.Context, name string) (*resourcemanagerpb.Folder, error) {
	if err := f.folderErr[name]; err != nil {
		return nil, err
	}
	if folder, ok := f.folderByName[name]; ok {
		return folder, nil
	}
	return nil, gcperrors.New(gcperrors.NotFound, "folder %q not found", name)
}

func (f *fakeLister) GetProject(ctx context.Context, name string) (*resourcemanagerpb.Project, error) {
	if err := f.projectErr[name]; err != nil {
		return nil, err
	}
	if project, ok := f.projectByName[name]; ok {
		return project, nil
	}
	return nil, gcperrors.New(gcperrors.NotFound, "project %q not found", name)
}

func (f *fakeLister) GetOrganization(ctx context.Context, name string) (*resourcemanagerpb.Organization, error) {
	if err := f.orgErr[name]; err != nil {
		return nil, err
	}
	for _, org := range f.orgs {
		if org.GetName() == name {
			return org, nil
		}
	}
	return nil, gcperrors.New(gcperrors.NotFound, "organization %q not found", name)
}

func (f *fakeLister) SearchProjects(ctx context.Context) ([]*resourcemanagerpb.Project, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.allProjects, nil
}

type fakeQuerier struct {
	query func(parent, statement string) ([]*structpb.Struct, error)
}

func (f *fakeQuerier) QueryAssets(ctx context.Context, parent, statement string) ([]*structpb.Struct, error) {
	return f.query(parent, statement)
}

func wrap(v *structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{"v": v},
	})
}

func wrapString(s string) *structpb.Value {
	return wrap(structpb.NewStringValue(s))
}

func wrapList(items ...string) *structpb.Value {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, wrapString(item))
	}
	return wrap(structpb.NewListValue(&structpb.ListValue{Values: values}))
}

func wrapParentStruct(kind, id string) *structpb.Value {
	inner := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"f": structpb.NewListValue(&structpb.ListValue{
				Values: []*structpb.Value{wrapString(kind), wrapString(id)},
			}),
		},
	}
	return wrap(structpb.NewStructValue(inner))
}

func resultRow(cells ...*structpb.Value) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"f": structpb.NewListValue(&structpb.ListValue{Values: cells}),
		},
	}
}

func folderRow(name, display, parent string, ancestors ...string) *structpb.Struct {
	return resultRow(
		wrapString("//cloudresourcemanager.googleapis.com/"+name),
		wrapString(display),
		wrapString(parent),
		wrapList(ancestors...),
	)
}

func projectRow(name, projectID, parentKind, parentID string, ancestors ...string) *structpb.Struct {
	return resultRow(
		wrapString("//cloudresourcemanager.googleapis.com/"+name),
		wrap(structpb.NewNumberValue(12345)),
		wrapString(projectID),
		wrapParentStruct(parentKind, parentID),
		wrapList(ancestors...),
	)
}

func testLister() *fakeLister {
	return &fakeLister{
		orgs: []*resourcemanagerpb.Organization{
			{Name: "organizations/1", DisplayName: "example.com"},
		},
		foldersByPar: map[string][]*resourcemanagerpb.Folder{
			"organizations/1": {
				{Name: "folders/10", DisplayName: "Engineering", Parent: "organizations/1"},
			},
			"folders/10": {
				{Name: "folders/20", DisplayName: "Platform", Parent: "folders/10"},
			},
		},
		folderByName: map[string]*resourcemanagerpb.Folder{
			"folders/10": {Name: "folders/10", DisplayName: "Engineering", Parent: "organizations/1"},
			"folders/20": {Name: "folders/20", DisplayName: "Platform", Parent: "folders/10"},
		},
		projectByName: map[string]*resourcemanagerpb.Project{
			"projects/100": {Name: "projects/100", ProjectId: "svc-prod", DisplayName: "Service Prod", Parent: "folders/20"},
		},
		allProjects: []*resourcemanagerpb.Project{
			{Name: "projects/100", ProjectId: "svc-prod", DisplayName: "Service Prod", Parent: "folders/20"},
			{Name: "projects/101", ProjectId: "root-proj", DisplayName: "Root Proj", Parent: "organizations/1"},
			{Name: "projects/999", ProjectId: "orphan", DisplayName: "", Parent: ""},
		},
		orgErr:     map[string]error{},
		folderErr:  map[string]error{},
		projectErr: map[string]error{},
		listErr:    map[string]error{},
	}
}

func TestLoadResourceManager(t *testing.T) {
	lister := testLister()
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(h.Organizations) != 1 {
		t.Fatalf("organizations: got %d, want 1", len(h.Organizations))
	}
	org := h.Organizations[0]
	if len(org.Folders) != 2 {
		t.Fatalf("folders: got %d, want 2", len(org.Folders))
	}

	platform, ok := h.Folder("folders/20")
	if !ok {
		t.Fatal("folders/20 not loaded")
	}
	if got := platform.Path(); got != "//example.com/Engineering/Platform" {
		t.Errorf("folder path: got %q", got)
	}

	svc, ok := h.Project("projects/100")
	if !ok {
		t.Fatal("projects/100 not loaded")
	}
	if got := svc.Path(); got != "//example.com/Engineering/Platform/Service%20Prod" {
		t.Errorf("project path: got %q", got)
	}

	orphan, ok := h.Project("projects/999")
	if !ok {
		t.Fatal("projects/999 not loaded")
	}
	if orphan.Org != nil {
		t.Error("parentless project should stay organizationless")
	}
	if got := orphan.Path(); got != "//_/orphan" {
		t.Errorf("orphan path: got %q", got)
	}
}

func TestLoadOrganizationSearchFailure(t *testing.T) {
	lister := testLister()
	lister.orgSearchErr = gcperrors.New(gcperrors.TransportError, "backend unavailable")
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{})
	if err != nil {
		t.Fatalf("an unreachable backend should yield an empty inventory, got %v", err)
	}
	if len(h.Organizations) != 0 {
		t.Errorf("organizations: got %d, want 0", len(h.Organizations))
	}

	// Parentless projects still surface through the project search.
	if _, ok := h.Project("projects/999"); !ok {
		t.Error("organizationless project should still load")
	}
}

func TestLoadProjectSearchFailure(t *testing.T) {
	lister := testLister()
	lister.searchErr = gcperrors.New(gcperrors.TransportError, "backend unavailable")
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{})
	if err != nil {
		t.Fatalf("a failed project search should not abort assembly, got %v", err)
	}
	if len(h.Organizations) != 1 {
		t.Fatalf("organizations: got %d, want 1", len(h.Organizations))
	}
	if _, ok := h.Folder("folders/20"); !ok {
		t.Error("folders should still load when the project search fails")
	}
	if len(h.Projects) != 0 {
		t.Errorf("projects: got %d, want 0", len(h.Projects))
	}
}

func TestLoadResourceManagerDeniedSubtree(t *testing.T) {
	lister := testLister()
	lister.listErr["folders/10"] = gcperrors.New(gcperrors.PermissionDenied, "denied")
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := h.Folder("folders/10"); !ok {
		t.Error("accessible folder should still load")
	}
	if _, ok := h.Folder("folders/20"); ok {
		t.Error("denied subtree should be skipped, not fatal")
	}
}

func TestLoadResourceManagerScoped(t *testing.T) {
	lister := testLister()
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{Scope: "folders/10", Recursive: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := h.Folder("folders/10"); !ok {
		t.Error("scope folder itself should be spliced in")
	}
	if _, ok := h.Folder("folders/20"); !ok {
		t.Error("descendant folder missing from recursive scoped load")
	}
	if _, ok := h.Project("projects/100"); !ok {
		t.Error("project under scope missing")
	}
	if _, ok := h.Project("projects/101"); ok {
		t.Error("project outside scope should be excluded")
	}
}

func TestLoadAssetAPI(t *testing.T) {
	lister := testLister()
	querier := &fakeQuerier{
		query: func(parent, statement string) ([]*structpb.Struct, error) {
			if parent != "organizations/1" {
				t.Fatalf("unexpected query parent %q", parent)
			}
			if strings.Contains(statement, "Folder") {
				return []*structpb.Struct{
					folderRow("folders/10", "Engineering", "organizations/1",
						"//cloudresourcemanager.googleapis.com/folders/10", "organizations/1"),
					folderRow("folders/20", "Platform", "folders/10",
						"//cloudresourcemanager.googleapis.com/folders/20", "folders/10", "organizations/1"),
				}, nil
			}
			return []*structpb.Struct{
				projectRow("projects/100", "svc-prod", "folder", "20",
					"//cloudresourcemanager.googleapis.com/projects/100", "folders/20", "organizations/1"),
			}, nil
		},
	}
	l := New(lister, querier, logging.Discard())

	h, err := l.Load(context.Background(), Options{UseAssetAPI: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	svc, ok := h.Project("projects/100")
	if !ok {
		t.Fatal("projects/100 not loaded")
	}
	if svc.Folder == nil || svc.Folder.Name != "folders/20" {
		t.Errorf("project folder: got %v", svc.Folder)
	}
	if got := svc.Path(); got != "//example.com/Engineering/Platform/svc-prod" {
		t.Errorf("project path: got %q", got)
	}

	// The fallback search contributes only projects outside organizations,
	// skipping names the bulk queries already produced.
	if _, ok := h.Project("projects/101"); ok {
		t.Error("organization-parented project must not enter via fallback")
	}
	orphan, ok := h.Project("projects/999")
	if !ok {
		t.Fatal("organizationless fallback project missing")
	}
	if got := orphan.Path(); got != "//_/orphan" {
		t.Errorf("orphan path: got %q", got)
	}
}

func TestLoadAssetAPIRepairsEmptyAncestors(t *testing.T) {
	lister := testLister()
	querier := &fakeQuerier{
		query: func(parent, statement string) ([]*structpb.Struct, error) {
			if strings.Contains(statement, "Folder") {
				return []*structpb.Struct{
					folderRow("folders/10", "Engineering", "organizations/1",
						"//cloudresourcemanager.googleapis.com/folders/10", "organizations/1"),
					// Scoped asset queries return empty ancestor arrays.
					folderRow("folders/20", "Platform", "folders/10"),
				}, nil
			}
			return nil, nil
		},
	}
	l := New(lister, querier, logging.Discard())

	h, err := l.Load(context.Background(), Options{UseAssetAPI: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	platform, ok := h.Folder("folders/20")
	if !ok {
		t.Fatal("folders/20 not loaded")
	}
	want := []string{"folders/20", "folders/10", "organizations/1"}
	if !equalStrings(platform.Ancestors, want) {
		t.Errorf("repaired ancestors: got %v, want %v", platform.Ancestors, want)
	}
	if got := platform.Path(); got != "//example.com/Engineering/Platform" {
		t.Errorf("path after repair: got %q", got)
	}
}

func TestLoadDisplayNameFilter(t *testing.T) {
	lister := testLister()
	lister.orgs = append(lister.orgs, &resourcemanagerpb.Organization{
		Name: "organizations/2", DisplayName: "other.example",
	})
	l := New(lister, nil, logging.Discard())

	h, err := l.Load(context.Background(), Options{DisplayNames: []string{"example.com"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h.Organizations) != 1 || h.Organizations[0].Name != "organizations/1" {
		t.Errorf("filter should keep only example.com, got %d organizations", len(h.Organizations))
	}
}

func TestBuildFolderAncestors(t *testing.T) {
	loaded := map[string]*hierarchy.Folder{
		"folders/10": {
			Name:      "folders/10",
			Ancestors: []string{"folders/10", "organizations/1"},
		},
	}

	t.Run("complete raw chain is trusted", func(t *testing.T) {
		raw := []string{"folders/20", "folders/10", "organizations/1"}
		got := BuildFolderAncestors("folders/20", raw, "folders/10", loaded, "organizations/1")
		if !equalStrings(got, raw) {
			t.Errorf("got %v, want %v", got, raw)
		}
	})

	t.Run("empty chain with organization parent", func(t *testing.T) {
		got := BuildFolderAncestors("folders/10", nil, "organizations/1", nil, "organizations/1")
		want := []string{"folders/10", "organizations/1"}
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty chain splices loaded parent chain", func(t *testing.T) {
		got := BuildFolderAncestors("folders/20", nil, "folders/10", loaded, "organizations/1")
		want := []string{"folders/20", "folders/10", "organizations/1"}
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("unknown folder parent still terminates at organization", func(t *testing.T) {
		got := BuildFolderAncestors("folders/30", nil, "folders/99", loaded, "organizations/1")
		want := []string{"folders/30", "folders/99", "organizations/1"}
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestFixFolderAncestors(t *testing.T) {
	node := hierarchy.NewOrganizationNode("organizations/1", "example.com", logging.Discard())
	node.Folders["folders/10"] = &hierarchy.Folder{
		Name: "folders/10", Parent: "organizations/1",
		Ancestors: []string{"folders/10", "organizations/1"}, Org: node,
	}
	node.Folders["folders/20"] = &hierarchy.Folder{
		Name: "folders/20", Parent: "folders/10",
		Ancestors: []string{"folders/20", "organizations/1"}, Org: node,
	}

	FixFolderAncestors(node, logging.Discard())

	want := []string{"folders/20", "folders/10", "organizations/1"}
	if got := node.Folders["folders/20"].Ancestors; !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFixFolderAncestorsBreaksCycle(t *testing.T) {
	node := hierarchy.NewOrganizationNode("organizations/1", "example.com", logging.Discard())
	node.Folders["folders/1"] = &hierarchy.Folder{
		Name: "folders/1", Parent: "folders/2",
		Ancestors: []string{"folders/1"}, Org: node,
	}
	node.Folders["folders/2"] = &hierarchy.Folder{
		Name: "folders/2", Parent: "folders/1",
		Ancestors: []string{"folders/2"}, Org: node,
	}

	FixFolderAncestors(node, logging.Discard())

	got := node.Folders["folders/1"].Ancestors
	if got[len(got)-1] != "organizations/1" {
		t.Errorf("truncated chain must terminate at the organization, got %v", got)
	}
	seen := map[string]int{}
	for _, anc := range got {
		seen[anc]++
		if seen[anc] > 1 {
			t.Fatalf("chain revisits %s: %v", anc, got)
		}
	}
}

func TestResolveAncestry(t *testing.T) {
	lister := testLister()

	got, err := ResolveAncestry(context.Background(), lister, "projects/100", logging.Discard())
	if err != nil {
		t.Fatalf("ResolveAncestry: %v", err)
	}
	if want := "//example.com/Engineering/Platform/Service%20Prod"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAncestryDeniedOrganization(t *testing.T) {
	lister := testLister()
	lister.orgErr["organizations/1"] = gcperrors.New(gcperrors.PermissionDenied, "denied")

	got, err := ResolveAncestry(context.Background(), lister, "folders/20", logging.Discard())
	if err != nil {
		t.Fatalf("ResolveAncestry: %v", err)
	}
	if want := "//1/Engineering/Platform"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAncestryDeniedFolderIsFatal(t *testing.T) {
	lister := testLister()
	lister.folderErr["folders/10"] = gcperrors.New(gcperrors.PermissionDenied, "denied")

	_, err := ResolveAncestry(context.Background(), lister, "projects/100", logging.Discard())
	if !gcperrors.IsPermissionDenied(err) {
		t.Errorf("expected permission denied, got %v", err)
	}
}

func TestResolveAncestryOrganizationlessProject(t *testing.T) {
	lister := testLister()
	lister.projectByName["projects/999"] = &resourcemanagerpb.Project{
		Name: "projects/999", ProjectId: "orphan", Parent: "",
	}

	got, err := ResolveAncestry(context.Background(), lister, "projects/999", logging.Discard())
	if err != nil {
		t.Fatalf("ResolveAncestry: %v", err)
	}
	if want := "//_/orphan"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveAncestryUnsupported(t *testing.T) {
	_, err := ResolveAncestry(context.Background(), testLister(), "datasets/1", logging.Discard())
	if gcperrors.CodeOf(err) != gcperrors.UnsupportedResource {
		t.Errorf("expected UNSUPPORTED_RESOURCE, got %v", err)
	}
}
