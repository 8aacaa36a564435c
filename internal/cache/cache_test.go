package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

func fixtureHierarchy() *hierarchy.Hierarchy {
	org := hierarchy.NewOrganizationNode("organizations/1", "example.com", nil)
	eng := &hierarchy.Folder{
		Name:        "folders/10",
		DisplayName: "Engineering",
		Parent:      "organizations/1",
		Ancestors:   []string{"folders/10", "organizations/1"},
		Org:         org,
	}
	org.Folders[eng.Name] = eng

	projects := []*hierarchy.Project{
		{
			Name:        "projects/100",
			ProjectID:   "svc-prod",
			DisplayName: "svc-prod",
			Parent:      "folders/10",
			Org:         org,
			Folder:      eng,
		},
		{
			Name:        "projects/999",
			ProjectID:   "orphan",
			DisplayName: "orphan",
			Parent:      "",
		},
	}
	return hierarchy.New([]*hierarchy.OrganizationNode{org}, projects)
}

func newTestStore(t *testing.T, clock clockwork.Clock) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return NewStore(path, DefaultTTLHours*time.Hour, clock, logging.Discard())
}

func TestWriteReadRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, clock)

	store.Write(fixtureHierarchy())

	got := store.Read()
	if got == nil {
		t.Fatal("expected cached hierarchy")
	}

	folder, ok := got.Folder("folders/10")
	if !ok {
		t.Fatal("folders/10 missing after round trip")
	}
	if path := folder.Path(); path != "//example.com/Engineering" {
		t.Errorf("folder path: got %q", path)
	}

	project, ok := got.Project("projects/100")
	if !ok {
		t.Fatal("projects/100 missing after round trip")
	}
	if project.Folder == nil || project.Folder.Name != "folders/10" {
		t.Error("project folder back-reference not rebuilt")
	}
	if path := project.Path(); path != "//example.com/Engineering/svc-prod" {
		t.Errorf("project path: got %q", path)
	}

	orphans := got.OrganizationlessProjects()
	if len(orphans) != 1 || orphans[0].Name != "projects/999" {
		t.Errorf("organizationless projects: got %v", orphans)
	}
}

func TestReadMissing(t *testing.T) {
	store := newTestStore(t, clockwork.NewFakeClock())
	if store.Read() != nil {
		t.Error("missing snapshot should read as nil")
	}
}

func TestReadFreshnessBoundary(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	store := newTestStore(t, clock)
	store.Write(fixtureHierarchy())

	clock.Advance(DefaultTTLHours*time.Hour - time.Second)
	if store.Read() == nil {
		t.Error("one second inside the TTL should still be fresh")
	}

	clock.Advance(time.Second)
	if store.Read() != nil {
		t.Error("age equal to the TTL is stale")
	}
}

func TestReadVersionMismatch(t *testing.T) {
	store := newTestStore(t, clockwork.NewFakeClock())
	data := `{"version": 99, "timestamp": "2024-06-01T12:00:00Z", "organizations": []}`
	if err := os.WriteFile(store.path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Read() != nil {
		t.Error("unknown schema version should read as nil")
	}
}

func TestReadCorrupt(t *testing.T) {
	store := newTestStore(t, clockwork.NewFakeClock())
	if err := os.WriteFile(store.path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Read() != nil {
		t.Error("corrupt snapshot should read as nil, not fail")
	}
}

func TestClearIdempotent(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	store := newTestStore(t, clock)
	store.Write(fixtureHierarchy())

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear should succeed: %v", err)
	}
	if store.Read() != nil {
		t.Error("snapshot should be gone after Clear")
	}
}

func TestInfo(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	store := newTestStore(t, clock)

	if info := store.Info(); info.Exists {
		t.Error("Info on missing snapshot should report absent")
	}

	store.Write(fixtureHierarchy())
	clock.Advance(time.Hour)

	info := store.Info()
	if !info.Exists || !info.Fresh {
		t.Errorf("expected existing fresh snapshot, got %+v", info)
	}
	if info.Version != SchemaVersion {
		t.Errorf("version: got %d", info.Version)
	}
	if info.Age != time.Hour {
		t.Errorf("age: got %s", info.Age)
	}
	if info.Organizations != 1 || info.Folders != 1 || info.Projects != 2 {
		t.Errorf("counts: got %+v", info)
	}
	if info.SizeBytes == 0 {
		t.Error("size should be recorded")
	}
}
