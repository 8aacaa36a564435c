// Package cache persists assembled hierarchies as versioned JSON so repeat
// invocations skip the API walk entirely while the snapshot is fresh.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	gcperrors "gcpath/internal/errors"
	"gcpath/internal/hierarchy"
	"gcpath/internal/logging"
)

// SchemaVersion gates deserialization. A snapshot written by an
// incompatible schema is treated as absent, never migrated.
const SchemaVersion = 1

// DefaultTTLHours is how long a snapshot stays fresh.
const DefaultTTLHours = 72

type cachedOrganization struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type cachedFolder struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Parent      string   `json:"parent"`
	Ancestors   []string `json:"ancestors"`
}

type cachedProject struct {
	Name        string `json:"name"`
	ProjectID   string `json:"project_id"`
	DisplayName string `json:"display_name"`
	Parent      string `json:"parent"`
	FolderName  string `json:"folder_name,omitempty"`
}

type cachedOrgEntry struct {
	Organization cachedOrganization      `json:"organization"`
	Folders      map[string]cachedFolder `json:"folders"`
	Projects     []cachedProject         `json:"projects"`
}

type cacheFile struct {
	Version                  int              `json:"version"`
	Timestamp                time.Time        `json:"timestamp"`
	Organizations            []cachedOrgEntry `json:"organizations"`
	OrganizationlessProjects []cachedProject  `json:"organizationless_projects"`
}

// Info is lightweight snapshot metadata, readable without rebuilding the
// hierarchy.
type Info struct {
	Path          string
	Exists        bool
	Fresh         bool
	Version       int
	Timestamp     time.Time
	Age           time.Duration
	SizeBytes     int64
	Organizations int
	Folders       int
	Projects      int
}

// Store reads and writes hierarchy snapshots at a fixed path. The clock is
// injected so freshness can be tested without waiting.
type Store struct {
	path  string
	ttl   time.Duration
	clock clockwork.Clock
	log   *logging.Logger
}

// NewStore returns a Store over path. A non-positive ttl falls back to the
// default.
func NewStore(path string, ttl time.Duration, clock clockwork.Clock, log *logging.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTLHours * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Store{path: path, ttl: ttl, clock: clock, log: log}
}

// Read returns the cached hierarchy, or nil when no usable snapshot exists.
// Missing, stale, version-mismatched, and unparseable snapshots all mean a
// fresh assembly; none of them is an error for the caller.
func (s *Store) Read() *hierarchy.Hierarchy {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cache unreadable", map[string]interface{}{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return nil
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.log.Warn("cache corrupt, ignoring", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return nil
	}

	if file.Version != SchemaVersion {
		s.log.Info("cache schema version mismatch, ignoring", map[string]interface{}{
			"found":    file.Version,
			"expected": SchemaVersion,
		})
		return nil
	}

	age := s.clock.Now().Sub(file.Timestamp)
	if age >= s.ttl {
		s.log.Info("cache stale, ignoring", map[string]interface{}{
			"age": age.String(),
			"ttl": s.ttl.String(),
		})
		return nil
	}

	return rebuild(&file)
}

// Write persists the hierarchy. Failures are logged, never raised: a broken
// cache directory must not fail a command whose real output already exists.
func (s *Store) Write(h *hierarchy.Hierarchy) {
	file := snapshot(h, s.clock.Now().UTC())

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		s.log.Warn("cache serialization failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn("cache directory creation failed", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Warn("cache write failed", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return
	}
	s.log.Debug("cache written", map[string]interface{}{"path": s.path})
}

// Clear removes the snapshot. A missing file is success.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return gcperrors.Wrap(gcperrors.CacheUnreadable, err, "cannot remove cache at %s", s.path)
	}
	return nil
}

// Info inspects the snapshot without rebuilding entity objects.
func (s *Store) Info() Info {
	info := Info{Path: s.path}

	stat, err := os.Stat(s.path)
	if err != nil {
		return info
	}
	info.Exists = true
	info.SizeBytes = stat.Size()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return info
	}
	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return info
	}

	info.Version = file.Version
	info.Timestamp = file.Timestamp
	info.Age = s.clock.Now().Sub(file.Timestamp)
	info.Fresh = file.Version == SchemaVersion && info.Age < s.ttl
	info.Organizations = len(file.Organizations)
	for _, entry := range file.Organizations {
		info.Folders += len(entry.Folders)
		info.Projects += len(entry.Projects)
	}
	info.Projects += len(file.OrganizationlessProjects)
	return info
}

// snapshot flattens a hierarchy into the wire shape. Folder membership is
// recorded by name; pointers are rebuilt on read.
func snapshot(h *hierarchy.Hierarchy, now time.Time) *cacheFile {
	file := &cacheFile{
		Version:   SchemaVersion,
		Timestamp: now,
	}

	for _, org := range h.Organizations {
		entry := cachedOrgEntry{
			Organization: cachedOrganization{Name: org.Name, DisplayName: org.DisplayName},
			Folders:      make(map[string]cachedFolder, len(org.Folders)),
		}
		for name, f := range org.Folders {
			entry.Folders[name] = cachedFolder{
				Name:        f.Name,
				DisplayName: f.DisplayName,
				Parent:      f.Parent,
				Ancestors:   f.Ancestors,
			}
		}
		for _, p := range h.Projects {
			if p.Org == nil || p.Org.Name != org.Name {
				continue
			}
			cp := cachedProject{
				Name:        p.Name,
				ProjectID:   p.ProjectID,
				DisplayName: p.DisplayName,
				Parent:      p.Parent,
			}
			if p.Folder != nil {
				cp.FolderName = p.Folder.Name
			}
			entry.Projects = append(entry.Projects, cp)
		}
		file.Organizations = append(file.Organizations, entry)
	}

	for _, p := range h.OrganizationlessProjects() {
		file.OrganizationlessProjects = append(file.OrganizationlessProjects, cachedProject{
			Name:        p.Name,
			ProjectID:   p.ProjectID,
			DisplayName: p.DisplayName,
			Parent:      p.Parent,
		})
	}

	return file
}

// rebuild reconstructs entities and back-references from the wire shape.
func rebuild(file *cacheFile) *hierarchy.Hierarchy {
	var nodes []*hierarchy.OrganizationNode
	var projects []*hierarchy.Project

	for _, entry := range file.Organizations {
		node := hierarchy.NewOrganizationNode(entry.Organization.Name, entry.Organization.DisplayName, nil)
		for name, cf := range entry.Folders {
			node.Folders[name] = &hierarchy.Folder{
				Name:        cf.Name,
				DisplayName: cf.DisplayName,
				Parent:      cf.Parent,
				Ancestors:   cf.Ancestors,
				Org:         node,
			}
		}
		for _, cp := range entry.Projects {
			project := &hierarchy.Project{
				Name:        cp.Name,
				ProjectID:   cp.ProjectID,
				DisplayName: cp.DisplayName,
				Parent:      cp.Parent,
				Org:         node,
			}
			if cp.FolderName != "" {
				project.Folder = node.Folders[cp.FolderName]
			}
			projects = append(projects, project)
		}
		nodes = append(nodes, node)
	}

	for _, cp := range file.OrganizationlessProjects {
		projects = append(projects, &hierarchy.Project{
			Name:        cp.Name,
			ProjectID:   cp.ProjectID,
			DisplayName: cp.DisplayName,
			Parent:      cp.Parent,
		})
	}

	return hierarchy.New(nodes, projects)
}
