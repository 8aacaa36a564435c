// Package gcp wraps the Cloud Resource Manager and Cloud Asset APIs behind
// narrow interfaces so the loader can be exercised against fakes.
package gcp

import (
	"context"

	asset "cloud.google.com/go/asset/apiv1"
	"cloud.google.com/go/asset/apiv1/assetpb"
	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	gcperrors "gcpath/internal/errors"
)

// ResourceLister is the direct Resource Manager surface consumed by the
// recursive assembly strategy and the ancestry walk.
type ResourceLister interface {
	// SearchOrganizations lists every organization visible to the caller.
	SearchOrganizations(ctx context.Context) ([]*resourcemanagerpb.Organization, error)
	// ListFolders lists folders directly under the given parent.
	ListFolders(ctx context.Context, parent string) ([]*resourcemanagerpb.Folder, error)
	// GetFolder fetches one folder by resource name.
	GetFolder(ctx context.Context, name string) (*resourcemanagerpb.Folder, error)
	// GetProject fetches one project by resource name.
	GetProject(ctx context.Context, name string) (*resourcemanagerpb.Project, error)
	// GetOrganization fetches one organization by resource name.
	GetOrganization(ctx context.Context, name string) (*resourcemanagerpb.Organization, error)
	// SearchProjects lists every project visible to the caller.
	SearchProjects(ctx context.Context) ([]*resourcemanagerpb.Project, error)
}

// AssetQuerier is the bulk indexed-query surface: one SQL statement against
// an organization's asset index, all result rows returned.
type AssetQuerier interface {
	QueryAssets(ctx context.Context, parent, statement string) ([]*structpb.Struct, error)
}

// Clients bundles the concrete SDK clients behind both interfaces.
type Clients struct {
	orgs     *resourcemanager.OrganizationsClient
	folders  *resourcemanager.FoldersClient
	projects *resourcemanager.ProjectsClient
	assets   *asset.Client
}

// NewClients dials all four SDK clients with application default credentials.
func NewClients(ctx context.Context, opts ...option.ClientOption) (*Clients, error) {
	orgs, err := resourcemanager.NewOrganizationsClient(ctx, opts...)
	if err != nil {
		return nil, convertAPIError(err)
	}
	folders, err := resourcemanager.NewFoldersClient(ctx, opts...)
	if err != nil {
		return nil, convertAPIError(err)
	}
	projects, err := resourcemanager.NewProjectsClient(ctx, opts...)
	if err != nil {
		return nil, convertAPIError(err)
	}
	assets, err := asset.NewClient(ctx, opts...)
	if err != nil {
		return nil, convertAPIError(err)
	}
	return &Clients{orgs: orgs, folders: folders, projects: projects, assets: assets}, nil
}

// Close releases all underlying connections.
func (c *Clients) Close() error {
	var firstErr error
	for _, closer := range []interface{ Close() error }{c.orgs, c.folders, c.projects, c.assets} {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SearchOrganizations implements ResourceLister.
func (c *Clients) SearchOrganizations(ctx context.Context) ([]*resourcemanagerpb.Organization, error) {
	var out []*resourcemanagerpb.Organization
	it := c.orgs.SearchOrganizations(ctx, &resourcemanagerpb.SearchOrganizationsRequest{})
	for {
		org, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, convertAPIError(err)
		}
		out = append(out, org)
	}
}

// ListFolders implements ResourceLister.
func (c *Clients) ListFolders(ctx context.Context, parent string) ([]*resourcemanagerpb.Folder, error) {
	var out []*resourcemanagerpb.Folder
	it := c.folders.ListFolders(ctx, &resourcemanagerpb.ListFoldersRequest{Parent: parent})
	for {
		folder, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, convertAPIError(err)
		}
		out = append(out, folder)
	}
}

// GetFolder implements ResourceLister.
func (c *Clients) GetFolder(ctx context.Context, name string) (*resourcemanagerpb.Folder, error) {
	folder, err := c.folders.GetFolder(ctx, &resourcemanagerpb.GetFolderRequest{Name: name})
	if err != nil {
		return nil, convertAPIError(err)
	}
	return folder, nil
}

// GetProject implements ResourceLister.
func (c *Clients) GetProject(ctx context.Context, name string) (*resourcemanagerpb.Project, error) {
	project, err := c.projects.GetProject(ctx, &resourcemanagerpb.GetProjectRequest{Name: name})
	if err != nil {
		return nil, convertAPIError(err)
	}
	return project, nil
}

// GetOrganization implements ResourceLister.
func (c *Clients) GetOrganization(ctx context.Context, name string) (*resourcemanagerpb.Organization, error) {
	org, err := c.orgs.GetOrganization(ctx, &resourcemanagerpb.GetOrganizationRequest{Name: name})
	if err != nil {
		return nil, convertAPIError(err)
	}
	return org, nil
}

// SearchProjects implements ResourceLister.
func (c *Clients) SearchProjects(ctx context.Context) ([]*resourcemanagerpb.Project, error) {
	var out []*resourcemanagerpb.Project
	it := c.projects.SearchProjects(ctx, &resourcemanagerpb.SearchProjectsRequest{})
	for {
		project, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, convertAPIError(err)
		}
		out = append(out, project)
	}
}

// QueryAssets implements AssetQuerier. The first call submits the statement;
// follow-up calls reference the server-side job until it completes and every
// page is drained.
func (c *Clients) QueryAssets(ctx context.Context, parent, statement string) ([]*structpb.Struct, error) {
	var rows []*structpb.Struct
	req := &assetpb.QueryAssetsRequest{
		Parent: parent,
		Query:  &assetpb.QueryAssetsRequest_Statement{Statement: statement},
	}
	for {
		resp, err := c.assets.QueryAssets(ctx, req)
		if err != nil {
			return nil, convertAPIError(err)
		}
		if respErr := resp.GetError(); respErr != nil {
			return nil, gcperrors.New(gcperrors.TransportError, "asset query failed: %s", respErr.GetMessage())
		}

		result := resp.GetQueryResult()
		if result != nil {
			rows = append(rows, result.GetRows()...)
		}

		switch {
		case !resp.GetDone():
			req = &assetpb.QueryAssetsRequest{
				Parent: parent,
				Query:  &assetpb.QueryAssetsRequest_JobReference{JobReference: resp.GetJobReference()},
			}
		case result != nil && result.GetNextPageToken() != "":
			req = &assetpb.QueryAssetsRequest{
				Parent:    parent,
				Query:     &assetpb.QueryAssetsRequest_JobReference{JobReference: resp.GetJobReference()},
				PageToken: result.GetNextPageToken(),
			}
		default:
			return rows, nil
		}
	}
}
