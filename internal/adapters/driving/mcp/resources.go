package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for mediasync resources.
	uriScheme = "mediasync://"
)

// folderInfo is the JSON form of a folder.
type folderInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
	Syncing   bool   `json:"syncing"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "folders",
		Name:        "folders",
		Description: "Folders watched for new media",
		MIMEType:    "application/json",
	}, s.handleFoldersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "folders/{folderId}",
		Name:        "folder",
		Description: "A single synchronised folder",
		MIMEType:    "application/json",
	}, s.handleFolderResource)
}

// handleFoldersResource returns all folders.
func (s *Server) handleFoldersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Folders == nil {
		return jsonResource(req.Params.URI, []folderInfo{})
	}

	folders, err := s.ports.Folders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	infos := make([]folderInfo, len(folders))
	for i, f := range folders {
		infos[i] = folderInfo{
			ID:        f.ID,
			Name:      f.Name,
			Path:      f.Path,
			MediaType: f.MediaType.String(),
			Syncing:   f.Syncing,
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleFolderResource returns a single folder.
func (s *Server) handleFolderResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Folders == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractFolderID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	f, err := s.ports.Folders.Get(ctx, id)
	if err != nil || f == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return jsonResource(req.Params.URI, folderInfo{
		ID:        f.ID,
		Name:      f.Name,
		Path:      f.Path,
		MediaType: f.MediaType.String(),
		Syncing:   f.Syncing,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFolderID extracts the folder ID from a URI like mediasync://folders/{folderId}.
func extractFolderID(uri string) string {
	const prefix = uriScheme + "folders/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
