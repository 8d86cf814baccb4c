package domain

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	jsonMIMEType   = "application/json"
	widgetMIMEType = "text/html+skybridge"

	resourceScheme = "les-coureurs://"
)

// jsonResource encodes payload as indented JSON resource contents.
func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIMEType,
				Text:     string(data),
			},
		},
	}, nil
}

func requestURI(req *mcp.ReadResourceRequest) string {
	if req == nil || req.Params == nil {
		return ""
	}
	return req.Params.URI
}

// idFromURI extracts {id} from prefix + "{id}", rejecting nested paths,
// queries and fragments.
func idFromURI(uri, prefix string) (string, error) {
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("URI must start with %q", prefix)
	}
	id := strings.TrimSpace(strings.TrimPrefix(uri, prefix))
	if id == "" {
		return "", fmt.Errorf("id is required in URI")
	}
	if strings.ContainsAny(id, "/?#") {
		return "", fmt.Errorf("URI must not contain path segments, query parameters, or fragments after the id")
	}
	return id, nil
}
