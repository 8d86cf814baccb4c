package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/catalog"
)

const TravelResourceURI = resourceScheme + "travel"

// GetTravelNetworkInput represents the MCP tool input for reading corridors.
type GetTravelNetworkInput struct {
	Clearance catalog.Clearance `json:"clearance,omitempty" jsonschema:"Only return corridors needing this clearance."`
	Location  string            `json:"location,omitempty" jsonschema:"Only return corridors starting or ending here (case-insensitive)."`
}

// CorridorEntry is the wire form of a travel corridor.
type CorridorEntry struct {
	ID           string   `json:"id"`
	Origin       string   `json:"origin"`
	Destination  string   `json:"destination"`
	Clearance    string   `json:"clearance"`
	TypicalHours int      `json:"typical_hours"`
	Bottlenecks  []string `json:"bottlenecks"`
	Conveyance   string   `json:"conveyance"`
}

// GetTravelNetworkResult represents the MCP tool output for reading corridors.
type GetTravelNetworkResult struct {
	Corridors []CorridorEntry `json:"corridors" jsonschema:"corridors matching the filters"`
	Count     int             `json:"count" jsonschema:"number of corridors returned"`
}

// TravelPayload is the travel resource body.
type TravelPayload struct {
	Corridors []CorridorEntry `json:"corridors"`
}

func corridorEntries(corridors []catalog.TravelCorridor) []CorridorEntry {
	out := make([]CorridorEntry, len(corridors))
	for i, c := range corridors {
		bottlenecks := c.Bottlenecks
		if bottlenecks == nil {
			bottlenecks = []string{}
		}
		out[i] = CorridorEntry{
			ID:           c.ID,
			Origin:       c.Origin,
			Destination:  c.Destination,
			Clearance:    string(c.Clearance),
			TypicalHours: c.TypicalHours,
			Bottlenecks:  bottlenecks,
			Conveyance:   c.Conveyance,
		}
	}
	return out
}

// GetTravelNetworkTool defines the MCP tool schema for reading corridors.
func GetTravelNetworkTool() *mcp.Tool {
	schema := inputSchema[GetTravelNetworkInput]()
	property(schema, "clearance").Enum = enumOf(catalog.Clearances)
	return &mcp.Tool{
		Name:        "get_travel_network",
		Title:       "Get travel network",
		Description: "Returns the courier corridors between holdings",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// GetTravelNetworkHandler filters the travel network.
func GetTravelNetworkHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[GetTravelNetworkInput, GetTravelNetworkResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetTravelNetworkInput) (*mcp.CallToolResult, GetTravelNetworkResult, error) {
		if input.Clearance != "" && !catalog.ValidClearance(string(input.Clearance)) {
			return nil, GetTravelNetworkResult{}, fmt.Errorf("invalid clearance %q", input.Clearance)
		}
		corridors := cat.TravelNetwork(catalog.TravelFilter{Clearance: input.Clearance, Location: input.Location})
		return nil, GetTravelNetworkResult{Corridors: corridorEntries(corridors), Count: len(corridors)}, nil
	}
}

// TravelResource defines the travel network resource.
func TravelResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "travel",
		Title:       "Travel network",
		Description: "Every corridor with its clearance, hours and bottlenecks",
		MIMEType:    jsonMIMEType,
		URI:         TravelResourceURI,
	}
}

// TravelResourceHandler returns the full travel network.
func TravelResourceHandler(cat *catalog.Catalog) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := requestURI(req)
		if uri == "" {
			uri = TravelResourceURI
		}
		corridors := cat.TravelNetwork(catalog.TravelFilter{})
		return jsonResource(uri, TravelPayload{Corridors: corridorEntries(corridors)})
	}
}
