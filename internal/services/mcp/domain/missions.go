package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/catalog"
	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
)

const (
	MissionsResourceURI      = resourceScheme + "missions"
	MissionResourceURIPrefix = resourceScheme + "missions/"
	MissionResourceTemplate  = MissionResourceURIPrefix + "{id}"

	maxMissionLimit = 10
)

// ListMissionsInput represents the MCP tool input for listing missions.
type ListMissionsInput struct {
	Status   catalog.MissionStatus   `json:"status,omitempty" jsonschema:"Filter missions by current engagement status."`
	Priority catalog.MissionPriority `json:"priority,omitempty" jsonschema:"Limit missions to a priority tier."`
	Limit    int                     `json:"limit,omitempty" jsonschema:"Maximum number of missions to return."`
}

// GetMissionInput represents the MCP tool input for reading one mission.
type GetMissionInput struct {
	ID string `json:"id" jsonschema:"mission identifier"`
}

// MissionEntry is the wire form of a mission.
type MissionEntry struct {
	ID          string      `json:"id"`
	Codename    string      `json:"codename"`
	Summary     string      `json:"summary"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	Region      string      `json:"region"`
	Reward      RewardEntry `json:"reward"`
	Window      WindowEntry `json:"window"`
	Specialists []string    `json:"specialists"`
	Tags        []string    `json:"tags"`
}

// RewardEntry is a mission's payout.
type RewardEntry struct {
	Credits int      `json:"credits"`
	Favors  []string `json:"favors,omitempty"`
}

// WindowEntry carries RFC3339 timestamps.
type WindowEntry struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListMissionsResult represents the MCP tool output for listing missions.
type ListMissionsResult struct {
	Missions []MissionEntry `json:"missions" jsonschema:"missions matching the filters, in catalog order"`
	Count    int            `json:"count" jsonschema:"number of missions returned"`
}

// GetMissionResult represents the MCP tool output for reading one mission.
type GetMissionResult struct {
	Mission MissionEntry `json:"mission" jsonschema:"the requested mission"`
}

// MissionListPayload is the missions resource body.
type MissionListPayload struct {
	Missions []MissionEntry `json:"missions"`
}

// MissionPayload is the single-mission resource body.
type MissionPayload struct {
	Mission MissionEntry `json:"mission"`
}

func missionEntry(m catalog.Mission) MissionEntry {
	specialists := m.Specialists
	if specialists == nil {
		specialists = []string{}
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return MissionEntry{
		ID:          m.ID,
		Codename:    m.Codename,
		Summary:     m.Summary,
		Status:      string(m.Status),
		Priority:    string(m.Priority),
		Region:      m.Region,
		Reward:      RewardEntry{Credits: m.Reward.Credits, Favors: m.Reward.Favors},
		Window:      WindowEntry{Start: formatTimestamp(m.Window.Start), End: formatTimestamp(m.Window.End)},
		Specialists: specialists,
		Tags:        tags,
	}
}

func missionEntries(missions []catalog.Mission) []MissionEntry {
	out := make([]MissionEntry, len(missions))
	for i, m := range missions {
		out[i] = missionEntry(m)
	}
	return out
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ListMissionsTool defines the MCP tool schema for listing missions.
func ListMissionsTool() *mcp.Tool {
	schema := inputSchema[ListMissionsInput]()
	property(schema, "status").Enum = enumOf(catalog.MissionStatuses)
	property(schema, "priority").Enum = enumOf(catalog.MissionPriorities)
	bounds(property(schema, "limit"), 1, maxMissionLimit)
	return &mcp.Tool{
		Name:        "list_missions",
		Title:       "List missions",
		Description: "Lists Les Coureurs missions, optionally filtered by status and priority and truncated to a limit",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// ListMissionsHandler filters the mission catalog.
func ListMissionsHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[ListMissionsInput, ListMissionsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListMissionsInput) (*mcp.CallToolResult, ListMissionsResult, error) {
		if input.Status != "" && !catalog.ValidMissionStatus(string(input.Status)) {
			return nil, ListMissionsResult{}, fmt.Errorf("invalid status %q", input.Status)
		}
		if input.Priority != "" && !catalog.ValidMissionPriority(string(input.Priority)) {
			return nil, ListMissionsResult{}, fmt.Errorf("invalid priority %q", input.Priority)
		}
		if input.Limit < 0 || input.Limit > maxMissionLimit {
			return nil, ListMissionsResult{}, fmt.Errorf("limit must be between 1 and %d", maxMissionLimit)
		}

		missions := cat.ListMissions(catalog.MissionFilter{
			Status:   input.Status,
			Priority: input.Priority,
			Limit:    input.Limit,
		})
		return nil, ListMissionsResult{Missions: missionEntries(missions), Count: len(missions)}, nil
	}
}

// GetMissionTool defines the MCP tool schema for reading one mission.
func GetMissionTool() *mcp.Tool {
	schema := inputSchema[GetMissionInput]()
	property(schema, "id").MinLength = ptr(1)
	return &mcp.Tool{
		Name:        "get_mission",
		Title:       "Get mission",
		Description: "Returns a single mission by id",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// GetMissionHandler looks a mission up by id.
func GetMissionHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[GetMissionInput, GetMissionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetMissionInput) (*mcp.CallToolResult, GetMissionResult, error) {
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return nil, GetMissionResult{}, fmt.Errorf("id is required")
		}
		mission, err := cat.Mission(id)
		if err != nil {
			return nil, GetMissionResult{}, err
		}
		return nil, GetMissionResult{Mission: missionEntry(mission)}, nil
	}
}

// MissionListResource defines the mission catalog resource.
func MissionListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "missions",
		Title:       "Mission catalog",
		Description: "Every mission on the Les Coureurs board",
		MIMEType:    jsonMIMEType,
		URI:         MissionsResourceURI,
	}
}

// MissionListResourceHandler returns the full mission catalog.
func MissionListResourceHandler(cat *catalog.Catalog) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := requestURI(req)
		if uri == "" {
			uri = MissionsResourceURI
		}
		missions := cat.ListMissions(catalog.MissionFilter{})
		return jsonResource(uri, MissionListPayload{Missions: missionEntries(missions)})
	}
}

// MissionResource defines the single-mission resource template.
func MissionResource() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "mission",
		Title:       "Mission",
		Description: "A single mission. URI format: les-coureurs://missions/{id}",
		MIMEType:    jsonMIMEType,
		URITemplate: MissionResourceTemplate,
	}
}

// MissionResourceHandler returns one mission; unknown ids are a resource
// not-found protocol error.
func MissionResourceHandler(cat *catalog.Catalog) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := requestURI(req)
		if uri == "" {
			return nil, fmt.Errorf("mission id is required; use URI format %s", MissionResourceTemplate)
		}
		id, err := idFromURI(uri, MissionResourceURIPrefix)
		if err != nil {
			return nil, fmt.Errorf("parse mission id from URI: %w", err)
		}
		mission, err := cat.Mission(id)
		if err != nil {
			if apperrors.CodeOf(err).IsNotFound() {
				return nil, mcp.ResourceNotFoundError(uri)
			}
			return nil, err
		}
		return jsonResource(uri, MissionPayload{Mission: missionEntry(mission)})
	}
}
