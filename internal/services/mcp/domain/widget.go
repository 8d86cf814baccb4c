package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/catalog"
	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

// WidgetRenderer produces the standalone dashboard HTML.
type WidgetRenderer func(ctx context.Context) (string, error)

// OpenDashboardInput represents the MCP tool input for opening the dashboard.
type OpenDashboardInput struct{}

// DashboardProps are the widget props handed to the host alongside the template.
type DashboardProps struct {
	Missions    []dashboard.StoryMission     `json:"missions" jsonschema:"story missions the crew can play"`
	Leaderboard []dashboard.LeaderboardEntry `json:"leaderboard" jsonschema:"dispatch leaderboard"`
	Crew        dashboard.Crew               `json:"crew" jsonschema:"the player's crew profile"`
	Widget      catalog.Widget               `json:"widget" jsonschema:"widget descriptor"`
}

func widgetMeta(widget catalog.Widget) mcp.Meta {
	return mcp.Meta{
		"openai/outputTemplate":          widget.TemplateURI,
		"openai/toolInvocation/invoking": widget.Invoking,
		"openai/toolInvocation/invoked":  widget.Invoked,
		"openai/widgetAccessible":        true,
		"openai/resultCanProduceWidget":  true,
	}
}

// OpenDashboardTool defines the MCP tool that opens the dashboard widget.
func OpenDashboardTool(widget catalog.Widget) *mcp.Tool {
	return &mcp.Tool{
		Meta:        widgetMeta(widget),
		Name:        "open_dashboard",
		Title:       widget.Title,
		Description: "Opens the Les Coureurs mission control dashboard",
		InputSchema: inputSchema[OpenDashboardInput](),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// OpenDashboardHandler returns the props the widget renders from.
func OpenDashboardHandler(content dashboard.Content, widget catalog.Widget) mcp.ToolHandlerFor[OpenDashboardInput, DashboardProps] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ OpenDashboardInput) (*mcp.CallToolResult, DashboardProps, error) {
		props := DashboardProps{
			Missions:    content.Missions,
			Leaderboard: content.Leaderboard,
			Crew:        content.Crew,
			Widget:      widget,
		}
		return &mcp.CallToolResult{Meta: widgetMeta(widget)}, props, nil
	}
}

// WidgetResource defines the dashboard template resource.
func WidgetResource(widget catalog.Widget) *mcp.Resource {
	return &mcp.Resource{
		Name:        widget.ID,
		Title:       widget.Title,
		Description: "Les Coureurs dashboard widget markup",
		MIMEType:    widgetMIMEType,
		URI:         widget.TemplateURI,
	}
}

// WidgetResourceHandler serves the rendered dashboard markup.
func WidgetResourceHandler(widget catalog.Widget, render WidgetRenderer) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if render == nil {
			return nil, fmt.Errorf("widget renderer is not configured")
		}
		html, err := render(ctx)
		if err != nil {
			return nil, fmt.Errorf("render widget: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      widget.TemplateURI,
					MIMEType: widgetMIMEType,
					Text:     html,
				},
			},
		}, nil
	}
}
