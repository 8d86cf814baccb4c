package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/catalog"
	"github.com/louisbranch/les-coureurs/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerMissionTools(registrar mcpRegistrationTarget, cat *catalog.Catalog) error {
	if err := registerTool(registrar, domain.ListMissionsTool(), domain.ListMissionsHandler(cat)); err != nil {
		return err
	}
	return registerTool(registrar, domain.GetMissionTool(), domain.GetMissionHandler(cat))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerMissionResources registers the catalog listing and the per-mission template.
func registerMissionResources(registrar mcpRegistrationTarget, cat *catalog.Catalog) {
	registrar.AddResource(domain.MissionListResource(), domain.MissionListResourceHandler(cat))
	registrar.AddResourceTemplate(domain.MissionResource(), domain.MissionResourceHandler(cat))
}
