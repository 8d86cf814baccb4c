package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/services/mcp/domain"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

func (k mcpRegistrationKind) String() string {
	switch k {
	case mcpRegistrationKindTools:
		return "tools"
	case mcpRegistrationKindResources:
		return "resources"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpMissionToolsModuleName      = "mission-tools"
	mcpInventoryToolsModuleName    = "inventory-tools"
	mcpTravelToolsModuleName       = "travel-tools"
	mcpTradeToolsModuleName        = "trade-tools"
	mcpDashboardToolsModuleName    = "dashboard-tools"
	mcpMissionResourceModuleName   = "mission-resources"
	mcpInventoryResourceModuleName = "inventory-resources"
	mcpTravelResourceModuleName    = "travel-resources"
	mcpDashboardResourceModuleName = "dashboard-resources"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.ListMissionsInput, domain.ListMissionsResult](),
	newMCPToolRegistrar[domain.GetMissionInput, domain.GetMissionResult](),
	newMCPToolRegistrar[domain.GetInventoryInput, domain.GetInventoryResult](),
	newMCPToolRegistrar[domain.GetTravelNetworkInput, domain.GetTravelNetworkResult](),
	newMCPToolRegistrar[domain.EstimateTradeRunInput, domain.EstimateTradeRunResult](),
	newMCPToolRegistrar[domain.OpenDashboardInput, domain.DashboardProps](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

// checkModuleNames rejects module lists that reuse a name.
func checkModuleNames(modules []mcpRegistrationModule) error {
	seen := make(map[string]mcpRegistrationKind, len(modules))
	for _, module := range modules {
		if prev, ok := seen[module.name]; ok {
			return fmt.Errorf("duplicate MCP module %q (%s, already registered as %s)", module.name, module.kind, prev)
		}
		seen[module.name] = module.kind
	}
	return nil
}

func newMCPRegistrationModules(deps serverDeps) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpMissionToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerMissionTools(registrar, deps.catalog)
			},
		},
		{
			name: mcpInventoryToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTool(registrar, domain.GetInventoryTool(), domain.GetInventoryHandler(deps.catalog))
			},
		},
		{
			name: mcpTravelToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTool(registrar, domain.GetTravelNetworkTool(), domain.GetTravelNetworkHandler(deps.catalog))
			},
		},
		{
			name: mcpTradeToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTool(registrar, domain.EstimateTradeRunTool(deps.content), domain.EstimateTradeRunHandler(deps.content))
			},
		},
		{
			name: mcpDashboardToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTool(registrar, domain.OpenDashboardTool(deps.widget), domain.OpenDashboardHandler(deps.content, deps.widget))
			},
		},
		{
			name: mcpMissionResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerMissionResources(registrar, deps.catalog)
				return nil
			},
		},
		{
			name: mcpInventoryResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registrar.AddResource(domain.InventoryResource(), domain.InventoryResourceHandler(deps.catalog))
				return nil
			},
		},
		{
			name: mcpTravelResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registrar.AddResource(domain.TravelResource(), domain.TravelResourceHandler(deps.catalog))
				return nil
			},
		},
		{
			name: mcpDashboardResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registrar.AddResource(domain.WidgetResource(deps.widget), domain.WidgetResourceHandler(deps.widget, deps.render))
				return nil
			},
		},
	}
}
