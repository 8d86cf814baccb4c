package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/catalog"
)

const InventoryResourceURI = resourceScheme + "inventory"

// GetInventoryInput represents the MCP tool input for reading the ledger.
type GetInventoryInput struct {
	Status   catalog.InventoryStatus `json:"status,omitempty" jsonschema:"Only return items in this readiness state."`
	Category string                  `json:"category,omitempty" jsonschema:"Only return items in this category (case-insensitive)."`
}

// InventoryEntry is the wire form of a ledger line.
type InventoryEntry struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Notes    string `json:"notes,omitempty"`
}

// GetInventoryResult represents the MCP tool output for reading the ledger.
type GetInventoryResult struct {
	Items         []InventoryEntry `json:"items" jsonschema:"ledger lines matching the filters"`
	TotalQuantity int              `json:"total_quantity" jsonschema:"sum of the returned quantities"`
	Count         int              `json:"count" jsonschema:"number of ledger lines returned"`
}

// InventoryPayload is the inventory resource body.
type InventoryPayload struct {
	Items         []InventoryEntry `json:"items"`
	TotalQuantity int              `json:"total_quantity"`
}

func inventoryEntries(items []catalog.InventoryItem) []InventoryEntry {
	out := make([]InventoryEntry, len(items))
	for i, item := range items {
		out[i] = InventoryEntry{
			ID:       item.ID,
			Label:    item.Label,
			Category: item.Category,
			Status:   string(item.Status),
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Notes:    item.Notes,
		}
	}
	return out
}

// GetInventoryTool defines the MCP tool schema for reading the ledger.
func GetInventoryTool() *mcp.Tool {
	schema := inputSchema[GetInventoryInput]()
	property(schema, "status").Enum = enumOf(catalog.InventoryStatuses)
	return &mcp.Tool{
		Name:        "get_inventory",
		Title:       "Get inventory",
		Description: "Returns the faction's supply ledger with total quantities",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}
}

// GetInventoryHandler filters the supply ledger.
func GetInventoryHandler(cat *catalog.Catalog) mcp.ToolHandlerFor[GetInventoryInput, GetInventoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetInventoryInput) (*mcp.CallToolResult, GetInventoryResult, error) {
		if input.Status != "" && !catalog.ValidInventoryStatus(string(input.Status)) {
			return nil, GetInventoryResult{}, fmt.Errorf("invalid status %q", input.Status)
		}
		items := cat.Ledger(catalog.InventoryFilter{Status: input.Status, Category: input.Category})
		return nil, GetInventoryResult{
			Items:         inventoryEntries(items),
			TotalQuantity: catalog.TotalQuantity(items),
			Count:         len(items),
		}, nil
	}
}

// InventoryResource defines the ledger resource.
func InventoryResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "inventory",
		Title:       "Supply ledger",
		Description: "Every ledger line with the total quantity on hand",
		MIMEType:    jsonMIMEType,
		URI:         InventoryResourceURI,
	}
}

// InventoryResourceHandler returns the full ledger.
func InventoryResourceHandler(cat *catalog.Catalog) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := requestURI(req)
		if uri == "" {
			uri = InventoryResourceURI
		}
		items := cat.Ledger(catalog.InventoryFilter{})
		return jsonResource(uri, InventoryPayload{
			Items:         inventoryEntries(items),
			TotalQuantity: catalog.TotalQuantity(items),
		})
	}
}
