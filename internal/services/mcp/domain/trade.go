package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

// EstimateTradeRunInput represents the MCP tool input for pricing a run.
type EstimateTradeRunInput struct {
	RouteID  string                `json:"route_id" jsonschema:"trade lane identifier"`
	Intent   dashboard.TradeIntent `json:"intent" jsonschema:"buy cargo, sell stock or scout the lane"`
	CargoID  string                `json:"cargo_id" jsonschema:"cargo focus identifier"`
	Quantity int                   `json:"quantity" jsonschema:"manifest quantity"`
}

// CargoDeltaEntry is the hold change a run would make.
type CargoDeltaEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	QuantityChange int    `json:"quantity_change"`
	Rarity         string `json:"rarity,omitempty"`
}

// EstimateTradeRunResult represents the MCP tool output for pricing a run.
type EstimateTradeRunResult struct {
	RouteID    string           `json:"route_id" jsonschema:"trade lane identifier"`
	Intent     string           `json:"intent" jsonschema:"run intent"`
	Estimate   int              `json:"estimate" jsonschema:"estimated profit before the intent adjustment"`
	Profit     int              `json:"profit" jsonschema:"credits the run would book"`
	Summary    string           `json:"summary" jsonschema:"travel log line for the run"`
	CargoDelta *CargoDeltaEntry `json:"cargo_delta,omitempty" jsonschema:"hold change; absent when scouting"`
}

// EstimateTradeRunTool defines the MCP tool schema for pricing a run.
func EstimateTradeRunTool(content dashboard.Content) *mcp.Tool {
	schema := inputSchema[EstimateTradeRunInput]()
	property(schema, "route_id").Enum = enumOf(content.RouteIDs())
	property(schema, "cargo_id").Enum = enumOf(content.CargoIDs())
	property(schema, "intent").Enum = enumOf(dashboard.TradeIntents)
	bounds(property(schema, "quantity"), dashboard.MinQuantity, dashboard.MaxQuantity)
	return &mcp.Tool{
		Name:        "estimate_trade_run",
		Title:       "Estimate trade run",
		Description: "Prices a trade run on one of the crew's lanes without booking it",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
	}
}

// EstimateTradeRunHandler plans a run with the dashboard rules. Nothing is booked.
func EstimateTradeRunHandler(content dashboard.Content) mcp.ToolHandlerFor[EstimateTradeRunInput, EstimateTradeRunResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EstimateTradeRunInput) (*mcp.CallToolResult, EstimateTradeRunResult, error) {
		outcome, err := dashboard.PlanRun(content, dashboard.TradeRequest{
			RouteID:  input.RouteID,
			CargoID:  input.CargoID,
			Intent:   input.Intent,
			Quantity: input.Quantity,
		})
		if err != nil {
			return nil, EstimateTradeRunResult{}, err
		}
		result := EstimateTradeRunResult{
			RouteID:  outcome.RouteID,
			Intent:   string(outcome.Intent),
			Estimate: outcome.Estimate,
			Profit:   outcome.Profit,
			Summary:  outcome.Summary,
		}
		if d := outcome.CargoDelta; d != nil {
			result.CargoDelta = &CargoDeltaEntry{
				ID:             d.ID,
				Name:           d.Name,
				QuantityChange: d.QuantityChange,
				Rarity:         d.Rarity,
			}
		}
		return nil, result, nil
	}
}
