package dashboard

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
	"github.com/louisbranch/les-coureurs/internal/platform/validation"
)

// TradeIntent is what the crew means to do on a run.
type TradeIntent string

const (
	IntentBuy   TradeIntent = "buy"
	IntentSell  TradeIntent = "sell"
	IntentScout TradeIntent = "scout"
)

// TradeIntents lists every intent in display order.
var TradeIntents = []TradeIntent{IntentBuy, IntentSell, IntentScout}

const (
	MinQuantity = 1
	MaxQuantity = 25
	// DefaultQuantity pre-fills the manifest form.
	DefaultQuantity = 2
)

// TradeRequest is a run manifest as submitted by a player or a tool call.
type TradeRequest struct {
	RouteID  string      `json:"route_id" form:"route" validate:"required"`
	CargoID  string      `json:"cargo_id" form:"cargo" validate:"required"`
	Intent   TradeIntent `json:"intent" form:"intent" validate:"required,oneof=buy sell scout"`
	Quantity int         `json:"quantity" form:"quantity" validate:"min=1,max=25"`
}

// CargoDelta is the change a run makes to the hold.
type CargoDelta struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	QuantityChange int    `json:"quantity_change"`
	Rarity         string `json:"rarity,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// TradeOutcome is the planned result of a run.
type TradeOutcome struct {
	RouteID    string      `json:"route_id"`
	Intent     TradeIntent `json:"intent"`
	Estimate   int         `json:"estimate"`
	Profit     int         `json:"profit"`
	Summary    string      `json:"summary"`
	CargoDelta *CargoDelta `json:"cargo_delta,omitempty"`
}

// EstimateProfit prices a run on route. Longer lanes pay a higher base and
// dangerous ones a premium; the intent scales the total.
func EstimateProfit(route Route, intent TradeIntent, quantity int) int {
	base := 180.0
	if strings.Contains(route.Distance, "4") {
		base = 320
	}

	risk := strings.ToLower(route.Risk)
	premium := 60.0
	switch {
	case strings.Contains(risk, "pirate"):
		premium = 140
	case strings.Contains(risk, "storm"):
		premium = 110
	}

	modifier := 0.4
	switch intent {
	case IntentSell:
		modifier = 0.75
	case IntentBuy:
		modifier = 1.1
	}
	return int(math.Round((base+premium)*modifier + float64(quantity)*35))
}

// PlanRun validates req and computes its outcome. Nothing is applied; pass
// the outcome to State.CompleteRun to book it.
func PlanRun(content Content, req TradeRequest) (TradeOutcome, error) {
	if err := validation.Struct(req); err != nil {
		return TradeOutcome{}, err
	}
	route, ok := content.Route(req.RouteID)
	if !ok {
		return TradeOutcome{}, routeNotFound(req.RouteID)
	}
	cargo, ok := content.CargoOption(req.CargoID)
	if !ok {
		return TradeOutcome{}, apperrors.WithMetadata(apperrors.CodeCargoNotFound,
			fmt.Sprintf("cargo %q not found", req.CargoID), map[string]string{"id": req.CargoID})
	}

	estimate := EstimateProfit(route, req.Intent, req.Quantity)
	outcome := TradeOutcome{
		RouteID:  route.ID,
		Intent:   req.Intent,
		Estimate: estimate,
		Profit:   estimate,
		Summary:  fmt.Sprintf("Threaded the %s run: %s", route.Name, route.Opportunity),
	}

	switch req.Intent {
	case IntentScout:
		outcome.Profit = int(math.Round(float64(estimate) * 0.5))
	case IntentBuy, IntentSell:
		change := req.Quantity
		if req.Intent == IntentSell {
			change = -req.Quantity
		}
		outcome.CargoDelta = &CargoDelta{
			ID:             cargo.ID,
			Name:           cargo.Label,
			QuantityChange: change,
			Rarity:         cargo.Rarity,
			Notes:          cargo.Notes,
		}
	}
	return outcome, nil
}
