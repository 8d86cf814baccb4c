package dashboard

import (
	"testing"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
)

func TestEstimateProfit(t *testing.T) {
	content := DefaultContent()
	canal, _ := content.Route("canal-brume")
	col, _ := content.Route("col-cendre")
	pirates := Route{Distance: "1 jour", Risk: "Pirate raids off the reef"}
	storms := Route{Distance: "3 jours", Risk: "Storm season"}

	tests := []struct {
		name     string
		route    Route
		intent   TradeIntent
		quantity int
		want     int
	}{
		{"short lane buy", canal, IntentBuy, 2, 334},
		{"short lane sell", canal, IntentSell, 2, 250},
		{"short lane scout", canal, IntentScout, 2, 166},
		{"long lane buy", col, IntentBuy, 1, 453},
		{"pirate premium", pirates, IntentSell, 3, 345},
		{"storm premium", storms, IntentScout, 1, 151},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateProfit(tt.route, tt.intent, tt.quantity); got != tt.want {
				t.Fatalf("EstimateProfit = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPlanRun(t *testing.T) {
	content := DefaultContent()

	t.Run("scout halves profit and moves no cargo", func(t *testing.T) {
		out, err := PlanRun(content, TradeRequest{RouteID: "canal-brume", CargoID: "maps", Intent: IntentScout, Quantity: 2})
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if out.Estimate != 166 || out.Profit != 83 || out.CargoDelta != nil {
			t.Fatalf("outcome = %+v", out)
		}
		want := "Threaded the Canal des Brumes run: Troquer des vivres séchés contre des briques de charbon à Port-Royal"
		if out.Summary != want {
			t.Fatalf("summary = %q", out.Summary)
		}
	})

	t.Run("sell carries negative delta", func(t *testing.T) {
		out, err := PlanRun(content, TradeRequest{RouteID: "route-lanterne", CargoID: "seals", Intent: IntentSell, Quantity: 4})
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if out.CargoDelta == nil || out.CargoDelta.QuantityChange != -4 || out.CargoDelta.Name != "Charter Seals" {
			t.Fatalf("delta = %+v", out.CargoDelta)
		}
	})

	t.Run("identical requests plan identically", func(t *testing.T) {
		req := TradeRequest{RouteID: "col-cendre", CargoID: "silk", Intent: IntentBuy, Quantity: 5}
		a, _ := PlanRun(content, req)
		b, _ := PlanRun(content, req)
		if a.Profit != b.Profit || a.Summary != b.Summary || *a.CargoDelta != *b.CargoDelta {
			t.Fatalf("plans differ: %+v vs %+v", a, b)
		}
	})

	errTests := []struct {
		name string
		req  TradeRequest
		code apperrors.Code
	}{
		{"quantity too high", TradeRequest{RouteID: "canal-brume", CargoID: "silk", Intent: IntentBuy, Quantity: 26}, apperrors.CodeInvalidArgument},
		{"quantity zero", TradeRequest{RouteID: "canal-brume", CargoID: "silk", Intent: IntentBuy}, apperrors.CodeInvalidArgument},
		{"bad intent", TradeRequest{RouteID: "canal-brume", CargoID: "silk", Intent: "smuggle", Quantity: 1}, apperrors.CodeInvalidArgument},
		{"unknown route", TradeRequest{RouteID: "nowhere", CargoID: "silk", Intent: IntentBuy, Quantity: 1}, apperrors.CodeRouteNotFound},
		{"unknown cargo", TradeRequest{RouteID: "canal-brume", CargoID: "rum", Intent: IntentBuy, Quantity: 1}, apperrors.CodeCargoNotFound},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanRun(content, tt.req)
			if got := apperrors.CodeOf(err); got != tt.code {
				t.Fatalf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}
