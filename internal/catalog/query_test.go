package catalog

import (
	"testing"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
)

func missionIDs(missions []Mission) []string {
	ids := make([]string, len(missions))
	for i, m := range missions {
		ids[i] = m.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListMissions(t *testing.T) {
	cat := Default()
	tests := []struct {
		name   string
		filter MissionFilter
		want   []string
	}{
		{"no filter", MissionFilter{}, []string{"glass-tithe", "salt-barge", "orchid-charter", "cinder-pass"}},
		{"status", MissionFilter{Status: MissionAvailable}, []string{"salt-barge", "orchid-charter"}},
		{"priority", MissionFilter{Priority: PriorityModerate}, []string{"orchid-charter", "cinder-pass"}},
		{"status and priority", MissionFilter{Status: MissionAvailable, Priority: PriorityHigh}, []string{"salt-barge"}},
		{"limit", MissionFilter{Limit: 2}, []string{"glass-tithe", "salt-barge"}},
		{"limit after filter", MissionFilter{Priority: PriorityHigh, Limit: 1}, []string{"glass-tithe"}},
		{"limit above size", MissionFilter{Limit: 10}, []string{"glass-tithe", "salt-barge", "orchid-charter", "cinder-pass"}},
		{"zero limit means all", MissionFilter{Limit: 0, Status: MissionCompleted}, []string{"cinder-pass"}},
		{"no match", MissionFilter{Priority: PriorityLow}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missionIDs(cat.ListMissions(tt.filter))
			if !equalIDs(got, tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListMissionsReturnsCopies(t *testing.T) {
	cat := Default()
	got := cat.ListMissions(MissionFilter{})
	got[0].Tags[0] = "tampered"
	got[0].Status = MissionCompleted

	again := cat.ListMissions(MissionFilter{})
	if again[0].Tags[0] != "recovery" || again[0].Status != MissionActive {
		t.Fatalf("catalog mutated through result: %+v", again[0])
	}
}

func TestMissionLookup(t *testing.T) {
	cat := Default()
	m, err := cat.Mission("orchid-charter")
	if err != nil {
		t.Fatalf("mission: %v", err)
	}
	if m.Reward.Credits != 420 {
		t.Fatalf("credits = %d", m.Reward.Credits)
	}

	_, err = cat.Mission("ghost-run")
	if apperrors.CodeOf(err) != apperrors.CodeMissionNotFound {
		t.Fatalf("code = %q, want mission not found", apperrors.CodeOf(err))
	}
	if err.Error() != `mission "ghost-run" not found` {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestInventoryFilters(t *testing.T) {
	cat := Default()
	tests := []struct {
		name      string
		filter    InventoryFilter
		wantCount int
		wantTotal int
	}{
		{"all", InventoryFilter{}, 4, 26},
		{"staged", InventoryFilter{Status: InventoryStaged}, 2, 13},
		{"category case-insensitive", InventoryFilter{Category: "soins"}, 1, 9},
		{"status and category", InventoryFilter{Status: InventoryDeployed, Category: "Soins"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := cat.Ledger(tt.filter)
			if len(items) != tt.wantCount {
				t.Fatalf("count = %d, want %d", len(items), tt.wantCount)
			}
			if got := TotalQuantity(items); got != tt.wantTotal {
				t.Fatalf("total = %d, want %d", got, tt.wantTotal)
			}
		})
	}
}

func TestTravelNetworkFilters(t *testing.T) {
	cat := Default()
	tests := []struct {
		name   string
		filter TravelFilter
		want   []string
	}{
		{"all", TravelFilter{}, []string{"port-royal-to-bastion", "montreuil-to-verrieres", "citadelle-to-port-royal"}},
		{"clearance", TravelFilter{Clearance: ClearanceShadow}, []string{"port-royal-to-bastion"}},
		{"location either end", TravelFilter{Location: "port-royal des brumes"}, []string{"port-royal-to-bastion", "citadelle-to-port-royal"}},
		{"clearance and location", TravelFilter{Clearance: ClearanceStandard, Location: "Port-Royal des Brumes"}, []string{"citadelle-to-port-royal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corridors := cat.TravelNetwork(tt.filter)
			got := make([]string, len(corridors))
			for i, c := range corridors {
				got[i] = c.ID
			}
			if !equalIDs(got, tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorridorLookup(t *testing.T) {
	cat := Default()
	c, err := cat.Corridor("montreuil-to-verrieres")
	if err != nil {
		t.Fatalf("corridor: %v", err)
	}
	if c.TypicalHours != 36 {
		t.Fatalf("hours = %d", c.TypicalHours)
	}
	if _, err := cat.Corridor("nowhere"); !apperrors.CodeOf(err).IsNotFound() {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnumValidators(t *testing.T) {
	if !ValidMissionStatus("active") || ValidMissionStatus("archived") {
		t.Fatal("mission status validation wrong")
	}
	if !ValidMissionPriority("low") || ValidMissionPriority("urgent") {
		t.Fatal("priority validation wrong")
	}
	if !ValidInventoryStatus("maintenance") || ValidInventoryStatus("lost") {
		t.Fatal("inventory status validation wrong")
	}
	if !ValidClearance("shadow") || ValidClearance("royal") {
		t.Fatal("clearance validation wrong")
	}
}
