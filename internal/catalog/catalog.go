// Package catalog holds the courier faction's mission, inventory and travel
// records and the pure filters served over MCP.
package catalog

import "time"

// MissionStatus is a mission's engagement state.
type MissionStatus string

const (
	MissionAvailable MissionStatus = "available"
	MissionActive    MissionStatus = "active"
	MissionCompleted MissionStatus = "completed"
)

// MissionStatuses lists every status in schema order.
var MissionStatuses = []MissionStatus{MissionAvailable, MissionActive, MissionCompleted}

// MissionPriority is a mission's priority tier.
type MissionPriority string

const (
	PriorityLow      MissionPriority = "low"
	PriorityModerate MissionPriority = "moderate"
	PriorityHigh     MissionPriority = "high"
)

// MissionPriorities lists every priority in schema order.
var MissionPriorities = []MissionPriority{PriorityLow, PriorityModerate, PriorityHigh}

// InventoryStatus is the readiness of a ledger item.
type InventoryStatus string

const (
	InventoryStaged      InventoryStatus = "staged"
	InventoryDeployed    InventoryStatus = "deployed"
	InventoryMaintenance InventoryStatus = "maintenance"
)

// InventoryStatuses lists every inventory status in schema order.
var InventoryStatuses = []InventoryStatus{InventoryStaged, InventoryDeployed, InventoryMaintenance}

// Clearance is the paperwork level a corridor requires.
type Clearance string

const (
	ClearanceStandard Clearance = "standard"
	ClearanceExpress  Clearance = "express"
	ClearanceShadow   Clearance = "shadow"
)

// Clearances lists every clearance in schema order.
var Clearances = []Clearance{ClearanceStandard, ClearanceExpress, ClearanceShadow}

// Reward is what a mission pays out.
type Reward struct {
	Credits int      `json:"credits" toml:"credits" validate:"min=0"`
	Favors  []string `json:"favors,omitempty" toml:"favors"`
}

// Window is the time span a mission may run in.
type Window struct {
	Start time.Time `json:"start" toml:"start" validate:"required"`
	End   time.Time `json:"end" toml:"end" validate:"required,gtefield=Start"`
}

// Mission is one contract on the board.
type Mission struct {
	ID          string          `json:"id" toml:"id" validate:"required"`
	Codename    string          `json:"codename" toml:"codename" validate:"required"`
	Summary     string          `json:"summary" toml:"summary"`
	Status      MissionStatus   `json:"status" toml:"status" validate:"required,oneof=available active completed"`
	Priority    MissionPriority `json:"priority" toml:"priority" validate:"required,oneof=low moderate high"`
	Region      string          `json:"region" toml:"region"`
	Reward      Reward          `json:"reward" toml:"reward"`
	Window      Window          `json:"window" toml:"window"`
	Specialists []string        `json:"specialists" toml:"specialists"`
	Tags        []string        `json:"tags" toml:"tags"`
}

// InventoryItem is one line of the faction's supply ledger.
type InventoryItem struct {
	ID       string          `json:"id" toml:"id" validate:"required"`
	Label    string          `json:"label" toml:"label" validate:"required"`
	Category string          `json:"category" toml:"category"`
	Status   InventoryStatus `json:"status" toml:"status" validate:"required,oneof=staged deployed maintenance"`
	Quantity int             `json:"quantity" toml:"quantity" validate:"min=1"`
	Unit     string          `json:"unit" toml:"unit"`
	Notes    string          `json:"notes,omitempty" toml:"notes"`
}

// TravelCorridor is a known route between two holdings.
type TravelCorridor struct {
	ID           string    `json:"id" toml:"id" validate:"required"`
	Origin       string    `json:"origin" toml:"origin" validate:"required"`
	Destination  string    `json:"destination" toml:"destination" validate:"required"`
	Clearance    Clearance `json:"clearance" toml:"clearance" validate:"required,oneof=standard express shadow"`
	TypicalHours int       `json:"typical_hours" toml:"typical_hours" validate:"min=1"`
	Bottlenecks  []string  `json:"bottlenecks" toml:"bottlenecks"`
	Conveyance   string    `json:"conveyance" toml:"conveyance"`
}

// Widget describes the dashboard widget advertised to MCP hosts.
type Widget struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TemplateURI string `json:"template_uri"`
	Invoking    string `json:"invoking"`
	Invoked     string `json:"invoked"`
}

// Catalog is the full data set one server instance serves.
type Catalog struct {
	Missions  []Mission        `json:"missions" toml:"missions" validate:"unique=ID,dive"`
	Inventory []InventoryItem  `json:"inventory" toml:"inventory" validate:"unique=ID,dive"`
	Travel    []TravelCorridor `json:"travel" toml:"travel" validate:"unique=ID,dive"`
}

// ValidMissionStatus reports whether s is a known mission status.
func ValidMissionStatus(s string) bool {
	for _, v := range MissionStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// ValidMissionPriority reports whether p is a known priority.
func ValidMissionPriority(p string) bool {
	for _, v := range MissionPriorities {
		if string(v) == p {
			return true
		}
	}
	return false
}

// ValidInventoryStatus reports whether s is a known inventory status.
func ValidInventoryStatus(s string) bool {
	for _, v := range InventoryStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

// ValidClearance reports whether c is a known clearance.
func ValidClearance(c string) bool {
	for _, v := range Clearances {
		if string(v) == c {
			return true
		}
	}
	return false
}
