package catalog

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
)

// MissionFilter narrows ListMissions. Zero values match everything.
type MissionFilter struct {
	Status   MissionStatus
	Priority MissionPriority
	Limit    int
}

// InventoryFilter narrows Inventory. Category matches case-insensitively.
type InventoryFilter struct {
	Status   InventoryStatus
	Category string
}

// TravelFilter narrows TravelNetwork. Location matches either end of a corridor.
type TravelFilter struct {
	Clearance Clearance
	Location  string
}

// ListMissions applies status, then priority, then limit. Order is kept.
func (c *Catalog) ListMissions(filter MissionFilter) []Mission {
	out := make([]Mission, 0, len(c.Missions))
	for _, m := range c.Missions {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && m.Priority != filter.Priority {
			continue
		}
		out = append(out, cloneMission(m))
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Mission returns the mission with id.
func (c *Catalog) Mission(id string) (Mission, error) {
	for _, m := range c.Missions {
		if m.ID == id {
			return cloneMission(m), nil
		}
	}
	return Mission{}, apperrors.WithMetadata(apperrors.CodeMissionNotFound,
		fmt.Sprintf("mission %q not found", id), map[string]string{"id": id})
}

// Ledger returns the inventory lines matching filter.
func (c *Catalog) Ledger(filter InventoryFilter) []InventoryItem {
	out := make([]InventoryItem, 0, len(c.Inventory))
	for _, item := range c.Inventory {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(item.Category, strings.TrimSpace(filter.Category)) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// TotalQuantity sums the quantities of items.
func TotalQuantity(items []InventoryItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// TravelNetwork returns the corridors matching filter.
func (c *Catalog) TravelNetwork(filter TravelFilter) []TravelCorridor {
	location := strings.TrimSpace(filter.Location)
	out := make([]TravelCorridor, 0, len(c.Travel))
	for _, corridor := range c.Travel {
		if filter.Clearance != "" && corridor.Clearance != filter.Clearance {
			continue
		}
		if location != "" && !strings.EqualFold(corridor.Origin, location) && !strings.EqualFold(corridor.Destination, location) {
			continue
		}
		corridor.Bottlenecks = slices.Clone(corridor.Bottlenecks)
		out = append(out, corridor)
	}
	return out
}

// Corridor returns the corridor with id.
func (c *Catalog) Corridor(id string) (TravelCorridor, error) {
	for _, corridor := range c.Travel {
		if corridor.ID == id {
			corridor.Bottlenecks = slices.Clone(corridor.Bottlenecks)
			return corridor, nil
		}
	}
	return TravelCorridor{}, apperrors.WithMetadata(apperrors.CodeRouteNotFound,
		fmt.Sprintf("corridor %q not found", id), map[string]string{"id": id})
}

func cloneMission(m Mission) Mission {
	m.Reward.Favors = slices.Clone(m.Reward.Favors)
	m.Specialists = slices.Clone(m.Specialists)
	m.Tags = slices.Clone(m.Tags)
	return m
}
