package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/louisbranch/les-coureurs/internal/platform/errors"
)

const (
	startingCredits    = 1240
	startingReputation = 12

	// completionOrigin labels travel records logged by finishing a mission.
	completionOrigin = "Divers"
	rewardRarity     = "Common"
)

// newRecordID is swapped in tests.
var newRecordID = uuid.NewString

// TravelRecord is one entry of the crew's travel log.
type TravelRecord struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Summary     string    `json:"summary"`
	Profit      int       `json:"profit"`
	Timestamp   time.Time `json:"timestamp"`
}

// State is one player's dashboard. Transitions mutate it in place; callers
// serialize access.
type State struct {
	SelectedMissionID string         `json:"selected_mission_id"`
	MissionStage      int            `json:"mission_stage"`
	CompletedMissions []string       `json:"completed_missions"`
	Credits           int            `json:"credits"`
	Reputation        int            `json:"reputation"`
	Inventory         []Item         `json:"inventory"`
	TravelHistory     []TravelRecord `json:"travel_history"`
	Crew              Crew           `json:"crew"`

	content Content
}

// NewState builds the opening state: first mission selected at stage 0.
func NewState(content Content) *State {
	s := &State{
		Credits:    startingCredits,
		Reputation: startingReputation,
		Inventory:  slices.Clone(content.Inventory),
		Crew:       content.Crew,
		content:    content,
	}
	if len(content.Missions) > 0 {
		s.SelectedMissionID = content.Missions[0].ID
	}
	return s
}

// Content returns the material the state was built from.
func (s *State) Content() Content {
	return s.content
}

// Selected returns the selected mission, falling back to the first one.
func (s *State) Selected() (StoryMission, bool) {
	if m, ok := s.content.Mission(s.SelectedMissionID); ok {
		return m, true
	}
	if len(s.content.Missions) > 0 {
		return s.content.Missions[0], true
	}
	return StoryMission{}, false
}

// Select switches to missionID and restarts its briefing.
func (s *State) Select(missionID string) error {
	if _, ok := s.content.Mission(missionID); !ok {
		return missionNotFound(missionID)
	}
	s.SelectedMissionID = missionID
	s.MissionStage = 0
	return nil
}

// Advance moves the selected mission one phase forward. Clearing the last
// phase completes the mission: rewards are paid, the run is logged and the
// stage wraps to 0. It reports whether the mission was completed.
func (s *State) Advance(now time.Time) (bool, error) {
	mission, ok := s.Selected()
	if !ok {
		return false, apperrors.New(apperrors.CodeMissionNotFound, "no mission selected")
	}
	next := min(s.MissionStage+1, len(mission.Phases))
	if next < len(mission.Phases) {
		s.MissionStage = next
		return false, nil
	}

	s.MissionStage = 0
	s.CompletedMissions = append(s.CompletedMissions, mission.ID)
	s.Credits += mission.Rewards.Credits
	s.Reputation += mission.Rewards.Reputation
	s.TravelHistory = append(s.TravelHistory, TravelRecord{
		ID:          newRecordID(),
		Origin:      completionOrigin,
		Destination: mission.Locale,
		Summary:     "Completed: " + mission.Title,
		Profit:      mission.Rewards.Credits,
		Timestamp:   now.UTC(),
	})
	for idx, name := range mission.Rewards.Items {
		s.Inventory = MergeInventory(s.Inventory, Item{
			ID:       fmt.Sprintf("%s-item-%d", mission.ID, idx),
			Name:     name,
			Quantity: 1,
			Rarity:   rewardRarity,
		})
	}
	return true, nil
}

// Reset restarts the selected mission's briefing.
func (s *State) Reset() {
	s.MissionStage = 0
}

// CompleteRun books a planned trade run. Selling more cargo than the hold
// carries is rejected and leaves the state untouched.
func (s *State) CompleteRun(outcome TradeOutcome, now time.Time) error {
	route, ok := s.content.Route(outcome.RouteID)
	if !ok {
		return routeNotFound(outcome.RouteID)
	}
	if d := outcome.CargoDelta; d != nil && d.QuantityChange < 0 {
		held := 0
		for _, item := range s.Inventory {
			if item.ID == d.ID {
				held = item.Quantity
			}
		}
		if held+d.QuantityChange < 0 {
			return apperrors.WithMetadata(apperrors.CodeInsufficientCargo,
				fmt.Sprintf("cannot sell %d %s: hold carries %d", -d.QuantityChange, d.Name, held),
				map[string]string{"cargo_id": d.ID})
		}
	}

	s.Credits += outcome.Profit
	s.TravelHistory = append(s.TravelHistory, TravelRecord{
		ID:          newRecordID(),
		Origin:      completionOrigin,
		Destination: route.Name,
		Summary:     outcome.Summary,
		Profit:      outcome.Profit,
		Timestamp:   now.UTC(),
	})
	if d := outcome.CargoDelta; d != nil {
		s.Inventory = MergeInventory(s.Inventory, Item{
			ID:       d.ID,
			Name:     d.Name,
			Quantity: d.QuantityChange,
			Rarity:   d.Rarity,
			Notes:    d.Notes,
		})
	}
	return nil
}

// MergeInventory adds delta.Quantity to the item sharing delta's id, or
// appends delta when the hold has no such tag. Items that reach zero are
// dropped. The input slice is not modified.
func MergeInventory(items []Item, delta Item) []Item {
	out := make([]Item, 0, len(items)+1)
	merged := false
	for _, item := range items {
		if item.ID == delta.ID {
			item.Quantity += delta.Quantity
			merged = true
		}
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	if !merged && delta.Quantity > 0 {
		out = append(out, delta)
	}
	return out
}

func missionNotFound(id string) error {
	return apperrors.WithMetadata(apperrors.CodeMissionNotFound,
		fmt.Sprintf("mission %q not found", id), map[string]string{"id": id})
}

func routeNotFound(id string) error {
	return apperrors.WithMetadata(apperrors.CodeRouteNotFound,
		fmt.Sprintf("route %q not found", id), map[string]string{"id": id})
}
