package dashboard

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

const recentRunLimit = 3

var rarityColors = map[string]string{
	"common":   "#94a3b8",
	"uncommon": "#38bdf8",
	"rare":     "#818cf8",
	"exotic":   "#facc15",
}

// RarityColor returns the swatch colour for a rarity label.
func RarityColor(rarity string) string {
	if c, ok := rarityColors[strings.ToLower(rarity)]; ok {
		return c
	}
	return "#38bdf8"
}

// StageLabel renders "Étape: x / n" for the selected mission.
func (s *State) StageLabel() string {
	n := 1
	if m, ok := s.Selected(); ok && len(m.Phases) > 0 {
		n = len(m.Phases)
	}
	return "Étape: " + strconv.Itoa(min(s.MissionStage+1, n)) + " / " + strconv.Itoa(n)
}

// AdvanceLabel is the advance button text; the last phase reads "Terminer".
func (s *State) AdvanceLabel() string {
	n := 1
	if m, ok := s.Selected(); ok && len(m.Phases) > 0 {
		n = len(m.Phases)
	}
	if s.MissionStage >= n-1 {
		return "Terminer"
	}
	return "Avancer l'étape"
}

// TotalUnits sums the hold.
func (s *State) TotalUnits() int {
	total := 0
	for _, item := range s.Inventory {
		total += item.Quantity
	}
	return total
}

// TagCount is the number of distinct cargo tags in the hold.
func (s *State) TagCount() int {
	return len(s.Inventory)
}

// IsCompleted reports whether missionID has been completed at least once.
func (s *State) IsCompleted(missionID string) bool {
	return slices.Contains(s.CompletedMissions, missionID)
}

// RecentRuns returns up to three travel records, newest first.
func (s *State) RecentRuns() []TravelRecord {
	n := min(len(s.TravelHistory), recentRunLimit)
	out := make([]TravelRecord, 0, n)
	for i := len(s.TravelHistory) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.TravelHistory[i])
	}
	return out
}

// PlayerEntry is the crew's own leaderboard row.
func (s *State) PlayerEntry() LeaderboardEntry {
	lastRun := "Awaiting first dispatch"
	if n := len(s.TravelHistory); n > 0 {
		lastRun = s.TravelHistory[n-1].Summary
	}
	return LeaderboardEntry{Crew: s.Crew.CallSign, Reputation: s.Reputation, LastRun: lastRun}
}

// Roster merges player into entries. A listed crew leaves entries as they are;
// otherwise the player is inserted, rows are ordered by reputation (ties keep
// their order, player first) and re-ranked from 1.
func Roster(entries []LeaderboardEntry, player LeaderboardEntry) []LeaderboardEntry {
	for _, e := range entries {
		if e.Crew == player.Crew {
			return slices.Clone(entries)
		}
	}
	out := make([]LeaderboardEntry, 0, len(entries)+1)
	out = append(out, player)
	out = append(out, entries...)
	slices.SortStableFunc(out, func(a, b LeaderboardEntry) int {
		return cmp.Compare(b.Reputation, a.Reputation)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Leaderboard is the roster including the player.
func (s *State) Leaderboard() []LeaderboardEntry {
	return Roster(s.content.Leaderboard, s.PlayerEntry())
}
