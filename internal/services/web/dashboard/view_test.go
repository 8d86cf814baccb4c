package dashboard

import (
	"testing"
	"time"
)

func TestRoster(t *testing.T) {
	entries := DefaultContent().Leaderboard

	tests := []struct {
		name   string
		player LeaderboardEntry
		want   []string
	}{
		{"player at bottom", LeaderboardEntry{Crew: "Courriers du Levant", Reputation: 12}, []string{"House Briar Couriers", "Velvet Signal", "Caravan of Embers", "Courriers du Levant"}},
		{"tie keeps player first", LeaderboardEntry{Crew: "Courriers du Levant", Reputation: 16}, []string{"House Briar Couriers", "Courriers du Levant", "Velvet Signal", "Caravan of Embers"}},
		{"player on top", LeaderboardEntry{Crew: "Courriers du Levant", Reputation: 30}, []string{"Courriers du Levant", "House Briar Couriers", "Velvet Signal", "Caravan of Embers"}},
		{"already listed", LeaderboardEntry{Crew: "Velvet Signal", Reputation: 99}, []string{"House Briar Couriers", "Velvet Signal", "Caravan of Embers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Roster(entries, tt.player)
			if len(got) != len(tt.want) {
				t.Fatalf("roster = %+v", got)
			}
			for i, e := range got {
				if e.Crew != tt.want[i] || e.Rank != i+1 {
					t.Fatalf("row %d = %+v, want %s rank %d", i, e, tt.want[i], i+1)
				}
			}
		})
	}
	if entries[0].Rank != 1 || len(entries) != 3 {
		t.Fatal("input entries were modified")
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := NewState(DefaultContent())
	for i, summary := range []string{"a", "b", "c", "d"} {
		s.TravelHistory = append(s.TravelHistory, TravelRecord{Summary: summary, Timestamp: fixedNow.Add(time.Duration(i) * time.Hour)})
	}
	got := s.RecentRuns()
	if len(got) != 3 || got[0].Summary != "d" || got[2].Summary != "b" {
		t.Fatalf("recent runs = %+v", got)
	}
	if s.PlayerEntry().LastRun != "d" {
		t.Fatalf("player last run = %q", s.PlayerEntry().LastRun)
	}
}

func TestDerivedCounts(t *testing.T) {
	s := NewState(DefaultContent())
	if s.TotalUnits() != 19 || s.TagCount() != 3 {
		t.Fatalf("units %d tags %d", s.TotalUnits(), s.TagCount())
	}
	if got := s.PlayerEntry().LastRun; got != "Awaiting first dispatch" {
		t.Fatalf("last run = %q", got)
	}
}

func TestRarityColor(t *testing.T) {
	if RarityColor("Exotic") != "#facc15" || RarityColor("common") != "#94a3b8" || RarityColor("mythic") != "#38bdf8" {
		t.Fatal("unexpected rarity colours")
	}
}
