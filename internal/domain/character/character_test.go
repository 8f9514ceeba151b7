package character

import (
	"math/rand"
	"testing"
)

func testRoster(t *testing.T, characters []Character) *Roster {
	t.Helper()
	return NewRoster(characters, rand.New(rand.NewSource(7)))
}

func TestPickPairPrefersLocationMatches(t *testing.T) {
	roster := testRoster(t, []Character{
		{ID: "sanne", Name: "Sanne", Locations: []string{"bakkerij"}},
		{ID: "pieter", Name: "Pieter", Locations: []string{"bakkerij", "markt"}},
		{ID: "els", Name: "Els", Locations: []string{"supermarkt"}},
	})

	for i := 0; i < 50; i++ {
		pair, err := roster.PickPair("bakkerij")
		if err != nil {
			t.Fatalf("PickPair returned error: %v", err)
		}
		for _, c := range pair {
			if c.ID == "els" {
				t.Fatal("PickPair selected a character not associated with the location")
			}
		}
		if pair[0].ID == pair[1].ID {
			t.Fatal("PickPair selected the same character twice")
		}
	}
}

func TestPickPairFallsBackToFullRoster(t *testing.T) {
	roster := testRoster(t, []Character{
		{ID: "sanne", Locations: []string{"bakkerij"}},
		{ID: "els", Locations: []string{"supermarkt"}},
		{ID: "joris", Locations: []string{"cafe"}},
	})

	// Only one character visits the station, so the whole roster is eligible.
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		pair, err := roster.PickPair("station")
		if err != nil {
			t.Fatalf("PickPair returned error: %v", err)
		}
		seen[pair[0].ID] = true
		seen[pair[1].ID] = true
	}
	if len(seen) < 3 {
		t.Errorf("fallback pool did not cover the roster, saw %v", seen)
	}
}

func TestPickPairTooFewCharacters(t *testing.T) {
	roster := testRoster(t, []Character{{ID: "sanne"}})

	if _, err := roster.PickPair("bakkerij"); err == nil {
		t.Error("PickPair succeeded with a single-character roster")
	}
}
