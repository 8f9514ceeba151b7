package character

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Character is a reusable identity from the roster. The voice id maps to
// one of the two synthesized voices.
type Character struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Traits     []string `json:"traits"`
	VoiceID    int      `json:"voice_id"`
	Occupation string   `json:"occupation"`
	Locations  []string `json:"locations"`
}

// Roster is the optional pool of characters usable across locations.
type Roster struct {
	characters []Character
	rng        *rand.Rand
}

// NewRoster builds a roster from an already-loaded slice.
func NewRoster(characters []Character, rng *rand.Rand) *Roster {
	return &Roster{characters: characters, rng: rng}
}

// LoadRoster reads the character roster from a JSON file.
func LoadRoster(path string, rng *rand.Rand) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file: %w", err)
	}

	var characters []Character
	if err := json.Unmarshal(data, &characters); err != nil {
		return nil, fmt.Errorf("failed to parse characters file: %w", err)
	}

	return &Roster{characters: characters, rng: rng}, nil
}

// Len reports the roster size.
func (r *Roster) Len() int {
	return len(r.characters)
}

// PickPair selects two distinct characters for a location. Characters whose
// location list contains locationID are preferred; when fewer than two match
// the whole roster is used instead. Selection is uniform without replacement.
func (r *Roster) PickPair(locationID string) ([2]Character, error) {
	pool := make([]Character, 0, len(r.characters))
	for _, c := range r.characters {
		if c.visits(locationID) {
			pool = append(pool, c)
		}
	}
	if len(pool) < 2 {
		pool = append(pool[:0:0], r.characters...)
	}
	if len(pool) < 2 {
		return [2]Character{}, fmt.Errorf("roster has %d characters, need at least 2", len(pool))
	}

	first := r.rng.Intn(len(pool))
	second := r.rng.Intn(len(pool) - 1)
	if second >= first {
		second++
	}
	return [2]Character{pool[first], pool[second]}, nil
}

func (c Character) visits(locationID string) bool {
	for _, id := range c.Locations {
		if id == locationID {
			return true
		}
	}
	return false
}
