package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
)

// ErrNotFound is returned when a location id does not exist in the store.
var ErrNotFound = errors.New("location not found")

// Location is a place in the Dutch neighbourhood where a scenario plays out.
type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Store holds the location reference data. It is loaded once at startup
// and read-only afterwards.
type Store struct {
	locations []Location
	rng       *rand.Rand
}

// NewStore builds a store from an already-loaded slice. Useful for tests.
func NewStore(locations []Location, rng *rand.Rand) *Store {
	return &Store{locations: locations, rng: rng}
}

// LoadStore reads locations from a JSON file.
func LoadStore(path string, rng *rand.Rand) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse locations file: %w", err)
	}

	if len(locations) == 0 {
		return nil, fmt.Errorf("no locations found in %s", path)
	}

	return &Store{locations: locations, rng: rng}, nil
}

// All returns every location in load order.
func (s *Store) All() []Location {
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Get looks a location up by id.
func (s *Store) Get(id string) (Location, error) {
	for _, loc := range s.locations {
		if loc.ID == id {
			return loc, nil
		}
	}
	return Location{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Random picks a location uniformly at random, avoiding excludeID when
// possible. If the exclusion would empty the pool it is ignored, so a
// single-location store always returns its sole entry.
func (s *Store) Random(excludeID string) Location {
	pool := make([]Location, 0, len(s.locations))
	for _, loc := range s.locations {
		if loc.ID != excludeID {
			pool = append(pool, loc)
		}
	}
	if len(pool) == 0 {
		pool = s.locations
	}
	return pool[s.rng.Intn(len(pool))]
}

// Len reports the number of locations loaded.
func (s *Store) Len() int {
	return len(s.locations)
}
