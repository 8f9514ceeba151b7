package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"taalquest/internal/domain/location"
	"taalquest/internal/quest/llm"
	"taalquest/internal/quest/tts"
	"taalquest/internal/randx"
)

const scriptResponse = `{
  "situation": "Buying bread",
  "characters": ["Sanne", "Pieter"],
  "dialogue": [
    {"speaker": "Sanne", "text": "Goedemorgen!"},
    {"speaker": "Pieter", "text": "Een brood graag."},
    {"speaker": "Sanne", "text": "Wit of bruin?"},
    {"speaker": "Pieter", "text": "Bruin, alstublieft."}
  ]
}`

func testLocations() []location.Location {
	return []location.Location{
		{ID: "bakkerij", Name: "Bakkerij de Gouden Korrel", Type: "bakkerij"},
		{ID: "markt", Name: "De Zaterdagmarkt", Type: "markt"},
	}
}

func newTestGenerator(t *testing.T, locations []location.Location, gen *llm.MockGenerator) (*Generator, *tts.MockBackend) {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	backend := tts.NewMockBackend()
	speech, err := tts.NewSpeechCache(t.TempDir(), backend)
	if err != nil {
		t.Fatal(err)
	}
	store := location.NewStore(locations, rng)
	requester := llm.NewRequester(gen, rng)
	return NewGenerator(store, nil, requester, speech), backend
}

func TestGenerateByLocationID(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})

	sc, err := g.Generate(context.Background(), "bakkerij", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if sc.Location.ID != "bakkerij" {
		t.Errorf("Location.ID = %q, want bakkerij", sc.Location.ID)
	}
	if len(sc.AudioFiles) != len(sc.Script.Dialogue) {
		t.Errorf("audio files = %d, dialogue lines = %d", len(sc.AudioFiles), len(sc.Script.Dialogue))
	}
}

func TestGenerateAudioOrderMatchesDialogue(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})

	sc, err := g.Generate(context.Background(), "bakkerij", "")
	if err != nil {
		t.Fatal(err)
	}

	// Re-synthesizing each line in order must reproduce the same keys: the
	// list is content-addressed and in dialogue order.
	paths, err := g.ResolveAudio(sc)
	if err != nil {
		t.Fatalf("ResolveAudio returned error: %v", err)
	}
	for i, path := range paths {
		if filepath.Base(path) != sc.AudioFiles[i] {
			t.Errorf("audio %d resolves to %q, key %q", i, path, sc.AudioFiles[i])
		}
	}
}

func TestGenerateUnknownLocation(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})

	_, err := g.Generate(context.Background(), "zwembad", "")
	if !errors.Is(err, location.ErrNotFound) {
		t.Errorf("Generate error = %v, want ErrNotFound", err)
	}
}

func TestGenerateAvoidsExcludedLocation(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})

	for i := 0; i < 20; i++ {
		sc, err := g.Generate(context.Background(), "", "markt")
		if err != nil {
			t.Fatal(err)
		}
		if sc.Location.ID == "markt" {
			t.Fatal("Generate returned the excluded location")
		}
	}
}

func TestGenerateSoleLocationIgnoresExclusion(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations()[:1], &llm.MockGenerator{Response: scriptResponse})

	sc, err := g.Generate(context.Background(), "", "bakkerij")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Location.ID != "bakkerij" {
		t.Errorf("Location.ID = %q, want bakkerij", sc.Location.ID)
	}
}

func TestGenerateScriptFailurePropagates(t *testing.T) {
	g, backend := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: "not json"})

	_, err := g.Generate(context.Background(), "bakkerij", "")
	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		t.Errorf("Generate error = %v, want GenerationError", err)
	}
	if backend.Calls != 0 {
		t.Error("speech backend was called despite script failure")
	}
}

func TestGenerateSynthesisFailureAborts(t *testing.T) {
	g, backend := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})
	backend.Err = errors.New("voice server down")

	_, err := g.Generate(context.Background(), "bakkerij", "")
	var synthErr *tts.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Errorf("Generate error = %v, want SynthesisError", err)
	}
}

func TestPregenerate(t *testing.T) {
	g, _ := newTestGenerator(t, testLocations(), &llm.MockGenerator{Response: scriptResponse})

	outPath := filepath.Join(t.TempDir(), "dev_scenario.json")
	if err := g.Pregenerate(context.Background(), "bakkerij", outPath); err != nil {
		t.Fatalf("Pregenerate returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		t.Fatalf("pregenerated file is not valid JSON: %v", err)
	}
	if sc.Location.ID != "bakkerij" || len(sc.AudioFiles) != 4 {
		t.Errorf("pregenerated scenario incomplete: %+v", sc)
	}
}

func TestGenerateConcurrent(t *testing.T) {
	// The store, requester and roster all draw from one rand.Rand on the
	// request path, so it must come from a locked source.
	rng := randx.New(3)
	backend := tts.NewMockBackend()
	speech, err := tts.NewSpeechCache(t.TempDir(), backend)
	if err != nil {
		t.Fatal(err)
	}
	store := location.NewStore(testLocations(), rng)
	requester := llm.NewRequester(&llm.MockGenerator{Response: scriptResponse}, rng)
	g := NewGenerator(store, nil, requester, speech)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Generate(context.Background(), "", ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Generate returned error: %v", err)
	}
}
