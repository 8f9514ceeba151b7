package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"taalquest/internal/domain/character"
	"taalquest/internal/domain/location"
)

var testLocation = location.Location{
	ID:          "bakkerij_centrum",
	Name:        "Bakkerij de Gouden Korrel",
	Type:        "bakkerij",
	Description: "A traditional Dutch bakery.",
}

const goodResponse = `{
  "situation": "Buying bread",
  "characters": ["Sanne", "Pieter"],
  "dialogue": [
    {"speaker": "Sanne", "text": "Goedemorgen!", "translation": "Good morning!"},
    {"speaker": "Pieter", "text": "Goedemorgen, een brood graag.", "translation": "Good morning, a loaf please."},
    {"speaker": "Sanne", "text": "Wit of bruin?", "translation": "White or brown?"},
    {"speaker": "Pieter", "text": "Bruin, alstublieft.", "translation": "Brown, please."}
  ]
}`

func newTestRequester(response string, err error) (*Requester, *MockGenerator) {
	gen := &MockGenerator{Response: response, Err: err}
	return NewRequester(gen, rand.New(rand.NewSource(3))), gen
}

func TestRequestScript(t *testing.T) {
	r, _ := newTestRequester(goodResponse, nil)

	s, err := r.RequestScript(context.Background(), testLocation, nil)
	if err != nil {
		t.Fatalf("RequestScript returned error: %v", err)
	}

	if s.Situation != "Buying bread" {
		t.Errorf("Situation = %q", s.Situation)
	}
	if s.Characters[0].VoiceID != 0 || s.Characters[1].VoiceID != 1 {
		t.Errorf("character voices = %d, %d, want 0, 1", s.Characters[0].VoiceID, s.Characters[1].VoiceID)
	}
	want := []int{0, 1, 0, 1}
	for i, line := range s.Dialogue {
		if line.VoiceID != want[i] {
			t.Errorf("line %d voice = %d, want %d", i, line.VoiceID, want[i])
		}
	}
	if s.DurationEstimate != 10 {
		t.Errorf("DurationEstimate = %v, want 10", s.DurationEstimate)
	}
}

func TestRequestScriptFencedResponse(t *testing.T) {
	fenced := "Here is your dialogue:\n```json\n" + goodResponse + "\n```\nEnjoy!"
	r, _ := newTestRequester(fenced, nil)

	if _, err := r.RequestScript(context.Background(), testLocation, nil); err != nil {
		t.Errorf("RequestScript with fenced JSON returned error: %v", err)
	}
}

func TestRequestScriptUnknownSpeakerKeepsScript(t *testing.T) {
	drifted := `{
  "situation": "Buying bread",
  "characters": ["Sanne", "Pieter"],
  "dialogue": [
    {"speaker": "Sanne", "text": "Goedemorgen!"},
    {"speaker": "Piet", "text": "Een brood graag."},
    {"speaker": "Sanne", "text": "Wit of bruin?"},
    {"speaker": "Piet", "text": "Bruin."}
  ]
}`
	pair := []character.Character{
		{ID: "sanne_bakker", Name: "Sanne"},
		{ID: "pieter_klant", Name: "Pieter"},
	}
	r, _ := newTestRequester(drifted, nil)

	s, err := r.RequestScript(context.Background(), testLocation, pair)
	if err != nil {
		t.Fatalf("RequestScript returned error: %v", err)
	}
	// Unknown speaker names default to voice 0 in the roster variant.
	if s.Dialogue[1].VoiceID != 0 {
		t.Errorf("drifted speaker voice = %d, want 0", s.Dialogue[1].VoiceID)
	}
	if s.Characters[0].ID != "sanne_bakker" {
		t.Errorf("character id = %q, want sanne_bakker", s.Characters[0].ID)
	}
}

func TestRequestScriptErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		genErr   error
	}{
		{"backend unreachable", "", errors.New("connection refused")},
		{"not JSON", "sorry, I cannot help with that", nil},
		{"invalid JSON", `{"situation": "x", "characters": ["A", "B"], "dialogue": [`, nil},
		{"missing situation", `{"characters": ["A", "B"], "dialogue": [{"speaker": "A", "text": "hoi"}, {"speaker": "B", "text": "hoi"}, {"speaker": "A", "text": "dag"}, {"speaker": "B", "text": "dag"}]}`, nil},
		{"one character", `{"situation": "x", "characters": ["A"], "dialogue": [{"speaker": "A", "text": "hoi"}, {"speaker": "A", "text": "dag"}, {"speaker": "A", "text": "ja"}, {"speaker": "A", "text": "nee"}]}`, nil},
		{"too few lines", `{"situation": "x", "characters": ["A", "B"], "dialogue": [{"speaker": "A", "text": "hoi"}]}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRequester(tt.response, tt.genErr)
			_, err := r.RequestScript(context.Background(), testLocation, nil)
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Errorf("RequestScript error = %v, want GenerationError", err)
			}
		})
	}
}

func TestRequestScriptTooManyLines(t *testing.T) {
	dialogue := ""
	for i := 0; i < 9; i++ {
		if i > 0 {
			dialogue += ","
		}
		dialogue += fmt.Sprintf(`{"speaker": "A", "text": "regel %d"}`, i)
	}
	response := `{"situation": "x", "characters": ["A", "B"], "dialogue": [` + dialogue + `]}`
	r, _ := newTestRequester(response, nil)

	var genErr *GenerationError
	if _, err := r.RequestScript(context.Background(), testLocation, nil); !errors.As(err, &genErr) {
		t.Errorf("RequestScript with 9 lines = %v, want GenerationError", err)
	}
}
