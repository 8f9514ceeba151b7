package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"taalquest/internal/domain/character"
	"taalquest/internal/domain/location"
	"taalquest/internal/domain/script"
	"taalquest/internal/quest/llm"
	"taalquest/internal/quest/tts"

	"github.com/sirupsen/logrus"
)

// Scenario is one generation cycle's complete output: a location, a script
// and one audio artifact per dialogue line, in dialogue order.
type Scenario struct {
	Location   location.Location `json:"location"`
	Script     *script.Script    `json:"script"`
	AudioFiles []string          `json:"audio_files"`
}

// Generator composes the script requester and the speech cache into full
// scenarios. It owns scenario assembly; the speech cache owns the artifacts.
type Generator struct {
	locations *location.Store
	roster    *character.Roster
	requester *llm.Requester
	speech    *tts.SpeechCache
}

// NewGenerator wires the pipeline. roster may be nil for the no-roster
// variant.
func NewGenerator(locations *location.Store, roster *character.Roster, requester *llm.Requester, speech *tts.SpeechCache) *Generator {
	return &Generator{
		locations: locations,
		roster:    roster,
		requester: requester,
		speech:    speech,
	}
}

// Generate builds a scenario. With a locationID the location is looked up
// (location.ErrNotFound when unknown); otherwise one is chosen at random,
// avoiding excludeID when the pool allows. Audio is synthesized
// sequentially in dialogue order; any failure aborts the whole operation.
func (g *Generator) Generate(ctx context.Context, locationID, excludeID string) (*Scenario, error) {
	var loc location.Location
	if locationID != "" {
		var err error
		loc, err = g.locations.Get(locationID)
		if err != nil {
			return nil, err
		}
	} else {
		loc = g.locations.Random(excludeID)
	}

	var pair []character.Character
	if g.roster != nil {
		picked, err := g.roster.PickPair(loc.ID)
		if err != nil {
			return nil, fmt.Errorf("character selection failed: %w", err)
		}
		pair = picked[:]
	}

	logrus.WithField("location", loc.ID).Info("generating scenario")

	s, err := g.requester.RequestScript(ctx, loc, pair)
	if err != nil {
		return nil, err
	}

	audioFiles := make([]string, 0, len(s.Dialogue))
	for _, line := range s.Dialogue {
		art, err := g.speech.Synthesize(ctx, line.Text, line.VoiceID)
		if err != nil {
			return nil, err
		}
		audioFiles = append(audioFiles, art.Key)
	}

	return &Scenario{Location: loc, Script: s, AudioFiles: audioFiles}, nil
}

// ResolveAudio maps the scenario's artifact keys to absolute paths through
// the speech cache.
func (g *Generator) ResolveAudio(sc *Scenario) ([]string, error) {
	paths := make([]string, 0, len(sc.AudioFiles))
	for _, key := range sc.AudioFiles {
		path, err := g.speech.Resolve(key)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Pregenerate writes a complete scenario to a JSON file, so UI work does
// not wait on model and speech backends.
func (g *Generator) Pregenerate(ctx context.Context, locationID, outPath string) error {
	sc, err := g.Generate(ctx, locationID, "")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"location": sc.Location.ID,
		"lines":    len(sc.Script.Dialogue),
		"path":     outPath,
	}).Info("pregenerated scenario")
	return nil
}
