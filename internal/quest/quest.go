// Package quest wires configuration, data, generation and playback into
// the interactive application.
package quest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"taalquest/internal/cli/scheme/colours"
	"taalquest/internal/config"
	"taalquest/internal/domain/character"
	"taalquest/internal/domain/location"
	"taalquest/internal/domain/script"
	"taalquest/internal/quest/llm"
	"taalquest/internal/quest/player"
	"taalquest/internal/quest/scenario"
	"taalquest/internal/quest/tts"
	"taalquest/internal/randx"
	"taalquest/internal/server"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// App is the assembled application.
type App struct {
	cfg       *config.Config
	locations *location.Store
	roster    *character.Roster
	generator *scenario.Generator
	speech    *tts.SpeechCache

	ttsCloser io.Closer

	current *scenario.Scenario

	ctx    context.Context
	Cancel context.CancelFunc
}

// NewApp builds the full pipeline from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	// Shared across the store, roster and requester, which all run on
	// concurrent request paths when serving HTTP.
	rng := randx.New(time.Now().UnixNano())

	locations, err := location.LoadStore(cfg.Data.Locations, rng)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("loading locations: %w", err)
	}

	var roster *character.Roster
	if cfg.Data.Characters != "" {
		roster, err = character.LoadRoster(cfg.Data.Characters, rng)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				cancel()
				return nil, fmt.Errorf("loading characters: %w", err)
			}
			logrus.WithField("path", cfg.Data.Characters).
				Warn("character file missing, running without a roster")
		}
	}

	gen, err := newLLMBackend(cfg.LLM)
	if err != nil {
		cancel()
		return nil, err
	}

	backend, closer, err := newTTSBackend(ctx, cfg.TTS)
	if err != nil {
		cancel()
		return nil, err
	}

	speech, err := tts.NewSpeechCache(cfg.TTS.CacheDir, backend)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating speech cache: %w", err)
	}

	requester := llm.NewRequester(gen, rng)

	return &App{
		cfg:       cfg,
		locations: locations,
		roster:    roster,
		generator: scenario.NewGenerator(locations, roster, requester, speech),
		speech:    speech,
		ttsCloser: closer,
		ctx:       ctx,
		Cancel:    cancel,
	}, nil
}

func newLLMBackend(cfg config.LLMConfig) (llm.Generator, error) {
	switch cfg.Backend {
	case "ollama":
		return llm.NewOllamaGenerator(cfg.Endpoint, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm backend openai requires an api key")
		}
		return llm.NewOpenAIGenerator(cfg.APIKey, cfg.Model), nil
	case "mock":
		return &llm.MockGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}

func newTTSBackend(ctx context.Context, cfg config.TTSConfig) (tts.Backend, io.Closer, error) {
	switch cfg.Backend {
	case "openai":
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("tts backend openai requires an api key")
		}
		return tts.NewOpenAIBackend(cfg.APIKey, cfg.Model), nil, nil
	case "google":
		b, err := tts.NewGoogleBackend(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("creating google tts client: %w", err)
		}
		return b, b, nil
	case "say":
		b := tts.NewSayBackend()
		if !b.Available() {
			logrus.Warn("say backend unavailable, audio synthesis will fail")
		}
		return b, nil, nil
	case "mock":
		return tts.NewMockBackend(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}
}

// Close releases backend resources.
func (a *App) Close() {
	if a.ttsCloser != nil {
		if err := a.ttsCloser.Close(); err != nil {
			logrus.WithError(err).Warn("closing tts client")
		}
	}
	a.Cancel()
}

func (a *App) ShowWelcome() {
	fmt.Println()
	colours.Title.Println("🇳🇱 Welkom bij TaalQuest! 🇳🇱")
	fmt.Println()
	colours.Info.Println("Available commands:")
	fmt.Println("  • taalquest play        - Generate and play a scenario")
	fmt.Println("  • taalquest locations   - List the practice locations")
	fmt.Println("  • taalquest serve       - Run the HTTP API")
	fmt.Println("  • taalquest pregenerate - Save a scenario to a file")
	fmt.Println("  • taalquest cache       - Inspect the audio cache")
	fmt.Println()
	colours.Prompt.Println("Veel succes met je Nederlands! ✨")
}

// ListLocations prints every known location.
func (a *App) ListLocations(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("📍 Practice Locations 📍")
	fmt.Println()
	for i, loc := range a.locations.All() {
		fmt.Printf("  %d. ", i+1)
		colours.Location.Printf("%s", loc.Name)
		fmt.Printf(" (%s)\n", loc.Type)
		fmt.Printf("     %s\n", loc.Description)
		colours.Info.Printf("     ID: %s\n", loc.ID)
		fmt.Println()
	}
	colours.Success.Printf("✨ %d locations available ✨\n", a.locations.Len())
}

// Serve runs the HTTP API until interrupted.
func (a *App) Serve(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(addr, a.locations, a.generator, a.speech)
	colours.Info.Printf("🌐 Listening on %s\n", addr)
	if err := srv.ListenAndServe(a.ctx); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}

// PlayScenario generates a scenario and runs the interactive session:
// playback, optional quiz, replay or a fresh scenario elsewhere.
func (a *App) PlayScenario(cmd *cobra.Command, args []string) {
	locationID, _ := cmd.Flags().GetString("location")
	if locationID == "" && len(args) > 0 {
		locationID = args[0]
	}

	seq, err := a.newSequencer()
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	excludeID := ""
	for {
		sc, err := a.generator.Generate(a.ctx, locationID, excludeID)
		if err != nil {
			colours.Error.Printf("❌ Scenario generation failed: %v\n", err)
			return
		}
		a.current = sc

		a.displayScenario(sc)
		a.playDialogue(seq, sc)

	prompt:
		colours.Prompt.Print("🌟 [r]eplay, [q]uiz, [n]ext location, e[x]it: ")
		switch readLine() {
		case "r", "replay":
			a.playDialogue(seq, sc)
			goto prompt
		case "q", "quiz":
			a.runQuiz(sc.Script)
			goto prompt
		case "n", "next":
			locationID = ""
			excludeID = sc.Location.ID
			continue
		default:
			colours.Warning.Println("👋 Tot ziens!")
			return
		}
	}
}

func (a *App) newSequencer() (*player.Sequencer, error) {
	switch a.cfg.Player.Backend {
	case "beep":
		return player.NewSequencer(player.NewBeepPlayer()), nil
	case "exec", "":
		p, err := player.NewExecPlayer()
		if err != nil {
			logrus.WithError(err).Warn("no playback binary found, using beep")
			return player.NewSequencer(player.NewBeepPlayer()), nil
		}
		return player.NewSequencer(p), nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", a.cfg.Player.Backend)
	}
}

func (a *App) displayScenario(sc *scenario.Scenario) {
	fmt.Println()
	colours.Location.Printf("📍 %s\n", sc.Location.Name)
	colours.Info.Printf("   %s\n", sc.Script.Situation)
	fmt.Printf("   ⏱️ ~%.0f seconds\n", sc.Script.DurationEstimate)
	fmt.Println()
	for _, line := range sc.Script.Dialogue {
		colours.Speaker.Printf("%s: ", line.Speaker)
		colours.Dutch.Println(line.Text)
		if line.Translation != "" {
			colours.Translat.Printf("      %s\n", line.Translation)
		}
	}
	fmt.Println()
}

func (a *App) playDialogue(seq *player.Sequencer, sc *scenario.Scenario) {
	paths, err := a.generator.ResolveAudio(sc)
	if err != nil {
		colours.Error.Printf("❌ Audio unavailable: %v\n", err)
		return
	}

	pause := time.Duration(a.cfg.Player.PauseMs) * time.Millisecond
	if err := seq.PlaySequence(paths, pause); err != nil {
		colours.Error.Printf("❌ Playback failed: %v\n", err)
		return
	}

	colours.Success.Println("🎵 Playing dialogue... (Ctrl+C to stop)")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for seq.Update() {
		select {
		case <-a.ctx.Done():
			seq.Stop()
			return
		case <-ticker.C:
		}
	}
	if err := seq.LastErr(); err != nil {
		colours.Error.Printf("❌ Playback stopped early: %v\n", err)
		return
	}
	if progress, ok := seq.Progress(); ok && progress == 1.0 {
		colours.Success.Println("✅ Dialogue finished!")
	}
}

func (a *App) runQuiz(s *script.Script) {
	if len(s.Questions) == 0 {
		colours.Warning.Println("🔍 No quiz questions for this scenario.")
		return
	}

	fmt.Println()
	colours.Title.Println("📝 Quiz Time! 📝")
	correct := 0
	for i, q := range s.Questions {
		fmt.Println()
		colours.Prompt.Printf("%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			fmt.Printf("   %d) %s\n", j+1, opt)
		}
		colours.Prompt.Print("Your answer (1-4): ")

		choice, err := strconv.Atoi(readLine())
		if err != nil || choice < 1 || choice > len(q.Options) {
			colours.Warning.Println("Skipped.")
			continue
		}
		if choice-1 == q.Answer {
			correct++
			colours.Success.Println("✅ Goed zo!")
		} else {
			colours.Error.Printf("❌ Helaas. The answer was: %s\n", q.Options[q.Answer])
		}
	}
	fmt.Println()
	colours.Success.Printf("🏆 Score: %d/%d\n", correct, len(s.Questions))
}

// Pregenerate writes a complete scenario to a JSON file, synthesizing its
// audio into the cache along the way.
func (a *App) Pregenerate(cmd *cobra.Command, args []string) {
	locationID, _ := cmd.Flags().GetString("location")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = "scenario.json"
	}

	if err := a.generator.Pregenerate(a.ctx, locationID, out); err != nil {
		colours.Error.Printf("❌ Pregeneration failed: %v\n", err)
		return
	}
	colours.Success.Printf("✅ Scenario written to %s\n", out)
}

// CacheStatus prints artifact count and total size of the audio cache.
func (a *App) CacheStatus(cmd *cobra.Command, args []string) {
	count, size, err := a.speech.Stats()
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	colours.Info.Printf("🗄️ Audio cache: %s\n", a.speech.Dir())
	fmt.Printf("   %d artifacts, %.1f KiB\n", count, float64(size)/1024)
}

// CacheClear removes every cached artifact.
func (a *App) CacheClear(cmd *cobra.Command, args []string) {
	if err := a.speech.Clear(); err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	colours.Success.Println("✅ Audio cache cleared.")
}

func readLine() string {
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(input))
}
