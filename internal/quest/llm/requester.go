package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"taalquest/internal/domain/character"
	"taalquest/internal/domain/location"
	"taalquest/internal/domain/script"

	"github.com/sirupsen/logrus"
)

// secondsPerLine feeds the rough duration estimate: spoken line plus pause.
const secondsPerLine = 2.5

// Requester turns a location (and optionally two roster characters) into a
// validated script by prompting the model backend.
type Requester struct {
	gen Generator
	rng *rand.Rand
}

func NewRequester(gen Generator, rng *rand.Rand) *Requester {
	return &Requester{gen: gen, rng: rng}
}

// rawScript is the shape the prompt contracts the backend to return.
type rawScript struct {
	Situation  string `json:"situation"`
	Characters []string `json:"characters"`
	Dialogue   []struct {
		Speaker     string `json:"speaker"`
		Text        string `json:"text"`
		Translation string `json:"translation"`
	} `json:"dialogue"`
	Questions []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Answer   int      `json:"answer"`
	} `json:"questions"`
}

// RequestScript generates a script for the location. pair may be empty; when
// two roster characters are given the prompt names them and the script keeps
// their ids and voice assignments.
func (r *Requester) RequestScript(ctx context.Context, loc location.Location, pair []character.Character) (*script.Script, error) {
	prompt := r.buildPrompt(loc, pair)

	response, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, generationErr("backend call", err)
	}

	raw, err := parseResponse(response)
	if err != nil {
		return nil, err
	}

	return r.buildScript(raw, pair)
}

func (r *Requester) buildPrompt(loc location.Location, pair []character.Character) string {
	var b strings.Builder
	b.WriteString("You are a Dutch language teacher creating A1 level dialogues.\n\n")
	fmt.Fprintf(&b, "Location: %s (%s)\n", loc.Name, loc.Type)
	fmt.Fprintf(&b, "Context: %s\n\n", loc.Description)
	b.WriteString("Generate a natural 15-30 second dialogue between two people at this location.\n\n")

	b.WriteString("Requirements:\n")
	b.WriteString("- A1 Dutch level (CEFR A1 - beginner)\n")
	if len(pair) == 2 {
		fmt.Fprintf(&b, "- The two speakers are %s (a %s, %s) and %s (a %s, %s); use exactly these names\n",
			pair[0].Name, pair[0].Occupation, strings.Join(pair[0].Traits, ", "),
			pair[1].Name, pair[1].Occupation, strings.Join(pair[1].Traits, ", "))
	} else {
		b.WriteString("- 2 speakers with distinct Dutch names\n")
	}
	b.WriteString("- 4-8 lines total\n")
	b.WriteString("- Common everyday situations\n")
	b.WriteString("- Simple present tense, basic vocabulary\n")
	b.WriteString("- Natural but slow-paced conversation\n")
	b.WriteString("- Give each line an English translation\n")
	b.WriteString("- Add 7 multiple-choice comprehension questions: 5 about facts stated in the dialogue, 2 requiring inference. Each has exactly 4 options and one correct answer index (0-3)\n\n")

	b.WriteString("Format your response ONLY as valid JSON (no other text):\n")
	b.WriteString(`{
  "situation": "brief scenario description in English",
  "characters": ["Name1", "Name2"],
  "dialogue": [
    {"speaker": "Name1", "text": "Dutch text here", "translation": "English translation"},
    {"speaker": "Name2", "text": "Dutch text here", "translation": "English translation"}
  ],
  "questions": [
    {"question": "Question in English", "options": ["a", "b", "c", "d"], "answer": 0}
  ]
}`)
	b.WriteString("\n\nImportant: Return ONLY the JSON object, no additional text.")
	return b.String()
}

// parseResponse extracts and decodes the JSON document from the raw model
// output, which may carry markdown fences or surrounding prose.
func parseResponse(response string) (*rawScript, error) {
	text := extractJSON(response)
	if text == "" {
		return nil, generationErr("no JSON object found in response", nil)
	}

	var raw rawScript
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, generationErr("invalid JSON in response", err)
	}

	if raw.Situation == "" {
		return nil, generationErr("response missing situation", nil)
	}
	if len(raw.Characters) != 2 {
		return nil, generationErr(fmt.Sprintf("response has %d characters, want 2", len(raw.Characters)), nil)
	}
	if len(raw.Dialogue) < script.MinDialogueLines || len(raw.Dialogue) > script.MaxDialogueLines {
		return nil, generationErr(fmt.Sprintf("response has %d dialogue lines, want %d-%d",
			len(raw.Dialogue), script.MinDialogueLines, script.MaxDialogueLines), nil)
	}
	return &raw, nil
}

// extractJSON strips markdown code fences and returns the span from the
// first '{' to the last '}'.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

// buildScript post-processes the raw document: stable voice ids for the two
// characters by position, every line rewritten through the name-to-voice map.
func (r *Requester) buildScript(raw *rawScript, pair []character.Character) (*script.Script, error) {
	characters := [2]script.Speaker{
		{Name: raw.Characters[0], VoiceID: 0},
		{Name: raw.Characters[1], VoiceID: 1},
	}
	if len(pair) == 2 {
		characters[0].ID = pair[0].ID
		characters[1].ID = pair[1].ID
	}

	voiceByName := map[string]int{
		characters[0].Name: 0,
		characters[1].Name: 1,
	}

	dialogue := make([]script.DialogueLine, 0, len(raw.Dialogue))
	for _, line := range raw.Dialogue {
		voiceID, ok := voiceByName[line.Speaker]
		if !ok {
			// Minor speaker-name drift from the backend is tolerated
			// rather than failing the whole script.
			if len(pair) == 2 {
				voiceID = 0
			} else {
				voiceID = r.rng.Intn(2)
			}
			logrus.WithField("speaker", line.Speaker).Warn("unknown speaker name, assigning fallback voice")
		}
		dialogue = append(dialogue, script.DialogueLine{
			Speaker:     line.Speaker,
			Text:        line.Text,
			Translation: line.Translation,
			VoiceID:     voiceID,
		})
	}

	questions := make([]script.QuizQuestion, 0, len(raw.Questions))
	for _, q := range raw.Questions {
		questions = append(questions, script.QuizQuestion{
			Question: q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
		})
	}

	s := &script.Script{
		Situation:        raw.Situation,
		Characters:       characters,
		Dialogue:         dialogue,
		Questions:        questions,
		DurationEstimate: float64(len(dialogue)) * secondsPerLine,
	}
	if err := s.Validate(); err != nil {
		return nil, generationErr("generated script invalid", err)
	}
	return s, nil
}
