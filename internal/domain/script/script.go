package script

import "fmt"

// Dialogue length bounds enforced on every generated script.
const (
	MinDialogueLines = 4
	MaxDialogueLines = 8
)

// Speaker is one of the two characters appearing in a script.
type Speaker struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	VoiceID int    `json:"voice_id"`
}

// DialogueLine is a single spoken line. VoiceID is derived from the
// speaker-to-voice assignment, never chosen per line.
type DialogueLine struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
	VoiceID     int    `json:"voice_id"`
}

// QuizQuestion is a multiple-choice comprehension question with exactly
// four options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// Script is a generated dialogue plus optional quiz content, pre-audio.
type Script struct {
	Situation        string         `json:"situation"`
	Characters       [2]Speaker     `json:"characters"`
	Dialogue         []DialogueLine `json:"dialogue"`
	Questions        []QuizQuestion `json:"questions,omitempty"`
	DurationEstimate float64        `json:"duration_estimate"`
}

// Validate checks the structural invariants of a script.
func (s *Script) Validate() error {
	if s.Situation == "" {
		return fmt.Errorf("script has no situation")
	}
	if len(s.Dialogue) < MinDialogueLines || len(s.Dialogue) > MaxDialogueLines {
		return fmt.Errorf("dialogue has %d lines, want %d-%d",
			len(s.Dialogue), MinDialogueLines, MaxDialogueLines)
	}
	for i, c := range s.Characters {
		if c.Name == "" {
			return fmt.Errorf("character %d has no name", i)
		}
	}

	speakers := map[string]bool{}
	for i, line := range s.Dialogue {
		if line.Text == "" {
			return fmt.Errorf("dialogue line %d has no text", i)
		}
		if line.VoiceID != 0 && line.VoiceID != 1 {
			return fmt.Errorf("dialogue line %d has voice id %d, want 0 or 1", i, line.VoiceID)
		}
		speakers[line.Speaker] = true
	}
	if len(speakers) > 2 {
		return fmt.Errorf("dialogue has %d distinct speakers, want at most 2", len(speakers))
	}

	for i, q := range s.Questions {
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.Answer < 0 || q.Answer > 3 {
			return fmt.Errorf("question %d answer index %d out of range", i, q.Answer)
		}
	}

	return nil
}
