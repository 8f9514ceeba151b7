package player

import (
	"os"
	"time"
)

// State of the sequencer.
type State int

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// Sequencer plays a list of audio files one at a time with a pause between
// tracks. It never blocks waiting for a track: callers poll Update from
// their event loop and the sequencer advances on observed completion.
type Sequencer struct {
	player     Player
	sequence   []string
	index      int
	state      State
	pause      time.Duration
	pauseUntil time.Time
	lastErr    error
}

func NewSequencer(p Player) *Sequencer {
	return &Sequencer{player: p}
}

// PlaySequence validates every file up front (all-or-nothing), stops any
// sequence already playing, and starts the first track.
func (s *Sequencer) PlaySequence(paths []string, pause time.Duration) error {
	if len(paths) == 0 {
		return &PlaybackError{Reason: "empty sequence"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return &PlaybackError{Reason: "audio file not found: " + path, Err: err}
		}
	}

	if s.state == Playing {
		s.Stop()
	}

	s.sequence = paths
	s.index = 0
	s.pause = pause
	s.pauseUntil = time.Time{}
	s.lastErr = nil

	if err := s.player.Play(paths[0]); err != nil {
		s.reset()
		return &PlaybackError{Reason: "failed to start playback", Err: err}
	}
	s.state = Playing
	return nil
}

// Update advances the state machine. It returns true while the sequence is
// still playing. Call it regularly from the event loop.
func (s *Sequencer) Update() bool {
	if s.state != Playing {
		return false
	}

	// Between tracks: wait out the configured pause.
	if !s.pauseUntil.IsZero() {
		if time.Now().Before(s.pauseUntil) {
			return true
		}
		s.pauseUntil = time.Time{}
		if err := s.player.Play(s.sequence[s.index]); err != nil {
			s.lastErr = &PlaybackError{Reason: "failed to resume playback", Err: err}
			s.reset()
			return false
		}
		return true
	}

	if !s.player.Done() {
		return true
	}

	s.index++
	if s.index >= len(s.sequence) {
		s.state = Finished
		return false
	}
	s.pauseUntil = time.Now().Add(s.pause)
	return true
}

// Stop terminates any in-flight audio and returns to Idle. Safe to call
// from any state.
func (s *Sequencer) Stop() {
	s.player.Stop()
	s.reset()
}

func (s *Sequencer) reset() {
	s.sequence = nil
	s.index = 0
	s.state = Idle
	s.pauseUntil = time.Time{}
}

// LastErr returns the error of the most recent mid-sequence playback
// failure, so callers can tell a failed sequence from a plain Stop. It is
// cleared when a new sequence starts.
func (s *Sequencer) LastErr() error {
	return s.lastErr
}

// State returns the current playback state.
func (s *Sequencer) State() State {
	return s.state
}

// Progress reports (index+1)/length while a sequence is active. The second
// return is false when no sequence is playing or finished.
func (s *Sequencer) Progress() (float64, bool) {
	if s.state == Idle || len(s.sequence) == 0 {
		return 0, false
	}
	current := s.index
	if current >= len(s.sequence) {
		current = len(s.sequence) - 1
	}
	return float64(current+1) / float64(len(s.sequence)), true
}
