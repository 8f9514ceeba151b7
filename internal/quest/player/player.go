package player

import "fmt"

// Player plays a single audio file at a time. Play must not block for the
// duration of the track; completion is observed through Done.
type Player interface {
	Play(path string) error
	Done() bool
	Stop()
}

// PlaybackError reports a missing audio file or a failure to start the
// audio subsystem.
type PlaybackError struct {
	Reason string
	Err    error
}

func (e *PlaybackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("playback failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("playback failed: %s", e.Reason)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
