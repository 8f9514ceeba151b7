package tts

import (
	"context"
	"crypto/md5"
	"fmt"
	"strconv"
)

// Artifact is a synthesized audio file plus its cache identity.
type Artifact struct {
	// Key is the cache filename, e.g. "3f2a9c1b44de_0.mp3". It is the
	// reference handed to playback and the audio-serving endpoint.
	Key string `json:"key"`
	// Path is the absolute location of the file on disk.
	Path string `json:"path"`
	// Cached is true when the artifact existed before this call.
	Cached bool `json:"cached"`
}

// Backend is an opaque text-in/audio-bytes-out speech synthesizer.
type Backend interface {
	Synthesize(ctx context.Context, text string, voiceID int) ([]byte, error)
	// FileExt is the audio container the backend produces, e.g. ".mp3".
	FileExt() string
	Name() string
}

// SynthesisError reports a speech backend failure or a missing output
// artifact.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("speech synthesis failed: %s", e.Reason)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// cacheKey derives the content-addressed identity of a (text, voice) pair.
// It must stay stable across runs: same hash, same encoding, same
// truncation, no volatile inputs.
func cacheKey(text string, voiceID int) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("%x", sum)[:12] + "_" + strconv.Itoa(voiceID)
}
