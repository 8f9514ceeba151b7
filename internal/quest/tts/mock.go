package tts

import (
	"context"
	"sync"
)

// MockBackend records calls and returns canned audio bytes. The call
// counter makes cache-hit behaviour observable in tests; read it only
// after all synthesis goroutines have joined.
type MockBackend struct {
	Audio []byte
	Err   error

	mu    sync.Mutex
	Calls int
}

func NewMockBackend() *MockBackend {
	return &MockBackend{Audio: []byte("RIFF-mock-audio")}
}

func (m *MockBackend) Synthesize(ctx context.Context, text string, voiceID int) ([]byte, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

func (m *MockBackend) FileExt() string {
	return ".mp3"
}

func (m *MockBackend) Name() string {
	return "mock"
}
