package llm

import (
	"context"
	"sync"
)

// MockGenerator returns a canned response. Used in tests and for UI work
// without a model backend. Read Calls only after all generation
// goroutines have joined.
type MockGenerator struct {
	Response string
	Err      error

	mu    sync.Mutex
	Calls int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockGenerator) Available(ctx context.Context) bool {
	return true
}
