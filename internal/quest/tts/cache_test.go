package tts

import (
	"context"
	"errors"
	"os"
	"testing"
)

func newTestCache(t *testing.T) (*SpeechCache, *MockBackend) {
	t.Helper()
	backend := NewMockBackend()
	cache, err := NewSpeechCache(t.TempDir(), backend)
	if err != nil {
		t.Fatal(err)
	}
	return cache, backend
}

func TestSynthesizeWritesArtifact(t *testing.T) {
	cache, backend := newTestCache(t)

	art, err := cache.Synthesize(context.Background(), "Goedemorgen!", 0)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if art.Cached {
		t.Error("first synthesis reported Cached = true")
	}
	if backend.Calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.Calls)
	}

	data, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("artifact not readable: %v", err)
	}
	if string(data) != string(backend.Audio) {
		t.Error("artifact content does not match backend output")
	}
}

func TestSynthesizeIdempotent(t *testing.T) {
	cache, backend := newTestCache(t)

	first, err := cache.Synthesize(context.Background(), "Goedemorgen!", 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Synthesize(context.Background(), "Goedemorgen!", 1)
	if err != nil {
		t.Fatal(err)
	}

	if first.Key != second.Key {
		t.Errorf("keys differ: %q vs %q", first.Key, second.Key)
	}
	if !second.Cached {
		t.Error("second synthesis reported Cached = false")
	}
	if backend.Calls != 1 {
		t.Errorf("backend calls = %d, want 1 (second call must hit the cache)", backend.Calls)
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := cacheKey("Een brood graag.", 0)
	b := cacheKey("Een brood graag.", 0)
	if a != b {
		t.Errorf("cacheKey not stable: %q vs %q", a, b)
	}
	if len(a) != 14 { // 12 hex chars + "_0"
		t.Errorf("cacheKey length = %d, want 14", len(a))
	}
	if cacheKey("Een brood graag.", 1) == a {
		t.Error("cacheKey ignores the voice id")
	}
	if cacheKey("Twee broden graag.", 0) == a {
		t.Error("cacheKey ignores the text")
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	cache, backend := newTestCache(t)

	var synthErr *SynthesisError
	if _, err := cache.Synthesize(context.Background(), "  ", 0); !errors.As(err, &synthErr) {
		t.Errorf("Synthesize(empty) error = %v, want SynthesisError", err)
	}
	if backend.Calls != 0 {
		t.Error("empty text reached the backend")
	}
}

func TestSynthesizeBackendFailure(t *testing.T) {
	cache, backend := newTestCache(t)
	backend.Err = errors.New("voice server down")

	var synthErr *SynthesisError
	if _, err := cache.Synthesize(context.Background(), "Goedemorgen!", 0); !errors.As(err, &synthErr) {
		t.Errorf("Synthesize error = %v, want SynthesisError", err)
	}
}

func TestSynthesizeEmptyBackendOutput(t *testing.T) {
	cache, backend := newTestCache(t)
	backend.Audio = nil

	var synthErr *SynthesisError
	if _, err := cache.Synthesize(context.Background(), "Goedemorgen!", 0); !errors.As(err, &synthErr) {
		t.Errorf("Synthesize error = %v, want SynthesisError", err)
	}
}

func TestResolve(t *testing.T) {
	cache, _ := newTestCache(t)

	art, err := cache.Synthesize(context.Background(), "Goedemorgen!", 0)
	if err != nil {
		t.Fatal(err)
	}

	path, err := cache.Resolve(art.Key)
	if err != nil {
		t.Fatalf("Resolve(%q) returned error: %v", art.Key, err)
	}
	if path != art.Path {
		t.Errorf("Resolve path = %q, want %q", path, art.Path)
	}

	if _, err := cache.Resolve("../../../etc/passwd"); err == nil {
		t.Error("Resolve accepted a path traversal key")
	}
	if _, err := cache.Resolve("nonexistent.mp3"); err == nil {
		t.Error("Resolve accepted a missing artifact")
	}
}

func TestStatsAndClear(t *testing.T) {
	cache, _ := newTestCache(t)

	for _, text := range []string{"Hallo!", "Dag!", "Tot ziens!"} {
		if _, err := cache.Synthesize(context.Background(), text, 0); err != nil {
			t.Fatal(err)
		}
	}

	files, size, err := cache.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if files != 3 {
		t.Errorf("Stats files = %d, want 3", files)
	}
	if size == 0 {
		t.Error("Stats size = 0")
	}

	if err := cache.Clear(); err != nil {
		t.Fatal(err)
	}
	files, _, err = cache.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if files != 0 {
		t.Errorf("Stats after Clear = %d files, want 0", files)
	}

	entries, _ := os.ReadDir(cache.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
}
