package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SpeechCache is the sole writer to the on-disk audio cache. Identical
// (text, voice) pairs resolve to the same artifact regardless of call order
// or process restarts.
type SpeechCache struct {
	dir     string
	backend Backend
}

// NewSpeechCache creates the cache directory if needed.
func NewSpeechCache(dir string, backend Backend) (*SpeechCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &SpeechCache{dir: abs, backend: backend}, nil
}

// Dir returns the cache directory.
func (c *SpeechCache) Dir() string {
	return c.dir
}

// Synthesize returns the cached artifact for (text, voiceID), calling the
// backend only on a cache miss.
func (c *SpeechCache) Synthesize(ctx context.Context, text string, voiceID int) (Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return Artifact{}, &SynthesisError{Reason: "empty text"}
	}

	key := cacheKey(text, voiceID) + c.backend.FileExt()
	path := filepath.Join(c.dir, key)

	if _, err := os.Stat(path); err == nil {
		logrus.WithField("key", key).Debug("audio cache hit")
		return Artifact{Key: key, Path: path, Cached: true}, nil
	}

	audio, err := c.backend.Synthesize(ctx, text, voiceID)
	if err != nil {
		return Artifact{}, &SynthesisError{Reason: "backend call", Err: err}
	}
	if len(audio) == 0 {
		return Artifact{}, &SynthesisError{Reason: "backend produced no audio"}
	}

	if err := writeAtomic(c.dir, path, audio); err != nil {
		return Artifact{}, &SynthesisError{Reason: "failed to persist audio", Err: err}
	}

	logrus.WithFields(logrus.Fields{"key": key, "backend": c.backend.Name()}).Info("generated audio")
	return Artifact{Key: key, Path: path, Cached: false}, nil
}

// writeAtomic persists via temp file plus rename, so concurrent writers of
// the same key cannot leave a torn file; the last writer wins.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tts-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Resolve maps an artifact key back to its path inside the cache directory,
// rejecting anything that escapes it. Callers never build cache paths
// themselves.
func (c *SpeechCache) Resolve(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid artifact key: %q", key)
	}
	path := filepath.Join(c.dir, key)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("artifact not found: %s", key)
	}
	return path, nil
}

// Stats reports the number of cached artifacts and their total size in bytes.
func (c *SpeechCache) Stats() (int64, int64, error) {
	var files, size int64
	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			files++
			size += info.Size()
		}
		return nil
	})
	return files, size, err
}

// Clear removes every cached artifact. There is no automatic eviction; this
// is the only way the cache shrinks.
func (c *SpeechCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
