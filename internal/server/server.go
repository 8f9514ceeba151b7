package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"taalquest/internal/domain/location"
	"taalquest/internal/quest/scenario"
	"taalquest/internal/quest/tts"

	"github.com/sirupsen/logrus"
)

// Server is the request/response delivery surface. It converts pipeline
// errors into JSON error bodies and never retries on behalf of the client.
type Server struct {
	locations *location.Store
	generator *scenario.Generator
	speech    *tts.SpeechCache
	http      *http.Server
}

func New(addr string, locations *location.Store, generator *scenario.Generator, speech *tts.SpeechCache) *Server {
	s := &Server{
		locations: locations,
		generator: generator,
		speech:    speech,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("POST /api/generate-scenario", s.handleGenerateScenario)
	mux.HandleFunc("POST /api/generate-audio", s.handleGenerateAudio)
	mux.HandleFunc("GET /api/audio/{filename}", s.handleAudio)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.http = &http.Server{
		Addr:    addr,
		Handler: withCORS(mux),
	}
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	logrus.WithField("addr", s.http.Addr).Info("taalquest API listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// withCORS allows the localhost frontend to call the API from another
// origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.locations.All())
}

type generateScenarioRequest struct {
	LocationID        string `json:"location_id"`
	ExcludeLocationID string `json:"exclude_location_id"`
}

func (s *Server) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	var req generateScenarioRequest
	// An empty body means "random location"; only malformed JSON is an error.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sc, err := s.generator.Generate(r.Context(), req.LocationID, req.ExcludeLocationID)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Location not found")
			return
		}
		logrus.WithError(err).Error("scenario generation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

type generateAudioRequest struct {
	Text    string `json:"text"`
	VoiceID int    `json:"voice_id"`
}

func (s *Server) handleGenerateAudio(w http.ResponseWriter, r *http.Request) {
	var req generateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text required")
		return
	}
	if req.VoiceID != 0 && req.VoiceID != 1 {
		req.VoiceID = 0
	}

	art, err := s.speech.Synthesize(r.Context(), req.Text, req.VoiceID)
	if err != nil {
		logrus.WithError(err).Error("audio generation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": art.Key})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	path, err := s.speech.Resolve(filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}

	w.Header().Set("Content-Type", audioMIME(path))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func audioMIME(path string) string {
	switch filepath.Ext(path) {
	case ".aiff":
		return "audio/aiff"
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
