package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openaiSpeechURL = "https://api.openai.com/v1/audio/speech"

// openaiVoices maps the two voice ids to backend voice names.
var openaiVoices = map[int]string{
	0: "alloy",
	1: "echo",
}

// OpenAIBackend synthesizes speech through the OpenAI speech API.
type OpenAIBackend struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	return &OpenAIBackend{
		apiKey: apiKey,
		model:  model,
		url:    openaiSpeechURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

func (b *OpenAIBackend) Synthesize(ctx context.Context, text string, voiceID int) ([]byte, error) {
	voice, ok := openaiVoices[voiceID]
	if !ok {
		voice = openaiVoices[0]
	}

	body, err := json.Marshal(speechRequest{
		Model:          b.model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech failed (status %d): %s", resp.StatusCode, respBody)
	}
	return io.ReadAll(resp.Body)
}

func (b *OpenAIBackend) FileExt() string {
	return ".mp3"
}

func (b *OpenAIBackend) Name() string {
	return "openai"
}
