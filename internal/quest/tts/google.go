package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// googleVoices maps the two voice ids to Dutch Wavenet voices.
var googleVoices = map[int]string{
	0: "nl-NL-Wavenet-A",
	1: "nl-NL-Wavenet-B",
}

// GoogleBackend synthesizes speech through Google Cloud Text-to-Speech.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleBackend struct {
	client *texttospeech.Client
}

func NewGoogleBackend(ctx context.Context) (*GoogleBackend, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}
	return &GoogleBackend{client: client}, nil
}

func (b *GoogleBackend) Synthesize(ctx context.Context, text string, voiceID int) ([]byte, error) {
	voice, ok := googleVoices[voiceID]
	if !ok {
		voice = googleVoices[0]
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "nl-NL",
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			// Slightly slowed for beginner listeners.
			SpeakingRate: 0.9,
		},
	}
	resp, err := b.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return resp.AudioContent, nil
}

func (b *GoogleBackend) FileExt() string {
	return ".mp3"
}

func (b *GoogleBackend) Name() string {
	return "google"
}

func (b *GoogleBackend) Close() error {
	return b.client.Close()
}
