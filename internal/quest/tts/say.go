package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// sayVoices maps the two voice ids to the enhanced Dutch system voices.
var sayVoices = map[int]string{
	0: "Claire (Enhanced)",
	1: "Xander (Enhanced)",
}

// SayBackend shells out to the macOS say command. Output is AIFF since say
// cannot write MP3 directly.
type SayBackend struct{}

func NewSayBackend() *SayBackend {
	return &SayBackend{}
}

func (b *SayBackend) Synthesize(ctx context.Context, text string, voiceID int) ([]byte, error) {
	voice, ok := sayVoices[voiceID]
	if !ok {
		voice = sayVoices[0]
	}

	tmp, err := os.CreateTemp("", "say-*.aiff")
	if err != nil {
		return nil, err
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	cmd := exec.CommandContext(ctx, "say",
		"-v", voice,
		"-o", tmp.Name(),
		"--file-format=AIFF",
		text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("say command failed: %v: %s", err, out)
	}

	audio, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("audio file was not created: %w", err)
	}
	return audio, nil
}

func (b *SayBackend) FileExt() string {
	return ".aiff"
}

func (b *SayBackend) Name() string {
	return "say"
}

// Available checks that the say command exists and a Dutch enhanced voice
// is installed.
func (b *SayBackend) Available() bool {
	path, err := exec.LookPath("say")
	if err != nil {
		return false
	}
	out, err := exec.Command(filepath.Base(path), "-v", "?").Output()
	if err != nil {
		return false
	}
	listing := string(out)
	return strings.Contains(listing, "nl_NL") &&
		(strings.Contains(listing, "Claire") || strings.Contains(listing, "Xander"))
}
