package player

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// BeepPlayer decodes MP3 artifacts and plays them in-process through the
// speaker package. Use this when no system player is available.
type BeepPlayer struct {
	mu          sync.Mutex
	streamer    beep.StreamSeekCloser
	done        bool
	initialized bool
}

func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{done: true}
}

func (p *BeepPlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer != nil && !p.done {
		p.streamer.Close()
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode MP3 %s: %w", path, err)
	}

	if !p.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return err
		}
		p.initialized = true
	}

	p.streamer = streamer
	p.done = false
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		p.mu.Lock()
		if p.streamer == streamer {
			p.done = true
		}
		p.mu.Unlock()
	})))
	return nil
}

func (p *BeepPlayer) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *BeepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer != nil && !p.done {
		p.streamer.Close()
	}
	p.streamer = nil
	p.done = true
}
