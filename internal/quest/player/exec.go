package player

import (
	"fmt"
	"os/exec"
	"sync"
)

// playerCommands are tried in order; the first one on PATH wins.
var playerCommands = [][]string{
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
}

// ExecPlayer plays audio files through an out-of-process system player.
type ExecPlayer struct {
	command []string
	mu      sync.Mutex
	cmd     *exec.Cmd
	done    bool
}

// NewExecPlayer locates a system audio player on PATH.
func NewExecPlayer() (*ExecPlayer, error) {
	for _, candidate := range playerCommands {
		if path, err := exec.LookPath(candidate[0]); err == nil {
			command := append([]string{path}, candidate[1:]...)
			return &ExecPlayer{command: command, done: true}, nil
		}
	}
	return nil, fmt.Errorf("no audio player found in PATH (tried afplay, ffplay, mpg123)")
}

func (p *ExecPlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil && p.cmd.Process != nil && !p.done {
		p.cmd.Process.Kill()
	}

	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	p.cmd = cmd
	p.done = false

	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.done = true
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *ExecPlayer) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *ExecPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil && !p.done {
		p.cmd.Process.Kill()
	}
	p.cmd = nil
	p.done = true
}
