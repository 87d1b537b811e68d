package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player owns the process-wide oto context. Only one may exist per process.
type Player struct {
	ctx *oto.Context

	mu     sync.Mutex
	player *oto.Player
}

// NewPlayer opens a stereo float32 output at sampleRate and waits until the
// device is ready.
func NewPlayer(sampleRate int, bufferSize time.Duration) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("playback: opening audio device: %w", err)
	}
	<-ready

	return &Player{ctx: ctx}, nil
}

// Play starts s, replacing whatever was playing.
func (p *Player) Play(s *Stream) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player != nil {
		_ = p.player.Close()
	}
	p.player = p.ctx.NewPlayer(s)
	p.player.Play()
}

// IsPlaying reports whether the current stream still produces audio.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.player != nil && p.player.IsPlaying()
}

// Close stops playback.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
