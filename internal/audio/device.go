package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

const (
	// SampleRate is the engine's render rate.
	SampleRate   = 44100
	channelPairs = 2
)

// Device pulls rendered audio and can be paused at the hardware level.
type Device interface {
	Start(r io.Reader) error
	Suspend() error
	Resume() error
	Close() error
}

// OtoDevice plays through the system output via oto.
type OtoDevice struct {
	ctx    *oto.Context
	ready  chan struct{}
	player oto.Player
}

// NewOtoDevice opens the platform audio context.
func NewOtoDevice(sampleRate int) (*OtoDevice, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channelPairs, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio context: %w", err)
	}
	return &OtoDevice{ctx: ctx, ready: ready}, nil
}

func (d *OtoDevice) Start(r io.Reader) error {
	<-d.ready
	d.player = d.ctx.NewPlayer(r)
	d.player.Play()
	return nil
}

func (d *OtoDevice) Suspend() error { return d.ctx.Suspend() }
func (d *OtoDevice) Resume() error  { return d.ctx.Resume() }

func (d *OtoDevice) Close() error {
	if d.player == nil {
		return nil
	}
	return d.player.Close()
}

// SilentDevice accepts every call and plays nothing. The engine falls back to
// it when no output is available so callers never see a failure.
type SilentDevice struct {
	mu        sync.Mutex
	suspended bool
}

func (d *SilentDevice) Start(io.Reader) error { return nil }

func (d *SilentDevice) Suspend() error {
	d.mu.Lock()
	d.suspended = true
	d.mu.Unlock()
	return nil
}

func (d *SilentDevice) Resume() error {
	d.mu.Lock()
	d.suspended = false
	d.mu.Unlock()
	return nil
}

func (d *SilentDevice) Close() error { return nil }

// Suspended reports the last Suspend/Resume call.
func (d *SilentDevice) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended
}
