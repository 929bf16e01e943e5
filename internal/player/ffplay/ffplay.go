// Package ffplay plays live MPEG-TS feeds through an external ffplay
// process. It has no control channel: no pause, no seek, and progress
// is wall-clock elapsed time. VOD content goes through the mpv backend.
package ffplay

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/teleview/teleview/internal/player"
)

// readyProbe is how long the process must survive before the stream is
// considered up. ffplay exits almost immediately on a dead URL.
const readyProbe = 1500 * time.Millisecond

// Backend implements player.Backend for live streams.
type Backend struct {
	mu sync.RWMutex

	cmd       *exec.Cmd
	startedAt time.Time
	playing   bool
	closed    bool

	onProgress func(player.Progress)
	onReady    func()
	onEnd      func()
	onError    func(error)

	ctx    context.Context
	cancel context.CancelFunc

	binary string
}

// New builds an ffplay backend, failing fast when the binary is absent.
func New() (*Backend, error) {
	path, err := exec.LookPath("ffplay")
	if err != nil {
		return nil, fmt.Errorf("ffplay not found in PATH: %w", err)
	}
	return &Backend{binary: path}, nil
}

// Name implements player.Backend.
func (b *Backend) Name() string { return "ffplay" }

// Play launches ffplay on the URL. Readiness fires once the process
// survives the probe window; an early exit is reported as an error.
func (b *Backend) Play(ctx context.Context, url string, opts player.Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.stopLocked(); err != nil {
		return err
	}

	args := []string{
		"-loglevel", "error",
		"-autoexit",
		"-infbuf",
	}
	if opts.Title != "" {
		args = append(args, "-window_title", opts.Title)
	}
	if opts.Fullscreen {
		args = append(args, "-fs")
	}
	if opts.Volume > 0 {
		args = append(args, "-volume", fmt.Sprintf("%d", opts.Volume))
	}
	if opts.UserAgent != "" {
		args = append(args, "-user_agent", opts.UserAgent)
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, url)

	cmd := exec.Command(b.binary, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}

	b.cmd = cmd
	b.closed = false
	b.startedAt = time.Now()
	b.ctx, b.cancel = context.WithCancel(context.Background())

	go b.monitor(cmd)

	slog.Debug("ffplay launched", "pid", cmd.Process.Pid)
	return nil
}

// monitor waits on the process and drives the ready/end/error
// callbacks from its exit timing.
func (b *Backend) monitor(cmd *exec.Cmd) {
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		// Died inside the probe window: the stream never came up.
		b.mu.Lock()
		cb := b.onError
		closed := b.closed
		b.playing = false
		b.mu.Unlock()
		if cb != nil && !closed {
			if err == nil {
				err = fmt.Errorf("stream closed immediately")
			}
			cb(fmt.Errorf("ffplay failed to open stream: %w", err))
		}
		return
	case <-time.After(readyProbe):
	}

	b.mu.Lock()
	b.playing = true
	ready := b.onReady
	b.mu.Unlock()
	if ready != nil {
		ready()
	}
	go b.tickProgress()

	err := <-exited
	b.mu.Lock()
	errCb := b.onError
	endCb := b.onEnd
	closed := b.closed
	b.playing = false
	b.mu.Unlock()

	if closed {
		return
	}
	if err != nil {
		if errCb != nil {
			errCb(fmt.Errorf("ffplay exited unexpectedly: %w", err))
		}
		return
	}
	if endCb != nil {
		endCb()
	}
}

func (b *Backend) tickProgress() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ctx := b.ctx
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.RLock()
			cb := b.onProgress
			playing := b.playing
			elapsed := time.Since(b.startedAt)
			b.mu.RUnlock()
			if !playing {
				return
			}
			if cb != nil {
				cb(player.Progress{Position: elapsed})
			}
		}
	}
}

// Stop kills the process. Safe when nothing is playing.
func (b *Backend) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopLocked()
}

func (b *Backend) stopLocked() error {
	if b.cmd == nil {
		return nil
	}
	b.closed = true
	b.playing = false
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	b.cmd = nil
	return nil
}

// Pause is not available on the live transport.
func (b *Backend) Pause(ctx context.Context) error { return player.ErrUnsupported }

// Resume is not available on the live transport.
func (b *Backend) Resume(ctx context.Context) error { return player.ErrUnsupported }

// Seek is not available on the live transport.
func (b *Backend) Seek(ctx context.Context, position time.Duration) error {
	return player.ErrUnsupported
}

// Progress reports wall-clock elapsed time; live feeds have no
// duration or position within the source.
func (b *Backend) Progress(ctx context.Context) (*player.Progress, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.cmd == nil && !b.playing {
		return nil, fmt.Errorf("player not running")
	}
	return &player.Progress{Position: time.Since(b.startedAt)}, nil
}

// OnProgress implements player.Backend.
func (b *Backend) OnProgress(cb func(player.Progress)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onProgress = cb
}

// OnReady implements player.Backend.
func (b *Backend) OnReady(cb func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReady = cb
}

// OnEnd implements player.Backend.
func (b *Backend) OnEnd(cb func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEnd = cb
}

// OnError implements player.Backend.
func (b *Backend) OnError(cb func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = cb
}

// IsPlaying implements player.Backend.
func (b *Backend) IsPlaying() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.playing
}

// IsPaused implements player.Backend. Live playback never pauses.
func (b *Backend) IsPaused() bool { return false }

var _ player.Backend = (*Backend)(nil)
