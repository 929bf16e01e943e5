// Package mpv drives an external mpv process over its JSON IPC. It is
// the seekable backend for VOD content; live MPEG-TS goes through the
// ffplay backend instead.
package mpv

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/diniamo/gopv"

	"github.com/teleview/teleview/internal/player"
)

const (
	ipcWaitTimeout = 10 * time.Second
	quitGrace      = 500 * time.Millisecond
)

// Backend implements player.Backend using mpv with IPC.
type Backend struct {
	mu sync.RWMutex

	client   *gopv.Client
	cmd      *exec.Cmd
	endpoint *ipcEndpoint

	state   player.Progress
	playing bool
	paused  bool
	closed  bool

	onProgress func(player.Progress)
	onReady    func()
	onEnd      func()
	onError    func(error)

	ctx    context.Context
	cancel context.CancelFunc

	binary string
}

// New builds an mpv backend. It fails fast when the mpv binary cannot
// be found; everything after that is reported via callbacks.
func New() (*Backend, error) {
	path, err := exec.LookPath(executableName())
	if err != nil {
		return nil, fmt.Errorf("mpv not found in PATH: %w", err)
	}
	return &Backend{binary: path}, nil
}

// Name implements player.Backend.
func (b *Backend) Name() string { return "mpv" }

// Play launches mpv and connects to its IPC asynchronously. A previous
// playback, if any, is torn down first.
func (b *Backend) Play(ctx context.Context, url string, opts player.Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.stopLocked(); err != nil {
		return fmt.Errorf("stop previous playback: %w", err)
	}

	endpoint, err := newIPCEndpoint()
	if err != nil {
		return err
	}
	b.endpoint = endpoint

	cmd := exec.Command(b.binary, b.buildArgs(url, opts)...)
	// Detach from the terminal entirely so mpv cannot steal keyboard
	// input or write over the TUI.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detachProcess(cmd)

	if err := cmd.Start(); err != nil {
		endpoint.cleanup()
		b.endpoint = nil
		return fmt.Errorf("start mpv: %w", err)
	}

	b.cmd = cmd
	b.closed = false
	b.paused = false
	b.ctx, b.cancel = context.WithCancel(context.Background())
	go b.connect(b.ctx, endpoint)

	slog.Debug("mpv launched", "pid", cmd.Process.Pid, "ipc", endpoint.address)
	return nil
}

// connect waits for the IPC endpoint, attaches the gopv client, then
// starts the monitor goroutines.
func (b *Backend) connect(ctx context.Context, endpoint *ipcEndpoint) {
	waitCtx, cancel := context.WithTimeout(ctx, ipcWaitTimeout)
	defer cancel()

	if err := b.waitForEndpoint(waitCtx, endpoint); err != nil {
		b.failLaunch(fmt.Errorf("waiting for mpv ipc at %s: %w", endpoint.address, err))
		return
	}

	client, err := gopv.Connect(endpoint.address, func(err error) {
		b.mu.RLock()
		cb := b.onError
		closed := b.closed
		b.mu.RUnlock()
		if cb != nil && !closed {
			cb(err)
		}
	})
	if err != nil {
		b.failLaunch(fmt.Errorf("connect to mpv ipc at %s: %w", endpoint.address, err))
		return
	}

	b.mu.Lock()
	b.client = client
	b.playing = true
	ready := b.onReady
	b.mu.Unlock()

	if ready != nil {
		ready()
	}
	go b.monitorProgress()
	go b.monitorProcess()
}

func (b *Backend) failLaunch(err error) {
	b.mu.Lock()
	cb := b.onError
	if b.cmd != nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	if b.endpoint != nil {
		b.endpoint.cleanup()
		b.endpoint = nil
	}
	b.closed = true
	b.playing = false
	b.mu.Unlock()

	if cb != nil {
		cb(err)
	}
}

func (b *Backend) waitForEndpoint(ctx context.Context, endpoint *ipcEndpoint) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if endpointReady(endpoint) {
				// The endpoint existing does not mean mpv finished
				// binding it; give it a beat.
				time.Sleep(200 * time.Millisecond)
				return nil
			}
		}
	}
}

// Stop tears the player down. Synchronous from the caller's view: once
// it returns, no playing/paused signal will be reported again.
func (b *Backend) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopLocked()
}

func (b *Backend) stopLocked() error {
	if b.closed && b.cmd == nil {
		return nil
	}
	b.closed = true
	b.playing = false
	b.paused = false

	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	// Ask mpv to quit; gopv closes its own connection on EOF when the
	// process dies, so the client must not be closed here.
	if b.client != nil {
		client := b.client
		b.client = nil
		go func() {
			done := make(chan struct{})
			go func() {
				_, _ = client.Request("quit")
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(quitGrace):
			}
		}()
	}

	if b.cmd != nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
	}
	b.cmd = nil

	if b.endpoint != nil {
		b.endpoint.cleanup()
		b.endpoint = nil
	}
	return nil
}

// Pause sets the mpv pause property.
func (b *Backend) Pause(ctx context.Context) error {
	return b.setPaused(true)
}

// Resume clears the mpv pause property.
func (b *Backend) Resume(ctx context.Context) error {
	return b.setPaused(false)
}

func (b *Backend) setPaused(paused bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return fmt.Errorf("player not running")
	}
	if _, err := b.client.Request("set_property", "pause", paused); err != nil {
		return fmt.Errorf("set pause=%v: %w", paused, err)
	}
	b.paused = paused
	return nil
}

// Seek jumps to an absolute position.
func (b *Backend) Seek(ctx context.Context, position time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return fmt.Errorf("player not running")
	}
	if _, err := b.client.Request("set_property", "time-pos", position.Seconds()); err != nil {
		return fmt.Errorf("seek to %s: %w", position, err)
	}
	return nil
}

// Progress queries mpv for the current position snapshot.
func (b *Backend) Progress(ctx context.Context) (*player.Progress, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.client == nil {
		return nil, fmt.Errorf("player not running")
	}
	return b.progressLocked()
}

func (b *Backend) progressLocked() (*player.Progress, error) {
	var pos, duration float64
	var paused, eof bool
	var errs int

	if v, err := b.client.Request("get_property", "time-pos"); err == nil {
		pos, _ = v.(float64)
	} else {
		errs++
	}
	if v, err := b.client.Request("get_property", "duration"); err == nil {
		duration, _ = v.(float64)
	} else {
		errs++
	}
	if v, err := b.client.Request("get_property", "pause"); err == nil {
		paused, _ = v.(bool)
	} else {
		errs++
	}
	if v, err := b.client.Request("get_property", "eof-reached"); err == nil {
		eof, _ = v.(bool)
	} else {
		errs++
	}
	if errs >= 3 {
		return nil, fmt.Errorf("mpv ipc unresponsive (%d property reads failed)", errs)
	}

	var percent float64
	if duration > 0 {
		percent = pos / duration * 100
	}
	return &player.Progress{
		Position: time.Duration(pos * float64(time.Second)),
		Duration: time.Duration(duration * float64(time.Second)),
		Percent:  percent,
		Paused:   paused,
		EOF:      eof,
	}, nil
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
	return b.playing && !b.paused
}

// IsPaused implements player.Backend.
func (b *Backend) IsPaused() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.playing && b.paused
}

func (b *Backend) monitorProgress() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ctx := b.ctx
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.mu.RLock()
			if b.client == nil {
				b.mu.RUnlock()
				return
			}
			progress, err := b.progressLocked()
			cb := b.onProgress
			endCb := b.onEnd
			b.mu.RUnlock()

			if err != nil {
				continue
			}
			b.mu.Lock()
			b.paused = progress.Paused
			b.mu.Unlock()

			if cb != nil {
				cb(*progress)
			}
			if progress.EOF {
				if endCb != nil {
					endCb()
				}
				return
			}
		}
	}
}

func (b *Backend) monitorProcess() {
	b.mu.RLock()
	cmd := b.cmd
	b.mu.RUnlock()
	if cmd == nil {
		return
	}

	err := cmd.Wait()

	b.mu.Lock()
	cb := b.onError
	closed := b.closed
	b.mu.Unlock()

	if err != nil && cb != nil && !closed {
		cb(fmt.Errorf("mpv exited unexpectedly: %w", err))
	}
	_ = b.Stop(context.Background())
}

func (b *Backend) buildArgs(url string, opts player.Options) []string {
	args := []string{
		b.endpoint.arg(),
		"--no-ytdl",
		"--no-config",
		"--msg-level=all=warn",
		"--force-window=yes",
	}
	if opts.StartAt > 0 {
		args = append(args, fmt.Sprintf("--start=%f", opts.StartAt.Seconds()))
	}
	if opts.Volume > 0 {
		args = append(args, fmt.Sprintf("--volume=%d", opts.Volume))
	}
	if opts.Fullscreen {
		args = append(args, "--fullscreen")
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent="+opts.UserAgent)
	}
	if opts.Title != "" {
		args = append(args, "--force-media-title="+opts.Title)
	}
	args = append(args, opts.ExtraArgs...)
	args = append(args, url)
	return args
}

var _ player.Backend = (*Backend)(nil)
