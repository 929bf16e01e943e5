package player

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by a backend for operations its transport
// cannot perform, e.g. seeking a live MPEG-TS feed.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Backend is a video player a stream can be handed to. Exactly one
// backend is active at a time; the playback engine owns selection and
// lifecycle, backends own their process and transport.
type Backend interface {
	// Name identifies the backend in logs ("mpv", "ffplay").
	Name() string

	// Play validates prerequisites and starts the player process.
	// Readiness and launch failures are reported asynchronously via
	// the callbacks.
	Play(ctx context.Context, url string, opts Options) error

	// Stop tears the player down synchronously. Safe to call when
	// nothing is playing.
	Stop(ctx context.Context) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	// Seek jumps to an absolute position. Backends without a seekable
	// transport return ErrUnsupported.
	Seek(ctx context.Context, position time.Duration) error

	Progress(ctx context.Context) (*Progress, error)

	// Callbacks fire from backend goroutines; the receiver must not
	// call back into the backend from them.
	OnProgress(func(Progress))
	OnReady(func())
	OnEnd(func())
	OnError(func(error))

	IsPlaying() bool
	IsPaused() bool
}

// Options carries per-stream launch parameters.
type Options struct {
	Title      string
	StartAt    time.Duration
	Volume     int
	Fullscreen bool
	UserAgent  string
	Live       bool
	ExtraArgs  []string
}

// Progress is a snapshot of playback position.
type Progress struct {
	Position time.Duration
	Duration time.Duration
	Percent  float64
	Paused   bool
	EOF      bool
}
