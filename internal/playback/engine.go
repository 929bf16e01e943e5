// Package playback owns the lifecycle of the active stream: choosing a
// backend for each intent, the Idle/Initializing/Playing/Paused/Error
// state machine, init timeouts, and watch-progress persistence. All
// backend selection happens here; nothing else in the codebase decides
// which player binary handles a stream.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/player"
	"github.com/teleview/teleview/internal/progress"
)

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StatePlaying
	StatePaused
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// EventType discriminates engine events.
type EventType int

const (
	EventStateChanged EventType = iota
	EventProgress
	EventEnded
	EventFailed
)

// Event is a lifecycle notification delivered on the events channel.
type Event struct {
	Type     EventType
	State    State
	Progress player.Progress
	Err      error
	Intent   content.StreamIntent
}

// BackendFactory builds a fresh backend instance per playback.
type BackendFactory func() (player.Backend, error)

const (
	initTimeoutLive = 10 * time.Second
	initTimeoutVOD  = 45 * time.Second
	seekStep        = 10 * time.Second
	saveEvery       = 5 * time.Second
)

var errInitTimeout = errors.New("stream did not start in time")

// Engine drives exactly one stream at a time. Starting a new intent
// tears the previous backend down first; no two backends ever report
// playing concurrently.
type Engine struct {
	mu sync.Mutex

	liveFactory BackendFactory
	vodFactory  BackendFactory
	progress    *progress.Service

	liveInitTimeout time.Duration
	vodInitTimeout  time.Duration
	defaults        player.Options

	state      State
	backend    player.Backend
	intent     content.StreamIntent
	itemID     string
	generation uint64
	lastKnown  player.Progress
	lastSave   time.Time
	initTimer  *time.Timer
	lastErr    error

	events chan Event
}

// NewEngine builds an engine with the given backend factories. The
// progress service may be nil, disabling persistence (live-only use).
func NewEngine(live, vod BackendFactory, prog *progress.Service) *Engine {
	return &Engine{
		liveFactory:     live,
		vodFactory:      vod,
		progress:        prog,
		liveInitTimeout: initTimeoutLive,
		vodInitTimeout:  initTimeoutVOD,
		state:           StateIdle,
		events:          make(chan Event, 32),
	}
}

// SetPlayerDefaults applies configured player options (volume,
// fullscreen, user agent) to every subsequent playback.
func (e *Engine) SetPlayerDefaults(opts player.Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = opts
}

// Events returns the channel lifecycle notifications arrive on.
func (e *Engine) Events() <-chan Event { return e.events }

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Intent returns the intent currently loaded, meaningful outside Idle.
func (e *Engine) Intent() content.StreamIntent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intent
}

// LastError returns the error that put the engine in StateError.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// usesLiveBackend decides the transport for an intent. Live channels
// and raw MPEG-TS URLs cannot be paused or seeked by the VOD player.
func usesLiveBackend(intent content.StreamIntent) bool {
	return intent.IsLive() || strings.HasSuffix(strings.ToLower(intent.URL), ".ts")
}

// Start resolves a backend for the intent and begins playback. Any
// current playback is torn down synchronously before the new backend
// initializes; progress for the outgoing stream is flushed first.
func (e *Engine) Start(ctx context.Context, intent content.StreamIntent, itemID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked(true)

	factory := e.vodFactory
	timeout := e.vodInitTimeout
	if usesLiveBackend(intent) {
		factory = e.liveFactory
		timeout = e.liveInitTimeout
	}

	backend, err := factory()
	if err != nil {
		e.setStateLocked(StateError)
		e.lastErr = err
		return fmt.Errorf("create backend: %w", err)
	}

	e.generation++
	gen := e.generation
	e.backend = backend
	e.intent = intent
	e.itemID = itemID
	e.lastKnown = player.Progress{}
	e.lastErr = nil

	backend.OnReady(func() { e.handleReady(gen) })
	backend.OnProgress(func(p player.Progress) { e.handleProgress(gen, p) })
	backend.OnEnd(func() { e.handleEnd(gen) })
	backend.OnError(func(err error) { e.handleError(gen, err) })

	opts := e.defaults
	opts.Title = intent.Name
	opts.StartAt = intent.ResumeFrom
	opts.Live = intent.IsLive()
	if err := backend.Play(ctx, intent.URL, opts); err != nil {
		e.backend = nil
		e.setStateLocked(StateError)
		e.lastErr = err
		return fmt.Errorf("start playback: %w", err)
	}

	e.setStateLocked(StateInitializing)
	e.initTimer = time.AfterFunc(timeout, func() { e.handleInitTimeout(gen) })
	slog.Info("playback starting",
		"name", intent.Name,
		"backend", backend.Name(),
		"resume_from", intent.ResumeFrom)
	return nil
}

// Stop tears down the active backend and returns to Idle. The final
// position is persisted before the backend dies.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked(true)
	e.setStateLocked(StateIdle)
}

// Dismiss clears an error state back to Idle without touching any
// backend (there is none in StateError).
func (e *Engine) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateError {
		e.lastErr = nil
		e.setStateLocked(StateIdle)
	}
}

// Retry restarts the current intent after a failure.
func (e *Engine) Retry(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateError {
		e.mu.Unlock()
		return fmt.Errorf("retry only valid after a failure, state is %s", e.state)
	}
	intent, itemID := e.intent, e.itemID
	e.mu.Unlock()
	return e.Start(ctx, intent, itemID)
}

// TogglePause flips pause on VOD playback. Live streams ignore it: the
// transport cannot pause, and surfacing that as an error would be
// noise on every remote press.
func (e *Engine) TogglePause(ctx context.Context) error {
	e.mu.Lock()
	backend := e.backend
	state := e.state
	live := usesLiveBackend(e.intent)
	e.mu.Unlock()

	if backend == nil || (state != StatePlaying && state != StatePaused) {
		return nil
	}
	if live {
		return nil
	}

	var err error
	if state == StatePaused {
		err = backend.Resume(ctx)
	} else {
		err = backend.Pause(ctx)
	}
	if err != nil {
		return fmt.Errorf("toggle pause: %w", err)
	}

	e.mu.Lock()
	if state == StatePaused {
		e.setStateLocked(StatePlaying)
	} else {
		e.setStateLocked(StatePaused)
	}
	e.mu.Unlock()
	return nil
}

// SeekBy jumps forward or back by delta, clamped to the stream bounds.
// Live streams ignore seeks.
func (e *Engine) SeekBy(ctx context.Context, delta time.Duration) error {
	e.mu.Lock()
	backend := e.backend
	state := e.state
	live := usesLiveBackend(e.intent)
	known := e.lastKnown
	e.mu.Unlock()

	if backend == nil || (state != StatePlaying && state != StatePaused) || live {
		return nil
	}

	target := known.Position + delta
	if target < 0 {
		target = 0
	}
	if known.Duration > 0 && target > known.Duration {
		target = known.Duration
	}
	if err := backend.Seek(ctx, target); err != nil {
		if errors.Is(err, player.ErrUnsupported) {
			return nil
		}
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// SeekForward jumps ahead one step.
func (e *Engine) SeekForward(ctx context.Context) error { return e.SeekBy(ctx, seekStep) }

// SeekBack jumps back one step.
func (e *Engine) SeekBack(ctx context.Context) error { return e.SeekBy(ctx, -seekStep) }

// teardownLocked kills the active backend synchronously and flushes
// progress. Callbacks from the dying backend are fenced off by the
// generation counter before Stop is called.
func (e *Engine) teardownLocked(persist bool) {
	if e.initTimer != nil {
		e.initTimer.Stop()
		e.initTimer = nil
	}
	if e.backend == nil {
		return
	}
	e.generation++
	if persist {
		e.persistLocked(e.lastKnown, false)
	}
	backend := e.backend
	e.backend = nil
	if err := backend.Stop(context.Background()); err != nil {
		slog.Warn("backend stop failed", "backend", backend.Name(), "error", err)
	}
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.emit(Event{Type: EventStateChanged, State: s, Err: e.lastErr, Intent: e.intent})
}

// emit never blocks; if the receiver lags, older notifications are
// dropped in favor of the newest.
func (e *Engine) emit(ev Event) {
	for {
		select {
		case e.events <- ev:
			return
		default:
			select {
			case <-e.events:
			default:
			}
		}
	}
}

func (e *Engine) handleReady(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.state != StateInitializing {
		return
	}
	if e.initTimer != nil {
		e.initTimer.Stop()
		e.initTimer = nil
	}
	e.setStateLocked(StatePlaying)
}

func (e *Engine) handleInitTimeout(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || e.state != StateInitializing {
		return
	}
	slog.Warn("playback init timeout", "name", e.intent.Name)
	e.teardownLocked(false)
	e.lastErr = errInitTimeout
	e.setStateLocked(StateError)
	e.emit(Event{Type: EventFailed, State: StateError, Err: errInitTimeout, Intent: e.intent})
}

func (e *Engine) handleProgress(gen uint64, p player.Progress) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.lastKnown = p
	if time.Since(e.lastSave) >= saveEvery {
		e.persistLocked(p, false)
		e.lastSave = time.Now()
	}
	intent := e.intent
	e.mu.Unlock()
	e.emit(Event{Type: EventProgress, State: e.State(), Progress: p, Intent: intent})
}

func (e *Engine) handleEnd(gen uint64) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	intent := e.intent
	final := e.lastKnown
	if final.Duration > 0 {
		final.Position = final.Duration
	}
	e.persistLocked(final, true)
	e.teardownLocked(false)
	e.setStateLocked(StateIdle)
	e.mu.Unlock()
	e.emit(Event{Type: EventEnded, State: StateIdle, Intent: intent})
}

func (e *Engine) handleError(gen uint64, err error) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	slog.Error("playback failed", "name", e.intent.Name, "error", err)
	e.teardownLocked(true)
	e.lastErr = err
	e.setStateLocked(StateError)
	intent := e.intent
	e.mu.Unlock()
	e.emit(Event{Type: EventFailed, State: StateError, Err: err, Intent: intent})
}

// persistLocked writes watch progress for VOD content. Live streams
// and streams that never reported a position are skipped.
func (e *Engine) persistLocked(p player.Progress, ended bool) {
	if e.progress == nil || e.intent.IsLive() {
		return
	}
	if p.Position <= 0 || (p.Duration <= 0 && !ended) {
		return
	}
	meta := progress.Meta{
		Title:     e.intent.Name,
		Kind:      e.intent.Kind,
		Extension: strings.TrimPrefix(path.Ext(e.intent.URL), "."),
	}
	if s := e.intent.Series; s != nil {
		meta.SeriesID = s.SeriesID
		meta.SeriesName = s.SeriesName
		meta.Season = s.Season
		meta.EpisodeID = s.EpisodeID
		meta.EpisodeNumber = s.EpisodeNumber
		if s.Next != nil {
			meta.NextEpisodeID = s.Next.EpisodeID
			meta.NextEpisodeNum = s.Next.EpisodeNumber
		}
	}
	key := e.intent.ProgressKey(e.itemID)
	if err := e.progress.Save(key, p.Position, p.Duration, meta); err != nil {
		slog.Warn("save watch progress", "key", key, "error", err)
	}
}
