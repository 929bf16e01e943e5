package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teleview/teleview/internal/content"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/tui/common"
)

// listenEngine blocks on the engine's event channel and feeds the next
// event into the update loop; the handler re-arms it.
func (a *App) listenEngine() tea.Cmd {
	events := a.deps.Engine.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return common.EngineEventMsg{Event: ev}
	}
}

// startPlayback hands an intent to the engine and switches to the
// player screen.
func (a *App) startPlayback(intent content.StreamIntent, itemID string) tea.Cmd {
	a.pushMode(modePlayer)
	engine := a.deps.Engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Start(ctx, intent, itemID); err != nil {
			slog.Error("playback start failed", "url", intent.URL, "error", err)
			return common.StatusMsg{Text: "Playback failed: " + err.Error(), IsErr: true}
		}
		return nil
	}
}

// handleEngineEvent folds an engine notification into the UI and
// re-arms the pump.
func (a *App) handleEngineEvent(ev playback.Event) tea.Cmd {
	a.player.Apply(ev)
	cmds := []tea.Cmd{a.listenEngine()}

	switch ev.Type {
	case playback.EventEnded:
		if cmd := a.autoplayNext(ev.Intent); cmd != nil {
			cmds = append(cmds, cmd)
		} else if a.mode == modePlayer {
			a.popMode()
			cmds = append(cmds, status("Playback finished", false))
		}

	case playback.EventStateChanged:
		if ev.State == playback.StateIdle && a.mode == modePlayer {
			a.popMode()
		}
	}
	return tea.Batch(cmds...)
}

// autoplayNext chains into the following episode when the finished
// stream was part of a series and a successor is known.
func (a *App) autoplayNext(prev content.StreamIntent) tea.Cmd {
	if a.resolver == nil || prev.Series == nil {
		return nil
	}
	next, itemID, ok := a.resolver.NextEpisodeIntent(prev)
	if !ok {
		return nil
	}
	slog.Info("autoplaying next episode", "name", next.Name)
	intent := next
	return func() tea.Msg { return common.PlayRequestMsg{Intent: intent, ItemID: itemID} }
}
