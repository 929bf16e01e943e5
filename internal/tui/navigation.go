package tui

// Navigation history is a simple mode stack: opening a screen pushes
// the one it came from; Back pops. Popping an empty stack is a no-op
// so Back can never strand the user outside every screen.

func (a *App) pushMode(next appMode) {
	if a.mode == next {
		return
	}
	if a.mode == modeBrowse {
		if b := a.activeBrowse(); b != nil {
			b.SaveState()
		}
	}
	a.history = append(a.history, a.mode)
	a.mode = next
}

func (a *App) popMode() {
	if len(a.history) == 0 {
		// Root screens fall back to the browse screen when possible.
		if a.mode != modeBrowse && a.mode != modeAuth && a.activeBrowse() != nil {
			a.mode = modeBrowse
		}
		return
	}
	a.mode = a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
}
