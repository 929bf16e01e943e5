package input

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Key is a numeric remote-control key code. The codes follow the
// smart-TV remote contract so that routing logic and tests speak the
// same language regardless of the physical input device.
type Key int

const (
	KeyUnknown Key = 0

	KeyBack  Key = 8
	KeyEnter Key = 13
	KeyEsc   Key = 27
	KeyLeft  Key = 37
	KeyUp    Key = 38
	KeyRight Key = 39
	KeyDown  Key = 40

	// Grid shortcuts
	KeyInfo Key = 73 // 'I' — preview/info on content grids
	KeyPlay Key = 80 // 'P' — direct play on series grids

	// Platform-specific alternate back codes
	KeyBackTizen Key = 10009
	KeyBackWebOS Key = 461

	// Media keys, routed directly to the playback engine
	KeyMediaPlayPause  Key = 10252
	KeyMediaStop       Key = 413
	KeyMediaRewind     Key = 412
	KeyMediaFastFwd    Key = 417
)

// Event is a routed key event. Rune carries the printable character for
// virtual-keyboard fallback typing; it is zero for control keys.
type Event struct {
	Code Key
	Rune rune
}

// IsBack reports whether the code is any of the platform back keys.
func (e Event) IsBack() bool {
	return e.Code == KeyBack || e.Code == KeyEsc || e.Code == KeyBackTizen || e.Code == KeyBackWebOS
}

// IsDirectional reports whether the code is one of the four arrows.
func (e Event) IsDirectional() bool {
	switch e.Code {
	case KeyLeft, KeyUp, KeyRight, KeyDown:
		return true
	}
	return false
}

// IsMedia reports whether the code is a dedicated media key.
func (e Event) IsMedia() bool {
	switch e.Code {
	case KeyMediaPlayPause, KeyMediaStop, KeyMediaRewind, KeyMediaFastFwd:
		return true
	}
	return false
}

// FromKeyMsg maps a terminal key message onto a remote key event.
// Unmapped keys yield KeyUnknown and are silently dropped by the
// router. Printable runes keep their character so text entry screens
// can accept keyboard typing alongside the on-screen keyboard.
func FromKeyMsg(msg tea.KeyMsg) Event {
	switch msg.Type {
	case tea.KeyLeft:
		return Event{Code: KeyLeft}
	case tea.KeyUp:
		return Event{Code: KeyUp}
	case tea.KeyRight:
		return Event{Code: KeyRight}
	case tea.KeyDown:
		return Event{Code: KeyDown}
	case tea.KeyEnter:
		return Event{Code: KeyEnter}
	case tea.KeyBackspace:
		return Event{Code: KeyBack}
	case tea.KeyEsc:
		return Event{Code: KeyEsc}
	case tea.KeySpace:
		return Event{Code: KeyMediaPlayPause, Rune: ' '}
	}

	switch msg.String() {
	case "i":
		return Event{Code: KeyInfo, Rune: 'i'}
	case "p":
		return Event{Code: KeyPlay, Rune: 'p'}
	case "<", ",":
		return Event{Code: KeyMediaRewind}
	case ">", ".":
		return Event{Code: KeyMediaFastFwd}
	case "s":
		return Event{Code: KeyMediaStop, Rune: 's'}
	}

	if runes := msg.Runes; len(runes) == 1 {
		return Event{Code: KeyUnknown, Rune: runes[0]}
	}
	return Event{Code: KeyUnknown}
}
