package focus

import "strings"

// Keyboard is the virtual on-screen keyboard used by the search screen
// and the category password prompt. The cursor moves over a fixed
// character matrix with row-length-aware wrapping; typed characters
// append to a bounded buffer.

// Special keys occupy dedicated cells in the bottom row.
const (
	KeySpace rune = '␣'
	KeyDel   rune = '⌫'
	KeyDone  rune = '↵'
)

// KeyboardAction reports what a confirm on the keyboard did.
type KeyboardAction int

const (
	KeyboardTyped KeyboardAction = iota
	KeyboardDeleted
	KeyboardDone
	KeyboardFull
)

// DefaultLayout is the standard search layout: letters, digits and the
// control row.
var DefaultLayout = [][]rune{
	[]rune("abcdefghij"),
	[]rune("klmnopqrst"),
	[]rune("uvwxyz1234"),
	[]rune("567890-._"),
	{KeySpace, KeyDel, KeyDone},
}

// DigitLayout is the compact layout used by the password prompt.
var DigitLayout = [][]rune{
	[]rune("12345"),
	[]rune("67890"),
	{KeyDel, KeyDone},
}

// Keyboard holds the matrix cursor and the input buffer.
type Keyboard struct {
	Layout [][]rune
	Row    int
	Col    int
	MaxLen int

	buf strings.Builder
}

// NewKeyboard builds a keyboard over the given layout with a maximum
// buffer length.
func NewKeyboard(layout [][]rune, maxLen int) *Keyboard {
	return &Keyboard{Layout: layout, MaxLen: maxLen}
}

// Value returns the current buffer contents.
func (k *Keyboard) Value() string { return k.buf.String() }

// SetValue replaces the buffer, truncating to MaxLen.
func (k *Keyboard) SetValue(s string) {
	k.buf.Reset()
	runes := []rune(s)
	if k.MaxLen > 0 && len(runes) > k.MaxLen {
		runes = runes[:k.MaxLen]
	}
	k.buf.WriteString(string(runes))
}

// Reset clears the buffer and homes the cursor.
func (k *Keyboard) Reset() {
	k.buf.Reset()
	k.Row, k.Col = 0, 0
}

// Focused returns the rune under the cursor.
func (k *Keyboard) Focused() rune {
	return k.Layout[k.Row][k.Col]
}

// Move applies a directional key. Left/Right wrap within the row;
// Up/Down preserve the column, clamped to the target row's length.
func (k *Keyboard) Move(dir Direction) {
	switch dir {
	case Left:
		if k.Col > 0 {
			k.Col--
		} else {
			k.Col = len(k.Layout[k.Row]) - 1
		}
	case Right:
		if k.Col < len(k.Layout[k.Row])-1 {
			k.Col++
		} else {
			k.Col = 0
		}
	case Up:
		if k.Row > 0 {
			k.Row--
			k.clampCol()
		}
	case Down:
		if k.Row < len(k.Layout)-1 {
			k.Row++
			k.clampCol()
		}
	}
}

func (k *Keyboard) clampCol() {
	if max := len(k.Layout[k.Row]) - 1; k.Col > max {
		k.Col = max
	}
}

// Press confirms the focused cell, mutating the buffer.
func (k *Keyboard) Press() KeyboardAction {
	switch k.Focused() {
	case KeyDone:
		return KeyboardDone
	case KeyDel:
		return k.Backspace()
	case KeySpace:
		return k.Type(' ')
	default:
		return k.Type(k.Focused())
	}
}

// Type appends a character, guarding the max-length bound.
func (k *Keyboard) Type(r rune) KeyboardAction {
	if k.MaxLen > 0 && len([]rune(k.buf.String())) >= k.MaxLen {
		return KeyboardFull
	}
	k.buf.WriteRune(r)
	return KeyboardTyped
}

// Backspace removes the last character, a no-op on an empty buffer.
func (k *Keyboard) Backspace() KeyboardAction {
	runes := []rune(k.buf.String())
	if len(runes) == 0 {
		return KeyboardDeleted
	}
	k.buf.Reset()
	k.buf.WriteString(string(runes[:len(runes)-1]))
	return KeyboardDeleted
}
