package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardRowWrap(t *testing.T) {
	k := NewKeyboard(DefaultLayout, 50)
	assert.Equal(t, 'a', k.Focused())

	k.Move(Left)
	assert.Equal(t, 'j', k.Focused(), "left wraps to the row end")
	k.Move(Right)
	assert.Equal(t, 'a', k.Focused(), "right wraps back to the row start")
}

func TestKeyboardColumnClampOnShorterRow(t *testing.T) {
	k := NewKeyboard(DefaultLayout, 50)
	// Move to the last column of the first row, then down to the
	// control row which is shorter.
	for i := 0; i < 9; i++ {
		k.Move(Right)
	}
	for i := 0; i < 4; i++ {
		k.Move(Down)
	}
	assert.Equal(t, 4, k.Row)
	assert.Equal(t, KeyDone, k.Focused(), "column clamps to the shorter row's length")
}

func TestKeyboardTyping(t *testing.T) {
	k := NewKeyboard(DefaultLayout, 5)
	assert.Equal(t, KeyboardTyped, k.Press())
	k.Move(Right)
	assert.Equal(t, KeyboardTyped, k.Press())
	assert.Equal(t, "ab", k.Value())
}

func TestKeyboardMaxLengthGuard(t *testing.T) {
	k := NewKeyboard(DigitLayout, 4)
	for i := 0; i < 4; i++ {
		k.Press()
	}
	assert.Equal(t, "1111", k.Value())
	assert.Equal(t, KeyboardFull, k.Press())
	assert.Equal(t, "1111", k.Value())
}

func TestKeyboardBackspaceAndDone(t *testing.T) {
	k := NewKeyboard(DigitLayout, 10)
	k.Press()
	k.Press()

	// Bottom row: del then done.
	k.Move(Down)
	k.Move(Down)
	assert.Equal(t, KeyDel, k.Focused())
	assert.Equal(t, KeyboardDeleted, k.Press())
	assert.Equal(t, "1", k.Value())

	k.Move(Right)
	assert.Equal(t, KeyboardDone, k.Press())

	// Backspace on an empty buffer is a no-op.
	k.SetValue("")
	assert.Equal(t, KeyboardDeleted, k.Backspace())
	assert.Equal(t, "", k.Value())
}

func TestKeyboardSetValueTruncates(t *testing.T) {
	k := NewKeyboard(DefaultLayout, 3)
	k.SetValue("abcdef")
	assert.Equal(t, "abc", k.Value())
}
