package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browseMachine builds the standard browse screen shape: a category
// list on the left, a 5x3 paginated grid on the right.
func browseMachine(categories, items int) *Machine {
	return NewMachine(Horizontal,
		Region{ID: "categories", Kind: List, Count: categories},
		Region{ID: "grid", Kind: GridRegion, Columns: 5, Rows: 3, Count: items},
	)
}

func TestMachineStartsOnFirstPopulatedRegion(t *testing.T) {
	m := browseMachine(2, 15)
	assert.Equal(t, "categories", m.ActiveID())

	// An empty category list puts focus straight on the grid.
	m2 := browseMachine(0, 15)
	assert.Equal(t, "grid", m2.ActiveID())
}

func TestGridRightWrapsToNextRow(t *testing.T) {
	m := browseMachine(0, 15)
	// Move to last column of the first row.
	for i := 0; i < 4; i++ {
		m.Move(Right)
	}
	assert.Equal(t, 4, m.Index(1))

	eff := m.Move(Right)
	assert.Equal(t, EffMoved, eff)
	assert.Equal(t, 5, m.Index(1), "right from last column lands on column 0 of the next row")
}

func TestGridRightAtLastItemAdvancesPage(t *testing.T) {
	m := browseMachine(0, 30)
	g := m.Grid(1)
	require.Equal(t, 2, g.TotalPages())

	// Jump the cursor to the last item of page 0.
	for i := 0; i < 14; i++ {
		m.Move(Right)
	}
	assert.Equal(t, 14, m.Index(1))

	eff := m.Move(Right)
	assert.Equal(t, EffPageChanged, eff)
	assert.Equal(t, 1, m.Page(1))
	assert.Equal(t, 0, m.Index(1), "page advance resets to item 0")
}

func TestGridDownClampsIntoPartialLastRow(t *testing.T) {
	// Category list [A, B], 12 items, 5x3: index 6 is row 1; Down
	// lands in the partial last row clamped to the item count.
	m := browseMachine(2, 12)
	m.SetActive(1)
	for i := 0; i < 6; i++ {
		m.Move(Right)
	}
	require.Equal(t, 6, m.Index(1))

	eff := m.Move(Down)
	assert.Equal(t, EffMoved, eff)
	assert.Equal(t, 11, m.Index(1), "6+5=11 within bounds")

	// From index 9 (row 1, col 4) the naive 9+5=14 is out of range;
	// the cursor clamps to the last item instead.
	m.Reload(1, 12, nil)
	for i := 0; i < 9; i++ {
		m.Move(Right)
	}
	eff = m.Move(Down)
	assert.Equal(t, EffMoved, eff)
	assert.Equal(t, 11, m.Index(1))
}

func TestScenarioFifteenItemGrid(t *testing.T) {
	// The canonical scenario: 15 mock items, columns=5 rows=3.
	// Loading focuses item 0; Down Down Right from 0 reaches 11.
	m := browseMachine(2, 15)
	m.SetActive(1)
	assert.Equal(t, 0, m.Index(1))

	m.Move(Down)
	m.Move(Down)
	assert.Equal(t, 10, m.Index(1))
	m.Move(Right)
	assert.Equal(t, 11, m.Index(1))
}

func TestGridDownAtLastRowAdvancesPagePreservingColumn(t *testing.T) {
	m := browseMachine(0, 32)
	// Move to row 2, column 3 (index 13).
	for i := 0; i < 13; i++ {
		m.Move(Right)
	}
	eff := m.Move(Down)
	assert.Equal(t, EffPageChanged, eff)
	assert.Equal(t, 1, m.Page(1))
	assert.Equal(t, 3, m.Index(1), "column preserved on the next page's first row")
}

func TestGridDownPageAdvanceClampsColumn(t *testing.T) {
	// Second page has only 2 items; landing column is clamped.
	m := browseMachine(0, 17)
	for i := 0; i < 14; i++ {
		m.Move(Right)
	}
	require.Equal(t, 14, m.Index(1)) // row 2, col 4
	eff := m.Move(Down)
	assert.Equal(t, EffPageChanged, eff)
	assert.Equal(t, 1, m.Page(1))
	assert.Equal(t, 1, m.Index(1), "clamped to the short page")
}

func TestGridUpAtTopRowReturnsToPreviousPage(t *testing.T) {
	m := browseMachine(0, 27)
	// Get to page 1 (12 items), top row, column 2.
	for i := 0; i < 14; i++ {
		m.Move(Right)
	}
	m.Move(Right) // page 1, index 0
	m.Move(Right)
	m.Move(Right) // index 2
	require.Equal(t, 1, m.Page(1))

	eff := m.Move(Up)
	assert.Equal(t, EffPageChanged, eff)
	assert.Equal(t, 0, m.Page(1))
	// Last row of page 0, same column: 2*5+2 = 12.
	assert.Equal(t, 12, m.Index(1))
}

func TestGridLeftAtColumnZeroExitsToCategories(t *testing.T) {
	m := browseMachine(2, 15)
	m.SetActive(1)
	eff := m.Move(Left)
	assert.Equal(t, EffRegionChanged, eff)
	assert.Equal(t, "categories", m.ActiveID())
}

func TestCategoryLeftAtOutermostEmitsExit(t *testing.T) {
	m := browseMachine(2, 15)
	eff := m.Move(Left)
	assert.Equal(t, EffExitLeft, eff, "outermost region hands control to outer navigation")
}

func TestCategoryListNoPaginationNoWrap(t *testing.T) {
	m := browseMachine(3, 15)
	assert.Equal(t, EffNone, m.Move(Up), "no wrap at the top")
	m.Move(Down)
	m.Move(Down)
	assert.Equal(t, 2, m.Index(0))
	assert.Equal(t, EffNone, m.Move(Down), "no wrap at the bottom")
}

func TestWrappingListCycles(t *testing.T) {
	m := NewMachine(Vertical, Region{ID: "menu", Kind: List, Count: 4, Wrap: true})
	assert.Equal(t, EffMoved, m.Move(Up))
	assert.Equal(t, 3, m.Index(0))
	assert.Equal(t, EffMoved, m.Move(Down))
	assert.Equal(t, 0, m.Index(0))
}

func TestReloadResetsFocusUnlessRestored(t *testing.T) {
	m := browseMachine(2, 45)
	m.SetActive(1)
	for i := 0; i < 16; i++ {
		m.Move(Right)
	}
	require.Equal(t, 1, m.Page(1))

	// Selecting a new category resets focus and page.
	m.Reload(1, 20, nil)
	assert.Equal(t, 0, m.Page(1))
	assert.Equal(t, 0, m.Index(1))

	// A restore clamps to the freshly loaded bounds.
	m.Reload(1, 8, &Restore{Index: 12, Page: 3})
	assert.Equal(t, 0, m.Page(1))
	assert.Equal(t, 7, m.Index(1))
}

func TestReloadShrinkKeepsPageInvariant(t *testing.T) {
	m := browseMachine(0, 120)
	for pages := 0; pages < 3; pages++ {
		for i := 0; i < 15; i++ {
			m.Move(Right)
		}
	}
	require.Greater(t, m.Page(1), 0)

	m.Reload(1, 4, &Restore{Index: m.Index(1), Page: m.Page(1)})
	g := m.Grid(1)
	assert.GreaterOrEqual(t, g.Page, 0)
	assert.Less(t, g.Page, g.TotalPages())
	assert.Less(t, m.Index(1), g.CurrentPageCount())
}

func TestDetailsVerticalRegions(t *testing.T) {
	// actions -> seasons -> episodes stacked vertically.
	m := NewMachine(Vertical,
		Region{ID: "actions", Kind: Row, Count: 3},
		Region{ID: "seasons", Kind: Row, Count: 4},
		Region{ID: "episodes", Kind: GridRegion, Columns: 1, Rows: 8, Count: 10},
	)
	assert.Equal(t, "actions", m.ActiveID())

	assert.Equal(t, EffRegionChanged, m.Move(Down))
	assert.Equal(t, "seasons", m.ActiveID())

	// Left/Right move within the season carousel.
	m.Move(Right)
	m.Move(Right)
	assert.Equal(t, 2, m.Index(1))

	assert.Equal(t, EffRegionChanged, m.Move(Down))
	assert.Equal(t, "episodes", m.ActiveID())

	assert.Equal(t, EffRegionChanged, m.Move(Up))
	assert.Equal(t, "seasons", m.ActiveID())
	assert.Equal(t, 2, m.Index(1), "carousel position is remembered")

	m.Move(Up)
	assert.Equal(t, EffExitUp, m.Move(Up), "exit above the topmost region")
}

func TestEmptyRegionIsSkipped(t *testing.T) {
	m := NewMachine(Vertical,
		Region{ID: "actions", Kind: Row, Count: 2},
		Region{ID: "seasons", Kind: Row, Count: 0},
		Region{ID: "episodes", Kind: GridRegion, Columns: 1, Rows: 8, Count: 5},
	)
	assert.Equal(t, EffRegionChanged, m.Move(Down))
	assert.Equal(t, "episodes", m.ActiveID(), "empty seasons region is skipped")
}
