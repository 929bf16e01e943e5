package focus

// The focus machine is the one parametrized implementation behind every
// browsable screen: a screen declares its regions (category list,
// content grid, action row, ...) and the machine turns directional key
// codes into cursor moves, region transitions and page changes. The
// per-screen components own only what to do on confirm and how to
// reload a region's data.

// Axis is the direction along which a machine's regions are stacked.
type Axis int

const (
	// Horizontal lays regions out left-to-right (category sidebar,
	// then content grid).
	Horizontal Axis = iota
	// Vertical stacks regions top-to-bottom (actions, seasons,
	// episodes on a details page).
	Vertical
)

// RegionKind determines how directional moves behave inside a region.
type RegionKind int

const (
	// List is a vertical list: Up/Down move, Left/Right exit. No
	// pagination and no column wrap.
	List RegionKind = iota
	// GridRegion is a paginated 2-D grid with the canonical wrap and
	// page-advance rules.
	GridRegion
	// Row is a horizontal strip (action buttons, season carousel):
	// Left/Right move, Up/Down exit.
	Row
)

// Region describes one navigable area of a screen.
type Region struct {
	ID   string
	Kind RegionKind
	// Grid geometry; only Columns/Rows are read for GridRegion.
	Columns int
	Rows    int
	// Count is the item count for List/Row regions.
	Count int
	// Wrap enables wrap-around at the ends of List/Row regions (the
	// side menu uses this).
	Wrap bool
}

// Effect reports what a directional move did, so the screen can react
// (scroll into view, trigger a page fetch, hand control back to the
// router).
type Effect int

const (
	EffNone Effect = iota
	EffMoved
	EffRegionChanged
	EffPageChanged
	// EffExitLeft fires when Left is pressed at the outermost left
	// boundary; the router treats it as "open outer navigation".
	EffExitLeft
	EffExitUp
	EffExitDown
)

// Restore carries previously saved focus state. Indices are clamped to
// the bounds of freshly loaded data when applied.
type Restore struct {
	Region int
	Index  int
	Page   int
}

// Machine is the focus state machine for one screen.
type Machine struct {
	Axis    Axis
	regions []Region
	grids   []Grid
	indices []int // page-local index per region
	active  int
}

// NewMachine builds a machine over the given regions. The first region
// with a non-zero count becomes active.
func NewMachine(axis Axis, regions ...Region) *Machine {
	m := &Machine{
		Axis:    axis,
		regions: regions,
		grids:   make([]Grid, len(regions)),
		indices: make([]int, len(regions)),
	}
	for i, r := range regions {
		if r.Kind == GridRegion {
			m.grids[i] = Grid{Items: r.Count, Columns: r.Columns, Rows: r.Rows}
		}
	}
	m.active = m.firstPopulated()
	return m
}

func (m *Machine) firstPopulated() int {
	for i := range m.regions {
		if m.count(i) > 0 {
			return i
		}
	}
	return 0
}

func (m *Machine) count(region int) int {
	if m.regions[region].Kind == GridRegion {
		return m.grids[region].Items
	}
	return m.regions[region].Count
}

// Active returns the active region index.
func (m *Machine) Active() int { return m.active }

// ActiveID returns the active region's ID.
func (m *Machine) ActiveID() string { return m.regions[m.active].ID }

// Index returns the page-local index within the given region.
func (m *Machine) Index(region int) int { return m.indices[region] }

// Page returns the current page of a grid region (0 otherwise).
func (m *Machine) Page(region int) int {
	if m.regions[region].Kind == GridRegion {
		return m.grids[region].Page
	}
	return 0
}

// Grid returns the grid state of a region.
func (m *Machine) Grid(region int) Grid { return m.grids[region] }

// Abs returns the absolute item index the cursor points at in the
// given region (page offset included for grids).
func (m *Machine) Abs(region int) int {
	if m.regions[region].Kind == GridRegion {
		return m.grids[region].PageStart() + m.indices[region]
	}
	return m.indices[region]
}

// Focused returns the active region index and the absolute focused
// item index; this is what confirm resolves.
func (m *Machine) Focused() (region, abs int) {
	return m.active, m.Abs(m.active)
}

// SetActive activates a region directly (e.g. opening a modal region),
// clamping its stored index.
func (m *Machine) SetActive(region int) {
	if region < 0 || region >= len(m.regions) {
		return
	}
	m.active = region
	m.clampRegion(region)
}

// Reload replaces a region's item count after an async fetch. Focus
// resets to item 0 page 0 unless a restore is supplied, in which case
// the restored indices are clamped to the new bounds.
func (m *Machine) Reload(region, count int, restore *Restore) {
	r := &m.regions[region]
	if r.Kind == GridRegion {
		g := &m.grids[region]
		g.Items = count
		if restore != nil {
			g.Page = restore.Page
			m.indices[region] = restore.Index
		} else {
			g.Page = 0
			m.indices[region] = 0
		}
		g.ClampPage()
		m.indices[region] = g.ClampIndex(m.indices[region])
		return
	}
	r.Count = count
	if restore != nil {
		m.indices[region] = restore.Index
	} else {
		m.indices[region] = 0
	}
	m.clampRegion(region)
}

func (m *Machine) clampRegion(region int) {
	count := m.count(region)
	if m.regions[region].Kind == GridRegion {
		g := &m.grids[region]
		g.ClampPage()
		m.indices[region] = g.ClampIndex(m.indices[region])
		return
	}
	if m.indices[region] >= count {
		m.indices[region] = count - 1
	}
	if m.indices[region] < 0 {
		m.indices[region] = 0
	}
}

// Direction is a directional move request.
type Direction int

const (
	Left Direction = iota
	Up
	Right
	Down
)

// Move applies one directional key to the cursor and reports the
// resulting effect. The cursor never goes out of bounds silently.
func (m *Machine) Move(dir Direction) Effect {
	switch m.regions[m.active].Kind {
	case GridRegion:
		return m.moveGrid(dir)
	case Row:
		return m.moveRow(dir)
	default:
		return m.moveList(dir)
	}
}

func (m *Machine) moveList(dir Direction) Effect {
	r := m.regions[m.active]
	idx := m.indices[m.active]
	switch dir {
	case Up:
		if idx > 0 {
			m.indices[m.active] = idx - 1
			return EffMoved
		}
		if r.Wrap && r.Count > 1 {
			m.indices[m.active] = r.Count - 1
			return EffMoved
		}
		if m.Axis == Vertical {
			return m.shiftRegion(-1, EffExitUp)
		}
		return EffNone
	case Down:
		if idx < r.Count-1 {
			m.indices[m.active] = idx + 1
			return EffMoved
		}
		if r.Wrap && r.Count > 1 {
			m.indices[m.active] = 0
			return EffMoved
		}
		if m.Axis == Vertical {
			return m.shiftRegion(1, EffExitDown)
		}
		return EffNone
	case Left:
		if m.Axis == Horizontal {
			return m.shiftRegion(-1, EffExitLeft)
		}
		return EffNone
	case Right:
		if m.Axis == Horizontal {
			return m.shiftRegion(1, EffNone)
		}
		return EffNone
	}
	return EffNone
}

func (m *Machine) moveRow(dir Direction) Effect {
	r := m.regions[m.active]
	idx := m.indices[m.active]
	switch dir {
	case Left:
		if idx > 0 {
			m.indices[m.active] = idx - 1
			return EffMoved
		}
		if m.Axis == Horizontal {
			return m.shiftRegion(-1, EffExitLeft)
		}
		return EffNone
	case Right:
		if idx < r.Count-1 {
			m.indices[m.active] = idx + 1
			return EffMoved
		}
		return EffNone
	case Up:
		if m.Axis == Vertical {
			return m.shiftRegion(-1, EffExitUp)
		}
		return EffNone
	case Down:
		if m.Axis == Vertical {
			return m.shiftRegion(1, EffExitDown)
		}
		return EffNone
	}
	return EffNone
}

func (m *Machine) moveGrid(dir Direction) Effect {
	g := &m.grids[m.active]
	idx := m.indices[m.active]
	count := g.CurrentPageCount()
	if count == 0 {
		switch dir {
		case Left:
			if m.Axis == Horizontal {
				return m.shiftRegion(-1, EffExitLeft)
			}
		case Up:
			if m.Axis == Vertical {
				return m.shiftRegion(-1, EffExitUp)
			}
		}
		return EffNone
	}
	row, col := g.RowCol(idx)

	switch dir {
	case Up:
		if row > 0 {
			m.indices[m.active] = idx - g.Columns
			return EffMoved
		}
		if g.Page > 0 {
			// Last row of the previous page, same column, clamped to
			// that page's item count.
			g.Page--
			prevCount := g.CurrentPageCount()
			lastRow := (prevCount - 1) / g.Columns
			target := lastRow*g.Columns + col
			if target >= prevCount {
				target = prevCount - 1
			}
			m.indices[m.active] = target
			return EffPageChanged
		}
		if m.Axis == Vertical {
			return m.shiftRegion(-1, EffExitUp)
		}
		return EffExitUp

	case Down:
		target := idx + g.Columns
		if target < count {
			m.indices[m.active] = target
			return EffMoved
		}
		if row < g.LastRow() {
			// Partial last row: clamp into it rather than falling off.
			m.indices[m.active] = count - 1
			return EffMoved
		}
		if g.Page+1 < g.TotalPages() {
			g.Page++
			m.indices[m.active] = g.ClampIndex(col)
			return EffPageChanged
		}
		if m.Axis == Vertical {
			return m.shiftRegion(1, EffExitDown)
		}
		return EffNone

	case Left:
		if col > 0 {
			m.indices[m.active] = idx - 1
			return EffMoved
		}
		if m.Axis == Horizontal {
			return m.shiftRegion(-1, EffExitLeft)
		}
		return EffExitLeft

	case Right:
		if idx < count-1 {
			m.indices[m.active] = idx + 1
			return EffMoved
		}
		if g.Page+1 < g.TotalPages() {
			g.Page++
			m.indices[m.active] = 0
			return EffPageChanged
		}
		return EffNone
	}
	return EffNone
}

// shiftRegion moves focus to the nearest populated region in the given
// direction; at the boundary it reports the exit effect instead.
func (m *Machine) shiftRegion(delta int, exit Effect) Effect {
	for next := m.active + delta; next >= 0 && next < len(m.regions); next += delta {
		if m.count(next) > 0 {
			m.active = next
			m.clampRegion(next)
			return EffRegionChanged
		}
	}
	return exit
}
