package focus

// Grid models a paginated 2-D grid of items. Index arithmetic is
// page-local: positions are always within [0, PageCount(Page)).
type Grid struct {
	Items   int
	Columns int
	Rows    int
	Page    int
}

// ItemsPerPage returns Columns*Rows, minimum 1.
func (g Grid) ItemsPerPage() int {
	n := g.Columns * g.Rows
	if n < 1 {
		return 1
	}
	return n
}

// TotalPages returns ceil(Items/ItemsPerPage), minimum 1 for an empty
// grid so that Page 0 is always valid.
func (g Grid) TotalPages() int {
	per := g.ItemsPerPage()
	pages := (g.Items + per - 1) / per
	if pages < 1 {
		return 1
	}
	return pages
}

// PageStart returns the absolute index of the first item on the
// current page.
func (g Grid) PageStart() int {
	return g.Page * g.ItemsPerPage()
}

// PageCount returns how many items the given page holds.
func (g Grid) PageCount(page int) int {
	per := g.ItemsPerPage()
	start := page * per
	if start >= g.Items {
		return 0
	}
	n := g.Items - start
	if n > per {
		n = per
	}
	return n
}

// CurrentPageCount returns how many items the current page holds.
func (g Grid) CurrentPageCount() int {
	return g.PageCount(g.Page)
}

// ClampPage forces Page back into [0, TotalPages), used after a reload
// shrinks the item list below the previous page's range.
func (g *Grid) ClampPage() {
	max := g.TotalPages() - 1
	if g.Page > max {
		g.Page = max
	}
	if g.Page < 0 {
		g.Page = 0
	}
}

// ClampIndex clamps a page-local index into the current page's bounds.
func (g Grid) ClampIndex(idx int) int {
	count := g.CurrentPageCount()
	if count == 0 {
		return 0
	}
	if idx >= count {
		idx = count - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// RowCol converts a page-local index into row/column coordinates.
func (g Grid) RowCol(idx int) (row, col int) {
	if g.Columns < 1 {
		return 0, 0
	}
	return idx / g.Columns, idx % g.Columns
}

// LastRow returns the index of the last (possibly partial) row on the
// current page.
func (g Grid) LastRow() int {
	count := g.CurrentPageCount()
	if count == 0 || g.Columns < 1 {
		return 0
	}
	return (count - 1) / g.Columns
}
