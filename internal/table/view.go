package table

// Config is the per-entity table configuration.
type Config struct {
	Columns     []Column
	StatusField string
	Theme       Theme
}

// Header describes a column heading in a View.
type Header struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Sortable bool      `json:"sortable"`
	Align    Align     `json:"align"`
	Width    string    `json:"width,omitempty"`
	Sorted   Direction `json:"sorted,omitempty"` // set on the active sort column
}

// ViewRow is one rendered record.
type ViewRow struct {
	Cells  []Cell `json:"cells"`
	Class  string `json:"class,omitempty"`
	Status string `json:"status,omitempty"`
	Record Record `json:"record"`
}

// View is what a table page shows.
type View struct {
	Headers    []Header  `json:"headers"`
	Rows       []ViewRow `json:"rows"`
	Total      int       `json:"total"`
	Filtered   int       `json:"filtered"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
	FirstItem  int       `json:"firstItem"` // 1-based, 0 when the page is empty
	LastItem   int       `json:"lastItem"`
	State      State     `json:"state"`
}

// HasPrev reports whether there is a page before the current one.
func (v View) HasPrev() bool { return v.Page > 1 }

// HasNext reports whether there is a page after the current one.
func (v View) HasNext() bool { return v.Page < v.TotalPages }

// Build runs filter, sort and paginate for st and renders the visible rows.
// The page in st is clamped to the filtered result.
func Build(records []Record, cfg Config, st *State) View {
	filtered := Filter(records, cfg.Columns, st.SearchTerm)
	sorted := Sort(filtered, st.SortField, st.SortDir)

	st.Clamp(len(sorted))
	size := st.pageSize()
	page := Paginate(sorted, st.CurrentPage, size)

	v := View{
		Headers:    make([]Header, len(cfg.Columns)),
		Rows:       make([]ViewRow, len(page)),
		Total:      len(records),
		Filtered:   len(sorted),
		Page:       st.CurrentPage,
		PageSize:   size,
		TotalPages: st.TotalPages(len(sorted)),
		State:      *st,
	}

	for i, col := range cfg.Columns {
		h := Header{
			Key:      col.Key,
			Label:    col.label(),
			Sortable: col.Sortable,
			Align:    col.align(),
			Width:    col.Width,
		}
		if col.Key == st.SortField {
			h.Sorted = st.SortDir
		}
		v.Headers[i] = h
	}

	for i, rec := range page {
		cells := make([]Cell, len(cfg.Columns))
		for j, col := range cfg.Columns {
			cells[j] = Render(rec, col, cfg.Theme)
		}
		row := ViewRow{Cells: cells, Record: rec}
		if cfg.StatusField != "" {
			row.Status = rec.Text(cfg.StatusField)
			row.Class = RowClass(rec, cfg.StatusField, cfg.Theme)
		}
		v.Rows[i] = row
	}

	if len(page) > 0 {
		v.FirstItem = (st.CurrentPage-1)*size + 1
		v.LastItem = v.FirstItem + len(page) - 1
	}
	return v
}
