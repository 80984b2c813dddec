package table

// DefaultPageSize is used when a State has no page size.
const DefaultPageSize = 10

// State is the search, sort and page position of one table instance.
type State struct {
	SearchTerm  string    `json:"searchTerm"`
	SortField   string    `json:"sortField,omitempty"`
	SortDir     Direction `json:"sortDirection"`
	CurrentPage int       `json:"currentPage"`
	PageSize    int       `json:"pageSize"`
}

// NewState returns a state on page 1, optionally pre-sorted.
func NewState(pageSize int, sort SortKey) State {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	dir := sort.Dir
	if dir == "" {
		dir = Asc
	}
	return State{
		SortField:   sort.Field,
		SortDir:     dir,
		CurrentPage: 1,
		PageSize:    pageSize,
	}
}

// SetSearch changes the search term, kept as typed. A different term moves
// back to page 1.
func (s *State) SetSearch(term string) {
	if term == s.SearchTerm {
		return
	}
	s.SearchTerm = term
	s.CurrentPage = 1
}

// SetPageSize changes the page size and moves back to page 1. Sizes below 1
// are ignored.
func (s *State) SetPageSize(size int) {
	if size < 1 || size == s.PageSize {
		return
	}
	s.PageSize = size
	s.CurrentPage = 1
}

// ToggleSort flips the direction when field is already the sort field, and
// otherwise sorts ascending by field.
func (s *State) ToggleSort(field string) {
	if field == "" {
		return
	}
	if field == s.SortField {
		if s.SortDir == Desc {
			s.SortDir = Asc
		} else {
			s.SortDir = Desc
		}
		return
	}
	s.SortField = field
	s.SortDir = Asc
}

// SetSort sets field and direction explicitly.
func (s *State) SetSort(field string, dir Direction) {
	s.SortField = field
	if dir != Desc {
		dir = Asc
	}
	s.SortDir = dir
}

// SetPage moves to page; values below 1 mean page 1.
func (s *State) SetPage(page int) {
	s.CurrentPage = max(page, 1)
}

// TotalPages is the page count for n matching records.
func (s State) TotalPages(n int) int {
	return TotalPages(n, s.pageSize())
}

// Clamp keeps CurrentPage within [1, TotalPages(n)].
func (s *State) Clamp(n int) {
	s.CurrentPage = min(max(s.CurrentPage, 1), s.TotalPages(n))
}

func (s State) pageSize() int {
	if s.PageSize < 1 {
		return DefaultPageSize
	}
	return s.PageSize
}
