package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	theme := DefaultTheme()
	rec := NewRecord(`{
		"id": 42,
		"name": "Alice",
		"premium": 1234567.5,
		"premium_text": "2,500",
		"status": "Active",
		"joined": "2024-03-05T10:00:00Z",
		"is_principal": true,
		"flag": "no",
		"blank": "",
		"company": null
	}`)

	tests := []struct {
		name string
		col  Column
		want Cell
	}{
		{
			name: "text",
			col:  Column{Key: "name"},
			want: Cell{Text: "Alice", Class: "cell", Align: AlignLeft},
		},
		{
			name: "missing",
			col:  Column{Key: "company.name"},
			want: Cell{Text: "-", Class: "cell", Align: AlignLeft, Empty: true},
		},
		{
			name: "blank string",
			col:  Column{Key: "blank"},
			want: Cell{Text: "-", Class: "cell", Align: AlignLeft, Empty: true},
		},
		{
			name: "currency number",
			col:  Column{Key: "premium", Renderer: RenderCurrency},
			want: Cell{Text: "KES 1,234,567.50", Class: "cell", Align: AlignRight},
		},
		{
			name: "currency string",
			col:  Column{Key: "premium_text", Renderer: RenderCurrency},
			want: Cell{Text: "KES 2,500.00", Class: "cell", Align: AlignRight},
		},
		{
			name: "status",
			col:  Column{Key: "status", Renderer: RenderStatus},
			want: Cell{Text: "Active", Class: "cell status-active", Align: AlignLeft},
		},
		{
			name: "link",
			col:  Column{Key: "name", Renderer: RenderLink, LinkPattern: "/entities/members/{id}"},
			want: Cell{Text: "Alice", Class: "cell cell-link", Href: "/entities/members/42", Align: AlignLeft},
		},
		{
			name: "date",
			col:  Column{Key: "joined", Renderer: RenderDate},
			want: Cell{Text: "05 Mar 2024", Class: "cell", Align: AlignLeft},
		},
		{
			name: "boolean",
			col:  Column{Key: "is_principal", Renderer: RenderBoolean},
			want: Cell{Text: "Yes", Class: "cell", Align: AlignCenter},
		},
		{
			name: "boolean from string",
			col:  Column{Key: "flag", Renderer: RenderBoolean, Align: AlignLeft},
			want: Cell{Text: "No", Class: "cell", Align: AlignLeft},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Render(rec, tt.col, theme)); diff != "" {
				t.Errorf("Render mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"0":          "0",
		"999.99":     "999.99",
		"1000":       "1,000",
		"123456":     "123,456",
		"1234567.00": "1,234,567.00",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRenderer(t *testing.T) {
	for r := RenderText; r <= RenderBoolean; r++ {
		if got := ParseRenderer(strings.ToUpper(r.String())); got != r {
			t.Errorf("ParseRenderer(%q) = %v, want %v", r.String(), got, r)
		}
	}
	if got := ParseRenderer("sparkline"); got != RenderText {
		t.Errorf("unknown renderer = %v, want text", got)
	}
}

func TestState_Transitions(t *testing.T) {
	s := NewState(10, SortKey{})
	s.SetPage(3)

	s.SetSearch("alice")
	if s.CurrentPage != 1 {
		t.Errorf("after SetSearch page = %d, want 1", s.CurrentPage)
	}

	s.SetPage(3)
	s.SetSearch("alice")
	if s.CurrentPage != 3 {
		t.Errorf("same search term reset page to %d", s.CurrentPage)
	}

	s.SetSearch(" alice")
	if s.CurrentPage != 1 || s.SearchTerm != " alice" {
		t.Errorf("after padded search page=%d term=%q, want 1/%q", s.CurrentPage, s.SearchTerm, " alice")
	}

	s.SetPageSize(25)
	if s.CurrentPage != 1 || s.PageSize != 25 {
		t.Errorf("after SetPageSize page=%d size=%d, want 1/25", s.CurrentPage, s.PageSize)
	}

	s.SetPage(2)
	s.SetPageSize(0)
	if s.PageSize != 25 || s.CurrentPage != 2 {
		t.Errorf("invalid page size changed state: %+v", s)
	}

	s.ToggleSort("name")
	if s.SortField != "name" || s.SortDir != Asc {
		t.Errorf("first toggle = %s %s, want name asc", s.SortField, s.SortDir)
	}
	s.ToggleSort("name")
	if s.SortDir != Desc {
		t.Errorf("second toggle dir = %s, want desc", s.SortDir)
	}
	s.ToggleSort("email")
	if s.SortField != "email" || s.SortDir != Asc {
		t.Errorf("new field = %s %s, want email asc", s.SortField, s.SortDir)
	}
	if s.CurrentPage != 2 {
		t.Errorf("sorting changed page to %d", s.CurrentPage)
	}
}

func TestState_Clamp(t *testing.T) {
	tests := []struct {
		page, n, want int
	}{
		{5, 12, 2},
		{0, 12, 1},
		{1, 0, 1},
		{2, 20, 2},
	}
	for _, tt := range tests {
		s := State{CurrentPage: tt.page, PageSize: 10}
		s.Clamp(tt.n)
		if s.CurrentPage != tt.want {
			t.Errorf("Clamp(page=%d, n=%d) = %d, want %d", tt.page, tt.n, s.CurrentPage, tt.want)
		}
	}
}

func memberRecords(n int) []Record {
	var b strings.Builder
	b.WriteString("[")
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		status := "active"
		if i%3 == 0 {
			status = "suspended"
		}
		fmt.Fprintf(&b, `{"id":%d,"name":"Member %02d","status":"%s"}`, i, i, status)
	}
	b.WriteString("]")
	recs, _ := RecordsFromJSON([]byte(b.String()), "")
	return recs
}

func TestBuild(t *testing.T) {
	cfg := Config{
		Columns: []Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "status", Label: "Status", Renderer: RenderStatus},
		},
		StatusField: "status",
		Theme:       DefaultTheme(),
	}

	st := NewState(5, SortKey{Field: "name", Dir: Desc})
	v := Build(memberRecords(12), cfg, &st)

	if v.Total != 12 || v.Filtered != 12 {
		t.Errorf("counts = %d/%d, want 12/12", v.Total, v.Filtered)
	}
	if v.TotalPages != 3 || v.Page != 1 {
		t.Errorf("pages = %d of %d, want 1 of 3", v.Page, v.TotalPages)
	}
	if len(v.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(v.Rows))
	}
	if got := v.Rows[0].Cells[0].Text; got != "Member 12" {
		t.Errorf("first row = %q, want Member 12", got)
	}
	if v.Rows[0].Class != "status-inactive" {
		t.Errorf("row class = %q, want status-inactive", v.Rows[0].Class)
	}
	if v.Headers[0].Sorted != Desc || v.Headers[1].Sorted != "" {
		t.Errorf("header sort markers = %q/%q", v.Headers[0].Sorted, v.Headers[1].Sorted)
	}
	if v.FirstItem != 1 || v.LastItem != 5 || v.HasPrev() || !v.HasNext() {
		t.Errorf("range = %d-%d prev=%v next=%v", v.FirstItem, v.LastItem, v.HasPrev(), v.HasNext())
	}
}

func TestBuild_ClampsAfterFilter(t *testing.T) {
	cfg := Config{Columns: []Column{{Key: "name"}}, Theme: DefaultTheme()}
	st := NewState(5, SortKey{})
	st.SetPage(3)

	// Page 3 exists for all 12 records but not for the 3 that match.
	st.SearchTerm = "member 1"
	v := Build(memberRecords(12), cfg, &st)

	if v.Filtered != 3 {
		t.Fatalf("filtered = %d, want 3", v.Filtered)
	}
	if v.Page != 1 || st.CurrentPage != 1 {
		t.Errorf("page = %d (state %d), want 1", v.Page, st.CurrentPage)
	}
	if v.FirstItem != 1 || v.LastItem != 3 {
		t.Errorf("range = %d-%d, want 1-3", v.FirstItem, v.LastItem)
	}
}

func TestBuild_Empty(t *testing.T) {
	st := NewState(10, SortKey{})
	v := Build(nil, Config{Columns: []Column{{Key: "name"}}}, &st)

	if len(v.Rows) != 0 || v.TotalPages != 1 || v.FirstItem != 0 || v.LastItem != 0 {
		t.Errorf("empty view = %+v", v)
	}
}
