package importer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// rowMaps flattens rows for comparison.
func rowMaps(rows []Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []map[string]string
	}{
		{
			name: "simple",
			text: "name,email\nAlice,a@x.io\nBob,b@x.io",
			want: []map[string]string{
				{"name": "Alice", "email": "a@x.io"},
				{"name": "Bob", "email": "b@x.io"},
			},
		},
		{
			name: "quoted comma",
			text: "name,email\n\"Smith, J\",j@x.io",
			want: []map[string]string{
				{"name": "Smith, J", "email": "j@x.io"},
			},
		},
		{
			name: "escaped quote",
			text: "name,note\nAl,\"He said \"\"hi\"\"\"",
			want: []map[string]string{
				{"name": "Al", "note": `He said "hi"`},
			},
		},
		{
			name: "crlf and blank lines",
			text: "a,b\r\n\r\n1,2\r\n   \r\n3,4\r\n",
			want: []map[string]string{
				{"a": "1", "b": "2"},
				{"a": "3", "b": "4"},
			},
		},
		{
			name: "short row padded",
			text: "a,b,c\n1",
			want: []map[string]string{
				{"a": "1", "b": "", "c": ""},
			},
		},
		{
			name: "long row truncated",
			text: "a,b\n1,2,3,4",
			want: []map[string]string{
				{"a": "1", "b": "2"},
			},
		},
		{
			name: "fields trimmed",
			text: " a , b \n  1 ,  2  ",
			want: []map[string]string{
				{"a": "1", "b": "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowMaps(Parse(tt.text))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_NoData(t *testing.T) {
	for _, text := range []string{"", "\n\n", "   \r\n", "name,email", "name,email\n\n  \n"} {
		if rows := Parse(text); len(rows) != 0 {
			t.Errorf("Parse(%q) returned %d rows, want 0", text, len(rows))
		}
	}
}

func TestParse_RowCount(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,name\n")
	for i := 0; i < 25; i++ {
		b.WriteString("1,x\n")
		if i%5 == 0 {
			b.WriteString("\n  \n")
		}
	}

	if got := len(Parse(b.String())); got != 25 {
		t.Errorf("row count = %d, want 25", got)
	}
}

func TestParse_EveryRowHasEveryHeader(t *testing.T) {
	rows := Parse("a,b,c\n1\n1,2\n1,2,3\n1,2,3,4")
	for i, r := range rows {
		if diff := cmp.Diff([]string{"a", "b", "c"}, r.Keys()); diff != "" {
			t.Errorf("row %d keys mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestParseTable_HeadersOnly(t *testing.T) {
	headers, rows := ParseTable("Full Name,Email\n", FieldMapping{"Full Name": "name"})

	if diff := cmp.Diff([]string{"name", "Email"}, headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestParseWithMapping_Collision(t *testing.T) {
	mapping := FieldMapping{"Name": "name", "Full Name": "name"}
	rows := ParseWithMapping("Name,Full Name,Email\nAl,Alice Smith,a@x.io", mapping)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	if got := rows[0].Value("name"); got != "Alice Smith" {
		t.Errorf("name = %q, want later column to win", got)
	}
	if diff := cmp.Diff([]string{"name", "Email"}, rows[0].Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"", []string{""}},
		{",", []string{"", ""}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`"",x`, []string{"", "x"}},
		{`"say ""yes""",no`, []string{`say "yes"`, "no"}},
		{`"unterminated, field`, []string{"unterminated, field"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitFields(tt.line)); diff != "" {
				t.Errorf("SplitFields(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestRow_MarshalJSONKeepsOrder(t *testing.T) {
	r := NewRow("zeta", "1", "alpha", "2", "mid", `q"uote`)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"zeta":"1","alpha":"2","mid":"q\"uote"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestRow_SetOverwriteKeepsPosition(t *testing.T) {
	var r Row
	r.Set("a", "1")
	r.Set("b", "2")
	r.Set("a", "3")

	if diff := cmp.Diff([]string{"a", "b"}, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := r.Value("a"); got != "3" {
		t.Errorf("a = %q, want 3", got)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) reported present")
	}
}
