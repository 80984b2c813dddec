package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func TestTable_EscapesAndLinks(t *testing.T) {
	v := table.View{
		Headers: []table.Header{
			{Key: "name", Label: "Name", Sortable: true, Align: table.AlignLeft, Sorted: table.Asc},
			{Key: "email", Label: "Email", Align: table.AlignLeft},
		},
		Rows: []table.ViewRow{{
			Class: "status-active",
			Cells: []table.Cell{
				{Text: `<script>alert(1)</script>`, Align: table.AlignLeft},
				{Text: "a@b.co", Href: "javascript:alert(1)", Align: table.AlignLeft},
			},
		}},
		Total: 1, Filtered: 1, Page: 1, PageSize: 10, TotalPages: 1, FirstItem: 1, LastItem: 1,
	}

	got := render(t, Table("members", v))

	if strings.Contains(got, "<script>") {
		t.Error("cell text not escaped")
	}
	if strings.Contains(got, "javascript:") {
		t.Error("unsafe link href rendered")
	}
	for _, want := range []string{
		`class="sorted-asc"`,
		`href="/entities/members?sort=name"`,
		`<tr class="status-active">`,
		"Showing 1-1 of 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, `class="pager"`) {
		t.Error("single page should have no pager")
	}
}

func TestTable_Empty(t *testing.T) {
	v := table.View{Headers: []table.Header{{Key: "name", Label: "Name"}}, Page: 1, TotalPages: 1}
	got := render(t, Table("claims", v))
	if !strings.Contains(got, "No records found") {
		t.Errorf("empty table missing placeholder:\n%s", got)
	}
}

func TestImportPanel_States(t *testing.T) {
	tests := []struct {
		name    string
		preview importer.Preview
		want    []string
		notWant []string
	}{
		{
			name:    "idle",
			preview: importer.Preview{State: importer.StateIdle},
			want:    []string{`hx-post="/api/import/members/file"`, "Download sample file"},
			notWant: []string{"/upload", "/reset"},
		},
		{
			name: "valid",
			preview: importer.Preview{
				State: importer.StateParsedValid, FileName: "m.csv", TotalRows: 1, CanUpload: true,
				Headers: []string{"name"}, Rows: []importer.Row{importer.NewRow("name", "Amina")},
				Message: "1 row(s) ready to upload",
			},
			want: []string{"Upload 1 row(s)", "<td>Amina</td>", "alert-info", "/reset"},
		},
		{
			name: "invalid",
			preview: importer.Preview{
				State:  importer.StateParsedInvalid,
				Errors: []importer.ValidationError{{Row: 3, Field: "email", Message: "is not a valid email"}},
			},
			want:    []string{"Row 3 (email): is not a valid email"},
			notWant: []string{"/upload"},
		},
		{
			name:    "uploading polls",
			preview: importer.Preview{State: importer.StateUploading},
			want:    []string{`hx-trigger="every 1s"`},
			notWant: []string{`name="file"`, "/reset"},
		},
		{
			name:    "success reloads",
			preview: importer.Preview{State: importer.StateSuccess, Message: "Uploaded 2 row(s)"},
			want:    []string{`hx-trigger="load delay:3s"`, "alert-success"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, ImportPanel(ImportPanelData{
				Key:        "members",
				Preview:    tt.preview,
				SampleHref: "/api/import/members/sample",
				Accept:     ".csv",
			}))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q\n%s", w, got)
				}
			}
		})
	}
}

func TestLayout(t *testing.T) {
	got := render(t, Layout("Members & Co", "agent", ErrorAlert("Oops", "Try again", "ERR000")))
	for _, want := range []string{
		"<title>Members &amp; Co · CoverDesk</title>",
		`action="/logout"`,
		`<div class="alert alert-error" role="alert">Oops`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q\n%s", want, got)
		}
	}

	if got := render(t, Layout("Sign in", "", Login(LoginData{Error: "bad"}))); strings.Contains(got, "/logout") {
		t.Error("signed-out layout shows sign out")
	}
}
