package templates

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/table"
)

// maxListedErrors caps the validation errors shown in the import panel.
const maxListedErrors = 50

// PageSizes are the choices offered in the table toolbar.
var PageSizes = []int{10, 25, 50, 100}

// EntityPageData is everything an entity page shows.
type EntityPageData struct {
	Key   string
	Label string
	View  table.View

	// Import is nil for entities without bulk import.
	Import *ImportPanelData
}

// ImportPanelData fills the import panel.
type ImportPanelData struct {
	Key        string
	Preview    importer.Preview
	SampleHref string
	Accept     string // value of the file input's accept attribute
}

// EntityPage is a full entity page: table and, when supported, import.
func EntityPage(d EntityPageData) templ.Component {
	return component(func(h *htmlWriter) {
		h.rawf(`<h1>%s</h1>`, esc(d.Label))
		h.render(Table(d.Key, d.View))
		if d.Import != nil {
			h.render(ImportPanel(*d.Import))
		}
	})
}

func entityURL(key string, params ...string) string {
	u := "/entities/" + url.PathEscape(key)
	if len(params) == 0 {
		return u
	}
	q := url.Values{}
	for i := 0; i+1 < len(params); i += 2 {
		q.Set(params[i], params[i+1])
	}
	return u + "?" + q.Encode()
}

// hxGet renders htmx attributes that reload the table fragment.
func hxGet(target string) string {
	return fmt.Sprintf(`hx-get="%s" hx-target="#entity-table" hx-swap="outerHTML"`, attrURL(target))
}

// Table is the swappable table fragment.
func Table(key string, v table.View) templ.Component {
	return component(func(h *htmlWriter) {
		base := entityURL(key)
		h.rawf(`<div id="entity-table" hx-get="%s" hx-trigger="importComplete from:body" hx-target="this" hx-swap="outerHTML">`, attrURL(base))

		h.rawf(`<form class="toolbar" method="get" action="%s">`, attrURL(base))
		h.rawf(`<input type="search" name="search" placeholder="Search" value="%s" %s hx-trigger="keyup changed delay:300ms, search" hx-include="this">`,
			esc(v.State.SearchTerm), hxGet(base))
		h.rawf(` <select name="page_size" %s hx-trigger="change" hx-include="this">`, hxGet(base))
		for _, n := range PageSizes {
			sel := ""
			if n == v.PageSize {
				sel = " selected"
			}
			h.rawf(`<option value="%d"%s>%d per page</option>`, n, sel, n)
		}
		h.raw(`</select></form>`)

		h.raw(`<p>`)
		if v.Filtered == 0 {
			h.raw(`No records`)
		} else {
			h.rawf(`Showing %d-%d of %d`, v.FirstItem, v.LastItem, v.Filtered)
			if v.Filtered != v.Total {
				h.rawf(` (filtered from %d)`, v.Total)
			}
		}
		h.raw(`</p>`)

		h.raw(`<table><thead><tr>`)
		for _, hd := range v.Headers {
			h.raw(`<th`)
			var classes []string
			if hd.Sorted != "" {
				classes = append(classes, "sorted-"+string(hd.Sorted))
			}
			if hd.Align != table.AlignLeft {
				classes = append(classes, "align-"+string(hd.Align))
			}
			if len(classes) > 0 {
				h.rawf(` class="%s"`, esc(strings.Join(classes, " ")))
			}
			if hd.Width != "" {
				h.rawf(` style="width:%s"`, esc(hd.Width))
			}
			h.raw(`>`)
			if hd.Sortable {
				target := entityURL(key, "sort", hd.Key)
				h.rawf(`<a href="%s" %s>%s</a>`, attrURL(target), hxGet(target), esc(hd.Label))
			} else {
				h.text(hd.Label)
			}
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		if len(v.Rows) == 0 {
			h.rawf(`<tr><td colspan="%d" class="cell-empty">No records found</td></tr>`, max(len(v.Headers), 1))
		}
		for _, row := range v.Rows {
			if row.Class != "" {
				h.rawf(`<tr class="%s">`, esc(row.Class))
			} else {
				h.raw(`<tr>`)
			}
			for _, c := range row.Cells {
				h.render(cell(c))
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)

		if v.TotalPages > 1 {
			h.raw(`<nav class="pager">`)
			if v.HasPrev() {
				target := entityURL(key, "page", strconv.Itoa(v.Page-1))
				h.rawf(`<a href="%s" %s>Previous</a>`, attrURL(target), hxGet(target))
			}
			h.rawf(`<span>Page %d of %d</span>`, v.Page, v.TotalPages)
			if v.HasNext() {
				target := entityURL(key, "page", strconv.Itoa(v.Page+1))
				h.rawf(`<a href="%s" %s>Next</a>`, attrURL(target), hxGet(target))
			}
			h.raw(`</nav>`)
		}
		h.raw(`</div>`)
	})
}

func cell(c table.Cell) templ.Component {
	return component(func(h *htmlWriter) {
		classes := []string{}
		if c.Class != "" {
			classes = append(classes, c.Class)
		}
		if c.Align != "" && c.Align != table.AlignLeft {
			classes = append(classes, "align-"+string(c.Align))
		}
		if c.Empty {
			classes = append(classes, "cell-empty")
		}
		if len(classes) > 0 {
			h.rawf(`<td class="%s">`, esc(strings.Join(classes, " ")))
		} else {
			h.raw(`<td>`)
		}
		if c.Href != "" && !c.Empty {
			h.rawf(`<a href="%s">%s</a>`, attrURL(c.Href), esc(c.Text))
		} else {
			h.text(c.Text)
		}
		h.raw(`</td>`)
	})
}

// ImportPanel is the swappable import fragment. It polls while an upload
// runs and reloads itself once a successful session has auto-closed.
func ImportPanel(d ImportPanelData) templ.Component {
	return component(func(h *htmlWriter) {
		base := "/api/import/" + url.PathEscape(d.Key)
		hx := func(method, path string) string {
			return fmt.Sprintf(`hx-%s="%s" hx-target="#import-panel" hx-swap="outerHTML"`, method, attrURL(base+path))
		}
		p := d.Preview

		h.raw(`<section id="import-panel" class="panel"`)
		switch p.State {
		case importer.StateUploading:
			h.rawf(` %s hx-trigger="every 1s"`, hx("get", ""))
		case importer.StateSuccess:
			h.rawf(` %s hx-trigger="load delay:3s"`, hx("get", ""))
		}
		h.raw(`><h2>Bulk import</h2>`)

		if d.SampleHref != "" {
			h.rawf(`<p><a href="%s">Download sample file</a></p>`, attrURL(d.SampleHref))
		}

		if p.State != importer.StateUploading {
			h.rawf(`<form %s hx-encoding="multipart/form-data">`, hx("post", "/file"))
			h.rawf(`<input type="file" name="file" accept="%s" required> <button type="submit">Preview</button></form>`, esc(d.Accept))
		}

		if p.Message != "" {
			h.rawf(`<div class="alert %s" role="status">%s</div>`, alertClass(p.State), esc(p.Message))
		}

		if len(p.Errors) > 0 {
			h.raw(`<ul class="errors">`)
			for i, e := range p.Errors {
				if i == maxListedErrors {
					h.rawf(`<li>and %d more</li>`, len(p.Errors)-maxListedErrors)
					break
				}
				h.rawf(`<li>Row %d`, e.Row)
				if e.Field != "" {
					h.rawf(` (%s)`, esc(e.Field))
				}
				h.rawf(`: %s</li>`, esc(e.Message))
			}
			h.raw(`</ul>`)
		}

		if len(p.Rows) > 0 {
			h.rawf(`<p>%s: showing %d of %d row(s)</p>`, esc(p.FileName), len(p.Rows), p.TotalRows)
			h.raw(`<table><thead><tr>`)
			for _, hd := range p.Headers {
				h.rawf(`<th>%s</th>`, esc(hd))
			}
			h.raw(`</tr></thead><tbody>`)
			for _, r := range p.Rows {
				h.raw(`<tr>`)
				for _, hd := range p.Headers {
					h.rawf(`<td>%s</td>`, esc(r.Value(hd)))
				}
				h.raw(`</tr>`)
			}
			h.raw(`</tbody></table>`)
		}

		if p.CanUpload {
			h.rawf(`<p><button %s>Upload %d row(s)</button>`, hx("post", "/upload"), p.TotalRows)
		} else {
			h.raw(`<p>`)
		}
		if p.State != importer.StateIdle && p.State != importer.StateUploading {
			h.rawf(` <button %s>Close</button>`, hx("post", "/reset"))
		}
		h.raw(`</p></section>`)
	})
}

func alertClass(s importer.State) string {
	switch s {
	case importer.StateSuccess:
		return "alert-success"
	case importer.StateIdle, importer.StateParsedInvalid, importer.StateError:
		return "alert-error"
	}
	return "alert-info"
}
