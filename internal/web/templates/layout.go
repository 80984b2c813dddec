package templates

import "github.com/a-h/templ"

// HTMXScript is loaded by every page. The CSP allows its origin.
const HTMXScript = "https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js"

const styles = `
body{font-family:system-ui,sans-serif;margin:0;color:#1f2937;background:#f9fafb}
header{display:flex;justify-content:space-between;align-items:center;padding:.75rem 1.5rem;background:#1e3a8a;color:#fff}
header a{color:#fff}
main{padding:1.5rem}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{padding:.5rem .75rem;border-bottom:1px solid #e5e7eb;text-align:left}
th.sorted-asc::after{content:" \25B2"}th.sorted-desc::after{content:" \25BC"}
.align-right{text-align:right}.align-center{text-align:center}
.cell-empty{color:#9ca3af}
td.status-active{color:#166534}td.status-pending{color:#854d0e}
td.status-inactive{color:#6b7280}td.status-rejected{color:#991b1b}
tr.status-inactive{opacity:.7}
.alert{padding:.75rem 1rem;border-radius:.375rem;margin:.5rem 0}
.alert-error{background:#fee2e2;color:#991b1b}.alert-info{background:#dbeafe;color:#1e40af}
.alert-success{background:#dcfce7;color:#166534}
.panel{background:#fff;border:1px solid #e5e7eb;border-radius:.5rem;padding:1rem;margin-top:1.5rem}
.pager{display:flex;gap:.5rem;align-items:center;margin-top:.75rem}
`

// Layout wraps body in the page chrome. user is shown when signed in.
func Layout(title, user string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.rawf(`<title>%s · CoverDesk</title>`, esc(title))
		h.rawf(`<script src="%s"></script>`, attrURL(HTMXScript))
		h.rawf(`<style>%s</style></head><body>`, styles)

		h.raw(`<header><a href="/"><strong>CoverDesk</strong></a>`)
		if user != "" {
			h.rawf(`<form method="post" action="/logout"><span>%s</span> <button type="submit">Sign out</button></form>`, esc(user))
		}
		h.raw(`</header><main>`)
		h.render(body)
		h.raw(`</main></body></html>`)
	})
}

// ErrorAlert is the fragment htmx swaps in when a request fails.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="alert alert-error" role="alert">`)
		h.text(message)
		if action != "" {
			h.rawf(` <span>%s</span>`, esc(action))
		}
		if code != "" {
			h.rawf(` <small>(%s)</small>`, esc(code))
		}
		h.raw(`</div>`)
	})
}
