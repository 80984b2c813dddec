package templates

import (
	"github.com/a-h/templ"
)

// NavEntity is one entity link on the dashboard.
type NavEntity struct {
	Key        string
	Label      string
	Importable bool
}

// NavGroup is a dashboard section.
type NavGroup struct {
	Name     string
	Entities []NavEntity
}

// Dashboard lists the entity pages by group.
func Dashboard(groups []NavGroup) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<h1>Dashboard</h1>`)
		if len(groups) == 0 {
			h.raw(`<p class="alert alert-info">No entities are configured.</p>`)
			return
		}
		for _, g := range groups {
			h.rawf(`<section class="panel"><h2>%s</h2><ul>`, esc(g.Name))
			for _, e := range g.Entities {
				h.rawf(`<li><a href="%s">%s</a>`, attrURL("/entities/"+e.Key), esc(e.Label))
				if e.Importable {
					h.raw(` <small>(bulk import)</small>`)
				}
				h.raw(`</li>`)
			}
			h.raw(`</ul></section>`)
		}
	})
}

// LoginData fills the login form.
type LoginData struct {
	Username string
	Next     string
	Error    string
}

// Login is the sign-in form. The password is never echoed back.
func Login(d LoginData) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="panel" style="max-width:24rem;margin:3rem auto"><h1>Sign in</h1>`)
		if d.Error != "" {
			h.rawf(`<div class="alert alert-error" role="alert">%s</div>`, esc(d.Error))
		}
		h.raw(`<form method="post" action="/login">`)
		if d.Next != "" {
			h.rawf(`<input type="hidden" name="next" value="%s">`, esc(d.Next))
		}
		h.rawf(`<p><label>Username<br><input name="username" autocomplete="username" required value="%s"></label></p>`, esc(d.Username))
		h.raw(`<p><label>Password<br><input name="password" type="password" autocomplete="current-password" required></label></p>`)
		h.raw(`<button type="submit">Sign in</button></form></section>`)
	})
}
