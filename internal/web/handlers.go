package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/web/templates"
)

// handleHealth reports liveness with a little load information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
		"uploads":  s.service.UploadLimiterStatus(),
	})
}

// handleDashboard lists the entity pages by group.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var groups []templates.NavGroup
	for _, g := range core.Groups() {
		group := templates.NavGroup{Name: g}
		for _, e := range core.ByGroup(g) {
			group.Entities = append(group.Entities, templates.NavEntity{
				Key:        e.Key,
				Label:      e.Label,
				Importable: e.Importable(),
			})
		}
		groups = append(groups, group)
	}
	s.render(w, r, http.StatusOK, "Dashboard", templates.Dashboard(groups))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "Sign in", templates.Login(templates.LoginData{
		Next: safeNext(r.URL.Query().Get("next")),
	}))
}

// handleLogin signs the session in against the backend.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	form := templates.LoginData{Username: username, Next: next}
	if username == "" || password == "" {
		form.Error = "Enter your username and password."
		s.render(w, r, http.StatusBadRequest, "Sign in", templates.Login(form))
		return
	}

	log := logging.WithFields(r.Context(), "username", username)
	if _, err := sess.Client().Login(r.Context(), apiclient.Credentials{Username: username, Password: password}); err != nil {
		status := apiclient.StatusCode(err)
		if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden {
			log.Info("login rejected", "status", status)
			form.Error = "Invalid username or password."
			s.render(w, r, http.StatusUnauthorized, "Sign in", templates.Login(form))
			return
		}
		log.Error("login failed", "error", err)
		form.Error = core.MapError(err).Message
		s.render(w, r, http.StatusBadGateway, "Sign in", templates.Login(form))
		return
	}

	sess.setUser(username)
	log.Info("signed in")
	s.navigate(w, r, next)
}

// handleLogout ends the backend session and forgets the dashboard one.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.Client().Logout(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("backend logout failed", "error", err)
	}
	s.store.Delete(sess.ID)
	s.setSessionCookie(w, "", -1)
	logging.FromContext(r.Context()).Info("signed out")
	s.navigate(w, r, apiclient.DefaultLoginRoute)
}

// navigate redirects after a form post.
func (s *Server) navigate(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") ||
		strings.Contains(next, `\`) || strings.HasPrefix(next, apiclient.DefaultLoginRoute) {
		return "/"
	}
	return next
}
