package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// RequireLogin sends requests without a signed-in session to loginPath.
// signedIn decides per request; it normally reads the dashboard session
// from the request context.
//
// Browsers get a 303 with the original path in ?next=, htmx requests get
// HX-Redirect, and API clients get a bare 401.
func RequireLogin(loginPath string, signedIn func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if signedIn(r) {
				next.ServeHTTP(w, r)
				return
			}

			slog.Debug("auth: no signed-in session",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)

			switch {
			case r.Header.Get("HX-Request") == "true":
				w.Header().Set("HX-Redirect", loginPath)
				w.WriteHeader(http.StatusUnauthorized)
			case strings.HasPrefix(r.URL.Path, "/api/"):
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"not signed in","code":"API001"}` + "\n"))
			default:
				target := loginPath
				if r.Method == http.MethodGet && r.URL.RequestURI() != "/" {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
			}
		})
	}
}
