package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/web/templates"
)

const (
	// formOverhead is allowed on top of the file size for multipart framing.
	formOverhead = 1 << 20

	// maxFormMemory is what ParseMultipartForm keeps in memory.
	maxFormMemory = 8 << 20

	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

var errNoFile = errors.New("no file provided")

// importFor returns the session's orchestrator for key.
func (s *Server) importFor(r *http.Request, key string) (*importer.Orchestrator, error) {
	sess := sessionFrom(r.Context())
	return sess.Import(key, func() (*importer.Orchestrator, error) {
		log := logging.WithFields(r.Context(), "entity", key)
		return s.service.NewImport(sess.Client(), key, func() {
			log.Debug("import session closed")
		})
	})
}

func (s *Server) importPanel(key string, p importer.Preview) templates.ImportPanelData {
	return templates.ImportPanelData{
		Key:        key,
		Preview:    p,
		SampleHref: "/api/import/" + url.PathEscape(key) + "/sample",
		Accept:     strings.Join(s.service.Extensions(), ","),
	}
}

// respondImport writes the session as the import panel for htmx or as
// JSON otherwise.
func (s *Server) respondImport(w http.ResponseWriter, r *http.Request, key string, status int, p importer.Preview) {
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, "Import", templates.ImportPanel(s.importPanel(key, p)))
		return
	}
	writeJSON(w, status, p)
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	orch, err := s.importFor(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.respondImport(w, r, key, http.StatusOK, orch.Snapshot())
}

// handleImportFile accepts a multipart "file" and parses it into a preview.
func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	orch, err := s.importFor(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if limit := orch.MaxBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			err = fmt.Errorf("%w: request exceeds %d bytes", importer.ErrFileTooLarge, tooBig.Limit)
		}
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	err = orch.SelectFile(r.Context(), header.Filename, header.Size, file)
	switch {
	case err == nil:
		s.respondImport(w, r, key, http.StatusOK, orch.Snapshot())
	case (errors.Is(err, importer.ErrUnsupportedFile) || errors.Is(err, importer.ErrFileTooLarge)) && isHTMX(r):
		// The panel shows the rejection message.
		s.respondImport(w, r, key, http.StatusBadRequest, orch.Snapshot())
	default:
		s.respondError(w, r, err, 0)
	}
}

// handleImportUpload confirms the parsed rows.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	orch, err := s.importFor(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	outcome, err := orch.Upload(r.Context())
	if err != nil {
		if isHTMX(r) && orch.State() == importer.StateError && !redirectPending(r.Context()) {
			s.respondImport(w, r, key, http.StatusBadGateway, orch.Snapshot())
			return
		}
		s.respondError(w, r, err, 0)
		return
	}

	if redirectPending(r.Context()) {
		s.respondError(w, r, core.ErrSessionExpired, http.StatusUnauthorized)
		return
	}

	status := http.StatusOK
	if outcome.Success {
		w.Header().Set("HX-Trigger", "importComplete")
	} else {
		status = http.StatusUnprocessableEntity
	}
	s.respondImport(w, r, key, status, orch.Snapshot())
}

// handleImportReset closes the import modal.
func (s *Server) handleImportReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	orch, err := s.importFor(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	orch.Close()
	s.respondImport(w, r, key, http.StatusOK, orch.Snapshot())
}

// handleImportSample downloads the sample file, or redirects to the
// backend's own template when the entity has one.
func (s *Server) handleImportSample(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, sampleURL, err := s.service.Sample(key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if sampleURL != "" {
		http.Redirect(w, r, s.backendURL(sampleURL), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_sample.csv"`, key))
	_, _ = w.Write(data)
}

// backendURL resolves a server-relative path against the backend origin.
func (s *Server) backendURL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return strings.TrimRight(s.cfg.API.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// handleImportHistory lists recent import sessions for the entity.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	limit := defaultHistoryLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.service.RecentImports(r.Context(), key, limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
