package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/table"
	"github.com/JonMunkholm/coverdesk/internal/web/templates"
)

// entitySummary is one entry of GET /api/entities.
type entitySummary struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Group      string `json:"group"`
	Importable bool   `json:"importable"`
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	all := core.All()
	out := make([]entitySummary, len(all))
	for i, e := range all {
		out[i] = entitySummary{Key: e.Key, Label: e.Label, Group: e.Group, Importable: e.Importable()}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEntityView returns the table view as JSON.
func (s *Server) handleEntityView(w http.ResponseWriter, r *http.Request) {
	ent, err := core.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	view, err := s.tableView(r, ent)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleEntityPage renders the table page, or just the table for htmx.
func (s *Server) handleEntityPage(w http.ResponseWriter, r *http.Request) {
	ent, err := core.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	view, err := s.tableView(r, ent)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	if isHTMX(r) {
		s.render(w, r, http.StatusOK, ent.Label, templates.Table(ent.Key, view))
		return
	}

	data := templates.EntityPageData{Key: ent.Key, Label: ent.Label, View: view}
	if ent.Importable() {
		orch, err := s.importFor(r, ent.Key)
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}
		panel := s.importPanel(ent.Key, orch.Snapshot())
		data.Import = &panel
	}
	s.render(w, r, http.StatusOK, ent.Label, templates.EntityPage(data))
}

// tableView applies the request's query to the session's table state,
// loads the records and builds the view. The state is saved only when the
// records loaded.
func (s *Server) tableView(r *http.Request, ent core.Entity) (table.View, error) {
	sess := sessionFrom(r.Context())
	st := sess.TableState(ent.Key, func() table.State {
		return ent.NewTableState(s.service.PageSize())
	})
	applyQuery(&st, r.URL.Query(), ent, s.service.ClampPageSize)

	view, err := s.service.TableView(r.Context(), sess.Client(), ent.Key, &st)
	if err != nil {
		return table.View{}, err
	}
	sess.SaveTableState(ent.Key, st)
	return view, nil
}

// applyQuery turns query parameters into state transitions:
//
//	search=term       SetSearch
//	page_size=n       SetPageSize (clamped)
//	sort=field        ToggleSort, or SetSort when dir=asc|desc is given
//	page=n            SetPage
//
// Sorting by a column that is not sortable is ignored.
func applyQuery(st *table.State, q url.Values, ent core.Entity, clamp func(int) int) {
	if q.Has("search") {
		st.SetSearch(q.Get("search"))
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil {
		st.SetPageSize(clamp(n))
	}
	if field := q.Get("sort"); field != "" && sortable(ent, field) {
		if dir := strings.TrimSpace(q.Get("dir")); dir != "" {
			st.SetSort(field, table.ParseDirection(dir))
		} else {
			st.ToggleSort(field)
		}
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		st.SetPage(n)
	}
}

func sortable(ent core.Entity, field string) bool {
	for _, c := range ent.Columns {
		if c.Key == field {
			return c.Sortable
		}
	}
	return false
}
