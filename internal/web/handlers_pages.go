package web

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/logging"
	"github.com/JonMunkholm/sheetforms/internal/web/templates"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error", "path", r.URL.Path, "error", err)
	}
}

// handleIndex lists the saved sheets.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.service.ListSheets(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, templates.Index(sheets))
}

// loadFormParams gathers the form design and recent entries of a sheet.
// ok is false when a response has already been written.
func (s *Server) loadFormParams(w http.ResponseWriter, r *http.Request, name string) (params templates.FormParams, ok bool) {
	view, err := s.service.FieldSettings(r.Context(), name)
	if core.KindOf(err) == core.KindNotFound {
		render(w, r, http.StatusNotFound, templates.NoHeaders(name))
		return params, false
	}
	if err != nil {
		s.respondError(w, r, err)
		return params, false
	}

	entries, err := s.service.RecentEntries(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return params, false
	}

	return templates.FormParams{
		Name:    view.Name,
		Headers: view.Headers,
		Fields:  view.Fields,
		Values:  map[string]string{},
		Entries: entries,
	}, true
}

// handleFormPage renders the entry form of a sheet.
func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	params, ok := s.loadFormParams(w, r, chi.URLParam(r, "sheetName"))
	if !ok {
		return
	}
	params.Saved = r.URL.Query().Get("saved") == "1"
	render(w, r, http.StatusOK, templates.FormPage(params))
}

// handleFormSubmit stores a form entry, then redirects back to the form.
// A rejected entry re-renders the form with the submitted values.
func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "sheetName")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sheets.MaxBodySize)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, badRequest("submit form", "invalid form data", err))
		return
	}

	params, ok := s.loadFormParams(w, r, name)
	if !ok {
		return
	}

	data := make(map[string]string, len(params.Headers))
	for i, h := range params.Headers {
		data[h] = r.PostForm.Get("f_" + strconv.Itoa(i))
	}

	if _, err := s.service.CreateEntry(withClient(r), name, data); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Warn("form entry rejected", "sheet", name, "error", err)
		msg := core.MapError(err)
		params.Values = data
		params.Error = &msg
		render(w, r, status, templates.FormPage(params))
		return
	}

	http.Redirect(w, r, string(templates.SheetURL("/form/", name))+"?saved=1", http.StatusSeeOther)
}

// loadDesignParams gathers the form design of a sheet.
func (s *Server) loadDesignParams(w http.ResponseWriter, r *http.Request, name string) (params templates.DesignParams, ok bool) {
	view, err := s.service.FieldSettings(r.Context(), name)
	if core.KindOf(err) == core.KindNotFound {
		render(w, r, http.StatusNotFound, templates.NoHeaders(name))
		return params, false
	}
	if err != nil {
		s.respondError(w, r, err)
		return params, false
	}
	return templates.DesignParams{
		Name:    view.Name,
		Version: view.Version,
		Headers: view.Headers,
		Fields:  view.Fields,
	}, true
}

// handleDesignPage renders the field design editor of a sheet.
func (s *Server) handleDesignPage(w http.ResponseWriter, r *http.Request) {
	params, ok := s.loadDesignParams(w, r, chi.URLParam(r, "sheetName"))
	if !ok {
		return
	}
	params.Saved = r.URL.Query().Get("saved") == "1"
	render(w, r, http.StatusOK, templates.DesignPage(params))
}

// handleDesignSubmit saves the field design posted by the editor.
func (s *Server) handleDesignSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "save form design"
	name := chi.URLParam(r, "sheetName")

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sheets.MaxBodySize)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, badRequest(op, "invalid form data", err))
		return
	}

	params, ok := s.loadDesignParams(w, r, name)
	if !ok {
		return
	}

	version, err := parseVersion(r.PostForm.Get("version"))
	if err != nil {
		s.respondError(w, r, badRequest(op, "version must be a non-negative integer", err))
		return
	}

	fields := make(core.FieldSettings, len(params.Headers))
	for i, h := range params.Headers {
		idx := strconv.Itoa(i)
		fields[h] = core.FieldSetting{
			Type:     core.FieldType(r.PostForm.Get("type_" + idx)),
			Options:  core.SplitOptions(r.PostForm.Get("options_" + idx)),
			Required: r.PostForm.Get("required_"+idx) == "true",
		}
	}

	if _, err := s.service.SaveFieldSettings(withClient(r), name, fields, version); err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Warn("form design rejected", "sheet", name, "error", err)
		msg := core.MapError(err)
		params.Fields = fields
		params.Error = &msg
		render(w, r, status, templates.DesignPage(params))
		return
	}

	http.Redirect(w, r, string(templates.SheetURL("/formdesign/", name))+"?saved=1", http.StatusSeeOther)
}
