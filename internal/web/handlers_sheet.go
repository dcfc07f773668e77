package web

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/logging"
)

// saveSheetRequest is the body of POST /sheet.
type saveSheetRequest struct {
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version"`
}

// saveFieldsRequest is the body of PUT /sheet/fields.
type saveFieldsRequest struct {
	Name    string             `json:"name"`
	Fields  core.FieldSettings `json:"fields"`
	Version int64              `json:"version"`
}

// handleGetSheet returns the sheet view, or the workbook when export=true.
func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		s.respondError(w, r, missingParam("get sheet", "name"))
		return
	}

	if r.URL.Query().Get("export") == "true" {
		s.exportSheet(w, r, name)
		return
	}

	view, err := s.service.ReadSheet(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) exportSheet(w http.ResponseWriter, r *http.Request, name string) {
	wb, err := s.service.ExportSheet(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", core.WorkbookContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": wb.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wb.Data); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "sheet", name, "error", err)
	}
}

// handleSaveSheet replaces a sheet's headers and entries with a grid.
func (s *Server) handleSaveSheet(w http.ResponseWriter, r *http.Request) {
	const op = "save sheet"

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sheets.MaxBodySize)

	var req saveSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest(op, "request body must be a JSON object", err))
		return
	}
	if req.Name == "" {
		req.Name = r.URL.Query().Get("name")
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, r, missingParam(op, "name"))
		return
	}

	grid, err := core.DecodeGrid(req.Data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.service.SaveGrid(withClient(r), core.SaveGridRequest{
		Name:            req.Name,
		Grid:            grid,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleImportSheet saves the first worksheet of an uploaded xlsx as the grid.
func (s *Server) handleImportSheet(w http.ResponseWriter, r *http.Request) {
	const op = "import sheet"

	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		s.respondError(w, r, missingParam(op, "name"))
		return
	}

	version, err := parseVersion(r.URL.Query().Get("version"))
	if err != nil {
		s.respondError(w, r, badRequest(op, "version must be a non-negative integer", err))
		return
	}

	maxSize := s.cfg.Sheets.MaxImportSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, badRequest(op, "file too large or invalid form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, badRequest(op, "no file provided", err))
		return
	}
	defer file.Close()

	res, err := s.service.ImportWorkbook(withClient(r), name, file, version)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleGetFields returns a sheet's form design.
func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.FieldSettings(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// handleSaveFields replaces a sheet's form design.
func (s *Server) handleSaveFields(w http.ResponseWriter, r *http.Request) {
	const op = "save fields"

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sheets.MaxBodySize)

	var req saveFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest(op, "request body must be a JSON object", err))
		return
	}
	if req.Name == "" {
		req.Name = r.URL.Query().Get("name")
	}

	view, err := s.service.SaveFieldSettings(withClient(r), req.Name, req.Fields, req.Version)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// handleListSheets returns a summary of every sheet.
func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.service.ListSheets(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sheets)
}

// handleHealth pings the store.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Warn("health check failed", "error", err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// parseVersion parses an optional version parameter. Empty means 0.
func parseVersion(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
