package web

import (
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/sheetforms/internal/core"
)

// createEntryRequest is the body of POST /form-entry.
type createEntryRequest struct {
	SheetName string          `json:"sheetName"`
	Data      json.RawMessage `json:"data"`
}

// handleListEntries returns the newest entries of a sheet.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.RecentEntries(r.Context(), r.URL.Query().Get("sheetName"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// handleCreateEntry stores one submitted form row.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	const op = "create entry"

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Sheets.MaxBodySize)

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, badRequest(op, "request body must be a JSON object", err))
		return
	}
	if req.SheetName == "" {
		s.respondError(w, r, missingParam(op, "sheetName"))
		return
	}

	data, err := core.DecodeEntryData(req.Data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entry, err := s.service.CreateEntry(withClient(r), req.SheetName, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, entry)
}
