package handlers

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/XBigRoad/banquet-master/auth"
	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/export"
)

// DataHandler serves backups, CSV export and factory reset.
type DataHandler struct {
	store Store
}

func NewDataHandler(s Store) *DataHandler {
	return &DataHandler{store: s}
}

func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, &st); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(export.FileName(st.Session.Date)))
	_, _ = w.Write(buf.Bytes())
}

// ExportJSON downloads the whole document, pretty printed.
func (h *DataHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	body, err := h.store.Export()
	if err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("BanquetMaster_"+st.Session.Date+".json"))
	_, _ = w.Write(body)
}

// Import replaces the document with an uploaded backup. A malformed backup
// leaves the document untouched.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := httpx.ReadBody(w, r)
	if err != nil {
		badBody(w, r, err)
		return
	}
	if err := h.store.Import(r.Context(), raw); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": i18n.T(lang(r), "import.done")})
}

// Reset restores the factory document once confirmed. Nobody is signed in
// afterwards.
func (h *DataHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Confirmed {
		fail(w, r, http.StatusBadRequest, "confirmation_required", nil)
		return
	}
	if err := h.store.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": i18n.T(lang(r), "reset.done")})
}

func attachment(name string) string {
	return `attachment; filename*=UTF-8''` + url.PathEscape(name)
}
