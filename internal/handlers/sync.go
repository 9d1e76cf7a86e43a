package handlers

import (
	"net/http"

	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/remote"
)

type SyncHandler struct {
	sync Syncer
}

func NewSyncHandler(s Syncer) *SyncHandler {
	return &SyncHandler{sync: s}
}

type statusResponse struct {
	remote.Status
	Text string `json:"text"`
}

func (h *SyncHandler) status(r *http.Request) statusResponse {
	st := h.sync.Status()
	return statusResponse{Status: st, Text: i18n.T(lang(r), st.Message)}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.status(r))
}

// Push uploads the document now. A push while another sync runs is refused
// with 409.
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.PushNow(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": h.status(r), "message": i18n.T(lang(r), "sync.pushed")})
}

// Pull downloads the remote document and applies it when it has content.
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	replaced, err := h.sync.PullNow(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := map[string]any{"status": h.status(r), "replaced": replaced}
	if replaced {
		resp["message"] = i18n.T(lang(r), "sync.pulled")
	}
	httpx.JSON(w, http.StatusOK, resp)
}
