package handlers

import (
	"net/http"

	"github.com/XBigRoad/banquet-master/view"
)

// PrintHandler serves the printable menu and purchase orders.
type PrintHandler struct {
	store Store
}

func NewPrintHandler(s Store) *PrintHandler {
	return &PrintHandler{store: s}
}

// Menu renders the guest copy followed by the kitchen copy.
func (h *PrintHandler) Menu(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	guest, kitchen := view.PrintCopies(&st)
	if err := view.Render(w, r, "menu.html", view.MenuDocument{Guest: guest, Kitchen: kitchen}); err != nil {
		writeError(w, r, err)
	}
}

// Order renders the purchase order of the supplier named in the path.
func (h *PrintHandler) Order(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	sheet, ok := view.BuildOrderSheet(&st, r.PathValue("supplier"), h.store.Now())
	if !ok {
		fail(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := view.Render(w, r, "order.html", view.OrderDocument{Sheet: sheet}); err != nil {
		writeError(w, r, err)
	}
}
