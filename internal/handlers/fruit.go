package handlers

import (
	"net/http"
	"strconv"

	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/policy"
	"github.com/XBigRoad/banquet-master/internal/pricing"
	"github.com/XBigRoad/banquet-master/internal/store"
	"github.com/XBigRoad/banquet-master/validation"
	"github.com/XBigRoad/banquet-master/view"
)

// FruitHandler serves the supplier comparison table and procurement.
type FruitHandler struct {
	store Store
	roles *policy.RoleGate
}

func NewFruitHandler(s Store, roles *policy.RoleGate) *FruitHandler {
	return &FruitHandler{store: s, roles: roles}
}

// List returns the comparison table. Price columns are included for roles
// allowed to see them.
func (h *FruitHandler) List(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	show := h.roles.CanViewPrices(r.Context(), currentRole(&st))
	httpx.JSON(w, http.StatusOK, view.BuildFruitTable(&st, show, lang(r)))
}

func (h *FruitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := models.NewID()
	if err := h.store.Mutate(r.Context(), store.AddFruit(id, req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeRow(w, r, http.StatusCreated, id)
}

func (h *FruitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p store.FruitPatch
	if !decode(w, r, &p) {
		return
	}
	id := r.PathValue("id")
	if err := h.store.Mutate(r.Context(), store.UpdateFruit(id, p)); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeRow(w, r, http.StatusOK, id)
}

type priceRequest struct {
	Price models.Price `json:"price"`
}

// SetPrice records the quote of supplier {idx} for fruit {id}.
func (h *FruitHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := h.store.Mutate(r.Context(), store.SetFruitPrice(id, idx, req.Price, h.store.Now())); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeRow(w, r, http.StatusOK, id)
}

func (h *FruitHandler) RenameSupplier(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.Mutate(r.Context(), store.RenameSupplier(idx, req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"supplierNames": st.SupplierNames})
}

// Procurement groups the fruit to order by winning supplier.
func (h *FruitHandler) Procurement(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"guests":    pricing.Guests(st.Session),
		"suppliers": pricing.Procurement(&st),
	})
}

func (h *FruitHandler) writeRow(w http.ResponseWriter, r *http.Request, status int, id string) {
	st := h.store.Snapshot()
	i := st.FruitIndex(id)
	if i < 0 {
		fail(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, status, st.Fruit[i])
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "validation_failed", validation.Violations{"idx": "out_of_range"})
		return 0, false
	}
	return idx, true
}
