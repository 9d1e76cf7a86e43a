package handlers

import (
	"net/http"
	"time"

	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/pricing"
	"github.com/XBigRoad/banquet-master/internal/services"
	"github.com/XBigRoad/banquet-master/internal/store"
	"github.com/XBigRoad/banquet-master/validation"
	"github.com/XBigRoad/banquet-master/view"
)

// PlannerHandler serves the menu, template, archive and calendar screens.
type PlannerHandler struct {
	store     Store
	dashboard *services.DashboardService
}

func NewPlannerHandler(s Store, dashboard *services.DashboardService) *PlannerHandler {
	return &PlannerHandler{store: s, dashboard: dashboard}
}

// State returns the whole document without password hashes.
func (h *PlannerHandler) State(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	for i := range st.Users {
		st.Users[i].PasswordHash = ""
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *PlannerHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var p store.SessionPatch
	if !decode(w, r, &p) {
		return
	}
	if err := h.store.Mutate(r.Context(), store.UpdateSession(p)); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"session": st.Session, "summary": pricing.CostSummary(&st)})
}

// NewSession starts a fresh event dated today.
func (h *PlannerHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Mutate(r.Context(), store.NewSession(h.store.Now())); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"session": st.Session, "message": i18n.T(lang(r), "session.new")})
}

func (h *PlannerHandler) Menu(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, view.BuildMenu(&st))
}

type addItemRequest struct {
	CID   string   `json:"cid"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

func (h *PlannerHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}
	id := models.NewID()
	if err := h.store.Mutate(r.Context(), store.AddItem(id, req.CID, req.Name, req.Price)); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	item, _ := st.ItemByID(id)
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *PlannerHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Mutate(r.Context(), store.ToggleSelect(r.PathValue("id"))); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"selectedIds": st.SelectedIDs, "summary": pricing.CostSummary(&st)})
}

func (h *PlannerHandler) Templates(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, st.Templates)
}

type nameRequest struct {
	Name string `json:"name"`
}

// SaveTemplate stores the current selection under a name.
func (h *PlannerHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := models.NewID()
	if err := h.store.Mutate(r.Context(), store.SaveTemplate(id, req.Name, h.store.Now())); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	for _, t := range st.Templates {
		if t.ID == id {
			httpx.JSON(w, http.StatusCreated, t)
			return
		}
	}
	fail(w, r, http.StatusInternalServerError, "server_error", nil)
}

func (h *PlannerHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Mutate(r.Context(), store.ApplyTemplate(r.PathValue("id"))); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"selectedIds": st.SelectedIDs,
		"summary":     pricing.CostSummary(&st),
		"message":     i18n.T(lang(r), "template.applied"),
	})
}

// Archives lists the archives, newest first. ?month=YYYY-MM narrows the list.
func (h *PlannerHandler) Archives(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	month := r.URL.Query().Get("month")
	if month == "" {
		httpx.JSON(w, http.StatusOK, st.Archives)
		return
	}
	v := validation.Violations{}
	validation.YearMonth("month", month, v)
	if !v.Empty() {
		fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	httpx.JSON(w, http.StatusOK, pricing.MonthArchives(st.Archives, month))
}

// Archive snapshots the current session.
func (h *PlannerHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id := models.NewID()
	if err := h.store.Mutate(r.Context(), store.ArchiveCurrent(id, h.store.Now())); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusCreated, map[string]any{"archive": st.Archives[0], "message": i18n.T(lang(r), "archive.done")})
}

// Dashboard returns the statistics of ?month=YYYY-MM, the current month by
// default.
func (h *PlannerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = h.store.Now().Format("2006-01")
	}
	v := validation.Violations{}
	validation.YearMonth("month", month, v)
	if !v.Empty() {
		fail(w, r, http.StatusBadRequest, "validation_failed", v)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, h.dashboard.Stats(&st, month))
}

func (h *PlannerHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, view.BuildCalendar(&st, h.store.Now(), lang(r)))
}

// ShiftCalendar moves the calendar cursor; direction is prev or next.
func (h *PlannerHandler) ShiftCalendar(w http.ResponseWriter, r *http.Request) {
	var delta int
	switch r.PathValue("direction") {
	case "prev":
		delta = -1
	case "next":
		delta = 1
	default:
		fail(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.store.Mutate(r.Context(), store.ShiftCalendar(delta)); err != nil {
		writeError(w, r, err)
		return
	}
	h.Calendar(w, r)
}

func (h *PlannerHandler) CalendarDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		fail(w, r, http.StatusBadRequest, "validation_failed", validation.Violations{"date": "invalid_date"})
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]any{"date": date, "archives": view.DayDetail(st.Archives, date, lang(r))})
}

func (h *PlannerHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Mutate(r.Context(), store.ToggleDarkMode()); err != nil {
		writeError(w, r, err)
		return
	}
	st := h.store.Snapshot()
	httpx.JSON(w, http.StatusOK, map[string]bool{"darkMode": st.DarkMode})
}
