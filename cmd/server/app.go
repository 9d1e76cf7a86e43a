package main

import (
	"net/http"

	"github.com/XBigRoad/banquet-master/auth"
	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/internal/handlers"
	"github.com/XBigRoad/banquet-master/internal/middleware"
	"github.com/XBigRoad/banquet-master/internal/policy"
	"github.com/XBigRoad/banquet-master/internal/services"
	"github.com/XBigRoad/banquet-master/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux         *http.ServeMux
	defaultLang string

	auth    *handlers.AuthHandler
	planner *handlers.PlannerHandler
	fruit   *handlers.FruitHandler
	data    *handlers.DataHandler
	sync    *handlers.SyncHandler
	print   *handlers.PrintHandler
}

// NewApp creates a new application with all routes configured. Sessions are
// only honoured while they belong to the signed-in user of st.
func NewApp(st *store.Store, syncer handlers.Syncer, defaultLang string) *App {
	authSvc := services.NewAuthService(st)
	auth.SetUserVerifier(authSvc.Verify)
	roles := policy.NewRoleGate()

	app := &App{
		mux:         http.NewServeMux(),
		defaultLang: defaultLang,
		auth:        handlers.NewAuthHandler(authSvc, roles, syncer),
		planner:     handlers.NewPlannerHandler(st, services.NewDashboardService()),
		fruit:       handlers.NewFruitHandler(st, roles),
		data:        handlers.NewDataHandler(st),
		sync:        handlers.NewSyncHandler(syncer),
		print:       handlers.NewPrintHandler(st),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := auth.Middleware(middleware.Prefs(a.defaultLang)(a.mux))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("GET /health", health)
	a.mux.HandleFunc("POST /api/login", a.auth.Login)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes
	// ─────────────────────────────────────────────────────────────────────────
	a.private("POST /api/logout", a.auth.Logout)
	a.private("GET /api/me", a.auth.Me)

	p := a.planner
	a.private("GET /api/state", p.State)
	a.private("PATCH /api/session", p.UpdateSession)
	a.private("POST /api/session/new", p.NewSession)
	a.private("GET /api/menu", p.Menu)
	a.private("POST /api/items", p.AddItem)
	a.private("POST /api/selection/{id}/toggle", p.ToggleSelection)
	a.private("GET /api/templates", p.Templates)
	a.private("POST /api/templates", p.SaveTemplate)
	a.private("POST /api/templates/{id}/apply", p.ApplyTemplate)
	a.private("GET /api/archives", p.Archives)
	a.private("POST /api/archives", p.Archive)
	a.private("GET /api/dashboard", p.Dashboard)
	a.private("GET /api/calendar", p.Calendar)
	a.private("POST /api/calendar/{direction}", p.ShiftCalendar)
	a.private("GET /api/calendar/days/{date}", p.CalendarDay)
	a.private("POST /api/theme/toggle", p.ToggleTheme)

	f := a.fruit
	a.private("GET /api/fruit", f.List)
	a.private("POST /api/fruit", f.Create)
	a.private("PATCH /api/fruit/{id}", f.Update)
	a.private("PUT /api/fruit/{id}/prices/{idx}", f.SetPrice)
	a.private("PUT /api/suppliers/{idx}", f.RenameSupplier)
	a.private("GET /api/procurement", f.Procurement)

	a.private("GET /api/export/csv", a.data.ExportCSV)
	a.private("GET /api/export/json", a.data.ExportJSON)
	a.private("POST /api/import", a.data.Import)
	a.private("POST /api/reset", a.data.Reset)

	a.private("GET /api/sync/status", a.sync.Status)
	a.private("POST /api/sync/push", a.sync.Push)
	a.private("POST /api/sync/pull", a.sync.Pull)

	// ─────────────────────────────────────────────────────────────────────────
	// Printable documents
	// ─────────────────────────────────────────────────────────────────────────
	a.private("GET /print/menu", a.print.Menu)
	a.private("GET /print/orders/{supplier}", a.print.Order)
}

// private registers a route that requires a signed-in user.
func (a *App) private(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(h))
}

func health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
