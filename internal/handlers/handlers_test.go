package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/XBigRoad/banquet-master/httpx"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/policy"
	"github.com/XBigRoad/banquet-master/internal/remote"
	"github.com/XBigRoad/banquet-master/internal/services"
	"github.com/XBigRoad/banquet-master/internal/storage"
	"github.com/XBigRoad/banquet-master/internal/store"
)

var dbSeq atomic.Int64

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), dbSeq.Add(1))
	dbi, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.LocalBlob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := store.New(storage.NewBlobStore(dbi), store.WithClock(func() time.Time {
		return time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	}))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

type fakeSyncer struct {
	started int
	pushErr error
	pulled  bool
}

func (f *fakeSyncer) Start()                { f.started++ }
func (f *fakeSyncer) Status() remote.Status { return remote.Status{Enabled: true, State: remote.Online, Message: remote.MsgOnline} }
func (f *fakeSyncer) PushNow(context.Context) error {
	return f.pushErr
}
func (f *fakeSyncer) PullNow(context.Context) (bool, error) { return f.pulled, nil }

// do runs h on a zh request carrying body and the given path values.
func do(h http.HandlerFunc, method, target, body string, pathValues ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(i18n.WithLang(req.Context(), "zh"))
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var e httpx.ErrorResponse
	decodeBody(t, rr, &e)
	return e.Error
}

func signIn(t *testing.T, s *store.Store, role models.Role) {
	t.Helper()
	u := models.User{ID: "u-" + string(role), Username: string(role), Role: role, Name: "测试"}
	err := s.Mutate(context.Background(), func(st *models.AppState) error {
		st.Users = append(st.Users, u)
		cu := u.Projection()
		st.CurrentUser = &cu
		return nil
	})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed", `{`, http.StatusBadRequest, "invalid_json"},
		{"missing", `{"username":"admin"}`, http.StatusBadRequest, "login.missing"},
		{"unknown user", `{"username":"ghost","password":"x"}`, http.StatusUnauthorized, "login.unknown_user"},
		{"bad password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, "login.bad_password"},
		{"ok", `{"username":"admin","password":"admin123"}`, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupStore(t)
			sy := &fakeSyncer{}
			h := NewAuthHandler(services.NewAuthService(s), policy.NewRoleGate(), sy)

			rr := do(h.Login, http.MethodPost, "/api/login", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
			}
			if tt.wantErr != "" {
				if got := errorCode(t, rr); got != tt.wantErr {
					t.Errorf("error = %q, want %q", got, tt.wantErr)
				}
				if sy.started != 0 {
					t.Error("sync started after a failed login")
				}
				return
			}
			var me meResponse
			decodeBody(t, rr, &me)
			if me.User.Username != "admin" || !me.CanViewPrices || me.RoleLabel != "管理员" {
				t.Errorf("me = %+v", me)
			}
			if sy.started != 1 {
				t.Errorf("sync started %d times", sy.started)
			}
			if len(rr.Result().Cookies()) == 0 {
				t.Error("no session cookie")
			}
		})
	}
}

func TestLogoutNeedsConfirmation(t *testing.T) {
	s := setupStore(t)
	signIn(t, s, models.RoleUser)
	h := NewAuthHandler(services.NewAuthService(s), policy.NewRoleGate(), &fakeSyncer{})

	rr := do(h.Logout, http.MethodPost, "/api/logout", `{"confirmed":false}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "logout.confirm" {
		t.Fatalf("unconfirmed logout: %d %s", rr.Code, rr.Body.String())
	}
	if st := s.Snapshot(); st.CurrentUser == nil {
		t.Fatal("user signed out without confirmation")
	}

	rr = do(h.Logout, http.MethodPost, "/api/logout", `{"confirmed":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(h.Me, http.MethodGet, "/api/me", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d", rr.Code)
	}
}

func TestToggleSelection(t *testing.T) {
	s := setupStore(t)
	h := NewPlannerHandler(s, services.NewDashboardService())

	rr := do(h.ToggleSelection, http.MethodPost, "/api/menu/items/i4/toggle", "", "id", "i4")
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", rr.Code, rr.Body.String())
	}
	var got struct {
		SelectedIDs []string `json:"selectedIds"`
		Summary     struct {
			Count    int     `json:"count"`
			PerTable float64 `json:"perTable"`
		} `json:"summary"`
	}
	decodeBody(t, rr, &got)
	if len(got.SelectedIDs) != 1 || got.Summary.Count != 1 || got.Summary.PerTable != 45 {
		t.Errorf("after toggle = %+v", got)
	}

	rr = do(h.ToggleSelection, http.MethodPost, "/api/menu/items/nope/toggle", "", "id", "nope")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown item = %d", rr.Code)
	}
}

func TestAddItemValidation(t *testing.T) {
	s := setupStore(t)
	h := NewPlannerHandler(s, services.NewDashboardService())
	before := len(s.Snapshot().Items)

	rr := do(h.AddItem, http.MethodPost, "/api/menu/items", `{"cid":"c1","name":"  "}`)
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "validation_failed" {
		t.Fatalf("blank name: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(h.AddItem, http.MethodPost, "/api/menu/items", `{"cid":"c2","name":"清蒸鲈鱼"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}
	var item models.MenuItem
	decodeBody(t, rr, &item)
	if item.ID == "" || item.CID != "c2" || item.Price != store.DefaultItemPrice {
		t.Errorf("item = %+v", item)
	}
	if n := len(s.Snapshot().Items); n != before+1 {
		t.Errorf("items = %d, want %d", n, before+1)
	}
}

func TestArchiveAndDashboard(t *testing.T) {
	s := setupStore(t)
	h := NewPlannerHandler(s, services.NewDashboardService())
	do(h.ToggleSelection, http.MethodPost, "/", "", "id", "i1")
	do(h.UpdateSession, http.MethodPatch, "/", `{"dept":"财务部"}`)

	rr := do(h.Archive, http.MethodPost, "/api/archives", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("archive: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(h.Archives, http.MethodGet, "/api/archives?month=2025-05", "")
	var list []models.Archive
	decodeBody(t, rr, &list)
	if len(list) != 1 || list[0].Session.Dept != "财务部" {
		t.Errorf("month archives = %+v", list)
	}
	if rr = do(h.Archives, http.MethodGet, "/api/archives?month=2025-13", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad month = %d", rr.Code)
	}

	rr = do(h.Dashboard, http.MethodGet, "/api/dashboard", "")
	var stats services.MonthStats
	decodeBody(t, rr, &stats)
	if stats.Month != "2025-05" || stats.Count != 1 || stats.TopDept != "财务部" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCalendarDay(t *testing.T) {
	s := setupStore(t)
	h := NewPlannerHandler(s, services.NewDashboardService())
	if rr := do(h.CalendarDay, http.MethodGet, "/", "", "date", "2025-02-30"); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid date = %d", rr.Code)
	}
	if rr := do(h.ShiftCalendar, http.MethodPost, "/", "", "direction", "sideways"); rr.Code != http.StatusNotFound {
		t.Errorf("bad direction = %d", rr.Code)
	}
	do(h.ShiftCalendar, http.MethodPost, "/", "", "direction", "next")
	if st := s.Snapshot(); st.CalendarMonth != 5 {
		t.Errorf("calendar month = %d", st.CalendarMonth)
	}
}

func TestFruitListHidesPricesFromUsers(t *testing.T) {
	tests := []struct {
		role       models.Role
		wantPrices bool
	}{
		{models.RoleAdmin, true},
		{models.RoleManager, false},
		{models.RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			s := setupStore(t)
			signIn(t, s, tt.role)
			h := NewFruitHandler(s, policy.NewRoleGate())

			rr := do(h.List, http.MethodGet, "/api/fruit", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("list: %d", rr.Code)
			}
			if got := strings.Contains(rr.Body.String(), `"prices"`); got != tt.wantPrices {
				t.Errorf("prices shown = %v, want %v: %s", got, tt.wantPrices, rr.Body.String())
			}
		})
	}
}

func TestSetPrice(t *testing.T) {
	s := setupStore(t)
	h := NewFruitHandler(s, policy.NewRoleGate())

	rr := do(h.SetPrice, http.MethodPut, "/", `{"price":"7.9"}`, "id", "f1", "idx", "1")
	if rr.Code != http.StatusOK {
		t.Fatalf("set price: %d %s", rr.Code, rr.Body.String())
	}
	st := s.Snapshot()
	if p := st.Fruit[0].Prices[1]; p != 7.9 {
		t.Errorf("price = %v", p)
	}
	if len(st.Fruit[0].History) != 1 {
		t.Errorf("history = %+v", st.Fruit[0].History)
	}

	if rr = do(h.SetPrice, http.MethodPut, "/", `{"price":1}`, "id", "f1", "idx", "x"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad idx = %d", rr.Code)
	}
	if rr = do(h.SetPrice, http.MethodPut, "/", `{"price":1}`, "id", "zz", "idx", "0"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown fruit = %d", rr.Code)
	}

	rr = do(h.SetPrice, http.MethodPut, "/", `{"price":"-3"}`, "id", "f1", "idx", "1")
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "validation_failed" {
		t.Errorf("negative price: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(h.SetPrice, http.MethodPut, "/", `{"price":"NaN"}`, "id", "f1", "idx", "2")
	if rr.Code != http.StatusOK {
		t.Errorf("NaN price: %d %s", rr.Code, rr.Body.String())
	}
	if p := s.Snapshot().Fruit[0].Prices[1]; p != 7.9 {
		t.Errorf("price after rejected update = %v", p)
	}
}

func TestImportMalformedLeavesStateAlone(t *testing.T) {
	s := setupStore(t)
	h := NewDataHandler(s)
	before, _ := s.Document()

	for _, body := range []string{`not json`, `{"items":[]}`, `[1,2]`} {
		rr := do(h.Import, http.MethodPost, "/api/data/import", body)
		if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "import.parse_failed" {
			t.Errorf("import %q: %d %s", body, rr.Code, rr.Body.String())
		}
	}
	after, _ := s.Document()
	if string(before) != string(after) {
		t.Error("document changed by a rejected import")
	}
}

func TestImportOversizedBackup(t *testing.T) {
	s := setupStore(t)
	h := NewDataHandler(s)
	before, _ := s.Document()

	body := `{"categories":[],"notes":"` + strings.Repeat("x", httpx.MaxBodyBytes) + `"}`
	rr := do(h.Import, http.MethodPost, "/api/data/import", body)
	if rr.Code != http.StatusRequestEntityTooLarge || errorCode(t, rr) != "too_large" {
		t.Fatalf("oversized import: %d %s", rr.Code, rr.Body.String())
	}
	after, _ := s.Document()
	if string(before) != string(after) {
		t.Error("document changed by an oversized import")
	}
}

func TestExportCSV(t *testing.T) {
	s := setupStore(t)
	h := NewDataHandler(s)
	rr := do(h.ExportCSV, http.MethodGet, "/api/export/fruit.csv", "")
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "2025-05-20.csv") {
		t.Errorf("disposition = %q", cd)
	}
	if !strings.HasPrefix(rr.Body.String(), "\uFEFF") || !strings.Contains(rr.Body.String(), "富士苹果") {
		t.Errorf("csv body = %q", rr.Body.String())
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	s := setupStore(t)
	h := NewDataHandler(s)
	signIn(t, s, models.RoleAdmin)

	if rr := do(h.Reset, http.MethodPost, "/", `{}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed reset = %d", rr.Code)
	}
	if rr := do(h.Reset, http.MethodPost, "/", `{"confirmed":true}`); rr.Code != http.StatusOK {
		t.Fatalf("reset = %d", rr.Code)
	}
	st := s.Snapshot()
	if st.CurrentUser != nil || len(st.Users) != 1 {
		t.Errorf("reset left users=%d current=%v", len(st.Users), st.CurrentUser)
	}
}

func TestSyncPushInFlight(t *testing.T) {
	sy := &fakeSyncer{pushErr: remote.ErrInFlight}
	h := NewSyncHandler(sy)
	rr := do(h.Push, http.MethodPost, "/api/sync/push", "")
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "sync.in_flight" {
		t.Errorf("push in flight: %d %s", rr.Code, rr.Body.String())
	}

	sy.pushErr = remote.ErrNotConfigured
	if rr = do(h.Push, http.MethodPost, "/api/sync/push", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("not configured = %d", rr.Code)
	}

	rr = do(h.Status, http.MethodGet, "/api/sync", "")
	var st statusResponse
	decodeBody(t, rr, &st)
	if st.State != remote.Online || st.Text != i18n.T("zh", remote.MsgOnline) {
		t.Errorf("status = %+v", st)
	}
}

func TestPrintOrderUnknownSupplier(t *testing.T) {
	s := setupStore(t)
	h := NewPrintHandler(s)
	if rr := do(h.Order, http.MethodGet, "/", "", "supplier", "nobody"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown supplier = %d", rr.Code)
	}
	rr := do(h.Order, http.MethodGet, "/", "", "supplier", "供应商 A")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "富士苹果") {
		t.Errorf("order: %d", rr.Code)
	}
	if rr = do(h.Menu, http.MethodGet, "/print/menu", ""); rr.Code != http.StatusOK {
		t.Errorf("menu = %d", rr.Code)
	}
}
