package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/storage"
)

var fixedNow = time.Date(2025, time.May, 20, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

var dbSeq atomic.Int64

func setupBlobs(t *testing.T) *storage.BlobStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), dbSeq.Add(1))
	dbi, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.LocalBlob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return storage.NewBlobStore(dbi)
}

func loadedStore(t *testing.T) (*Store, *storage.BlobStore) {
	t.Helper()
	blobs := setupBlobs(t)
	s := New(blobs, WithClock(clock))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, blobs
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestLoad_FreshUsesDefaultsAndPersists(t *testing.T) {
	s, blobs := loadedStore(t)
	st := s.Snapshot()

	if st.Version != models.SchemaVersion || len(st.Items) != 12 || st.Session.Date != "2025-05-20" {
		t.Fatalf("unexpected defaults: version=%s items=%d date=%s", st.Version, len(st.Items), st.Session.Date)
	}
	raw, ok, err := blobs.Get(context.Background(), CurrentKey)
	if err != nil || !ok {
		t.Fatalf("defaults not written back: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(raw, mustJSON(t, st)) {
		t.Error("persisted document differs from loaded state")
	}
}

func TestLoad_Idempotent(t *testing.T) {
	blobs := setupBlobs(t)
	ctx := context.Background()

	first, err := New(blobs, WithClock(clock)).Load(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	later := func() time.Time { return fixedNow.Add(48 * time.Hour) }
	second, err := New(blobs, WithClock(later)).Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !bytes.Equal(mustJSON(t, first), mustJSON(t, second)) {
		t.Errorf("load is not idempotent:\n%s\n%s", mustJSON(t, first), mustJSON(t, second))
	}
}

func TestLoad_CorruptFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"categories": [`},
		{"categories missing", `{"items": []}`},
		{"categories not array", `{"categories": "c1"}`},
		{"null", `null`},
		{"wrong member type", `{"categories": [], "session": "today"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := setupBlobs(t)
			ctx := context.Background()
			if err := blobs.Put(ctx, CurrentKey, []byte(tt.raw)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			st, err := New(blobs, WithClock(clock)).Load(ctx)
			if err != nil {
				t.Fatalf("corrupt data must not be an error: %v", err)
			}
			if len(st.Categories) != 5 || len(st.Users) != 1 {
				t.Errorf("expected defaults, got %d categories", len(st.Categories))
			}
		})
	}
}

func TestLoad_MigratesV6(t *testing.T) {
	blobs := setupBlobs(t)
	ctx := context.Background()
	v6 := `{
		"session": {"date": "2024-12-01", "dept": "财务部", "room": "A1", "tables": 0},
		"categories": [{"id": "k1", "name": "甜点"}],
		"items": [{"id": "x1", "cid": "k1", "name": "双皮奶", "price": "16"}],
		"selectedIds": ["x1"],
		"fruit": [{"id": "f9", "name": "荔枝", "perCapita": 0.15, "prices": [20, ""]}],
		"supplierNames": ["甲", "乙", "丙"],
		"archives": []
	}`
	if err := blobs.Put(ctx, "bm_v6", []byte(v6)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st, err := New(blobs, WithClock(clock)).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.Version != models.SchemaVersion {
		t.Errorf("version = %q", st.Version)
	}
	if len(st.Categories) != 1 || st.Categories[0].Name != "甜点" {
		t.Errorf("v6 categories lost: %+v", st.Categories)
	}
	if len(st.Items) != 1 || st.Items[0].Price != 16 {
		t.Errorf("v6 items lost: %+v", st.Items)
	}
	if st.Session.Dept != "财务部" || st.Session.Tables != 1 || st.Session.Guests != 10 {
		t.Errorf("session not normalised: %+v", st.Session)
	}
	if len(st.Fruit[0].Prices) != models.SupplierCount || st.Fruit[0].History == nil {
		t.Errorf("fruit row not normalised: %+v", st.Fruit[0])
	}
	if st.Templates == nil || len(st.Users) != 1 || st.Users[0].ID != models.DefaultAdminID {
		t.Errorf("members added by v7 missing: templates=%v users=%v", st.Templates, st.Users)
	}
	if _, ok, _ := blobs.Get(ctx, CurrentKey); !ok {
		t.Error("migrated document not written under the current key")
	}
}

func TestLoad_CorruptCurrentPrefersLegacy(t *testing.T) {
	blobs := setupBlobs(t)
	ctx := context.Background()
	_ = blobs.Put(ctx, CurrentKey, []byte(`garbage`))
	_ = blobs.Put(ctx, "bm_v6", []byte(`{"categories":[{"id":"k1","name":"甜点"}]}`))

	st, err := New(blobs, WithClock(clock)).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.Categories) != 1 {
		t.Errorf("expected legacy categories, got %+v", st.Categories)
	}
}

func TestMigrate_UnknownVersion(t *testing.T) {
	if _, err := Migrate(Document{}, "5", Document{}); err == nil {
		t.Fatal("expected an error for a version without migration")
	}
}

func TestUpgradeV6_DoesNotModifyInputs(t *testing.T) {
	doc := Document{"categories": json.RawMessage(`[]`), "version": json.RawMessage(`"6.0"`)}
	defaults := Document{"templates": json.RawMessage(`[]`), "version": json.RawMessage(`"7.0"`)}

	out, err := upgradeV6(doc, defaults)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if string(out["version"]) != `"7.0"` || string(out["templates"]) != `[]` || string(out["categories"]) != `[]` {
		t.Errorf("unexpected result: %v", out)
	}
	if string(doc["version"]) != `"6.0"` || len(doc) != 2 || len(defaults) != 2 {
		t.Error("inputs were modified")
	}
}

func TestNormalize(t *testing.T) {
	st := models.AppState{
		Fruit:         []models.FruitRow{{ID: "f", Prices: []models.Price{1, 2, 3, 4}}, {ID: "g"}},
		SupplierNames: []string{"甲"},
		Session:       models.Session{Tables: -2},
		CalendarMonth: 14,
	}
	Normalize(&st, fixedNow)

	if len(st.Fruit[0].Prices) != 3 || len(st.Fruit[1].Prices) != 3 {
		t.Errorf("prices not fixed to three: %v %v", st.Fruit[0].Prices, st.Fruit[1].Prices)
	}
	if len(st.SupplierNames) != 3 || st.SupplierNames[0] != "甲" || st.SupplierNames[2] != "供应商 C" {
		t.Errorf("supplier names = %v", st.SupplierNames)
	}
	if st.Session.Tables != 1 || st.Session.Guests != 10 {
		t.Errorf("session = %+v", st.Session)
	}
	if st.CalendarYear != 2025 || st.CalendarMonth != 4 {
		t.Errorf("calendar = %d/%d", st.CalendarYear, st.CalendarMonth)
	}
	if st.Users == nil || st.Templates == nil || st.Archives == nil || st.SelectedIDs == nil {
		t.Error("nil members left after normalise")
	}
}

func TestMutate_PersistsAndNotifies(t *testing.T) {
	s, blobs := loadedStore(t)
	ctx := context.Background()
	saves := 0
	s.OnSave(func() { saves++ })

	if err := s.Mutate(ctx, ToggleSelect("i1")); err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if saves != 1 {
		t.Errorf("listeners called %d times, want 1", saves)
	}
	raw, _, _ := blobs.Get(ctx, CurrentKey)
	var persisted models.AppState
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode persisted: %v", err)
	}
	if len(persisted.SelectedIDs) != 1 || persisted.SelectedIDs[0] != "i1" {
		t.Errorf("persisted selection = %v", persisted.SelectedIDs)
	}
}

func TestMutate_FailedCommandChangesNothing(t *testing.T) {
	s, _ := loadedStore(t)
	saves := 0
	s.OnSave(func() { saves++ })
	before := mustJSON(t, s.Snapshot())

	err := s.Mutate(context.Background(), func(st *models.AppState) error {
		st.Session.Dept = "changed"
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if !bytes.Equal(before, mustJSON(t, s.Snapshot())) {
		t.Error("state changed by a failed command")
	}
	if saves != 0 {
		t.Error("listeners called for a failed command")
	}
}

type failingBlobs struct {
	*storage.BlobStore
	fail bool
}

func (f *failingBlobs) Put(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.BlobStore.Put(ctx, key, value)
}

func TestMutate_WriteFailureChangesNothing(t *testing.T) {
	blobs := &failingBlobs{BlobStore: setupBlobs(t)}
	s := New(blobs, WithClock(clock))
	ctx := context.Background()
	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	blobs.fail = true

	if err := s.Mutate(ctx, ToggleDarkMode()); err == nil {
		t.Fatal("expected write error")
	}
	if s.Snapshot().DarkMode {
		t.Error("state changed although the write failed")
	}
}

func TestMutate_BeforeLoad(t *testing.T) {
	s := New(setupBlobs(t))
	if err := s.Mutate(context.Background(), ToggleDarkMode()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("got %v, want ErrNotLoaded", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	for _, cmd := range []Command{
		ToggleSelect("i1"),
		ToggleSelect("i5"),
		AddFruit("f4", "芒果"),
		SetFruitPrice("f4", 1, 12.5, fixedNow),
		SaveTemplate("t1", "商务宴", fixedNow),
		ArchiveCurrent("a1", fixedNow),
		SetCurrentUser(models.CurrentUser{ID: models.DefaultAdminID, Username: "admin", Role: models.RoleAdmin}),
	} {
		if err := s.Mutate(ctx, cmd); err != nil {
			t.Fatalf("mutate: %v", err)
		}
	}

	exported, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(exported, []byte("\n  \"session\"")) {
		t.Error("export is not indented")
	}

	other, _ := loadedStore(t)
	if err := other.Import(ctx, exported); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !bytes.Equal(mustJSON(t, s.Snapshot()), mustJSON(t, other.Snapshot())) {
		t.Errorf("round trip changed the state:\n%s\n%s", mustJSON(t, s.Snapshot()), mustJSON(t, other.Snapshot()))
	}
}

func TestImport_MalformedLeavesStateUntouched(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	_ = s.Mutate(ctx, ToggleSelect("i2"))
	before := mustJSON(t, s.Snapshot())

	for _, raw := range []string{`{"categories":`, `[]`, `{"items":[]}`} {
		err := s.Import(ctx, []byte(raw))
		if !errors.Is(err, ErrImportParse) {
			t.Errorf("Import(%q) = %v, want ErrImportParse", raw, err)
		}
	}
	if !bytes.Equal(before, mustJSON(t, s.Snapshot())) {
		t.Error("state changed by a failed import")
	}
}

func TestReset(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	_ = s.Mutate(ctx, AddFruit("f4", "芒果"))
	_ = s.Mutate(ctx, SetCurrentUser(models.CurrentUser{ID: models.DefaultAdminID}))

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st := s.Snapshot()
	if len(st.Fruit) != 3 || st.CurrentUser != nil {
		t.Errorf("reset did not restore defaults: fruit=%d user=%v", len(st.Fruit), st.CurrentUser)
	}
}

func TestReset_DropsLegacyDocuments(t *testing.T) {
	s, blobs := loadedStore(t)
	ctx := context.Background()
	_ = blobs.Put(ctx, "bm_v6", []byte(`{"categories":[{"id":"k1","name":"甜点"}]}`))

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := blobs.Get(ctx, "bm_v6"); ok {
		t.Fatal("legacy document survived the reset")
	}

	// An unreadable current document must now fall back to the defaults.
	_ = blobs.Put(ctx, CurrentKey, []byte(`garbage`))
	st, err := New(blobs, WithClock(clock)).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.Categories) == 1 && st.Categories[0].ID == "k1" {
		t.Error("pre-reset legacy data came back")
	}
}

func TestReplace_KeepsSignedInUser(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	admin := models.CurrentUser{ID: models.DefaultAdminID, Username: "admin", Role: models.RoleAdmin}
	if err := s.Mutate(ctx, SetCurrentUser(admin)); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	pulled := []byte(`{"categories":[{"id":"c9","name":"远端"}],"currentUser":null}`)
	if err := s.Replace(ctx, pulled); err != nil {
		t.Fatalf("replace: %v", err)
	}
	st := s.Snapshot()
	if st.CurrentUser == nil || st.CurrentUser.ID != models.DefaultAdminID {
		t.Fatalf("signed-in user lost: %+v", st.CurrentUser)
	}
	if len(st.Categories) != 1 || st.Categories[0].ID != "c9" {
		t.Errorf("categories = %+v", st.Categories)
	}

	// A pulled document cannot sign anybody in either.
	_ = s.Mutate(ctx, ClearCurrentUser())
	if err := s.Replace(ctx, []byte(`{"categories":[],"currentUser":{"id":"admin_001"}}`)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if cu := s.Snapshot().CurrentUser; cu != nil {
		t.Errorf("pull signed in %+v", cu)
	}
}

func TestImport_ReplacesSignedInUser(t *testing.T) {
	s, _ := loadedStore(t)
	ctx := context.Background()
	_ = s.Mutate(ctx, SetCurrentUser(models.CurrentUser{ID: models.DefaultAdminID}))

	if err := s.Import(ctx, []byte(`{"categories":[],"currentUser":null}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if cu := s.Snapshot().CurrentUser; cu != nil {
		t.Errorf("import kept %+v", cu)
	}
}
