package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/XBigRoad/banquet-master/internal/models"
)

// CurrentKey is the local storage key of the current schema.
const CurrentKey = "bm_v7"

// LegacyKey is a storage key used by an older schema version.
type LegacyKey struct {
	Key     string
	Version string
}

// legacyKeys are tried newest first when the current document is unusable.
var legacyKeys = []LegacyKey{
	{Key: "bm_v6", Version: "6"},
}

// Document is a state document as raw top-level members.
type Document map[string]json.RawMessage

// Migration upgrades a document from one schema version to the next. Up must
// not modify its arguments.
type Migration struct {
	From string
	To   string
	Up   func(doc, defaults Document) (Document, error)
}

var migrations = []Migration{
	{From: "6", To: models.SchemaVersion, Up: upgradeV6},
}

// upgradeV6 lays the old document over the current defaults, which adds every
// member introduced since (templates, users, ...) without dropping data.
func upgradeV6(doc, defaults Document) (Document, error) {
	out := make(Document, len(defaults)+len(doc))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range doc {
		out[k] = v
	}
	version, err := json.Marshal(models.SchemaVersion)
	if err != nil {
		return nil, err
	}
	out["version"] = version
	return out, nil
}

// Migrate applies the migration chain from version from up to the current
// schema version.
func Migrate(doc Document, from string, defaults Document) (Document, error) {
	version := from
	for version != models.SchemaVersion {
		m, ok := findMigration(version)
		if !ok {
			return nil, fmt.Errorf("no migration from version %q", version)
		}
		next, err := m.Up(doc, defaults)
		if err != nil {
			return nil, fmt.Errorf("migrate %s -> %s: %w", m.From, m.To, err)
		}
		doc, version = next, m.To
	}
	return doc, nil
}

func findMigration(from string) (Migration, bool) {
	for _, m := range migrations {
		if m.From == from {
			return m, true
		}
	}
	return Migration{}, false
}

func defaultsDocument(now time.Time) (Document, error) {
	raw, err := json.Marshal(models.Defaults(now))
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// decodeDocument parses a stored document and checks it has the shape of a
// planner state: an object whose categories member is an array.
func decodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	if !isArray(doc["categories"]) {
		return nil, fmt.Errorf("categories is not an array")
	}
	return doc, nil
}

func decodeState(doc Document) (models.AppState, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return models.AppState{}, err
	}
	var st models.AppState
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.AppState{}, err
	}
	return st, nil
}

func isArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// Normalize fills members that older or partial documents lack. It only adds
// or repairs values; it never drops user data.
func Normalize(st *models.AppState, now time.Time) {
	if st.Categories == nil {
		st.Categories = []models.Category{}
	}
	if st.Items == nil {
		st.Items = []models.MenuItem{}
	}
	if st.SelectedIDs == nil {
		st.SelectedIDs = []string{}
	}
	if st.Fruit == nil {
		st.Fruit = []models.FruitRow{}
	}
	for i := range st.Fruit {
		normalizeFruit(&st.Fruit[i])
	}
	for len(st.SupplierNames) < models.SupplierCount {
		st.SupplierNames = append(st.SupplierNames, models.DefaultSupplierNames[len(st.SupplierNames)])
	}
	st.SupplierNames = st.SupplierNames[:models.SupplierCount]
	if st.Templates == nil {
		st.Templates = []models.Template{}
	}
	for i := range st.Templates {
		if st.Templates[i].SelectedIDs == nil {
			st.Templates[i].SelectedIDs = []string{}
		}
	}
	if st.Archives == nil {
		st.Archives = []models.Archive{}
	}
	if st.Session.Tables < 1 {
		st.Session.Tables = 1
	}
	if st.Session.Guests < 1 {
		st.Session.Guests = 10
	}
	if st.CalendarYear == 0 || st.CalendarMonth < 0 || st.CalendarMonth > 11 {
		st.CalendarYear = now.Year()
		st.CalendarMonth = int(now.Month()) - 1
	}
	if st.Version == "" {
		st.Version = models.SchemaVersion
	}
	if st.Users == nil {
		st.Users = models.DefaultUsers(now)
	}
}

func normalizeFruit(f *models.FruitRow) {
	for len(f.Prices) < models.SupplierCount {
		f.Prices = append(f.Prices, 0)
	}
	f.Prices = f.Prices[:models.SupplierCount]
	if f.History == nil {
		f.History = []models.PriceLog{}
	}
}
