package models

import "time"

// SchemaVersion is the version written into every saved document.
const SchemaVersion = "7.0"

// SupplierCount is the fixed number of suppliers compared per fruit row.
const SupplierCount = 3

// AppState is the whole planner document. It is persisted locally and mirrored
// to the remote store as a single JSON value, so the json keys must stay stable.
type AppState struct {
	Session       Session      `json:"session"`
	Categories    []Category   `json:"categories"`
	Items         []MenuItem   `json:"items"`
	SelectedIDs   []string     `json:"selectedIds"`
	Fruit         []FruitRow   `json:"fruit"`
	SupplierNames []string     `json:"supplierNames"`
	Templates     []Template   `json:"templates"`
	Archives      []Archive    `json:"archives"`
	CalendarYear  int          `json:"calendarYear"`
	CalendarMonth int          `json:"calendarMonth"` // 0-based
	DarkMode      bool         `json:"darkMode"`
	Version       string       `json:"version"`
	Users         []User       `json:"users"`
	CurrentUser   *CurrentUser `json:"currentUser"`
}

// Session is the event currently being planned.
type Session struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Dept         string `json:"dept"`
	Room         string `json:"room"`
	Tables       int    `json:"tables"`
	Guests       int    `json:"guests"`
	KitchenNotes string `json:"kitchenNotes"`
}

// Category groups dishes on the menu.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MenuItem is a dish of the catalog. CID references a Category.
type MenuItem struct {
	ID    string `json:"id"`
	CID   string `json:"cid"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// FruitRow compares the unit prices quoted by each supplier for one fruit.
// Prices is index-aligned with AppState.SupplierNames.
type FruitRow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	PerCapita Price      `json:"perCapita"` // kg per guest
	Prices    []Price    `json:"prices"`
	History   []PriceLog `json:"history"`
}

// PriceLog records a quoted price change.
type PriceLog struct {
	Supplier string    `json:"supplier"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

// Archive is a snapshot of a finished planning session. Archives are only
// ever prepended to AppState.Archives and never edited.
type Archive struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Session     Session    `json:"session"`
	SelectedIDs []string   `json:"selectedIds"`
	Items       []MenuItem `json:"items"`
	Fruit       []FruitRow `json:"fruit"`
}

// Template is a named, reusable dish selection.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SelectedIDs []string  `json:"selectedIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemByID returns the catalog item with the given id.
func (s *AppState) ItemByID(id string) (MenuItem, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}

// FruitIndex returns the position of the fruit row with the given id, or -1.
func (s *AppState) FruitIndex(id string) int {
	for i := range s.Fruit {
		if s.Fruit[i].ID == id {
			return i
		}
	}
	return -1
}

// HasCategory reports whether a category with the given id exists.
func (s *AppState) HasCategory(id string) bool {
	for _, c := range s.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// IsSelected reports whether the dish id is part of the current selection.
func (s *AppState) IsSelected(id string) bool {
	for _, sid := range s.SelectedIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// SelectedItems returns the selected dishes that still exist in the catalog,
// in selection order. Stale ids are skipped.
func (s *AppState) SelectedItems() []MenuItem {
	return ResolveItems(s.SelectedIDs, s.Items)
}

// ResolveItems maps ids onto items, dropping ids with no matching item.
func ResolveItems(ids []string, items []MenuItem) []MenuItem {
	byID := make(map[string]MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]MenuItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
