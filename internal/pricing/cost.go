package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XBigRoad/banquet-master/internal/models"
)

// Summary is the menu cost of the current session.
type Summary struct {
	Count    int     `json:"count"`
	PerTable float64 `json:"perTable"`
	Tables   int     `json:"tables"`
	Total    float64 `json:"total"`
}

// CostSummary prices the selected dishes. Stale selections are ignored.
func CostSummary(s *models.AppState) Summary {
	perTable := decimal.Zero
	selected := s.SelectedItems()
	for _, it := range selected {
		perTable = perTable.Add(decimal.NewFromFloat(it.Price.Float()))
	}
	tables := s.Session.Tables
	if tables < 1 {
		tables = 1
	}
	return Summary{
		Count:    len(selected),
		PerTable: perTable.Round(2).InexactFloat64(),
		Tables:   tables,
		Total:    perTable.Mul(decimal.NewFromInt(int64(tables))).Round(2).InexactFloat64(),
	}
}

// SupplierName returns the display name of the supplier at idx, falling back
// to a lettered label when the configured name is blank.
func SupplierName(names []string, idx int) string {
	if idx >= 0 && idx < len(names) && strings.TrimSpace(names[idx]) != "" {
		return names[idx]
	}
	return FallbackSupplierName(idx)
}

// FallbackSupplierName is the lettered label of the supplier at idx.
func FallbackSupplierName(idx int) string {
	return fmt.Sprintf("供应商 %c", rune('A'+idx))
}

// Guests returns the session guest count or the planning default.
func Guests(s models.Session) int {
	if s.Guests > 0 {
		return s.Guests
	}
	return DefaultGuests
}

// ProcurementLine is one fruit to order from a supplier.
type ProcurementLine struct {
	FruitID  string  `json:"fruitId"`
	Name     string  `json:"name"`
	Spec     string  `json:"spec"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Budget   float64 `json:"budget"`
}

// SupplierGroup gathers the fruit a supplier wins.
type SupplierGroup struct {
	Supplier string            `json:"supplier"`
	Index    int               `json:"index"`
	Count    int               `json:"count"`
	Budget   float64           `json:"budget"`
	Lines    []ProcurementLine `json:"lines"`
}

// Procurement groups the named, priced fruit rows by winning supplier. Groups
// appear in the order their first row appears.
func Procurement(s *models.AppState) []SupplierGroup {
	guests := Guests(s.Session)
	groups := make([]SupplierGroup, 0)
	pos := make(map[string]int)
	for _, f := range s.Fruit {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		idx, ok := MinIndex(f.Prices)
		if !ok {
			continue
		}
		name := SupplierName(s.SupplierNames, idx)
		gi, seen := pos[name]
		if !seen {
			gi = len(groups)
			pos[name] = gi
			groups = append(groups, SupplierGroup{Supplier: name, Index: idx})
		}
		qty := RequiredQuantity(f.PerCapita.Float(), guests)
		price := f.Prices[idx].Float()
		line := ProcurementLine{
			FruitID:  f.ID,
			Name:     f.Name,
			Spec:     PerCapitaSpec(f.PerCapita.Float()),
			Quantity: qty,
			Price:    price,
			Budget:   LineBudget(qty, price),
		}
		g := &groups[gi]
		g.Lines = append(g.Lines, line)
		g.Count++
		g.Budget = Round(g.Budget + line.Budget)
	}
	return groups
}

// SupplierOrder returns the group of the named supplier, if it wins anything.
func SupplierOrder(s *models.AppState, supplier string) (SupplierGroup, bool) {
	for _, g := range Procurement(s) {
		if g.Supplier == supplier {
			return g, true
		}
	}
	return SupplierGroup{}, false
}

// PerCapitaSpec formats a per-guest quantity as shown on order sheets.
func PerCapitaSpec(perCapita float64) string {
	return strconv.FormatFloat(perCapita, 'f', -1, 64) + "kg/人"
}
