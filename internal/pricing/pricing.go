// Package pricing holds the supplier comparison and cost arithmetic. Every
// function is pure: it reads the values it is given and returns a result.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/XBigRoad/banquet-master/internal/models"
)

// UnnamedDepartment replaces blank department names in statistics.
const UnnamedDepartment = "未命名"

// DefaultGuests is used when the session carries no guest count.
const DefaultGuests = 10

// Round rounds half away from zero to two decimals.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// MinIndex returns the index of the smallest strictly positive price. The
// first occurrence wins ties. ok is false when no price is positive.
func MinIndex(prices []models.Price) (idx int, ok bool) {
	idx = -1
	var best float64
	for i, p := range prices {
		v := float64(p)
		if v > 0 && (idx < 0 || v < best) {
			idx, best = i, v
		}
	}
	return idx, idx >= 0
}

// RequiredQuantity scales a per-guest quantity to the whole event.
func RequiredQuantity(perCapita float64, guests int) float64 {
	return decimal.NewFromFloat(perCapita).
		Mul(decimal.NewFromInt(int64(guests))).
		Round(2).
		InexactFloat64()
}

// LineBudget is the cost of buying quantity at the winning unit price.
func LineBudget(quantity, price float64) float64 {
	return decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(price)).
		Round(2).
		InexactFloat64()
}

// RowBudget returns the budget of one fruit row for the given guest count.
// ok is false when the row has no winning supplier.
func RowBudget(row models.FruitRow, guests int) (float64, bool) {
	idx, ok := MinIndex(row.Prices)
	if !ok {
		return 0, false
	}
	qty := RequiredQuantity(row.PerCapita.Float(), guests)
	return LineBudget(qty, row.Prices[idx].Float()), true
}

// InMonth reports whether the archive's session date falls in yearMonth
// ("YYYY-MM"). Archives without a date never match.
func InMonth(a models.Archive, yearMonth string) bool {
	return a.Session.Date != "" && strings.HasPrefix(a.Session.Date, yearMonth)
}

// MonthArchives filters archives to the given month, keeping their order.
func MonthArchives(archives []models.Archive, yearMonth string) []models.Archive {
	out := make([]models.Archive, 0)
	for _, a := range archives {
		if InMonth(a, yearMonth) {
			out = append(out, a)
		}
	}
	return out
}

// MonthlyBudgetRollup sums the fruit budget of every archive of the month.
// Archives without a guest count contribute nothing.
func MonthlyBudgetRollup(archives []models.Archive, yearMonth string) float64 {
	total := decimal.Zero
	for _, a := range archives {
		if !InMonth(a, yearMonth) || a.Session.Guests <= 0 {
			continue
		}
		for _, f := range a.Fruit {
			if b, ok := RowBudget(f, a.Session.Guests); ok {
				total = total.Add(decimal.NewFromFloat(b))
			}
		}
	}
	return total.Round(2).InexactFloat64()
}

// TopDepartment returns the most frequent department of the month. On a tie
// the department seen first wins. ok is false when the month has no archives.
func TopDepartment(archives []models.Archive, yearMonth string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, a := range archives {
		if !InMonth(a, yearMonth) {
			continue
		}
		dept := strings.TrimSpace(a.Session.Dept)
		if dept == "" {
			dept = UnnamedDepartment
		}
		if _, seen := counts[dept]; !seen {
			order = append(order, dept)
		}
		counts[dept]++
	}
	top, best := "", 0
	for _, dept := range order {
		if counts[dept] > best {
			top, best = dept, counts[dept]
		}
	}
	return top, best > 0
}
