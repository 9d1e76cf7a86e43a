package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/pricing"
)

// MenuCard is one selectable dish.
type MenuCard struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Selected bool    `json:"selected"`
}

// MenuSection lists the dishes of one category.
type MenuSection struct {
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Items      []MenuCard `json:"items"`
}

// Menu is the menu editor screen.
type Menu struct {
	Session  models.Session  `json:"session"`
	Sections []MenuSection   `json:"sections"`
	Summary  pricing.Summary `json:"summary"`
}

// BuildMenu groups the catalog by category, in category order.
func BuildMenu(st *models.AppState) Menu {
	m := Menu{Session: st.Session, Sections: make([]MenuSection, 0, len(st.Categories)), Summary: pricing.CostSummary(st)}
	for _, c := range st.Categories {
		sec := MenuSection{CategoryID: c.ID, Name: c.Name, Items: []MenuCard{}}
		for _, it := range st.Items {
			if it.CID != c.ID {
				continue
			}
			sec.Items = append(sec.Items, MenuCard{ID: it.ID, Name: it.Name, Price: it.Price.Float(), Selected: st.IsSelected(it.ID)})
		}
		m.Sections = append(m.Sections, sec)
	}
	return m
}

// FruitLine is one row of the supplier comparison table. Prices, Winner and
// WinnerLabel are only filled for viewers allowed to see prices.
type FruitLine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PerCapita   float64   `json:"perCapita"`
	Total       float64   `json:"total"`
	Prices      []float64 `json:"prices,omitempty"`
	Winner      int       `json:"winner"`
	WinnerLabel string    `json:"winnerLabel,omitempty"`
	Budget      float64   `json:"budget,omitempty"`
}

// FruitTable is the supplier comparison screen.
type FruitTable struct {
	Guests     int         `json:"guests"`
	ShowPrices bool        `json:"showPrices"`
	Suppliers  []string    `json:"suppliers,omitempty"`
	Rows       []FruitLine `json:"rows"`
	Budget     float64     `json:"budget,omitempty"`
}

// BuildFruitTable computes totals and winners for every fruit row.
func BuildFruitTable(st *models.AppState, showPrices bool, lang string) FruitTable {
	guests := pricing.Guests(st.Session)
	ft := FruitTable{Guests: guests, ShowPrices: showPrices, Rows: make([]FruitLine, 0, len(st.Fruit))}
	if showPrices {
		for i := range models.SupplierCount {
			ft.Suppliers = append(ft.Suppliers, pricing.SupplierName(st.SupplierNames, i))
		}
	}
	var budget float64
	for _, f := range st.Fruit {
		line := FruitLine{
			ID:        f.ID,
			Name:      f.Name,
			PerCapita: f.PerCapita.Float(),
			Total:     pricing.RequiredQuantity(f.PerCapita.Float(), guests),
			Winner:    -1,
		}
		if showPrices {
			line.Prices = make([]float64, len(f.Prices))
			for i, p := range f.Prices {
				line.Prices[i] = p.Float()
			}
			line.WinnerLabel = i18n.T(lang, "winner.awaiting")
			if idx, ok := pricing.MinIndex(f.Prices); ok {
				price := f.Prices[idx].Float()
				line.Winner = idx
				line.WinnerLabel = fmt.Sprintf("%s (¥%s)", pricing.SupplierName(st.SupplierNames, idx), Money(price))
				line.Budget = pricing.LineBudget(line.Total, price)
				budget += line.Budget
			}
		}
		ft.Rows = append(ft.Rows, line)
	}
	if showPrices {
		ft.Budget = pricing.Round(budget)
	}
	return ft
}

// PrintItem is one dish on a printed menu. Price is zero on the guest copy.
type PrintItem struct {
	Name  string
	Price float64
}

// PrintGroup is a category heading with its selected dishes.
type PrintGroup struct {
	Category string
	Items    []PrintItem
}

// PrintCopy is one page of the printed menu.
type PrintCopy struct {
	Kitchen bool
	Date    string
	Dept    string
	Room    string
	Tables  int
	Notes   string
	Groups  []PrintGroup
}

// PrintCopies builds the guest copy, which carries no prices, and the kitchen
// copy, which carries prices and the kitchen notes. Dishes are grouped by
// category in the order the categories first appear in the selection.
func PrintCopies(st *models.AppState) (guest, kitchen PrintCopy) {
	s := st.Session
	tables := s.Tables
	if tables < 1 {
		tables = 1
	}
	base := PrintCopy{Date: s.Date, Dept: orDash(s.Dept), Room: orDash(s.Room), Tables: tables}
	guest, kitchen = base, base
	kitchen.Kitchen = true
	kitchen.Notes = s.KitchenNotes

	names := make(map[string]string, len(st.Categories))
	for _, c := range st.Categories {
		names[c.ID] = c.Name
	}
	pos := make(map[string]int)
	for _, it := range st.SelectedItems() {
		cat, ok := names[it.CID]
		if !ok {
			continue
		}
		gi, seen := pos[it.CID]
		if !seen {
			gi = len(guest.Groups)
			pos[it.CID] = gi
			guest.Groups = append(guest.Groups, PrintGroup{Category: cat})
			kitchen.Groups = append(kitchen.Groups, PrintGroup{Category: cat})
		}
		guest.Groups[gi].Items = append(guest.Groups[gi].Items, PrintItem{Name: it.Name})
		kitchen.Groups[gi].Items = append(kitchen.Groups[gi].Items, PrintItem{Name: it.Name, Price: it.Price.Float()})
	}
	return guest, kitchen
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// OrderSheet is the purchase order sent to one supplier.
type OrderSheet struct {
	Supplier string
	Date     string
	Guests   int
	Lines    []pricing.ProcurementLine
}

// BuildOrderSheet returns the order of the named supplier. The session date
// falls back to today.
func BuildOrderSheet(st *models.AppState, supplier string, today time.Time) (OrderSheet, bool) {
	g, ok := pricing.SupplierOrder(st, supplier)
	if !ok {
		return OrderSheet{}, false
	}
	date := st.Session.Date
	if date == "" {
		date = today.Format(time.DateOnly)
	}
	return OrderSheet{Supplier: g.Supplier, Date: date, Guests: pricing.Guests(st.Session), Lines: g.Lines}, true
}

// CalendarDay is one cell of the month grid. Padding cells from the adjacent
// months have OtherMonth set and no date.
type CalendarDay struct {
	Day        int      `json:"day"`
	Date       string   `json:"date,omitempty"`
	OtherMonth bool     `json:"otherMonth,omitempty"`
	Today      bool     `json:"today,omitempty"`
	Events     []string `json:"events,omitempty"`
}

// Calendar is a Sunday-first month grid of archived events.
type Calendar struct {
	Year     int           `json:"year"`
	Month    int           `json:"month"` // 0-based
	Title    string        `json:"title"`
	Weekdays []string      `json:"weekdays"`
	Days     []CalendarDay `json:"days"`
}

var weekdays = map[string][]string{
	"zh": {"日", "一", "二", "三", "四", "五", "六"},
	"en": {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
}

// BuildCalendar lays out the month the calendar cursor points at. Each day
// lists the departments of the archives held that day.
func BuildCalendar(st *models.AppState, today time.Time, lang string) Calendar {
	year, month := st.CalendarYear, st.CalendarMonth
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	total := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())
	prevLast := first.AddDate(0, 0, -1).Day()

	events := make(map[string][]string)
	for _, a := range st.Archives {
		if a.Session.Date == "" {
			continue
		}
		events[a.Session.Date] = append(events[a.Session.Date], deptLabel(a.Session.Dept, lang))
	}

	wd, ok := weekdays[lang]
	if !ok {
		wd = weekdays[i18n.Default]
	}
	cal := Calendar{Year: year, Month: month, Title: calendarTitle(first, lang), Weekdays: wd}
	for i := lead - 1; i >= 0; i-- {
		cal.Days = append(cal.Days, CalendarDay{Day: prevLast - i, OtherMonth: true})
	}
	todayStr := today.Format(time.DateOnly)
	for d := 1; d <= total; d++ {
		date := first.AddDate(0, 0, d-1).Format(time.DateOnly)
		cal.Days = append(cal.Days, CalendarDay{Day: d, Date: date, Today: date == todayStr, Events: events[date]})
	}
	trail := (7 - (lead+total)%7) % 7
	for d := 1; d <= trail; d++ {
		cal.Days = append(cal.Days, CalendarDay{Day: d, OtherMonth: true})
	}
	return cal
}

func calendarTitle(first time.Time, lang string) string {
	if lang == "en" {
		return first.Format("January 2006")
	}
	return fmt.Sprintf("%d年%d月", first.Year(), int(first.Month()))
}

func deptLabel(dept, lang string) string {
	if strings.TrimSpace(dept) == "" {
		return i18n.T(lang, "unnamed")
	}
	return dept
}

// DayArchive summarises one archived event of a day.
type DayArchive struct {
	ID     string   `json:"id"`
	Dept   string   `json:"dept"`
	Room   string   `json:"room"`
	Tables int      `json:"tables"`
	Dishes []string `json:"dishes"`
}

// DayDetail lists the archives held on date, resolving dish names against
// each archive's own catalog snapshot.
func DayDetail(archives []models.Archive, date, lang string) []DayArchive {
	out := []DayArchive{}
	for _, a := range archives {
		if a.Session.Date != date {
			continue
		}
		room := a.Session.Room
		if strings.TrimSpace(room) == "" {
			room = i18n.T(lang, "room.unassigned")
		}
		tables := a.Session.Tables
		if tables < 1 {
			tables = 1
		}
		dishes := []string{}
		for _, it := range models.ResolveItems(a.SelectedIDs, a.Items) {
			if it.Name != "" {
				dishes = append(dishes, it.Name)
			}
		}
		out = append(out, DayArchive{ID: a.ID, Dept: deptLabel(a.Session.Dept, lang), Room: room, Tables: tables, Dishes: dishes})
	}
	return out
}
