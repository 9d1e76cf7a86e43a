package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/pricing"
	"github.com/XBigRoad/banquet-master/validation"
)

// DefaultItemPrice is used when a new dish is added without a price.
const DefaultItemPrice = 30

// ValidationError reports rejected command input.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Violations.Fields(), ", ")
}

func check(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// SessionPatch carries the session fields to change; nil fields are kept.
type SessionPatch struct {
	Date         *string `json:"date"`
	Dept         *string `json:"dept"`
	Room         *string `json:"room"`
	Tables       *int    `json:"tables"`
	Guests       *int    `json:"guests"`
	KitchenNotes *string `json:"kitchenNotes"`
}

// UpdateSession edits the current session. Table and guest counts below one
// fall back to 1 and 10.
func UpdateSession(p SessionPatch) Command {
	return func(s *models.AppState) error {
		v := validation.Violations{}
		if p.Date != nil && *p.Date != "" {
			validation.Date("date", *p.Date, v)
		}
		if err := check(v); err != nil {
			return err
		}
		if p.Date != nil {
			s.Session.Date = *p.Date
		}
		if p.Dept != nil {
			s.Session.Dept = *p.Dept
		}
		if p.Room != nil {
			s.Session.Room = *p.Room
		}
		if p.Tables != nil {
			s.Session.Tables = *p.Tables
			if s.Session.Tables < 1 {
				s.Session.Tables = 1
			}
		}
		if p.Guests != nil {
			s.Session.Guests = *p.Guests
			if s.Session.Guests < 1 {
				s.Session.Guests = pricing.DefaultGuests
			}
		}
		if p.KitchenNotes != nil {
			s.Session.KitchenNotes = *p.KitchenNotes
		}
		return nil
	}
}

// NewSession starts planning a new event dated today. Tables and guests are
// kept from the previous session.
func NewSession(today time.Time) Command {
	return func(s *models.AppState) error {
		s.Session.Date = today.Format("2006-01-02")
		s.Session.Dept = ""
		s.Session.Room = ""
		s.Session.KitchenNotes = ""
		s.SelectedIDs = []string{}
		return nil
	}
}

// ToggleSelect adds the dish to the selection or removes it.
func ToggleSelect(itemID string) Command {
	return func(s *models.AppState) error {
		for i, id := range s.SelectedIDs {
			if id == itemID {
				s.SelectedIDs = append(s.SelectedIDs[:i], s.SelectedIDs[i+1:]...)
				return nil
			}
		}
		if _, ok := s.ItemByID(itemID); !ok {
			return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		s.SelectedIDs = append(s.SelectedIDs, itemID)
		return nil
	}
}

// AddItem appends a dish to category cid. A nil price means the default.
func AddItem(id, cid, name string, price *float64) Command {
	return func(s *models.AppState) error {
		name = strings.TrimSpace(name)
		p := float64(DefaultItemPrice)
		if price != nil {
			p = *price
		}
		v := validation.Violations{}
		validation.Required("name", name, v)
		validation.NonNegativeFloat("price", p, v)
		if err := check(v); err != nil {
			return err
		}
		if !s.HasCategory(cid) {
			return fmt.Errorf("category %s: %w", cid, ErrNotFound)
		}
		s.Items = append(s.Items, models.MenuItem{
			ID:    id,
			CID:   cid,
			Name:  name,
			Price: models.Price(pricing.Round(p)),
		})
		return nil
	}
}

// SaveTemplate stores the current selection under name.
func SaveTemplate(id, name string, at time.Time) Command {
	return func(s *models.AppState) error {
		name = strings.TrimSpace(name)
		v := validation.Violations{}
		validation.Required("name", name, v)
		if err := check(v); err != nil {
			return err
		}
		s.Templates = append(s.Templates, models.Template{
			ID:          id,
			Name:        name,
			SelectedIDs: append([]string{}, s.SelectedIDs...),
			CreatedAt:   at,
		})
		return nil
	}
}

// ApplyTemplate replaces the selection with the template's.
func ApplyTemplate(templateID string) Command {
	return func(s *models.AppState) error {
		for _, t := range s.Templates {
			if t.ID == templateID {
				s.SelectedIDs = append([]string{}, t.SelectedIDs...)
				return nil
			}
		}
		return fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}
}

// ArchiveCurrent prepends a snapshot of the session, selection, catalog and
// fruit table.
func ArchiveCurrent(id string, at time.Time) Command {
	return func(s *models.AppState) error {
		snap := models.Archive{
			ID:          id,
			Timestamp:   at,
			Session:     s.Session,
			SelectedIDs: s.SelectedIDs,
			Items:       s.Items,
			Fruit:       s.Fruit,
		}.Clone()
		s.Archives = append([]models.Archive{snap}, s.Archives...)
		return nil
	}
}

// AddFruit appends a fruit row with the default per-guest quantity.
func AddFruit(id, name string) Command {
	return func(s *models.AppState) error {
		name = strings.TrimSpace(name)
		v := validation.Violations{}
		validation.Required("name", name, v)
		if err := check(v); err != nil {
			return err
		}
		s.Fruit = append(s.Fruit, models.FruitRow{
			ID:        id,
			Name:      name,
			PerCapita: 0.1,
			Prices:    make([]models.Price, models.SupplierCount),
			History:   []models.PriceLog{},
		})
		return nil
	}
}

// FruitPatch carries the fruit fields to change; nil fields are kept.
type FruitPatch struct {
	Name      *string       `json:"name"`
	PerCapita *models.Price `json:"perCapita"`
}

// MaxPerCapita bounds the planned quantity of one fruit, in kg per guest.
const MaxPerCapita = 10

// UpdateFruit edits a fruit row.
func UpdateFruit(fruitID string, p FruitPatch) Command {
	return func(s *models.AppState) error {
		v := validation.Violations{}
		var name string
		if p.Name != nil {
			name = strings.TrimSpace(*p.Name)
			validation.Required("name", name, v)
		}
		if p.PerCapita != nil {
			validation.RangeFloat("perCapita", p.PerCapita.Float(), 0, MaxPerCapita, v)
		}
		if err := check(v); err != nil {
			return err
		}
		i := s.FruitIndex(fruitID)
		if i < 0 {
			return fmt.Errorf("fruit %s: %w", fruitID, ErrNotFound)
		}
		f := &s.Fruit[i]
		if p.Name != nil {
			f.Name = name
		}
		if p.PerCapita != nil {
			f.PerCapita = *p.PerCapita
		}
		return nil
	}
}

// SetFruitPrice records supplier idx's quote for a fruit. Positive quotes are
// also appended to the row's history.
func SetFruitPrice(fruitID string, idx int, price models.Price, at time.Time) Command {
	return func(s *models.AppState) error {
		v := validation.Violations{}
		validation.IndexRange("supplier", idx, models.SupplierCount, v)
		validation.NonNegativeFloat("price", price.Float(), v)
		if err := check(v); err != nil {
			return err
		}
		i := s.FruitIndex(fruitID)
		if i < 0 {
			return fmt.Errorf("fruit %s: %w", fruitID, ErrNotFound)
		}
		f := &s.Fruit[i]
		f.Prices[idx] = price
		if price > 0 {
			f.History = append(f.History, models.PriceLog{
				Supplier: pricing.SupplierName(s.SupplierNames, idx),
				Price:    price.Float(),
				Date:     at,
			})
		}
		return nil
	}
}

// RenameSupplier renames supplier idx. A blank name restores the lettered
// label.
func RenameSupplier(idx int, name string) Command {
	return func(s *models.AppState) error {
		v := validation.Violations{}
		validation.IndexRange("supplier", idx, models.SupplierCount, v)
		if err := check(v); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = pricing.FallbackSupplierName(idx)
		}
		s.SupplierNames[idx] = name
		return nil
	}
}

// ShiftCalendar moves the calendar cursor by delta months.
func ShiftCalendar(delta int) Command {
	return func(s *models.AppState) error {
		m := s.CalendarYear*12 + s.CalendarMonth + delta
		s.CalendarYear = m / 12
		s.CalendarMonth = m % 12
		return nil
	}
}

// ToggleDarkMode flips the theme preference.
func ToggleDarkMode() Command {
	return func(s *models.AppState) error {
		s.DarkMode = !s.DarkMode
		return nil
	}
}

// SetCurrentUser points the session at u.
func SetCurrentUser(u models.CurrentUser) Command {
	return func(s *models.AppState) error {
		s.CurrentUser = &u
		return nil
	}
}

// ClearCurrentUser ends the session.
func ClearCurrentUser() Command {
	return func(s *models.AppState) error {
		s.CurrentUser = nil
		return nil
	}
}
