package services

import (
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/pricing"
)

// NoDepartment is shown when a month has no archives.
const NoDepartment = "—"

// MonthStats are the dashboard figures of one month.
type MonthStats struct {
	Month   string  `json:"month"` // YYYY-MM
	Count   int     `json:"count"`
	Budget  float64 `json:"budget"`
	TopDept string  `json:"topDept"`
}

type DashboardService struct{}

func NewDashboardService() *DashboardService { return &DashboardService{} }

// Stats counts the archives of yearMonth, sums their fruit budgets and picks
// the busiest department.
func (s *DashboardService) Stats(st *models.AppState, yearMonth string) MonthStats {
	top, ok := pricing.TopDepartment(st.Archives, yearMonth)
	if !ok {
		top = NoDepartment
	}
	return MonthStats{
		Month:   yearMonth,
		Count:   len(pricing.MonthArchives(st.Archives, yearMonth)),
		Budget:  pricing.MonthlyBudgetRollup(st.Archives, yearMonth),
		TopDept: top,
	}
}
