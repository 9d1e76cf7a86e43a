package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Seeded admin account. The hash is the SHA-256 hex digest of "admin123".
const (
	DefaultAdminID   = "admin_001"
	DefaultAdminHash = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
)

// DefaultSupplierNames are the supplier labels of a fresh document.
var DefaultSupplierNames = []string{"供应商 A", "供应商 B", "供应商 C"}

// NewID returns a fresh identifier for items, fruit rows, templates and archives.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Defaults builds the factory document. now sets the session date, the calendar
// cursor and the seeded user's creation time.
func Defaults(now time.Time) AppState {
	return AppState{
		Session: Session{
			Date:   now.Format("2006-01-02"),
			Tables: 1,
			Guests: 10,
		},
		Categories: []Category{
			{ID: "c1", Name: "冷菜 Cold Dishes"},
			{ID: "c2", Name: "热菜 Hot Dishes"},
			{ID: "c3", Name: "汤羹 Soup"},
			{ID: "c4", Name: "主食 Staple"},
			{ID: "c5", Name: "酒水 Drinks"},
		},
		Items: []MenuItem{
			{ID: "i1", CID: "c1", Name: "拍黄瓜", Price: 18},
			{ID: "i2", CID: "c1", Name: "老醋花生", Price: 22},
			{ID: "i3", CID: "c1", Name: "蒜泥白肉", Price: 38},
			{ID: "i4", CID: "c2", Name: "宫保鸡丁", Price: 45},
			{ID: "i5", CID: "c2", Name: "红烧肉", Price: 68},
			{ID: "i6", CID: "c2", Name: "水煮鱼", Price: 88},
			{ID: "i7", CID: "c3", Name: "西湖牛肉羹", Price: 32},
			{ID: "i8", CID: "c3", Name: "紫菜蛋花汤", Price: 15},
			{ID: "i9", CID: "c4", Name: "扬州炒饭", Price: 25},
			{ID: "i10", CID: "c4", Name: "小笼包", Price: 28},
			{ID: "i11", CID: "c5", Name: "可乐", Price: 8},
			{ID: "i12", CID: "c5", Name: "雪花啤酒", Price: 12},
		},
		SelectedIDs: []string{},
		Fruit: []FruitRow{
			{ID: "f1", Name: "富士苹果", PerCapita: 0.2, Prices: []Price{8.5, 9.0, 8.8}, History: []PriceLog{}},
			{ID: "f2", Name: "香蕉", PerCapita: 0.3, Prices: []Price{6.0, 5.8, 6.2}, History: []PriceLog{}},
			{ID: "f3", Name: "西瓜", PerCapita: 0.5, Prices: []Price{4.5, 4.8, 4.2}, History: []PriceLog{}},
		},
		SupplierNames: append([]string(nil), DefaultSupplierNames...),
		Templates:     []Template{},
		Archives:      []Archive{},
		CalendarYear:  now.Year(),
		CalendarMonth: int(now.Month()) - 1,
		Version:       SchemaVersion,
		Users:         DefaultUsers(now),
	}
}

// DefaultUsers returns the seeded accounts.
func DefaultUsers(now time.Time) []User {
	return []User{{
		ID:           DefaultAdminID,
		Username:     "admin",
		PasswordHash: DefaultAdminHash,
		Role:         RoleAdmin,
		Name:         "系统管理员",
		Email:        "admin@company.com",
		CreatedAt:    now,
	}}
}
