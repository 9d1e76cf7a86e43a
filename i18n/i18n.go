// Package i18n holds the zh and en message catalogs.
package i18n

import (
	"context"
	"strings"
)

// Default is used when no supported language is requested.
const Default = "zh"

var catalogs = map[string]map[string]string{
	"zh": {
		"required":              "必填",
		"must_not_be_negative":  "不能为负数",
		"out_of_range":          "超出范围",
		"invalid_date":          "日期格式应为 YYYY-MM-DD",
		"invalid_month":         "月份格式应为 YYYY-MM",
		"invalid_json":          "请求格式错误",
		"too_large":             "内容过大",
		"validation_failed":     "输入有误",
		"confirmation_required": "请确认操作",
		"not_found":             "未找到",
		"unauthorized":          "请先登录",
		"server_error":          "服务器错误",

		"login.missing":       "请输入用户名和密码",
		"login.unknown_user":  "用户名不存在",
		"login.bad_password":  "密码错误",
		"login.welcome":       "欢迎回来",
		"logout.confirm":      "确定要退出登录吗？",
		"logout.done":         "已退出登录",
		"import.parse_failed": "JSON 解析失败",
		"import.done":         "已导入备份",
		"export.done":         "已导出备份",
		"reset.done":          "已恢复出厂设置",
		"archive.done":        "已归档",
		"template.saved":      "模板已保存",
		"template.applied":    "已应用模板",
		"item.added":          "已添加菜品",
		"session.new":         "已新建宴会",
		"sync.uploading":      "正在上传...",
		"sync.downloading":    "正在同步...",
		"sync.online":         "云端同步正常",
		"sync.offline":        "离线模式",
		"sync.in_flight":      "同步进行中",
		"sync.not_configured": "未配置云端",
		"sync.pushed":         "云端已更新",
		"sync.pulled":         "已同步最新数据",
		"sync.push_failed":    "上传失败",
		"sync.pull_failed":    "同步失败",
		"unnamed":             "未命名",
		"room.unassigned":     "未指定包厢",
		"winner.pending":      "待定",
		"winner.awaiting":     "待输入",
		"role.admin":          "管理员",
		"role.manager":        "经理",
		"role.user":           "用户",
		"print.guest_copy":    "宾客菜单",
		"print.kitchen_copy":  "厨房单",
		"print.order":         "采购单",
		"print.supplier":      "供应商",
		"print.notes":         "备注",
		"print.total":         "合计",
		"print.date":          "日期",
		"print.dept":          "部门",
		"print.room":          "包厢",
		"print.tables":        "桌数",
		"print.guests":        "人数",
		"print.item":          "品名",
		"print.spec":          "规格",
		"print.quantity":      "数量(kg)",
		"print.price":         "单价(¥)",
		"print.budget":        "预算(¥)",
		"print.per_table":     "每桌",
		"print.empty":         "暂无内容",
	},
	"en": {
		"required":              "Required",
		"must_not_be_negative":  "Must not be negative",
		"out_of_range":          "Out of range",
		"invalid_date":          "Date must be YYYY-MM-DD",
		"invalid_month":         "Month must be YYYY-MM",
		"invalid_json":          "Malformed request",
		"too_large":             "Request too large",
		"validation_failed":     "Invalid input",
		"confirmation_required": "Please confirm",
		"not_found":             "Not found",
		"unauthorized":          "Please sign in",
		"server_error":          "Server error",

		"login.missing":       "Enter username and password",
		"login.unknown_user":  "Unknown username",
		"login.bad_password":  "Wrong password",
		"login.welcome":       "Welcome back",
		"logout.confirm":      "Sign out?",
		"logout.done":         "Signed out",
		"import.parse_failed": "Could not parse JSON",
		"import.done":         "Backup imported",
		"export.done":         "Backup exported",
		"reset.done":          "Factory settings restored",
		"archive.done":        "Archived",
		"template.saved":      "Template saved",
		"template.applied":    "Template applied",
		"item.added":          "Dish added",
		"session.new":         "New banquet started",
		"sync.uploading":      "Uploading...",
		"sync.downloading":    "Syncing...",
		"sync.online":         "Cloud sync OK",
		"sync.offline":        "Offline mode",
		"sync.in_flight":      "Sync in progress",
		"sync.not_configured": "Cloud not configured",
		"sync.pushed":         "Cloud updated",
		"sync.pulled":         "Latest data synced",
		"sync.push_failed":    "Upload failed",
		"sync.pull_failed":    "Sync failed",
		"unnamed":             "Unnamed",
		"room.unassigned":     "No room",
		"winner.pending":      "Pending",
		"winner.awaiting":     "Awaiting prices",
		"role.admin":          "Administrator",
		"role.manager":        "Manager",
		"role.user":           "User",
		"print.guest_copy":    "Guest menu",
		"print.kitchen_copy":  "Kitchen copy",
		"print.order":         "Purchase order",
		"print.supplier":      "Supplier",
		"print.notes":         "Notes",
		"print.total":         "Total",
		"print.date":          "Date",
		"print.dept":          "Department",
		"print.room":          "Room",
		"print.tables":        "Tables",
		"print.guests":        "Guests",
		"print.item":          "Item",
		"print.spec":          "Spec",
		"print.quantity":      "Qty (kg)",
		"print.price":         "Unit (¥)",
		"print.budget":        "Budget (¥)",
		"print.per_table":     "Per table",
		"print.empty":         "Nothing yet",
	},
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// T translates code. Unknown languages use the default catalog; unknown
// codes are returned as is.
func T(lang, code string) string {
	if m, ok := catalogs[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalogs[Default][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported language of an Accept-Language
// header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(base) {
			return base
		}
	}
	return Default
}

type ctxKey struct{}

// WithLang stores lang in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the language stored by WithLang, or Default.
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Default
}
