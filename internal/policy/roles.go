package policy

import (
	"context"

	"github.com/XBigRoad/banquet-master/gate"
	"github.com/XBigRoad/banquet-master/i18n"
	"github.com/XBigRoad/banquet-master/internal/models"
)

// Resource types known to the role profiles.
const (
	ResourceMenu     = "menu"
	ResourceTemplate = "template"
	ResourceArchive  = "archive"
	ResourceFruit    = "fruit"
	ResourcePrice    = "price"
	ResourceSupplier = "supplier"
	ResourceDocument = "document"
	ResourceSync     = "sync"
)

// RoleGate maps user roles onto static permission profiles. The answers only
// drive what the screens show; handlers do not refuse requests by role.
type RoleGate struct {
	gate *gate.Gate[models.Role]
}

// NewRoleGate builds the admin, manager and user profiles.
func NewRoleGate() *RoleGate {
	r := gate.NewStaticResolver[models.Role]()
	r.Set(models.RoleAdmin, gate.NewStaticProfile(string(models.RoleAdmin), "管理员", gate.PermissionSuperAdmin))
	r.Set(models.RoleManager, gate.NewStaticProfile(string(models.RoleManager), "经理",
		gate.NewPermission(ResourceMenu, gate.WildcardAll),
		gate.NewPermission(ResourceTemplate, gate.WildcardAll),
		gate.NewPermission(ResourceArchive, gate.WildcardAll),
		gate.NewPermission(ResourceFruit, gate.ActionList),
		gate.NewPermission(ResourceFruit, gate.ActionView),
		gate.NewPermission(ResourceFruit, gate.ActionCreate),
		gate.NewPermission(ResourceFruit, gate.ActionUpdate),
		gate.NewPermission(ResourceDocument, gate.ActionExport),
		gate.NewPermission(ResourceDocument, gate.ActionPrint),
		gate.NewPermission(ResourceSync, gate.ActionView),
	))
	r.Set(models.RoleUser, gate.NewStaticProfile(string(models.RoleUser), "用户",
		gate.NewPermission(ResourceMenu, gate.ActionList),
		gate.NewPermission(ResourceMenu, gate.ActionView),
		gate.NewPermission(ResourceArchive, gate.ActionList),
		gate.NewPermission(ResourceArchive, gate.ActionView),
		gate.NewPermission(ResourceFruit, gate.ActionList),
		gate.NewPermission(ResourceDocument, gate.ActionPrint),
		gate.NewPermission(ResourceSync, gate.ActionView),
	))
	return &RoleGate{gate: gate.New[models.Role](r)}
}

// Can reports whether role grants action on resourceType.
func (g *RoleGate) Can(ctx context.Context, role models.Role, action gate.Action, resourceType string) bool {
	return g.gate.Can(ctx, role, action, resourceType)
}

// CanViewPrices reports whether supplier price columns are shown to role.
func (g *RoleGate) CanViewPrices(ctx context.Context, role models.Role) bool {
	return g.Can(ctx, role, gate.ActionView, ResourcePrice)
}

// Permissions lists the permissions of role, or nil for an unknown role.
func (g *RoleGate) Permissions(ctx context.Context, role models.Role) []gate.Permission {
	p := g.gate.Profile(ctx, role)
	if p == nil {
		return nil
	}
	return p.Permissions()
}

// RoleLabel is the display name of role in lang. Unknown roles show as is.
func RoleLabel(role models.Role, lang string) string {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleUser:
		return i18n.T(lang, "role."+string(role))
	}
	return string(role)
}
