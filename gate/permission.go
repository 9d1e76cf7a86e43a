package gate

import "strings"

// Action is the verb half of a permission.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionList   Action = "list"
	ActionExport Action = "export"
	ActionPrint  Action = "print"
)

// WildcardAll stands for any resource type or any action.
const WildcardAll = "*"

// Permission is a "resource:action" grant such as "menu:create". Either half
// may be WildcardAll.
type Permission string

// PermissionSuperAdmin grants everything.
const PermissionSuperAdmin Permission = WildcardAll + ":" + WildcardAll

func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits p into its halves. A permission without a colon yields two
// empty strings.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether holding p allows requested.
func (p Permission) Matches(requested Permission) bool {
	if p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res != WildcardAll && res != reqRes {
		return false
	}
	return string(act) == WildcardAll || act == reqAct
}
