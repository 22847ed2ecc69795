package permission

import "wastetrack/internal/domain"

type Resource string

const (
	ResourceBranch    Resource = "branch"
	ResourceUser      Resource = "user"
	ResourceInventory Resource = "inventory"
	ResourceWaste     Resource = "waste"
	ResourceSecurity  Resource = "security"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	// ActionManage grants every other action on the same resource.
	ActionManage Action = "manage"
)

type Scope string

const (
	ScopeOwn    Scope = "OWN"
	ScopeBranch Scope = "BRANCH"
	ScopeGlobal Scope = "GLOBAL"
)

type Permission struct {
	Resource Resource
	Action   Action
	Scope    Scope
}

// rolePermissions is the static grant table. It is never mutated at
// runtime; changing access rules is a code change, not a data change.
var rolePermissions = map[domain.Role][]Permission{
	domain.RoleSuperAdmin: {
		{ResourceBranch, ActionManage, ScopeGlobal},
		{ResourceUser, ActionManage, ScopeGlobal},
		{ResourceInventory, ActionManage, ScopeGlobal},
		{ResourceWaste, ActionManage, ScopeGlobal},
		{ResourceSecurity, ActionRead, ScopeGlobal},
	},
	domain.RoleBranchAdmin: {
		{ResourceBranch, ActionRead, ScopeBranch},
		{ResourceUser, ActionRead, ScopeOwn},
		{ResourceUser, ActionUpdate, ScopeOwn},
		{ResourceInventory, ActionManage, ScopeBranch},
		{ResourceWaste, ActionCreate, ScopeBranch},
		{ResourceWaste, ActionRead, ScopeBranch},
		{ResourceWaste, ActionExport, ScopeBranch},
		{ResourceWaste, ActionUpdate, ScopeOwn},
		{ResourceWaste, ActionDelete, ScopeOwn},
	},
}

// Principal is the acting identity as carried by a verified access token.
type Principal struct {
	UserID   int64
	Role     domain.Role
	BranchID *int64
}

// Target describes the concrete record an action touches. A nil target
// means a collection-level action; the handler is then responsible for
// scoping the query to what the principal may see.
type Target struct {
	BranchID *int64
	OwnerID  *int64
}

var scopeRank = map[Scope]int{ScopeOwn: 1, ScopeBranch: 2, ScopeGlobal: 3}

// Lookup returns the widest scope the role holds for the resource/action
// pair, accounting for manage subsumption.
func Lookup(role domain.Role, res Resource, act Action) (Scope, bool) {
	var best Scope
	found := false
	for _, p := range rolePermissions[role] {
		if p.Resource != res {
			continue
		}
		if p.Action != act && p.Action != ActionManage {
			continue
		}
		if !found || scopeRank[p.Scope] > scopeRank[best] {
			best = p.Scope
			found = true
		}
	}
	return best, found
}

// Authorize decides whether the principal may perform the action on the
// target. Scope semantics:
//
//	GLOBAL: always allowed.
//	BRANCH: principal must carry a branch; a target with a branch must be
//	        the same branch; a nil target (collection) passes and the
//	        handler scopes the query.
//	OWN:    the target's owner must be the principal; a target without an
//	        owner falls back to branch equality.
func Authorize(p Principal, res Resource, act Action, target *Target) bool {
	scope, ok := Lookup(p.Role, res, act)
	if !ok {
		return false
	}

	switch scope {
	case ScopeGlobal:
		return true
	case ScopeBranch:
		if p.BranchID == nil {
			return false
		}
		if target == nil {
			return true
		}
		if target.BranchID == nil {
			return false
		}
		return *target.BranchID == *p.BranchID
	case ScopeOwn:
		if target == nil {
			return false
		}
		if target.OwnerID != nil {
			return *target.OwnerID == p.UserID
		}
		if p.BranchID != nil && target.BranchID != nil {
			return *target.BranchID == *p.BranchID
		}
		return false
	}
	return false
}
