package inventory

import "errors"

var (
	ErrForbidden      = errors.New("inventory access denied")
	ErrBranchNotFound = errors.New("branch not found")
)
