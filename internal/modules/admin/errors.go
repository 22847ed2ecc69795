package admin

import "errors"

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrBranchRequired   = errors.New("branch role requires a branch")
	ErrBranchNotAllowed = errors.New("global role must not carry a branch")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrEmailExists      = errors.New("email already exists")
)
