package branch

import "errors"

var (
	ErrNameExists = errors.New("branch name already exists")
	ErrForbidden  = errors.New("branch access denied")
)
