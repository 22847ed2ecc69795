package waste

import "errors"

var (
	ErrForbidden    = errors.New("waste access denied")
	ErrItemNotFound = errors.New("inventory item not found")
)
