package dataset

import "errors"

var (
	ErrMissingID     = errors.New("entity without id")
	ErrInvalidRecord = errors.New("invalid stored record")
)
