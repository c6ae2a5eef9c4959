package entity

import (
	"errors"
)

var (
	ErrUnknownKind  = errors.New("unknown entity kind")
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidData  = errors.New("invalid entity data")
	ErrKindMismatch = errors.New("entity kind mismatch")
)
