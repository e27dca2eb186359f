package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrNotVerified  = errors.New("account not verified")
)

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
