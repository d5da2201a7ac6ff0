package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Ошибки хранилища. Gorm-овские сентинелы наружу не выходят:
// слой базы переводит их в свои до возврата вызывающему.
var (
	ErrNotFound    = errors.New("room not found")
	ErrConflict    = errors.New("room already exists")
	ErrUnavailable = errors.New("storage unavailable")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
