// Package storage provides the data persistence layer for the rose application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidItem  = errors.New("invalid item")
	ErrInvalidDays  = errors.New("days must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateItem checks the fields storage relies on. Quality bounds are the
// daily updater's concern and are not enforced here.
func validateItem(item *model.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidItem)
	}
	if item.ID < 0 {
		return fmt.Errorf("%w: negative ID %d", ErrInvalidItem, item.ID)
	}
	return nil
}
