package grocery

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned for blank ingredient text.
var ErrEmptyInput = errors.New("No ingredients provided")

// CategorizationError means neither the direct parse nor any fallback
// produced a grocery list.
type CategorizationError struct {
	Err error
}

func (e *CategorizationError) Error() string {
	if e.Err == nil {
		return "error parsing ingredients"
	}
	return fmt.Sprintf("error parsing ingredients: %v", e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}
