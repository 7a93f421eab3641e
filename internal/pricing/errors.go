package pricing

import (
	"errors"
	"fmt"
)

var ErrTooManyCombinations = errors.New("too many option combinations")

// MalformedPriceInputError: precio base negativo o ajuste no representable
type MalformedPriceInputError struct {
	Field  string
	Reason string
}

func (e *MalformedPriceInputError) Error() string {
	return fmt.Sprintf("malformed price input %s: %s", e.Field, e.Reason)
}

// InvalidQuantityError: cantidad fuera de [MinQuantity, MaxQuantity]
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be between %d and %d", e.Quantity, MinQuantity, MaxQuantity)
}
