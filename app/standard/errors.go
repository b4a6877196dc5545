package standard

import (
	"errors"
	"fmt"
)

// ErrInvalidName is returned by writers when an element or attribute name
// cannot be written as an XML name.
var ErrInvalidName = errors.New("invalid XML name")

// NotFoundError is returned when no standard is registered under a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no standard found for %s", e.Name)
}

func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}
