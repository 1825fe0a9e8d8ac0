package collections

import (
	"fmt"

	"github.com/albert-labs/albert-go/faults"
)

func validationError(format string, args ...any) error {
	return faults.NewTypedError(faults.ValidationError, fmt.Sprintf(format, args...), nil)
}

func notFoundError(format string, args ...any) error {
	return faults.NewTypedError(faults.NotFoundError, fmt.Sprintf(format, args...), nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
